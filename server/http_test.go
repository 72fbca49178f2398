package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"simustruct/serviceEconomy"
)

func newTestServer(t *testing.T) *server {
	gin.SetMode(gin.TestMode)

	eco := serviceEconomy.NewEconomy(nil)
	require.NoError(t, eco.Seed())

	s := NewServer(eco, nil)
	s.rateLimit.perSecond = 1000000 // tests fire faster than real clients may
	return s
}

func do(s *server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestCreateAssetEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := do(s, http.MethodPost, "/assets", `{"name": "copper"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(s, http.MethodPost, "/assets", `{"name": "copper"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "already exists")
}

func TestAccountEndpointUnknownOwner(t *testing.T) {
	s := newTestServer(t)

	rec := do(s, http.MethodGet, "/accounts/nobody", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHoldingEndpointsRejectNonPositiveAmounts(t *testing.T) {
	s := newTestServer(t)

	rec := do(s, http.MethodPost, "/accounts/alice/add", `{"asset": "gold", "amount": -3}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "amount must be positive")

	rec = do(s, http.MethodPost, "/exchanges/DEX/deposit", `{"asset": "gold", "amount": 0, "account": "alice"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTradeEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := do(s, http.MethodPost, "/exchanges/DEX/trade",
		`{"assetFrom": "gold", "assetTo": "silver", "amount": 3, "account": "bob"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "bob")

	// the silver-gold pool exists but carries no reserves: the seeded
	// silver deposit landed in the gold-silver pool first
	rec = do(s, http.MethodPost, "/exchanges/DEX/trade",
		`{"assetFrom": "silver", "assetTo": "gold", "amount": 1, "account": "bob"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExchangeEndpointShowsPools(t *testing.T) {
	s := newTestServer(t)

	rec := do(s, http.MethodGet, "/exchanges/DEX", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "gold-silver")
	require.Contains(t, rec.Body.String(), "silver-gold")
}
