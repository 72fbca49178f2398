package server

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"simustruct/entity"
	"simustruct/serviceEconomy"
	"simustruct/storage"
)

type server struct {
	eco    *serviceEconomy.Economy
	db     *storage.Database
	router *gin.Engine

	streamClients   map[*streamClient]struct{}
	streamClientsMu sync.RWMutex

	rateLimit requestRateLimit
}

func NewServer(eco *serviceEconomy.Economy, db *storage.Database) *server {
	g := gin.New()
	g.SetTrustedProxies(nil)

	s := &server{
		eco:           eco,
		db:            db,
		router:        g,
		streamClients: make(map[*streamClient]struct{}),
	}

	s.routes()

	return s
}

func (s *server) Run() {
	go s.forwardEvents()

	err := s.router.Run(":8002")
	if err != nil {
		log.Fatalf("server start failed: %v", err.Error())
	}
}

func (s *server) routes() {
	s.router.GET("/", s.accessLog(), s.handleIndex())

	api := s.router.Group("", s.accessLog(), s.rateLimited())
	api.GET("/assets", s.handleAssets())
	api.POST("/assets", s.handleCreateAsset())

	api.GET("/accounts", s.handleAccounts())
	api.POST("/accounts", s.handleCreateAccount())
	api.GET("/accounts/:owner", s.handleAccount())
	api.POST("/accounts/:owner/add", s.handleHolding(false))
	api.POST("/accounts/:owner/remove", s.handleHolding(true))

	api.GET("/exchanges", s.handleExchanges())
	api.POST("/exchanges", s.handleCreateExchange())
	api.GET("/exchanges/:name", s.handleExchange())
	api.POST("/exchanges/:name/pools", s.handleAddPool())
	api.POST("/exchanges/:name/deposit", s.handleDeposit())
	api.POST("/exchanges/:name/trade", s.handleTrade())

	api.GET("/events/stream", s.handleEventStream())
}

// readBody unmarshals the request body into target; on failure the
// request is aborted and false returned.
func readBody(c *gin.Context, target interface{}) bool {
	buf, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Printf("could not read post body: %v", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return false
	}

	if err = json.Unmarshal(buf, target); err != nil {
		log.Printf("read json request failed: %v", err)
		c.IndentedJSON(http.StatusBadRequest, newUserError("request body is not valid json"))
		c.Abort()
		return false
	}

	return true
}

// requirePositive rejects zero and negative amounts at the boundary.
// In-process callers of entity.Account keep the documented freedom to
// pass whatever they like; the HTTP surface does not.
func requirePositive(c *gin.Context, amount decimal.Decimal) bool {
	if !amount.IsPositive() {
		c.IndentedJSON(http.StatusBadRequest, newUserError("amount must be positive"))
		c.Abort()
		return false
	}
	return true
}

func abortEconomyError(c *gin.Context, err error) {
	c.IndentedJSON(http.StatusBadRequest, newUserError("%v", err))
	c.Abort()
}

type nameRequest struct {
	Name string
}

type accountRequest struct {
	Owner string
}

type holdingRequest struct {
	Asset  string
	Amount decimal.Decimal
}

type poolRequest struct {
	AssetA string
	AssetB string
}

type depositRequest struct {
	Asset   string
	Amount  decimal.Decimal
	Account string
}

type tradeRequest struct {
	AssetFrom string
	AssetTo   string
	Amount    decimal.Decimal
	Account   string
}

func (s *server) handleAssets() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.IndentedJSON(http.StatusOK, s.eco.Assets())
	}
}

func (s *server) handleCreateAsset() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req nameRequest
		if !readBody(c, &req) {
			return
		}

		if err := s.eco.CreateAsset(req.Name); err != nil {
			abortEconomyError(c, err)
			return
		}

		c.IndentedJSON(http.StatusOK, entity.NewAsset(req.Name))
	}
}

func (s *server) handleAccounts() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.IndentedJSON(http.StatusOK, s.eco.Accounts())
	}
}

func (s *server) handleCreateAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req accountRequest
		if !readBody(c, &req) {
			return
		}

		if err := s.eco.CreateAccount(req.Owner); err != nil {
			abortEconomyError(c, err)
			return
		}

		acc, err := s.eco.Account(req.Owner)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.IndentedJSON(http.StatusOK, acc)
	}
}

func (s *server) handleAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		acc, err := s.eco.Account(c.Param("owner"))
		if err != nil {
			c.IndentedJSON(http.StatusNotFound, newUserError("%v", err))
			return
		}

		c.IndentedJSON(http.StatusOK, acc)
	}
}

func (s *server) handleHolding(remove bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req holdingRequest
		if !readBody(c, &req) {
			return
		}
		if !requirePositive(c, req.Amount) {
			return
		}

		owner := c.Param("owner")

		var err error
		if remove {
			err = s.eco.RemoveHolding(owner, req.Asset, req.Amount)
		} else {
			err = s.eco.AddHolding(owner, req.Asset, req.Amount)
		}
		if err != nil {
			abortEconomyError(c, err)
			return
		}

		acc, err := s.eco.Account(owner)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.IndentedJSON(http.StatusOK, acc)
	}
}

func (s *server) handleExchanges() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.IndentedJSON(http.StatusOK, s.eco.Exchanges())
	}
}

func (s *server) handleCreateExchange() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req nameRequest
		if !readBody(c, &req) {
			return
		}

		if err := s.eco.CreateExchange(req.Name); err != nil {
			abortEconomyError(c, err)
			return
		}

		ex, err := s.eco.Exchange(req.Name)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.IndentedJSON(http.StatusOK, ex)
	}
}

func (s *server) handleExchange() gin.HandlerFunc {
	return func(c *gin.Context) {
		ex, err := s.eco.Exchange(c.Param("name"))
		if err != nil {
			c.IndentedJSON(http.StatusNotFound, newUserError("%v", err))
			return
		}

		c.IndentedJSON(http.StatusOK, ex)
	}
}

func (s *server) handleAddPool() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req poolRequest
		if !readBody(c, &req) {
			return
		}

		name := c.Param("name")
		if err := s.eco.AddPool(name, req.AssetA, req.AssetB); err != nil {
			abortEconomyError(c, err)
			return
		}

		ex, err := s.eco.Exchange(name)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.IndentedJSON(http.StatusOK, ex)
	}
}

func (s *server) handleDeposit() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req depositRequest
		if !readBody(c, &req) {
			return
		}
		if !requirePositive(c, req.Amount) {
			return
		}

		name := c.Param("name")
		if err := s.eco.Deposit(name, req.Asset, req.Amount, req.Account); err != nil {
			abortEconomyError(c, err)
			return
		}

		ex, err := s.eco.Exchange(name)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.IndentedJSON(http.StatusOK, ex)
	}
}

func (s *server) handleTrade() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req tradeRequest
		if !readBody(c, &req) {
			return
		}
		if !requirePositive(c, req.Amount) {
			return
		}

		name := c.Param("name")
		if err := s.eco.Trade(name, req.AssetFrom, req.AssetTo, req.Amount, req.Account); err != nil {
			abortEconomyError(c, err)
			return
		}

		acc, err := s.eco.Account(req.Account)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.IndentedJSON(http.StatusOK, acc)
	}
}

func (s *server) handleIndex() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("content", "text/html")
		c.Writer.Write([]byte(`<html>
<body>
	<h2>GET requests</h2>
	<ul>
	<li><a href="assets">GET assets</a> - list all assets</li>
	<li><a href="accounts">GET accounts</a> - list all accounts and their holdings</li>
	<li><a href="exchanges">GET exchanges</a> - list all exchanges and their pools</li>
	<li>GET accounts/&lt;owner&gt; - one account</li>
	<li>GET exchanges/&lt;name&gt; - one exchange</li>
	</ul>
	<p/>
	<h2>POST requests</h2>
	<h3>POST /assets, /accounts, /exchanges</h3>
	Register a new asset <pre>{"name": "gold"}</pre>, account <pre>{"owner": "alice"}</pre> or exchange <pre>{"name": "DEX"}</pre>.
	Names must be unique per kind.

	<h3>POST /accounts/&lt;owner&gt;/add and /remove</h3>
	Credit or debit an account's holding of a registered asset:
	<pre>
{
	"asset": "gold",
	"amount": 34.95
}
	</pre>
	Removing more than the account holds fails and leaves the account untouched.

	<h3>POST /exchanges/&lt;name&gt;/pools</h3>
	Register a pool for an ordered asset pair: <pre>{"assetA": "gold", "assetB": "silver"}</pre>
	Pools are directional: a gold-silver pool only serves gold to silver trades.
	Register the reverse pair for the other direction.

	<h3>POST /exchanges/&lt;name&gt;/deposit</h3>
	Move an amount from an account into the first pool carrying the asset:
	<pre>
{
	"asset": "gold",
	"amount": 10,
	"account": "alice"
}
	</pre>

	<h3>POST /exchanges/&lt;name&gt;/trade</h3>
	Swap through the pool registered for exactly this direction, 1:1:
	<pre>
{
	"assetFrom": "gold",
	"assetTo": "silver",
	"amount": 3,
	"account": "alice"
}
	</pre>

	<h2>Web sockets</h2>
	<h3>GET /events/stream</h3>
	Offers a continuous stream of ledger events sent over a websocket, avoiding polling.<br/>
	Each message describes one state mutation (asset/account/exchange/pool creation,
	holding changes, deposits, trades).
	<p>
	No request content to be sent. Just connect to this endpoint and receive realtime events.
	<h4>Note on rounding</h4>
	The server uses <a href="https://pkg.go.dev/github.com/shopspring/decimal">decimal number representation</a> internally for all amounts.
	These numbers are converted to float64 before they are stored in the database. This may
	lead to rounding errors for odd fractions.
</body>
</html>`))
	}
}
