package server

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRateLimitBlocksRapidRequests(t *testing.T) {
	rlimit := requestRateLimit{perSecond: 10}

	require.True(t, rlimit.CheckAndUpdate("192.0.2.1:1234"))
	require.False(t, rlimit.CheckAndUpdate("192.0.2.1:1234"))

	// other clients are tracked independently
	require.True(t, rlimit.CheckAndUpdate("192.0.2.2:1234"))
}
