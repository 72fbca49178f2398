package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEvent is published after every state mutation so display layers
// can refresh without polling.
type LedgerEvent struct {
	Action  string
	Account string
	Asset   string
	Amount  decimal.Decimal
	Detail  string
	When    time.Time
}
