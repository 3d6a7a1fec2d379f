package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderBook is a point-in-time view of our orders on the venue, composed
// from the last remote refresh and local placement/cancellation bookkeeping.
type OrderBook struct {
	Orders               []Order                    `json:"orders"`
	Balances             map[string]decimal.Decimal `json:"balances"`
	UpdatedAt            time.Time                  `json:"updated_at"`
	OrdersBeingPlaced    bool                       `json:"orders_being_placed"`
	OrdersBeingCancelled bool                       `json:"orders_being_cancelled"`
}

