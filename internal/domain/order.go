package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a resting order as known to the remote venue. Identity is ID
// (exchange-assigned, opaque). Immutable once placed.
type Order struct {
	ID        string          `json:"id"`
	Pair      string          `json:"pair"`
	IsSell    bool            `json:"is_sell"`
	Price     decimal.Decimal `json:"price"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// OrderSpec describes an order to be placed. The venue assigns the ID.
type OrderSpec struct {
	Pair   string
	IsSell bool
	Price  decimal.Decimal
	Amount decimal.Decimal
}

func (o Order) IsBuy() bool {
	return !o.IsSell
}

func BuyOrders(orders []Order) []Order {
	res := make([]Order, 0, len(orders))
	for _, o := range orders {
		if o.IsBuy() {
			res = append(res, o)
		}
	}
	return res
}

func SellOrders(orders []Order) []Order {
	res := make([]Order, 0, len(orders))
	for _, o := range orders {
		if o.IsSell {
			res = append(res, o)
		}
	}
	return res
}
