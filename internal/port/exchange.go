package port

import (
	"context"

	"github.com/keeperlabs/market-keeper/internal/domain"
	"github.com/shopspring/decimal"
)

// Exchange is the venue adapter surface the keeper core depends on. The
// transport behind it is assumed to be a single stateful session, so the
// core never invokes these concurrently.
type Exchange interface {
	FetchOrders(ctx context.Context) ([]domain.Order, error)
	FetchBalances(ctx context.Context) (map[string]decimal.Decimal, error)
	PlaceOrder(ctx context.Context, spec domain.OrderSpec) (*domain.Order, error)
	// CancelOrder returns true only when the venue confirmed the cancel.
	CancelOrder(ctx context.Context, order domain.Order) (bool, error)
}
