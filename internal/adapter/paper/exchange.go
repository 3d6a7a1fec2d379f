package paper

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/keeperlabs/market-keeper/internal/domain"
	"github.com/keeperlabs/market-keeper/internal/port"
	"github.com/shopspring/decimal"
)

var _ port.Exchange = (*Exchange)(nil)

// Exchange is an in-memory venue used for simulation runs and tests. Orders
// rest forever until cancelled; balances never move.
type Exchange struct {
	mu       sync.Mutex
	orders   map[string]domain.Order
	balances map[string]decimal.Decimal
}

func New(balances map[string]decimal.Decimal) *Exchange {
	if balances == nil {
		balances = make(map[string]decimal.Decimal)
	}
	return &Exchange{
		orders:   make(map[string]domain.Order),
		balances: balances,
	}
}

func (e *Exchange) FetchOrders(ctx context.Context) ([]domain.Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	res := make([]domain.Order, 0, len(e.orders))
	for _, o := range e.orders {
		res = append(res, o)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].CreatedAt.Before(res[j].CreatedAt)
	})
	return res, nil
}

func (e *Exchange) FetchBalances(ctx context.Context) (map[string]decimal.Decimal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	res := make(map[string]decimal.Decimal, len(e.balances))
	for k, v := range e.balances {
		res[k] = v
	}
	return res, nil
}

func (e *Exchange) PlaceOrder(ctx context.Context, spec domain.OrderSpec) (*domain.Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	o := domain.Order{
		ID:        uuid.NewString(),
		Pair:      spec.Pair,
		IsSell:    spec.IsSell,
		Price:     spec.Price,
		Amount:    spec.Amount,
		CreatedAt: time.Now(),
	}
	e.orders[o.ID] = o
	return &o, nil
}

func (e *Exchange) CancelOrder(ctx context.Context, order domain.Order) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.orders[order.ID]; !ok {
		return false, nil
	}
	delete(e.orders, order.ID)
	return true, nil
}
