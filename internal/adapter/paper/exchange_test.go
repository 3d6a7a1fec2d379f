package paper

import (
	"context"
	"testing"

	"github.com/keeperlabs/market-keeper/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaperExchange(t *testing.T) {
	ctx := context.Background()
	ex := New(map[string]decimal.Decimal{"USD": decimal.NewFromInt(500)})

	spec := domain.OrderSpec{
		Pair:   "KEEP-USD",
		IsSell: false,
		Price:  decimal.NewFromInt(99),
		Amount: decimal.NewFromInt(2),
	}

	placed, err := ex.PlaceOrder(ctx, spec)
	require.NoError(t, err)
	require.NotNil(t, placed)
	assert.NotEmpty(t, placed.ID)
	assert.Equal(t, spec.Pair, placed.Pair)

	orders, err := ex.FetchOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, placed.ID, orders[0].ID)

	balances, err := ex.FetchBalances(ctx)
	require.NoError(t, err)
	assert.True(t, balances["USD"].Equal(decimal.NewFromInt(500)))

	ok, err := ex.CancelOrder(ctx, *placed)
	require.NoError(t, err)
	assert.True(t, ok)

	// a second cancel is refused, not an error
	ok, err = ex.CancelOrder(ctx, *placed)
	require.NoError(t, err)
	assert.False(t, ok)

	orders, err = ex.FetchOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
}
