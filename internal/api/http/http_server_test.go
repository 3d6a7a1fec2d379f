package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/keeperlabs/market-keeper/internal/adapter/paper"
	"github.com/keeperlabs/market-keeper/internal/api/dto"
	"github.com/keeperlabs/market-keeper/internal/core"
	"github.com/keeperlabs/market-keeper/internal/domain"
	"github.com/keeperlabs/market-keeper/internal/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var clientSeq int

// get issues a request with a unique client IP so the rate limiter never
// interferes with the test.
func get(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	clientSeq++
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = fmt.Sprintf("10.0.0.%d:1234", clientSeq%250+1)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestStatusServer(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ex := paper.New(map[string]decimal.Decimal{"USD": decimal.NewFromInt(1000)})
	mgr := core.NewManager(ex, 20*time.Millisecond)

	esc := pricing.NewEscalator(pricing.FixedSource{Price: 100 * pricing.Unit})
	server := NewStatusServer(mgr, esc)
	router := server.Router()

	t.Run("orderbook unavailable before first refresh", func(t *testing.T) {
		w := get(t, router, "/orderbook")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		w = get(t, router, "/health")
		require.Equal(t, http.StatusOK, w.Code)
		var health dto.HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
		assert.False(t, health.Ready)
	})

	mgr.Start(ctx)
	_, err := mgr.OrderBook(ctx)
	require.NoError(t, err)

	mgr.PlaceOrder(func() (*domain.Order, error) {
		return ex.PlaceOrder(ctx, domain.OrderSpec{
			Pair:   "KEEP-USD",
			IsSell: true,
			Price:  decimal.NewFromInt(101),
			Amount: decimal.NewFromInt(1),
		})
	})

	t.Run("orderbook reflects placed orders", func(t *testing.T) {
		w := get(t, router, "/orderbook")
		require.Equal(t, http.StatusOK, w.Code)

		var book dto.OrderBookResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &book))
		require.Len(t, book.Orders, 1)
		assert.True(t, book.Orders[0].IsSell)
		assert.Equal(t, "1000", book.Balances["USD"])
	})

	t.Run("orders exposes the registry snapshot", func(t *testing.T) {
		w := get(t, router, "/orders")
		require.Equal(t, http.StatusOK, w.Code)

		var reg dto.RegistryResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))
		assert.Len(t, reg.OrdersPlaced, 1)
		assert.Equal(t, 0, reg.PlacingCount)
	})

	t.Run("price applies the escalation formula", func(t *testing.T) {
		w := get(t, router, "/price")
		require.Equal(t, http.StatusOK, w.Code)

		var price dto.PriceResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &price))
		// just started, so fast*1.1 with no steps yet
		assert.Equal(t, 110*pricing.Unit, price.Price)
	})
}
