package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/keeperlabs/market-keeper/internal/api/dto"
	"github.com/keeperlabs/market-keeper/internal/core"
	"github.com/keeperlabs/market-keeper/internal/domain"
	"github.com/keeperlabs/market-keeper/internal/middleware"
	"github.com/keeperlabs/market-keeper/internal/pricing"
)

// StatusServer exposes read-only keeper state for monitoring. It never
// mutates anything; order actions only happen through the manager API.
type StatusServer struct {
	Mgr       *core.Manager
	Escalator *pricing.Escalator // optional
	startedAt time.Time
}

func NewStatusServer(mgr *core.Manager, esc *pricing.Escalator) *StatusServer {
	return &StatusServer{
		Mgr:       mgr,
		Escalator: esc,
		startedAt: time.Now(),
	}
}

func (s *StatusServer) Run(addr string) error {
	return s.Router().Run(addr)
}

func (s *StatusServer) Router() *gin.Engine {
	r := gin.Default()

	rl := middleware.NewRateLimiter(100 * time.Millisecond)
	r.Use(rl.Middleware())

	r.GET("/health", s.health)
	r.GET("/orderbook", s.orderBook)
	r.GET("/orders", s.orders)
	r.GET("/price", s.price)

	return r
}

func (s *StatusServer) health(c *gin.Context) {
	_, ready := s.Mgr.TryOrderBook()
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok", Ready: ready})
}

func (s *StatusServer) orderBook(c *gin.Context) {
	ob, ready := s.Mgr.TryOrderBook()
	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "order book not ready"})
		return
	}
	balances := make(map[string]string, len(ob.Balances))
	for k, v := range ob.Balances {
		balances[k] = v.String()
	}
	c.JSON(http.StatusOK, dto.OrderBookResponse{
		Orders:               convertOrders(ob.Orders),
		Balances:             balances,
		UpdatedAt:            ob.UpdatedAt,
		OrdersBeingPlaced:    ob.OrdersBeingPlaced,
		OrdersBeingCancelled: ob.OrdersBeingCancelled,
	})
}

func (s *StatusServer) orders(c *gin.Context) {
	snap := s.Mgr.Snapshot()
	c.JSON(http.StatusOK, dto.RegistryResponse{
		Timestamp:    snap.Timestamp,
		OrdersPlaced: convertOrders(snap.OrdersPlaced),
		Cancelling:   snap.Cancelling,
		Cancelled:    snap.Cancelled,
		PlacingCount: snap.PlacingCount,
	})
}

// price reports what the escalating strategy would offer right now, with
// the keeper's uptime as the escalation clock.
func (s *StatusServer) price(c *gin.Context) {
	if s.Escalator == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "price escalation not configured"})
		return
	}
	elapsed := time.Since(s.startedAt)
	c.JSON(http.StatusOK, dto.PriceResponse{
		Price:          s.Escalator.Price(elapsed),
		ElapsedSeconds: elapsed.Seconds(),
	})
}

func convertOrder(o domain.Order) dto.Order {
	return dto.Order{
		ID:        o.ID,
		Pair:      o.Pair,
		IsSell:    o.IsSell,
		Price:     o.Price.String(),
		Amount:    o.Amount.String(),
		CreatedAt: o.CreatedAt,
	}
}

func convertOrders(orders []domain.Order) []dto.Order {
	res := make([]dto.Order, len(orders))
	for i, o := range orders {
		res[i] = convertOrder(o)
	}
	return res
}
