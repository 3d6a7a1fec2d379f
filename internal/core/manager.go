package core

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/keeperlabs/market-keeper/internal/domain"
	"github.com/keeperlabs/market-keeper/internal/port"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	DefaultRefreshInterval = 3 * time.Second

	// how often OrderBook re-checks readiness while waiting for the
	// first successful refresh
	readyPollInterval = 100 * time.Millisecond
)

// PlaceFunc performs exactly one placement attempt. A nil order with a nil
// error means the venue produced no order.
type PlaceFunc func() (*domain.Order, error)

// Manager coordinates local order bookkeeping against a remote venue. All
// registry mutation and every placement/cancellation attempt run under one
// mutex, because the venue transport is a single stateful session that must
// never see two requests in flight.
type Manager struct {
	exchange     port.Exchange
	executor     Executor
	refreshEvery time.Duration
	log          *logrus.Entry

	mu       sync.Mutex
	registry *Registry
	book     remoteBook

	refreshing atomic.Bool

	publisher  port.SnapshotPublisher
	reporter   port.HistoryReporter
	buyOrders  func([]domain.Order) []domain.Order
	sellOrders func([]domain.Order) []domain.Order
}

// remoteBook is the last-known remote view. ready stays false until the
// first successful refresh.
type remoteBook struct {
	orders    []domain.Order
	balances  map[string]decimal.Decimal
	updatedAt time.Time
	ready     bool
}

func NewManager(exchange port.Exchange, refreshEvery time.Duration) *Manager {
	if refreshEvery <= 0 {
		refreshEvery = DefaultRefreshInterval
	}
	log := logrus.WithField("component", "order_book_manager")
	return &Manager{
		exchange:     exchange,
		executor:     SyncExecutor{},
		refreshEvery: refreshEvery,
		log:          log,
		registry:     NewRegistry(log),
	}
}

// UseExecutor swaps the placement execution policy. Call before Start.
func (m *Manager) UseExecutor(e Executor) {
	if e != nil {
		m.executor = e
	}
}

// EnableSnapshotPublishing wires a sink that receives every registry
// snapshot. Call before Start.
func (m *Manager) EnableSnapshotPublishing(p port.SnapshotPublisher) {
	m.publisher = p
}

// EnableHistoryReporting wires a reporter invoked after each published
// snapshot with the supplied views of our buy and sell orders. Nil views
// default to filtering by order side. Call before Start.
func (m *Manager) EnableHistoryReporting(r port.HistoryReporter, buys, sells func([]domain.Order) []domain.Order) {
	if buys == nil {
		buys = domain.BuyOrders
	}
	if sells == nil {
		sells = domain.SellOrders
	}
	m.reporter = r
	m.buyOrders = buys
	m.sellOrders = sells
}

// Start launches the background refresh loop. It returns immediately; use
// OrderBook to wait for the first successful refresh.
func (m *Manager) Start(ctx context.Context) {
	go m.refreshLoop(ctx)
}

func (m *Manager) refreshLoop(ctx context.Context) {
	m.refreshOnce(ctx)
	ticker := time.NewTicker(m.refreshEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.refreshOnce(ctx)
		}
	}
}

// refreshOnce fetches remote orders and balances, then swaps in the new
// view under the lock. Overlapping calls are skipped, not queued, so at most
// one remote query of each kind is outstanding. A failed fetch keeps the
// previous view in place.
func (m *Manager) refreshOnce(ctx context.Context) {
	if !m.refreshing.CompareAndSwap(false, true) {
		m.log.Debug("order book refresh still in progress, skipping tick")
		return
	}
	defer m.refreshing.Store(false)

	orders, err := m.exchange.FetchOrders(ctx)
	if err != nil {
		m.log.WithError(err).Warn("failed to fetch orders, keeping last known order book")
		return
	}
	balances, err := m.exchange.FetchBalances(ctx)
	if err != nil {
		m.log.WithError(err).Warn("failed to fetch balances, keeping last known order book")
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.book.orders = orders
	m.book.balances = balances
	m.book.updatedAt = time.Now()
	m.book.ready = true
	m.publishLocked(ctx)
}

// OrderBook returns the current composed order book. It blocks, re-checking
// periodically, until the first successful refresh so callers never act on
// partially-initialized data.
func (m *Manager) OrderBook(ctx context.Context) (*domain.OrderBook, error) {
	for {
		if ob, ok := m.TryOrderBook(); ok {
			return ob, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(readyPollInterval):
		}
	}
}

// TryOrderBook is the non-blocking variant; ok is false until the first
// successful refresh.
func (m *Manager) TryOrderBook() (*domain.OrderBook, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.book.ready {
		return nil, false
	}
	return m.composeLocked(), true
}

func (m *Manager) composeLocked() *domain.OrderBook {
	balances := make(map[string]decimal.Decimal, len(m.book.balances))
	for k, v := range m.book.balances {
		balances[k] = v
	}
	return &domain.OrderBook{
		Orders:               m.registry.OpenOrders(m.book.orders),
		Balances:             balances,
		UpdatedAt:            m.book.updatedAt,
		OrdersBeingPlaced:    m.registry.PlacingCount() > 0,
		OrdersBeingCancelled: m.registry.CancellingCount() > 0,
	}
}

// Snapshot returns an immutable copy of the registry state.
func (m *Manager) Snapshot() *domain.RegistrySnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registry.Snapshot()
}

// PlaceOrder submits one placement attempt through the execution policy.
// Errors and panics from the factory are logged and absorbed; callers only
// ever observe "an order appeared or it did not". A snapshot is published
// when the attempt starts and again when it ends, whatever the outcome.
func (m *Manager) PlaceOrder(factory PlaceFunc) {
	m.executor.Submit(func() {
		m.placeOrder(factory)
	})
}

func (m *Manager) placeOrder(factory PlaceFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.registry.BeginPlacement()
	m.publishLocked(context.Background())
	defer func() {
		m.registry.EndPlacement()
		m.publishLocked(context.Background())
	}()

	order, err := runPlacement(factory)
	if err != nil {
		m.log.WithError(err).Warn("order placement failed")
		return
	}
	if order == nil {
		m.log.Info("order placement produced no order")
		return
	}
	m.registry.RecordPlaced(*order)
	m.log.WithField("order_id", order.ID).Info("order placed")
}

func runPlacement(factory PlaceFunc) (order *domain.Order, err error) {
	defer func() {
		if p := recover(); p != nil {
			order, err = nil, fmt.Errorf("placement panicked: %v", p)
		}
	}()
	return factory()
}

// CancelOrders cancels the given orders one by one, never in parallel. Each
// terminal outcome publishes a snapshot. A failed or refused cancel leaves
// the order retryable by a later call.
func (m *Manager) CancelOrders(ctx context.Context, orders []domain.Order) {
	for _, order := range orders {
		m.cancelOrder(ctx, order)
	}
}

func (m *Manager) cancelOrder(ctx context.Context, order domain.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()

	log := m.log.WithField("order_id", order.ID)

	m.registry.BeginCancel(order.ID)
	m.publishLocked(ctx)
	defer m.publishLocked(ctx)

	ok, err := runCancel(ctx, m.exchange, order)
	switch {
	case err != nil:
		log.WithError(err).Warn("order cancellation failed")
		m.registry.AbandonCancel(order.ID)
	case !ok:
		log.Warn("venue refused order cancellation")
		m.registry.AbandonCancel(order.ID)
	default:
		m.registry.ConfirmCancel(order.ID)
		log.Info("order cancelled")
	}
}

func runCancel(ctx context.Context, exchange port.Exchange, order domain.Order) (ok bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			ok, err = false, fmt.Errorf("cancellation panicked: %v", p)
		}
	}()
	return exchange.CancelOrder(ctx, order)
}

// CancelAllOrders keeps issuing cancels until no open orders remain, waiting
// out transient failures. Used on keeper shutdown.
func (m *Manager) CancelAllOrders(ctx context.Context) error {
	for {
		book, err := m.OrderBook(ctx)
		if err != nil {
			return err
		}
		if len(book.Orders) == 0 {
			return nil
		}
		m.log.WithField("count", len(book.Orders)).Info("cancelling all orders")
		m.CancelOrders(ctx, book.Orders)

		book, err = m.OrderBook(ctx)
		if err != nil {
			return err
		}
		if len(book.Orders) == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.refreshEvery):
		}
	}
}

// publishLocked pushes a fresh snapshot to the publisher and reporter. Every
// registry or book mutation calls it before releasing the lock, so observers
// always see a current view, failure paths included.
func (m *Manager) publishLocked(ctx context.Context) {
	snap := m.registry.Snapshot()

	if m.publisher != nil {
		if err := m.publisher.Publish(ctx, snap); err != nil {
			m.log.WithError(err).Warn("snapshot publish failed")
		}
	}
	if m.reporter != nil {
		open := m.registry.OpenOrders(m.book.orders)
		if err := m.reporter.Report(ctx, snap.Timestamp, m.buyOrders(open), m.sellOrders(open)); err != nil {
			m.log.WithError(err).Warn("order history report failed")
		}
	}
}
