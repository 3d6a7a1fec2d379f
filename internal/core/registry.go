package core

import (
	"sort"
	"time"

	"github.com/keeperlabs/market-keeper/internal/domain"
	"github.com/sirupsen/logrus"
)

// Registry is the authoritative in-memory record of orders we placed,
// cancellations in flight and cancellations confirmed by the venue. It does
// no I/O and is not self-locking: every call happens under the owning
// Manager's mutex.
type Registry struct {
	log *logrus.Entry

	ordersPlaced []domain.Order
	cancelling   map[string]struct{}
	cancelled    map[string]struct{}
	placing      int
}

func NewRegistry(log *logrus.Entry) *Registry {
	if log == nil {
		log = logrus.WithField("component", "registry")
	}
	return &Registry{
		log:        log,
		cancelling: make(map[string]struct{}),
		cancelled:  make(map[string]struct{}),
	}
}

// BeginPlacement marks one placement attempt as in flight. Pair it with a
// deferred EndPlacement so the counter balances on every exit path.
func (r *Registry) BeginPlacement() {
	r.placing++
}

func (r *Registry) EndPlacement() {
	if r.placing == 0 {
		r.log.Warn("placement counter underflow, EndPlacement without BeginPlacement")
		return
	}
	r.placing--
}

// RecordPlaced appends a confirmed order. Call it only after a placement
// attempt yielded an order.
func (r *Registry) RecordPlaced(order domain.Order) {
	r.ordersPlaced = append(r.ordersPlaced, order)
}

// BeginCancel marks an order id as undergoing cancellation. Re-requesting a
// cancel already in flight is tolerated; a cancel of an id already confirmed
// cancelled is skipped so an id never sits in both sets.
func (r *Registry) BeginCancel(orderID string) {
	if _, done := r.cancelled[orderID]; done {
		r.log.WithField("order_id", orderID).Info("order already cancelled, not cancelling again")
		return
	}
	r.cancelling[orderID] = struct{}{}
}

// ConfirmCancel moves an order id to the cancelled set and drops the order
// from the placed list. Confirming an id we are not tracking as cancelling
// is a no-op warning, not an error: it happens when a cancel confirmation
// races with a concurrent refresh.
func (r *Registry) ConfirmCancel(orderID string) {
	if _, ok := r.cancelling[orderID]; !ok {
		r.log.WithField("order_id", orderID).Info("cancel confirmed for an order not tracked as cancelling")
	}
	delete(r.cancelling, orderID)
	r.cancelled[orderID] = struct{}{}

	kept := r.ordersPlaced[:0]
	for _, o := range r.ordersPlaced {
		if o.ID != orderID {
			kept = append(kept, o)
		}
	}
	r.ordersPlaced = kept
}

// AbandonCancel returns an order id to the not-cancelling state after a
// failed attempt, leaving it retryable.
func (r *Registry) AbandonCancel(orderID string) {
	if _, ok := r.cancelling[orderID]; !ok {
		r.log.WithField("order_id", orderID).Info("abandoning a cancel not tracked as cancelling")
		return
	}
	delete(r.cancelling, orderID)
}

func (r *Registry) PlacingCount() int {
	return r.placing
}

func (r *Registry) CancellingCount() int {
	return len(r.cancelling)
}

func (r *Registry) IsCancelling(orderID string) bool {
	_, ok := r.cancelling[orderID]
	return ok
}

// OpenOrders composes the orders we believe rest on the venue: the remote
// view plus local placements the venue has not reported yet, minus anything
// cancelling or cancelled.
func (r *Registry) OpenOrders(remote []domain.Order) []domain.Order {
	seen := make(map[string]struct{}, len(remote)+len(r.ordersPlaced))
	res := make([]domain.Order, 0, len(remote)+len(r.ordersPlaced))
	for _, o := range append(append([]domain.Order{}, remote...), r.ordersPlaced...) {
		if _, dup := seen[o.ID]; dup {
			continue
		}
		seen[o.ID] = struct{}{}
		if _, ok := r.cancelling[o.ID]; ok {
			continue
		}
		if _, ok := r.cancelled[o.ID]; ok {
			continue
		}
		res = append(res, o)
	}
	return res
}

// Snapshot returns an immutable copy of the registry state.
func (r *Registry) Snapshot() *domain.RegistrySnapshot {
	snap := &domain.RegistrySnapshot{
		Timestamp:    time.Now(),
		OrdersPlaced: append([]domain.Order{}, r.ordersPlaced...),
		Cancelling:   idSlice(r.cancelling),
		Cancelled:    idSlice(r.cancelled),
		PlacingCount: r.placing,
	}
	return snap
}

func idSlice(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
