package domain

import "time"

// RegistrySnapshot is an immutable copy of the order registry, safe to hand
// to a concurrent reader without further locking.
type RegistrySnapshot struct {
	Timestamp    time.Time `json:"timestamp"`
	OrdersPlaced []Order   `json:"orders_placed"`
	Cancelling   []string  `json:"order_ids_cancelling"`
	Cancelled    []string  `json:"order_ids_cancelled"`
	PlacingCount int       `json:"currently_placing_orders"`
}
