package dto

import "time"

type Order struct {
	ID        string    `json:"id"`
	Pair      string    `json:"pair"`
	IsSell    bool      `json:"is_sell"`
	Price     string    `json:"price"`
	Amount    string    `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

type OrderBookResponse struct {
	Orders               []Order           `json:"orders"`
	Balances             map[string]string `json:"balances"`
	UpdatedAt            time.Time         `json:"updated_at"`
	OrdersBeingPlaced    bool              `json:"orders_being_placed"`
	OrdersBeingCancelled bool              `json:"orders_being_cancelled"`
}

type RegistryResponse struct {
	Timestamp    time.Time `json:"timestamp"`
	OrdersPlaced []Order   `json:"orders_placed"`
	Cancelling   []string  `json:"order_ids_cancelling"`
	Cancelled    []string  `json:"order_ids_cancelled"`
	PlacingCount int       `json:"currently_placing_orders"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Ready  bool   `json:"ready"`
}

type PriceResponse struct {
	Price          int64   `json:"price"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}
