package port

import (
	"context"
	"time"

	"github.com/keeperlabs/market-keeper/internal/domain"
)

// HistoryReporter receives our open buy/sell orders after every published
// snapshot. It has no mutation rights over keeper state.
type HistoryReporter interface {
	Report(ctx context.Context, ts time.Time, buys, sells []domain.Order) error
}
