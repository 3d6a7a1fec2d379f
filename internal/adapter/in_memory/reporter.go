package in_memory

import (
	"context"
	"sync"
	"time"

	"github.com/keeperlabs/market-keeper/internal/domain"
	"github.com/keeperlabs/market-keeper/internal/port"
)

var _ port.HistoryReporter = (*Reporter)(nil)

type ReportedHistory struct {
	Timestamp time.Time
	Buys      []domain.Order
	Sells     []domain.Order
}

// Reporter records history reports in memory.
type Reporter struct {
	mu      sync.Mutex
	reports []ReportedHistory
}

func NewReporter() *Reporter {
	return &Reporter{}
}

func (r *Reporter) Report(ctx context.Context, ts time.Time, buys, sells []domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, ReportedHistory{Timestamp: ts, Buys: buys, Sells: sells})
	return nil
}

func (r *Reporter) Reports() []ReportedHistory {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ReportedHistory{}, r.reports...)
}
