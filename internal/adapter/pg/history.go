package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/keeperlabs/market-keeper/internal/domain"
	"github.com/keeperlabs/market-keeper/internal/port"
)

var _ port.HistoryReporter = (*HistoryReporter)(nil)

// HistoryReporter appends order-history rows to Postgres. It is a reporting
// sink only; keeper state is never read back from it.
type HistoryReporter struct {
	pool *pgxpool.Pool
}

// call Close when finished with the reporter.
func NewHistoryReporter(ctx context.Context, dsn string) (*HistoryReporter, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}
	return &HistoryReporter{pool: pool}, nil
}

func (r *HistoryReporter) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

func (r *HistoryReporter) Report(ctx context.Context, ts time.Time, buys, sells []domain.Order) error {
	if err := r.insertSide(ctx, ts, "BUY", buys); err != nil {
		return err
	}
	return r.insertSide(ctx, ts, "SELL", sells)
}

func (r *HistoryReporter) insertSide(ctx context.Context, ts time.Time, side string, orders []domain.Order) error {
	for _, o := range orders {
		_, err := r.pool.Exec(ctx, `
INSERT INTO order_history(id, reported_at, side, order_id, pair, price, amount, order_created_at)
VALUES($1,$2,$3,$4,$5,$6,$7,$8)
`, uuid.NewString(), ts, side, o.ID, o.Pair, o.Price, o.Amount, o.CreatedAt)
		if err != nil {
			return fmt.Errorf("pg: insert history row: %w", err)
		}
	}
	return nil
}
