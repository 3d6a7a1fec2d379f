package in_memory

import (
	"context"
	"sync"

	"github.com/keeperlabs/market-keeper/internal/domain"
	"github.com/keeperlabs/market-keeper/internal/port"
)

var _ port.SnapshotPublisher = (*Publisher)(nil)

// Publisher keeps published snapshots in memory. Used in tests and when the
// keeper runs without a redis sink.
type Publisher struct {
	mu    sync.Mutex
	snaps []*domain.RegistrySnapshot
}

func NewPublisher() *Publisher {
	return &Publisher{}
}

func (p *Publisher) Publish(ctx context.Context, snap *domain.RegistrySnapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snaps = append(p.snaps, snap)
	return nil
}

func (p *Publisher) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.snaps)
}

// Last returns the most recent snapshot, or nil if nothing was published.
func (p *Publisher) Last() *domain.RegistrySnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.snaps) == 0 {
		return nil
	}
	return p.snaps[len(p.snaps)-1]
}
