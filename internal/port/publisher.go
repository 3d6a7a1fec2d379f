package port

import (
	"context"

	"github.com/keeperlabs/market-keeper/internal/domain"
)

// SnapshotPublisher receives every registry snapshot for external
// consumption (UI, monitoring). Publish failures are logged, never fatal.
type SnapshotPublisher interface {
	Publish(ctx context.Context, snap *domain.RegistrySnapshot) error
}
