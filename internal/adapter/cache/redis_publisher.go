package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/keeperlabs/market-keeper/internal/domain"
	"github.com/keeperlabs/market-keeper/internal/port"
	"github.com/redis/go-redis/v9"
)

var _ port.SnapshotPublisher = (*RedisPublisher)(nil)

// RedisPublisher keeps the latest registry snapshot in redis for UI and
// monitoring consumers.
type RedisPublisher struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedisPublisher(addr, password string, db int, key string, ttl time.Duration) *RedisPublisher {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if key == "" {
		key = "keeper:snapshot"
	}
	return &RedisPublisher{
		client: rdb,
		key:    key,
		ttl:    ttl,
	}
}

func (p *RedisPublisher) Publish(ctx context.Context, snap *domain.RegistrySnapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return p.client.Set(ctx, p.key, b, p.ttl).Err()
}

// Latest returns the last published snapshot, or nil when none is stored.
func (p *RedisPublisher) Latest(ctx context.Context) (*domain.RegistrySnapshot, error) {
	b, err := p.client.Get(ctx, p.key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap domain.RegistrySnapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
