package cache

import (
	"context"
	"fmt"

	"github.com/meterly/backend/internal/domain/shared"
	"github.com/meterly/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Backends holds the Redis client (if any) and the idempotency store built on it.
type Backends struct {
	Client      *redis.Client
	Idempotency shared.IdempotencyStore
}

// Close releases the store and the Redis client.
func (b *Backends) Close() error {
	if err := b.Idempotency.Close(); err != nil {
		return err
	}
	if b.Client != nil {
		return b.Client.Close()
	}
	return nil
}

// NewBackends connects to Redis when enabled. Outside production an
// unreachable Redis falls back to in-memory state with a warning.
func NewBackends(ctx context.Context, cfg config.RedisConfig, production bool, logger *zap.Logger) (*Backends, error) {
	if !cfg.Enabled {
		if production {
			return nil, fmt.Errorf("redis is required in production")
		}
		logger.Warn("Redis disabled, using in-memory idempotency store")
		return &Backends{Idempotency: NewInMemoryIdempotencyStore()}, nil
	}

	client, err := NewRedisClient(ctx, cfg)
	if err != nil {
		if production {
			return nil, err
		}
		logger.Warn("Redis unavailable, falling back to in-memory idempotency store. "+
			"Payment callbacks may be processed twice across instances.",
			zap.Error(err),
		)
		return &Backends{Idempotency: NewInMemoryIdempotencyStore()}, nil
	}

	logger.Info("using Redis idempotency store", zap.String("addr", cfg.Addr()))
	return &Backends{
		Client:      client,
		Idempotency: NewRedisIdempotencyStore(client, ""),
	}, nil
}
