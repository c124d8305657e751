package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/dukex/salesflow/pkg/cache"
	"github.com/dukex/salesflow/pkg/config"
	"github.com/dukex/salesflow/pkg/persistence"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// WithCache wraps the workflow repository of p with the configured cache. The returned
// closer releases the cache backend.
func WithCache(ctx context.Context, cfg config.CacheConfig, p persistence.Persistence, logger *slog.Logger) (persistence.Persistence, io.Closer, error) {
	switch cfg.Provider {
	case config.CacheNone, "":
		return p, nopCloser{}, nil
	case config.CacheMemory:
		return cache.Wrap(p, cache.NewMemoryStore(cfg.TTL), logger), nopCloser{}, nil
	case config.CacheRedis:
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}

		return cache.Wrap(p, cache.NewRedisStore(client, cfg.TTL), logger), client, nil
	default:
		return nil, nil, fmt.Errorf("unsupported cache provider: %s", cfg.Provider)
	}
}
