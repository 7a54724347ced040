package cache

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/retry"
	"git.home.luguber.info/inful/blogbuilder/internal/storage"
)

// Open builds the cache selected by cfg. The none backend yields a nil
// *Cache, which never hits.
func Open(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger) (*Cache, error) {
	var store storage.BlobStore
	switch cfg.Backend {
	case config.CacheBackendNone:
		return nil, nil
	case config.CacheBackendNATS:
		s, err := NewNATSStore(ctx, cfg.NATS)
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryCache, "open NATS cache").Warning().Build()
		}
		store = s
	default:
		s, err := storage.NewFSStore(cfg.Dir)
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryCache, "open cache directory").Warning().Build()
		}
		store = s
	}
	return New(store, retry.FromConfig(cfg.Retry), logger), nil
}
