package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"

	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/retry"
	"git.home.luguber.info/inful/blogbuilder/internal/storage"
)

// DefaultKeep is the number of bundles retained by stores that support GC.
const DefaultKeep = 5

// Key derives the bundle key from the dependency lock file contents and
// any renderer options that influence body HTML.
func Key(lockFile []byte, salt ...string) string {
	h := sha256.New()
	h.Write(lockFile)
	for _, s := range salt {
		h.Write([]byte{0})
		h.Write([]byte(s))
	}
	return hex.EncodeToString(h.Sum(nil))
}

type collector interface {
	GC(ctx context.Context, keep int) (int, error)
}

// Cache restores and saves bundles. A nil *Cache is valid and never hits.
type Cache struct {
	store  storage.BlobStore
	policy retry.Policy
	keep   int
	logger *slog.Logger
}

// New returns a Cache over store.
func New(store storage.BlobStore, policy retry.Policy, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{store: store, policy: policy, keep: DefaultKeep, logger: logger}
}

// Restore loads the bundle for key. Misses and failures are logged and
// reported as (empty bundle, false); they never fail a build. Transient
// store errors are retried per the policy.
func (c *Cache) Restore(ctx context.Context, key string) (*Bundle, bool) {
	if c == nil || c.store == nil {
		return NewBundle(), false
	}

	var data []byte
	err := c.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		data, err = c.store.Get(ctx, key)
		return err
	}, func(err error) bool {
		return !errors.Is(err, storage.ErrNotFound) && !errors.Is(err, context.Canceled)
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.logger.Info("Cache miss", logfields.CacheKey(key))
		} else {
			c.logger.Warn("Cache restore failed, continuing without cache", logfields.CacheKey(key), logfields.Error(err))
		}
		return NewBundle(), false
	}

	b := NewBundle()
	if err := b.UnmarshalBinary(data); err != nil {
		c.logger.Warn("Discarding unreadable cache bundle", logfields.CacheKey(key), logfields.Error(err))
		return NewBundle(), false
	}
	c.logger.Info("Cache restored", logfields.CacheKey(key), logfields.Count(b.Len()))
	return b, true
}

// Save stores the compacted bundle under key and prunes old bundles when
// the store supports it.
func (c *Cache) Save(ctx context.Context, key string, b *Bundle) error {
	if c == nil || c.store == nil || b == nil {
		return nil
	}
	data, err := b.Compact().MarshalBinary()
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryCache, "encode cache bundle").Warning().Build()
	}
	if err := c.store.Put(ctx, key, data); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryCache, "save cache bundle").
			Warning().
			WithContext("key", key).
			Build()
	}
	if gc, ok := c.store.(collector); ok && c.keep > 0 {
		if removed, err := gc.GC(ctx, c.keep); err != nil {
			c.logger.Warn("Cache GC failed", logfields.Error(err))
		} else if removed > 0 {
			c.logger.Debug("Pruned cache bundles", logfields.Count(removed))
		}
	}
	return nil
}

// Close releases the underlying store.
func (c *Cache) Close() error {
	if c == nil || c.store == nil {
		return nil
	}
	return c.store.Close()
}
