package backend

import (
	"context"
	"time"

	"fiscora/internal/cache"
	"fiscora/internal/middleware/session"
)

const catalogCacheSize = 256

// CachedCatalog serves catalog reads from an LRU cache and passes every
// other call through. Entries are keyed by catalog and caller token, so one
// session never reads what another session loaded.
type CachedCatalog struct {
	Backend
	cache *cache.LRUCache[[]string]
}

func NewCachedCatalog(b Backend, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{
		Backend: b,
		cache:   cache.NewLRUCache[[]string](catalogCacheSize, ttl),
	}
}

// Cache exposes the underlying cache for registration with a cache.Manager
func (c *CachedCatalog) Cache() *cache.LRUCache[[]string] { return c.cache }

func (c *CachedCatalog) Intervals(ctx context.Context) ([]string, error) {
	return c.load(ctx, "intervals", c.Backend.Intervals)
}

func (c *CachedCatalog) IncomeTypes(ctx context.Context) ([]string, error) {
	return c.load(ctx, "income", c.Backend.IncomeTypes)
}

func (c *CachedCatalog) ExpenseTypes(ctx context.Context) ([]string, error) {
	return c.load(ctx, "expense", c.Backend.ExpenseTypes)
}

func (c *CachedCatalog) load(ctx context.Context, kind string, fetch func(context.Context) ([]string, error)) ([]string, error) {
	token, _ := session.TokenFromContext(ctx)
	values, err := c.cache.GetOrLoad(kind+"\x00"+token, func() ([]string, error) {
		return fetch(ctx)
	})
	if err != nil {
		return nil, err
	}
	return append([]string(nil), values...), nil
}

// Ping forwards to the wrapped backend when it can report readiness
func (c *CachedCatalog) Ping(ctx context.Context) error {
	if p, ok := c.Backend.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
