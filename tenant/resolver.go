package tenant

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Store looks up a tenant's persisted configuration override, if any.
// Implementations live outside this package (e.g. backed by a database or
// config service); a nil Store is valid and means every tenant uses the
// built-in default.
type Store interface {
	Load(ctx context.Context, tenantID string) (Config, bool, error)
}

// Resolver resolves per-tenant Config, caching entries read-mostly with a
// TTL. Cache reads never block on a store round trip once an entry is warm;
// writes (via Invalidate) replace a single entry without locking the whole
// cache for readers of other tenants.
type Resolver struct {
	store    Store
	fallback Config
	ttl      time.Duration
	logger   *slog.Logger

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	config   Config
	cachedAt time.Time
}

// NewResolver builds a Resolver. store may be nil (fallback-only mode).
func NewResolver(store Store, fallback Config, ttl time.Duration, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Resolver{
		store:    store,
		fallback: fallback,
		ttl:      ttl,
		logger:   logger,
		entries:  make(map[string]cacheEntry),
	}
}

// Resolve returns the tenant's Config. On any error reaching the store, or
// on a missing tenant, it returns the built-in default and never fails —
// per the contract, resolution is best-effort and always succeeds.
func (r *Resolver) Resolve(ctx context.Context, tenantID string) Config {
	if cfg, ok := r.cached(tenantID); ok {
		return cfg
	}

	if r.store == nil {
		return r.withTenant(tenantID, r.fallback)
	}

	cfg, found, err := r.store.Load(ctx, tenantID)
	if err != nil {
		r.logger.Warn("tenant config load failed, using default", "tenantId", tenantID, "error", err)
		return r.withTenant(tenantID, r.fallback)
	}
	if !found {
		cfg = r.fallback
	}
	cfg = r.withTenant(tenantID, cfg)

	r.mu.Lock()
	r.entries[tenantID] = cacheEntry{config: cfg, cachedAt: time.Now()}
	r.mu.Unlock()

	return cfg
}

func (r *Resolver) withTenant(tenantID string, cfg Config) Config {
	cfg.TenantID = tenantID
	return cfg
}

func (r *Resolver) cached(tenantID string) (Config, bool) {
	r.mu.RLock()
	entry, ok := r.entries[tenantID]
	r.mu.RUnlock()
	if !ok {
		return Config{}, false
	}
	if time.Since(entry.cachedAt) > r.ttl {
		return Config{}, false
	}
	return entry.config, true
}

// Invalidate evicts a single tenant's cached entry, forcing the next
// Resolve to re-fetch from the store.
func (r *Resolver) Invalidate(tenantID string) {
	r.mu.Lock()
	delete(r.entries, tenantID)
	r.mu.Unlock()
}
