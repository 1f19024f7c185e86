// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"account_backend/internal/feature/account/domain/entity"
	"account_backend/internal/feature/account/usecase"
)

// DefaultTTL is used when a non-positive TTL is supplied.
const DefaultTTL = 5 * time.Minute

// CachingAccountRepository decorates an AccountRepository with Redis caching.
// Only FindByID is served from the cache. Every write that changes a cached
// record deletes its entry after the underlying store has been updated.
//
// Cached records are serialized with the entity's JSON tags, so PasswordHash
// is never written to Redis and is empty on a cache hit. Credential checks go
// through FindByEmail, which always reads the store.
type CachingAccountRepository struct {
	inner     usecase.AccountRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.AccountRepository = (*CachingAccountRepository)(nil)

// NewCachingAccountRepository decorates an AccountRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "accounts".
func NewCachingAccountRepository(rdb *redis.Client, ttl time.Duration, inner usecase.AccountRepository, namespace string) *CachingAccountRepository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if namespace == "" {
		namespace = "accounts"
	}
	return &CachingAccountRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Create passes through; a new account has no cache entry to invalidate.
func (c *CachingAccountRepository) Create(ctx context.Context, a *entity.Account) error {
	return c.inner.Create(ctx, a)
}

// FindByID retrieves an account, checking cache first then falling back to the database.
func (c *CachingAccountRepository) FindByID(ctx context.Context, id string) (*entity.Account, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.FindByID(ctx, id)
	}

	key := c.cacheKey(id)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out entity.Account
		if err := json.Unmarshal(b, &out); err == nil {
			return &out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// FindByUsername reads through to the store without caching.
func (c *CachingAccountRepository) FindByUsername(ctx context.Context, username string) (*entity.Account, error) {
	return c.inner.FindByUsername(ctx, username)
}

// FindByEmail reads through to the store without caching.
func (c *CachingAccountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	return c.inner.FindByEmail(ctx, email)
}

// UpdateProfile updates the store and invalidates the cached record.
func (c *CachingAccountRepository) UpdateProfile(ctx context.Context, id string, changes entity.ProfileChanges) (*entity.Account, error) {
	out, err := c.inner.UpdateProfile(ctx, id, changes)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, id)
	return out, nil
}

// UpdateRole updates the store and invalidates the cached record.
func (c *CachingAccountRepository) UpdateRole(ctx context.Context, id string, role entity.Role) (*entity.Account, error) {
	out, err := c.inner.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, id)
	return out, nil
}

// SetActive updates the store and invalidates the cached record.
func (c *CachingAccountRepository) SetActive(ctx context.Context, id string, status entity.Status) error {
	if err := c.inner.SetActive(ctx, id, status); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

// List always reads the store; filtered lists are not cached.
func (c *CachingAccountRepository) List(ctx context.Context, status *entity.Status) ([]entity.Account, error) {
	return c.inner.List(ctx, status)
}

// invalidate deletes the cached record. Failures are logged, not returned:
// the write already succeeded and the entry expires after ttl regardless.
func (c *CachingAccountRepository) invalidate(ctx context.Context, id string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, c.cacheKey(id)).Err(); err != nil {
		slog.Warn("cache invalidation failed", "key", c.cacheKey(id), "error", err)
	}
}

// cacheKey generates the cache key for an account id.
func (c *CachingAccountRepository) cacheKey(id string) string {
	return c.namespace + ":" + safe(id)
}
