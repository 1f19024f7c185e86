package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	accountadapters "account_backend/internal/feature/account/adapters"
	"account_backend/internal/feature/account/usecase"
	"account_backend/internal/platform/cache"
)

// Models returns the GORM models owned by the account feature, for migration.
func Models() []any {
	return []any{&accountadapters.AccountModel{}}
}

// NewAccountRepository creates an AccountRepository implementation.
// If Redis is available, the GORM store is wrapped with a read-through cache.
// Otherwise, the store is used directly.
func NewAccountRepository(db *gorm.DB, rdb *redis.Client, cacheTTL time.Duration) usecase.AccountRepository {
	store := accountadapters.NewAccountGorm(db)
	if rdb != nil {
		return cache.NewCachingAccountRepository(rdb, cacheTTL, store, "accounts")
	}
	return store
}
