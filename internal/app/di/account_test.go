package di

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"account_backend/internal/platform/cache"
)

func TestNewAccountRepository(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	t.Run("without redis returns the store", func(t *testing.T) {
		repo := NewAccountRepository(db, nil, time.Minute)
		_, isCache := repo.(*cache.CachingAccountRepository)
		assert.False(t, isCache)
	})

	t.Run("with redis wraps the store", func(t *testing.T) {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })

		repo := NewAccountRepository(db, rdb, time.Minute)
		_, isCache := repo.(*cache.CachingAccountRepository)
		assert.True(t, isCache)
	})
}

func TestModels(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(Models()...))
	assert.True(t, db.Migrator().HasTable("accounts"))
}
