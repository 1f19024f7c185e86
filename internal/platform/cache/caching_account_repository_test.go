package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"account_backend/internal/feature/account/domain/entity"
	"account_backend/internal/feature/account/usecase"
)

// mockAccountRepository はテスト用のAccountRepositoryモック実装です。
type mockAccountRepository struct {
	findByIDFn      func(ctx context.Context, id string) (*entity.Account, error)
	updateProfileFn func(ctx context.Context, id string, c entity.ProfileChanges) (*entity.Account, error)
	updateRoleFn    func(ctx context.Context, id string, r entity.Role) (*entity.Account, error)
	setActiveFn     func(ctx context.Context, id string, s entity.Status) error
	findByIDCalls   int
}

func (m *mockAccountRepository) Create(context.Context, *entity.Account) error { return nil }

func (m *mockAccountRepository) FindByID(ctx context.Context, id string) (*entity.Account, error) {
	m.findByIDCalls++
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, usecase.ErrAccountNotFound
}

func (m *mockAccountRepository) FindByUsername(context.Context, string) (*entity.Account, error) {
	return nil, usecase.ErrAccountNotFound
}

func (m *mockAccountRepository) FindByEmail(context.Context, string) (*entity.Account, error) {
	return nil, usecase.ErrAccountNotFound
}

func (m *mockAccountRepository) UpdateProfile(ctx context.Context, id string, c entity.ProfileChanges) (*entity.Account, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, id, c)
	}
	return &entity.Account{ID: id}, nil
}

func (m *mockAccountRepository) UpdateRole(ctx context.Context, id string, r entity.Role) (*entity.Account, error) {
	if m.updateRoleFn != nil {
		return m.updateRoleFn(ctx, id, r)
	}
	return &entity.Account{ID: id, Role: r}, nil
}

func (m *mockAccountRepository) SetActive(ctx context.Context, id string, s entity.Status) error {
	if m.setActiveFn != nil {
		return m.setActiveFn(ctx, id, s)
	}
	return nil
}

func (m *mockAccountRepository) List(context.Context, *entity.Status) ([]entity.Account, error) {
	return nil, nil
}

func testAccount() *entity.Account {
	return &entity.Account{
		ID:           "acc-1",
		Username:     "alice",
		Email:        "alice@x.com",
		PasswordHash: "$2a$10$secret",
		Role:         entity.RoleUser,
		IsActive:     entity.StatusEnabled,
	}
}

// TestNewCachingAccountRepository_Defaults はデフォルト値（TTLとnamespace）が正しく設定されることを検証します。
func TestNewCachingAccountRepository_Defaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		ttl               time.Duration
		namespace         string
		expectedTTL       time.Duration
		expectedNamespace string
	}{
		{"default values when zero/empty", 0, "", DefaultTTL, "accounts"},
		{"negative ttl uses default", -time.Minute, "", DefaultTTL, "accounts"},
		{"custom values preserved", 10 * time.Minute, "custom", 10 * time.Minute, "custom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := NewCachingAccountRepository(nil, tt.ttl, &mockAccountRepository{}, tt.namespace)

			assert.Equal(t, tt.expectedTTL, repo.ttl)
			assert.Equal(t, tt.expectedNamespace, repo.namespace)
		})
	}
}

// TestCachingAccountRepository_FindByID_NilRedis はRedisがnilの場合にキャッシュをバイパスすることを検証します。
func TestCachingAccountRepository_FindByID_NilRedis(t *testing.T) {
	t.Parallel()

	inner := &mockAccountRepository{
		findByIDFn: func(context.Context, string) (*entity.Account, error) { return testAccount(), nil },
	}
	repo := NewCachingAccountRepository(nil, time.Minute, inner, "")

	got, err := repo.FindByID(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, 1, inner.findByIDCalls)

	require.NoError(t, repo.SetActive(context.Background(), "acc-1", entity.StatusDisabled))
}

// TestCachingAccountRepository_FindByID_CacheHit はキャッシュヒット時に内部リポジトリを呼ばないことを検証します。
func TestCachingAccountRepository_FindByID_CacheHit(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	cached, _ := json.Marshal(testAccount())
	mock.ExpectGet("accounts:acc-1").SetVal(string(cached))

	inner := &mockAccountRepository{}
	repo := NewCachingAccountRepository(rdb, 5*time.Minute, inner, "accounts")

	got, err := repo.FindByID(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Zero(t, inner.findByIDCalls, "inner repository should not be called on cache hit")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingAccountRepository_LookupsBypassCache はユーザー名・メールアドレス検索がRedisを経由しないことを検証します。
func TestCachingAccountRepository_LookupsBypassCache(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	repo := NewCachingAccountRepository(rdb, 5*time.Minute, &mockAccountRepository{}, "accounts")

	_, err := repo.FindByUsername(context.Background(), "alice")
	assert.ErrorIs(t, err, usecase.ErrAccountNotFound)
	_, err = repo.FindByEmail(context.Background(), "alice@x.com")
	assert.ErrorIs(t, err, usecase.ErrAccountNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingAccountRepository_FindByID_CacheMiss はキャッシュミス時にDBから取得し、キャッシュに保存することを検証します。
func TestCachingAccountRepository_FindByID_CacheMiss(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	account := testAccount()
	expectedJSON, _ := json.Marshal(account)

	mock.ExpectGet("accounts:acc-1").RedisNil()
	mock.ExpectSet("accounts:acc-1", expectedJSON, 5*time.Minute).SetVal("OK")

	inner := &mockAccountRepository{
		findByIDFn: func(context.Context, string) (*entity.Account, error) { return account, nil },
	}
	repo := NewCachingAccountRepository(rdb, 5*time.Minute, inner, "accounts")

	got, err := repo.FindByID(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Same(t, account, got)
	assert.NotContains(t, string(expectedJSON), "$2a$10$secret", "password hash must not be cached")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingAccountRepository_FindByID_InnerError は内部エラーが伝播し、キャッシュされないことを検証します。
func TestCachingAccountRepository_FindByID_InnerError(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectGet("accounts:missing").RedisNil()

	repo := NewCachingAccountRepository(rdb, 5*time.Minute, &mockAccountRepository{}, "accounts")

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, usecase.ErrAccountNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingAccountRepository_FindByID_CorruptedCache は破損したキャッシュを削除しDBにフォールバックすることを検証します。
func TestCachingAccountRepository_FindByID_CorruptedCache(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	account := testAccount()
	expectedJSON, _ := json.Marshal(account)

	mock.ExpectGet("accounts:acc-1").SetVal("invalid json")
	mock.ExpectDel("accounts:acc-1").SetVal(1)
	mock.ExpectSet("accounts:acc-1", expectedJSON, 5*time.Minute).SetVal("OK")

	inner := &mockAccountRepository{
		findByIDFn: func(context.Context, string) (*entity.Account, error) { return account, nil },
	}
	repo := NewCachingAccountRepository(rdb, 5*time.Minute, inner, "accounts")

	_, err := repo.FindByID(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.findByIDCalls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingAccountRepository_WritesInvalidate は更新系操作の成功後にキャッシュが削除されることを検証します。
func TestCachingAccountRepository_WritesInvalidate(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectDel("accounts:acc-1").SetVal(1)
	mock.ExpectDel("accounts:acc-1").SetVal(1)
	mock.ExpectDel("accounts:acc-1").SetVal(1)

	repo := NewCachingAccountRepository(rdb, 5*time.Minute, &mockAccountRepository{}, "accounts")
	ctx := context.Background()

	name := "Alicia"
	_, err := repo.UpdateProfile(ctx, "acc-1", entity.ProfileChanges{FirstName: &name})
	require.NoError(t, err)
	_, err = repo.UpdateRole(ctx, "acc-1", entity.RoleAdmin)
	require.NoError(t, err)
	require.NoError(t, repo.SetActive(ctx, "acc-1", entity.StatusDisabled))

	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingAccountRepository_FailedWriteKeepsCache は更新失敗時にキャッシュを削除しないことを検証します。
func TestCachingAccountRepository_FailedWriteKeepsCache(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	inner := &mockAccountRepository{
		setActiveFn: func(context.Context, string, entity.Status) error { return usecase.ErrNoChange },
	}
	repo := NewCachingAccountRepository(rdb, 5*time.Minute, inner, "accounts")

	err := repo.SetActive(context.Background(), "acc-1", entity.StatusEnabled)
	assert.ErrorIs(t, err, usecase.ErrNoChange)
	assert.NoError(t, mock.ExpectationsWereMet(), "no redis command expected")
}

// TestCachingAccountRepository_InvalidationErrorIgnored はキャッシュ削除失敗が書き込み結果に影響しないことを検証します。
func TestCachingAccountRepository_InvalidationErrorIgnored(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectDel("accounts:acc-1").SetErr(errors.New("redis down"))

	repo := NewCachingAccountRepository(rdb, 5*time.Minute, &mockAccountRepository{}, "accounts")

	_, err := repo.UpdateRole(context.Background(), "acc-1", entity.RoleAdmin)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingAccountRepository_Miniredis は実際のRedisプロトコルで読み込み・失効・再読み込みの流れを検証します。
func TestCachingAccountRepository_Miniredis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	current := testAccount()
	inner := &mockAccountRepository{
		findByIDFn: func(context.Context, string) (*entity.Account, error) {
			cp := *current
			return &cp, nil
		},
		setActiveFn: func(_ context.Context, _ string, s entity.Status) error {
			current.IsActive = s
			return nil
		},
	}
	repo := NewCachingAccountRepository(rdb, time.Minute, inner, "accounts")
	ctx := context.Background()

	_, err = repo.FindByID(ctx, "acc-1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("accounts:acc-1"))
	assert.Equal(t, time.Minute, mr.TTL("accounts:acc-1"))

	stored, err := mr.Get("accounts:acc-1")
	require.NoError(t, err)
	assert.NotContains(t, stored, current.PasswordHash)

	cached, err := repo.FindByID(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.findByIDCalls)
	assert.Empty(t, cached.PasswordHash)

	require.NoError(t, repo.SetActive(ctx, "acc-1", entity.StatusDisabled))
	assert.False(t, mr.Exists("accounts:acc-1"))

	fresh, err := repo.FindByID(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDisabled, fresh.IsActive)
	assert.Equal(t, 2, inner.findByIDCalls)

	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists("accounts:acc-1"), "entry should expire after ttl")
}
