// Package adapters はaccountフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"account_backend/internal/feature/account/domain/entity"
	"account_backend/internal/feature/account/usecase"
)

// accountGorm はAccountRepositoryインターフェースのGORM実装です。
// PostgreSQL・SQLiteのどちらのダイアレクトでも動作します。
type accountGorm struct {
	db *gorm.DB
}

// accountGormがAccountRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.AccountRepository = (*accountGorm)(nil)

// NewAccountGorm は指定されたgorm.DB接続でaccountGormの新しいインスタンスを生成します。
// 依存性注入用のコンストラクタです。
func NewAccountGorm(db *gorm.DB) *accountGorm {
	return &accountGorm{db: db}
}

// Create はアカウントをデータベースに追加します。
// IDが未設定の場合はUUIDを採番します。
// ユニーク制約違反の場合、どの列が衝突したかに応じて usecase.ErrUsernameTaken か usecase.ErrEmailTaken を返します。
func (r *accountGorm) Create(ctx context.Context, a *entity.Account) error {
	if a == nil {
		return errors.New("account is nil")
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	m := AccountModelFromEntity(a)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isDuplicateKey(err) {
			return r.conflictCause(ctx, m.Username)
		}
		return err
	}

	a.CreatedAt = m.CreatedAt
	a.UpdatedAt = m.UpdatedAt
	return nil
}

// conflictCause はユニーク制約違反の原因となった列を判定します。
// 同じユーザー名の行が存在すればユーザー名、それ以外はメールアドレスの衝突とみなします。
func (r *accountGorm) conflictCause(ctx context.Context, username string) error {
	if _, err := r.FindByUsername(ctx, username); err == nil {
		return usecase.ErrUsernameTaken
	}
	return usecase.ErrEmailTaken
}

// isDuplicateKey はユニークキー重複エラーかどうかを判定します。
// TranslateError が有効なら gorm.ErrDuplicatedKey に変換されますが、
// 無効な接続でも判定できるようドライバーのメッセージも確認します。
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

// FindByID はIDでアカウントを取得します。
// 存在しない場合、usecase.ErrAccountNotFoundを返します。
func (r *accountGorm) FindByID(ctx context.Context, id string) (*entity.Account, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByUsername はユーザー名でアカウントを取得します。
func (r *accountGorm) FindByUsername(ctx context.Context, username string) (*entity.Account, error) {
	return r.findOne(ctx, "username = ?", username)
}

// FindByEmail はメールアドレスでアカウントを取得します。
func (r *accountGorm) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *accountGorm) findOne(ctx context.Context, query string, arg any) (*entity.Account, error) {
	var m AccountModel
	if err := r.db.WithContext(ctx).Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrAccountNotFound
		}
		return nil, err
	}
	return m.ToEntity(), nil
}

// UpdateProfile は指定された項目のみを更新し、更新後のアカウントを返します。
func (r *accountGorm) UpdateProfile(ctx context.Context, id string, changes entity.ProfileChanges) (*entity.Account, error) {
	values := map[string]any{}
	if changes.FirstName != nil {
		values["first_name"] = *changes.FirstName
	}
	if changes.LastName != nil {
		values["last_name"] = *changes.LastName
	}
	if changes.Location != nil {
		values["location"] = string(*changes.Location)
	}
	if len(values) == 0 {
		return r.FindByID(ctx, id)
	}
	return r.updateColumns(ctx, id, values)
}

// UpdateRole はロールを更新し、更新後のアカウントを返します。
func (r *accountGorm) UpdateRole(ctx context.Context, id string, role entity.Role) (*entity.Account, error) {
	return r.updateColumns(ctx, id, map[string]any{"role": string(role)})
}

func (r *accountGorm) updateColumns(ctx context.Context, id string, values map[string]any) (*entity.Account, error) {
	res := r.db.WithContext(ctx).Model(&AccountModel{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, usecase.ErrAccountNotFound
	}
	return r.FindByID(ctx, id)
}

// SetActive は現在値と異なる場合のみ有効状態を更新します。
// 条件付きUPDATE 1文で判定と更新を行うため、同時に同じ値へ更新した場合も成功するのは1件だけです。
func (r *accountGorm) SetActive(ctx context.Context, id string, status entity.Status) error {
	res := r.db.WithContext(ctx).
		Model(&AccountModel{}).
		Where("id = ? AND is_active <> ?", id, int(status)).
		Update("is_active", int(status))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&AccountModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return usecase.ErrAccountNotFound
	}
	return usecase.ErrNoChange
}

// List はアカウント一覧を作成日時順で返します。status が nil の場合は全件です。
func (r *accountGorm) List(ctx context.Context, status *entity.Status) ([]entity.Account, error) {
	q := r.db.WithContext(ctx).Model(&AccountModel{}).Order("created_at ASC").Order("id ASC")
	if status != nil {
		q = q.Where("is_active = ?", int(*status))
	}

	var models []AccountModel
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}

	accounts := make([]entity.Account, 0, len(models))
	for i := range models {
		accounts = append(accounts, *models[i].ToEntity())
	}
	return accounts, nil
}
