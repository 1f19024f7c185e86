package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"account_backend/internal/feature/account/domain"
	"account_backend/internal/feature/account/domain/entity"
)

const (
	// minPasswordLength はパスワードの最低文字数を定義します。
	minPasswordLength = 6

	// maxPasswordBytes はbcryptが受け付けるパスワードの最大バイト数です。
	maxPasswordBytes = 72

	// dummyHash はメールアドレスが存在しない場合にも比較処理を行うためのダミーハッシュです。
	// 応答時間からアカウントの存在が推測されることを防ぎます。
	dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
)

// ListFilter はアカウント一覧の絞り込み条件です。
type ListFilter string

const (
	FilterActive   ListFilter = "Active"
	FilterInactive ListFilter = "Inactive"
	FilterAll      ListFilter = "All"
)

// AccountRepository はアカウントエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type AccountRepository interface {
	// Create は新しいアカウントを保存します。
	// ユニーク制約違反の場合、ErrUsernameTaken または ErrEmailTaken を返します。
	Create(ctx context.Context, account *entity.Account) error

	// FindByID はIDでアカウントを取得します。存在しない場合 ErrAccountNotFound を返します。
	FindByID(ctx context.Context, id string) (*entity.Account, error)

	// FindByUsername はユーザー名でアカウントを取得します。
	FindByUsername(ctx context.Context, username string) (*entity.Account, error)

	// FindByEmail はメールアドレスでアカウントを取得します。
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)

	// UpdateProfile は指定されたフィールドのみを更新し、更新後のアカウントを返します。
	UpdateProfile(ctx context.Context, id string, changes entity.ProfileChanges) (*entity.Account, error)

	// UpdateRole はロールを更新し、更新後のアカウントを返します。
	UpdateRole(ctx context.Context, id string, role entity.Role) (*entity.Account, error)

	// SetActive は現在値と異なる場合のみ有効状態を更新します。
	// 値が変わらなかった場合 ErrNoChange を返します。
	SetActive(ctx context.Context, id string, status entity.Status) error

	// List はアカウント一覧を返します。status が nil の場合は全件です。
	List(ctx context.Context, status *entity.Status) ([]entity.Account, error)
}

// PasswordHasher はパスワードの一方向ハッシュ化と照合を定義します。
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, digest string) bool
}

// TokenIssuer はアクセストークン発行のインターフェースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（platform/jwt）ではなくコンシューマー（usecase）が定義します。
type TokenIssuer interface {
	Issue(ctx context.Context, accountID string, role entity.Role) (string, error)
}

// RegisterInput は登録リクエストの入力値です。
// 省略可能な項目は nil の場合にデフォルト値が適用されます。
type RegisterInput struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
	Password  string
	Location  *entity.Location
	Role      *entity.Role
	IsActive  *entity.Status
}

// LoginResult はログイン成功時の結果です。
type LoginResult struct {
	Account *entity.Account
	Token   string
}

// AccountUsecase はアカウント管理のビジネスロジックを実装します。
type AccountUsecase struct {
	accounts AccountRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
}

// NewAccountUsecase はAccountUsecaseの新しいインスタンスを生成します。
func NewAccountUsecase(accounts AccountRepository, hasher PasswordHasher, tokens TokenIssuer) *AccountUsecase {
	return &AccountUsecase{
		accounts: accounts,
		hasher:   hasher,
		tokens:   tokens,
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// validateRegister は登録入力を順番に検証し、最初に見つかった問題を返します。
func validateRegister(in RegisterInput) error {
	if isBlank(in.Username) || isBlank(in.FirstName) || isBlank(in.LastName) ||
		isBlank(in.Email) || in.Password == "" {
		return domain.Validation(domain.MsgMissingField)
	}
	if in.Location != nil && !in.Location.IsValid() {
		return domain.Validation(domain.MsgLocation)
	}
	if in.Role != nil && !in.Role.IsValid() {
		return domain.Validation(domain.MsgInvalidRole)
	}
	if in.IsActive != nil && !in.IsActive.IsValid() {
		return domain.Validation(domain.MsgInvalidActive)
	}
	if len(in.Password) < minPasswordLength {
		return domain.Validation(fmt.Sprintf("password must be at least %d characters long", minPasswordLength))
	}
	if len(in.Password) > maxPasswordBytes {
		return domain.Validation(domain.MsgPasswordTooLong)
	}
	return nil
}

// Register は入力を検証し、パスワードをハッシュ化して新規アカウントを登録します。
// ユーザー名・メールアドレスの重複は事前に確認しますが、最終的な一意性はストアのユニーク制約で保証されます。
func (u *AccountUsecase) Register(ctx context.Context, in RegisterInput) (*entity.Account, error) {
	if err := validateRegister(in); err != nil {
		return nil, err
	}

	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	if err := u.ensureUnused(ctx, u.accounts.FindByUsername, username, domain.MsgUsernameInUse); err != nil {
		return nil, err
	}
	if err := u.ensureUnused(ctx, u.accounts.FindByEmail, email, domain.MsgEmailInUse); err != nil {
		return nil, err
	}

	hashed, err := u.hasher.Hash(ctx, in.Password)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return nil, err
		}
		return nil, domain.Internal(err)
	}

	account := &entity.Account{
		Username:     username,
		Email:        email,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Location:     entity.DefaultLocation,
		PasswordHash: hashed,
		Role:         entity.RoleUser,
		IsActive:     entity.StatusEnabled,
	}
	if in.Location != nil {
		account.Location = *in.Location
	}
	if in.Role != nil {
		account.Role = *in.Role
	}
	if in.IsActive != nil {
		account.IsActive = *in.IsActive
	}

	if err := u.accounts.Create(ctx, account); err != nil {
		switch {
		case errors.Is(err, ErrUsernameTaken):
			return nil, domain.Conflict(domain.MsgUsernameInUse)
		case errors.Is(err, ErrEmailTaken):
			return nil, domain.Conflict(domain.MsgEmailInUse)
		default:
			return nil, domain.Internal(err)
		}
	}
	return account, nil
}

// ensureUnused は lookup が値を見つけた場合に Conflict エラーを返します。
func (u *AccountUsecase) ensureUnused(
	ctx context.Context,
	lookup func(context.Context, string) (*entity.Account, error),
	value, conflictMsg string,
) error {
	_, err := lookup(ctx, value)
	switch {
	case err == nil:
		return domain.Conflict(conflictMsg)
	case errors.Is(err, ErrAccountNotFound):
		return nil
	default:
		return domain.Internal(err)
	}
}

// Authenticate はメールアドレスとパスワードでアカウントを認証し、成功時にトークンを発行します。
// メールアドレス不一致とパスワード不一致は同一のエラーを返し、どちらが誤っていたかを漏らしません。
// 無効化されたアカウントはパスワード照合の前に拒否されます。
func (u *AccountUsecase) Authenticate(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.Validation(domain.MsgCredentials)
	}

	account, err := u.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			// タイミング攻撃防止のため、ユーザーが存在しない場合もハッシュ比較を実行
			u.hasher.Verify(ctx, password, dummyHash)
			return nil, domain.Auth(domain.MsgInvalidLogin)
		}
		return nil, domain.Internal(err)
	}

	if !account.IsEnabled() {
		return nil, domain.Auth(domain.MsgAccountDisabled)
	}

	if !u.hasher.Verify(ctx, password, account.PasswordHash) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, domain.Internal(ctxErr)
		}
		return nil, domain.Auth(domain.MsgInvalidLogin)
	}

	token, err := u.tokens.Issue(ctx, account.ID, account.Role)
	if err != nil {
		return nil, domain.Internal(fmt.Errorf("failed to generate token: %w", err))
	}

	return &LoginResult{Account: account, Token: token}, nil
}

// GetProfile はIDでアカウントを取得します。
func (u *AccountUsecase) GetProfile(ctx context.Context, id string) (*entity.Account, error) {
	account, err := u.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, classifyLookup(err)
	}
	return account, nil
}

// UpdateProfile は氏名・所在地を部分更新します。指定されなかった項目は変更されません。
// 所在地は登録時と同じ許可リストで検証されます。
func (u *AccountUsecase) UpdateProfile(ctx context.Context, id string, changes entity.ProfileChanges) (*entity.Account, error) {
	if changes.FirstName != nil {
		v := strings.TrimSpace(*changes.FirstName)
		if v == "" {
			return nil, domain.Validation(domain.MsgEmptyProfileField)
		}
		changes.FirstName = &v
	}
	if changes.LastName != nil {
		v := strings.TrimSpace(*changes.LastName)
		if v == "" {
			return nil, domain.Validation(domain.MsgEmptyProfileField)
		}
		changes.LastName = &v
	}
	if changes.Location != nil && !changes.Location.IsValid() {
		return nil, domain.Validation(domain.MsgLocation)
	}

	if changes.IsEmpty() {
		return u.GetProfile(ctx, id)
	}

	account, err := u.accounts.UpdateProfile(ctx, id, changes)
	if err != nil {
		return nil, classifyLookup(err)
	}
	return account, nil
}

// UpdateRole はアカウントのロールを変更します。
// 管理者のみが呼び出せることはアクセス制御ゲート側で保証します。
func (u *AccountUsecase) UpdateRole(ctx context.Context, id string, newRole string) (*entity.Account, error) {
	if strings.TrimSpace(newRole) == "" {
		return nil, domain.Validation(domain.MsgRoleRequired)
	}
	role := entity.Role(newRole)
	if !role.IsValid() {
		return nil, domain.Validation(domain.MsgInvalidRole)
	}

	account, err := u.accounts.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, classifyLookup(err)
	}
	return account, nil
}

// SetActiveStatus はアカウントを有効化(1)または無効化(0)し、結果メッセージを返します。
// 現在値と同じ値を指定した場合は Conflict エラーになります。
func (u *AccountUsecase) SetActiveStatus(ctx context.Context, id string, isActive int) (string, error) {
	status := entity.Status(isActive)
	if !status.IsValid() {
		return "", domain.Validation(domain.MsgInvalidStatus)
	}

	account, err := u.accounts.FindByID(ctx, id)
	if err != nil {
		return "", classifyLookup(err)
	}

	if err := u.accounts.SetActive(ctx, id, status); err != nil {
		if errors.Is(err, ErrNoChange) {
			return "", domain.Conflict(domain.MsgNoValueUpdated)
		}
		return "", classifyLookup(err)
	}

	if status == entity.StatusEnabled {
		return fmt.Sprintf("User %s enabled successfully", account.Username), nil
	}
	return fmt.Sprintf("User %s disabled successfully", account.Username), nil
}

// ListAccounts は有効状態で絞り込んだアカウント一覧を返します。
// filter は "Active"、"Inactive"、"All" のいずれかでなければなりません。
func (u *AccountUsecase) ListAccounts(ctx context.Context, filter string) ([]entity.Account, error) {
	var status *entity.Status
	switch ListFilter(filter) {
	case FilterActive:
		s := entity.StatusEnabled
		status = &s
	case FilterInactive:
		s := entity.StatusDisabled
		status = &s
	case FilterAll:
	default:
		return nil, domain.Validation(domain.MsgInvalidFilter)
	}

	accounts, err := u.accounts.List(ctx, status)
	if err != nil {
		return nil, domain.Internal(err)
	}
	return accounts, nil
}

// classifyLookup はリポジトリのエラーをドメインエラーに変換します。
func classifyLookup(err error) error {
	if errors.Is(err, ErrAccountNotFound) {
		return domain.NotFound(domain.MsgAccountNotFound)
	}
	return domain.Internal(err)
}
