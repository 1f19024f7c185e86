// Package handler はaccountフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"account_backend/internal/api"
	"account_backend/internal/feature/account/domain"
	"account_backend/internal/feature/account/domain/entity"
	"account_backend/internal/feature/account/transport/http/dto"
	"account_backend/internal/feature/account/usecase"
	jwtmw "account_backend/internal/platform/jwt"
)

// AccountUsecase はアカウント操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AccountUsecase interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*entity.Account, error)
	Authenticate(ctx context.Context, email, password string) (*usecase.LoginResult, error)
	GetProfile(ctx context.Context, id string) (*entity.Account, error)
	UpdateProfile(ctx context.Context, id string, changes entity.ProfileChanges) (*entity.Account, error)
	UpdateRole(ctx context.Context, id, newRole string) (*entity.Account, error)
	SetActiveStatus(ctx context.Context, id string, isActive int) (string, error)
	ListAccounts(ctx context.Context, filter string) ([]entity.Account, error)
}

// LoginRecorder はログイン結果を計測します。
type LoginRecorder interface {
	LoginOutcome(ctx context.Context, outcome string)
}

// AccountHandler はアカウント操作のHTTPリクエストを処理します。
type AccountHandler struct {
	accounts AccountUsecase
	logins   LoginRecorder
}

// NewAccountHandler はAccountHandlerの新しいインスタンスを生成します。
// 依存性注入用のコンストラクタで、外部からAccountUsecaseを注入します。
// logins が nil の場合、ログイン結果は計測されません。
func NewAccountHandler(accounts AccountUsecase, logins LoginRecorder) *AccountHandler {
	return &AccountHandler{accounts: accounts, logins: logins}
}

func (h *AccountHandler) recordLogin(ctx context.Context, outcome string) {
	if h.logins != nil {
		h.logins.LoginOutcome(ctx, outcome)
	}
}

// fail はエラーをログに記録してレスポンスを書き込みます。
// 500系はapi.WriteError側でエラーログを出すため、ここでは400系のみ警告として記録します。
func fail(c *gin.Context, op string, err error) {
	if api.StatusCode(err) < http.StatusInternalServerError {
		slog.Warn(op+" failed", "error", err, "remote_addr", c.ClientIP())
	}
	api.WriteError(c, err)
}

// bindJSON はリクエストボディをデコードします。
// 型不一致のフィールドがあれば typeMsgs の対応するメッセージを、それ以外は MsgInvalidBody を返します。
func bindJSON(c *gin.Context, dst any, typeMsgs map[string]string) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		// 空ボディは空オブジェクトとして扱い、項目ごとの検証に任せる
		if errors.Is(err, io.EOF) {
			return nil
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			if msg, ok := typeMsgs[typeErr.Field]; ok {
				return domain.Validation(msg)
			}
		}
		return domain.Validation(domain.MsgInvalidBody)
	}
	return nil
}

// caller は認証ミドルウェアが設定したIdentityを取得します。
func caller(c *gin.Context) (jwtmw.Identity, error) {
	id, ok := jwtmw.IdentityFrom(c.Request.Context())
	if !ok {
		return jwtmw.Identity{}, domain.Auth(domain.MsgHeaderNotFound)
	}
	return id, nil
}

// Register はユーザー登録APIエンドポイントを処理します。
// - 入力検証・重複エラー時は400を返却
// - 成功時は201を返却（トークンは発行しない）
func (h *AccountHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if err := bindJSON(c, &req, map[string]string{"isActive": domain.MsgInvalidActive}); err != nil {
		fail(c, "register", err)
		return
	}

	in := usecase.RegisterInput{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	}
	if req.Location != nil {
		loc := entity.Location(*req.Location)
		in.Location = &loc
	}
	if req.Role != nil {
		role := entity.Role(*req.Role)
		in.Role = &role
	}
	if req.IsActive != nil {
		status := entity.Status(*req.IsActive)
		in.IsActive = &status
	}

	account, err := h.accounts.Register(c.Request.Context(), in)
	if err != nil {
		fail(c, "register", err)
		return
	}
	slog.Info("account registered", "account_id", account.ID, "username", account.Username, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, api.MessageResponse{Status: api.StatusSuccess, Message: "User created successfully"})
}

// Login はログインAPIエンドポイントを処理します。
// メールアドレス不一致とパスワード不一致は同じレスポンスになります。
func (h *AccountHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := bindJSON(c, &req, nil); err != nil {
		fail(c, "login", err)
		return
	}

	res, err := h.accounts.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.recordLogin(c.Request.Context(), "failure")
		fail(c, "login", err)
		return
	}
	h.recordLogin(c.Request.Context(), "success")
	slog.Info("account login successful", "account_id", res.Account.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.LoginRes{
		Status: api.StatusSuccess,
		Token:  res.Token,
		User: dto.LoginUser{
			ID:       res.Account.ID,
			Username: res.Account.Username,
			Email:    res.Account.Email,
			Role:     string(res.Account.Role),
		},
	})
}

// GetProfile は呼び出し元のプロフィールを返します。
func (h *AccountHandler) GetProfile(c *gin.Context) {
	id, err := caller(c)
	if err != nil {
		fail(c, "get profile", err)
		return
	}
	account, err := h.accounts.GetProfile(c.Request.Context(), id.AccountID)
	if err != nil {
		fail(c, "get profile", err)
		return
	}
	c.JSON(http.StatusOK, dto.ProfileRes{Status: api.StatusSuccess, Details: dto.NewAccountRes(account)})
}

// UpdateProfile は呼び出し元の氏名・所在地を部分更新します。
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	id, err := caller(c)
	if err != nil {
		fail(c, "update profile", err)
		return
	}
	var req dto.UpdateProfileReq
	if err := bindJSON(c, &req, nil); err != nil {
		fail(c, "update profile", err)
		return
	}

	changes := entity.ProfileChanges{FirstName: req.FirstName, LastName: req.LastName}
	if req.Location != nil {
		loc := entity.Location(*req.Location)
		changes.Location = &loc
	}

	account, err := h.accounts.UpdateProfile(c.Request.Context(), id.AccountID, changes)
	if err != nil {
		fail(c, "update profile", err)
		return
	}
	c.JSON(http.StatusOK, dto.UserRes{Status: api.StatusSuccess, User: dto.NewAccountRes(account)})
}

// UpdateStatus は呼び出し元アカウントを有効化・無効化します。
func (h *AccountHandler) UpdateStatus(c *gin.Context) {
	id, err := caller(c)
	if err != nil {
		fail(c, "update status", err)
		return
	}
	var req dto.UpdateStatusReq
	if err := bindJSON(c, &req, map[string]string{"isActive": domain.MsgInvalidStatus}); err != nil {
		fail(c, "update status", err)
		return
	}
	if req.IsActive == nil {
		fail(c, "update status", domain.Validation(domain.MsgInvalidStatus))
		return
	}

	msg, err := h.accounts.SetActiveStatus(c.Request.Context(), id.AccountID, *req.IsActive)
	if err != nil {
		fail(c, "update status", err)
		return
	}
	slog.Info("account status changed", "account_id", id.AccountID, "is_active", *req.IsActive, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, api.MessageResponse{Status: api.StatusSuccess, Message: msg})
}

// UpdateRole はアカウントのロールを変更します（管理者のみ）。
// accountId を省略した場合は呼び出し元自身が対象になります。
func (h *AccountHandler) UpdateRole(c *gin.Context) {
	id, err := caller(c)
	if err != nil {
		fail(c, "update role", err)
		return
	}
	var req dto.UpdateRoleReq
	if err := bindJSON(c, &req, nil); err != nil {
		fail(c, "update role", err)
		return
	}

	target := req.AccountID
	if target == "" {
		target = id.AccountID
	}

	account, err := h.accounts.UpdateRole(c.Request.Context(), target, req.NewRole)
	if err != nil {
		fail(c, "update role", err)
		return
	}
	slog.Info("account role changed", "account_id", target, "role", account.Role, "by", id.AccountID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.UserRes{Status: api.StatusSuccess, User: dto.NewAccountRes(account)})
}

// ListAccounts は有効状態で絞り込んだアカウント一覧を返します（管理者のみ）。
// 絞り込み条件はクエリパラメータ status で指定します。
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	accounts, err := h.accounts.ListAccounts(c.Request.Context(), c.Query("status"))
	if err != nil {
		fail(c, "list accounts", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListRes(api.StatusSuccess, accounts))
}
