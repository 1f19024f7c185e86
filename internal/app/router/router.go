package router

import (
	"github.com/gin-gonic/gin"

	"account_backend/internal/feature/account/domain/entity"
	accounthandler "account_backend/internal/feature/account/transport/handler"
	platformhandler "account_backend/internal/platform/http/handler"
	jwtmw "account_backend/internal/platform/jwt"
	"account_backend/internal/platform/logger"
	"account_backend/internal/platform/metrics"
)

// Deps はルーター構築に必要な依存をまとめたものです。
// Metrics と Readiness は nil の場合、対応するエンドポイントを登録しません。
type Deps struct {
	Accounts  *accounthandler.AccountHandler
	Gate      *jwtmw.Gate
	Readiness *platformhandler.Readiness
	Metrics   *metrics.Metrics
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logger.RequestLogger())
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	// 導通確認用
	r.GET("/healthz", platformhandler.Health)
	r.HEAD("/healthz", platformhandler.Health)
	if d.Readiness != nil {
		r.GET("/readyz", d.Readiness.Ready)
	}

	users := r.Group("/api/users")
	{
		// 認証不要
		users.POST("/register", d.Accounts.Register)
		users.POST("/login", d.Accounts.Login)
	}

	// 認証必須のルート
	auth := users.Group("")
	auth.Use(d.Gate.RequireAuth())
	{
		auth.GET("/profile", d.Accounts.GetProfile)
		auth.PATCH("/update/profile", d.Accounts.UpdateProfile)
		auth.PATCH("/profile/update/status", d.Accounts.UpdateStatus)
	}

	// 管理者のみ
	admin := auth.Group("")
	admin.Use(jwtmw.RequireRole(entity.RoleAdmin))
	{
		admin.PATCH("/update/role", d.Accounts.UpdateRole)
		admin.GET("/users", d.Accounts.ListAccounts)
	}

	return r
}
