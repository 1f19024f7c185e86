// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// noStore はヘルスチェック応答がキャッシュされないようにします。
func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
}

// Health はサービスヘルスチェック用の /healthz エンドポイントを処理します。
// 依存先の状態は確認せず、プロセスが応答できることのみを示します。
func Health(c *gin.Context) {
	noStore(c)

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
	default:
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// Check は依存先の疎通確認関数です。
type Check func(ctx context.Context) error

// Readiness は /readyz エンドポイントで依存先（DB・Redis）の疎通を確認します。
type Readiness struct {
	checks  map[string]Check
	timeout time.Duration
}

// NewReadiness はReadinessを生成します。nil のチェックは登録されません。
func NewReadiness(timeout time.Duration, checks map[string]Check) *Readiness {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	registered := make(map[string]Check, len(checks))
	for name, check := range checks {
		if check != nil {
			registered[name] = check
		}
	}
	return &Readiness{checks: registered, timeout: timeout}
}

// Ready はすべてのチェックが成功すれば200、1つでも失敗すれば503を返します。
// 失敗理由はログにのみ出力し、レスポンスにはチェック名と状態だけを含めます。
func (r *Readiness) Ready(c *gin.Context) {
	noStore(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), r.timeout)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(r.checks))
	for name, check := range r.checks {
		if err := check(ctx); err != nil {
			slog.Warn("readiness check failed", "check", name, "error", err)
			results[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "unavailable"
	}
	c.JSON(status, gin.H{"status": overall, "checks": results})
}
