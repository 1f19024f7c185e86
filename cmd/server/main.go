package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"account_backend/internal/app/di"
	"account_backend/internal/app/router"
	accounthandler "account_backend/internal/feature/account/transport/handler"
	accountusecase "account_backend/internal/feature/account/usecase"
	"account_backend/internal/platform/config"
	"account_backend/internal/platform/db"
	platformhandler "account_backend/internal/platform/http/handler"
	jwtmw "account_backend/internal/platform/jwt"
	"account_backend/internal/platform/logger"
	"account_backend/internal/platform/metrics"
	"account_backend/internal/platform/password"
	infraredis "account_backend/internal/platform/redis"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(logger.New(os.Stdout, cfg.LogFormat, cfg.LogLevel))

	if cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET is not set. Using an insecure development secret.")
		cfg.JWTSecret = "development-only-secret"
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// db
	conn, err := db.Open(cfg.DB)
	if err != nil {
		return err
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("failed to close db", "error", err)
		}
	}()
	if cfg.DB.RunMigrations {
		if err := db.Migrate(conn, di.Models()...); err != nil {
			return err
		}
		slog.Info("migrations applied")
	}

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(ctx, cfg.Redis); err != nil {
		slog.Warn("Redis unavailable. Running without cache.", "error", err)
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	// Metrics
	m, err := metrics.New()
	if err != nil {
		return err
	}

	// Token / Hasher
	tokens, err := jwtmw.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return err
	}
	hasher := password.NewBcryptHasher(cfg.BcryptCost)

	// Repository / Usecase / Handler
	accountRepo := di.NewAccountRepository(conn, rdb, cfg.CacheTTL)
	accountUC := accountusecase.NewAccountUsecase(accountRepo, hasher, tokens)
	accountH := accounthandler.NewAccountHandler(accountUC, m)

	checks := map[string]platformhandler.Check{"db": sqlDB.PingContext}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	r := router.NewRouter(router.Deps{
		Accounts:  accountH,
		Gate:      jwtmw.NewGate(tokens),
		Readiness: platformhandler.NewReadiness(2*time.Second, checks),
		Metrics:   m,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(slog.Default().Handler(), slog.LevelError),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting HTTP server", "address", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received, starting graceful shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return m.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("server shut down complete")
	return nil
}
