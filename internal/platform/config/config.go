// Package config はアプリケーション設定を環境変数（および任意の .env ファイル）から読み込みます。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"account_backend/internal/platform/db"
	"account_backend/internal/platform/redis"
)

const EnvDevelopment = "development"

// ErrMissingSecret は開発環境以外で JWT_SECRET が未設定の場合に返されます。
var ErrMissingSecret = errors.New("JWT_SECRET must be set outside development")

// Config は起動時に一度だけ読み込まれる設定です。
type Config struct {
	AppEnv          string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	JWTSecret       string
	JWTTTL          time.Duration
	BcryptCost      int
	CacheTTL        time.Duration
	ShutdownTimeout time.Duration
	DB              db.Config
	Redis           redis.Config
}

// IsDevelopment は開発環境かどうかを返します。
func (c Config) IsDevelopment() bool {
	return c.AppEnv == EnvDevelopment
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", time.Hour)
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("CACHE_TTL", 5*time.Minute)
	v.SetDefault("SHUTDOWN_TIMEOUT", 10*time.Second)

	v.SetDefault("DB_DRIVER", db.DriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "accounts")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_SQLITE_PATH", "accounts.db")
	v.SetDefault("DB_CONNECT_TIMEOUT", 60*time.Second)
	v.SetDefault("RUN_MIGRATIONS", false)

	v.SetDefault("REDIS_HOST", "")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
}

// Load は .env（存在する場合）を読み込んだ上で、環境変数から設定を構築します。
// 既に設定済みの環境変数は .env の値で上書きされません。
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load env file: %w", err)
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return v
}

// FromViper はviperインスタンスから設定を取り出して検証します。
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		AppEnv:          v.GetString("APP_ENV"),
		HTTPAddr:        v.GetString("HTTP_ADDR"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogFormat:       strings.ToLower(v.GetString("LOG_FORMAT")),
		JWTSecret:       v.GetString("JWT_SECRET"),
		JWTTTL:          v.GetDuration("JWT_TTL"),
		BcryptCost:      v.GetInt("BCRYPT_COST"),
		CacheTTL:        v.GetDuration("CACHE_TTL"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		DB: db.Config{
			Driver:         strings.ToLower(v.GetString("DB_DRIVER")),
			Host:           v.GetString("DB_HOST"),
			Port:           v.GetString("DB_PORT"),
			User:           v.GetString("DB_USER"),
			Password:       v.GetString("DB_PASSWORD"),
			Name:           v.GetString("DB_NAME"),
			SSLMode:        v.GetString("DB_SSLMODE"),
			SQLitePath:     v.GetString("DB_SQLITE_PATH"),
			ConnectTimeout: v.GetDuration("DB_CONNECT_TIMEOUT"),
			RunMigrations:  v.GetBool("RUN_MIGRATIONS"),
		},
		Redis: redis.Config{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate は設定値の整合性を検証します。
func (c Config) Validate() error {
	if c.JWTSecret == "" && !c.IsDevelopment() {
		return ErrMissingSecret
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive, got %s", c.JWTTTL)
	}
	switch c.DB.Driver {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		return fmt.Errorf("%w: %q", db.ErrUnknownDriver, c.DB.Driver)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}
