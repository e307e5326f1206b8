// Package config は環境変数からコンソールとモックAPIの設定を読み込む。
package config

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// セッションストアの種類。
const (
	SessionDriverMemory = "memory"
	SessionDriverSQLite = "sqlite"
	SessionDriverRedis  = "redis"
)

// Console はコンソールサーバーの設定。
type Console struct {
	Port     string `env:"PORT, default=5173"`
	Env      string `env:"ENV, default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// APIBaseURL はバックエンドのベースURL。
	APIBaseURL string        `env:"API_BASE_URL, default=http://localhost:8080"`
	APITimeout time.Duration `env:"API_TIMEOUT, default=10s"`
	// AppTitle は文書タイトルの接尾辞。
	AppTitle    string   `env:"APP_TITLE, default=GCT Reporter"`
	CORSOrigins []string `env:"CORS_ORIGINS, default=http://localhost:5173"`

	Session SessionConfig
}

// SessionConfig はセッショントークンの保存先の設定。
type SessionConfig struct {
	Driver       string        `env:"SESSION_DRIVER, default=memory"`
	SQLitePath   string        `env:"SESSION_SQLITE_PATH, default=console.db"`
	RedisAddr    string        `env:"REDIS_ADDR, default=localhost:6379"`
	RedisDB      int           `env:"REDIS_DB, default=0"`
	TTL          time.Duration `env:"SESSION_TTL, default=24h"`
	CookieSecure bool          `env:"COOKIE_SECURE, default=false"`
}

// MockAPI はモックAPIサーバーの設定。
type MockAPI struct {
	Port     string `env:"PORT, default=8080"`
	Env      string `env:"ENV, default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	DSN           string   `env:"DATABASE_DSN, default=:memory:"`
	JWTSecret     string   `env:"JWT_SECRET, default=dev-secret-key"`
	AdminUsername string   `env:"ADMIN_USERNAME, default=admin"`
	AdminPassword string   `env:"ADMIN_PASSWORD, default=admin123"`
	CORSOrigins   []string `env:"CORS_ORIGINS, default=http://localhost:5173"`
}

// IsDevelopment は開発環境かどうかを返す。
func (c *Console) IsDevelopment() bool {
	return c.Env == "development"
}

// IsDevelopment は開発環境かどうかを返す。
func (c *MockAPI) IsDevelopment() bool {
	return c.Env == "development"
}

// LoadConsole は環境変数からコンソールの設定を読み込む。
func LoadConsole(ctx context.Context) (*Console, error) {
	return loadConsole(ctx, envconfig.OsLookuper())
}

func loadConsole(ctx context.Context, l envconfig.Lookuper) (*Console, error) {
	var cfg Console
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: コンソール設定の読み込みに失敗: %w", err)
	}
	drivers := []string{SessionDriverMemory, SessionDriverSQLite, SessionDriverRedis}
	if !slices.Contains(drivers, cfg.Session.Driver) {
		return nil, fmt.Errorf("config: SESSION_DRIVER=%q は未対応 (%v)", cfg.Session.Driver, drivers)
	}
	if cfg.APITimeout <= 0 {
		return nil, fmt.Errorf("config: API_TIMEOUT は正の値が必要: %s", cfg.APITimeout)
	}
	return &cfg, nil
}

// LoadMockAPI は環境変数からモックAPIの設定を読み込む。
func LoadMockAPI(ctx context.Context) (*MockAPI, error) {
	return loadMockAPI(ctx, envconfig.OsLookuper())
}

func loadMockAPI(ctx context.Context, l envconfig.Lookuper) (*MockAPI, error) {
	var cfg MockAPI
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: モックAPI設定の読み込みに失敗: %w", err)
	}
	if len(cfg.AdminPassword) < 6 {
		return nil, fmt.Errorf("config: ADMIN_PASSWORD は6文字以上が必要")
	}
	return &cfg, nil
}
