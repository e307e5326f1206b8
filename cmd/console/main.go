// 管理コンソールのエントリポイント。
// ブラウザからの画面遷移をナビゲーションガードで保護し、
// バックエンドAPIへの呼び出しをGateway Client経由で行う。
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/gct-reporter/console/internal/config"
	"github.com/gct-reporter/console/internal/console"
	"github.com/gct-reporter/console/pkg/logger"
	"github.com/gct-reporter/console/pkg/session"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "コンソールの起動に失敗: %v\n", err)
		os.Exit(1)
	}
}

// run は設定を読み込んでコンソールを起動する。戻る前にセッションストアを閉じる。
func run(ctx context.Context) error {
	// .envは任意。無ければ環境変数だけで動く。
	_ = godotenv.Load()

	cfg, err := config.LoadConsole(ctx)
	if err != nil {
		return fmt.Errorf("設定の読み込みに失敗: %w", err)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "console",
	})

	store, closeStore, err := openSessionStore(ctx, cfg.Session)
	if err != nil {
		return fmt.Errorf("セッションストアの初期化に失敗 (driver=%s): %w", cfg.Session.Driver, err)
	}
	defer closeStore()

	server, err := console.NewServer(console.Config{
		Port:         cfg.Port,
		APIBaseURL:   cfg.APIBaseURL,
		APITimeout:   cfg.APITimeout,
		AppTitle:     cfg.AppTitle,
		CORSOrigins:  cfg.CORSOrigins,
		CookieSecure: cfg.Session.CookieSecure,
		SessionTTL:   cfg.Session.TTL,
	}, session.NewManager(store))
	if err != nil {
		return fmt.Errorf("コンソールサーバーの初期化に失敗: %w", err)
	}

	log.Info().
		Str("port", cfg.Port).
		Str("api", cfg.APIBaseURL).
		Str("session", cfg.Session.Driver).
		Msg("コンソールを起動します")
	return server.Run()
}

// openSessionStore は設定に応じたセッションストアを開く。
func openSessionStore(ctx context.Context, cfg config.SessionConfig) (session.Store, func(), error) {
	switch cfg.Driver {
	case config.SessionDriverSQLite:
		store, err := session.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case config.SessionDriverRedis:
		client, err := session.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return session.NewRedisStore(client, cfg.TTL), func() { _ = client.Close() }, nil
	default:
		return session.NewMemoryStore(), func() {}, nil
	}
}
