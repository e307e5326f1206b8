// 開発用モックAPIのエントリポイント。
// コンソールが呼び出すバックエンドAPIと同じ契約の応答を返す。
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/gct-reporter/console/internal/config"
	"github.com/gct-reporter/console/internal/mockapi"
	"github.com/gct-reporter/console/pkg/logger"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "モックAPIの起動に失敗: %v\n", err)
		os.Exit(1)
	}
}

// run は設定を読み込んでモックAPIを起動する。戻る前にストアを閉じる。
func run(ctx context.Context) error {
	_ = godotenv.Load()

	cfg, err := config.LoadMockAPI(ctx)
	if err != nil {
		return fmt.Errorf("設定の読み込みに失敗: %w", err)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "mockapi",
	})

	server, err := mockapi.NewServer(ctx, mockapi.Config{
		Port:          cfg.Port,
		DSN:           cfg.DSN,
		JWTSecret:     cfg.JWTSecret,
		AdminUsername: cfg.AdminUsername,
		AdminPassword: cfg.AdminPassword,
		CORSOrigins:   cfg.CORSOrigins,
	})
	if err != nil {
		return fmt.Errorf("モックAPIサーバーの初期化に失敗: %w", err)
	}
	defer server.Close()

	log.Info().Str("port", cfg.Port).Str("dsn", cfg.DSN).Msg("モックAPIを起動します")
	return server.Run()
}
