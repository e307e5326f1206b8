package session

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/gct-reporter/console/pkg/migration"
)

//go:embed migrations/*.sql
var migrations embed.FS

// SQLiteStore はSQLiteのsession_tokensテーブルにトークンを永続化するStore。
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite はdsnのSQLiteを開き、スキーマを適用したSQLiteStoreを返す。
// 例: "/data/console.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	store, err := NewSQLiteStore(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLiteStore は既存の接続にスキーマを適用してSQLiteStoreを返す。
func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	if err := migration.Run(ctx, db, migrations, "migrations"); err != nil {
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Get はトークンを返す。
func (s *SQLiteStore) Get(ctx context.Context, id string) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx, "SELECT token FROM session_tokens WHERE id = ?", id).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("トークンの取得に失敗: %w", err)
	}
	return token, nil
}

// Put はトークンを保存する。
func (s *SQLiteStore) Put(ctx context.Context, id, token string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session_tokens (id, token) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET token = excluded.token, updated_at = datetime('now')
	`, id, token)
	if err != nil {
		return fmt.Errorf("トークンの保存に失敗: %w", err)
	}
	return nil
}

// Delete はトークンを削除する。
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM session_tokens WHERE id = ?", id); err != nil {
		return fmt.Errorf("トークンの削除に失敗: %w", err)
	}
	return nil
}

// Close はデータベース接続を閉じる。
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
