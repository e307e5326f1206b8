package mockapi

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gct-reporter/console/pkg/migration"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// timeLayout は日時の保存と応答に使う書式。
const timeLayout = "2006-01-02T15:04:05"

// ストアのエラー。
var (
	ErrUserNotFound  = errors.New("mockapi: user not found")
	ErrUsernameTaken = errors.New("mockapi: username already exists")
)

// User は保存されたユーザー。
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         string
	Enabled      bool
	CreatedAt    string
	UpdatedAt    string
}

// UserPatch はユーザーの部分更新。nilのフィールドは変更しない。
type UserPatch struct {
	PasswordHash *string
	Role         *string
	Enabled      *bool
}

// Store はSQLiteに保存するユーザー、レポート、失効トークンのストア。
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// OpenStore はSQLiteデータベースを開き、マイグレーションを適用する。
func OpenStore(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	// インメモリDBは接続ごとに別のDBになるため接続を一本に制限する
	db.SetMaxOpenConns(1)

	if err := migration.Run(ctx, db, migrations, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("マイグレーションに失敗: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close はデータベース接続を閉じる。
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) timestamp() string {
	return s.now().Format(timeLayout)
}

const userColumns = "id, username, password_hash, role, enabled, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(r rowScanner) (User, error) {
	var u User
	err := r.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.Enabled, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// ListUsers はユーザー一覧をID順に返す。keywordが空でなければユーザー名の部分一致で絞り込む。
func (s *Store) ListUsers(ctx context.Context, keyword string) ([]User, error) {
	query := "SELECT " + userColumns + " FROM users"
	var args []any
	if keyword != "" {
		query += ` WHERE username LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(keyword)+"%")
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗: %w", err)
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("ユーザーの読み取りに失敗: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetUser はIDでユーザーを取得する。
func (s *Store) GetUser(ctx context.Context, id int64) (User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("ユーザーの取得に失敗: %w", err)
	}
	return u, nil
}

// GetUserByUsername はユーザー名でユーザーを取得する。
func (s *Store) GetUserByUsername(ctx context.Context, username string) (User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE username = ?", username)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("ユーザーの取得に失敗: %w", err)
	}
	return u, nil
}

// CountUsers はユーザー数を返す。
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return 0, fmt.Errorf("ユーザー数の取得に失敗: %w", err)
	}
	return n, nil
}

// CreateUser はユーザーを作成する。ユーザー名が重複する場合はErrUsernameTakenを返す。
func (s *Store) CreateUser(ctx context.Context, username, passwordHash, role string, enabled bool) (User, error) {
	if _, err := s.GetUserByUsername(ctx, username); err == nil {
		return User{}, ErrUsernameTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return User{}, err
	}

	now := s.timestamp()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (username, password_hash, role, enabled, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		username, passwordHash, role, enabled, now, now)
	if err != nil {
		return User{}, fmt.Errorf("ユーザーの作成に失敗: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, fmt.Errorf("ユーザーIDの取得に失敗: %w", err)
	}
	return s.GetUser(ctx, id)
}

// UpdateUser はユーザーを部分更新する。
func (s *Store) UpdateUser(ctx context.Context, id int64, p UserPatch) (User, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return User{}, err
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Enabled != nil {
		u.Enabled = *p.Enabled
	}

	if _, err := s.db.ExecContext(ctx,
		"UPDATE users SET password_hash = ?, role = ?, enabled = ?, updated_at = ? WHERE id = ?",
		u.PasswordHash, u.Role, u.Enabled, s.timestamp(), id); err != nil {
		return User{}, fmt.Errorf("ユーザーの更新に失敗: %w", err)
	}
	return s.GetUser(ctx, id)
}

// DeleteUser はユーザーを削除する。
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("ユーザーの削除に失敗: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除件数の取得に失敗: %w", err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// CreateReport はレポートを登録する。
func (s *Store) CreateReport(ctx context.Context, name, description string, creatorID int64) error {
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO reports (name, description, creator_id, created_at) VALUES (?, ?, ?, ?)",
		name, description, creatorID, s.timestamp()); err != nil {
		return fmt.Errorf("レポートの作成に失敗: %w", err)
	}
	return nil
}

// ReportNameExists はレポート名が既に使われているかを返す。
func (s *Store) ReportNameExists(ctx context.Context, name string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reports WHERE name = ?", name).Scan(&n); err != nil {
		return false, fmt.Errorf("レポート名の確認に失敗: %w", err)
	}
	return n > 0, nil
}

// Revoke はトークンIDを失効リストに登録し、期限切れの行を掃除する。
func (s *Store) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if _, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO revoked_tokens (jti, expires_at) VALUES (?, ?)",
		jti, expiresAt.UTC().Format(timeLayout)); err != nil {
		return fmt.Errorf("トークンの失効登録に失敗: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM revoked_tokens WHERE expires_at < ?",
		s.now().UTC().Format(timeLayout)); err != nil {
		return fmt.Errorf("失効リストの掃除に失敗: %w", err)
	}
	return nil
}

// IsRevoked はトークンIDが失効済みかを返す。確認に失敗した場合は失効扱いにする。
func (s *Store) IsRevoked(ctx context.Context, jti string) bool {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM revoked_tokens WHERE jti = ?", jti).Scan(&n); err != nil {
		return true
	}
	return n > 0
}

// escapeLike はLIKEパターンの特殊文字をエスケープする。
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
