package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/gct-reporter/console/pkg/logger"
)

// ErrNotFound はセッションIDに対応するトークンが無いことを表す。
var ErrNotFound = errors.New("session: token not found")

// ErrNoSession はコンテキストにセッションIDが無いことを表す。
var ErrNoSession = errors.New("session: no session id in context")

// Store はセッションIDをキーにトークンを保存する。
type Store interface {
	// Get はトークンを返す。存在しなければErrNotFound。
	Get(ctx context.Context, id string) (string, error)
	// Put はトークンを保存する。既存の値は上書きする。
	Put(ctx context.Context, id, token string) error
	// Delete はトークンを削除する。存在しなくてもエラーにしない。
	Delete(ctx context.Context, id string) error
}

// Manager はコンテキスト上のセッションに対するトークン操作をまとめる。
type Manager struct {
	store     Store
	defaultID string
}

// Option はManagerの生成時設定。
type Option func(*Manager)

// WithDefaultID はコンテキストにセッションIDが無い場合に使うIDを設定する。
// 利用者が一人だけのクライアント（CLIやテスト）向け。
func WithDefaultID(id string) Option {
	return func(m *Manager) {
		m.defaultID = id
	}
}

// NewManager は新しいManagerを生成する。
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{store: store}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Token は現在のセッションのトークンを返す。無ければ空文字列。
// 有効性は検証せず、存在だけを扱う。
func (m *Manager) Token(ctx context.Context) string {
	id, ok := m.sessionID(ctx)
	if !ok {
		return ""
	}
	token, err := m.store.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log := logger.Get()
			log.Warn().Err(err).Msg("セッショントークンの読み取りに失敗")
		}
		return ""
	}
	return token
}

// Save はログイン成功時に現在のセッションへトークンを保存する。
func (m *Manager) Save(ctx context.Context, token string) error {
	id, ok := m.sessionID(ctx)
	if !ok {
		return ErrNoSession
	}
	if err := m.store.Put(ctx, id, token); err != nil {
		return fmt.Errorf("セッショントークンの保存に失敗: %w", err)
	}
	return nil
}

// Clear はログアウト時や401応答時に現在のセッションのトークンを削除する。
// セッションIDが無い場合は何もしない。
func (m *Manager) Clear(ctx context.Context) error {
	id, ok := m.sessionID(ctx)
	if !ok {
		return nil
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("セッショントークンの削除に失敗: %w", err)
	}
	return nil
}

func (m *Manager) sessionID(ctx context.Context) (string, bool) {
	if id, ok := IDFromContext(ctx); ok {
		return id, true
	}
	return m.defaultID, m.defaultID != ""
}

// contextKey はコンテキストキーの型。
type contextKey string

// contextKeySessionID はコンテキストにセッションIDを格納するためのキー。
const contextKeySessionID contextKey = "session_id"

// WithID はコンテキストにセッションIDを設定する。
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKeySessionID, id)
}

// IDFromContext はコンテキストからセッションIDを取得する。
func IDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKeySessionID).(string)
	return id, ok && id != ""
}
