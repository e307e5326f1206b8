package session

import (
	"context"
	"sync"
)

// MemoryStore はプロセス内のマップにトークンを保持するStore。
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

// NewMemoryStore は空のMemoryStoreを生成する。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]string)}
}

// Get はトークンを返す。
func (s *MemoryStore) Get(_ context.Context, id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, ok := s.tokens[id]
	if !ok {
		return "", ErrNotFound
	}
	return token, nil
}

// Put はトークンを保存する。
func (s *MemoryStore) Put(_ context.Context, id, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[id] = token
	return nil
}

// Delete はトークンを削除する。
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens, id)
	return nil
}

// Len は保持しているセッション数を返す。
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.tokens)
}
