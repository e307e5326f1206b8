package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPrefix = "gct:session:"
	redisPingTimeout   = 5 * time.Second
)

// RedisStore はRedisにトークンを保存するStore。
// 複数のコンソールインスタンスでセッションを共有する場合に使う。
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// ConnectRedis はRedisクライアントを生成し、pingで疎通を確認する。
func ConnectRedis(ctx context.Context, addr string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// NewRedisStore はRedisStoreを生成する。ttlが0以下なら期限なしで保存する。
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, prefix: defaultRedisPrefix}
}

// Get はトークンを返す。
func (s *RedisStore) Get(ctx context.Context, id string) (string, error) {
	token, err := s.client.Get(ctx, s.prefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("トークンの取得に失敗: %w", err)
	}
	return token, nil
}

// Put はトークンを保存する。
func (s *RedisStore) Put(ctx context.Context, id, token string) error {
	if err := s.client.Set(ctx, s.prefix+id, token, s.ttl).Err(); err != nil {
		return fmt.Errorf("トークンの保存に失敗: %w", err)
	}
	return nil
}

// Delete はトークンを削除する。
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.prefix+id).Err(); err != nil {
		return fmt.Errorf("トークンの削除に失敗: %w", err)
	}
	return nil
}
