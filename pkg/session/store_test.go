package session

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
)

// newTestSQLiteStore はインメモリSQLiteを使うSQLiteStoreを生成する。
func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("インメモリDBの作成に失敗: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	store, err := NewSQLiteStore(context.Background(), db)
	if err != nil {
		t.Fatalf("SQLiteStoreの生成に失敗: %v", err)
	}
	return store
}

// testStoreContract はStore実装が満たすべき振る舞いを検証する。
func testStoreContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	id := uuid.New().String()

	if _, err := store.Get(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("未保存のGet() err = %v, want ErrNotFound", err)
	}

	if err := store.Put(ctx, id, "token-1"); err != nil {
		t.Fatalf("Put()でエラーが発生: %v", err)
	}
	if got, err := store.Get(ctx, id); err != nil || got != "token-1" {
		t.Fatalf("Get() = %q, %v, want token-1", got, err)
	}

	// 上書き
	if err := store.Put(ctx, id, "token-2"); err != nil {
		t.Fatalf("Put()でエラーが発生: %v", err)
	}
	if got, _ := store.Get(ctx, id); got != "token-2" {
		t.Errorf("上書き後のGet() = %q, want token-2", got)
	}

	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("Delete()でエラーが発生: %v", err)
	}
	if _, err := store.Get(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("削除後のGet() err = %v, want ErrNotFound", err)
	}

	// 存在しないIDの削除はエラーにならない
	if err := store.Delete(ctx, id); err != nil {
		t.Errorf("二回目のDelete()でエラーが発生: %v", err)
	}
}

// TestMemoryStore はMemoryStoreを検証する。
func TestMemoryStore(t *testing.T) {
	t.Parallel()
	testStoreContract(t, NewMemoryStore())
}

// TestSQLiteStore はSQLiteStoreを検証する。
func TestSQLiteStore(t *testing.T) {
	t.Parallel()

	t.Run("Storeの契約を満たすこと", func(t *testing.T) {
		t.Parallel()
		testStoreContract(t, newTestSQLiteStore(t))
	})

	t.Run("ファイルに保存したトークンが再オープン後も読めること", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		dsn := t.TempDir() + "/console.db"

		first, err := OpenSQLite(ctx, dsn)
		if err != nil {
			t.Fatalf("OpenSQLite()でエラーが発生: %v", err)
		}
		if err := first.Put(ctx, "local", "persisted"); err != nil {
			t.Fatalf("Put()でエラーが発生: %v", err)
		}
		if err := first.Close(); err != nil {
			t.Fatalf("Close()でエラーが発生: %v", err)
		}

		second, err := OpenSQLite(ctx, dsn)
		if err != nil {
			t.Fatalf("再オープンでエラーが発生: %v", err)
		}
		t.Cleanup(func() { second.Close() })

		if got, err := second.Get(ctx, "local"); err != nil || got != "persisted" {
			t.Errorf("Get() = %q, %v, want persisted", got, err)
		}
	})
}

// TestRedisStore はREDIS_ADDRが設定されている場合にRedisStoreを検証する。
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDRが設定されていないためスキップ")
	}
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))

	client, err := ConnectRedis(context.Background(), addr, db)
	if err != nil {
		t.Fatalf("Redisへの接続に失敗: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	testStoreContract(t, NewRedisStore(client, time.Minute))
}
