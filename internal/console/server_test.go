package console

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gct-reporter/console/internal/mockapi"
	"github.com/gct-reporter/console/pkg/session"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testEnv はモックバックエンドとコンソールを組み合わせたテスト環境。
type testEnv struct {
	console *httptest.Server
	backend *httptest.Server
	store   *session.MemoryStore
}

// setupTestEnv はインメモリSQLiteのモックバックエンドに接続したコンソールを起動する。
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	backend, err := mockapi.NewServer(t.Context(), mockapi.Config{
		Port:          "0",
		DSN:           ":memory:",
		JWTSecret:     "test-secret",
		AdminUsername: "admin",
		AdminPassword: "admin123",
		BcryptCost:    bcrypt.MinCost,
	})
	if err != nil {
		t.Fatalf("mockapi.NewServer()でエラーが発生: %v", err)
	}
	t.Cleanup(func() { backend.Close() })
	api := httptest.NewServer(backend.Handler())
	t.Cleanup(api.Close)

	store := session.NewMemoryStore()
	return &testEnv{
		console: startConsole(t, api.URL, store),
		backend: api,
		store:   store,
	}
}

// startConsole はbaseURLをバックエンドとするコンソールを起動する。
func startConsole(t *testing.T, baseURL string, store session.Store) *httptest.Server {
	t.Helper()

	s, err := NewServer(Config{
		Port:       "0",
		APIBaseURL: baseURL,
		AppTitle:   "GCT Reporter",
	}, session.NewManager(store))
	if err != nil {
		t.Fatalf("NewServer()でエラーが発生: %v", err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// browser はCookieを保持し、リダイレクトを追わないテスト用クライアント。
type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

// result は一回の応答。
type result struct {
	status   int
	body     string
	location string
	header   http.Header
}

func newBrowser(t *testing.T, base string) *browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New()でエラーが発生: %v", err)
	}
	return &browser{
		t:    t,
		base: base,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (b *browser) do(req *http.Request) result {
	b.t.Helper()
	resp, err := b.client.Do(req)
	if err != nil {
		b.t.Fatalf("リクエストに失敗: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		b.t.Fatalf("レスポンスの読み取りに失敗: %v", err)
	}
	return result{
		status:   resp.StatusCode,
		body:     string(body),
		location: resp.Header.Get("Location"),
		header:   resp.Header,
	}
}

func (b *browser) get(path string) result {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodGet, b.base+path, nil)
	if err != nil {
		b.t.Fatalf("リクエストの作成に失敗: %v", err)
	}
	return b.do(req)
}

func (b *browser) post(path string, form url.Values) result {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodPost, b.base+path, strings.NewReader(form.Encode()))
	if err != nil {
		b.t.Fatalf("リクエストの作成に失敗: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

// login はフォームからログインし、ダッシュボードへのリダイレクトを確認する。
func (b *browser) login(username, password string) {
	b.t.Helper()
	res := b.post("/login", url.Values{"username": {username}, "password": {password}})
	if res.status != http.StatusFound || res.location != "/dashboard" {
		b.t.Fatalf("ログインに失敗: status=%d location=%q body=%s", res.status, res.location, res.body)
	}
}

// sessionID はCookieに保存されたセッションIDを返す。
func (b *browser) sessionID() string {
	b.t.Helper()
	u, err := url.Parse(b.base)
	if err != nil {
		b.t.Fatalf("URLの解析に失敗: %v", err)
	}
	for _, c := range b.client.Jar.Cookies(u) {
		if c.Name == cookieSession {
			return c.Value
		}
	}
	b.t.Fatal("セッションCookieが無い")
	return ""
}

// titleOf はHTMLから文書タイトルを取り出す。
func titleOf(body string) string {
	_, rest, ok := strings.Cut(body, "<title>")
	if !ok {
		return ""
	}
	title, _, _ := strings.Cut(rest, "</title>")
	return title
}

func TestHealth(t *testing.T) {
	t.Parallel()

	env := setupTestEnv(t)
	res := newBrowser(t, env.console.URL).get("/health")

	if res.status != http.StatusOK {
		t.Errorf("ステータスコード = %d, want %d", res.status, http.StatusOK)
	}
	if !strings.Contains(res.body, `"status":"ok"`) {
		t.Errorf("body = %s, want status ok", res.body)
	}
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	env := setupTestEnv(t)
	b := newBrowser(t, env.console.URL)
	b.login("admin", "admin123")

	res := b.get("/metrics")
	if res.status != http.StatusOK {
		t.Fatalf("ステータスコード = %d, want %d", res.status, http.StatusOK)
	}
	if !strings.Contains(res.body, "gct_console_api_client_requests_total") {
		t.Error("Gateway Clientのリクエスト数が公開されていない")
	}
}

func TestNotFound(t *testing.T) {
	t.Parallel()

	env := setupTestEnv(t)
	res := newBrowser(t, env.console.URL).get("/no-such-page")

	if res.status != http.StatusNotFound {
		t.Errorf("ステータスコード = %d, want %d", res.status, http.StatusNotFound)
	}
	if got := titleOf(res.body); got != "GCT Reporter" {
		t.Errorf("タイトル = %q, want %q", got, "GCT Reporter")
	}
}

func TestNavigationGuard(t *testing.T) {
	t.Parallel()

	env := setupTestEnv(t)

	t.Run("未ログインでは認証が必要な画面からログイン画面へリダイレクトされること", func(t *testing.T) {
		t.Parallel()

		b := newBrowser(t, env.console.URL)
		for _, path := range []string{"/dashboard", "/users", "/users/1", "/reports", "/password"} {
			res := b.get(path)
			if res.status != http.StatusFound {
				t.Errorf("%s: ステータスコード = %d, want %d", path, res.status, http.StatusFound)
			}
			if res.location != "/" {
				t.Errorf("%s: Location = %q, want %q", path, res.location, "/")
			}
		}
	})

	t.Run("未ログインではフォーム送信もリダイレクトされること", func(t *testing.T) {
		t.Parallel()

		b := newBrowser(t, env.console.URL)
		res := b.post("/users", url.Values{"username": {"alice"}, "password": {"secret1"}, "role": {"VIEWER"}})
		if res.status != http.StatusFound || res.location != "/" {
			t.Errorf("status=%d location=%q, want 302 /", res.status, res.location)
		}
	})

	t.Run("未ログインでログイン画面が表示されタイトルが設定されること", func(t *testing.T) {
		t.Parallel()

		res := newBrowser(t, env.console.URL).get("/")
		if res.status != http.StatusOK {
			t.Fatalf("ステータスコード = %d, want %d", res.status, http.StatusOK)
		}
		if got := titleOf(res.body); got != "用户登录 - GCT Reporter" {
			t.Errorf("タイトル = %q, want %q", got, "用户登录 - GCT Reporter")
		}
	})

	t.Run("/loginは/へリダイレクトされること", func(t *testing.T) {
		t.Parallel()

		res := newBrowser(t, env.console.URL).get("/login")
		if res.status != http.StatusFound || res.location != "/" {
			t.Errorf("status=%d location=%q, want 302 /", res.status, res.location)
		}
	})

	t.Run("ログイン済みでは/からダッシュボードへリダイレクトされること", func(t *testing.T) {
		t.Parallel()

		b := newBrowser(t, env.console.URL)
		b.login("admin", "admin123")

		res := b.get("/")
		if res.status != http.StatusFound || res.location != "/dashboard" {
			t.Errorf("status=%d location=%q, want 302 /dashboard", res.status, res.location)
		}
	})

	t.Run("ログイン済みでダッシュボードが表示されること", func(t *testing.T) {
		t.Parallel()

		b := newBrowser(t, env.console.URL)
		b.login("admin", "admin123")

		res := b.get("/dashboard")
		if res.status != http.StatusOK {
			t.Fatalf("ステータスコード = %d, want %d", res.status, http.StatusOK)
		}
		if got := titleOf(res.body); got != "控制台 - GCT Reporter" {
			t.Errorf("タイトル = %q, want %q", got, "控制台 - GCT Reporter")
		}
		if !strings.Contains(res.body, `<span class="username">admin</span>`) {
			t.Errorf("ユーザー名が表示されていない: %s", res.body)
		}
	})
}
