package mockapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gct-reporter/console/internal/api"
	"github.com/gct-reporter/console/pkg/envelope"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupTestServer はインメモリSQLiteでテスト用のサーバーを構築する。
func setupTestServer(t *testing.T) *Server {
	t.Helper()

	s, err := NewServer(t.Context(), Config{
		Port:          "0",
		DSN:           ":memory:",
		JWTSecret:     "test-secret",
		AdminUsername: "admin",
		AdminPassword: "admin123",
		BcryptCost:    bcrypt.MinCost,
	})
	if err != nil {
		t.Fatalf("NewServer()でエラーが発生: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// doRequest はテスト用のHTTPリクエストを実行し、レスポンスを返すヘルパー関数。
func doRequest(s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Reader
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewReader(jsonBytes)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

// decode はレスポンスをエンベロープとして読む。
func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope.Envelope[T] {
	t.Helper()
	var env envelope.Envelope[T]
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("レスポンスボディのパースに失敗: %v (%s)", err, w.Body.String())
	}
	return env
}

// login はログインしてトークンを返す。
func login(t *testing.T, s *Server, username, password string) string {
	t.Helper()
	w := doRequest(s, http.MethodPost, "/api/v1/auth/login", "", api.LoginRequest{Username: username, Password: password})
	if w.Code != http.StatusOK {
		t.Fatalf("ログインに失敗: status=%d body=%s", w.Code, w.Body.String())
	}
	return decode[api.LoginResponse](t, w).Data.Token
}

// createUser は管理者としてユーザーを作成する。
func createUser(t *testing.T, s *Server, adminToken, username, role string) api.User {
	t.Helper()
	w := doRequest(s, http.MethodPost, "/api/v1/users", adminToken, api.CreateUserRequest{
		Username: username, Password: "secret1", Role: role,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("ユーザー作成に失敗: status=%d body=%s", w.Code, w.Body.String())
	}
	return decode[api.User](t, w).Data
}

// TestHealth はヘルスチェックを検証する。
func TestHealth(t *testing.T) {
	t.Parallel()

	s := setupTestServer(t)
	w := doRequest(s, http.MethodGet, "/api/v1/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
	}
	if env := decode[map[string]string](t, w); env.Data["status"] != "UP" {
		t.Errorf("status = %q, want %q", env.Data["status"], "UP")
	}
}

// TestLogin はログインを検証する。
func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("正しい資格情報でトークンが返ること", func(t *testing.T) {
		t.Parallel()

		s := setupTestServer(t)
		w := doRequest(s, http.MethodPost, "/api/v1/auth/login", "", api.LoginRequest{Username: "admin", Password: "admin123"})
		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}

		env := decode[api.LoginResponse](t, w)
		if env.Code != envelope.CodeSuccess {
			t.Errorf("code = %d, want %d", env.Code, envelope.CodeSuccess)
		}
		if env.Data.Token == "" || env.Data.Username != "admin" || env.Data.Role != api.RoleAdmin || env.Data.UserID != 1 {
			t.Errorf("data = %+v", env.Data)
		}
	})

	tests := []struct {
		name     string
		req      api.LoginRequest
		wantMsg  string
		setupFn  func(t *testing.T, s *Server)
		wantCode int
	}{
		{
			name:    "パスワードが違う場合は400が返ること",
			req:     api.LoginRequest{Username: "admin", Password: "wrong"},
			wantMsg: messageBadCredentials, wantCode: http.StatusBadRequest,
		},
		{
			name:    "存在しないユーザーは400が返ること",
			req:     api.LoginRequest{Username: "nobody", Password: "whatever"},
			wantMsg: messageBadCredentials, wantCode: http.StatusBadRequest,
		},
		{
			name:    "必須項目が空なら参数校验失败が返ること",
			req:     api.LoginRequest{Username: "admin"},
			wantMsg: "参数校验失败", wantCode: http.StatusBadRequest,
		},
		{
			name: "無効化されたユーザーは400が返ること",
			req:  api.LoginRequest{Username: "carol", Password: "secret1"},
			setupFn: func(t *testing.T, s *Server) {
				admin := login(t, s, "admin", "admin123")
				u := createUser(t, s, admin, "carol", api.RoleViewer)
				disabled := false
				if _, err := s.store.UpdateUser(t.Context(), u.ID, UserPatch{Enabled: &disabled}); err != nil {
					t.Fatalf("UpdateUser()でエラーが発生: %v", err)
				}
			},
			wantMsg: messageBadCredentials, wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := setupTestServer(t)
			if tt.setupFn != nil {
				tt.setupFn(t, s)
			}

			w := doRequest(s, http.MethodPost, "/api/v1/auth/login", "", tt.req)
			if w.Code != tt.wantCode {
				t.Errorf("ステータスコード = %d, want %d", w.Code, tt.wantCode)
			}
			env := decode[any](t, w)
			if env.Code != tt.wantCode || env.Message != tt.wantMsg {
				t.Errorf("envelope = {%d %q}, want {%d %q}", env.Code, env.Message, tt.wantCode, tt.wantMsg)
			}
		})
	}
}

// TestLogout はログアウトとトークン失効を検証する。
func TestLogout(t *testing.T) {
	t.Parallel()

	s := setupTestServer(t)
	token := login(t, s, "admin", "admin123")

	if w := doRequest(s, http.MethodGet, "/api/v1/auth/current", token, nil); w.Code != http.StatusOK {
		t.Fatalf("ログアウト前のステータスコード = %d, want %d", w.Code, http.StatusOK)
	}
	if w := doRequest(s, http.MethodPost, "/api/v1/auth/logout", token, nil); w.Code != http.StatusOK {
		t.Fatalf("ログアウトのステータスコード = %d, want %d", w.Code, http.StatusOK)
	}

	w := doRequest(s, http.MethodGet, "/api/v1/auth/current", token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("ログアウト後のステータスコード = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if env := decode[any](t, w); env.Message != "未登录或登录已过期" {
		t.Errorf("message = %q, want %q", env.Message, "未登录或登录已过期")
	}
}

// TestCurrentUser は現在のユーザー取得を検証する。
func TestCurrentUser(t *testing.T) {
	t.Parallel()

	t.Run("トークンのユーザー情報が返ること", func(t *testing.T) {
		t.Parallel()

		s := setupTestServer(t)
		w := doRequest(s, http.MethodGet, "/api/v1/auth/current", login(t, s, "admin", "admin123"), nil)
		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		env := decode[api.UserInfo](t, w)
		if env.Data.Username != "admin" || env.Data.Role != api.RoleAdmin || !env.Data.Enabled {
			t.Errorf("data = %+v", env.Data)
		}
	})

	t.Run("トークンが無い場合は401が返ること", func(t *testing.T) {
		t.Parallel()

		s := setupTestServer(t)
		if w := doRequest(s, http.MethodGet, "/api/v1/auth/current", "", nil); w.Code != http.StatusUnauthorized {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})
}

// TestChangePassword はパスワード変更を検証する。
func TestChangePassword(t *testing.T) {
	t.Parallel()

	t.Run("変更後は新しいパスワードでログインできること", func(t *testing.T) {
		t.Parallel()

		s := setupTestServer(t)
		token := login(t, s, "admin", "admin123")

		w := doRequest(s, http.MethodPost, "/api/v1/auth/change-password", token, api.ChangePasswordRequest{
			Username: "admin", OldPassword: "admin123", NewPassword: "newpass1", ConfirmPassword: "newpass1",
		})
		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード = %d, want %d (%s)", w.Code, http.StatusOK, w.Body.String())
		}

		login(t, s, "admin", "newpass1")
		if w := doRequest(s, http.MethodPost, "/api/v1/auth/login", "", api.LoginRequest{Username: "admin", Password: "admin123"}); w.Code != http.StatusBadRequest {
			t.Errorf("旧パスワードでのログインのステータスコード = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	tests := []struct {
		name     string
		req      api.ChangePasswordRequest
		wantCode int
		wantMsg  string
	}{
		{
			name:     "確認用パスワードが一致しない場合",
			req:      api.ChangePasswordRequest{Username: "admin", OldPassword: "admin123", NewPassword: "newpass1", ConfirmPassword: "newpass2"},
			wantCode: http.StatusBadRequest,
			wantMsg:  messagePasswordMismatch,
		},
		{
			name:     "旧パスワードが違う場合",
			req:      api.ChangePasswordRequest{Username: "admin", OldPassword: "wrong", NewPassword: "newpass1", ConfirmPassword: "newpass1"},
			wantCode: http.StatusBadRequest,
			wantMsg:  messageWrongOldPassword,
		},
		{
			name:     "新しいパスワードが短すぎる場合",
			req:      api.ChangePasswordRequest{Username: "admin", OldPassword: "admin123", NewPassword: "123", ConfirmPassword: "123"},
			wantCode: http.StatusBadRequest,
			wantMsg:  "参数校验失败",
		},
		{
			name:     "他人のパスワードを変更しようとした場合",
			req:      api.ChangePasswordRequest{Username: "someone", OldPassword: "x", NewPassword: "newpass1", ConfirmPassword: "newpass1"},
			wantCode: http.StatusForbidden,
			wantMsg:  "无权限访问",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name+"はエラーが返ること", func(t *testing.T) {
			t.Parallel()

			s := setupTestServer(t)
			w := doRequest(s, http.MethodPost, "/api/v1/auth/change-password", login(t, s, "admin", "admin123"), tt.req)
			if w.Code != tt.wantCode {
				t.Errorf("ステータスコード = %d, want %d", w.Code, tt.wantCode)
			}
			if env := decode[any](t, w); env.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", env.Message, tt.wantMsg)
			}
		})
	}
}

// TestCheckReportName はレポート名の重複確認を検証する。
func TestCheckReportName(t *testing.T) {
	t.Parallel()

	s := setupTestServer(t)
	token := login(t, s, "admin", "admin123")

	tests := []struct {
		name   string
		query  string
		code   int
		exists bool
	}{
		{name: "登録済みの名前はexists=trueが返ること", query: "?name=%E9%94%80%E5%94%AE%E6%97%A5%E6%8A%A5", code: http.StatusOK, exists: true},
		{name: "未登録の名前はexists=falseが返ること", query: "?name=new-report", code: http.StatusOK, exists: false},
		{name: "名前が無い場合は400が返ること", query: "", code: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := doRequest(s, http.MethodGet, "/api/v1/reports/check-name"+tt.query, token, nil)
			if w.Code != tt.code {
				t.Fatalf("ステータスコード = %d, want %d", w.Code, tt.code)
			}
			if tt.code == http.StatusOK {
				if env := decode[api.CheckNameResponse](t, w); env.Data.Exists != tt.exists {
					t.Errorf("exists = %v, want %v", env.Data.Exists, tt.exists)
				}
			}
		})
	}
}
