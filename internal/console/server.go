package console

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gct-reporter/console/internal/api"
	"github.com/gct-reporter/console/internal/router"
	"github.com/gct-reporter/console/pkg/httpclient"
	"github.com/gct-reporter/console/pkg/logger"
	"github.com/gct-reporter/console/pkg/middleware"
	"github.com/gct-reporter/console/pkg/session"
	"github.com/gct-reporter/console/pkg/validate"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config はコンソールサーバーの設定。
type Config struct {
	// Port はリッスンポート。
	Port string
	// APIBaseURL はバックエンドのベースURL。
	APIBaseURL string
	// APITimeout はバックエンド呼び出しのタイムアウト。
	APITimeout time.Duration
	// AppTitle は文書タイトルの接尾辞。
	AppTitle string
	// CORSOrigins はCORSを許可するオリジン。
	CORSOrigins []string
	// CookieSecure はセッションCookieにSecure属性を付けるかどうか。
	CookieSecure bool
	// SessionTTL はセッションCookieの有効期間。
	SessionTTL time.Duration
}

// Server はコンソールのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// cfg はサーバー設定。
	cfg Config
	// sessions はセッショントークンの管理。
	sessions *session.Manager
	// api はバックエンドAPIクライアント。
	api *api.Client
	// routes は画面のルート表。
	routes router.Table
	// guard はナビゲーションガード。
	guard *router.Guard
	// views は画面ごとのテンプレート。
	views views
	// validator はフォーム入力の検証器。
	validator *validate.Validator
	// proxyClient は/api/*の転送に使うHTTPクライアント。
	proxyClient *http.Client
}

// NewServer は新しいコンソールサーバーを生成する。
// Gateway Clientにはセッションのトークン付与、リクエストID伝播、
// 401応答時のトークン破棄を組み込む。
func NewServer(cfg Config, sessions *session.Manager) (*Server, error) {
	if cfg.APITimeout <= 0 {
		cfg.APITimeout = httpclient.DefaultTimeout
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.AppTitle == "" {
		cfg.AppTitle = router.DefaultAppTitle
	}

	vs, err := parseViews()
	if err != nil {
		return nil, fmt.Errorf("テンプレートの読み込みに失敗: %w", err)
	}

	hc := httpclient.New(cfg.APIBaseURL,
		httpclient.WithTimeout(cfg.APITimeout),
		httpclient.WithNotifier(httpclient.NewLogNotifier(logger.Get())),
		httpclient.WithRequestInterceptors(
			httpclient.BearerToken(sessions),
			httpclient.RequestID(),
		),
		httpclient.WithResponseInterceptors(
			httpclient.ClearSessionOnUnauthorized(sessions),
		),
	)

	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORSOrigins))

	s := &Server{
		router:      r,
		cfg:         cfg,
		sessions:    sessions,
		api:         api.New(hc),
		routes:      router.DefaultTable(),
		views:       vs,
		validator:   validate.New(),
		proxyClient: &http.Client{Timeout: cfg.APITimeout},
	}
	s.guard = router.NewGuard(sessions, router.TitleSinkFunc(setPageTitle), router.WithAppTitle(cfg.AppTitle))
	s.setupRoutes()

	return s, nil
}

// Handler はHTTPハンドラを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.cfg.Port))
}

// setupRoutes はルーティングを設定する。
func (s *Server) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "console"})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 開発用のAPI転送。ブラウザから直接バックエンドを呼ぶ画面向け。
	s.router.Any("/api/*path", s.handleProxy())

	pages := s.router.Group("")
	pages.Use(s.withSession(), s.withPage())

	// ルート表の各画面にガードを適用する
	for _, rt := range s.routes {
		if rt.Redirect != "" {
			pages.GET(rt.Path, redirectTo(rt.Redirect))
			continue
		}
		pages.GET(rt.Path, s.guarded(), s.pageHandler(rt.View))
	}

	// フォーム送信。対応する画面と同じガードを通す。
	pages.POST("/login", s.guardedAs(router.RootPath), s.handleLogin())
	pages.POST("/logout", s.handleLogout())
	pages.POST("/password", s.guardedAs("/password"), s.handleChangePassword())
	pages.POST("/users", s.guardedAs("/users"), s.handleCreateUser())
	pages.POST("/users/:id", s.guardedAs("/users/:id"), s.handleUpdateUser())
	pages.POST("/users/:id/delete", s.guardedAs("/users/:id"), s.handleDeleteUser())
	pages.POST("/users/:id/status", s.guardedAs("/users/:id"), s.handleSetUserStatus())

	s.router.NoRoute(s.withSession(), s.withPage(), s.guarded(), func(c *gin.Context) {
		s.render(c, http.StatusNotFound, "notfound", nil)
	})
}

// pageHandler は画面名に対応するハンドラを返す。
func (s *Server) pageHandler(view string) gin.HandlerFunc {
	switch view {
	case "login":
		return s.handleLoginPage()
	case "dashboard":
		return s.handleDashboard()
	case "users":
		return s.handleUsers()
	case "user":
		return s.handleUserDetail()
	case "reports":
		return s.handleReports()
	case "password":
		return s.handlePasswordPage()
	default:
		return func(c *gin.Context) {
			s.render(c, http.StatusNotFound, "notfound", nil)
		}
	}
}

func redirectTo(path string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Redirect(http.StatusFound, path)
	}
}
