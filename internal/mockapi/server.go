package mockapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gct-reporter/console/internal/api"
	"github.com/gct-reporter/console/pkg/envelope"
	"github.com/gct-reporter/console/pkg/logger"
	"github.com/gct-reporter/console/pkg/middleware"
	"github.com/gct-reporter/console/pkg/validate"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// Config はモックAPIサーバーの設定。
type Config struct {
	// Port はリッスンポート。
	Port string
	// DSN はSQLiteの接続文字列。
	DSN string
	// JWTSecret はJWT署名用の秘密鍵。
	JWTSecret string
	// AdminUsername は初期管理者のユーザー名。
	AdminUsername string
	// AdminPassword は初期管理者のパスワード。
	AdminPassword string
	// CORSOrigins はCORSを許可するオリジン。
	CORSOrigins []string
	// BcryptCost はパスワードハッシュのコスト。0なら既定値。
	BcryptCost int
}

// Server はモックAPIのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// store はユーザーとレポートのストア。
	store *Store
	// jwtSecret はJWT署名用の秘密鍵。
	jwtSecret string
	// validator はリクエストの検証器。
	validator *validate.Validator
	// bcryptCost はパスワードハッシュのコスト。
	bcryptCost int
}

// NewServer は新しいモックAPIサーバーを生成する。
// ストアが空なら初期管理者とサンプルレポートを登録する。
func NewServer(ctx context.Context, cfg Config) (*Server, error) {
	store, err := OpenStore(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}

	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.CORSOrigins))

	s := &Server{
		router:     router,
		port:       cfg.Port,
		store:      store,
		jwtSecret:  cfg.JWTSecret,
		validator:  validate.New(),
		bcryptCost: cost,
	}
	if err := s.seed(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		store.Close()
		return nil, err
	}
	s.setupRoutes()

	return s, nil
}

// Handler はHTTPハンドラを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// Close はストアを閉じる。
func (s *Server) Close() error {
	return s.store.Close()
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	v1 := s.router.Group("/api/v1")

	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, envelope.OK(gin.H{"status": "UP", "message": "GCT Report Generator is running"}))
	})

	// 認証エンドポイント
	auth := v1.Group("/auth")
	{
		auth.POST("/login", s.handleLogin())
		authed := auth.Group("")
		authed.Use(middleware.JWTAuth(s.jwtSecret, s.store))
		authed.POST("/logout", s.handleLogout())
		authed.GET("/current", s.handleCurrentUser())
		authed.POST("/change-password", s.handleChangePassword())
	}

	// レポート
	reports := v1.Group("/reports")
	reports.Use(middleware.JWTAuth(s.jwtSecret, s.store))
	{
		reports.GET("/check-name", s.handleCheckReportName())
	}

	// ユーザー管理（管理者のみ）
	users := v1.Group("/users")
	users.Use(middleware.JWTAuth(s.jwtSecret, s.store), middleware.RequireRole(api.RoleAdmin))
	{
		users.GET("", s.handleListUsers())
		users.POST("", s.handleCreateUser())
		users.GET("/:id", s.handleGetUser())
		users.PUT("/:id", s.handleUpdateUser())
		users.DELETE("/:id", s.handleDeleteUser())
		users.PATCH("/:id/status", s.handleSetUserStatus())
	}
}

// seed はストアが空のときに初期データを登録する。
func (s *Server) seed(ctx context.Context, adminUsername, adminPassword string) error {
	n, err := s.store.CountUsers(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	hash, err := s.hashPassword(adminPassword)
	if err != nil {
		return err
	}
	admin, err := s.store.CreateUser(ctx, adminUsername, hash, api.RoleAdmin, true)
	if err != nil {
		return fmt.Errorf("初期管理者の作成に失敗: %w", err)
	}
	for _, name := range []string{"销售日报", "库存月报"} {
		if err := s.store.CreateReport(ctx, name, "", admin.ID); err != nil {
			return err
		}
	}

	log := logger.Get()
	log.Info().Str("username", adminUsername).Msg("初期管理者を作成")
	return nil
}

func (s *Server) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("パスワードのハッシュ化に失敗: %w", err)
	}
	return string(hash), nil
}

// bindJSON はリクエストボディを読み取って検証する。失敗時は400を返してfalseを返す。
func (s *Server) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, envelope.Fail(http.StatusBadRequest, validate.MessageInvalid))
		return false
	}
	if err := s.validator.Struct(dst); err != nil {
		var ve *validate.Error
		if errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, envelope.Envelope[map[string]string]{
				Code:    http.StatusBadRequest,
				Message: validate.MessageInvalid,
				Data:    ve.Map(),
			})
			return false
		}
		c.JSON(http.StatusBadRequest, envelope.Fail(http.StatusBadRequest, validate.MessageInvalid))
		return false
	}
	return true
}

// businessError は業務エラーを400のエンベロープで返す。
func businessError(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, envelope.Fail(http.StatusBadRequest, message))
}

// internalError は内部エラーをログに出力し、500のエンベロープで返す。
func internalError(c *gin.Context, err error) {
	log := logger.Get()
	log.Error().Err(err).Str("request_id", middleware.GetRequestID(c)).Msg("内部エラー")
	c.JSON(http.StatusInternalServerError, envelope.Fail(http.StatusInternalServerError, middleware.MessageInternalError))
}
