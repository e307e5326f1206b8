package console

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gct-reporter/console/pkg/httpclient"
	"github.com/gct-reporter/console/pkg/logger"
	"github.com/gct-reporter/console/pkg/middleware"
	"github.com/gct-reporter/console/pkg/session"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Cookie名。
const (
	cookieSession = "gct_session"
	cookieFlash   = "gct_flash"
)

// page は一回の画面表示に紐づく状態。
type page struct {
	mu sync.Mutex
	// title は文書タイトル。ガードが設定する。
	title string
	// errors はGateway Clientの通知と入力エラー。
	errors *httpclient.Recorder
	// notices は操作成功などの案内。
	notices []string
}

func (p *page) setTitle(title string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.title = title
}

func (p *page) getTitle() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.title
}

func (p *page) addNotice(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notices = append(p.notices, msg)
}

func (p *page) getNotices() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.notices...)
}

// pageContextKey はコンテキストにpageを格納するキーの型。
type pageContextKey struct{}

func pageFromContext(ctx context.Context) (*page, bool) {
	p, ok := ctx.Value(pageContextKey{}).(*page)
	return p, ok
}

// setPageTitle はガードのタイトル設定先。
func setPageTitle(ctx context.Context, title string) {
	if p, ok := pageFromContext(ctx); ok {
		p.setTitle(title)
	}
}

// withSession はセッションCookieからセッションIDを取り出してコンテキストに設定する。
// Cookieが無ければ新しいIDを発行する。
func (s *Server) withSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(cookieSession)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
		}
		// 有効期限を延長する
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cookieSession, id, int(s.cfg.SessionTTL.Seconds()), "/", "", s.cfg.CookieSecure, true)

		c.Request = c.Request.WithContext(session.WithID(c.Request.Context(), id))
		c.Next()
	}
}

// withPage はリクエスト単位の画面状態を用意する。
// 前の画面から引き継いだメッセージを取り込み、通知先とリクエストIDをコンテキストに設定する。
func (s *Server) withPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := &page{errors: &httpclient.Recorder{}}
		if f, ok := readFlash(c); ok {
			for _, msg := range f.Errors {
				p.errors.Notify(c.Request.Context(), httpclient.Notification{Message: msg})
			}
			for _, msg := range f.Notices {
				p.addNotice(msg)
			}
		}

		ctx := c.Request.Context()
		ctx = context.WithValue(ctx, pageContextKey{}, p)
		ctx = httpclient.ContextWithNotifier(ctx, p.errors)
		ctx = httpclient.WithRequestID(ctx, middleware.GetRequestID(c))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// currentPage はリクエストの画面状態を返す。
func currentPage(c *gin.Context) *page {
	if p, ok := pageFromContext(c.Request.Context()); ok {
		return p
	}
	return &page{errors: &httpclient.Recorder{}}
}

// flash はリダイレクト先の画面へ引き継ぐメッセージ。
type flash struct {
	Errors  []string `json:"e,omitempty"`
	Notices []string `json:"n,omitempty"`
}

// redirectWithFlash は現在の画面のメッセージを引き継いでリダイレクトする。
func (s *Server) redirectWithFlash(c *gin.Context, location string) {
	p := currentPage(c)
	f := flash{Errors: p.errors.Messages(), Notices: p.getNotices()}
	if len(f.Errors) > 0 || len(f.Notices) > 0 {
		raw, err := json.Marshal(f)
		if err == nil {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cookieFlash, base64.RawURLEncoding.EncodeToString(raw), 60, "/", "", s.cfg.CookieSecure, true)
		}
	}
	c.Redirect(http.StatusFound, location)
	c.Abort()
}

// readFlash は引き継がれたメッセージを読み、Cookieを削除する。
func readFlash(c *gin.Context) (flash, bool) {
	v, err := c.Cookie(cookieFlash)
	if err != nil || v == "" {
		return flash{}, false
	}
	c.SetCookie(cookieFlash, "", -1, "/", "", false, true)

	raw, err := base64.RawURLEncoding.DecodeString(v)
	if err != nil {
		return flash{}, false
	}
	var f flash
	if err := json.Unmarshal(raw, &f); err != nil {
		log := logger.Get()
		log.Debug().Err(err).Msg("フラッシュメッセージの解析に失敗")
		return flash{}, false
	}
	return f, true
}
