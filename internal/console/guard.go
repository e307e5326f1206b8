package console

import (
	"net/http"
	"net/url"

	"github.com/gct-reporter/console/internal/router"
	"github.com/gin-gonic/gin"
)

// guarded は要求されたパスをルート表で解決し、ナビゲーションガードを適用する。
func (s *Server) guarded() gin.HandlerFunc {
	return func(c *gin.Context) {
		to, _ := s.routes.Resolve(c.Request.URL.Path)
		s.applyGuard(c, to)
	}
}

// guardedAs はフォーム送信を、patternのルートへの遷移としてガードに通す。
func (s *Server) guardedAs(pattern string) gin.HandlerFunc {
	var meta router.Meta
	var name string
	for _, rt := range s.routes {
		if rt.Path == pattern {
			meta, name = rt.Meta, rt.Name
			break
		}
	}
	return func(c *gin.Context) {
		s.applyGuard(c, router.Location{Path: pattern, Name: name, Meta: meta})
	}
}

func (s *Server) applyGuard(c *gin.Context, to router.Location) {
	d := s.guard.BeforeEach(c.Request.Context(), to, s.fromLocation(c))
	if !d.Allowed() {
		s.redirectWithFlash(c, d.Redirect)
		return
	}
	c.Next()
}

// fromLocation はRefererから遷移元を推定する。同一ホスト以外は無視する。
func (s *Server) fromLocation(c *gin.Context) router.Location {
	ref, err := url.Parse(c.GetHeader("Referer"))
	if err != nil || ref.Path == "" || (ref.Host != "" && ref.Host != c.Request.Host) {
		return router.Location{}
	}
	from, _ := s.routes.Resolve(ref.Path)
	return from
}

// unauthorized はバックエンドが401を返したときの処理。
// トークンはGateway Clientが既に破棄しているので、ログイン画面へ戻すだけでよい。
func (s *Server) unauthorized(c *gin.Context) {
	s.redirectWithFlash(c, router.RootPath)
}

// statusFor はAPIエラーを画面の応答ステータスに変換する。
func statusFor(status int) int {
	if status == 0 {
		return http.StatusBadGateway
	}
	return status
}
