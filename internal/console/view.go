package console

import (
	"embed"
	"html/template"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
)

//go:embed templates/*.html
var templateFS embed.FS

// viewNames はテンプレートを持つ画面の一覧。
var viewNames = []string{"login", "dashboard", "users", "user", "reports", "password", "notfound"}

// views は画面名からテンプレートへの対応。
type views map[string]*template.Template

// parseViews は共通レイアウトと各画面のテンプレートを読み込む。
func parseViews() (views, error) {
	vs := make(views, len(viewNames))
	for _, name := range viewNames {
		t, err := template.New("layout.html").ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, err
		}
		vs[name] = t
	}
	return vs, nil
}

// viewData はテンプレートに渡すデータ。
type viewData struct {
	Title    string
	LoggedIn bool
	Errors   []string
	Notices  []string
	Data     any
}

// render は画面を描画する。
// ガードがタイトルを設定していなければアプリ名をタイトルにする。
func (s *Server) render(c *gin.Context, status int, view string, data any) {
	p := currentPage(c)
	title := p.getTitle()
	if title == "" {
		title = s.cfg.AppTitle
	}

	c.Render(status, render.HTML{
		Template: s.views[view],
		Name:     "layout.html",
		Data: viewData{
			Title:    title,
			LoggedIn: s.sessions.Token(c.Request.Context()) != "",
			Errors:   p.errors.Messages(),
			Notices:  p.getNotices(),
			Data:     data,
		},
	})
}
