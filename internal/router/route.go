package router

import "strings"

const (
	// RootPath はログイン画面のパス。
	RootPath = "/"
	// DashboardPath はログイン後の既定画面のパス。
	DashboardPath = "/dashboard"
)

// Meta はルートのメタ情報。
type Meta struct {
	// Title は表示タイトル。空ならタイトルを変更しない。
	Title string
	// RequiresAuth はセッショントークンが必要な画面かどうか。
	RequiresAuth bool
}

// Route はルート記述子。
type Route struct {
	// Path はパスパターン。":name" のセグメントはパラメータとして扱う。
	Path string
	// Name はルート名。
	Name string
	// View は描画する画面名。
	View string
	// Redirect が空でなければ、このルートは別パスへの別名になる。
	Redirect string
	// Meta はメタ情報。
	Meta Meta
}

// Location は解決済みの遷移元/遷移先。
type Location struct {
	// Path は実際のパス。
	Path string
	// Name はマッチしたルート名。ルートに一致しない場合は空。
	Name string
	// Meta はマッチしたルートのメタ情報。
	Meta Meta
	// Params はパスパラメータ。
	Params map[string]string
}

// Table はルートの一覧。先に登録されたものが優先される。
type Table []Route

// DefaultTable はコンソールのルート表。
func DefaultTable() Table {
	return Table{
		{Path: "/", Name: "Login", View: "login", Meta: Meta{Title: "用户登录"}},
		{Path: "/login", Redirect: "/"},
		{Path: "/dashboard", Name: "Dashboard", View: "dashboard", Meta: Meta{Title: "控制台", RequiresAuth: true}},
		{Path: "/users", Name: "Users", View: "users", Meta: Meta{Title: "用户管理", RequiresAuth: true}},
		{Path: "/users/:id", Name: "UserDetail", View: "user", Meta: Meta{Title: "用户详情", RequiresAuth: true}},
		{Path: "/reports", Name: "Reports", View: "reports", Meta: Meta{Title: "报表管理", RequiresAuth: true}},
		{Path: "/password", Name: "ChangePassword", View: "password", Meta: Meta{Title: "修改密码", RequiresAuth: true}},
	}
}

// Resolve はpathに一致するルートを探し、Locationを返す。
// 一致するルートが無い場合はPathだけを持つLocationとfalseを返す。
func (t Table) Resolve(path string) (Location, bool) {
	for _, r := range t {
		if params, ok := match(r.Path, path); ok {
			return Location{Path: path, Name: r.Name, Meta: r.Meta, Params: params}, true
		}
	}
	return Location{Path: path}, false
}

// Lookup はルート名からルートを探す。
func (t Table) Lookup(name string) (Route, bool) {
	for _, r := range t {
		if r.Name != "" && r.Name == name {
			return r, true
		}
	}
	return Route{}, false
}

// match はパターンとパスをセグメント単位で比較する。
func match(pattern, path string) (map[string]string, bool) {
	ps := segments(pattern)
	xs := segments(path)
	if len(ps) != len(xs) {
		return nil, false
	}

	var params map[string]string
	for i, p := range ps {
		if name, ok := strings.CutPrefix(p, ":"); ok {
			if xs[i] == "" {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string)
			}
			params[name] = xs[i]
			continue
		}
		if p != xs[i] {
			return nil, false
		}
	}
	return params, true
}

func segments(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
