package router

import "context"

// DefaultAppTitle は文書タイトルの接尾辞。
const DefaultAppTitle = "GCT Reporter"

// TokenSource はセッショントークンの読み取り元。
type TokenSource interface {
	Token(ctx context.Context) string
}

// TitleSink は文書タイトルの設定先。
type TitleSink interface {
	SetTitle(ctx context.Context, title string)
}

// TitleSinkFunc は関数をTitleSinkとして扱うためのアダプタ。
type TitleSinkFunc func(ctx context.Context, title string)

// SetTitle はf(ctx, title)を呼ぶ。
func (f TitleSinkFunc) SetTitle(ctx context.Context, title string) {
	f(ctx, title)
}

// Decision はガードの判定結果。Redirectが空なら遷移を許可する。
type Decision struct {
	Redirect string
}

// Allowed は遷移が許可されたかどうかを返す。
func (d Decision) Allowed() bool {
	return d.Redirect == ""
}

// Guard はナビゲーションガード。
type Guard struct {
	tokens   TokenSource
	titles   TitleSink
	appTitle string
}

// GuardOption はGuardの生成時設定。
type GuardOption func(*Guard)

// WithAppTitle は文書タイトルの接尾辞を設定する。空なら接尾辞を付けない。
func WithAppTitle(title string) GuardOption {
	return func(g *Guard) {
		g.appTitle = title
	}
}

// NewGuard は新しいGuardを生成する。
func NewGuard(tokens TokenSource, titles TitleSink, opts ...GuardOption) *Guard {
	g := &Guard{tokens: tokens, titles: titles, appTitle: DefaultAppTitle}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// BeforeEach は遷移toの前に評価される。fromは判定には使わない。
// トークンは存在だけを確認し、有効性はバックエンドの401応答に委ねる。
func (g *Guard) BeforeEach(ctx context.Context, to, _ Location) Decision {
	token := g.tokens.Token(ctx)

	// タイトルは認証判定とは無関係に遷移先のものを設定する
	if to.Meta.Title != "" {
		g.titles.SetTitle(ctx, g.documentTitle(to.Meta.Title))
	}

	if to.Meta.RequiresAuth && token == "" {
		return Decision{Redirect: RootPath}
	}
	if to.Path == RootPath && token != "" {
		return Decision{Redirect: DashboardPath}
	}
	return Decision{}
}

func (g *Guard) documentTitle(title string) string {
	if g.appTitle == "" {
		return title
	}
	return title + " - " + g.appTitle
}
