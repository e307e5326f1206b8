package httpclient

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Notification は利用者に表示する一件の通知。
type Notification struct {
	// Kind は通知の元になった失敗の分類。
	Kind Kind
	// Status はHTTPステータスコード。応答が無い場合は0。
	Status int
	// Message は表示メッセージ。
	Message string
}

// Notifier は利用者への通知先。
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc は関数をNotifierとして扱うためのアダプタ。
type NotifierFunc func(ctx context.Context, n Notification)

// Notify はf(ctx, n)を呼ぶ。
func (f NotifierFunc) Notify(ctx context.Context, n Notification) {
	f(ctx, n)
}

// NopNotifier は通知を破棄する。
var NopNotifier Notifier = NotifierFunc(func(context.Context, Notification) {})

// LogNotifier は通知をzerologに書き出す。
type LogNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier はzerologに書き出すNotifierを生成する。
func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Notify は通知をエラーレベルで記録する。
func (l *LogNotifier) Notify(_ context.Context, n Notification) {
	l.log.Error().
		Str("kind", n.Kind.String()).
		Int("status", n.Status).
		Msg(n.Message)
}

// Recorder は通知を順に保持する。画面へのフラッシュ表示やテストで使う。
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// Notify は通知を記録する。
func (r *Recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// Notifications は記録済みの通知のコピーを返す。
func (r *Recorder) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Messages は記録済みの通知メッセージを返す。
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.items))
	for _, n := range r.items {
		out = append(out, n.Message)
	}
	return out
}

// contextKeyNotifier はコンテキストに通知先を格納するためのキー。
const contextKeyNotifier contextKey = "notifier"

// ContextWithNotifier は呼び出し単位の通知先をコンテキストに設定する。
// 設定された通知先はClientの既定の通知先より優先される。
func ContextWithNotifier(ctx context.Context, n Notifier) context.Context {
	return context.WithValue(ctx, contextKeyNotifier, n)
}

func notifierFromContext(ctx context.Context) (Notifier, bool) {
	n, ok := ctx.Value(contextKeyNotifier).(Notifier)
	return n, ok && n != nil
}
