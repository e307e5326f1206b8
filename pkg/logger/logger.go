// Package logger はzerologによる構造化ロガーのシングルトンを提供する。
//
// 起動時にInitで一度だけ初期化し、以降はGetで取得する。
//
//	TRACE (-1) → DEBUG (0) → INFO (1) → WARN (2) → ERROR (3)
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options はロガー初期化時の設定。
type Options struct {
	// Level は出力する最小レベル（trace, debug, info, warn, error）。
	// 空または不明な値の場合はinfoになる。
	Level string
	// Pretty は人間向けのコンソール出力を有効にする。本番ではfalseにしてJSONを出力する。
	Pretty bool
	// Output はログの出力先。nilの場合はos.Stdout。
	Output io.Writer
	// Service はすべてのログに付与するサービス名。
	Service string
}

var (
	mu          sync.Mutex
	instance    zerolog.Logger
	initialized bool
)

// Init はシングルトンロガーを初期化する。
// 二回目以降の呼び出しは何もせず、最初に生成したロガーを返す。
func Init(opts Options) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()

	if initialized {
		return instance
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	lvl := parseLevel(opts.Level)
	ctx := zerolog.New(out).Level(lvl).With().Timestamp()
	if opts.Service != "" {
		ctx = ctx.Str("service", opts.Service)
	}
	instance = ctx.Logger()
	initialized = true

	return instance
}

// Get はシングルトンロガーを返す。
// Init前に呼ばれた場合は何も出力しないロガーを返す。
func Get() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()

	if !initialized {
		return zerolog.Nop()
	}
	return instance
}

// Reset はシングルトンを破棄する。テスト専用。
func Reset() {
	mu.Lock()
	defer mu.Unlock()

	instance = zerolog.Logger{}
	initialized = false
}

// parseLevel は文字列をzerolog.Levelに変換する。
func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
