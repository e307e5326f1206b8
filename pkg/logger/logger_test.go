package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

// TestInit はシングルトンロガーの初期化を検証する。
// パッケージ状態を共有するため並列実行しない。
func TestInit(t *testing.T) {
	t.Run("JSON形式でサービス名付きのログが出力されること", func(t *testing.T) {
		Reset()
		t.Cleanup(Reset)

		var buf bytes.Buffer
		log := Init(Options{Level: "debug", Output: &buf, Service: "console"})
		log.Info().Msg("hello")

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("ログのパースに失敗: %v (%s)", err, buf.String())
		}
		if entry["service"] != "console" {
			t.Errorf("service = %v, want console", entry["service"])
		}
		if entry["message"] != "hello" {
			t.Errorf("message = %v, want hello", entry["message"])
		}
	})

	t.Run("二回目のInitは最初のロガーを返すこと", func(t *testing.T) {
		Reset()
		t.Cleanup(Reset)

		var first, second bytes.Buffer
		Init(Options{Output: &first})
		log := Init(Options{Output: &second})
		log.Info().Msg("x")

		if first.Len() == 0 {
			t.Error("最初の出力先に書き込まれていない")
		}
		if second.Len() != 0 {
			t.Error("二回目の出力先に書き込まれるべきではない")
		}
	})

	t.Run("Init前のGetは何も出力しないロガーを返すこと", func(t *testing.T) {
		Reset()
		t.Cleanup(Reset)

		log := Get()
		if log.GetLevel() != zerolog.Disabled {
			t.Errorf("level = %v, want disabled", log.GetLevel())
		}
	})
}

// TestParseLevel はレベル文字列の変換を検証する。
func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" warn ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
