package httpclient

import (
	"errors"
	"net/http"
)

// 利用者に表示する既定メッセージ。
const (
	MessageFailed       = "请求失败"
	MessageBadRequest   = "请求参数错误"
	MessageUnauthorized = "未登录或登录已过期"
	MessageForbidden    = "无权限访问"
	MessageNotFound     = "请求的资源不存在"
	MessageServerError  = "服务器错误"
	MessageNetwork      = "网络错误，请检查网络连接"
)

// Kind は失敗の分類。
type Kind int

const (
	// KindUnknown はリクエストを組み立てられず送信できなかった失敗。
	KindUnknown Kind = iota
	// KindApplication は2xx応答だが封筒のcodeが200以外だった失敗。
	KindApplication
	// KindClient は4xx応答。
	KindClient
	// KindServer は5xx応答。
	KindServer
	// KindNetwork は送信したが応答が無かった失敗（タイムアウトを含む）。
	KindNetwork
)

// String は分類名を返す。メトリクスのラベルにも使う。
func (k Kind) String() string {
	switch k {
	case KindApplication:
		return "application"
	case KindClient:
		return "client"
	case KindServer:
		return "server"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// Error はゲートウェイで翻訳・通知済みのAPI呼び出しエラー。
type Error struct {
	// Kind は失敗の分類。
	Kind Kind
	// Status はHTTPステータスコード。応答が無い場合は0。
	Status int
	// Code は封筒のcode。封筒が無い場合は0。
	Code int
	// Message は利用者に通知したメッセージ。
	Message string
	// Err は元のエラー。アプリケーションエラーではnil。
	Err error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Notification はこのエラーに対応する通知を返す。
func (e *Error) Notification() Notification {
	return Notification{Kind: e.Kind, Status: e.Status, Message: e.Message}
}

// StatusOf はerrに含まれる *Error のHTTPステータスを返す。含まれなければ0。
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// IsUnauthorized はerrが401応答によるものかどうかを返す。
func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// statusMessage はHTTPステータスに対応する通知メッセージを選ぶ。
// サーバーが封筒でメッセージを返した場合はそれを優先する。
func statusMessage(status int, serverMessage string) string {
	if serverMessage != "" {
		return serverMessage
	}
	switch status {
	case http.StatusBadRequest:
		return MessageBadRequest
	case http.StatusUnauthorized:
		return MessageUnauthorized
	case http.StatusForbidden:
		return MessageForbidden
	case http.StatusNotFound:
		return MessageNotFound
	case http.StatusInternalServerError:
		return MessageServerError
	default:
		return MessageFailed
	}
}

// kindForStatus はHTTPステータスから分類を決める。
func kindForStatus(status int) Kind {
	if status >= http.StatusInternalServerError {
		return KindServer
	}
	return KindClient
}

// classify はトランスポート層の失敗を *Error に翻訳する。
func classify(err error) *Error {
	var te *TransportError
	if errors.As(err, &te) {
		switch {
		case te.Response != nil:
			status := te.Response.StatusCode
			return &Error{
				Kind:    kindForStatus(status),
				Status:  status,
				Code:    te.Response.Envelope.Code,
				Message: statusMessage(status, te.Response.Envelope.Message),
				Err:     err,
			}
		case te.Request != nil:
			return &Error{Kind: KindNetwork, Message: MessageNetwork, Err: err}
		}
	}
	return &Error{Kind: KindUnknown, Message: MessageFailed, Err: err}
}
