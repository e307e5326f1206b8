package httpclient

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/gct-reporter/console/pkg/logger"
)

// RequestInterceptor は送信前のリクエストを受け取り、そのまま或いは加工して返す。
// エラーを返した場合、呼び出しはネットワークI/Oの前に失敗する。
type RequestInterceptor func(req *http.Request) (*http.Request, error)

// ResponseInterceptor は受信したレスポンスまたは失敗を受け取り、変換して返す。
// 成功経路ではerrがnil、失敗経路ではerrが非nilで呼ばれる。
type ResponseInterceptor func(ctx context.Context, resp *Response, err error) (*Response, error)

// TokenSource はセッショントークンの読み取り元。
type TokenSource interface {
	// Token は現在のセッショントークンを返す。無ければ空文字列。
	Token(ctx context.Context) string
}

// SessionClearer は保存済みのセッショントークンを破棄できるもの。
type SessionClearer interface {
	// Clear はセッショントークンを削除する。
	Clear(ctx context.Context) error
}

const (
	headerAuthorization = "Authorization"
	headerRequestID     = "X-Request-ID"
)

// BearerToken はセッショントークンがあればAuthorizationヘッダーを付与する。
func BearerToken(src TokenSource) RequestInterceptor {
	return func(req *http.Request) (*http.Request, error) {
		if token := src.Token(req.Context()); token != "" {
			req.Header.Set(headerAuthorization, "Bearer "+token)
		}
		return req, nil
	}
}

// RequestID はX-Request-IDヘッダーを付与する。
// コンテキストにWithRequestIDで設定されたIDがあればそれを伝播し、無ければ新規に採番する。
func RequestID() RequestInterceptor {
	return func(req *http.Request) (*http.Request, error) {
		if req.Header.Get(headerRequestID) != "" {
			return req, nil
		}
		id, ok := req.Context().Value(contextKeyRequestID).(string)
		if !ok || id == "" {
			id = uuid.New().String()
		}
		req.Header.Set(headerRequestID, id)
		return req, nil
	}
}

// CheckEnvelope は成功経路で封筒のcodeを検査する。
// code==200ならレスポンスをそのまま通し、それ以外は通知してKindApplicationのエラーにする。
func CheckEnvelope(n Notifier) ResponseInterceptor {
	return func(ctx context.Context, resp *Response, err error) (*Response, error) {
		if err != nil || resp == nil {
			return resp, err
		}
		if resp.Envelope.Succeeded() {
			return resp, nil
		}

		msg := resp.Envelope.Message
		if msg == "" {
			msg = MessageFailed
		}
		appErr := &Error{
			Kind:    KindApplication,
			Status:  resp.StatusCode,
			Code:    resp.Envelope.Code,
			Message: msg,
		}
		n.Notify(ctx, appErr.Notification())
		return resp, appErr
	}
}

// TranslateError は失敗経路でトランスポート層の失敗を分類し、通知して *Error にする。
// 既に *Error に翻訳済みの失敗は再通知せずにそのまま通す。
func TranslateError(n Notifier) ResponseInterceptor {
	return func(ctx context.Context, resp *Response, err error) (*Response, error) {
		if err == nil {
			return resp, nil
		}
		var translated *Error
		if errors.As(err, &translated) {
			return resp, err
		}

		e := classify(err)
		n.Notify(ctx, e.Notification())
		return resp, e
	}
}

// ClearSessionOnUnauthorized は401応答を受けたときに保存済みのトークンを破棄する。
// 期限切れのトークンを持ち続けないよう、TranslateErrorより後ろに登録する。
func ClearSessionOnUnauthorized(s SessionClearer) ResponseInterceptor {
	return func(ctx context.Context, resp *Response, err error) (*Response, error) {
		if IsUnauthorized(err) {
			if clearErr := s.Clear(ctx); clearErr != nil {
				log := logger.Get()
				log.Warn().Err(clearErr).Msg("401応答後のセッション破棄に失敗")
			}
		}
		return resp, err
	}
}

// contextKey はコンテキストキーの型。
type contextKey string

// contextKeyRequestID はコンテキストにリクエストIDを格納するためのキー。
const contextKeyRequestID contextKey = "request_id"

// WithRequestID はコンテキストにリクエストIDを設定する。
// 受け付けたリクエストのIDをバックエンド呼び出しに伝播するために使用する。
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, id)
}
