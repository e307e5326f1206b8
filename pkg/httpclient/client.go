package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gct-reporter/console/pkg/envelope"
)

const (
	// DefaultBaseURL は接続先が指定されなかった場合のバックエンドURL。
	DefaultBaseURL = "http://localhost:8080"
	// DefaultTimeout はクライアント全体で共通のリクエストタイムアウト。
	DefaultTimeout = 10 * time.Second

	defaultContentType = "application/json"
)

// Client はバックエンドAPI呼び出し用のHTTPクライアント。
// すべての呼び出しは登録済みのインターセプタチェーンを通過する。
type Client struct {
	// httpClient は内部で使用するHTTPクライアント。
	httpClient *http.Client
	// baseURL は接続先バックエンドのベースURL。
	baseURL string
	// header はすべてのリクエストに付与する既定ヘッダー。
	header http.Header
	// requestInterceptors は送信前に順に適用される。
	requestInterceptors []RequestInterceptor
	// responseInterceptors は受信後（または送信失敗後）に順に適用される。
	responseInterceptors []ResponseInterceptor
	// notifier はコンテキストに通知先が無い場合の既定の通知先。
	notifier Notifier
}

// Option はClientの生成時設定。
type Option func(*Client)

// WithTimeout はリクエストタイムアウトを上書きする。
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient は内部のHTTPクライアントを差し替える。
// タイムアウトは差し替え後のクライアントの設定に従う。
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithHeader は既定ヘッダーを追加または上書きする。
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.header.Set(key, value)
	}
}

// WithNotifier は既定の通知先を設定する。
func WithNotifier(n Notifier) Option {
	return func(c *Client) {
		c.notifier = n
	}
}

// WithRequestInterceptors はリクエストインターセプタを登録順に追加する。
func WithRequestInterceptors(ics ...RequestInterceptor) Option {
	return func(c *Client) {
		c.requestInterceptors = append(c.requestInterceptors, ics...)
	}
}

// WithResponseInterceptors はレスポンスインターセプタを既定のチェーンの後ろに追加する。
func WithResponseInterceptors(ics ...ResponseInterceptor) Option {
	return func(c *Client) {
		c.responseInterceptors = append(c.responseInterceptors, ics...)
	}
}

// New は新しいゲートウェイクライアントを生成する。
// baseURLが空の場合はDefaultBaseURLを使用する。
// レスポンスチェーンの先頭には常にCheckEnvelopeとTranslateErrorが置かれる。
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		baseURL:  strings.TrimRight(baseURL, "/"),
		header:   http.Header{"Content-Type": []string{defaultContentType}},
		notifier: NopNotifier,
	}
	c.responseInterceptors = []ResponseInterceptor{
		CheckEnvelope(c),
		TranslateError(c),
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL は接続先のベースURLを返す。
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Notify はコンテキストに設定された通知先、無ければ既定の通知先に通知する。
// ClientはNotifierとして組み込みインターセプタに渡される。
func (c *Client) Notify(ctx context.Context, n Notification) {
	if ctxNotifier, ok := notifierFromContext(ctx); ok {
		ctxNotifier.Notify(ctx, n)
		return
	}
	c.notifier.Notify(ctx, n)
}

// Request は一回のAPI呼び出しを表す。
type Request struct {
	// Method はHTTPメソッド。
	Method string
	// Path はベースURLからの相対パス。
	Path string
	// Query はクエリパラメータ。
	Query url.Values
	// Body はJSONにシリアライズされるリクエストボディ。nilの場合はボディなし。
	Body any
}

// GetJSON は指定パスにGETリクエストを送信し、封筒のdataをresultにデシリアライズする。
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, result any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, result)
}

// PostJSON は指定パスにJSONボディでPOSTリクエストを送信する。
func (c *Client) PostJSON(ctx context.Context, path string, body any, result any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, result)
}

// PutJSON は指定パスにJSONボディでPUTリクエストを送信する。
func (c *Client) PutJSON(ctx context.Context, path string, body any, result any) error {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, result)
}

// DeleteJSON は指定パスにDELETEリクエストを送信する。
func (c *Client) DeleteJSON(ctx context.Context, path string, result any) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, result)
}

// Do はリクエストを送信し、インターセプタチェーンを通した結果を返す。
// 成功時は封筒のdataをresultにデシリアライズする（resultがnilなら何もしない）。
// 失敗時は通知済みの *Error を返す。
func (c *Client) Do(ctx context.Context, r Request, result any) error {
	start := time.Now()

	resp, err := c.send(ctx, r)
	resp, err = c.intercept(ctx, resp, err)
	if err == nil && result != nil {
		err = c.decodeData(ctx, resp, result)
	}

	observe(r.Method, err, time.Since(start))
	return err
}

// send はHTTPリクエストを組み立ててリクエストインターセプタを適用し、送信する。
// 非2xxのステータスはレスポンス付きのTransportErrorとして返す。
func (c *Client) send(ctx context.Context, r Request) (*Response, error) {
	req, err := c.newRequest(ctx, r)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	for _, ic := range c.requestInterceptors {
		req, err = ic(req)
		if err != nil {
			return nil, &TransportError{Err: fmt.Errorf("リクエストインターセプタが失敗: %w", err)}
		}
		if req == nil {
			return nil, &TransportError{Err: errors.New("リクエストインターセプタがnilを返した")}
		}
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Request: req, Err: fmt.Errorf("HTTPリクエストの送信に失敗: %w", err)}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &TransportError{Request: req, Err: fmt.Errorf("レスポンスボディの読み取りに失敗: %w", err)}
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       body,
		Request:    req,
	}
	// 封筒として解釈できないボディはcode=0として扱われ、失敗に分類される
	_ = json.Unmarshal(body, &resp.Envelope)

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return resp, &TransportError{
			Request:  req,
			Response: resp,
			Err:      fmt.Errorf("HTTPエラー: status=%d", httpResp.StatusCode),
		}
	}
	return resp, nil
}

// newRequest はRequestからHTTPリクエストを生成する。
func (c *Client) newRequest(ctx context.Context, r Request) (*http.Request, error) {
	var bodyReader io.Reader
	if r.Body != nil {
		jsonBody, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("リクエストボディのシリアライズに失敗: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	u := c.baseURL + r.Path
	if len(r.Query) > 0 {
		u += "?" + r.Query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, u, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}
	for key, values := range c.header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	return req, nil
}

// intercept はレスポンスインターセプタを登録順に適用する。
func (c *Client) intercept(ctx context.Context, resp *Response, err error) (*Response, error) {
	for _, ic := range c.responseInterceptors {
		resp, err = ic(ctx, resp, err)
	}
	return resp, err
}

// decodeData は封筒のdata部をresultにデシリアライズする。
// 失敗した場合も一回だけ通知してから返す。
func (c *Client) decodeData(ctx context.Context, resp *Response, result any) error {
	if resp == nil || len(resp.Envelope.Data) == 0 || string(resp.Envelope.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(resp.Envelope.Data, result); err != nil {
		e := &Error{
			Kind:    KindUnknown,
			Status:  resp.StatusCode,
			Code:    resp.Envelope.Code,
			Message: MessageFailed,
			Err:     fmt.Errorf("レスポンスデータのデシリアライズに失敗: %w", err),
		}
		c.Notify(ctx, e.Notification())
		return e
	}
	return nil
}

// Response はインターセプタチェーンを流れる受信済みレスポンス。
type Response struct {
	// StatusCode はHTTPステータスコード。
	StatusCode int
	// Header はレスポンスヘッダー。
	Header http.Header
	// Body は生のレスポンスボディ。
	Body []byte
	// Envelope はボディを封筒として解釈した結果。解釈できなければゼロ値。
	Envelope envelope.Raw
	// Request は送信したリクエスト。
	Request *http.Request
}

// TransportError はトランスポート層の失敗を表す。
// Requestがnilなら送信前に失敗し、Responseがnilなら応答を受け取れなかったことを表す。
type TransportError struct {
	// Request は送信したリクエスト。送信前の失敗ではnil。
	Request *http.Request
	// Response は受信したレスポンス。応答が無い場合はnil。
	Response *Response
	// Err は根本原因。
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
