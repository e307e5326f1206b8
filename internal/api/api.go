package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gct-reporter/console/pkg/httpclient"
)

// Client はバックエンドAPIの型付きクライアント。
type Client struct {
	http *httpclient.Client
}

// New は新しいClientを生成する。
func New(hc *httpclient.Client) *Client {
	return &Client{http: hc}
}

// Login はユーザー名とパスワードでログインする。
// トークンの保存は呼び出し側が行う。
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var res LoginResponse
	if err := c.http.PostJSON(ctx, "/api/v1/auth/login", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Logout はログアウトする。
func (c *Client) Logout(ctx context.Context) error {
	return c.http.PostJSON(ctx, "/api/v1/auth/logout", nil, nil)
}

// CurrentUser は現在のログインユーザーを取得する。
func (c *Client) CurrentUser(ctx context.Context) (*UserInfo, error) {
	var res UserInfo
	if err := c.http.GetJSON(ctx, "/api/v1/auth/current", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ChangePassword はパスワードを変更する。
func (c *Client) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	return c.http.PostJSON(ctx, "/api/v1/auth/change-password", req, nil)
}

// CheckReportName はレポート名が既に使われているかを確認する。
func (c *Client) CheckReportName(ctx context.Context, name string) (*CheckNameResponse, error) {
	var res CheckNameResponse
	q := url.Values{"name": []string{name}}
	if err := c.http.GetJSON(ctx, "/api/v1/reports/check-name", q, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ListUsers はユーザー一覧を取得する。keywordが空なら検索条件を付けない。
func (c *Client) ListUsers(ctx context.Context, keyword string) ([]User, error) {
	var q url.Values
	if keyword != "" {
		q = url.Values{"keyword": []string{keyword}}
	}
	var res []User
	if err := c.http.GetJSON(ctx, "/api/v1/users", q, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// GetUser はIDでユーザーを取得する。
func (c *Client) GetUser(ctx context.Context, id int64) (*User, error) {
	var res User
	if err := c.http.GetJSON(ctx, userPath(id), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CreateUser はユーザーを作成する。
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	var res User
	if err := c.http.PostJSON(ctx, "/api/v1/users", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// UpdateUser はユーザーを部分更新する。
func (c *Client) UpdateUser(ctx context.Context, id int64, req UpdateUserRequest) (*User, error) {
	var res User
	if err := c.http.PutJSON(ctx, userPath(id), req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// DeleteUser はユーザーを削除する。
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.http.DeleteJSON(ctx, userPath(id), nil)
}

// SetUserStatus はユーザーの有効/無効を切り替える。
func (c *Client) SetUserStatus(ctx context.Context, id int64, enabled bool) (*User, error) {
	var res User
	err := c.http.Do(ctx, httpclient.Request{
		Method: http.MethodPatch,
		Path:   userPath(id) + "/status",
		Query:  url.Values{"enabled": []string{strconv.FormatBool(enabled)}},
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func userPath(id int64) string {
	return fmt.Sprintf("/api/v1/users/%d", id)
}
