package console

import (
	"net/http"
	"strconv"

	"github.com/gct-reporter/console/internal/api"
	"github.com/gct-reporter/console/pkg/httpclient"
	"github.com/gin-gonic/gin"
)

// roles は画面で選択できるロール。
var roles = []string{api.RoleAdmin, api.RoleDesigner, api.RoleViewer}

// usersData はユーザー一覧画面のデータ。
type usersData struct {
	Keyword string
	Users   []api.User
	Roles   []string
}

// userData はユーザー詳細画面のデータ。
type userData struct {
	User  *api.User
	Roles []string
}

// reportsData はレポート画面のデータ。
type reportsData struct {
	Name   string
	Result *api.CheckNameResponse
}

// handleLoginPage はログイン画面を返すハンドラを返す。
func (s *Server) handleLoginPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.render(c, http.StatusOK, "login", nil)
	}
}

// handleDashboard はダッシュボードを返すハンドラを返す。
func (s *Server) handleDashboard() gin.HandlerFunc {
	return func(c *gin.Context) {
		me, err := s.api.CurrentUser(c.Request.Context())
		if httpclient.IsUnauthorized(err) {
			s.unauthorized(c)
			return
		}
		if err != nil {
			s.render(c, statusFor(httpclient.StatusOf(err)), "dashboard", nil)
			return
		}
		s.render(c, http.StatusOK, "dashboard", me)
	}
}

// handleUsers はユーザー一覧画面を返すハンドラを返す。
func (s *Server) handleUsers() gin.HandlerFunc {
	return func(c *gin.Context) {
		data := usersData{Keyword: c.Query("keyword"), Roles: roles}
		users, err := s.api.ListUsers(c.Request.Context(), data.Keyword)
		if httpclient.IsUnauthorized(err) {
			s.unauthorized(c)
			return
		}
		if err != nil {
			s.render(c, statusFor(httpclient.StatusOf(err)), "users", data)
			return
		}
		data.Users = users
		s.render(c, http.StatusOK, "users", data)
	}
}

// handleUserDetail はユーザー詳細画面を返すハンドラを返す。
func (s *Server) handleUserDetail() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id <= 0 {
			s.render(c, http.StatusNotFound, "notfound", nil)
			return
		}

		data := userData{Roles: roles}
		u, err := s.api.GetUser(c.Request.Context(), id)
		if httpclient.IsUnauthorized(err) {
			s.unauthorized(c)
			return
		}
		if err != nil {
			s.render(c, statusFor(httpclient.StatusOf(err)), "user", data)
			return
		}
		data.User = u
		s.render(c, http.StatusOK, "user", data)
	}
}

// handleReports はレポート画面を返すハンドラを返す。
// nameが指定されていれば名前の重複を確認する。
func (s *Server) handleReports() gin.HandlerFunc {
	return func(c *gin.Context) {
		data := reportsData{Name: c.Query("name")}
		if data.Name == "" {
			s.render(c, http.StatusOK, "reports", data)
			return
		}

		res, err := s.api.CheckReportName(c.Request.Context(), data.Name)
		if httpclient.IsUnauthorized(err) {
			s.unauthorized(c)
			return
		}
		if err != nil {
			s.render(c, statusFor(httpclient.StatusOf(err)), "reports", data)
			return
		}
		data.Result = res
		s.render(c, http.StatusOK, "reports", data)
	}
}

// handlePasswordPage はパスワード変更画面を返すハンドラを返す。
func (s *Server) handlePasswordPage() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.render(c, http.StatusOK, "password", nil)
	}
}
