package console

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gct-reporter/console/internal/api"
	"github.com/gct-reporter/console/internal/router"
	"github.com/gct-reporter/console/pkg/envelope"
	"github.com/gct-reporter/console/pkg/httpclient"
	"github.com/gct-reporter/console/pkg/logger"
	"github.com/gct-reporter/console/pkg/middleware"
	"github.com/gct-reporter/console/pkg/validate"
	"github.com/gin-gonic/gin"
)

// 画面に表示するメッセージ。
const (
	noticeLogin          = "登录成功"
	noticeLogout         = "已退出登录"
	noticePassword       = "密码修改成功"
	noticeUserCreated    = "创建用户成功"
	noticeUserUpdated    = "更新用户成功"
	noticeUserDeleted    = "删除用户成功"
	noticeStatusToggled  = "切换用户状态成功"
	messageInvalidUserID = "用户ID不正确"
	messageMismatch      = "新密码和确认密码不一致"
)

// checkForm はフォーム入力を検証し、エラーを画面のメッセージに追加する。
func (s *Server) checkForm(c *gin.Context, form any) bool {
	err := s.validator.Struct(form)
	if err == nil {
		return true
	}
	p := currentPage(c)
	var ve *validate.Error
	if !errors.As(err, &ve) {
		p.errors.Notify(c.Request.Context(), httpclient.Notification{Kind: httpclient.KindClient, Message: validate.MessageInvalid})
		return false
	}
	for _, f := range ve.Fields {
		p.errors.Notify(c.Request.Context(), httpclient.Notification{Kind: httpclient.KindClient, Message: f.Message})
	}
	return false
}

// finish はAPI呼び出し後の共通処理。成功なら案内を追加してlocationへ戻す。
// 401ならログイン画面へ戻し、それ以外の失敗は通知済みのメッセージを引き継いで戻す。
func (s *Server) finish(c *gin.Context, err error, notice, location string) {
	if httpclient.IsUnauthorized(err) {
		s.unauthorized(c)
		return
	}
	if err == nil && notice != "" {
		currentPage(c).addNotice(notice)
	}
	s.redirectWithFlash(c, location)
}

// internalError は内部エラーをログに出力し、500のエンベロープで返す。
func internalError(c *gin.Context, err error) {
	log := logger.Get()
	log.Error().Err(err).Str("request_id", middleware.GetRequestID(c)).Msg("内部エラー")
	c.AbortWithStatusJSON(http.StatusInternalServerError,
		envelope.Fail(http.StatusInternalServerError, middleware.MessageInternalError))
}

// handleLogin はログインフォームを処理するハンドラを返す。
// 成功すればトークンをセッションに保存してダッシュボードへ移る。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		req := api.LoginRequest{
			Username: c.PostForm("username"),
			Password: c.PostForm("password"),
		}
		if !s.checkForm(c, req) {
			s.render(c, http.StatusBadRequest, "login", req.Username)
			return
		}

		res, err := s.api.Login(c.Request.Context(), req)
		if err != nil {
			s.render(c, statusFor(httpclient.StatusOf(err)), "login", req.Username)
			return
		}
		if err := s.sessions.Save(c.Request.Context(), res.Token); err != nil {
			internalError(c, err)
			return
		}

		log := logger.Get()
		log.Info().Str("username", res.Username).Str("role", res.Role).Msg("ログイン")
		currentPage(c).addNotice(noticeLogin)
		s.redirectWithFlash(c, router.DashboardPath)
	}
}

// handleLogout はログアウトを処理するハンドラを返す。
// バックエンドの応答に関わらずローカルのトークンは破棄する。
func (s *Server) handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if s.sessions.Token(ctx) != "" {
			_ = s.api.Logout(ctx)
		}
		if err := s.sessions.Clear(ctx); err != nil {
			internalError(c, err)
			return
		}
		currentPage(c).addNotice(noticeLogout)
		s.redirectWithFlash(c, router.RootPath)
	}
}

// handleChangePassword はパスワード変更フォームを処理するハンドラを返す。
func (s *Server) handleChangePassword() gin.HandlerFunc {
	return func(c *gin.Context) {
		me, err := s.api.CurrentUser(c.Request.Context())
		if err != nil {
			s.finish(c, err, "", "/password")
			return
		}

		req := api.ChangePasswordRequest{
			Username:        me.Username,
			OldPassword:     c.PostForm("oldPassword"),
			NewPassword:     c.PostForm("newPassword"),
			ConfirmPassword: c.PostForm("confirmPassword"),
		}
		if !s.checkForm(c, req) {
			s.render(c, http.StatusBadRequest, "password", nil)
			return
		}
		if req.NewPassword != req.ConfirmPassword {
			currentPage(c).errors.Notify(c.Request.Context(), httpclient.Notification{
				Kind:    httpclient.KindClient,
				Message: messageMismatch,
			})
			s.render(c, http.StatusBadRequest, "password", nil)
			return
		}

		err = s.api.ChangePassword(c.Request.Context(), req)
		s.finish(c, err, noticePassword, "/password")
	}
}

// handleCreateUser はユーザー作成フォームを処理するハンドラを返す。
func (s *Server) handleCreateUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		req := api.CreateUserRequest{
			Username: c.PostForm("username"),
			Password: c.PostForm("password"),
			Role:     c.PostForm("role"),
		}
		if !s.checkForm(c, req) {
			s.redirectWithFlash(c, "/users")
			return
		}

		_, err := s.api.CreateUser(c.Request.Context(), req)
		s.finish(c, err, noticeUserCreated, "/users")
	}
}

// handleUpdateUser はユーザー更新フォームを処理するハンドラを返す。
// 空の項目は変更しない。
func (s *Server) handleUpdateUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := s.formUserID(c)
		if !ok {
			return
		}
		location := fmt.Sprintf("/users/%d", id)

		var req api.UpdateUserRequest
		if role := c.PostForm("role"); role != "" {
			req.Role = &role
		}
		if password := c.PostForm("password"); password != "" {
			req.Password = &password
		}
		if !s.checkForm(c, req) {
			s.redirectWithFlash(c, location)
			return
		}

		_, err := s.api.UpdateUser(c.Request.Context(), id, req)
		s.finish(c, err, noticeUserUpdated, location)
	}
}

// handleDeleteUser はユーザー削除を処理するハンドラを返す。
func (s *Server) handleDeleteUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := s.formUserID(c)
		if !ok {
			return
		}
		err := s.api.DeleteUser(c.Request.Context(), id)
		s.finish(c, err, noticeUserDeleted, "/users")
	}
}

// handleSetUserStatus はユーザーの有効/無効の切り替えを処理するハンドラを返す。
func (s *Server) handleSetUserStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := s.formUserID(c)
		if !ok {
			return
		}
		enabled, err := strconv.ParseBool(c.PostForm("enabled"))
		if err != nil {
			currentPage(c).errors.Notify(c.Request.Context(), httpclient.Notification{
				Kind:    httpclient.KindClient,
				Message: validate.MessageInvalid,
			})
			s.redirectWithFlash(c, "/users")
			return
		}

		_, err = s.api.SetUserStatus(c.Request.Context(), id, enabled)
		s.finish(c, err, noticeStatusToggled, "/users")
	}
}

// formUserID はパスのユーザーIDを読む。不正なら一覧へ戻してfalseを返す。
func (s *Server) formUserID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		currentPage(c).errors.Notify(c.Request.Context(), httpclient.Notification{
			Kind:    httpclient.KindClient,
			Message: messageInvalidUserID,
		})
		s.redirectWithFlash(c, "/users")
		return 0, false
	}
	return id, true
}
