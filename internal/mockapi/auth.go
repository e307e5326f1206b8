package mockapi

import (
	"errors"
	"net/http"

	"github.com/gct-reporter/console/internal/api"
	"github.com/gct-reporter/console/pkg/envelope"
	"github.com/gct-reporter/console/pkg/logger"
	"github.com/gct-reporter/console/pkg/middleware"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// 認証まわりの業務エラーメッセージ。
const (
	messageBadCredentials   = "用户名或密码错误"
	messagePasswordMismatch = "新密码和确认密码不一致"
	messageUserUnavailable  = "用户不存在或已禁用"
	messageWrongOldPassword = "旧密码错误"
)

// handleLogin はログインを処理するハンドラを返す。
// 存在しない、無効、パスワード不一致のいずれも同じメッセージで拒否する。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req api.LoginRequest
		if !s.bindJSON(c, &req) {
			return
		}

		log := logger.Get()
		u, err := s.store.GetUserByUsername(c.Request.Context(), req.Username)
		if errors.Is(err, ErrUserNotFound) || (err == nil && !u.Enabled) {
			log.Warn().Str("username", req.Username).Msg("ログイン失敗: ユーザーが存在しないか無効")
			businessError(c, messageBadCredentials)
			return
		}
		if err != nil {
			internalError(c, err)
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
			log.Warn().Str("username", req.Username).Msg("ログイン失敗: パスワード不一致")
			businessError(c, messageBadCredentials)
			return
		}

		token, err := middleware.GenerateJWT(s.jwtSecret, u.ID, u.Username, u.Role)
		if err != nil {
			internalError(c, err)
			return
		}

		log.Info().Str("username", u.Username).Str("role", u.Role).Msg("ログイン成功")
		c.JSON(http.StatusOK, envelope.OKWithMessage("登录成功", api.LoginResponse{
			Token:    token,
			Username: u.Username,
			Role:     u.Role,
			UserID:   u.ID,
		}))
	}
}

// handleLogout はログアウトを処理するハンドラを返す。
// 使用中のトークンを失効リストに登録する。
func (s *Server) handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _ := middleware.GetClaims(c)
		if err := s.store.Revoke(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusOK, envelope.OKWithMessage[any]("登出成功", nil))
	}
}

// handleCurrentUser は現在のユーザー情報を返すハンドラを返す。
func (s *Server) handleCurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _ := middleware.GetClaims(c)
		u, err := s.store.GetUser(c.Request.Context(), claims.UserID)
		if errors.Is(err, ErrUserNotFound) || (err == nil && !u.Enabled) {
			c.JSON(http.StatusUnauthorized, envelope.Fail(http.StatusUnauthorized, middleware.MessageUnauthorized))
			return
		}
		if err != nil {
			internalError(c, err)
			return
		}

		c.JSON(http.StatusOK, envelope.OK(api.UserInfo{
			ID:       u.ID,
			Username: u.Username,
			Role:     u.Role,
			Enabled:  u.Enabled,
		}))
	}
}

// handleChangePassword はパスワード変更を処理するハンドラを返す。
// 本人以外のパスワードは変更できない。
func (s *Server) handleChangePassword() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req api.ChangePasswordRequest
		if !s.bindJSON(c, &req) {
			return
		}
		if req.NewPassword != req.ConfirmPassword {
			businessError(c, messagePasswordMismatch)
			return
		}

		claims, _ := middleware.GetClaims(c)
		if req.Username != claims.Username {
			c.JSON(http.StatusForbidden, envelope.Fail(http.StatusForbidden, middleware.MessageForbidden))
			return
		}

		u, err := s.store.GetUserByUsername(c.Request.Context(), req.Username)
		if errors.Is(err, ErrUserNotFound) || (err == nil && !u.Enabled) {
			businessError(c, messageUserUnavailable)
			return
		}
		if err != nil {
			internalError(c, err)
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.OldPassword)) != nil {
			businessError(c, messageWrongOldPassword)
			return
		}

		hash, err := s.hashPassword(req.NewPassword)
		if err != nil {
			internalError(c, err)
			return
		}
		if _, err := s.store.UpdateUser(c.Request.Context(), u.ID, UserPatch{PasswordHash: &hash}); err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusOK, envelope.OKWithMessage[any]("密码修改成功", nil))
	}
}

// handleCheckReportName はレポート名の重複確認を処理するハンドラを返す。
func (s *Server) handleCheckReportName() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Query("name")
		if name == "" {
			businessError(c, "报表名称不能为空")
			return
		}
		exists, err := s.store.ReportNameExists(c.Request.Context(), name)
		if err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusOK, envelope.OK(api.CheckNameResponse{Exists: exists}))
	}
}
