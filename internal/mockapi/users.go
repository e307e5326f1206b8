package mockapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gct-reporter/console/internal/api"
	"github.com/gct-reporter/console/pkg/envelope"
	"github.com/gin-gonic/gin"
)

// ユーザー管理の業務エラーメッセージ。
const (
	messageUserNotFound  = "用户不存在"
	messageUsernameTaken = "用户名已存在"
)

// toUserResponse はストアのユーザーを応答形式に変換する。
func toUserResponse(u User) api.User {
	return api.User{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		Enabled:   u.Enabled,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// userID はパスパラメータのIDを読む。不正なら400を返してfalseを返す。
func userID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		businessError(c, "用户ID不正确")
		return 0, false
	}
	return id, true
}

// respondUserError はストアのエラーを応答に変換する。
func respondUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		c.JSON(http.StatusNotFound, envelope.Fail(http.StatusNotFound, messageUserNotFound))
	case errors.Is(err, ErrUsernameTaken):
		businessError(c, messageUsernameTaken)
	default:
		internalError(c, err)
	}
}

// handleListUsers はユーザー一覧を返すハンドラを返す。
func (s *Server) handleListUsers() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := s.store.ListUsers(c.Request.Context(), c.Query("keyword"))
		if err != nil {
			internalError(c, err)
			return
		}

		responses := make([]api.User, 0, len(users))
		for _, u := range users {
			responses = append(responses, toUserResponse(u))
		}
		c.JSON(http.StatusOK, envelope.OK(responses))
	}
}

// handleGetUser はユーザー詳細を返すハンドラを返す。
func (s *Server) handleGetUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := userID(c)
		if !ok {
			return
		}
		u, err := s.store.GetUser(c.Request.Context(), id)
		if err != nil {
			respondUserError(c, err)
			return
		}
		c.JSON(http.StatusOK, envelope.OK(toUserResponse(u)))
	}
}

// handleCreateUser はユーザー作成を処理するハンドラを返す。
func (s *Server) handleCreateUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req api.CreateUserRequest
		if !s.bindJSON(c, &req) {
			return
		}

		hash, err := s.hashPassword(req.Password)
		if err != nil {
			internalError(c, err)
			return
		}
		enabled := true
		if req.Enabled != nil {
			enabled = *req.Enabled
		}

		u, err := s.store.CreateUser(c.Request.Context(), req.Username, hash, req.Role, enabled)
		if err != nil {
			respondUserError(c, err)
			return
		}
		c.JSON(http.StatusOK, envelope.OKWithMessage("创建用户成功", toUserResponse(u)))
	}
}

// handleUpdateUser はユーザーの部分更新を処理するハンドラを返す。
func (s *Server) handleUpdateUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := userID(c)
		if !ok {
			return
		}
		var req api.UpdateUserRequest
		if !s.bindJSON(c, &req) {
			return
		}

		patch := UserPatch{Role: req.Role, Enabled: req.Enabled}
		if req.Password != nil && *req.Password != "" {
			hash, err := s.hashPassword(*req.Password)
			if err != nil {
				internalError(c, err)
				return
			}
			patch.PasswordHash = &hash
		}

		u, err := s.store.UpdateUser(c.Request.Context(), id, patch)
		if err != nil {
			respondUserError(c, err)
			return
		}
		c.JSON(http.StatusOK, envelope.OKWithMessage("更新用户成功", toUserResponse(u)))
	}
}

// handleDeleteUser はユーザー削除を処理するハンドラを返す。
func (s *Server) handleDeleteUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := userID(c)
		if !ok {
			return
		}
		if err := s.store.DeleteUser(c.Request.Context(), id); err != nil {
			respondUserError(c, err)
			return
		}
		c.JSON(http.StatusOK, envelope.OKWithMessage[any]("删除用户成功", nil))
	}
}

// handleSetUserStatus はユーザーの有効/無効の切り替えを処理するハンドラを返す。
func (s *Server) handleSetUserStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := userID(c)
		if !ok {
			return
		}
		enabled, err := strconv.ParseBool(c.Query("enabled"))
		if err != nil {
			businessError(c, "enabled参数不正确")
			return
		}

		u, err := s.store.UpdateUser(c.Request.Context(), id, UserPatch{Enabled: &enabled})
		if err != nil {
			respondUserError(c, err)
			return
		}
		c.JSON(http.StatusOK, envelope.OKWithMessage("切换用户状态成功", toUserResponse(u)))
	}
}
