package middleware

import (
	"net/http"

	"github.com/gct-reporter/console/pkg/envelope"
	"github.com/gct-reporter/console/pkg/logger"
	"github.com/gin-gonic/gin"
)

// MessageInternalError はパニック時に返すメッセージ。
const MessageInternalError = "系统错误，请联系管理员"

// Recovery はパニックからの回復を行うGinミドルウェアを返す。
// パニック発生時はログに出力し、code=500のエンベロープを返す。
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log := logger.Get()
				log.Error().
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Str("request_id", GetRequestID(c)).
					Interface("panic", r).
					Msg("パニックから回復")
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					envelope.Fail(http.StatusInternalServerError, MessageInternalError))
			}
		}()
		c.Next()
	}
}
