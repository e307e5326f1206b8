package console

import (
	"io"
	"net/http"
	"strings"

	"github.com/gct-reporter/console/pkg/envelope"
	"github.com/gct-reporter/console/pkg/httpclient"
	"github.com/gct-reporter/console/pkg/logger"
	"github.com/gct-reporter/console/pkg/middleware"
	"github.com/gin-gonic/gin"
)

// proxyHeaders はバックエンドへそのまま転送するリクエストヘッダー。
var proxyHeaders = []string{"Content-Type", "Authorization", "Accept"}

// handleProxy は/api/*へのリクエストをバックエンドへ転送するハンドラを返す。
// 応答のステータスと本文は加工せずに返す。
func (s *Server) handleProxy() gin.HandlerFunc {
	return func(c *gin.Context) {
		target := strings.TrimSuffix(s.cfg.APIBaseURL, "/") + "/api" + c.Param("path")
		if c.Request.URL.RawQuery != "" {
			target += "?" + c.Request.URL.RawQuery
		}
		s.doProxy(c, target)
	}
}

// doProxy はリクエストをバックエンドへ転送する共通処理。
// 認証ヘッダーとリクエストIDを引き継ぐ。
func (s *Server) doProxy(c *gin.Context, target string) {
	log := logger.Get()

	req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, target, c.Request.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, envelope.Fail(http.StatusInternalServerError, httpclient.MessageFailed))
		return
	}
	for _, h := range proxyHeaders {
		if v := c.GetHeader(h); v != "" {
			req.Header.Set(h, v)
		}
	}
	req.Header.Set(middleware.HeaderRequestID, middleware.GetRequestID(c))

	resp, err := s.proxyClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("url", target).Msg("プロキシエラー")
		c.JSON(http.StatusBadGateway, envelope.Fail(http.StatusBadGateway, httpclient.MessageNetwork))
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn().Err(err).Str("url", target).Msg("プロキシ応答の読み取りに失敗")
		c.JSON(http.StatusBadGateway, envelope.Fail(http.StatusBadGateway, httpclient.MessageNetwork))
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	c.Data(resp.StatusCode, contentType, body)
}
