package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gct-reporter/console/pkg/envelope"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// 認証エラー時のメッセージ。
const (
	MessageUnauthorized = "未登录或登录已过期"
	MessageForbidden    = "无权限访问"
)

// TokenTTL はJWTトークンの有効期間。
const TokenTTL = 24 * time.Hour

// issuer はトークン発行者名。
const issuer = "gct-reporter"

// JWTClaims はJWTトークンのクレーム（ペイロード）を表す。
type JWTClaims struct {
	jwt.RegisteredClaims
	// UserID は認証済みユーザーのID。
	UserID int64 `json:"user_id"`
	// Username はユーザー名。
	Username string `json:"username"`
	// Role はユーザーのロール。
	Role string `json:"role"`
}

// RevocationList は失効済みトークンIDの照会先。
type RevocationList interface {
	IsRevoked(ctx context.Context, jti string) bool
}

// contextKeyClaims はGinコンテキストにクレームを格納するキー。
const contextKeyClaims = "claims"

// GenerateJWT はユーザー情報からJWTトークンを生成する。
// トークンごとに一意のjtiを付与し、ログアウト時の失効に使う。
func GenerateJWT(secret string, userID int64, username, role string) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
		UserID:   userID,
		Username: username,
		Role:     role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("JWTトークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// ParseJWT はトークン文字列を検証してクレームを返す。
func ParseJWT(secret, tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("JWTトークンの検証に失敗: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("JWTトークンが無効")
	}
	return claims, nil
}

// JWTAuth はBearerトークンを検証するGinミドルウェアを返す。
// 検証に成功した場合、コンテキストにクレームを設定する。
// revokedがnilでなければ失効済みトークンも拒否する。
func JWTAuth(secret string, revoked RevocationList) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found || tokenString == "" {
			abortUnauthorized(c)
			return
		}

		claims, err := ParseJWT(secret, tokenString)
		if err != nil {
			abortUnauthorized(c)
			return
		}
		if revoked != nil && revoked.IsRevoked(c.Request.Context(), claims.ID) {
			abortUnauthorized(c)
			return
		}

		c.Set(contextKeyClaims, claims)
		c.Next()
	}
}

// RequireRole は指定ロールのいずれかを持つユーザーだけを通すGinミドルウェアを返す。
// JWTAuthの後に適用する。
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			abortUnauthorized(c)
			return
		}
		if !slices.Contains(roles, claims.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, envelope.Fail(http.StatusForbidden, MessageForbidden))
			return
		}
		c.Next()
	}
}

// GetClaims はGinコンテキストからクレームを取得する。
// JWTAuthミドルウェアが事前に適用されている必要がある。
func GetClaims(c *gin.Context) (*JWTClaims, bool) {
	v, ok := c.Get(contextKeyClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*JWTClaims)
	return claims, ok
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, envelope.Fail(http.StatusUnauthorized, MessageUnauthorized))
}
