package middleware

import (
	"context"
	"strings"

	"github.com/anoixa/album-chat/api/common"
	"github.com/anoixa/album-chat/database/models"
	"github.com/anoixa/album-chat/internal/apperr"
	"github.com/anoixa/album-chat/internal/auth"
	"github.com/gin-gonic/gin"
)

const (
	ContextUserIDKey = "user_id"
	ContextUserKey   = "user"
	ContextClaimsKey = "claims"

	// AccessCookieName 会话 cookie，值为 "Bearer <jwt>"
	AccessCookieName = "access"
)

// Authenticator 校验访问令牌并返回当前用户
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, *auth.TokenClaims, error)
}

// ExtractToken 依次从 access cookie 和 Authorization 头中取出 Bearer 令牌
func ExtractToken(c *gin.Context) (string, error) {
	raw, err := c.Cookie(AccessCookieName)
	if err != nil || raw == "" {
		raw = c.GetHeader("Authorization")
	}
	if raw == "" {
		return "", apperr.Unauthenticated("Authentication credentials were not provided")
	}

	scheme, token, ok := strings.Cut(strings.TrimSpace(raw), " ")
	if !ok || scheme != "Bearer" || strings.TrimSpace(token) == "" {
		return "", apperr.Unauthenticated("Authorization field format error")
	}
	return strings.TrimSpace(token), nil
}

// Resolve 解析请求中的会话，成功时写入上下文
func Resolve(c *gin.Context, authn Authenticator) error {
	token, err := ExtractToken(c)
	if err != nil {
		return err
	}

	user, claims, err := authn.Authenticate(c.Request.Context(), token)
	if err != nil {
		return err
	}

	c.Set(ContextUserIDKey, user.ID)
	c.Set(ContextUserKey, user)
	c.Set(ContextClaimsKey, claims)
	return nil
}

// RequireAuth 要求请求携带有效会话
func RequireAuth(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := Resolve(c, authn); err != nil {
			common.RespondAppError(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser 获取当前用户
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(ContextUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// CurrentClaims 获取当前令牌声明
func CurrentClaims(c *gin.Context) *auth.TokenClaims {
	if v, ok := c.Get(ContextClaimsKey); ok {
		if claims, ok := v.(*auth.TokenClaims); ok {
			return claims
		}
	}
	return nil
}
