package router

import (
	"context"
	"errors"
	"strings"

	"github.com/clickvault/internal/authz"
	"github.com/clickvault/internal/cache"
	handlershared "github.com/clickvault/internal/http/handlers/shared"
	"github.com/clickvault/internal/http/response"
	"github.com/clickvault/internal/i18n"
	"github.com/clickvault/internal/service"

	"github.com/gin-gonic/gin"
)

// authenticator 校验 Bearer 令牌并返回身份快照
type authenticator interface {
	Authenticate(ctx context.Context, token string) (*cache.Principal, error)
}

func abortWith(c *gin.Context, code int, key string) {
	response.Error(c, code, i18n.T(i18n.ResolveLocale(c), key))
	c.Abort()
}

// bearerToken 解析 Authorization 头；失败时第二个返回值为错误文案 key
func bearerToken(header string) (string, string) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", "error.auth_header_missing"
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", "error.auth_header_invalid"
	}
	return token, ""
}

func authFailureKey(err error) string {
	switch {
	case errors.Is(err, service.ErrAuthNotConfigured):
		return "error.jwt_secret_missing"
	case errors.Is(err, service.ErrTokenRevoked):
		return "error.token_revoked"
	case errors.Is(err, service.ErrUserDisabled):
		return "error.user_disabled"
	default:
		return "error.token_invalid"
	}
}

func isAuthRejection(err error) bool {
	return errors.Is(err, service.ErrInvalidToken) ||
		errors.Is(err, service.ErrTokenRevoked) ||
		errors.Is(err, service.ErrUserDisabled) ||
		errors.Is(err, service.ErrAuthNotConfigured)
}

func authenticate(auth authenticator, bind func(*gin.Context, *cache.Principal)) gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth == nil {
			abortWith(c, response.CodeUnauthorized, "error.jwt_secret_missing")
			return
		}
		token, failKey := bearerToken(c.GetHeader("Authorization"))
		if failKey != "" {
			abortWith(c, response.CodeUnauthorized, failKey)
			return
		}
		principal, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if !isAuthRejection(err) {
				handlershared.RequestLog(c).Errorw("auth_principal_lookup_failed", "path", c.Request.URL.Path, "error", err)
			}
			abortWith(c, response.CodeUnauthorized, authFailureKey(err))
			return
		}
		bind(c, principal)
		c.Next()
	}
}

// AdminAuthMiddleware 管理端令牌校验
func AdminAuthMiddleware(auth authenticator) gin.HandlerFunc {
	return authenticate(auth, func(c *gin.Context, p *cache.Principal) {
		c.Set(handlershared.CtxAdminID, p.ID)
		c.Set(handlershared.CtxAdminUsername, p.Name)
		c.Set(handlershared.CtxAdminIsSuper, p.IsSuper)
	})
}

// UserAuthMiddleware 推广用户令牌校验
func UserAuthMiddleware(auth authenticator) gin.HandlerFunc {
	return authenticate(auth, func(c *gin.Context, p *cache.Principal) {
		c.Set(handlershared.CtxUserID, p.ID)
		c.Set(handlershared.CtxUserEmail, p.Name)
	})
}

// AdminRBACMiddleware 按路由模板与方法做 casbin 校验，超级管理员直接放行
func AdminRBACMiddleware(enforcer *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetBool(handlershared.CtxAdminIsSuper) {
			c.Next()
			return
		}
		adminID := c.GetUint(handlershared.CtxAdminID)
		if adminID == 0 {
			abortWith(c, response.CodeUnauthorized, "error.unauthorized")
			return
		}
		object := c.FullPath()
		if object == "" {
			object = c.Request.URL.Path
		}
		log := handlershared.RequestLog(c).With("admin_id", adminID, "method", c.Request.Method, "object", authz.NormalizeObject(object))

		allowed, err := enforcer.EnforceAdmin(adminID, object, c.Request.Method)
		if err != nil {
			log.Errorw("admin_rbac_enforce_failed", "error", err)
			abortWith(c, response.CodeForbidden, "error.forbidden")
			return
		}
		if !allowed {
			log.Warnw("admin_rbac_denied")
			abortWith(c, response.CodeForbidden, "error.forbidden")
			return
		}
		c.Next()
	}
}
