package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clickvault/internal/cache"
	handlershared "github.com/clickvault/internal/http/handlers/shared"
	"github.com/clickvault/internal/http/response"
	"github.com/clickvault/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthenticator struct {
	principal *cache.Principal
	err       error
	gotToken  string
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (*cache.Principal, error) {
	s.gotToken = token
	return s.principal, s.err
}

func serveWithHeader(t *testing.T, mw gin.HandlerFunc, header string, handler gin.HandlerFunc) int {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw)
	r.GET("/probe", handler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		StatusCode int `json:"status_code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.StatusCode
}

func TestBearerToken(t *testing.T) {
	token, key := bearerToken("Bearer abc.def")
	assert.Equal(t, "abc.def", token)
	assert.Empty(t, key)

	token, key = bearerToken("bearer  abc ")
	assert.Equal(t, "abc", token)
	assert.Empty(t, key)

	_, key = bearerToken("")
	assert.Equal(t, "error.auth_header_missing", key)
	_, key = bearerToken("Basic abc")
	assert.Equal(t, "error.auth_header_invalid", key)
	_, key = bearerToken("Bearer")
	assert.Equal(t, "error.auth_header_invalid", key)
}

func TestAdminAuthMiddlewareBindsPrincipal(t *testing.T) {
	auth := &stubAuthenticator{principal: &cache.Principal{Kind: cache.PrincipalAdmin, ID: 7, Name: "ops", IsSuper: true}}
	code := serveWithHeader(t, AdminAuthMiddleware(auth), "Bearer tok", func(c *gin.Context) {
		assert.Equal(t, uint(7), c.GetUint(handlershared.CtxAdminID))
		assert.Equal(t, "ops", c.GetString(handlershared.CtxAdminUsername))
		assert.True(t, c.GetBool(handlershared.CtxAdminIsSuper))
		response.Success(c, nil)
	})
	assert.Equal(t, 0, code)
	assert.Equal(t, "tok", auth.gotToken)
}

func TestUserAuthMiddlewareRejections(t *testing.T) {
	reached := func(c *gin.Context) { t.Fatalf("handler must not run") }

	assert.Equal(t, response.CodeUnauthorized, serveWithHeader(t, UserAuthMiddleware(nil), "Bearer tok", reached))
	assert.Equal(t, response.CodeUnauthorized, serveWithHeader(t, UserAuthMiddleware(&stubAuthenticator{}), "", reached))

	for _, err := range []error{service.ErrTokenRevoked, service.ErrUserDisabled, service.ErrInvalidToken, errors.New("db down")} {
		auth := &stubAuthenticator{err: err}
		assert.Equal(t, response.CodeUnauthorized, serveWithHeader(t, UserAuthMiddleware(auth), "Bearer tok", reached), err.Error())
	}
}

func TestAuthFailureKey(t *testing.T) {
	assert.Equal(t, "error.token_revoked", authFailureKey(service.ErrTokenRevoked))
	assert.Equal(t, "error.user_disabled", authFailureKey(service.ErrUserDisabled))
	assert.Equal(t, "error.jwt_secret_missing", authFailureKey(service.ErrAuthNotConfigured))
	assert.Equal(t, "error.token_invalid", authFailureKey(errors.New("other")))
}

func TestAdminRBACMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	build := func(bind func(*gin.Context)) *gin.Engine {
		r := gin.New()
		r.Use(func(c *gin.Context) { bind(c); c.Next() }, AdminRBACMiddleware(nil))
		r.GET("/api/v1/admin/payouts", func(c *gin.Context) { response.Success(c, nil) })
		return r
	}
	statusOf := func(r *gin.Engine) int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/admin/payouts", nil))
		var resp struct {
			StatusCode int `json:"status_code"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp.StatusCode
	}

	super := build(func(c *gin.Context) { c.Set(handlershared.CtxAdminIsSuper, true) })
	assert.Equal(t, 0, statusOf(super))

	anonymous := build(func(*gin.Context) {})
	assert.Equal(t, response.CodeUnauthorized, statusOf(anonymous))

	// 无可用策略服务时普通管理员被拒绝
	regular := build(func(c *gin.Context) { c.Set(handlershared.CtxAdminID, uint(3)) })
	assert.Equal(t, response.CodeForbidden, statusOf(regular))
}
