package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/clickvault/internal/config"
	handlershared "github.com/clickvault/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCORSPolicyAllowOrigin(t *testing.T) {
	open := newCORSPolicy(config.CORSConfig{})
	assert.Equal(t, "*", open.allowOrigin("https://example.com"))

	withCreds := newCORSPolicy(config.CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true})
	assert.Equal(t, "https://example.com", withCreds.allowOrigin("https://example.com"))

	listed := newCORSPolicy(config.CORSConfig{AllowedOrigins: []string{"https://panel.example.com/", "https://b.example.com"}})
	assert.Equal(t, "https://panel.example.com", listed.allowOrigin("https://panel.example.com"))
	assert.Empty(t, listed.allowOrigin("https://x.example.com"))
	assert.Empty(t, listed.allowOrigin(""))
}

func TestCORSMiddlewarePreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware(config.CORSConfig{AllowedOrigins: []string{"https://panel.example.com"}, MaxAge: 600}))
	r.GET("/api/v1/me", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/me", nil)
	req.Header.Set("Origin", "https://panel.example.com")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://panel.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-Locale")
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
	assert.Equal(t, "600", w.Header().Get("Access-Control-Max-Age"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), requestIDHeader)
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": c.GetString(handlershared.CtxRequestID)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-123", w.Header().Get(requestIDHeader))
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "req-123", resp["request_id"])

	for _, incoming := range []string{"", "has space", strings.Repeat("x", maxRequestIDLength+1)} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(requestIDHeader, incoming)
		r.ServeHTTP(w, req)
		generated := w.Header().Get(requestIDHeader)
		assert.NotEmpty(t, generated)
		assert.NotEqual(t, incoming, generated)
	}
}
