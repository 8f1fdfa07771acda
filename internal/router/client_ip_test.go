package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clickvault/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clientIPEngine(t *testing.T, cfg config.ServerConfig) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	require.NoError(t, configureClientIP(r, cfg))
	r.GET("/ip", func(c *gin.Context) { c.String(http.StatusOK, c.ClientIP()) })
	return r
}

func clientIPOf(r *gin.Engine, peer string, headers map[string]string) string {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.RemoteAddr = peer
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)
	return w.Body.String()
}

func TestClientIPIgnoresForwardedHeadersByDefault(t *testing.T) {
	r := clientIPEngine(t, config.ServerConfig{})
	for _, forged := range []string{"203.0.113.1", "203.0.113.2", "203.0.113.3"} {
		got := clientIPOf(r, "198.51.100.7:40000", map[string]string{
			"X-Forwarded-For":  forged,
			"X-Real-IP":        forged,
			"CF-Connecting-IP": forged,
		})
		assert.Equal(t, "198.51.100.7", got)
	}
}

func TestClientIPHonoursConfiguredProxy(t *testing.T) {
	r := clientIPEngine(t, config.ServerConfig{TrustedProxies: []string{" 10.0.0.0/8 ", ""}})

	assert.Equal(t, "203.0.113.5", clientIPOf(r, "10.1.2.3:5000", map[string]string{"X-Forwarded-For": "203.0.113.5"}))
	assert.Equal(t, "198.51.100.7", clientIPOf(r, "198.51.100.7:5000", map[string]string{"X-Forwarded-For": "203.0.113.5"}))
}

func TestClientIPTrustedPlatform(t *testing.T) {
	r := clientIPEngine(t, config.ServerConfig{TrustedPlatform: "Cloudflare"})
	assert.Equal(t, "203.0.113.9", clientIPOf(r, "198.51.100.7:5000", map[string]string{"CF-Connecting-IP": "203.0.113.9"}))
	assert.Equal(t, "198.51.100.7", clientIPOf(r, "198.51.100.7:5000", map[string]string{"X-Forwarded-For": "203.0.113.9"}))
}

func TestConfigureClientIPRejectsBadConfig(t *testing.T) {
	gin.SetMode(gin.TestMode)
	assert.Error(t, configureClientIP(gin.New(), config.ServerConfig{TrustedPlatform: "heroku"}))
	assert.Error(t, configureClientIP(gin.New(), config.ServerConfig{TrustedProxies: []string{"not-an-ip"}}))
}
