package shared

import (
	"net/http/httptest"
	"testing"

	"github.com/clickvault/internal/http/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestContext(target string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", target, nil)
	return c, w
}

func TestNormalizePagination(t *testing.T) {
	page, size := NormalizePagination(0, 500)
	assert.Equal(t, 1, page)
	assert.Equal(t, 100, size)

	page, size = NormalizePagination(3, 0)
	assert.Equal(t, 3, page)
	assert.Equal(t, 20, size)
}

func TestPageQuery(t *testing.T) {
	c, _ := newTestContext("/api/v1/links?page=2&page_size=abc")
	page, size := PageQuery(c)
	assert.Equal(t, 2, page)
	assert.Equal(t, 20, size)
}

func TestUintParam(t *testing.T) {
	c, _ := newTestContext("/api/v1/links/12")
	c.Params = gin.Params{{Key: "id", Value: "12"}}
	id, ok := UintParam(c, "id")
	assert.True(t, ok)
	assert.Equal(t, uint(12), id)

	c, w := newTestContext("/api/v1/links/0")
	c.Params = gin.Params{{Key: "id", Value: "0"}}
	_, ok = UintParam(c, "id")
	assert.False(t, ok)
	assert.Equal(t, response.CodeBadRequest, decodeResponse(t, w.Body.Bytes()).StatusCode)
}

func TestPrincipalIDMissing(t *testing.T) {
	c, w := newTestContext("/api/v1/me")
	_, ok := PrincipalID(c, CtxUserID)
	assert.False(t, ok)
	assert.Equal(t, response.CodeUnauthorized, decodeResponse(t, w.Body.Bytes()).StatusCode)

	c, _ = newTestContext("/api/v1/me")
	c.Set(CtxUserID, uint(5))
	id, ok := PrincipalID(c, CtxUserID)
	assert.True(t, ok)
	assert.Equal(t, uint(5), id)
}
