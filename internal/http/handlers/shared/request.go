package shared

import (
	"strconv"
	"strings"

	"github.com/clickvault/internal/http/response"

	"github.com/gin-gonic/gin"
)

// 中间件写入的上下文键
const (
	CtxRequestID     = "request_id"
	CtxAdminID       = "admin_id"
	CtxAdminUsername = "admin_username"
	CtxAdminIsSuper  = "admin_is_super"
	CtxUserID        = "user_id"
	CtxUserEmail     = "user_email"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PrincipalID 读取中间件写入的主体 ID，缺失时响应 401
func PrincipalID(c *gin.Context, key string) (uint, bool) {
	id := c.GetUint(key)
	if id == 0 {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}
	return id, true
}

// UintParam 解析路径参数中的正整数 ID
func UintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || id == 0 {
		RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return 0, false
	}
	return uint(id), true
}

// PageQuery 读取 page/page_size 并归一化
func PageQuery(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	return NormalizePagination(page, pageSize)
}

// NormalizePagination 页码从 1 开始，每页最多 100 条
func NormalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
