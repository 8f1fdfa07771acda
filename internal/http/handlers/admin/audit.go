package admin

import (
	"strconv"
	"strings"

	"github.com/clickvault/internal/http/response"
	"github.com/clickvault/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListActionLogs 管理操作审计日志
func (h *Handler) ListActionLogs(c *gin.Context) {
	page, pageSize := parsePageQuery(c)
	adminID, _ := strconv.ParseUint(c.Query("admin_id"), 10, 64)
	logs, total, err := h.AdminActionService.List(repository.AdminActionLogFilter{
		Page:       page,
		PageSize:   pageSize,
		AdminID:    uint(adminID),
		Action:     strings.TrimSpace(c.Query("action")),
		TargetType: strings.TrimSpace(c.Query("target_type")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.audit_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, logs, response.BuildPagination(page, pageSize, total))
}
