package admin

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	handlershared "github.com/clickvault/internal/http/handlers/shared"
	"github.com/clickvault/internal/http/response"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func writeXLSX(c *gin.Context, prefix string, content []byte) {
	filename := fmt.Sprintf("%s_%s.xlsx", prefix, time.Now().Format("20060102150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, xlsxContentType, content)
}

// ExportDailyEarnings 导出日收益汇总
func (h *Handler) ExportDailyEarnings(c *gin.Context) {
	content, err := h.ReportService.ExportDailyEarnings(strings.TrimSpace(c.Query("from")), strings.TrimSpace(c.Query("to")))
	if err != nil {
		respondMappedError(c, err, handlershared.CommonErrorRules, response.CodeInternal, "error.export_failed")
		return
	}
	writeXLSX(c, "daily_earnings", content)
}

// ExportPayouts 导出提现记录
func (h *Handler) ExportPayouts(c *gin.Context) {
	content, err := h.ReportService.ExportPayouts(strings.ToUpper(strings.TrimSpace(c.Query("status"))))
	if err != nil {
		respondError(c, response.CodeInternal, "error.export_failed", err)
		return
	}
	writeXLSX(c, "payouts", content)
}
