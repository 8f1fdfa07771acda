package public

import (
	"errors"
	"net/http"
	"strings"

	"github.com/clickvault/internal/constants"
	"github.com/clickvault/internal/http/response"
	"github.com/clickvault/internal/service"

	"github.com/gin-gonic/gin"
)

// 访客国家由前置代理注入，按顺序读取
var countryHeaders = []string{"CF-IPCountry", "X-Country-Code"}

func resolveVisitorCountry(c *gin.Context) string {
	for _, header := range countryHeaders {
		if value := strings.TrimSpace(c.GetHeader(header)); value != "" {
			return service.NormalizeCountryCode(value)
		}
	}
	return constants.CountryCodeUnknown
}

func (h *Handler) captureVisit(c *gin.Context) (string, *service.RecordVisitResult, error) {
	return h.VisitService.CaptureVisit(c.Request.Context(), service.CaptureVisitInput{
		Code:        strings.TrimSpace(c.Param("code")),
		ClientIP:    c.ClientIP(),
		CountryCode: resolveVisitorCountry(c),
		UserAgent:   c.GetHeader("User-Agent"),
	})
}

// RedirectShortLink 短链跳转：记录访问后 302 到目标地址
func (h *Handler) RedirectShortLink(c *gin.Context) {
	target, _, err := h.captureVisit(c)
	if err != nil {
		if errors.Is(err, service.ErrLinkNotFound) {
			c.String(http.StatusNotFound, "link not found")
			return
		}
		requestLog(c).Errorw("short_link_resolve_failed", "code", c.Param("code"), "error", err)
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Redirect(http.StatusFound, target)
}

// CaptureVisit 记录访问并以 JSON 返回跳转地址与本次收益
func (h *Handler) CaptureVisit(c *gin.Context) {
	target, result, err := h.captureVisit(c)
	if err != nil {
		if errors.Is(err, service.ErrLinkNotFound) {
			respondError(c, response.CodeNotFound, "error.link_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.visit_record_failed", err)
		return
	}
	payload := gin.H{
		"redirect_url": target,
		"recorded":     result != nil,
	}
	if result != nil {
		payload["is_unique"] = result.Earnings.IsUnique
		payload["blocked"] = result.Earnings.Blocked
		payload["block_reason"] = result.Earnings.BlockReason
		payload["country_code"] = result.Earnings.CountryCode
		payload["earned"] = result.EarnedDisplay
	}
	response.Success(c, payload)
}
