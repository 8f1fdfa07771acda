package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	handlershared "github.com/clickvault/internal/http/handlers/shared"
	"github.com/clickvault/internal/http/response"
	"github.com/clickvault/internal/models"
	"github.com/clickvault/internal/repository"
	"github.com/clickvault/internal/service"

	"github.com/gin-gonic/gin"
)

var visitEventErrorRules = []handlershared.MappedError{
	{Target: service.ErrVisitEventNotFound, Code: response.CodeNotFound, Key: "error.visit_event_not_found"},
	{Target: service.ErrVisitEventNotFailed, Code: response.CodeConflict, Key: "error.visit_event_not_failed"},
}

func parseQueryUint(raw string) (uint, bool) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(value), true
}

func parseDateQuery(raw string, endOfDay bool) (*time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	parsed, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return nil, false
	}
	if endOfDay {
		parsed = parsed.Add(24*time.Hour - time.Nanosecond)
	}
	return &parsed, true
}

type adminLinkView struct {
	models.Link
	ShortURL string `json:"short_url"`
}

// ListLinks 全站短链
func (h *Handler) ListLinks(c *gin.Context) {
	page, pageSize := parsePageQuery(c)
	filter := repository.LinkListFilter{
		Page:       page,
		PageSize:   pageSize,
		Keyword:    strings.TrimSpace(c.Query("keyword")),
		OnlyActive: strings.EqualFold(strings.TrimSpace(c.Query("active")), "true"),
	}
	if raw := c.Query("user_id"); raw != "" {
		userID, ok := parseQueryUint(raw)
		if !ok {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		filter.UserID = userID
	}
	links, total, err := h.LinkService.ListAll(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.link_fetch_failed", err)
		return
	}
	items := make([]adminLinkView, 0, len(links))
	for i := range links {
		items = append(items, adminLinkView{Link: links[i], ShortURL: h.LinkService.ShortURL(&links[i])})
	}
	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}

// ListVisits 访问明细，可按短链与时间过滤
func (h *Handler) ListVisits(c *gin.Context) {
	page, pageSize := parsePageQuery(c)
	from, okFrom := parseDateQuery(c.Query("from"), false)
	to, okTo := parseDateQuery(c.Query("to"), true)
	if !okFrom || !okTo {
		respondError(c, response.CodeBadRequest, "error.report_range_invalid", nil)
		return
	}
	filter := repository.VisitListFilter{
		Page:        page,
		PageSize:    pageSize,
		FraudOnly:   strings.EqualFold(strings.TrimSpace(c.Query("fraud_only")), "true"),
		CreatedFrom: from,
		CreatedTo:   to,
	}
	if raw := c.Query("link_id"); raw != "" {
		linkID, ok := parseQueryUint(raw)
		if !ok {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		filter.LinkID = linkID
	}
	visits, total, err := h.VisitService.ListVisits(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.visit_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, visits, response.BuildPagination(page, pageSize, total))
}

// ReconcileLink 短链账本对账
func (h *Handler) ReconcileLink(c *gin.Context) {
	linkID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	check, err := h.VisitService.ReconcileLink(linkID)
	if err != nil {
		respondMappedError(c, err, handlershared.CommonErrorRules, response.CodeInternal, "error.visit_fetch_failed")
		return
	}
	response.Success(c, check)
}

// DecryptVisitIP 解密访客原始 IP（写审计）
func (h *Handler) DecryptVisitIP(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	visitID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	ip, err := h.VisitService.DecryptVisitIP(adminID, visitID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrIPEncryptionDisabled):
			respondError(c, response.CodeBadRequest, "error.ip_encryption_disabled", nil)
		case errors.Is(err, service.ErrVisitNotFound):
			respondError(c, response.CodeNotFound, "error.visit_not_found", nil)
		case errors.Is(err, service.ErrVisitIPUnavailable):
			respondError(c, response.CodeNotFound, "error.visit_ip_unavailable", nil)
		default:
			respondError(c, response.CodeInternal, "error.decrypt_failed", err)
		}
		return
	}
	response.Success(c, gin.H{"visit_id": visitID, "ip": ip})
}

// ListVisitEvents 访问事件（outbox）列表
func (h *Handler) ListVisitEvents(c *gin.Context) {
	page, pageSize := parsePageQuery(c)
	events, total, err := h.VisitEventDispatcher.List(repository.VisitEventListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.ToLower(strings.TrimSpace(c.Query("status"))),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.visit_event_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, events, response.BuildPagination(page, pageSize, total))
}

// RequeueVisitEvent 重新投递失败的访问事件
func (h *Handler) RequeueVisitEvent(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	eventID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if err := h.VisitEventDispatcher.Requeue(c.Request.Context(), adminID, eventID); err != nil {
		respondMappedError(c, err, visitEventErrorRules, response.CodeInternal, "error.visit_event_requeue_failed")
		return
	}
	response.Success(c, gin.H{"event_id": eventID, "requeued": true})
}
