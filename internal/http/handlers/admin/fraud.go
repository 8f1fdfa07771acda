package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/clickvault/internal/http/handlers/shared"
	"github.com/clickvault/internal/http/response"
	"github.com/clickvault/internal/repository"
	"github.com/clickvault/internal/service"

	"github.com/gin-gonic/gin"
)

var referralErrorRules = []handlershared.MappedError{
	{Target: service.ErrUserNotFound, Code: response.CodeNotFound, Key: "error.user_not_found"},
	{Target: service.ErrReferralNotFlagged, Code: response.CodeConflict, Key: "error.referral_not_flagged"},
	{Target: service.ErrReferralAlreadyFlagged, Code: response.CodeConflict, Key: "error.referral_flagged"},
	{Target: service.ErrFraudActionInvalid, Code: response.CodeBadRequest, Key: "error.fraud_action_invalid"},
}

type flagReferralRequest struct {
	Reason string `json:"reason"`
}

type resolveFraudRequest struct {
	Action string `json:"action" binding:"required"`
}

// ListFraudAlerts 待处理的推荐作弊告警
func (h *Handler) ListFraudAlerts(c *gin.Context) {
	page, pageSize := parsePageQuery(c)
	users, total, err := h.ReferralService.ListFraudAlerts(page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.fraud_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, users, response.BuildPagination(page, pageSize, total))
}

// FlagReferral 人工标记推荐关系
func (h *Handler) FlagReferral(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	userID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req flagReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.ReferralService.FlagReferral(c.Request.Context(), adminID, userID, req.Reason); err != nil {
		respondMappedError(c, err, referralErrorRules, response.CodeInternal, "error.fraud_resolve_failed")
		return
	}
	response.Success(c, gin.H{"user_id": userID, "flagged": true})
}

// ResolveFraudAlert 处理作弊告警：dismiss / block / block_both
func (h *Handler) ResolveFraudAlert(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	userID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req resolveFraudRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	action := strings.ToLower(strings.TrimSpace(req.Action))
	if err := h.ReferralService.ResolveFraudAlert(c.Request.Context(), adminID, userID, action); err != nil {
		respondMappedError(c, err, referralErrorRules, response.CodeInternal, "error.fraud_resolve_failed")
		return
	}
	response.Success(c, gin.H{"user_id": userID, "action": action})
}

// ListCommissions 推荐佣金流水
func (h *Handler) ListCommissions(c *gin.Context) {
	page, pageSize := parsePageQuery(c)
	referrerID, _ := strconv.ParseUint(c.Query("referrer_id"), 10, 64)
	referredID, _ := strconv.ParseUint(c.Query("referred_id"), 10, 64)
	rows, total, err := h.ReferralService.ListCommissions(repository.CommissionListFilter{
		Page:       page,
		PageSize:   pageSize,
		ReferrerID: uint(referrerID),
		ReferredID: uint(referredID),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.referral_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// GetUserReferralSummary 指定用户的推荐概况
func (h *Handler) GetUserReferralSummary(c *gin.Context) {
	userID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	summary, err := h.ReferralService.GetReferralSummary(userID)
	if err != nil {
		respondMappedError(c, err, referralErrorRules, response.CodeInternal, "error.referral_fetch_failed")
		return
	}
	response.Success(c, summary)
}

// ListUsers 用户列表
func (h *Handler) ListUsers(c *gin.Context) {
	page, pageSize := parsePageQuery(c)
	filter := repository.UserListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  strings.TrimSpace(c.Query("keyword")),
		Status:   strings.TrimSpace(c.Query("status")),
	}
	if raw := strings.TrimSpace(c.Query("fraud_flagged")); raw != "" {
		flagged := strings.EqualFold(raw, "true")
		filter.FraudFlagged = &flagged
	}
	if referredBy, err := strconv.ParseUint(c.Query("referred_by"), 10, 64); err == nil {
		filter.ReferredByID = uint(referredBy)
	}
	users, total, err := h.UserRepo.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.user_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, users, response.BuildPagination(page, pageSize, total))
}
