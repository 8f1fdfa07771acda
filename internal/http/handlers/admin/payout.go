package admin

import (
	"strings"

	handlershared "github.com/clickvault/internal/http/handlers/shared"
	"github.com/clickvault/internal/http/response"
	"github.com/clickvault/internal/repository"
	"github.com/clickvault/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type rejectPayoutRequest struct {
	Reason string `json:"reason"`
}

type adjustBalanceRequest struct {
	Delta  decimal.Decimal `json:"delta"`
	Reason string          `json:"reason"`
}

// ListPayouts 提现申请列表
func (h *Handler) ListPayouts(c *gin.Context) {
	page, pageSize := parsePageQuery(c)
	filter := repository.PayoutListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.ToUpper(strings.TrimSpace(c.Query("status"))),
	}
	if raw := strings.TrimSpace(c.Query("user_id")); raw != "" {
		userID, ok := parseQueryUint(raw)
		if !ok {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		filter.UserID = userID
	}
	payouts, total, err := h.PayoutService.ListPayouts(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.payout_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, payouts, response.BuildPagination(page, pageSize, total))
}

// MarkPayoutProcessing 开始打款
func (h *Handler) MarkPayoutProcessing(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	payoutID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	payout, err := h.PayoutService.MarkProcessing(adminID, payoutID)
	if err != nil {
		respondMappedError(c, err, handlershared.PayoutErrorRules, response.CodeInternal, "error.payout_update_failed")
		return
	}
	response.Success(c, payout)
}

// CompletePayout 打款完成
func (h *Handler) CompletePayout(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	payoutID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	payout, err := h.PayoutService.Complete(adminID, payoutID)
	if err != nil {
		respondMappedError(c, err, handlershared.PayoutErrorRules, response.CodeInternal, "error.payout_update_failed")
		return
	}
	response.Success(c, payout)
}

// RejectPayout 驳回提现，余额退回
func (h *Handler) RejectPayout(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	payoutID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req rejectPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	payout, err := h.PayoutService.Reject(adminID, payoutID, req.Reason)
	if err != nil {
		respondMappedError(c, err, handlershared.PayoutErrorRules, response.CodeInternal, "error.payout_update_failed")
		return
	}
	response.Success(c, payout)
}

// AdjustUserBalance 手工调整用户余额（正数增加，负数扣减）
func (h *Handler) AdjustUserBalance(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	userID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req adjustBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.balance_adjust_invalid", err)
		return
	}
	user, err := h.PayoutService.AdjustBalance(service.AdjustBalanceInput{
		AdminID: adminID,
		UserID:  userID,
		Delta:   req.Delta,
		Reason:  req.Reason,
	})
	if err != nil {
		respondMappedError(c, err, handlershared.PayoutErrorRules, response.CodeInternal, "error.balance_adjust_failed")
		return
	}
	response.Success(c, gin.H{
		"user_id":      user.ID,
		"balance":      user.Balance,
		"total_earned": user.TotalEarned,
	})
}
