package public

import (
	handlershared "github.com/clickvault/internal/http/handlers/shared"
	"github.com/clickvault/internal/http/response"
	"github.com/clickvault/internal/repository"
	"github.com/clickvault/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// RequestPayoutRequest 提现申请
type RequestPayoutRequest struct {
	Amount  string `json:"amount" binding:"required"`
	Method  string `json:"method" binding:"required"`
	Address string `json:"address" binding:"required"`
}

// RequestPayout 申请提现
func (h *Handler) RequestPayout(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req RequestPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	payout, err := h.PayoutService.RequestPayout(service.RequestPayoutInput{
		UserID:  userID,
		Amount:  amount,
		Method:  req.Method,
		Address: req.Address,
	})
	if err != nil {
		respondMappedError(c, err, handlershared.PayoutErrorRules, response.CodeInternal, "error.payout_create_failed")
		return
	}
	response.Success(c, payout)
}

// ListMyPayouts 我的提现记录
func (h *Handler) ListMyPayouts(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.PageQuery(c)

	payouts, total, err := h.PayoutService.ListPayouts(repository.PayoutListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
		Status:   c.Query("status"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.payout_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, payouts, response.BuildPagination(page, pageSize, total))
}
