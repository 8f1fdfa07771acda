package public

import (
	handlershared "github.com/clickvault/internal/http/handlers/shared"
	"github.com/clickvault/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetEarningsSummary 按日收益汇总，from/to 为 YYYY-MM-DD
func (h *Handler) GetEarningsSummary(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	summary, err := h.ReportService.UserEarningsSummary(userID, c.Query("from"), c.Query("to"))
	if err != nil {
		respondMappedError(c, err, handlershared.CommonErrorRules, response.CodeInternal, "error.earnings_fetch_failed")
		return
	}
	response.Success(c, summary)
}

// GetReferralSummary 推荐汇总
func (h *Handler) GetReferralSummary(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	summary, err := h.ReferralService.GetReferralSummary(userID)
	if err != nil {
		respondMappedError(c, err, handlershared.CommonErrorRules, response.CodeInternal, "error.referral_fetch_failed")
		return
	}
	response.Success(c, summary)
}

// GetReferralProgram 公开推荐计划配置
func (h *Handler) GetReferralProgram(c *gin.Context) {
	setting, err := h.SettingService.GetReferralSetting()
	if err != nil {
		requestLog(c).Warnw("referral_setting_load_failed", "error", err)
	}
	response.Success(c, gin.H{
		"referral_active":     setting.ReferralActive,
		"commission_rate":     setting.CommissionRate,
		"bonus_days":          setting.BonusDays,
		"min_referral_payout": setting.MinReferralPayout,
		"min_payout":          setting.MinPayout,
	})
}
