package admin

import (
	"errors"

	"github.com/clickvault/internal/constants"
	"github.com/clickvault/internal/http/response"
	"github.com/clickvault/internal/models"
	"github.com/clickvault/internal/service"

	"github.com/gin-gonic/gin"
)

// GetReferralSetting 推荐与提现配置
func (h *Handler) GetReferralSetting(c *gin.Context) {
	setting, err := h.SettingService.GetReferralSetting()
	if err != nil {
		respondError(c, response.CodeInternal, "error.settings_fetch_failed", err)
		return
	}
	response.Success(c, setting)
}

// UpdateReferralSetting 更新推荐与提现配置
func (h *Handler) UpdateReferralSetting(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req service.ReferralSetting
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	before, _ := h.SettingService.GetReferralSetting()
	saved, err := h.SettingService.UpdateReferralSetting(req, adminID)
	if err != nil {
		if respondSettingValidationError(c, err) {
			return
		}
		respondError(c, response.CodeInternal, "error.settings_save_failed", err)
		return
	}
	h.recordAdminAction(c, adminID, constants.AdminActionSettingsUpdate, "setting", constants.SettingKeyReferralConfig, models.JSON{
		"before": service.ReferralSettingToMap(before),
		"after":  service.ReferralSettingToMap(saved),
	})
	response.Success(c, saved)
}

func respondSettingValidationError(c *gin.Context, err error) bool {
	if !errors.Is(err, service.ErrReferralConfigInvalid) {
		return false
	}
	requestLog(c).Debugw("admin_settings_invalid", "error", err)
	respondError(c, response.CodeBadRequest, "error.settings_invalid", nil)
	return true
}
