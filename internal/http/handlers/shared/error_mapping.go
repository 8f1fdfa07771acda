package shared

import (
	"errors"

	"github.com/clickvault/internal/http/response"
	"github.com/clickvault/internal/service"

	"github.com/gin-gonic/gin"
)

// MappedError 业务错误到接口错误响应的映射。
type MappedError struct {
	Target error
	Code   int
	Key    string
}

// RespondMappedError 按规则顺序匹配，未命中时使用兜底码并记录原始错误。
func RespondMappedError(c *gin.Context, err error, rules []MappedError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.Target) {
			RespondError(c, rule.Code, rule.Key, nil)
			return
		}
	}
	RespondError(c, fallbackCode, fallbackKey, err)
}

// CommonErrorRules 通用资源与前置条件错误
var CommonErrorRules = []MappedError{
	{Target: service.ErrUserNotFound, Code: response.CodeNotFound, Key: "error.user_not_found"},
	{Target: service.ErrUserDisabled, Code: response.CodeForbidden, Key: "error.user_disabled"},
	{Target: service.ErrLinkNotFound, Code: response.CodeNotFound, Key: "error.link_not_found"},
	{Target: service.ErrLinkInactive, Code: response.CodeBadRequest, Key: "error.link_inactive"},
	{Target: service.ErrLinkURLInvalid, Code: response.CodeBadRequest, Key: "error.link_url_invalid"},
	{Target: service.ErrLinkOwnerInactive, Code: response.CodeForbidden, Key: "error.link_owner_inactive"},
	{Target: service.ErrReportRangeInvalid, Code: response.CodeBadRequest, Key: "error.report_range_invalid"},
}

// PayoutErrorRules 提现相关错误
var PayoutErrorRules = []MappedError{
	{Target: service.ErrPayoutNotFound, Code: response.CodeNotFound, Key: "error.payout_not_found"},
	{Target: service.ErrPayoutStatusInvalid, Code: response.CodeConflict, Key: "error.payout_status_invalid"},
	{Target: service.ErrPayoutPendingExists, Code: response.CodeConflict, Key: "error.payout_pending_exists"},
	{Target: service.ErrPayoutAmountTooLow, Code: response.CodeBadRequest, Key: "error.payout_amount_too_low"},
	{Target: service.ErrPayoutMethodInvalid, Code: response.CodeBadRequest, Key: "error.payout_method_invalid"},
	{Target: service.ErrPayoutAddressRequired, Code: response.CodeBadRequest, Key: "error.payout_address_required"},
	{Target: service.ErrInsufficientBalance, Code: response.CodeBadRequest, Key: "error.insufficient_balance"},
	{Target: service.ErrBalanceAdjustInvalid, Code: response.CodeBadRequest, Key: "error.balance_adjust_invalid"},
	{Target: service.ErrAdjustReasonRequired, Code: response.CodeBadRequest, Key: "error.balance_adjust_reason_required"},
	{Target: service.ErrUserNotFound, Code: response.CodeNotFound, Key: "error.user_not_found"},
	{Target: service.ErrUserDisabled, Code: response.CodeForbidden, Key: "error.user_disabled"},
}
