package service

import "errors"

// 资源不存在
var (
	ErrNotFound           = errors.New("resource not found")
	ErrLinkNotFound       = errors.New("link not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrAdminNotFound      = errors.New("admin not found")
	ErrCpmRateNotFound    = errors.New("cpm rate not found")
	ErrVisitNotFound      = errors.New("visit not found")
	ErrVisitEventNotFound = errors.New("visit event not found")
	ErrPayoutNotFound     = errors.New("payout not found")
)

// 前置条件不满足（不产生任何写入）
var (
	ErrLinkOwnerInactive      = errors.New("link owner inactive")
	ErrLinkInactive           = errors.New("link inactive")
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrPayoutPendingExists    = errors.New("payout already pending")
	ErrPayoutStatusInvalid    = errors.New("payout status transition invalid")
	ErrPayoutAmountTooLow     = errors.New("payout amount below minimum")
	ErrPayoutMethodInvalid    = errors.New("payout method invalid")
	ErrPayoutAddressRequired  = errors.New("payout address required")
	ErrBalanceAdjustInvalid   = errors.New("balance adjustment must be non-zero")
	ErrAdjustReasonRequired   = errors.New("balance adjustment reason required")
	ErrReferralNotFlagged     = errors.New("referral not flagged")
	ErrReferralAlreadyFlagged = errors.New("referral already flagged")
	ErrFraudActionInvalid     = errors.New("fraud action invalid")
	ErrVisitEventNotFailed    = errors.New("visit event not failed")
	ErrCpmRateExists          = errors.New("cpm rate already exists")
	ErrCpmRateInvalid         = errors.New("cpm rate invalid")
	ErrCountryCodeInvalid     = errors.New("country code invalid")
	ErrReferralConfigInvalid  = errors.New("referral config invalid")
	ErrLinkURLInvalid         = errors.New("link url invalid")
	ErrCodeExhausted          = errors.New("unique code generation exhausted")
	ErrIPEncryptionDisabled   = errors.New("ip encryption disabled")
	ErrVisitIPUnavailable     = errors.New("visit has no encrypted ip")
	ErrReportRangeInvalid     = errors.New("report date range invalid")
)

// 认证相关
var (
	ErrInvalidEmail       = errors.New("invalid email")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrUserDisabled       = errors.New("user disabled")
	ErrWeakPassword       = errors.New("weak password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrAdminExists        = errors.New("admin already exists")
	ErrAuthNotConfigured  = errors.New("auth secret not configured")
)
