package constants

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 访问防刷拦截原因
const (
	BlockReasonDailyLimit = "daily_limit"
	BlockReasonRateLimit  = "rate_limit"
)

// 国家等级与兜底国家码
const (
	CountryTier1       = 1
	CountryTier2       = 2
	CountryTier3       = 3
	CountryCodeUnknown = "XX"
	CountryNameUnknown = "Unknown"
)

// CPM 费率来源
const (
	RateSourceStore       = "store"
	RateSourceStatic      = "static"
	RateSourceTierDefault = "tier_default"
)

// 访客设备类型
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceBot     = "bot"
	DeviceUnknown = "unknown"
)

// 访客浏览器类型
const (
	BrowserChrome  = "chrome"
	BrowserFirefox = "firefox"
	BrowserSafari  = "safari"
	BrowserEdge    = "edge"
	BrowserOpera   = "opera"
	BrowserOther   = "other"
)

// 推荐佣金状态
const (
	ReferralCommissionStatusProcessed = "processed"
)

// 推荐作弊原因
const (
	ReferralFraudSameIP = "same_ip_as_referrer"
)

// 推荐作弊处理动作
const (
	FraudActionDismiss   = "dismiss"
	FraudActionBlock     = "block"
	FraudActionBlockBoth = "block_both"
)

// 访问事件（outbox）状态
const (
	VisitEventStatusPending    = "pending"
	VisitEventStatusProcessing = "processing"
	VisitEventStatusProcessed  = "processed"
	VisitEventStatusSkipped    = "skipped"
	VisitEventStatusFailed     = "failed"
)

// 提现状态
const (
	PayoutStatusPending    = "PENDING"
	PayoutStatusProcessing = "PROCESSING"
	PayoutStatusCompleted  = "COMPLETED"
	PayoutStatusRejected   = "REJECTED"
)

// 提现方式
const (
	PayoutMethodPaypal       = "PAYPAL"
	PayoutMethodBitcoin      = "BITCOIN"
	PayoutMethodBankTransfer = "BANK_TRANSFER"
)

// 管理员操作审计动作
const (
	AdminActionRateCreate     = "cpm_rate_create"
	AdminActionRateUpdate     = "cpm_rate_update"
	AdminActionRateToggle     = "cpm_rate_toggle"
	AdminActionFraudFlag      = "referral_fraud_flag"
	AdminActionFraudDismiss   = "referral_fraud_dismiss"
	AdminActionFraudBlock     = "referral_fraud_block"
	AdminActionFraudBlockBoth = "referral_fraud_block_both"
	AdminActionPayoutProcess  = "payout_processing"
	AdminActionPayoutComplete = "payout_complete"
	AdminActionPayoutReject   = "payout_reject"
	AdminActionBalanceAdjust  = "user_balance_adjust"
	AdminActionSettingsUpdate = "settings_update"
	AdminActionEventRequeue   = "visit_event_requeue"
	AdminActionVisitDecryptIP = "visit_decrypt_ip"
	AdminActionAdminCreate    = "admin_create"
	AdminActionAdminRolesSet  = "admin_roles_set"
	AdminActionRoleCreate     = "authz_role_create"
	AdminActionRoleDelete     = "authz_role_delete"
	AdminActionPolicyGrant    = "authz_policy_grant"
	AdminActionPolicyRevoke   = "authz_policy_revoke"
)

// 队列名称
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 异步任务类型
const (
	TaskVisitRecorded = "visit:recorded"
)

// 设置键
const (
	SettingKeyReferralConfig = "referral_config"
)
