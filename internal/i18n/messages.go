package i18n

var messages = map[string]map[string]string{
	LocaleEnUS: {
		"error.bad_request":                    "Invalid request",
		"error.unauthorized":                   "Unauthorized",
		"error.forbidden":                      "Permission denied",
		"error.not_found":                      "Resource not found",
		"error.internal":                       "Internal server error",
		"error.jwt_secret_missing":             "Authentication is not configured",
		"error.auth_header_missing":            "Authorization header is missing",
		"error.auth_header_invalid":            "Authorization header is invalid",
		"error.token_invalid":                  "Token is invalid or expired",
		"error.token_revoked":                  "Token has been revoked",
		"error.rate_limit_unavailable":         "Rate limiter is unavailable",
		"error.too_many_requests":              "Too many requests, retry in %d seconds",
		"error.login_rate_limited":             "Too many login attempts, retry in %d seconds",
		"error.user_id_invalid":                "User id is invalid",
		"error.user_id_type_invalid":           "User id type is invalid",
		"error.admin_id_invalid":               "Admin id is invalid",
		"error.admin_id_type_invalid":          "Admin id type is invalid",
		"error.email_invalid":                  "Email is invalid",
		"error.email_exists":                   "Email is already registered",
		"error.password_weak":                  "Password does not meet the policy",
		"error.password_min_length":            "Password must be at least %d characters",
		"error.password_require_upper":         "Password must contain an uppercase letter",
		"error.password_require_lower":         "Password must contain a lowercase letter",
		"error.password_require_number":        "Password must contain a digit",
		"error.password_invalid":               "Current password is incorrect",
		"error.login_invalid":                  "Email or password is incorrect",
		"error.admin_login_invalid":            "Username or password is incorrect",
		"error.login_failed":                   "Login failed",
		"error.register_failed":                "Registration failed",
		"error.user_disabled":                  "Account is disabled",
		"error.user_not_found":                 "User not found",
		"error.user_fetch_failed":              "Failed to load user",
		"error.admin_exists":                   "Admin already exists",
		"error.admin_not_found":                "Admin not found",
		"error.admin_create_failed":            "Failed to create admin",
		"error.admin_fetch_failed":             "Failed to load admins",
		"error.link_not_found":                 "Link not found",
		"error.link_inactive":                  "Link is disabled",
		"error.link_url_invalid":               "Target URL must be an absolute http(s) URL",
		"error.link_owner_inactive":            "Link owner is inactive",
		"error.link_create_failed":             "Failed to create link",
		"error.link_fetch_failed":              "Failed to load links",
		"error.link_update_failed":             "Failed to update link",
		"error.qr_generate_failed":             "Failed to generate QR code",
		"error.visit_record_failed":            "Failed to record visit",
		"error.visit_not_found":                "Visit not found",
		"error.visit_fetch_failed":             "Failed to load visits",
		"error.visit_ip_unavailable":           "Visit has no stored IP",
		"error.ip_encryption_disabled":         "IP encryption is disabled",
		"error.decrypt_failed":                 "Failed to decrypt IP",
		"error.country_code_invalid":           "Country code is invalid",
		"error.cpm_rate_invalid":               "CPM rate is invalid",
		"error.cpm_rate_exists":                "CPM rate already exists",
		"error.cpm_rate_not_found":             "CPM rate not found",
		"error.cpm_rate_save_failed":           "Failed to save CPM rate",
		"error.cpm_rate_fetch_failed":          "Failed to load CPM rates",
		"error.cpm_rate_seed_failed":           "Failed to seed CPM rates",
		"error.referral_not_flagged":           "Referral is not flagged",
		"error.referral_flagged":               "Referral is already flagged",
		"error.fraud_action_invalid":           "Fraud action is invalid",
		"error.fraud_resolve_failed":           "Failed to resolve fraud alert",
		"error.fraud_fetch_failed":             "Failed to load fraud alerts",
		"error.referral_fetch_failed":          "Failed to load referral summary",
		"error.insufficient_balance":           "Insufficient balance",
		"error.payout_pending_exists":          "A payout request is already pending",
		"error.payout_amount_too_low":          "Payout amount is below the minimum",
		"error.payout_method_invalid":          "Payout method is invalid",
		"error.payout_address_required":        "Payout address is required",
		"error.payout_not_found":               "Payout not found",
		"error.payout_status_invalid":          "Payout status transition is not allowed",
		"error.payout_create_failed":           "Failed to create payout",
		"error.payout_update_failed":           "Failed to update payout",
		"error.payout_fetch_failed":            "Failed to load payouts",
		"error.balance_adjust_invalid":         "Adjustment amount must be a non-zero number",
		"error.balance_adjust_reason_required": "Adjustment reason is required",
		"error.balance_adjust_failed":          "Failed to adjust balance",
		"error.earnings_fetch_failed":          "Failed to load earnings",
		"error.report_range_invalid":           "Report date range is invalid",
		"error.export_failed":                  "Export failed",
		"error.settings_invalid":               "Settings are invalid",
		"error.settings_fetch_failed":          "Failed to load settings",
		"error.settings_save_failed":           "Failed to save settings",
		"error.visit_event_not_found":          "Visit event not found",
		"error.visit_event_not_failed":         "Only failed events can be requeued",
		"error.visit_event_fetch_failed":       "Failed to load visit events",
		"error.visit_event_requeue_failed":     "Failed to requeue visit event",
		"error.role_invalid":                   "Role is invalid",
		"error.role_immutable":                 "Builtin roles cannot be deleted",
		"error.authz_fetch_failed":             "Failed to load permissions",
		"error.authz_save_failed":              "Failed to save permissions",
		"error.audit_fetch_failed":             "Failed to load audit logs",
	},
	LocaleZhCN: {
		"error.bad_request":                    "请求参数错误",
		"error.unauthorized":                   "未登录或登录已失效",
		"error.forbidden":                      "没有权限",
		"error.not_found":                      "资源不存在",
		"error.internal":                       "服务器内部错误",
		"error.jwt_secret_missing":             "鉴权未配置",
		"error.auth_header_missing":            "缺少 Authorization 请求头",
		"error.auth_header_invalid":            "Authorization 请求头格式错误",
		"error.token_invalid":                  "Token 无效或已过期",
		"error.token_revoked":                  "Token 已失效",
		"error.rate_limit_unavailable":         "限流服务不可用",
		"error.too_many_requests":              "请求过于频繁，请 %d 秒后重试",
		"error.login_rate_limited":             "登录尝试过多，请 %d 秒后重试",
		"error.user_id_invalid":                "用户 ID 无效",
		"error.user_id_type_invalid":           "用户 ID 类型错误",
		"error.admin_id_invalid":               "管理员 ID 无效",
		"error.admin_id_type_invalid":          "管理员 ID 类型错误",
		"error.email_invalid":                  "邮箱格式错误",
		"error.email_exists":                   "邮箱已注册",
		"error.password_weak":                  "密码强度不足",
		"error.password_min_length":            "密码长度至少 %d 位",
		"error.password_require_upper":         "密码需包含大写字母",
		"error.password_require_lower":         "密码需包含小写字母",
		"error.password_require_number":        "密码需包含数字",
		"error.password_invalid":               "原密码错误",
		"error.login_invalid":                  "邮箱或密码错误",
		"error.admin_login_invalid":            "账号或密码错误",
		"error.login_failed":                   "登录失败",
		"error.register_failed":                "注册失败",
		"error.user_disabled":                  "账号已禁用",
		"error.user_not_found":                 "用户不存在",
		"error.user_fetch_failed":              "获取用户失败",
		"error.admin_exists":                   "管理员已存在",
		"error.admin_not_found":                "管理员不存在",
		"error.admin_create_failed":            "创建管理员失败",
		"error.admin_fetch_failed":             "获取管理员失败",
		"error.link_not_found":                 "短链不存在",
		"error.link_inactive":                  "短链已停用",
		"error.link_url_invalid":               "目标地址必须是完整的 http(s) 链接",
		"error.link_owner_inactive":            "短链所有者已停用",
		"error.link_create_failed":             "创建短链失败",
		"error.link_fetch_failed":              "获取短链失败",
		"error.link_update_failed":             "更新短链失败",
		"error.qr_generate_failed":             "生成二维码失败",
		"error.visit_record_failed":            "记录访问失败",
		"error.visit_not_found":                "访问记录不存在",
		"error.visit_fetch_failed":             "获取访问记录失败",
		"error.visit_ip_unavailable":           "该访问未保存 IP",
		"error.ip_encryption_disabled":         "未启用 IP 加密",
		"error.decrypt_failed":                 "IP 解密失败",
		"error.country_code_invalid":           "国家代码无效",
		"error.cpm_rate_invalid":               "CPM 费率无效",
		"error.cpm_rate_exists":                "CPM 费率已存在",
		"error.cpm_rate_not_found":             "CPM 费率不存在",
		"error.cpm_rate_save_failed":           "保存 CPM 费率失败",
		"error.cpm_rate_fetch_failed":          "获取 CPM 费率失败",
		"error.cpm_rate_seed_failed":           "初始化 CPM 费率失败",
		"error.referral_not_flagged":           "该推荐关系未被标记",
		"error.referral_flagged":               "该推荐关系已被标记",
		"error.fraud_action_invalid":           "处理动作无效",
		"error.fraud_resolve_failed":           "处理作弊告警失败",
		"error.fraud_fetch_failed":             "获取作弊告警失败",
		"error.referral_fetch_failed":          "获取推荐数据失败",
		"error.insufficient_balance":           "余额不足",
		"error.payout_pending_exists":          "已有待处理的提现申请",
		"error.payout_amount_too_low":          "提现金额低于最低限额",
		"error.payout_method_invalid":          "提现方式无效",
		"error.payout_address_required":        "请填写收款地址",
		"error.payout_not_found":               "提现记录不存在",
		"error.payout_status_invalid":          "提现状态不允许该操作",
		"error.payout_create_failed":           "提交提现失败",
		"error.payout_update_failed":           "更新提现失败",
		"error.payout_fetch_failed":            "获取提现记录失败",
		"error.balance_adjust_invalid":         "调整金额必须为非零数字",
		"error.balance_adjust_reason_required": "请填写调整原因",
		"error.balance_adjust_failed":          "调整余额失败",
		"error.earnings_fetch_failed":          "获取收益失败",
		"error.report_range_invalid":           "报表日期范围无效",
		"error.export_failed":                  "导出失败",
		"error.settings_invalid":               "设置参数无效",
		"error.settings_fetch_failed":          "获取设置失败",
		"error.settings_save_failed":           "保存设置失败",
		"error.visit_event_not_found":          "访问事件不存在",
		"error.visit_event_not_failed":         "仅失败事件可以重新投递",
		"error.visit_event_fetch_failed":       "获取访问事件失败",
		"error.visit_event_requeue_failed":     "重新投递失败",
		"error.role_invalid":                   "角色无效",
		"error.role_immutable":                 "预置角色不可删除",
		"error.authz_fetch_failed":             "获取权限失败",
		"error.authz_save_failed":              "保存权限失败",
		"error.audit_fetch_failed":             "获取审计日志失败",
	},
}
