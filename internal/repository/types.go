package repository

import "time"

// UserListFilter 用户列表过滤条件
type UserListFilter struct {
	Page         int
	PageSize     int
	Keyword      string
	Status       string
	FraudFlagged *bool
	ReferredByID uint
}

// LinkListFilter 短链列表过滤条件
type LinkListFilter struct {
	Page       int
	PageSize   int
	UserID     uint
	Keyword    string
	OnlyActive bool
}

// VisitListFilter 访问记录过滤条件
type VisitListFilter struct {
	Page        int
	PageSize    int
	LinkID      uint
	FraudOnly   bool
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// CpmRateListFilter 费率列表过滤条件
type CpmRateListFilter struct {
	Tier       int
	OnlyActive bool
}

// CpmRateHistoryFilter 费率变更记录过滤条件
type CpmRateHistoryFilter struct {
	Page        int
	PageSize    int
	CountryCode string
}

// CommissionListFilter 推荐佣金过滤条件
type CommissionListFilter struct {
	Page       int
	PageSize   int
	ReferrerID uint
	ReferredID uint
}

// DailyEarningFilter 日收益汇总过滤条件（日期为 YYYY-MM-DD，闭区间）
type DailyEarningFilter struct {
	UserID   uint
	DateFrom string
	DateTo   string
}

// PayoutListFilter 提现列表过滤条件
type PayoutListFilter struct {
	Page     int
	PageSize int
	UserID   uint
	Status   string
}

// VisitEventListFilter 访问事件过滤条件
type VisitEventListFilter struct {
	Page     int
	PageSize int
	Status   string
}

// AdminActionLogFilter 管理操作审计过滤条件
type AdminActionLogFilter struct {
	Page       int
	PageSize   int
	AdminID    uint
	Action     string
	TargetType string
}
