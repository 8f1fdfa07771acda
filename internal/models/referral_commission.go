package models

import "time"

// ReferralCommission 推荐佣金记录（每个访问最多一条）
type ReferralCommission struct {
	ID              uint      `gorm:"primarykey" json:"id"`
	ReferrerID      uint      `gorm:"index;not null" json:"referrer_id"`
	ReferredID      uint      `gorm:"index;not null" json:"referred_id"`
	VisitID         uint      `gorm:"uniqueIndex;not null" json:"visit_id"`
	Amount          Money     `gorm:"type:decimal(20,6);not null" json:"amount"`           // 佣金
	ReferredEarning Money     `gorm:"type:decimal(20,6);not null" json:"referred_earning"` // 被推荐人本次收益（审计）
	CommissionRate  Money     `gorm:"type:decimal(20,6);not null" json:"commission_rate"`  // 费率快照
	Status          string    `gorm:"type:varchar(20);not null;index" json:"status"`
	ProcessedAt     time.Time `json:"processed_at"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (ReferralCommission) TableName() string {
	return "referral_commissions"
}
