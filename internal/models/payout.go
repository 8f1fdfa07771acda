package models

import "time"

// Payout 提现申请表
type Payout struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	UserID       uint       `gorm:"index;not null" json:"user_id"`
	Amount       Money      `gorm:"type:decimal(20,6);not null" json:"amount"`
	Method       string     `gorm:"type:varchar(20);not null" json:"method"`
	Address      string     `gorm:"type:varchar(255);not null" json:"address"`
	Status       string     `gorm:"type:varchar(20);not null;index" json:"status"`
	RejectReason string     `gorm:"type:varchar(255);not null;default:''" json:"reject_reason"`
	ProcessedBy  *uint      `json:"processed_by,omitempty"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName 指定表名
func (Payout) TableName() string {
	return "payouts"
}
