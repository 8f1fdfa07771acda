package models

import "time"

// VisitEvent 访问入账事件（outbox），驱动推荐佣金异步处理
type VisitEvent struct {
	ID            uint       `gorm:"primarykey" json:"id"`
	VisitID       uint       `gorm:"uniqueIndex;not null" json:"visit_id"`
	UserID        uint       `gorm:"index;not null" json:"user_id"` // 被推荐人（链接所有者）
	UserEarning   Money      `gorm:"type:decimal(20,6);not null" json:"user_earning"`
	PlatformShare Money      `gorm:"type:decimal(20,6);not null" json:"platform_share"`
	Status        string     `gorm:"type:varchar(20);not null;index" json:"status"`
	Attempts      int        `gorm:"not null;default:0" json:"attempts"`
	CommissionID  *uint      `json:"commission_id,omitempty"`
	LastError     string     `gorm:"type:text" json:"last_error"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName 指定表名
func (VisitEvent) TableName() string {
	return "visit_events"
}
