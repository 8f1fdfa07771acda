package models

import "time"

// AdminActionLog 管理端关键操作审计日志
// 说明：费率调整、作弊处理、提现审核等状态变更与业务写入同事务落库。
type AdminActionLog struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	AdminID    uint      `gorm:"index;not null" json:"admin_id"`
	Action     string    `gorm:"type:varchar(64);index;not null" json:"action"`
	TargetType string    `gorm:"type:varchar(32);index;not null;default:''" json:"target_type"`
	TargetID   string    `gorm:"type:varchar(64);index;not null;default:''" json:"target_id"`
	DetailJSON JSON      `gorm:"type:json" json:"detail"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (AdminActionLog) TableName() string {
	return "admin_action_logs"
}
