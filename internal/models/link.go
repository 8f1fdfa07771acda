package models

import (
	"time"

	"gorm.io/gorm"
)

// Link 短链接表
type Link struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	UserID       uint           `gorm:"index;not null" json:"user_id"`                             // 所有者
	Code         string         `gorm:"type:varchar(16);uniqueIndex;not null" json:"code"`         // 短码
	OriginalURL  string         `gorm:"type:text;not null" json:"original_url"`                    // 跳转目标
	Title        string         `gorm:"type:varchar(255);not null;default:''" json:"title"`        // 标题
	Description  string         `gorm:"type:text" json:"description"`                              // 描述
	IsActive     bool           `gorm:"not null;default:true;index" json:"is_active"`              // 是否启用
	TotalClicks  int64          `gorm:"not null;default:0" json:"total_clicks"`                    // 总点击
	UniqueClicks int64          `gorm:"not null;default:0" json:"unique_clicks"`                   // 独立点击
	TotalEarned  Money          `gorm:"type:decimal(20,6);not null;default:0" json:"total_earned"` // 累计收益（只增不减）
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (Link) TableName() string {
	return "links"
}
