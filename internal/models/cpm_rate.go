package models

import "time"

// CpmRate 国家 CPM 费率覆盖表
type CpmRate struct {
	ID             uint       `gorm:"primarykey" json:"id"`
	CountryCode    string     `gorm:"type:varchar(2);uniqueIndex;not null" json:"country_code"`
	CountryName    string     `gorm:"type:varchar(100);not null;default:''" json:"country_name"`
	Tier           int        `gorm:"not null;default:3" json:"tier"`
	Rate           Money      `gorm:"type:decimal(20,6);not null" json:"rate"`      // base CPM
	UserCPM        *Money     `gorm:"type:decimal(20,6)" json:"user_cpm,omitempty"` // 显式用户分成 CPM（为空按全局比例）
	IsActive       bool       `gorm:"not null;index" json:"is_active"`
	LastVerifiedAt *time.Time `json:"last_verified_at,omitempty"`
	UpdatedByID    *uint      `json:"updated_by_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName 指定表名
func (CpmRate) TableName() string {
	return "cpm_rates"
}

// CpmRateHistory CPM 费率变更审计
type CpmRateHistory struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CountryCode string    `gorm:"type:varchar(2);index;not null" json:"country_code"`
	OldRate     Money     `gorm:"type:decimal(20,6);not null" json:"old_rate"`
	NewRate     Money     `gorm:"type:decimal(20,6);not null" json:"new_rate"`
	ChangedByID uint      `gorm:"index;not null" json:"changed_by_id"`
	Note        string    `gorm:"type:varchar(255);not null;default:''" json:"note"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (CpmRateHistory) TableName() string {
	return "cpm_rate_histories"
}
