package models

import (
	"time"

	"gorm.io/gorm"
)

// Visit 访问记录表（写入后不可变）
type Visit struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	LinkID         uint      `gorm:"index;not null" json:"link_id"`
	IPHash         string    `gorm:"type:varchar(64);not null;index:idx_visits_ip_hash_created,priority:1" json:"ip_hash"` // IP 指纹
	EncryptedIP    string    `gorm:"type:text" json:"-"`                                                                   // 可逆加密 IP（仅取证）
	CountryCode    string    `gorm:"type:varchar(2);not null;index" json:"country_code"`
	CountryTier    int       `gorm:"not null;default:3" json:"country_tier"`
	Device         string    `gorm:"type:varchar(20);not null;default:'unknown'" json:"device"`
	Browser        string    `gorm:"type:varchar(20);not null;default:'other'" json:"browser"`
	Earned         Money     `gorm:"type:decimal(20,6);not null;default:0" json:"earned"`          // 用户分成
	PlatformEarned Money     `gorm:"type:decimal(20,6);not null;default:0" json:"platform_earned"` // 平台分成
	CPMRateUsed    Money     `gorm:"type:decimal(20,6);not null;default:0" json:"cpm_rate_used"`   // 计算使用的 base CPM
	IsUnique       bool      `gorm:"not null;default:false" json:"is_unique"`
	FraudBlocked   bool      `gorm:"not null;default:false;index" json:"fraud_blocked"`
	BlockReason    string    `gorm:"type:varchar(32);not null;default:''" json:"block_reason"`
	CreatedAt      time.Time `gorm:"index;index:idx_visits_ip_hash_created,priority:2" json:"created_at"`
}

// TableName 指定表名
func (Visit) TableName() string {
	return "visits"
}

// BeforeCreate 访问时间统一按 UTC 落库，SQLite 按文本比较时间，时区混用会错判日上限
func (v *Visit) BeforeCreate(*gorm.DB) error {
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	v.CreatedAt = v.CreatedAt.UTC()
	return nil
}
