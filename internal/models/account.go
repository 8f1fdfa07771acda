package models

import (
	"time"

	"gorm.io/gorm"
)

// User 用户表（链接所有者 / 推荐人）
type User struct {
	ID                   uint           `gorm:"primarykey" json:"id"`                                              // 主键
	Email                string         `gorm:"uniqueIndex;not null" json:"email"`                                 // 邮箱
	PasswordHash         string         `gorm:"not null" json:"-"`                                                 // 密码哈希
	DisplayName          string         `gorm:"default:''" json:"display_name"`                                    // 昵称
	Status               string         `gorm:"default:'active';index" json:"status"`                              // 账号状态
	TokenVersion         uint64         `gorm:"not null;default:0" json:"-"`                                       // Token 版本
	Balance              Money          `gorm:"type:decimal(20,6);not null;default:0" json:"balance"`              // 可提现余额
	TotalEarned          Money          `gorm:"type:decimal(20,6);not null;default:0" json:"total_earned"`         // 累计收益（只增不减）
	ReferralCode         string         `gorm:"type:varchar(8);uniqueIndex;not null" json:"referral_code"`         // 推荐码
	ReferredByID         *uint          `gorm:"index" json:"referred_by_id,omitempty"`                             // 推荐人
	ReferralIPHash       string         `gorm:"type:varchar(64);index;not null;default:''" json:"-"`               // 注册时 IP 指纹
	LastLoginIPHash      string         `gorm:"type:varchar(64);not null;default:''" json:"-"`                     // 最近登录 IP 指纹
	ReferralFraudFlag    bool           `gorm:"not null;default:false;index" json:"referral_fraud_flag"`           // 推荐关系作弊标记
	ReferralFraudReason  string         `gorm:"type:varchar(64);not null;default:''" json:"referral_fraud_reason"` // 作弊原因
	ReferralBonusExpires *time.Time     `json:"referral_bonus_expires,omitempty"`                                  // 推荐奖励截止（空表示不限期）
	ReferralEarnings     Money          `gorm:"type:decimal(20,6);not null;default:0" json:"referral_earnings"`    // 推荐佣金累计
	LastLoginAt          *time.Time     `json:"last_login_at"`                                                     // 最后登录时间
	CreatedAt            time.Time      `gorm:"index" json:"created_at"`                                           // 创建时间
	UpdatedAt            time.Time      `gorm:"index" json:"updated_at"`                                           // 更新时间
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`                                                    // 软删除时间
}

func (User) TableName() string {
	return "users"
}

// Admin 后台账号；超级管理员跳过 casbin 校验，改密时 TokenVersion 递增使旧令牌失效
type Admin struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Username     string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"`
	PasswordHash string         `gorm:"not null" json:"-"`
	TokenVersion uint64         `gorm:"not null;default:0" json:"-"`
	IsSuper      bool           `gorm:"not null;default:false;index" json:"is_super"`
	LastLoginAt  *time.Time     `json:"last_login_at"`
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Admin) TableName() string {
	return "admins"
}
