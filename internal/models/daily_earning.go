package models

import "time"

// DailyEarning 用户按日/国家收益汇总
type DailyEarning struct {
	ID              uint      `gorm:"primarykey" json:"id"`
	UserID          uint      `gorm:"not null;uniqueIndex:uniq_daily_user_date_country,priority:1" json:"user_id"`
	Date            string    `gorm:"type:varchar(10);not null;uniqueIndex:uniq_daily_user_date_country,priority:2;index" json:"date"` // YYYY-MM-DD (UTC)
	CountryCode     string    `gorm:"type:varchar(2);not null;uniqueIndex:uniq_daily_user_date_country,priority:3" json:"country_code"`
	Visits          int64     `gorm:"not null;default:0" json:"visits"`
	UniqueVisits    int64     `gorm:"not null;default:0" json:"unique_visits"`
	Earnings        Money     `gorm:"type:decimal(20,6);not null;default:0" json:"earnings"`
	PlatformEarning Money     `gorm:"type:decimal(20,6);not null;default:0" json:"platform_earning"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName 指定表名
func (DailyEarning) TableName() string {
	return "daily_earnings"
}
