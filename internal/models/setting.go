package models

import "time"

// Setting 一行保存一个配置组，值为归一化后的 JSON
type Setting struct {
	Key       string    `gorm:"primaryKey;size:64" json:"key"`
	Value     JSON      `gorm:"column:value_json;type:json" json:"value"`
	UpdatedBy *uint     `gorm:"index" json:"updated_by,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Setting) TableName() string {
	return "settings"
}
