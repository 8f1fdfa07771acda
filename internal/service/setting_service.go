package service

import (
	"strings"

	"github.com/clickvault/internal/constants"
	"github.com/clickvault/internal/models"
	"github.com/clickvault/internal/repository"

	"github.com/spf13/cast"
)

// SettingService 后台可调的配置组
type SettingService struct {
	repo repository.SettingRepository
}

// NewSettingService 创建设置服务
func NewSettingService(repo repository.SettingRepository) *SettingService {
	return &SettingService{repo: repo}
}

// Raw 读取配置组原始值，未保存过返回 nil
func (s *SettingService) Raw(key string) (models.JSON, error) {
	setting, err := s.repo.Get(key)
	if err != nil || setting == nil {
		return nil, err
	}
	return setting.Value, nil
}

// Put 归一化后写入配置组；未知键原样保存
func (s *SettingService) Put(key string, value map[string]interface{}, updatedBy uint) (models.JSON, error) {
	normalized := models.JSON(value)
	if key == constants.SettingKeyReferralConfig {
		normalized = normalizeReferralSettingMap(value)
	}
	setting := &models.Setting{Key: key, Value: normalized}
	if updatedBy != 0 {
		setting.UpdatedBy = &updatedBy
	}
	if err := s.repo.Put(setting); err != nil {
		return nil, err
	}
	return setting.Value, nil
}

// 后台表单提交的值可能是字符串或数字，以下按宽松规则读取

func settingFloat(raw interface{}) (float64, bool) {
	v, err := cast.ToFloat64E(raw)
	return v, err == nil
}

func settingInt(raw interface{}) (int, bool) {
	if f, ok := raw.(float64); ok {
		return int(f), true
	}
	v, err := cast.ToIntE(raw)
	return v, err == nil
}

func settingBool(raw interface{}) bool {
	if text, ok := raw.(string); ok {
		switch strings.ToLower(strings.TrimSpace(text)) {
		case "yes", "on":
			return true
		case "no", "off", "":
			return false
		}
	}
	v, err := cast.ToBoolE(raw)
	return err == nil && v
}
