package service

import (
	"fmt"
	"math"
	"time"

	"github.com/clickvault/internal/constants"
	"github.com/clickvault/internal/models"

	"github.com/shopspring/decimal"
)

const (
	referralCommissionRateMin = 0
	referralCommissionRateMax = 1
	referralBonusDaysMin      = 0
	referralBonusDaysMax      = 3650
	referralMinPayoutMin      = 0
)

// ReferralSetting 推荐与提现配置（settings 单例 referral_config）
type ReferralSetting struct {
	ReferralActive    bool    `json:"referral_active"`
	CommissionRate    float64 `json:"commission_rate"`     // 平台分成的比例（0-1）
	BonusDays         int     `json:"bonus_days"`          // 0 表示不限期
	MinReferralPayout float64 `json:"min_referral_payout"` // 推荐佣金最低提现
	MinPayout         float64 `json:"min_payout"`          // 通用最低提现
}

// ReferralDefaultSetting 默认推荐配置
func ReferralDefaultSetting() ReferralSetting {
	return NormalizeReferralSetting(ReferralSetting{
		ReferralActive:    true,
		CommissionRate:    0.10,
		BonusDays:         0,
		MinReferralPayout: 5,
		MinPayout:         5,
	})
}

// NormalizeReferralSetting 归一化推荐配置
func NormalizeReferralSetting(setting ReferralSetting) ReferralSetting {
	setting.CommissionRate = math.Round(setting.CommissionRate*10000) / 10000
	if setting.CommissionRate < referralCommissionRateMin {
		setting.CommissionRate = referralCommissionRateMin
	}
	if setting.CommissionRate > referralCommissionRateMax {
		setting.CommissionRate = referralCommissionRateMax
	}
	if setting.BonusDays < referralBonusDaysMin {
		setting.BonusDays = referralBonusDaysMin
	}
	if setting.BonusDays > referralBonusDaysMax {
		setting.BonusDays = referralBonusDaysMax
	}
	setting.MinReferralPayout = roundSettingMoney(setting.MinReferralPayout)
	if setting.MinReferralPayout < referralMinPayoutMin {
		setting.MinReferralPayout = referralMinPayoutMin
	}
	setting.MinPayout = roundSettingMoney(setting.MinPayout)
	if setting.MinPayout < referralMinPayoutMin {
		setting.MinPayout = referralMinPayoutMin
	}
	return setting
}

// ValidateReferralSetting 校验原始输入（归一化前）
func ValidateReferralSetting(setting ReferralSetting) error {
	if setting.CommissionRate < referralCommissionRateMin || setting.CommissionRate > referralCommissionRateMax {
		return fmt.Errorf("%w: commission_rate must be between 0 and 1", ErrReferralConfigInvalid)
	}
	if setting.BonusDays < referralBonusDaysMin || setting.BonusDays > referralBonusDaysMax {
		return fmt.Errorf("%w: bonus_days must be between 0 and 3650", ErrReferralConfigInvalid)
	}
	if setting.MinReferralPayout < referralMinPayoutMin || setting.MinPayout < referralMinPayoutMin {
		return fmt.Errorf("%w: minimum payout must not be negative", ErrReferralConfigInvalid)
	}
	return nil
}

// ReferralSettingToMap 转换为 settings 存储结构
func ReferralSettingToMap(setting ReferralSetting) map[string]interface{} {
	normalized := NormalizeReferralSetting(setting)
	return map[string]interface{}{
		"referral_active":     normalized.ReferralActive,
		"commission_rate":     normalized.CommissionRate,
		"bonus_days":          normalized.BonusDays,
		"min_referral_payout": normalized.MinReferralPayout,
		"min_payout":          normalized.MinPayout,
	}
}

// CommissionRateDecimal 佣金比例
func (s ReferralSetting) CommissionRateDecimal() decimal.Decimal {
	return decimal.NewFromFloat(s.CommissionRate)
}

// MinPayoutDecimal 最低提现金额
func (s ReferralSetting) MinPayoutDecimal() decimal.Decimal {
	return decimal.NewFromFloat(s.MinPayout)
}

// BonusExpiresAt 推荐奖励截止时间，不限期返回 nil
func (s ReferralSetting) BonusExpiresAt(from time.Time) *time.Time {
	if s.BonusDays <= 0 {
		return nil
	}
	expires := from.AddDate(0, 0, s.BonusDays)
	return &expires
}

func referralSettingFromJSON(raw models.JSON, fallback ReferralSetting) ReferralSetting {
	result := fallback
	if v, ok := raw["referral_active"]; ok {
		result.ReferralActive = settingBool(v)
	}
	if v, present := raw["commission_rate"]; present {
		if parsed, ok := settingFloat(v); ok {
			result.CommissionRate = parsed
		}
	}
	if v, present := raw["bonus_days"]; present {
		// null 表示不限期
		result.BonusDays = 0
		if days, ok := settingInt(v); ok {
			result.BonusDays = days
		}
	}
	if v, present := raw["min_referral_payout"]; present {
		if parsed, ok := settingFloat(v); ok {
			result.MinReferralPayout = parsed
		}
	}
	if v, present := raw["min_payout"]; present {
		if parsed, ok := settingFloat(v); ok {
			result.MinPayout = parsed
		}
	}
	return NormalizeReferralSetting(result)
}

func normalizeReferralSettingMap(value map[string]interface{}) models.JSON {
	setting := referralSettingFromJSON(models.JSON(value), ReferralDefaultSetting())
	return models.JSON(ReferralSettingToMap(setting))
}

func roundSettingMoney(value float64) float64 {
	return math.Round(value*100) / 100
}

// GetReferralSetting 获取推荐设置（优先 settings，空时回退默认）
func (s *SettingService) GetReferralSetting() (ReferralSetting, error) {
	fallback := ReferralDefaultSetting()
	if s == nil {
		return fallback, nil
	}
	value, err := s.Raw(constants.SettingKeyReferralConfig)
	if err != nil {
		return fallback, err
	}
	if value == nil {
		return fallback, nil
	}
	return referralSettingFromJSON(value, fallback), nil
}

// UpdateReferralSetting 校验并保存推荐设置
func (s *SettingService) UpdateReferralSetting(setting ReferralSetting, adminID uint) (ReferralSetting, error) {
	if err := ValidateReferralSetting(setting); err != nil {
		return ReferralDefaultSetting(), err
	}
	normalized := NormalizeReferralSetting(setting)
	if _, err := s.Put(constants.SettingKeyReferralConfig, ReferralSettingToMap(normalized), adminID); err != nil {
		return ReferralDefaultSetting(), err
	}
	return normalized, nil
}
