package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/clickvault/internal/cache"
	"github.com/clickvault/internal/constants"
	"github.com/clickvault/internal/logger"
	"github.com/clickvault/internal/models"
	"github.com/clickvault/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CommissionEngine 推荐佣金计算与入账
type CommissionEngine interface {
	ProcessCommission(ctx context.Context, referredUserID, visitID uint, userEarning, platformEarning decimal.Decimal) (*models.ReferralCommission, error)
}

// ReferralSettingSource 推荐配置读取
type ReferralSettingSource interface {
	GetReferralSetting() (ReferralSetting, error)
}

// ReferralService 推荐佣金与推荐关系管理
type ReferralService struct {
	userRepo     repository.UserRepository
	referralRepo repository.ReferralRepository
	actionRepo   repository.AdminActionLogRepository
	settings     ReferralSettingSource
	now          func() time.Time
}

// NewReferralService 创建推荐服务
func NewReferralService(
	userRepo repository.UserRepository,
	referralRepo repository.ReferralRepository,
	actionRepo repository.AdminActionLogRepository,
	settings ReferralSettingSource,
) *ReferralService {
	return &ReferralService{
		userRepo:     userRepo,
		referralRepo: referralRepo,
		actionRepo:   actionRepo,
		settings:     settings,
		now:          time.Now,
	}
}

// DetectReferralFraud 注册指纹与推荐人已知指纹相同视为自推荐
func DetectReferralFraud(referrer *models.User, fingerprint string) (bool, string) {
	if referrer == nil || strings.TrimSpace(fingerprint) == "" {
		return false, ""
	}
	if fingerprint == referrer.ReferralIPHash || fingerprint == referrer.LastLoginIPHash {
		return true, constants.ReferralFraudSameIP
	}
	return false, ""
}

// ProcessCommission 任一条件不满足返回 nil（无佣金、非错误）
func (s *ReferralService) ProcessCommission(ctx context.Context, referredUserID, visitID uint, userEarning, platformEarning decimal.Decimal) (*models.ReferralCommission, error) {
	setting, err := s.settings.GetReferralSetting()
	if err != nil {
		return nil, err
	}
	if !setting.ReferralActive {
		return nil, nil
	}

	referred, err := s.userRepo.GetByID(referredUserID)
	if err != nil {
		return nil, err
	}
	if referred == nil || referred.ReferredByID == nil {
		return nil, nil
	}
	referrer, err := s.userRepo.GetByID(*referred.ReferredByID)
	if err != nil {
		return nil, err
	}
	if referrer == nil || referrer.Status != constants.UserStatusActive {
		return nil, nil
	}
	if referred.ReferralFraudFlag {
		return nil, nil
	}
	now := s.now()
	if referred.ReferralBonusExpires != nil && now.After(*referred.ReferralBonusExpires) {
		return nil, nil
	}

	rate := setting.CommissionRateDecimal()
	commission := platformEarning.Mul(rate).Round(models.MoneyScale)
	if !commission.IsPositive() || commission.GreaterThan(platformEarning) {
		return nil, nil
	}

	record := &models.ReferralCommission{
		ReferrerID:      referrer.ID,
		ReferredID:      referred.ID,
		VisitID:         visitID,
		Amount:          models.NewMoneyFromDecimal(commission),
		ReferredEarning: models.NewMoneyFromDecimal(userEarning),
		CommissionRate:  models.NewMoneyFromDecimal(rate),
		Status:          constants.ReferralCommissionStatusProcessed,
		ProcessedAt:     now,
	}
	err = s.userRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.referralRepo.WithTx(tx).CreateCommission(record); err != nil {
			return err
		}
		return s.userRepo.WithTx(tx).CreditReferralEarnings(referrer.ID, commission)
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			logger.Warnw("referral_commission_duplicate_visit", "visit_id", visitID, "referrer_id", referrer.ID)
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

// ListFraudAlerts 被标记作弊的推荐关系
func (s *ReferralService) ListFraudAlerts(page, pageSize int) ([]models.User, int64, error) {
	flagged := true
	return s.userRepo.List(repository.UserListFilter{
		Page:         page,
		PageSize:     pageSize,
		FraudFlagged: &flagged,
	})
}

// FlagReferral 管理员手动标记推荐作弊
func (s *ReferralService) FlagReferral(ctx context.Context, adminID, userID uint, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "manual"
	}
	err := s.userRepo.Transaction(func(tx *gorm.DB) error {
		userRepo := s.userRepo.WithTx(tx)
		user, err := userRepo.GetByIDForUpdate(userID)
		if err != nil {
			return err
		}
		if user == nil || user.ReferredByID == nil {
			return ErrUserNotFound
		}
		if user.ReferralFraudFlag {
			return ErrReferralAlreadyFlagged
		}
		if err := userRepo.UpdateReferralFraud(userID, true, reason); err != nil {
			return err
		}
		return recordAdminAction(s.actionRepo.WithTx(tx), adminID, constants.AdminActionFraudFlag, "user", userID, models.JSON{
			"reason":      reason,
			"referrer_id": *user.ReferredByID,
		})
	})
	return err
}

// ResolveFraudAlert dismiss 清除标记；block 停用被推荐人；block_both 同时停用推荐人
func (s *ReferralService) ResolveFraudAlert(ctx context.Context, adminID, userID uint, action string) error {
	action = strings.ToLower(strings.TrimSpace(action))
	auditAction, ok := fraudAuditActions[action]
	if !ok {
		return fmt.Errorf("%w: %s", ErrFraudActionInvalid, action)
	}

	var disabled []uint
	err := s.userRepo.Transaction(func(tx *gorm.DB) error {
		userRepo := s.userRepo.WithTx(tx)
		user, err := userRepo.GetByIDForUpdate(userID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}
		if !user.ReferralFraudFlag {
			return ErrReferralNotFlagged
		}

		detail := models.JSON{"reason": user.ReferralFraudReason}
		switch action {
		case constants.FraudActionDismiss:
			if err := userRepo.UpdateReferralFraud(userID, false, ""); err != nil {
				return err
			}
		case constants.FraudActionBlock:
			disabled = []uint{userID}
		case constants.FraudActionBlockBoth:
			disabled = []uint{userID}
			if user.ReferredByID != nil {
				disabled = append(disabled, *user.ReferredByID)
				detail["referrer_id"] = *user.ReferredByID
			}
		}
		if len(disabled) > 0 {
			if err := userRepo.UpdateStatus(disabled, constants.UserStatusDisabled); err != nil {
				return err
			}
			detail["disabled_user_ids"] = disabled
		}
		return recordAdminAction(s.actionRepo.WithTx(tx), adminID, auditAction, "user", userID, detail)
	})
	if err != nil {
		return err
	}
	for _, id := range disabled {
		if err := cache.ForgetPrincipal(ctx, cache.PrincipalUser, id); err != nil {
			logger.Warnw("referral_fraud_auth_cache_invalidate_failed", "user_id", id, "error", err)
		}
	}
	return nil
}

var fraudAuditActions = map[string]string{
	constants.FraudActionDismiss:   constants.AdminActionFraudDismiss,
	constants.FraudActionBlock:     constants.AdminActionFraudBlock,
	constants.FraudActionBlockBoth: constants.AdminActionFraudBlockBoth,
}

// ReferralSummary 推荐人视角汇总
type ReferralSummary struct {
	ReferralCode      string                      `json:"referral_code"`
	ReferredCount     int64                       `json:"referred_count"`
	ReferralEarnings  models.Money                `json:"referral_earnings"`
	CommissionRate    float64                     `json:"commission_rate"`
	ReferralActive    bool                        `json:"referral_active"`
	MinReferralPayout float64                     `json:"min_referral_payout"`
	RecentCommissions []models.ReferralCommission `json:"recent_commissions"`
}

// GetReferralSummary 获取推荐汇总
func (s *ReferralService) GetReferralSummary(userID uint) (*ReferralSummary, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	setting, err := s.settings.GetReferralSetting()
	if err != nil {
		return nil, err
	}
	count, err := s.userRepo.CountReferred(userID)
	if err != nil {
		return nil, err
	}
	recent, _, err := s.referralRepo.ListCommissions(repository.CommissionListFilter{
		Page:       1,
		PageSize:   10,
		ReferrerID: userID,
	})
	if err != nil {
		return nil, err
	}
	return &ReferralSummary{
		ReferralCode:      user.ReferralCode,
		ReferredCount:     count,
		ReferralEarnings:  user.ReferralEarnings,
		CommissionRate:    setting.CommissionRate,
		ReferralActive:    setting.ReferralActive,
		MinReferralPayout: setting.MinReferralPayout,
		RecentCommissions: recent,
	}, nil
}

// ListCommissions 佣金列表
func (s *ReferralService) ListCommissions(filter repository.CommissionListFilter) ([]models.ReferralCommission, int64, error) {
	return s.referralRepo.ListCommissions(filter)
}
