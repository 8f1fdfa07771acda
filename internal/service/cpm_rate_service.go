package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/clickvault/internal/constants"
	"github.com/clickvault/internal/logger"
	"github.com/clickvault/internal/models"
	"github.com/clickvault/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RateInvalidator 费率缓存失效
type RateInvalidator interface {
	Invalidate(ctx context.Context, countryCode string) error
}

// CpmRateService CPM 费率管理
type CpmRateService struct {
	repo        repository.CpmRateRepository
	actionRepo  repository.AdminActionLogRepository
	resolver    RateResolver
	invalidator RateInvalidator
}

// NewCpmRateService 创建费率管理服务
func NewCpmRateService(repo repository.CpmRateRepository, actionRepo repository.AdminActionLogRepository, resolver RateResolver, invalidator RateInvalidator) *CpmRateService {
	return &CpmRateService{
		repo:        repo,
		actionRepo:  actionRepo,
		resolver:    resolver,
		invalidator: invalidator,
	}
}

// CreateRateInput 新建费率参数
type CreateRateInput struct {
	CountryCode string
	CountryName string
	Tier        int
	Rate        decimal.Decimal
	UserCPM     *decimal.Decimal
	IsActive    bool
}

// ListRates 费率列表
func (s *CpmRateService) ListRates(filter repository.CpmRateListFilter) ([]models.CpmRate, error) {
	return s.repo.List(filter)
}

// ResolveRate 预览国家当前生效费率
func (s *CpmRateService) ResolveRate(ctx context.Context, countryCode string) (RateQuote, error) {
	return s.resolver.ResolveRate(ctx, countryCode)
}

// CreateRate 新建国家费率覆盖
func (s *CpmRateService) CreateRate(ctx context.Context, actorID uint, input CreateRateInput) (*models.CpmRate, error) {
	code, err := requireCountryCode(input.CountryCode)
	if err != nil {
		return nil, err
	}
	if !IsValidTier(input.Tier) {
		return nil, fmt.Errorf("%w: tier must be 1-3", ErrCpmRateInvalid)
	}
	if err := validateCPM(input.Rate); err != nil {
		return nil, err
	}
	var userCPM *models.Money
	if input.UserCPM != nil {
		if err := validateCPM(*input.UserCPM); err != nil {
			return nil, err
		}
		if input.UserCPM.GreaterThan(input.Rate) {
			return nil, fmt.Errorf("%w: user cpm exceeds base cpm", ErrCpmRateInvalid)
		}
		value := models.NewMoneyFromDecimal(*input.UserCPM)
		userCPM = &value
	}

	existing, err := s.repo.GetByCountry(code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrCpmRateExists
	}

	now := time.Now()
	actor := actorID
	rate := &models.CpmRate{
		CountryCode:    code,
		CountryName:    strings.TrimSpace(input.CountryName),
		Tier:           input.Tier,
		Rate:           models.NewMoneyFromDecimal(input.Rate),
		UserCPM:        userCPM,
		IsActive:       input.IsActive,
		LastVerifiedAt: &now,
		UpdatedByID:    &actor,
	}
	if rate.CountryName == "" {
		if static, ok := LookupStaticRate(code); ok {
			rate.CountryName = static.CountryName
		} else {
			rate.CountryName = code
		}
	}
	if err := s.repo.Create(rate); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrCpmRateExists
		}
		return nil, err
	}
	s.afterMutation(ctx, actorID, constants.AdminActionRateCreate, code, models.JSON{
		"rate":      rate.Rate.String(),
		"tier":      rate.Tier,
		"is_active": rate.IsActive,
	})
	return rate, nil
}

// UpdateRate 修改 base CPM：国家不存在返回 NotFound，变更记录与更新同事务，提交后失效缓存
func (s *CpmRateService) UpdateRate(ctx context.Context, actorID uint, countryCode string, newRate decimal.Decimal, note string) (*models.CpmRate, error) {
	code, err := requireCountryCode(countryCode)
	if err != nil {
		return nil, err
	}
	if err := validateCPM(newRate); err != nil {
		return nil, err
	}

	var updated *models.CpmRate
	var oldRate models.Money
	err = s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		row, err := repo.GetByCountryForUpdate(code)
		if err != nil {
			return err
		}
		if row == nil {
			return ErrCpmRateNotFound
		}
		if row.UserCPM != nil && row.UserCPM.GreaterThan(newRate) {
			return fmt.Errorf("%w: base cpm below user cpm", ErrCpmRateInvalid)
		}
		oldRate = row.Rate
		if err := repo.CreateHistory(&models.CpmRateHistory{
			CountryCode: code,
			OldRate:     row.Rate,
			NewRate:     models.NewMoneyFromDecimal(newRate),
			ChangedByID: actorID,
			Note:        strings.TrimSpace(note),
		}); err != nil {
			return err
		}
		now := time.Now()
		actor := actorID
		row.Rate = models.NewMoneyFromDecimal(newRate)
		row.LastVerifiedAt = &now
		row.UpdatedByID = &actor
		if err := repo.Update(row); err != nil {
			return err
		}
		updated = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.afterMutation(ctx, actorID, constants.AdminActionRateUpdate, code, models.JSON{
		"old_rate": oldRate.String(),
		"new_rate": updated.Rate.String(),
	})
	return updated, nil
}

// SetRateActive 启用/停用覆盖（停用后回落内置表）
func (s *CpmRateService) SetRateActive(ctx context.Context, actorID uint, countryCode string, active bool) (*models.CpmRate, error) {
	row, err := s.mustGet(countryCode)
	if err != nil {
		return nil, err
	}
	actor := actorID
	row.IsActive = active
	row.UpdatedByID = &actor
	if err := s.repo.Update(row); err != nil {
		return nil, err
	}
	s.afterMutation(ctx, actorID, constants.AdminActionRateToggle, row.CountryCode, models.JSON{"is_active": active})
	return row, nil
}

// VerifyRate 标记费率已核对
func (s *CpmRateService) VerifyRate(ctx context.Context, actorID uint, countryCode string) (*models.CpmRate, error) {
	row, err := s.mustGet(countryCode)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	actor := actorID
	row.LastVerifiedAt = &now
	row.UpdatedByID = &actor
	if err := s.repo.Update(row); err != nil {
		return nil, err
	}
	s.invalidate(ctx, row.CountryCode)
	return row, nil
}

// ListRateHistory 费率变更记录
func (s *CpmRateService) ListRateHistory(filter repository.CpmRateHistoryFilter) ([]models.CpmRateHistory, int64, error) {
	return s.repo.ListHistory(filter)
}

// SeedFromStatic 以内置表初始化费率覆盖（已存在的国家跳过），返回新增数量
func (s *CpmRateService) SeedFromStatic(ctx context.Context) (int, error) {
	created := 0
	for _, static := range StaticRates() {
		existing, err := s.repo.GetByCountry(static.CountryCode)
		if err != nil {
			return created, err
		}
		if existing != nil {
			continue
		}
		if err := s.repo.Create(&models.CpmRate{
			CountryCode: static.CountryCode,
			CountryName: static.CountryName,
			Tier:        static.Tier,
			Rate:        models.NewMoneyFromDecimal(static.BaseCPM),
			IsActive:    true,
		}); err != nil {
			if repository.IsUniqueViolation(err) {
				continue
			}
			return created, err
		}
		s.invalidate(ctx, static.CountryCode)
		created++
	}
	return created, nil
}

func (s *CpmRateService) mustGet(countryCode string) (*models.CpmRate, error) {
	code, err := requireCountryCode(countryCode)
	if err != nil {
		return nil, err
	}
	row, err := s.repo.GetByCountry(code)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrCpmRateNotFound
	}
	return row, nil
}

func (s *CpmRateService) afterMutation(ctx context.Context, actorID uint, action, code string, detail models.JSON) {
	s.invalidate(ctx, code)
	if err := recordAdminAction(s.actionRepo, actorID, action, "cpm_rate", code, detail); err != nil {
		logger.Warnw("cpm_rate_audit_failed", "country_code", code, "action", action, "error", err)
	}
}

func (s *CpmRateService) invalidate(ctx context.Context, code string) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx, code); err != nil {
		logger.Warnw("cpm_rate_cache_invalidate_failed", "country_code", code, "error", err)
	}
}

func requireCountryCode(raw string) (string, error) {
	code := NormalizeCountryCode(raw)
	if code == constants.CountryCodeUnknown && strings.ToUpper(strings.TrimSpace(raw)) != constants.CountryCodeUnknown {
		return "", ErrCountryCodeInvalid
	}
	return code, nil
}

func validateCPM(value decimal.Decimal) error {
	if value.IsNegative() {
		return fmt.Errorf("%w: cpm must not be negative", ErrCpmRateInvalid)
	}
	if value.GreaterThan(decimal.NewFromInt(1000)) {
		return fmt.Errorf("%w: cpm too large", ErrCpmRateInvalid)
	}
	return nil
}
