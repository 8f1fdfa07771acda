package repository

import (
	"errors"

	"github.com/clickvault/internal/models"

	"gorm.io/gorm"
)

// ReferralRepository 推荐佣金数据访问接口
type ReferralRepository interface {
	WithTx(tx *gorm.DB) ReferralRepository

	CreateCommission(commission *models.ReferralCommission) error
	GetByVisitID(visitID uint) (*models.ReferralCommission, error)
	ListCommissions(filter CommissionListFilter) ([]models.ReferralCommission, int64, error)
	SumByReferrer(referrerID uint) (models.Money, error)
}

// GormReferralRepository GORM 实现
type GormReferralRepository struct {
	db *gorm.DB
}

// NewReferralRepository 创建推荐佣金仓库
func NewReferralRepository(db *gorm.DB) *GormReferralRepository {
	return &GormReferralRepository{db: db}
}

// WithTx 绑定事务
func (r *GormReferralRepository) WithTx(tx *gorm.DB) ReferralRepository {
	if tx == nil {
		return r
	}
	return &GormReferralRepository{db: tx}
}

// CreateCommission 写入佣金记录（visit_id 唯一）
func (r *GormReferralRepository) CreateCommission(commission *models.ReferralCommission) error {
	return r.db.Create(commission).Error
}

// GetByVisitID 按访问获取佣金记录
func (r *GormReferralRepository) GetByVisitID(visitID uint) (*models.ReferralCommission, error) {
	if visitID == 0 {
		return nil, nil
	}
	var commission models.ReferralCommission
	if err := r.db.Where("visit_id = ?", visitID).First(&commission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &commission, nil
}

// ListCommissions 佣金列表
func (r *GormReferralRepository) ListCommissions(filter CommissionListFilter) ([]models.ReferralCommission, int64, error) {
	query := r.db.Model(&models.ReferralCommission{})
	if filter.ReferrerID != 0 {
		query = query.Where("referrer_id = ?", filter.ReferrerID)
	}
	if filter.ReferredID != 0 {
		query = query.Where("referred_id = ?", filter.ReferredID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = query.Scopes(paginate(filter.Page, filter.PageSize))

	var rows []models.ReferralCommission
	if err := query.Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// SumByReferrer 推荐人佣金合计
func (r *GormReferralRepository) SumByReferrer(referrerID uint) (models.Money, error) {
	var row struct {
		Total models.Money
	}
	err := r.db.Model(&models.ReferralCommission{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("referrer_id = ?", referrerID).
		Scan(&row).Error
	if err != nil {
		return models.ZeroMoney(), err
	}
	return row.Total, nil
}
