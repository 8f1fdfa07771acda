package repository

import (
	"errors"
	"time"

	"github.com/clickvault/internal/models"

	"gorm.io/gorm"
)

// VisitRepository 访问记录数据访问接口
type VisitRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) VisitRepository

	Create(visit *models.Visit) error
	GetByID(id uint) (*models.Visit, error)
	CountByIPHashSince(ipHash string, since time.Time) (int64, error)
	ExistsForLinkSince(ipHash string, linkID uint, since time.Time) (bool, error)
	List(filter VisitListFilter) ([]models.Visit, int64, error)
	SumEarnedByLink(linkID uint) (models.Money, error)
}

// GormVisitRepository GORM 实现
type GormVisitRepository struct {
	db *gorm.DB
}

// NewVisitRepository 创建访问记录仓库
func NewVisitRepository(db *gorm.DB) *GormVisitRepository {
	return &GormVisitRepository{db: db}
}

// Transaction 执行事务
func (r *GormVisitRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// WithTx 绑定事务
func (r *GormVisitRepository) WithTx(tx *gorm.DB) VisitRepository {
	if tx == nil {
		return r
	}
	return &GormVisitRepository{db: tx}
}

// Create 写入访问记录
func (r *GormVisitRepository) Create(visit *models.Visit) error {
	return r.db.Create(visit).Error
}

// GetByID 按 ID 获取访问记录
func (r *GormVisitRepository) GetByID(id uint) (*models.Visit, error) {
	if id == 0 {
		return nil, nil
	}
	var visit models.Visit
	if err := r.db.First(&visit, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &visit, nil
}

// CountByIPHashSince 统计指纹在时间点之后的全部访问（跨链接）
func (r *GormVisitRepository) CountByIPHashSince(ipHash string, since time.Time) (int64, error) {
	var total int64
	err := r.db.Model(&models.Visit{}).
		Where("ip_hash = ? AND created_at >= ?", ipHash, since.UTC()).
		Count(&total).Error
	return total, err
}

// ExistsForLinkSince 判断指纹在窗口内是否访问过该链接
func (r *GormVisitRepository) ExistsForLinkSince(ipHash string, linkID uint, since time.Time) (bool, error) {
	var ids []uint
	err := r.db.Model(&models.Visit{}).
		Where("ip_hash = ? AND link_id = ? AND created_at >= ?", ipHash, linkID, since.UTC()).
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}

// List 访问记录列表
func (r *GormVisitRepository) List(filter VisitListFilter) ([]models.Visit, int64, error) {
	query := r.db.Model(&models.Visit{})
	if filter.LinkID != 0 {
		query = query.Where("link_id = ?", filter.LinkID)
	}
	if filter.FraudOnly {
		query = query.Where("fraud_blocked = ?", true)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", filter.CreatedFrom.UTC())
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", filter.CreatedTo.UTC())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = query.Scopes(paginate(filter.Page, filter.PageSize))

	var visits []models.Visit
	if err := query.Order("id desc").Find(&visits).Error; err != nil {
		return nil, 0, err
	}
	return visits, total, nil
}

// SumEarnedByLink 汇总链接全部访问的用户分成（对账用）
func (r *GormVisitRepository) SumEarnedByLink(linkID uint) (models.Money, error) {
	var row struct {
		Total models.Money
	}
	err := r.db.Model(&models.Visit{}).
		Select("COALESCE(SUM(earned), 0) AS total").
		Where("link_id = ?", linkID).
		Scan(&row).Error
	if err != nil {
		return models.ZeroMoney(), err
	}
	return row.Total, nil
}
