package repository

import (
	"errors"
	"strings"

	"github.com/clickvault/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CpmRateRepository CPM 费率覆盖数据访问接口
type CpmRateRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) CpmRateRepository

	GetByCountry(countryCode string) (*models.CpmRate, error)
	GetByCountryForUpdate(countryCode string) (*models.CpmRate, error)
	List(filter CpmRateListFilter) ([]models.CpmRate, error)
	Create(rate *models.CpmRate) error
	Update(rate *models.CpmRate) error
	CreateHistory(history *models.CpmRateHistory) error
	ListHistory(filter CpmRateHistoryFilter) ([]models.CpmRateHistory, int64, error)
}

// GormCpmRateRepository GORM 实现
type GormCpmRateRepository struct {
	db *gorm.DB
}

// NewCpmRateRepository 创建费率仓库
func NewCpmRateRepository(db *gorm.DB) *GormCpmRateRepository {
	return &GormCpmRateRepository{db: db}
}

// Transaction 执行事务
func (r *GormCpmRateRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// WithTx 绑定事务
func (r *GormCpmRateRepository) WithTx(tx *gorm.DB) CpmRateRepository {
	if tx == nil {
		return r
	}
	return &GormCpmRateRepository{db: tx}
}

// GetByCountry 按国家码获取费率（不区分启用状态）
func (r *GormCpmRateRepository) GetByCountry(countryCode string) (*models.CpmRate, error) {
	return r.getByCountry(r.db, countryCode)
}

// GetByCountryForUpdate 加锁读取费率
func (r *GormCpmRateRepository) GetByCountryForUpdate(countryCode string) (*models.CpmRate, error) {
	return r.getByCountry(r.db.Clauses(clause.Locking{Strength: "UPDATE"}), countryCode)
}

func (r *GormCpmRateRepository) getByCountry(db *gorm.DB, countryCode string) (*models.CpmRate, error) {
	code := strings.ToUpper(strings.TrimSpace(countryCode))
	if code == "" {
		return nil, nil
	}
	var rate models.CpmRate
	if err := db.Where("country_code = ?", code).First(&rate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rate, nil
}

// List 费率列表
func (r *GormCpmRateRepository) List(filter CpmRateListFilter) ([]models.CpmRate, error) {
	query := r.db.Model(&models.CpmRate{})
	if filter.Tier > 0 {
		query = query.Where("tier = ?", filter.Tier)
	}
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	var rates []models.CpmRate
	if err := query.Order("tier asc, country_code asc").Find(&rates).Error; err != nil {
		return nil, err
	}
	return rates, nil
}

// Create 创建费率
func (r *GormCpmRateRepository) Create(rate *models.CpmRate) error {
	return r.db.Create(rate).Error
}

// Update 保存费率
func (r *GormCpmRateRepository) Update(rate *models.CpmRate) error {
	return r.db.Save(rate).Error
}

// CreateHistory 写入费率变更记录
func (r *GormCpmRateRepository) CreateHistory(history *models.CpmRateHistory) error {
	return r.db.Create(history).Error
}

// ListHistory 费率变更记录
func (r *GormCpmRateRepository) ListHistory(filter CpmRateHistoryFilter) ([]models.CpmRateHistory, int64, error) {
	query := r.db.Model(&models.CpmRateHistory{})
	if code := strings.ToUpper(strings.TrimSpace(filter.CountryCode)); code != "" {
		query = query.Where("country_code = ?", code)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = query.Scopes(paginate(filter.Page, filter.PageSize))

	var rows []models.CpmRateHistory
	if err := query.Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
