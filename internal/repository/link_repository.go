package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/clickvault/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LinkRepository 短链数据访问接口
type LinkRepository interface {
	WithTx(tx *gorm.DB) LinkRepository

	GetByID(id uint) (*models.Link, error)
	GetByCode(code string) (*models.Link, error)
	Create(link *models.Link) error
	Update(link *models.Link) error
	List(filter LinkListFilter) ([]models.Link, int64, error)
	IncrementCounters(linkID uint, unique bool, earned decimal.Decimal) error
}

// GormLinkRepository GORM 实现
type GormLinkRepository struct {
	db *gorm.DB
}

// NewLinkRepository 创建短链仓库
func NewLinkRepository(db *gorm.DB) *GormLinkRepository {
	return &GormLinkRepository{db: db}
}

// WithTx 绑定事务
func (r *GormLinkRepository) WithTx(tx *gorm.DB) LinkRepository {
	if tx == nil {
		return r
	}
	return &GormLinkRepository{db: tx}
}

// GetByID 按 ID 获取短链
func (r *GormLinkRepository) GetByID(id uint) (*models.Link, error) {
	if id == 0 {
		return nil, nil
	}
	var link models.Link
	if err := r.db.First(&link, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

// GetByCode 按短码获取短链（区分大小写）
func (r *GormLinkRepository) GetByCode(code string) (*models.Link, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	var link models.Link
	if err := r.db.Where("code = ?", code).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

// Create 创建短链
func (r *GormLinkRepository) Create(link *models.Link) error {
	return r.db.Create(link).Error
}

// Update 更新短链元信息（计数字段只通过 IncrementCounters 变更）
func (r *GormLinkRepository) Update(link *models.Link) error {
	return r.db.Model(link).
		Select("title", "description", "is_active", "original_url", "updated_at").
		Updates(link).Error
}

// List 短链列表
func (r *GormLinkRepository) List(filter LinkListFilter) ([]models.Link, int64, error) {
	query := r.db.Model(&models.Link{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	query = applyKeyword(query, filter.Keyword, "code", "title", "original_url")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = query.Scopes(paginate(filter.Page, filter.PageSize))

	var links []models.Link
	if err := query.Order("id desc").Find(&links).Error; err != nil {
		return nil, 0, err
	}
	return links, total, nil
}

// IncrementCounters 原子递增点击与收益计数
func (r *GormLinkRepository) IncrementCounters(linkID uint, unique bool, earned decimal.Decimal) error {
	updates := map[string]interface{}{
		"total_clicks": gorm.Expr("total_clicks + 1"),
		"updated_at":   time.Now(),
	}
	if unique {
		updates["unique_clicks"] = gorm.Expr("unique_clicks + 1")
		updates["total_earned"] = gorm.Expr("total_earned + ?", earned)
	}
	result := r.db.Model(&models.Link{}).Where("id = ?", linkID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
