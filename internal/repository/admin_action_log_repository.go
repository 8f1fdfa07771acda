package repository

import (
	"strings"

	"github.com/clickvault/internal/models"

	"gorm.io/gorm"
)

// AdminActionLogRepository 管理操作审计数据访问接口
type AdminActionLogRepository interface {
	WithTx(tx *gorm.DB) AdminActionLogRepository

	Create(log *models.AdminActionLog) error
	List(filter AdminActionLogFilter) ([]models.AdminActionLog, int64, error)
}

// GormAdminActionLogRepository GORM 实现
type GormAdminActionLogRepository struct {
	db *gorm.DB
}

// NewAdminActionLogRepository 创建审计仓库
func NewAdminActionLogRepository(db *gorm.DB) *GormAdminActionLogRepository {
	return &GormAdminActionLogRepository{db: db}
}

// WithTx 绑定事务
func (r *GormAdminActionLogRepository) WithTx(tx *gorm.DB) AdminActionLogRepository {
	if tx == nil {
		return r
	}
	return &GormAdminActionLogRepository{db: tx}
}

// Create 写入审计
func (r *GormAdminActionLogRepository) Create(log *models.AdminActionLog) error {
	return r.db.Create(log).Error
}

// List 审计列表
func (r *GormAdminActionLogRepository) List(filter AdminActionLogFilter) ([]models.AdminActionLog, int64, error) {
	query := r.db.Model(&models.AdminActionLog{})
	if filter.AdminID != 0 {
		query = query.Where("admin_id = ?", filter.AdminID)
	}
	if action := strings.TrimSpace(filter.Action); action != "" {
		query = query.Where("action = ?", action)
	}
	if targetType := strings.TrimSpace(filter.TargetType); targetType != "" {
		query = query.Where("target_type = ?", targetType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = query.Scopes(paginate(filter.Page, filter.PageSize))

	var rows []models.AdminActionLog
	if err := query.Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
