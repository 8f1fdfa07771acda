package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/clickvault/internal/constants"
	"github.com/clickvault/internal/models"

	"gorm.io/gorm"
)

// VisitEventRepository 访问事件（outbox）数据访问接口
type VisitEventRepository interface {
	WithTx(tx *gorm.DB) VisitEventRepository

	Create(event *models.VisitEvent) error
	GetByID(id uint) (*models.VisitEvent, error)
	Claim(id uint) (bool, error)
	MarkDone(id uint, status string, commissionID *uint) error
	MarkFailed(id uint, reason string) error
	Requeue(id uint) (bool, error)
	ListPendingBefore(before time.Time, limit int) ([]models.VisitEvent, error)
	List(filter VisitEventListFilter) ([]models.VisitEvent, int64, error)
}

// GormVisitEventRepository GORM 实现
type GormVisitEventRepository struct {
	db *gorm.DB
}

// NewVisitEventRepository 创建访问事件仓库
func NewVisitEventRepository(db *gorm.DB) *GormVisitEventRepository {
	return &GormVisitEventRepository{db: db}
}

// WithTx 绑定事务
func (r *GormVisitEventRepository) WithTx(tx *gorm.DB) VisitEventRepository {
	if tx == nil {
		return r
	}
	return &GormVisitEventRepository{db: tx}
}

// Create 写入事件
func (r *GormVisitEventRepository) Create(event *models.VisitEvent) error {
	return r.db.Create(event).Error
}

// GetByID 获取事件
func (r *GormVisitEventRepository) GetByID(id uint) (*models.VisitEvent, error) {
	if id == 0 {
		return nil, nil
	}
	var event models.VisitEvent
	if err := r.db.First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

// Claim 条件更新 pending → processing，返回是否抢占成功
func (r *GormVisitEventRepository) Claim(id uint) (bool, error) {
	result := r.db.Model(&models.VisitEvent{}).
		Where("id = ? AND status = ?", id, constants.VisitEventStatusPending).
		Updates(map[string]interface{}{
			"status":     constants.VisitEventStatusProcessing,
			"attempts":   gorm.Expr("attempts + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// MarkDone 标记事件完成（processed / skipped）
func (r *GormVisitEventRepository) MarkDone(id uint, status string, commissionID *uint) error {
	now := time.Now()
	return r.db.Model(&models.VisitEvent{}).
		Where("id = ? AND status = ?", id, constants.VisitEventStatusProcessing).
		Updates(map[string]interface{}{
			"status":        status,
			"commission_id": commissionID,
			"last_error":    "",
			"processed_at":  now,
			"updated_at":    now,
		}).Error
}

// MarkFailed 标记事件失败（不自动重试）
func (r *GormVisitEventRepository) MarkFailed(id uint, reason string) error {
	reason = strings.TrimSpace(reason)
	if len(reason) > 1000 {
		reason = reason[:1000]
	}
	return r.db.Model(&models.VisitEvent{}).
		Where("id = ? AND status = ?", id, constants.VisitEventStatusProcessing).
		Updates(map[string]interface{}{
			"status":     constants.VisitEventStatusFailed,
			"last_error": reason,
			"updated_at": time.Now(),
		}).Error
}

// Requeue 失败事件重新置为 pending
func (r *GormVisitEventRepository) Requeue(id uint) (bool, error) {
	result := r.db.Model(&models.VisitEvent{}).
		Where("id = ? AND status = ?", id, constants.VisitEventStatusFailed).
		Updates(map[string]interface{}{
			"status":     constants.VisitEventStatusPending,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ListPendingBefore 查询滞留的 pending 事件
func (r *GormVisitEventRepository) ListPendingBefore(before time.Time, limit int) ([]models.VisitEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []models.VisitEvent
	err := r.db.Where("status = ? AND updated_at <= ?", constants.VisitEventStatusPending, before.UTC()).
		Order("id asc").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// List 事件列表
func (r *GormVisitEventRepository) List(filter VisitEventListFilter) ([]models.VisitEvent, int64, error) {
	query := r.db.Model(&models.VisitEvent{})
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = query.Scopes(paginate(filter.Page, filter.PageSize))

	var rows []models.VisitEvent
	if err := query.Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
