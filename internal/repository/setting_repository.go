package repository

import (
	"errors"
	"time"

	"github.com/clickvault/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingRepository 配置组读写
type SettingRepository interface {
	Get(key string) (*models.Setting, error)
	Put(setting *models.Setting) error
}

// GormSettingRepository GORM 实现
type GormSettingRepository struct {
	db *gorm.DB
}

// NewSettingRepository 创建设置仓库
func NewSettingRepository(db *gorm.DB) *GormSettingRepository {
	return &GormSettingRepository{db: db}
}

// Get 读取配置组，不存在返回 nil
func (r *GormSettingRepository) Get(key string) (*models.Setting, error) {
	var setting models.Setting
	err := r.db.Where(&models.Setting{Key: key}).Take(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// Put 按主键 upsert，一条语句完成
func (r *GormSettingRepository) Put(setting *models.Setting) error {
	if setting.UpdatedAt.IsZero() {
		setting.UpdatedAt = time.Now()
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value_json", "updated_by", "updated_at"}),
	}).Create(setting).Error
}
