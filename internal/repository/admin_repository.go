package repository

import (
	"time"

	"github.com/clickvault/internal/models"

	"gorm.io/gorm"
)

// AdminRepository 管理员账号
type AdminRepository interface {
	GetByID(id uint) (*models.Admin, error)
	GetByUsername(username string) (*models.Admin, error)
	List() ([]models.Admin, error)
	Create(admin *models.Admin) error
	RecordLogin(id uint, at time.Time) error
	RotatePassword(id uint, passwordHash string) (uint64, error)
}

// GormAdminRepository GORM 实现
type GormAdminRepository struct {
	db *gorm.DB
}

// NewAdminRepository 创建管理员仓库
func NewAdminRepository(db *gorm.DB) *GormAdminRepository {
	return &GormAdminRepository{db: db}
}

// GetByID 按 ID 查询
func (r *GormAdminRepository) GetByID(id uint) (*models.Admin, error) {
	if id == 0 {
		return nil, nil
	}
	return takeOne[models.Admin](r.db, id)
}

// GetByUsername 按账号查询
func (r *GormAdminRepository) GetByUsername(username string) (*models.Admin, error) {
	return takeOne[models.Admin](r.db.Where("username = ?", username))
}

// List 管理员列表，不含密码哈希
func (r *GormAdminRepository) List() ([]models.Admin, error) {
	admins := make([]models.Admin, 0)
	err := r.db.Omit("password_hash").Order("id ASC").Find(&admins).Error
	return admins, err
}

// Create 创建管理员
func (r *GormAdminRepository) Create(admin *models.Admin) error {
	return r.db.Create(admin).Error
}

// RecordLogin 只写登录时间，不覆盖并发修改的其它字段
func (r *GormAdminRepository) RecordLogin(id uint, at time.Time) error {
	return r.db.Model(&models.Admin{}).Where("id = ?", id).Update("last_login_at", at).Error
}

// RotatePassword 更新密码并递增 token 版本，返回新版本号
func (r *GormAdminRepository) RotatePassword(id uint, passwordHash string) (uint64, error) {
	var versions []uint64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Admin{}).Where("id = ?", id).Updates(map[string]interface{}{
			"password_hash": passwordHash,
			"token_version": gorm.Expr("token_version + 1"),
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&models.Admin{}).Where("id = ?", id).Pluck("token_version", &versions).Error
	})
	if err != nil || len(versions) == 0 {
		return 0, err
	}
	return versions[0], nil
}
