package repository

import (
	"time"

	"github.com/clickvault/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DailyEarningRepository 日收益汇总数据访问接口
type DailyEarningRepository interface {
	WithTx(tx *gorm.DB) DailyEarningRepository

	Increment(delta *models.DailyEarning) error
	List(filter DailyEarningFilter) ([]models.DailyEarning, error)
}

// GormDailyEarningRepository GORM 实现
type GormDailyEarningRepository struct {
	db *gorm.DB
}

// NewDailyEarningRepository 创建日收益仓库
func NewDailyEarningRepository(db *gorm.DB) *GormDailyEarningRepository {
	return &GormDailyEarningRepository{db: db}
}

// WithTx 绑定事务
func (r *GormDailyEarningRepository) WithTx(tx *gorm.DB) DailyEarningRepository {
	if tx == nil {
		return r
	}
	return &GormDailyEarningRepository{db: tx}
}

// Increment 按 (user, date, country) upsert 并累加计数与金额
func (r *GormDailyEarningRepository) Increment(delta *models.DailyEarning) error {
	if delta == nil {
		return nil
	}
	now := time.Now()
	row := *delta
	row.ID = 0
	row.CreatedAt = now
	row.UpdatedAt = now
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}, {Name: "country_code"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"visits":           gorm.Expr("daily_earnings.visits + excluded.visits"),
			"unique_visits":    gorm.Expr("daily_earnings.unique_visits + excluded.unique_visits"),
			"earnings":         gorm.Expr("daily_earnings.earnings + excluded.earnings"),
			"platform_earning": gorm.Expr("daily_earnings.platform_earning + excluded.platform_earning"),
			"updated_at":       now,
		}),
	}).Create(&row).Error
}

// List 按用户与日期区间查询汇总
func (r *GormDailyEarningRepository) List(filter DailyEarningFilter) ([]models.DailyEarning, error) {
	query := r.db.Model(&models.DailyEarning{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.DateFrom != "" {
		query = query.Where("date >= ?", filter.DateFrom)
	}
	if filter.DateTo != "" {
		query = query.Where("date <= ?", filter.DateTo)
	}
	var rows []models.DailyEarning
	if err := query.Order("date asc, user_id asc, country_code asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
