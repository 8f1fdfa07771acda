package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/clickvault/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) UserRepository

	GetByID(id uint) (*models.User, error)
	GetByIDForUpdate(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByReferralCode(code string) (*models.User, error)
	Create(user *models.User) error
	Update(user *models.User) error
	List(filter UserListFilter) ([]models.User, int64, error)
	CountReferred(referrerID uint) (int64, error)
	CreditEarnings(userID uint, amount decimal.Decimal) error
	CreditReferralEarnings(userID uint, amount decimal.Decimal) error
	DebitBalance(userID uint, amount decimal.Decimal) (bool, error)
	RefundBalance(userID uint, amount decimal.Decimal) error
	UpdateStatus(userIDs []uint, status string) error
	UpdateReferralFraud(userID uint, flagged bool, reason string) error
	UpdateLogin(userID uint, ipHash string, at time.Time) error
}

// GormUserRepository GORM 实现
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Transaction 执行事务
func (r *GormUserRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// WithTx 绑定事务
func (r *GormUserRepository) WithTx(tx *gorm.DB) UserRepository {
	if tx == nil {
		return r
	}
	return &GormUserRepository{db: tx}
}

// GetByID 根据 ID 获取用户
func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	if id == 0 {
		return nil, nil
	}
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByIDForUpdate 加锁获取用户
func (r *GormUserRepository) GetByIDForUpdate(id uint) (*models.User, error) {
	if id == 0 {
		return nil, nil
	}
	var user models.User
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByEmail 根据邮箱获取用户
func (r *GormUserRepository) GetByEmail(email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByReferralCode 根据推荐码获取用户
func (r *GormUserRepository) GetByReferralCode(code string) (*models.User, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, nil
	}
	var user models.User
	if err := r.db.Where("referral_code = ?", code).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Create 创建用户
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// Update 更新用户
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// List 用户列表
func (r *GormUserRepository) List(filter UserListFilter) ([]models.User, int64, error) {
	query := r.db.Model(&models.User{})
	query = applyKeyword(query, filter.Keyword, "email", "display_name", "referral_code")
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if filter.FraudFlagged != nil {
		query = query.Where("referral_fraud_flag = ?", *filter.FraudFlagged)
	}
	if filter.ReferredByID != 0 {
		query = query.Where("referred_by_id = ?", filter.ReferredByID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = query.Scopes(paginate(filter.Page, filter.PageSize))

	var users []models.User
	if err := query.Order("id desc").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// CountReferred 统计推荐人名下用户数
func (r *GormUserRepository) CountReferred(referrerID uint) (int64, error) {
	var total int64
	if referrerID == 0 {
		return 0, nil
	}
	err := r.db.Model(&models.User{}).Where("referred_by_id = ?", referrerID).Count(&total).Error
	return total, err
}

// CreditEarnings 访问收益入账：余额与累计收益同步原子递增
func (r *GormUserRepository) CreditEarnings(userID uint, amount decimal.Decimal) error {
	return r.increment(userID, map[string]interface{}{
		"balance":      gorm.Expr("balance + ?", amount),
		"total_earned": gorm.Expr("total_earned + ?", amount),
	})
}

// CreditReferralEarnings 推荐佣金入账：余额、推荐收益与累计收益同步原子递增
func (r *GormUserRepository) CreditReferralEarnings(userID uint, amount decimal.Decimal) error {
	return r.increment(userID, map[string]interface{}{
		"balance":           gorm.Expr("balance + ?", amount),
		"referral_earnings": gorm.Expr("referral_earnings + ?", amount),
		"total_earned":      gorm.Expr("total_earned + ?", amount),
	})
}

// DebitBalance 余额扣减（余额不足时返回 false）
func (r *GormUserRepository) DebitBalance(userID uint, amount decimal.Decimal) (bool, error) {
	result := r.db.Model(&models.User{}).
		Where("id = ? AND balance >= ?", userID, amount).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance - ?", amount),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// RefundBalance 退回余额（不影响累计收益）
func (r *GormUserRepository) RefundBalance(userID uint, amount decimal.Decimal) error {
	return r.increment(userID, map[string]interface{}{
		"balance": gorm.Expr("balance + ?", amount),
	})
}

// UpdateStatus 批量更新用户状态
func (r *GormUserRepository) UpdateStatus(userIDs []uint, status string) error {
	if len(userIDs) == 0 {
		return nil
	}
	return r.db.Model(&models.User{}).
		Where("id IN ?", userIDs).
		Updates(map[string]interface{}{
			"status":        status,
			"token_version": gorm.Expr("token_version + 1"),
			"updated_at":    time.Now(),
		}).Error
}

// UpdateReferralFraud 更新推荐作弊标记
func (r *GormUserRepository) UpdateReferralFraud(userID uint, flagged bool, reason string) error {
	return r.db.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"referral_fraud_flag":   flagged,
			"referral_fraud_reason": reason,
			"updated_at":            time.Now(),
		}).Error
}

// UpdateLogin 记录登录时间与登录 IP 指纹
func (r *GormUserRepository) UpdateLogin(userID uint, ipHash string, at time.Time) error {
	return r.db.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"last_login_at":      at,
			"last_login_ip_hash": ipHash,
		}).Error
}

func (r *GormUserRepository) increment(userID uint, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	result := r.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
