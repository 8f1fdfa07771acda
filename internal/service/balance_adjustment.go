package service

import (
	"strings"

	"github.com/clickvault/internal/constants"
	"github.com/clickvault/internal/logger"
	"github.com/clickvault/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AdjustBalanceInput 管理员手工调整余额
type AdjustBalanceInput struct {
	AdminID uint
	UserID  uint
	Delta   decimal.Decimal
	Reason  string
}

// AdjustBalance 手工增减可提现余额，不影响累计收益；审计日志与余额变更同事务
func (s *PayoutService) AdjustBalance(input AdjustBalanceInput) (*models.User, error) {
	delta := input.Delta.Round(models.MoneyScale)
	if delta.IsZero() {
		return nil, ErrBalanceAdjustInvalid
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, ErrAdjustReasonRequired
	}

	var updated *models.User
	err := s.payoutRepo.Transaction(func(tx *gorm.DB) error {
		userRepo := s.userRepo.WithTx(tx)
		user, err := userRepo.GetByIDForUpdate(input.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}
		before := user.Balance.String()
		if delta.IsNegative() {
			ok, err := userRepo.DebitBalance(user.ID, delta.Neg())
			if err != nil {
				return err
			}
			if !ok {
				return ErrInsufficientBalance
			}
		} else if err := userRepo.RefundBalance(user.ID, delta); err != nil {
			return err
		}
		updated, err = userRepo.GetByID(user.ID)
		if err != nil {
			return err
		}
		return recordAdminAction(s.actionRepo.WithTx(tx), input.AdminID, constants.AdminActionBalanceAdjust, "user", user.ID, models.JSON{
			"delta":  delta.StringFixed(models.MoneyScale),
			"before": before,
			"after":  updated.Balance.String(),
			"reason": reason,
		})
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("user_balance_adjusted",
		"user_id", updated.ID,
		"admin_id", input.AdminID,
		"delta", delta.StringFixed(models.MoneyScale),
	)
	return updated, nil
}
