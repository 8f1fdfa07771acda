package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/clickvault/internal/constants"
	"github.com/clickvault/internal/logger"
	"github.com/clickvault/internal/models"
	"github.com/clickvault/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PayoutService 提现申请与处理
type PayoutService struct {
	payoutRepo repository.PayoutRepository
	userRepo   repository.UserRepository
	actionRepo repository.AdminActionLogRepository
	settings   ReferralSettingSource
}

// NewPayoutService 创建提现服务
func NewPayoutService(payoutRepo repository.PayoutRepository, userRepo repository.UserRepository, actionRepo repository.AdminActionLogRepository, settings ReferralSettingSource) *PayoutService {
	return &PayoutService{
		payoutRepo: payoutRepo,
		userRepo:   userRepo,
		actionRepo: actionRepo,
		settings:   settings,
	}
}

// RequestPayoutInput 提现申请参数
type RequestPayoutInput struct {
	UserID  uint
	Amount  decimal.Decimal
	Method  string
	Address string
}

var payoutMethods = map[string]struct{}{
	constants.PayoutMethodPaypal:       {},
	constants.PayoutMethodBitcoin:      {},
	constants.PayoutMethodBankTransfer: {},
}

// RequestPayout 申请提现：锁定用户行，扣减余额与创建提现记录同事务
func (s *PayoutService) RequestPayout(input RequestPayoutInput) (*models.Payout, error) {
	method := strings.ToUpper(strings.TrimSpace(input.Method))
	if _, ok := payoutMethods[method]; !ok {
		return nil, ErrPayoutMethodInvalid
	}
	address := strings.TrimSpace(input.Address)
	if address == "" {
		return nil, ErrPayoutAddressRequired
	}
	amount := input.Amount.Round(models.MoneyScale)
	minPayout := ReferralDefaultSetting().MinPayoutDecimal()
	if s.settings != nil {
		setting, err := s.settings.GetReferralSetting()
		if err != nil {
			return nil, err
		}
		minPayout = setting.MinPayoutDecimal()
	}
	if !amount.IsPositive() || amount.LessThan(minPayout) {
		return nil, fmt.Errorf("%w: minimum %s", ErrPayoutAmountTooLow, minPayout.StringFixed(models.DisplayScale))
	}

	var payout *models.Payout
	err := s.payoutRepo.Transaction(func(tx *gorm.DB) error {
		userRepo := s.userRepo.WithTx(tx)
		payoutRepo := s.payoutRepo.WithTx(tx)

		user, err := userRepo.GetByIDForUpdate(input.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}
		if user.Status != constants.UserStatusActive {
			return ErrUserDisabled
		}
		open, err := payoutRepo.ExistsOpenByUser(user.ID)
		if err != nil {
			return err
		}
		if open {
			return ErrPayoutPendingExists
		}
		if user.Balance.LessThan(amount) {
			return ErrInsufficientBalance
		}
		ok, err := userRepo.DebitBalance(user.ID, amount)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInsufficientBalance
		}
		payout = &models.Payout{
			UserID:  user.ID,
			Amount:  models.NewMoneyFromDecimal(amount),
			Method:  method,
			Address: address,
			Status:  constants.PayoutStatusPending,
		}
		return payoutRepo.Create(payout)
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("payout_requested",
		"payout_id", payout.ID,
		"user_id", payout.UserID,
		"amount", payout.Amount.String(),
		"method", payout.Method,
	)
	return payout, nil
}

// ListPayouts 提现列表
func (s *PayoutService) ListPayouts(filter repository.PayoutListFilter) ([]models.Payout, int64, error) {
	return s.payoutRepo.List(filter)
}

// MarkProcessing PENDING -> PROCESSING
func (s *PayoutService) MarkProcessing(adminID, payoutID uint) (*models.Payout, error) {
	return s.transition(adminID, payoutID, constants.PayoutStatusProcessing, "")
}

// Complete PENDING/PROCESSING -> COMPLETED
func (s *PayoutService) Complete(adminID, payoutID uint) (*models.Payout, error) {
	return s.transition(adminID, payoutID, constants.PayoutStatusCompleted, "")
}

// Reject PENDING/PROCESSING -> REJECTED，同事务退回余额
func (s *PayoutService) Reject(adminID, payoutID uint, reason string) (*models.Payout, error) {
	return s.transition(adminID, payoutID, constants.PayoutStatusRejected, reason)
}

var payoutTransitions = map[string][]string{
	constants.PayoutStatusPending:    {constants.PayoutStatusProcessing, constants.PayoutStatusRejected},
	constants.PayoutStatusProcessing: {constants.PayoutStatusCompleted, constants.PayoutStatusRejected},
}

var payoutAuditActions = map[string]string{
	constants.PayoutStatusProcessing: constants.AdminActionPayoutProcess,
	constants.PayoutStatusCompleted:  constants.AdminActionPayoutComplete,
	constants.PayoutStatusRejected:   constants.AdminActionPayoutReject,
}

func canTransitPayout(from, to string) bool {
	for _, next := range payoutTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s *PayoutService) transition(adminID, payoutID uint, target, reason string) (*models.Payout, error) {
	reason = strings.TrimSpace(reason)
	var payout *models.Payout
	err := s.payoutRepo.Transaction(func(tx *gorm.DB) error {
		payoutRepo := s.payoutRepo.WithTx(tx)
		row, err := payoutRepo.GetByIDForUpdate(payoutID)
		if err != nil {
			return err
		}
		if row == nil {
			return ErrPayoutNotFound
		}
		if !canTransitPayout(row.Status, target) {
			return fmt.Errorf("%w: %s -> %s", ErrPayoutStatusInvalid, row.Status, target)
		}
		from := row.Status
		now := time.Now()
		actor := adminID
		row.Status = target
		row.ProcessedBy = &actor
		row.ProcessedAt = &now
		if target == constants.PayoutStatusRejected {
			row.RejectReason = reason
			if err := s.userRepo.WithTx(tx).RefundBalance(row.UserID, row.Amount.Decimal); err != nil {
				return err
			}
		}
		if err := payoutRepo.Update(row); err != nil {
			return err
		}
		if err := recordAdminAction(s.actionRepo.WithTx(tx), adminID, payoutAuditActions[target], "payout", row.ID, models.JSON{
			"from":    from,
			"to":      target,
			"amount":  row.Amount.String(),
			"user_id": row.UserID,
			"reason":  reason,
		}); err != nil {
			return err
		}
		payout = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("payout_status_changed",
		"payout_id", payout.ID,
		"status", payout.Status,
		"admin_id", adminID,
	)
	return payout, nil
}
