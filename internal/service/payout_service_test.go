package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/clickvault/internal/constants"
	"github.com/clickvault/internal/models"
	"github.com/clickvault/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupPayoutServiceTest(t *testing.T) (*PayoutService, *visitTestEnv) {
	t.Helper()
	return setupPayoutServiceFromEnv(setupVisitServiceTest(t))
}

func setupPayoutServiceFromEnv(env *visitTestEnv) (*PayoutService, *visitTestEnv) {
	svc := NewPayoutService(
		repository.NewPayoutRepository(env.db),
		env.userRepo,
		repository.NewAdminActionLogRepository(env.db),
		env.settings,
	)
	return svc, env
}

func fundUser(t *testing.T, db *gorm.DB, userID uint, amount string) {
	t.Helper()
	value := models.NewMoneyFromDecimal(decimal.RequireFromString(amount))
	if err := db.Model(&models.User{}).Where("id = ?", userID).Update("balance", value).Error; err != nil {
		t.Fatalf("fund user failed: %v", err)
	}
}

func TestRequestPayoutDeductsBalance(t *testing.T) {
	svc, env := setupPayoutServiceTest(t)
	user := createVisitTestUser(t, env.db, "payout_a@example.com", "PA000001", nil)
	fundUser(t, env.db, user.ID, "12.500000")

	payout, err := svc.RequestPayout(RequestPayoutInput{
		UserID:  user.ID,
		Amount:  decimal.RequireFromString("10"),
		Method:  "paypal",
		Address: " payee@example.com ",
	})
	if err != nil {
		t.Fatalf("request payout failed: %v", err)
	}
	if payout.Status != constants.PayoutStatusPending || payout.Method != constants.PayoutMethodPaypal || payout.Address != "payee@example.com" {
		t.Fatalf("unexpected payout: %+v", payout)
	}
	if row := reloadUser(t, env.db, user.ID); row.Balance.String() != "2.500000" {
		t.Fatalf("expected balance 2.5 after payout, got %s", row.Balance)
	}

	_, err = svc.RequestPayout(RequestPayoutInput{UserID: user.ID, Amount: decimal.RequireFromString("5"), Method: "BITCOIN", Address: "bc1q"})
	if !errors.Is(err, ErrPayoutPendingExists) {
		t.Fatalf("expected ErrPayoutPendingExists, got %v", err)
	}
}

func TestRequestPayoutValidation(t *testing.T) {
	svc, env := setupPayoutServiceTest(t)
	user := createVisitTestUser(t, env.db, "payout_b@example.com", "PB000001", nil)
	fundUser(t, env.db, user.ID, "6")

	cases := []struct {
		name  string
		input RequestPayoutInput
		want  error
	}{
		{"method", RequestPayoutInput{UserID: user.ID, Amount: decimal.NewFromInt(5), Method: "CHEQUE", Address: "x"}, ErrPayoutMethodInvalid},
		{"address", RequestPayoutInput{UserID: user.ID, Amount: decimal.NewFromInt(5), Method: "PAYPAL", Address: "  "}, ErrPayoutAddressRequired},
		{"minimum", RequestPayoutInput{UserID: user.ID, Amount: decimal.RequireFromString("4.99"), Method: "PAYPAL", Address: "x"}, ErrPayoutAmountTooLow},
		{"balance", RequestPayoutInput{UserID: user.ID, Amount: decimal.NewFromInt(7), Method: "PAYPAL", Address: "x"}, ErrInsufficientBalance},
		{"user", RequestPayoutInput{UserID: 9999, Amount: decimal.NewFromInt(5), Method: "PAYPAL", Address: "x"}, ErrUserNotFound},
	}
	for _, tc := range cases {
		if _, err := svc.RequestPayout(tc.input); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
	if row := reloadUser(t, env.db, user.ID); row.Balance.String() != "6.000000" {
		t.Fatalf("failed requests must not touch balance, got %s", row.Balance)
	}
}

func TestPayoutRejectRefundsBalance(t *testing.T) {
	svc, env := setupPayoutServiceTest(t)
	user := createVisitTestUser(t, env.db, "payout_c@example.com", "PC000001", nil)
	fundUser(t, env.db, user.ID, "20")

	payout, err := svc.RequestPayout(RequestPayoutInput{UserID: user.ID, Amount: decimal.NewFromInt(15), Method: "BANK_TRANSFER", Address: "DE89 3704"})
	if err != nil {
		t.Fatalf("request payout failed: %v", err)
	}
	if _, err := svc.MarkProcessing(4, payout.ID); err != nil {
		t.Fatalf("mark processing failed: %v", err)
	}
	rejected, err := svc.Reject(4, payout.ID, "invalid iban")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Status != constants.PayoutStatusRejected || rejected.RejectReason != "invalid iban" || rejected.ProcessedBy == nil {
		t.Fatalf("unexpected rejected payout: %+v", rejected)
	}
	if row := reloadUser(t, env.db, user.ID); row.Balance.String() != "20.000000" {
		t.Fatalf("expected refund to 20, got %s", row.Balance)
	}

	if _, err := svc.Complete(4, payout.ID); !errors.Is(err, ErrPayoutStatusInvalid) {
		t.Fatalf("expected ErrPayoutStatusInvalid after reject, got %v", err)
	}
	var logs int64
	env.db.Model(&models.AdminActionLog{}).Where("target_type = ? AND target_id = ?", "payout", fmt.Sprint(payout.ID)).Count(&logs)
	if logs != 2 {
		t.Fatalf("expected 2 payout audit rows, got %d", logs)
	}
}

func TestPayoutCompleteKeepsBalanceDeducted(t *testing.T) {
	svc, env := setupPayoutServiceTest(t)
	user := createVisitTestUser(t, env.db, "payout_d@example.com", "PD000001", nil)
	fundUser(t, env.db, user.ID, "8")

	payout, err := svc.RequestPayout(RequestPayoutInput{UserID: user.ID, Amount: decimal.NewFromInt(8), Method: "PAYPAL", Address: "d@example.com"})
	if err != nil {
		t.Fatalf("request payout failed: %v", err)
	}
	if _, err := svc.Complete(5, payout.ID); !errors.Is(err, ErrPayoutStatusInvalid) {
		t.Fatalf("pending payout must pass through processing, got %v", err)
	}
	if _, err := svc.MarkProcessing(5, payout.ID); err != nil {
		t.Fatalf("mark processing failed: %v", err)
	}
	completed, err := svc.Complete(5, payout.ID)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if completed.Status != constants.PayoutStatusCompleted {
		t.Fatalf("unexpected status %s", completed.Status)
	}
	if row := reloadUser(t, env.db, user.ID); !row.Balance.IsZero() {
		t.Fatalf("completed payout keeps balance deducted, got %s", row.Balance)
	}
	if _, err := svc.MarkProcessing(5, payout.ID); !errors.Is(err, ErrPayoutStatusInvalid) {
		t.Fatalf("expected ErrPayoutStatusInvalid, got %v", err)
	}
	if _, err := svc.Reject(5, 424242, ""); !errors.Is(err, ErrPayoutNotFound) {
		t.Fatalf("expected ErrPayoutNotFound, got %v", err)
	}

	fundUser(t, env.db, user.ID, "5")
	if _, err := svc.RequestPayout(RequestPayoutInput{UserID: user.ID, Amount: decimal.NewFromInt(5), Method: "PAYPAL", Address: "d@example.com"}); err != nil {
		t.Fatalf("closed payout must not block new request: %v", err)
	}
}

func TestAdjustBalanceWritesAuditInSameTransaction(t *testing.T) {
	svc, env := setupPayoutServiceTest(t)
	user := createVisitTestUser(t, env.db, "adjust_a@example.com", "AJ000001", nil)
	fundUser(t, env.db, user.ID, "3")

	credited, err := svc.AdjustBalance(AdjustBalanceInput{AdminID: 9, UserID: user.ID, Delta: decimal.RequireFromString("2.5"), Reason: " support goodwill "})
	if err != nil {
		t.Fatalf("credit adjustment failed: %v", err)
	}
	if credited.Balance.String() != "5.500000" || !credited.TotalEarned.IsZero() {
		t.Fatalf("credit must move balance only, balance=%s total=%s", credited.Balance, credited.TotalEarned)
	}

	debited, err := svc.AdjustBalance(AdjustBalanceInput{AdminID: 9, UserID: user.ID, Delta: decimal.RequireFromString("-5.5"), Reason: "chargeback"})
	if err != nil {
		t.Fatalf("debit adjustment failed: %v", err)
	}
	if !debited.Balance.IsZero() {
		t.Fatalf("expected zero balance after debit, got %s", debited.Balance)
	}

	var logs []models.AdminActionLog
	if err := env.db.Where("action = ? AND target_id = ?", constants.AdminActionBalanceAdjust, fmt.Sprint(user.ID)).Order("id asc").Find(&logs).Error; err != nil {
		t.Fatalf("load audit rows failed: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected one audit row per adjustment, got %d", len(logs))
	}
	if logs[0].DetailJSON["reason"] != "support goodwill" || logs[0].DetailJSON["delta"] != "2.500000" || logs[1].DetailJSON["after"] != "0.000000" {
		t.Fatalf("unexpected audit detail: %+v / %+v", logs[0].DetailJSON, logs[1].DetailJSON)
	}
}

func TestAdjustBalanceRejectsInvalidInputWithoutSideEffects(t *testing.T) {
	svc, env := setupPayoutServiceTest(t)
	user := createVisitTestUser(t, env.db, "adjust_b@example.com", "AJ000002", nil)
	fundUser(t, env.db, user.ID, "1")

	cases := []struct {
		input AdjustBalanceInput
		want  error
	}{
		{AdjustBalanceInput{UserID: user.ID, Delta: decimal.Zero, Reason: "noop"}, ErrBalanceAdjustInvalid},
		{AdjustBalanceInput{UserID: user.ID, Delta: decimal.NewFromInt(1), Reason: "  "}, ErrAdjustReasonRequired},
		{AdjustBalanceInput{UserID: user.ID, Delta: decimal.NewFromInt(-2), Reason: "overdraw"}, ErrInsufficientBalance},
		{AdjustBalanceInput{UserID: 424242, Delta: decimal.NewFromInt(1), Reason: "ghost"}, ErrUserNotFound},
	}
	for _, tc := range cases {
		if _, err := svc.AdjustBalance(tc.input); !errors.Is(err, tc.want) {
			t.Fatalf("input %+v want %v, got %v", tc.input, tc.want, err)
		}
	}

	if row := reloadUser(t, env.db, user.ID); row.Balance.String() != "1.000000" {
		t.Fatalf("rejected adjustments must not touch balance, got %s", row.Balance)
	}
	var logs int64
	env.db.Model(&models.AdminActionLog{}).Where("action = ?", constants.AdminActionBalanceAdjust).Count(&logs)
	if logs != 0 {
		t.Fatalf("rejected adjustments must not be audited, got %d rows", logs)
	}
}
