package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/clickvault/internal/constants"
	"github.com/clickvault/internal/models"
	"github.com/clickvault/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

var visitTestNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type visitTestEnv struct {
	db         *gorm.DB
	svc        *VisitService
	referral   *ReferralService
	dispatcher *VisitEventDispatcher
	settings   *SettingService
	userRepo   repository.UserRepository
	linkRepo   repository.LinkRepository
	eventRepo  repository.VisitEventRepository
	gate       *VisitFraudGate
	opts       VisitServiceOptions
}

func setupVisitServiceTest(t *testing.T) *visitTestEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:visit_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	settingSvc := NewSettingService(newMockSettingRepo())
	userRepo := repository.NewUserRepository(db)
	linkRepo := repository.NewLinkRepository(db)
	visitRepo := repository.NewVisitRepository(db)
	eventRepo := repository.NewVisitEventRepository(db)
	actionRepo := repository.NewAdminActionLogRepository(db)

	gate := NewVisitFraudGate(visitRepo, FraudGateOptions{})
	gate.now = func() time.Time { return visitTestNow }
	rates := NewDefaultRateResolver(repository.NewCpmRateRepository(db), DefaultUserShare)

	referralSvc := NewReferralService(userRepo, repository.NewReferralRepository(db), actionRepo, settingSvc)
	referralSvc.now = func() time.Time { return visitTestNow }
	dispatcher := NewVisitEventDispatcher(eventRepo, actionRepo, referralSvc, nil)

	cipher, err := NewIPCipher("000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
	if err != nil {
		t.Fatalf("create ip cipher failed: %v", err)
	}
	opts := VisitServiceOptions{
		LinkRepo:   linkRepo,
		UserRepo:   userRepo,
		VisitRepo:  visitRepo,
		DailyRepo:  repository.NewDailyEarningRepository(db),
		EventRepo:  eventRepo,
		ActionRepo: actionRepo,
		Calculator: NewVisitEarningsCalculator(gate, rates),
		Dispatcher: dispatcher,
		IPCipher:   cipher,
		IPSalt:     "test-salt",
	}
	svc := NewVisitService(opts)
	svc.now = func() time.Time { return visitTestNow }

	return &visitTestEnv{
		db:         db,
		svc:        svc,
		referral:   referralSvc,
		dispatcher: dispatcher,
		settings:   settingSvc,
		userRepo:   userRepo,
		linkRepo:   linkRepo,
		eventRepo:  eventRepo,
		gate:       gate,
		opts:       opts,
	}
}

func createVisitTestUser(t *testing.T, db *gorm.DB, email, code string, referredBy *uint) *models.User {
	t.Helper()
	user := &models.User{
		Email:        email,
		PasswordHash: "hash",
		Status:       constants.UserStatusActive,
		ReferralCode: code,
		ReferredByID: referredBy,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func createVisitTestLink(t *testing.T, db *gorm.DB, ownerID uint, code string) *models.Link {
	t.Helper()
	link := &models.Link{UserID: ownerID, Code: code, OriginalURL: "https://example.com/" + code, IsActive: true}
	if err := db.Create(link).Error; err != nil {
		t.Fatalf("create link failed: %v", err)
	}
	return link
}

func seedVisits(t *testing.T, db *gorm.DB, linkID uint, fingerprint string, count int, at time.Time) {
	t.Helper()
	for i := 0; i < count; i++ {
		visit := &models.Visit{
			LinkID:      linkID,
			IPHash:      fingerprint,
			CountryCode: "US",
			CountryTier: 1,
			CreatedAt:   at.Add(time.Duration(i) * time.Millisecond),
		}
		if err := db.Create(visit).Error; err != nil {
			t.Fatalf("seed visit failed: %v", err)
		}
	}
}

func reloadUser(t *testing.T, db *gorm.DB, id uint) models.User {
	t.Helper()
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	return user
}

func reloadLink(t *testing.T, db *gorm.DB, id uint) models.Link {
	t.Helper()
	var link models.Link
	if err := db.First(&link, id).Error; err != nil {
		t.Fatalf("reload link failed: %v", err)
	}
	return link
}

func TestRecordVisitUniqueUSVisitCreditsLedger(t *testing.T) {
	env := setupVisitServiceTest(t)
	owner := createVisitTestUser(t, env.db, "owner_a@example.com", "AAAA0001", nil)
	link := createVisitTestLink(t, env.db, owner.ID, "usA001")

	result, err := env.svc.RecordVisit(context.Background(), RecordVisitInput{
		LinkID:      link.ID,
		Fingerprint: HashIP("203.0.113.9", "test-salt"),
		CountryCode: "US",
	})
	if err != nil {
		t.Fatalf("record visit failed: %v", err)
	}
	if result.Earnings.Blocked || !result.Earnings.IsUnique {
		t.Fatalf("expected allowed unique visit, got %+v", result.Earnings)
	}
	if result.Visit.Earned.String() != "0.002550" || result.Visit.PlatformEarned.String() != "0.000450" {
		t.Fatalf("unexpected visit split earned=%s platform=%s", result.Visit.Earned, result.Visit.PlatformEarned)
	}
	if result.EarnedDisplay != "0.00" {
		t.Fatalf("unexpected display amount %s", result.EarnedDisplay)
	}
	if result.VisitEventID != 0 {
		t.Fatalf("unreferred owner should not emit visit event, got %d", result.VisitEventID)
	}

	reloaded := reloadLink(t, env.db, link.ID)
	if reloaded.TotalClicks != 1 || reloaded.UniqueClicks != 1 || reloaded.TotalEarned.String() != "0.002550" {
		t.Fatalf("unexpected link counters: %+v", reloaded)
	}
	user := reloadUser(t, env.db, owner.ID)
	if user.Balance.String() != "0.002550" || user.TotalEarned.String() != "0.002550" {
		t.Fatalf("unexpected user balance=%s total=%s", user.Balance, user.TotalEarned)
	}

	var daily models.DailyEarning
	if err := env.db.Where("user_id = ? AND date = ? AND country_code = ?", owner.ID, "2026-03-10", "US").First(&daily).Error; err != nil {
		t.Fatalf("load daily earning failed: %v", err)
	}
	if daily.Visits != 1 || daily.UniqueVisits != 1 || daily.Earnings.String() != "0.002550" || daily.PlatformEarning.String() != "0.000450" {
		t.Fatalf("unexpected daily rollup: %+v", daily)
	}
}

func TestRecordVisitRepeatVisitEarnsZero(t *testing.T) {
	env := setupVisitServiceTest(t)
	owner := createVisitTestUser(t, env.db, "owner_b@example.com", "BBBB0001", nil)
	link := createVisitTestLink(t, env.db, owner.ID, "usB001")
	fp := HashIP("198.51.100.1", "test-salt")
	seedVisits(t, env.db, link.ID, fp, 1, visitTestNow.Add(-2*time.Hour))

	result, err := env.svc.RecordVisit(context.Background(), RecordVisitInput{LinkID: link.ID, Fingerprint: fp, CountryCode: "GB"})
	if err != nil {
		t.Fatalf("record visit failed: %v", err)
	}
	if result.Earnings.Blocked || result.Earnings.IsUnique || !result.Earnings.Earned.IsZero() {
		t.Fatalf("expected allowed zero-earning repeat, got %+v", result.Earnings)
	}
	if result.Visit.CountryTier != constants.CountryTier1 {
		t.Fatalf("expected GB tier 1, got %d", result.Visit.CountryTier)
	}

	reloaded := reloadLink(t, env.db, link.ID)
	if reloaded.TotalClicks != 1 || reloaded.UniqueClicks != 0 || !reloaded.TotalEarned.IsZero() {
		t.Fatalf("unexpected counters after repeat: %+v", reloaded)
	}
	user := reloadUser(t, env.db, owner.ID)
	if !user.Balance.IsZero() {
		t.Fatalf("repeat visit must not credit balance, got %s", user.Balance)
	}
}

func TestRecordVisitDailyLimitBlocks(t *testing.T) {
	env := setupVisitServiceTest(t)
	owner := createVisitTestUser(t, env.db, "owner_c@example.com", "CCCC0001", nil)
	link := createVisitTestLink(t, env.db, owner.ID, "usC001")
	other := createVisitTestLink(t, env.db, owner.ID, "usC002")
	fp := HashIP("192.0.2.50", "test-salt")
	seedVisits(t, env.db, other.ID, fp, 50, visitTestNow.Add(-3*time.Hour))

	result, err := env.svc.RecordVisit(context.Background(), RecordVisitInput{LinkID: link.ID, Fingerprint: fp, CountryCode: "US"})
	if err != nil {
		t.Fatalf("record visit failed: %v", err)
	}
	if !result.Visit.FraudBlocked || result.Visit.BlockReason != constants.BlockReasonDailyLimit {
		t.Fatalf("expected daily_limit block, got %+v", result.Visit)
	}
	if result.Visit.CountryTier != constants.CountryTier3 || !result.Visit.Earned.IsZero() || result.Visit.IsUnique {
		t.Fatalf("blocked visit must be tier 3 zero earning, got %+v", result.Visit)
	}

	reloaded := reloadLink(t, env.db, link.ID)
	if reloaded.TotalClicks != 1 || reloaded.UniqueClicks != 0 || !reloaded.TotalEarned.IsZero() {
		t.Fatalf("unexpected counters after block: %+v", reloaded)
	}
}

func TestRecordVisitPreviousDayDoesNotCountTowardDailyLimit(t *testing.T) {
	env := setupVisitServiceTest(t)
	owner := createVisitTestUser(t, env.db, "owner_d@example.com", "DDDD0001", nil)
	link := createVisitTestLink(t, env.db, owner.ID, "usD001")
	other := createVisitTestLink(t, env.db, owner.ID, "usD002")
	fp := HashIP("192.0.2.51", "test-salt")
	seedVisits(t, env.db, other.ID, fp, 50, visitTestNow.Add(-13*time.Hour))

	result, err := env.svc.RecordVisit(context.Background(), RecordVisitInput{LinkID: link.ID, Fingerprint: fp, CountryCode: "US"})
	if err != nil {
		t.Fatalf("record visit failed: %v", err)
	}
	if result.Visit.FraudBlocked || !result.Visit.IsUnique {
		t.Fatalf("expected visit allowed after UTC day rollover, got %+v", result.Visit)
	}
}

func TestRecordVisitRateLimitBlocks(t *testing.T) {
	env := setupVisitServiceTest(t)
	owner := createVisitTestUser(t, env.db, "owner_e@example.com", "EEEE0001", nil)
	link := createVisitTestLink(t, env.db, owner.ID, "usE001")
	other := createVisitTestLink(t, env.db, owner.ID, "usE002")
	fp := HashIP("192.0.2.60", "test-salt")
	seedVisits(t, env.db, other.ID, fp, 10, visitTestNow.Add(-30*time.Second))

	result, err := env.svc.RecordVisit(context.Background(), RecordVisitInput{LinkID: link.ID, Fingerprint: fp, CountryCode: "US"})
	if err != nil {
		t.Fatalf("record visit failed: %v", err)
	}
	if !result.Visit.FraudBlocked || result.Visit.BlockReason != constants.BlockReasonRateLimit {
		t.Fatalf("expected rate_limit block, got %+v", result.Visit)
	}
}

func TestRecordVisitOwnerInactiveWritesNothing(t *testing.T) {
	env := setupVisitServiceTest(t)
	owner := createVisitTestUser(t, env.db, "owner_f@example.com", "FFFF0001", nil)
	link := createVisitTestLink(t, env.db, owner.ID, "usF001")
	if err := env.userRepo.UpdateStatus([]uint{owner.ID}, constants.UserStatusDisabled); err != nil {
		t.Fatalf("disable owner failed: %v", err)
	}

	_, err := env.svc.RecordVisit(context.Background(), RecordVisitInput{LinkID: link.ID, Fingerprint: "fp", CountryCode: "US"})
	if !errors.Is(err, ErrLinkOwnerInactive) {
		t.Fatalf("expected ErrLinkOwnerInactive, got %v", err)
	}
	var count int64
	env.db.Model(&models.Visit{}).Where("link_id = ?", link.ID).Count(&count)
	if count != 0 {
		t.Fatalf("expected no visit rows, got %d", count)
	}
}

func TestCaptureVisitAlwaysRedirects(t *testing.T) {
	env := setupVisitServiceTest(t)
	owner := createVisitTestUser(t, env.db, "owner_g@example.com", "GGGG0001", nil)
	link := createVisitTestLink(t, env.db, owner.ID, "usG001")
	if err := env.userRepo.UpdateStatus([]uint{owner.ID}, constants.UserStatusDisabled); err != nil {
		t.Fatalf("disable owner failed: %v", err)
	}

	redirect, result, err := env.svc.CaptureVisit(context.Background(), CaptureVisitInput{
		Code:        link.Code,
		ClientIP:    "203.0.113.7",
		CountryCode: "US",
		UserAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0",
	})
	if err != nil {
		t.Fatalf("capture should not fail for inactive owner: %v", err)
	}
	if redirect != link.OriginalURL || result != nil {
		t.Fatalf("expected redirect without result, got redirect=%s result=%+v", redirect, result)
	}

	if _, _, err := env.svc.CaptureVisit(context.Background(), CaptureVisitInput{Code: "missing"}); !errors.Is(err, ErrLinkNotFound) {
		t.Fatalf("expected ErrLinkNotFound, got %v", err)
	}
}

func TestCaptureVisitEncryptsIPForForensics(t *testing.T) {
	env := setupVisitServiceTest(t)
	owner := createVisitTestUser(t, env.db, "owner_h@example.com", "HHHH0001", nil)
	link := createVisitTestLink(t, env.db, owner.ID, "usH001")

	_, result, err := env.svc.CaptureVisit(context.Background(), CaptureVisitInput{
		Code:        link.Code,
		ClientIP:    "203.0.113.77",
		CountryCode: "de",
		UserAgent:   "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Version/17.0 Mobile Safari/604.1",
	})
	if err != nil || result == nil {
		t.Fatalf("capture failed: result=%+v err=%v", result, err)
	}
	if result.Visit.IPHash != HashIP("203.0.113.77", "test-salt") || result.Visit.CountryCode != "DE" {
		t.Fatalf("unexpected visit identity: %+v", result.Visit)
	}
	if result.Visit.Device != constants.DeviceMobile || result.Visit.Browser != constants.BrowserSafari {
		t.Fatalf("unexpected ua classification device=%s browser=%s", result.Visit.Device, result.Visit.Browser)
	}

	ip, err := env.svc.DecryptVisitIP(9, result.Visit.ID)
	if err != nil {
		t.Fatalf("decrypt visit ip failed: %v", err)
	}
	if ip != "203.0.113.77" {
		t.Fatalf("expected decrypted ip, got %s", ip)
	}
	var audit models.AdminActionLog
	if err := env.db.Where("action = ?", constants.AdminActionVisitDecryptIP).First(&audit).Error; err != nil {
		t.Fatalf("expected decrypt audit row: %v", err)
	}
	if audit.AdminID != 9 || audit.TargetID != fmt.Sprint(result.Visit.ID) {
		t.Fatalf("unexpected audit row: %+v", audit)
	}
}

func TestRecordVisitReferralCommissionInline(t *testing.T) {
	env := setupVisitServiceTest(t)
	referrer := createVisitTestUser(t, env.db, "referrer_i@example.com", "IIII0001", nil)
	owner := createVisitTestUser(t, env.db, "owner_i@example.com", "IIII0002", &referrer.ID)
	link := createVisitTestLink(t, env.db, owner.ID, "usI001")

	result, err := env.svc.RecordVisit(context.Background(), RecordVisitInput{LinkID: link.ID, Fingerprint: "fp-i", CountryCode: "US"})
	if err != nil {
		t.Fatalf("record visit failed: %v", err)
	}
	if result.VisitEventID == 0 {
		t.Fatalf("expected visit event for referred owner")
	}

	event, err := env.eventRepo.GetByID(result.VisitEventID)
	if err != nil || event == nil {
		t.Fatalf("load event failed: %v", err)
	}
	if event.Status != constants.VisitEventStatusProcessed || event.CommissionID == nil || event.Attempts != 1 {
		t.Fatalf("expected processed event with commission, got %+v", event)
	}

	var commission models.ReferralCommission
	if err := env.db.Where("visit_id = ?", result.Visit.ID).First(&commission).Error; err != nil {
		t.Fatalf("load commission failed: %v", err)
	}
	if commission.Amount.String() != "0.000045" || commission.ReferredEarning.String() != "0.002550" {
		t.Fatalf("unexpected commission: %+v", commission)
	}
	if commission.ReferrerID != referrer.ID || commission.ReferredID != owner.ID {
		t.Fatalf("unexpected commission parties: %+v", commission)
	}

	ref := reloadUser(t, env.db, referrer.ID)
	if ref.Balance.String() != "0.000045" || ref.ReferralEarnings.String() != "0.000045" || ref.TotalEarned.String() != "0.000045" {
		t.Fatalf("unexpected referrer balances: balance=%s referral=%s total=%s", ref.Balance, ref.ReferralEarnings, ref.TotalEarned)
	}
	ownerRow := reloadUser(t, env.db, owner.ID)
	if ownerRow.Balance.String() != "0.002550" {
		t.Fatalf("referred user earning must be unaffected, got %s", ownerRow.Balance)
	}

	again, err := env.dispatcher.Process(context.Background(), result.VisitEventID)
	if err != nil || again != nil {
		t.Fatalf("processed event must not be claimed twice, got event=%+v err=%v", again, err)
	}
}

func TestRecordVisitFraudFlaggedReferralSkipsCommission(t *testing.T) {
	env := setupVisitServiceTest(t)
	referrer := createVisitTestUser(t, env.db, "referrer_j@example.com", "JJJJ0001", nil)
	owner := createVisitTestUser(t, env.db, "owner_j@example.com", "JJJJ0002", &referrer.ID)
	if err := env.userRepo.UpdateReferralFraud(owner.ID, true, constants.ReferralFraudSameIP); err != nil {
		t.Fatalf("flag referral failed: %v", err)
	}
	link := createVisitTestLink(t, env.db, owner.ID, "usJ001")

	result, err := env.svc.RecordVisit(context.Background(), RecordVisitInput{LinkID: link.ID, Fingerprint: "fp-j", CountryCode: "US"})
	if err != nil {
		t.Fatalf("record visit failed: %v", err)
	}
	event, err := env.eventRepo.GetByID(result.VisitEventID)
	if err != nil || event == nil {
		t.Fatalf("load event failed: %v", err)
	}
	if event.Status != constants.VisitEventStatusSkipped || event.CommissionID != nil {
		t.Fatalf("expected skipped event, got %+v", event)
	}
	ref := reloadUser(t, env.db, referrer.ID)
	if !ref.Balance.IsZero() {
		t.Fatalf("flagged referral must not pay commission, got %s", ref.Balance)
	}
	ownerRow := reloadUser(t, env.db, owner.ID)
	if ownerRow.Balance.String() != "0.002550" {
		t.Fatalf("referred user still earns normally, got %s", ownerRow.Balance)
	}
}

func TestReconcileLinkBalancedAfterMixedVisits(t *testing.T) {
	env := setupVisitServiceTest(t)
	owner := createVisitTestUser(t, env.db, "owner_k@example.com", "KKKK0001", nil)
	link := createVisitTestLink(t, env.db, owner.ID, "usK001")

	inputs := []RecordVisitInput{
		{LinkID: link.ID, Fingerprint: "fp-k1", CountryCode: "US"},
		{LinkID: link.ID, Fingerprint: "fp-k1", CountryCode: "US"},
		{LinkID: link.ID, Fingerprint: "fp-k2", CountryCode: "JP"},
		{LinkID: link.ID, Fingerprint: "fp-k3", CountryCode: "??"},
	}
	for _, input := range inputs {
		if _, err := env.svc.RecordVisit(context.Background(), input); err != nil {
			t.Fatalf("record visit failed: %v", err)
		}
	}

	check, err := env.svc.ReconcileLink(link.ID)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if !check.Balanced {
		t.Fatalf("expected balanced ledger, got %+v", check)
	}
	// 0.00255 + 0 + 0.00136 + 0.00034
	if check.TotalEarned.String() != "0.004250" {
		t.Fatalf("unexpected total earned %s", check.TotalEarned)
	}
}

func TestRecordVisitDailyLimitUsesUTCDayOnOffsetClock(t *testing.T) {
	env := setupVisitServiceTest(t)
	owner := createVisitTestUser(t, env.db, "owner_tz@example.com", "TZTZ0001", nil)
	link := createVisitTestLink(t, env.db, owner.ID, "usTZ01")
	other := createVisitTestLink(t, env.db, owner.ID, "usTZ02")
	shanghai := time.FixedZone("UTC+8", 8*3600)

	// 07:00+08 是前一个 UTC 日的 23:00
	yesterdayFP := HashIP("192.0.2.60", "test-salt")
	seedVisits(t, env.db, other.ID, yesterdayFP, 50, time.Date(2026, 3, 11, 7, 0, 0, 0, shanghai))
	// 08:30+08 已进入当天 UTC 日
	todayFP := HashIP("192.0.2.61", "test-salt")
	seedVisits(t, env.db, other.ID, todayFP, 50, time.Date(2026, 3, 11, 8, 30, 0, 0, shanghai))

	clock := func() time.Time { return time.Date(2026, 3, 11, 9, 0, 0, 0, shanghai) }
	env.gate.now = clock
	env.svc.now = clock

	allowed, err := env.svc.RecordVisit(context.Background(), RecordVisitInput{LinkID: link.ID, Fingerprint: yesterdayFP, CountryCode: "US"})
	if err != nil {
		t.Fatalf("record visit failed: %v", err)
	}
	if allowed.Visit.FraudBlocked {
		t.Fatalf("visits from the previous UTC day must not count, got %+v", allowed.Visit)
	}
	if allowed.Visit.CreatedAt.Location() != time.UTC {
		t.Fatalf("visit time should be stored in UTC, got %s", allowed.Visit.CreatedAt)
	}

	blocked, err := env.svc.RecordVisit(context.Background(), RecordVisitInput{LinkID: link.ID, Fingerprint: todayFP, CountryCode: "US"})
	if err != nil {
		t.Fatalf("record visit failed: %v", err)
	}
	if !blocked.Visit.FraudBlocked || blocked.Visit.BlockReason != constants.BlockReasonDailyLimit {
		t.Fatalf("expected daily_limit block for today's visits, got %+v", blocked.Visit)
	}

	var stored models.Visit
	if err := env.db.Where("ip_hash = ?", yesterdayFP).Order("id asc").First(&stored).Error; err != nil {
		t.Fatalf("load seeded visit failed: %v", err)
	}
	if want := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC); !stored.CreatedAt.Equal(want) {
		t.Fatalf("seeded visit should keep its instant, want %s got %s", want, stored.CreatedAt)
	}
}

type failingDailyRepo struct {
	repository.DailyEarningRepository
}

func (f failingDailyRepo) WithTx(*gorm.DB) repository.DailyEarningRepository { return f }

func (failingDailyRepo) Increment(*models.DailyEarning) error {
	return errors.New("daily rollup unavailable")
}

type failingEventRepo struct {
	repository.VisitEventRepository
}

func (f failingEventRepo) WithTx(*gorm.DB) repository.VisitEventRepository { return f }

func (failingEventRepo) Create(*models.VisitEvent) error {
	return errors.New("outbox unavailable")
}

func TestRecordVisitRollsBackWholeLedgerOnFailure(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*VisitServiceOptions)
	}{
		{name: "daily rollup", mutate: func(o *VisitServiceOptions) { o.DailyRepo = failingDailyRepo{o.DailyRepo} }},
		{name: "outbox event", mutate: func(o *VisitServiceOptions) { o.EventRepo = failingEventRepo{o.EventRepo} }},
	}
	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := setupVisitServiceTest(t)
			referrer := createVisitTestUser(t, env.db, fmt.Sprintf("ref_rb%d@example.com", i), fmt.Sprintf("RBRF000%d", i), nil)
			owner := createVisitTestUser(t, env.db, fmt.Sprintf("owner_rb%d@example.com", i), fmt.Sprintf("RBOW000%d", i), &referrer.ID)
			link := createVisitTestLink(t, env.db, owner.ID, fmt.Sprintf("usRB0%d", i))

			opts := env.opts
			tc.mutate(&opts)
			svc := NewVisitService(opts)
			svc.now = func() time.Time { return visitTestNow }

			_, err := svc.RecordVisit(context.Background(), RecordVisitInput{
				LinkID:      link.ID,
				Fingerprint: HashIP("203.0.113.77", "test-salt"),
				CountryCode: "US",
			})
			if err == nil {
				t.Fatalf("expected record visit to fail")
			}

			for table, model := range map[string]interface{}{
				"visits":         &models.Visit{},
				"visit_events":   &models.VisitEvent{},
				"daily_earnings": &models.DailyEarning{},
			} {
				var count int64
				if err := env.db.Model(model).Count(&count).Error; err != nil {
					t.Fatalf("count %s failed: %v", table, err)
				}
				if count != 0 {
					t.Fatalf("%s should be rolled back, found %d rows", table, count)
				}
			}
			reloaded := reloadLink(t, env.db, link.ID)
			if reloaded.TotalClicks != 0 || reloaded.UniqueClicks != 0 || !reloaded.TotalEarned.IsZero() {
				t.Fatalf("link counters should be rolled back: %+v", reloaded)
			}
			user := reloadUser(t, env.db, owner.ID)
			if !user.Balance.IsZero() || !user.TotalEarned.IsZero() {
				t.Fatalf("owner balance should be rolled back, balance=%s total=%s", user.Balance, user.TotalEarned)
			}
		})
	}
}

func TestCaptureVisitWithoutIPSharesOneFingerprint(t *testing.T) {
	env := setupVisitServiceTest(t)
	owner := createVisitTestUser(t, env.db, "owner_noip@example.com", "NOIP0001", nil)
	createVisitTestLink(t, env.db, owner.ID, "noip01")

	shared := HashIP("", "test-salt")
	if shared == "" {
		t.Fatalf("visit fingerprint must not be empty for a missing ip")
	}

	_, first, err := env.svc.CaptureVisit(context.Background(), CaptureVisitInput{Code: "noip01", CountryCode: "US"})
	if err != nil || first == nil {
		t.Fatalf("first capture failed: %v", err)
	}
	_, second, err := env.svc.CaptureVisit(context.Background(), CaptureVisitInput{Code: "noip01", CountryCode: "US"})
	if err != nil || second == nil {
		t.Fatalf("second capture failed: %v", err)
	}
	if first.Visit.IPHash != shared || second.Visit.IPHash != shared {
		t.Fatalf("visits without ip should share fingerprint %s, got %s / %s", shared, first.Visit.IPHash, second.Visit.IPHash)
	}
	if !first.Earnings.IsUnique || second.Earnings.IsUnique || !second.Earnings.Earned.IsZero() {
		t.Fatalf("second ip-less visit must count as a repeat, got %+v", second.Earnings)
	}
}
