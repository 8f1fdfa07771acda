package service

import (
	"context"
	"errors"
	"time"

	"github.com/clickvault/internal/constants"
	"github.com/clickvault/internal/logger"
	"github.com/clickvault/internal/models"
	"github.com/clickvault/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RecordVisitInput 已完成指纹与分类的访问输入
type RecordVisitInput struct {
	LinkID      uint
	Fingerprint string
	CountryCode string
	Device      string
	Browser     string
	EncryptedIP string
}

// RecordVisitResult 访问入账结果
type RecordVisitResult struct {
	Visit         *models.Visit  `json:"visit"`
	Earnings      EarningsResult `json:"earnings"`
	RedirectURL   string         `json:"redirect_url"`
	EarnedDisplay string         `json:"earned_display"`
	VisitEventID  uint           `json:"-"`
}

// LedgerMutator 访问记录与余额变更的原子写入
type LedgerMutator interface {
	RecordVisit(ctx context.Context, input RecordVisitInput) (*RecordVisitResult, error)
}

// CaptureVisitInput HTTP 层原始访问信息
type CaptureVisitInput struct {
	Code        string
	ClientIP    string
	CountryCode string
	UserAgent   string
}

// VisitService 访问入账服务
type VisitService struct {
	linkRepo   repository.LinkRepository
	userRepo   repository.UserRepository
	visitRepo  repository.VisitRepository
	dailyRepo  repository.DailyEarningRepository
	eventRepo  repository.VisitEventRepository
	actionRepo repository.AdminActionLogRepository
	calculator EarningsCalculator
	dispatcher *VisitEventDispatcher
	ipCipher   *IPCipher
	ipSalt     string
	now        func() time.Time
}

// VisitServiceOptions 访问服务依赖
type VisitServiceOptions struct {
	LinkRepo   repository.LinkRepository
	UserRepo   repository.UserRepository
	VisitRepo  repository.VisitRepository
	DailyRepo  repository.DailyEarningRepository
	EventRepo  repository.VisitEventRepository
	ActionRepo repository.AdminActionLogRepository
	Calculator EarningsCalculator
	Dispatcher *VisitEventDispatcher
	IPCipher   *IPCipher
	IPSalt     string
}

// NewVisitService 创建访问入账服务
func NewVisitService(opts VisitServiceOptions) *VisitService {
	return &VisitService{
		linkRepo:   opts.LinkRepo,
		userRepo:   opts.UserRepo,
		visitRepo:  opts.VisitRepo,
		dailyRepo:  opts.DailyRepo,
		eventRepo:  opts.EventRepo,
		actionRepo: opts.ActionRepo,
		calculator: opts.Calculator,
		dispatcher: opts.Dispatcher,
		ipCipher:   opts.IPCipher,
		ipSalt:     opts.IPSalt,
		now:        time.Now,
	}
}

// CaptureVisit 处理一次短链访问：总是返回跳转地址，入账失败只记录日志
func (s *VisitService) CaptureVisit(ctx context.Context, input CaptureVisitInput) (string, *RecordVisitResult, error) {
	link, err := s.linkRepo.GetByCode(input.Code)
	if err != nil {
		return "", nil, err
	}
	if link == nil || !link.IsActive {
		return "", nil, ErrLinkNotFound
	}

	device, browser := ClassifyUserAgent(input.UserAgent)
	encryptedIP := ""
	if s.ipCipher != nil {
		if encrypted, encErr := s.ipCipher.Encrypt(input.ClientIP); encErr == nil {
			encryptedIP = encrypted
		} else {
			logger.Warnw("visit_ip_encrypt_failed", "link_id", link.ID, "error", encErr)
		}
	}

	// 缺失 IP 的访客共用同一指纹，也共用日上限
	result, err := s.RecordVisit(ctx, RecordVisitInput{
		LinkID:      link.ID,
		Fingerprint: HashIP(input.ClientIP, s.ipSalt),
		CountryCode: input.CountryCode,
		Device:      device,
		Browser:     browser,
		EncryptedIP: encryptedIP,
	})
	if err != nil {
		if errors.Is(err, ErrLinkOwnerInactive) {
			logger.Infow("visit_skipped_owner_inactive", "link_id", link.ID, "owner_id", link.UserID)
		} else {
			logger.Warnw("visit_record_failed", "link_id", link.ID, "error", err)
		}
		return link.OriginalURL, nil, nil
	}
	return link.OriginalURL, result, nil
}

// RecordVisit 防刷 → 费率 → 拆分 → 单事务写入；提交后投递推荐佣金事件
func (s *VisitService) RecordVisit(ctx context.Context, input RecordVisitInput) (*RecordVisitResult, error) {
	link, err := s.linkRepo.GetByID(input.LinkID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, ErrLinkNotFound
	}
	if !link.IsActive {
		return nil, ErrLinkInactive
	}
	owner, err := s.userRepo.GetByID(link.UserID)
	if err != nil {
		return nil, err
	}
	if owner == nil || owner.Status != constants.UserStatusActive {
		return nil, ErrLinkOwnerInactive
	}

	earnings, err := s.calculator.Calculate(ctx, input.Fingerprint, link.ID, input.CountryCode)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	visit := buildVisitRow(link.ID, input, earnings, now)
	var event *models.VisitEvent
	err = s.visitRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.visitRepo.WithTx(tx).Create(visit); err != nil {
			return err
		}
		credited := earnings.IsUnique && !earnings.Blocked
		if err := s.linkRepo.WithTx(tx).IncrementCounters(link.ID, credited, earnings.Earned); err != nil {
			return err
		}
		if !earnings.Earned.IsPositive() {
			return nil
		}
		if err := s.userRepo.WithTx(tx).CreditEarnings(owner.ID, earnings.Earned); err != nil {
			return err
		}
		if err := s.dailyRepo.WithTx(tx).Increment(buildDailyDelta(owner.ID, earnings, now)); err != nil {
			return err
		}
		if owner.ReferredByID == nil || !earnings.PlatformEarned.IsPositive() {
			return nil
		}
		event = &models.VisitEvent{
			VisitID:       visit.ID,
			UserID:        owner.ID,
			UserEarning:   models.NewMoneyFromDecimal(earnings.Earned),
			PlatformShare: models.NewMoneyFromDecimal(earnings.PlatformEarned),
			Status:        constants.VisitEventStatusPending,
		}
		return s.eventRepo.WithTx(tx).Create(event)
	})
	if err != nil {
		return nil, err
	}

	result := &RecordVisitResult{
		Visit:         visit,
		Earnings:      earnings,
		RedirectURL:   link.OriginalURL,
		EarnedDisplay: models.NewMoneyFromDecimal(earnings.Earned).Display(),
	}
	if event != nil {
		result.VisitEventID = event.ID
		s.dispatcher.Dispatch(ctx, event.ID)
	}
	return result, nil
}

func buildVisitRow(linkID uint, input RecordVisitInput, earnings EarningsResult, now time.Time) *models.Visit {
	device := input.Device
	if device == "" {
		device = constants.DeviceUnknown
	}
	browser := input.Browser
	if browser == "" {
		browser = constants.BrowserOther
	}
	return &models.Visit{
		LinkID:         linkID,
		IPHash:         input.Fingerprint,
		EncryptedIP:    input.EncryptedIP,
		CountryCode:    earnings.CountryCode,
		CountryTier:    earnings.Tier,
		Device:         device,
		Browser:        browser,
		Earned:         models.NewMoneyFromDecimal(earnings.Earned),
		PlatformEarned: models.NewMoneyFromDecimal(earnings.PlatformEarned),
		CPMRateUsed:    models.NewMoneyFromDecimal(earnings.CPMRateUsed),
		IsUnique:       earnings.IsUnique && !earnings.Blocked,
		FraudBlocked:   earnings.Blocked,
		BlockReason:    earnings.BlockReason,
		CreatedAt:      now.UTC(),
	}
}

func buildDailyDelta(userID uint, earnings EarningsResult, now time.Time) *models.DailyEarning {
	unique := int64(0)
	if earnings.IsUnique {
		unique = 1
	}
	return &models.DailyEarning{
		UserID:          userID,
		Date:            now.UTC().Format(time.DateOnly),
		CountryCode:     earnings.CountryCode,
		Visits:          1,
		UniqueVisits:    unique,
		Earnings:        models.NewMoneyFromDecimal(earnings.Earned),
		PlatformEarning: models.NewMoneyFromDecimal(earnings.PlatformEarned),
	}
}

// ListVisits 访问记录列表（管理端）
func (s *VisitService) ListVisits(filter repository.VisitListFilter) ([]models.Visit, int64, error) {
	return s.visitRepo.List(filter)
}

// LinkLedgerCheck 链接累计收益与访问明细合计对账
type LinkLedgerCheck struct {
	LinkID      uint         `json:"link_id"`
	TotalEarned models.Money `json:"total_earned"`
	VisitSum    models.Money `json:"visit_sum"`
	Balanced    bool         `json:"balanced"`
}

// ReconcileLink 对账：link.total_earned 应等于 sum(visit.earned)
func (s *VisitService) ReconcileLink(linkID uint) (*LinkLedgerCheck, error) {
	link, err := s.linkRepo.GetByID(linkID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, ErrLinkNotFound
	}
	sum, err := s.visitRepo.SumEarnedByLink(linkID)
	if err != nil {
		return nil, err
	}
	tolerance := decimal.New(1, -models.MoneyScale)
	return &LinkLedgerCheck{
		LinkID:      linkID,
		TotalEarned: link.TotalEarned,
		VisitSum:    sum,
		Balanced:    link.TotalEarned.Sub(sum.Decimal).Abs().LessThanOrEqual(tolerance),
	}, nil
}

// DecryptVisitIP 管理员取证解密访客 IP，审计写入失败时不返回明文
func (s *VisitService) DecryptVisitIP(adminID, visitID uint) (string, error) {
	if s.ipCipher == nil {
		return "", ErrIPEncryptionDisabled
	}
	visit, err := s.visitRepo.GetByID(visitID)
	if err != nil {
		return "", err
	}
	if visit == nil {
		return "", ErrVisitNotFound
	}
	if visit.EncryptedIP == "" {
		return "", ErrVisitIPUnavailable
	}
	ip, err := s.ipCipher.Decrypt(visit.EncryptedIP)
	if err != nil {
		return "", err
	}
	if err := recordAdminAction(s.actionRepo, adminID, constants.AdminActionVisitDecryptIP, "visit", visitID, nil); err != nil {
		return "", err
	}
	return ip, nil
}
