package provider

import (
	"strings"
	"time"

	"github.com/clickvault/internal/authz"
	"github.com/clickvault/internal/cache"
	"github.com/clickvault/internal/config"
	"github.com/clickvault/internal/logger"
	"github.com/clickvault/internal/models"
	"github.com/clickvault/internal/queue"
	"github.com/clickvault/internal/repository"
	"github.com/clickvault/internal/service"

	"github.com/shopspring/decimal"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo          repository.AdminRepository
	UserRepo           repository.UserRepository
	LinkRepo           repository.LinkRepository
	VisitRepo          repository.VisitRepository
	DailyEarningRepo   repository.DailyEarningRepository
	VisitEventRepo     repository.VisitEventRepository
	CpmRateRepo        repository.CpmRateRepository
	ReferralRepo       repository.ReferralRepository
	PayoutRepo         repository.PayoutRepository
	SettingRepo        repository.SettingRepository
	AdminActionLogRepo repository.AdminActionLogRepository

	// Services
	AuthzService         *authz.Service
	AuthService          *service.AuthService
	UserAuthService      *service.UserAuthService
	SettingService       *service.SettingService
	RateResolver         *service.CachedRateResolver
	CpmRateService       *service.CpmRateService
	ReferralService      *service.ReferralService
	VisitEventDispatcher *service.VisitEventDispatcher
	VisitService         *service.VisitService
	LinkService          *service.LinkService
	PayoutService        *service.PayoutService
	ReportService        *service.ReportService
	AdminActionService   *service.AdminActionService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端，失败时访问事件退化为同步处理
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.LinkRepo = repository.NewLinkRepository(db)
	c.VisitRepo = repository.NewVisitRepository(db)
	c.DailyEarningRepo = repository.NewDailyEarningRepository(db)
	c.VisitEventRepo = repository.NewVisitEventRepository(db)
	c.CpmRateRepo = repository.NewCpmRateRepository(db)
	c.ReferralRepo = repository.NewReferralRepository(db)
	c.PayoutRepo = repository.NewPayoutRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
	c.AdminActionLogRepo = repository.NewAdminActionLogRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	cfg := c.Config
	userShare := decimal.NewFromFloat(cfg.Earnings.UserShare)

	c.SettingService = service.NewSettingService(c.SettingRepo)
	c.AdminActionService = service.NewAdminActionService(c.AdminActionLogRepo)
	c.AuthService = service.NewAuthService(cfg, c.AdminRepo)
	c.UserAuthService = service.NewUserAuthService(cfg, c.UserRepo, c.SettingService)

	c.RateResolver = service.NewCachedRateResolver(
		service.NewDefaultRateResolver(c.CpmRateRepo, userShare),
		service.NewRedisRateCache(),
		time.Duration(cfg.Earnings.RateCacheTTLSeconds)*time.Second,
	)
	c.CpmRateService = service.NewCpmRateService(c.CpmRateRepo, c.AdminActionLogRepo, c.RateResolver, c.RateResolver)

	c.ReferralService = service.NewReferralService(c.UserRepo, c.ReferralRepo, c.AdminActionLogRepo, c.SettingService)
	c.VisitEventDispatcher = service.NewVisitEventDispatcher(c.VisitEventRepo, c.AdminActionLogRepo, c.ReferralService, c.QueueClient)

	gate := service.NewVisitFraudGate(c.VisitRepo, service.FraudGateOptions{
		DailyLimit:     cfg.Fraud.DailyLimit,
		PerMinuteLimit: cfg.Fraud.PerMinuteLimit,
		UniqueWindow:   time.Duration(cfg.Fraud.UniqueWindowHours) * time.Hour,
	})
	c.VisitService = service.NewVisitService(service.VisitServiceOptions{
		LinkRepo:   c.LinkRepo,
		UserRepo:   c.UserRepo,
		VisitRepo:  c.VisitRepo,
		DailyRepo:  c.DailyEarningRepo,
		EventRepo:  c.VisitEventRepo,
		ActionRepo: c.AdminActionLogRepo,
		Calculator: service.NewVisitEarningsCalculator(gate, c.RateResolver),
		Dispatcher: c.VisitEventDispatcher,
		IPCipher:   c.buildIPCipher(),
		IPSalt:     cfg.Fraud.IPSalt,
	})

	c.LinkService = service.NewLinkService(c.LinkRepo, c.UserRepo, cfg.Server.PublicURL)
	c.PayoutService = service.NewPayoutService(c.PayoutRepo, c.UserRepo, c.AdminActionLogRepo, c.SettingService)
	c.ReportService = service.NewReportService(c.DailyEarningRepo, c.PayoutRepo)
}

// buildIPCipher 仅在开启加密存储且密钥有效时启用
func (c *Container) buildIPCipher() *service.IPCipher {
	privacy := c.Config.Privacy
	if !privacy.StoreEncryptedIP {
		return nil
	}
	if strings.TrimSpace(privacy.IPEncryptionKey) == "" {
		logger.Warnw("provider_ip_cipher_key_missing")
		return nil
	}
	cipher, err := service.NewIPCipher(privacy.IPEncryptionKey)
	if err != nil {
		logger.Warnw("provider_ip_cipher_init_failed", "error", err)
		return nil
	}
	return cipher
}
