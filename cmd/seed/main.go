package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"github.com/clickvault/internal/app"
	"github.com/clickvault/internal/config"
	"github.com/clickvault/internal/logger"
	"github.com/clickvault/internal/models"
	"github.com/clickvault/internal/repository"
	"github.com/clickvault/internal/service"

	"github.com/shopspring/decimal"
)

func main() {
	var withDemo bool
	flag.BoolVar(&withDemo, "demo", false, "同时创建演示用户与短链")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := app.PrepareDatabase(cfg, app.BootstrapAdmin{
		Username: os.Getenv("CV_DEFAULT_ADMIN_USERNAME"),
		Password: os.Getenv("CV_DEFAULT_ADMIN_PASSWORD"),
	}, logger.S()); err != nil {
		stdLog.Fatalf("Failed to prepare database: %v", err)
	}

	// 费率表：只补齐缺失国家，不覆盖后台改过的值
	rateRepo := repository.NewCpmRateRepository(models.DB)
	actionRepo := repository.NewAdminActionLogRepository(models.DB)
	userShare := decimal.NewFromFloat(cfg.Earnings.UserShare)
	resolver := service.NewDefaultRateResolver(rateRepo, userShare)
	rateService := service.NewCpmRateService(rateRepo, actionRepo, resolver, nil)
	inserted, err := rateService.SeedFromStatic(context.Background())
	if err != nil {
		stdLog.Fatalf("Failed to seed cpm rates: %v", err)
	}
	stdLog.Printf("Seeded cpm rates: %d inserted", inserted)

	settingService := service.NewSettingService(repository.NewSettingRepository(models.DB))
	setting, err := settingService.GetReferralSetting()
	if err != nil {
		stdLog.Fatalf("Failed to load referral setting: %v", err)
	}
	if _, err := settingService.UpdateReferralSetting(setting, 0); err != nil {
		stdLog.Fatalf("Failed to save referral setting: %v", err)
	}
	stdLog.Printf("Referral setting ready: commission_rate=%.4f min_payout=%.2f", setting.CommissionRate, setting.MinPayout)

	if withDemo {
		seedDemo(cfg, settingService)
	}
}

func seedDemo(cfg *config.Config, settingService *service.SettingService) {
	stdLog := logger.StdLogger()
	userRepo := repository.NewUserRepository(models.DB)
	authService := service.NewUserAuthService(cfg, userRepo, settingService)

	user, _, _, err := authService.Register(service.RegisterInput{
		Email:       "demo@clickvault.local",
		Password:    "DemoPass123",
		DisplayName: "Demo",
	})
	if err != nil {
		if !errors.Is(err, service.ErrEmailExists) {
			stdLog.Printf("Failed to create demo user: %v", err)
			return
		}
		user, err = userRepo.GetByEmail("demo@clickvault.local")
		if err != nil || user == nil {
			stdLog.Printf("Failed to load demo user: %v", err)
			return
		}
	}

	linkService := service.NewLinkService(repository.NewLinkRepository(models.DB), userRepo, cfg.Server.PublicURL)
	link, err := linkService.Shorten(service.ShortenInput{
		OwnerID:     user.ID,
		OriginalURL: "https://example.com/welcome",
		Title:       "Welcome",
	})
	if err != nil {
		stdLog.Printf("Failed to create demo link: %v", err)
		return
	}
	stdLog.Printf("Demo link ready: %s -> %s", linkService.ShortURL(link), link.OriginalURL)
}
