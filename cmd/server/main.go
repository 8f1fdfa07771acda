package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/clickvault/internal/app"
	"github.com/clickvault/internal/config"
	"github.com/clickvault/internal/logger"

	"github.com/gin-gonic/gin"
)

const banner = "\033[95m\033[1mclickvault\033[0m \033[2mshort links · CPM earnings · referrals · payouts\033[0m"

// weakSecretMarkers 默认配置里出现过的占位串
var weakSecretMarkers = []string{"change-me", "change-in-production", "your-secret-key"}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	lower := strings.ToLower(secret)
	for _, marker := range weakSecretMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// weakSecrets 返回强度不足的密钥名
func weakSecrets(cfg *config.Config) []string {
	checks := []struct {
		name  string
		value string
	}{
		{"jwt.secret", cfg.JWT.SecretKey},
		{"user_jwt.secret", cfg.UserJWT.SecretKey},
		{"fraud.ip_salt", cfg.Fraud.IPSalt},
	}
	var weak []string
	for _, check := range checks {
		if isWeakSecret(check.value) {
			weak = append(weak, check.name)
		}
	}
	return weak
}

func main() {
	var mode string
	flag.StringVar(&mode, "mode", app.ModeAll, "启动模式: all, api, worker")
	flag.Parse()

	fmt.Println(banner)

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	log := logger.S()
	stdLog := logger.StdLogger()

	release := cfg.Server.Mode == "release"
	if weak := weakSecrets(cfg); len(weak) > 0 {
		if release {
			stdLog.Fatalf("以下密钥过弱或仍为默认值: %s", strings.Join(weak, ", "))
		}
		log.Warnw("weak_secrets", "keys", weak)
	}
	if release {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := app.PrepareDatabase(cfg, app.BootstrapAdmin{
		Username: os.Getenv("CV_DEFAULT_ADMIN_USERNAME"),
		Password: os.Getenv("CV_DEFAULT_ADMIN_PASSWORD"),
	}, log); err != nil {
		stdLog.Fatalf("数据库准备失败: %v", err)
	}

	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  log,
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	}); err != nil {
		stdLog.Fatalf("服务运行失败: %v", err)
	}
}
