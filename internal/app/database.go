package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/clickvault/internal/config"
	"github.com/clickvault/internal/models"

	"go.uber.org/zap"
)

// BootstrapAdmin 空库时创建的首个管理员
type BootstrapAdmin struct {
	Username string
	Password string
}

// PrepareDatabase 连接数据库、迁移表结构并保证存在超级管理员
func PrepareDatabase(cfg *config.Config, admin BootstrapAdmin, log *zap.SugaredLogger) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	pool := cfg.Database.Pool
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBOptions{
		MaxOpenConns:    pool.MaxOpenConns,
		MaxIdleConns:    pool.MaxIdleConns,
		ConnMaxLifetime: time.Duration(pool.ConnMaxLifetimeSeconds) * time.Second,
		ConnMaxIdleTime: time.Duration(pool.ConnMaxIdleTimeSeconds) * time.Second,
	}); err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := models.AutoMigrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	created, err := models.EnsureBootstrapAdmin(models.DB, admin.Username, admin.Password)
	switch {
	case errors.Is(err, models.ErrBootstrapPasswordRequired):
		log.Warnw("bootstrap_admin_skipped", "reason", "CV_DEFAULT_ADMIN_PASSWORD not set")
	case err != nil:
		return fmt.Errorf("bootstrap admin: %w", err)
	case created:
		log.Infow("bootstrap_admin_created", "username", admin.Username)
	}
	return nil
}
