package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/clickvault/internal/logger"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB 全局数据库连接
var DB *gorm.DB

const (
	defaultSlowQuery    = 200 * time.Millisecond
	sqliteBusyTimeoutMs = 5000
)

// DBOptions 连接池与慢查询阈值，零值表示沿用驱动默认
type DBOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	SlowQuery       time.Duration
}

// InitDB 打开数据库并设为全局连接
func InitDB(driver, dsn string, opts DBOptions) error {
	db, err := Open(driver, dsn, opts)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// Open 打开数据库，SQL 告警与慢查询写入结构化日志
func Open(driver, dsn string, opts DBOptions) (*gorm.DB, error) {
	dialector, err := dialectorFor(driver, dsn)
	if err != nil {
		return nil, err
	}
	slow := opts.SlowQuery
	if slow <= 0 {
		slow = defaultSlowQuery
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
		Logger: gormlogger.New(sqlLogWriter{logger.SW("component", "gorm")}, gormlogger.Config{
			SlowThreshold:             slow,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	if opts.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite":
		return sqlite.Open(sqliteDSN(dsn)), nil
	case "postgres", "postgresql":
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// sqliteDSN 未指定 busy_timeout 时补上，避免账本并发写入直接报 SQLITE_BUSY
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "busy_timeout") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_pragma=busy_timeout(%d)", dsn, sep, sqliteBusyTimeoutMs)
}

// sqlLogWriter 适配 gorm logger.Writer
type sqlLogWriter struct {
	log *zap.SugaredLogger
}

func (w sqlLogWriter) Printf(format string, args ...interface{}) {
	w.log.Warnf(format, args...)
}

// AllModels 返回需要迁移的全部模型
func AllModels() []interface{} {
	return []interface{}{
		&Admin{},
		&AdminActionLog{},
		&User{},
		&Link{},
		&Visit{},
		&VisitEvent{},
		&ReferralCommission{},
		&CpmRate{},
		&CpmRateHistory{},
		&DailyEarning{},
		&Payout{},
		&Setting{},
	}
}

// AutoMigrate 迁移全部表结构
func AutoMigrate() error {
	return DB.AutoMigrate(AllModels()...)
}
