package service

import (
	"context"
	"time"

	"github.com/clickvault/internal/constants"
	"github.com/clickvault/internal/repository"
)

const (
	defaultDailyVisitLimit     = 50
	defaultPerMinuteVisitLimit = 10
	defaultUniqueWindow        = 24 * time.Hour
)

// FraudDecision 防刷判定结果；拦截不是错误，是需要落库的正常结果
type FraudDecision struct {
	Allowed  bool   `json:"allowed"`
	Reason   string `json:"reason,omitempty"`
	IsUnique bool   `json:"is_unique"`
}

// FraudGate 防刷与独立访问判定
type FraudGate interface {
	Evaluate(ctx context.Context, fingerprint string, linkID uint) (FraudDecision, error)
}

// FraudGateOptions 防刷阈值
type FraudGateOptions struct {
	DailyLimit     int
	PerMinuteLimit int
	UniqueWindow   time.Duration
}

// VisitFraudGate 基于访问表计数的防刷实现
// 计数与写入之间没有锁，高并发下同一指纹可能同时通过上限检查，属于尽力而为的软限制。
type VisitFraudGate struct {
	visits  repository.VisitRepository
	options FraudGateOptions
	now     func() time.Time
}

// NewVisitFraudGate 创建防刷判定器
func NewVisitFraudGate(visits repository.VisitRepository, options FraudGateOptions) *VisitFraudGate {
	if options.DailyLimit <= 0 {
		options.DailyLimit = defaultDailyVisitLimit
	}
	if options.PerMinuteLimit <= 0 {
		options.PerMinuteLimit = defaultPerMinuteVisitLimit
	}
	if options.UniqueWindow <= 0 {
		options.UniqueWindow = defaultUniqueWindow
	}
	return &VisitFraudGate{visits: visits, options: options, now: time.Now}
}

// Evaluate 依次检查日上限、分钟频率，然后判定独立访问
func (g *VisitFraudGate) Evaluate(_ context.Context, fingerprint string, linkID uint) (FraudDecision, error) {
	now := g.now().UTC()

	dailyCount, err := g.visits.CountByIPHashSince(fingerprint, startOfUTCDay(now))
	if err != nil {
		return FraudDecision{}, err
	}
	if dailyCount >= int64(g.options.DailyLimit) {
		return FraudDecision{Allowed: false, Reason: constants.BlockReasonDailyLimit}, nil
	}

	minuteCount, err := g.visits.CountByIPHashSince(fingerprint, now.Add(-time.Minute))
	if err != nil {
		return FraudDecision{}, err
	}
	if minuteCount >= int64(g.options.PerMinuteLimit) {
		return FraudDecision{Allowed: false, Reason: constants.BlockReasonRateLimit}, nil
	}

	seen, err := g.visits.ExistsForLinkSince(fingerprint, linkID, now.Add(-g.options.UniqueWindow))
	if err != nil {
		return FraudDecision{}, err
	}
	return FraudDecision{Allowed: true, IsUnique: !seen}, nil
}

func startOfUTCDay(t time.Time) time.Time {
	utc := t.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
}
