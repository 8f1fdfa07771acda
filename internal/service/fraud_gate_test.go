package service

import (
	"context"
	"testing"
	"time"

	"github.com/clickvault/internal/constants"
	"github.com/clickvault/internal/repository"
)

type fakeVisitCounter struct {
	repository.VisitRepository
	dayStart    time.Time
	dailyCount  int64
	minuteCount int64
	seen        bool
	uniqueSince time.Time
}

func (f *fakeVisitCounter) CountByIPHashSince(_ string, since time.Time) (int64, error) {
	if since.Equal(f.dayStart) {
		return f.dailyCount, nil
	}
	return f.minuteCount, nil
}

func (f *fakeVisitCounter) ExistsForLinkSince(_ string, _ uint, since time.Time) (bool, error) {
	f.uniqueSince = since
	return f.seen, nil
}

func newTestFraudGate(counter *fakeVisitCounter, now time.Time) *VisitFraudGate {
	counter.dayStart = startOfUTCDay(now)
	gate := NewVisitFraudGate(counter, FraudGateOptions{})
	gate.now = func() time.Time { return now }
	return gate
}

func TestFraudGateDailyLimitCheckedFirst(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	gate := newTestFraudGate(&fakeVisitCounter{dailyCount: 50, minuteCount: 10}, now)

	decision, err := gate.Evaluate(context.Background(), "fp", 1)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if decision.Allowed || decision.Reason != constants.BlockReasonDailyLimit {
		t.Fatalf("expected daily_limit block, got %+v", decision)
	}
}

func TestFraudGateRateLimit(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	gate := newTestFraudGate(&fakeVisitCounter{dailyCount: 12, minuteCount: 10}, now)

	decision, err := gate.Evaluate(context.Background(), "fp", 1)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if decision.Allowed || decision.Reason != constants.BlockReasonRateLimit {
		t.Fatalf("expected rate_limit block, got %+v", decision)
	}
}

func TestFraudGateBelowLimitsIsAllowed(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	counter := &fakeVisitCounter{dailyCount: 49, minuteCount: 9}
	gate := newTestFraudGate(counter, now)

	decision, err := gate.Evaluate(context.Background(), "fp", 1)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if !decision.Allowed || !decision.IsUnique || decision.Reason != "" {
		t.Fatalf("expected allowed unique visit, got %+v", decision)
	}
	if want := now.Add(-24 * time.Hour); !counter.uniqueSince.Equal(want) {
		t.Fatalf("expected uniqueness window since %s, got %s", want, counter.uniqueSince)
	}
}

func TestFraudGateRepeatVisitNotUnique(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	gate := newTestFraudGate(&fakeVisitCounter{dailyCount: 1, minuteCount: 1, seen: true}, now)

	decision, err := gate.Evaluate(context.Background(), "fp", 1)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if !decision.Allowed || decision.IsUnique {
		t.Fatalf("expected allowed non-unique visit, got %+v", decision)
	}
}

func TestStartOfUTCDay(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	local := time.Date(2026, 3, 11, 3, 0, 0, 0, loc)
	got := startOfUTCDay(local)
	want := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

type fixedFraudGate struct {
	decision FraudDecision
}

func (g fixedFraudGate) Evaluate(context.Context, string, uint) (FraudDecision, error) {
	return g.decision, nil
}

func TestEarningsCalculatorBlockedVisitEarnsNothing(t *testing.T) {
	calc := NewVisitEarningsCalculator(
		fixedFraudGate{decision: FraudDecision{Allowed: false, Reason: constants.BlockReasonRateLimit}},
		NewDefaultRateResolver(&fakeCpmRateRepo{}, DefaultUserShare),
	)

	result, err := calc.Calculate(context.Background(), "fp", 1, "US")
	if err != nil {
		t.Fatalf("calculate failed: %v", err)
	}
	if !result.Blocked || result.BlockReason != constants.BlockReasonRateLimit {
		t.Fatalf("expected blocked result, got %+v", result)
	}
	if result.Tier != constants.CountryTier3 || !result.Earned.IsZero() || !result.PlatformEarned.IsZero() {
		t.Fatalf("blocked visit must be tier 3 with zero earnings, got %+v", result)
	}
}

func TestEarningsCalculatorUniqueUSVisit(t *testing.T) {
	calc := NewVisitEarningsCalculator(
		fixedFraudGate{decision: FraudDecision{Allowed: true, IsUnique: true}},
		NewDefaultRateResolver(&fakeCpmRateRepo{}, DefaultUserShare),
	)

	result, err := calc.Calculate(context.Background(), "fp", 1, "US")
	if err != nil {
		t.Fatalf("calculate failed: %v", err)
	}
	if !result.Earned.Equal(mustDecimal(t, "0.00255")) {
		t.Fatalf("expected earned 0.00255, got %s", result.Earned)
	}
	if !result.PlatformEarned.Equal(mustDecimal(t, "0.00045")) {
		t.Fatalf("expected platform 0.00045, got %s", result.PlatformEarned)
	}
	if !result.CPMRateUsed.Equal(mustDecimal(t, "3")) || result.Tier != constants.CountryTier1 {
		t.Fatalf("unexpected rate snapshot: %+v", result)
	}
}

func TestEarningsCalculatorRepeatVisitEarnsZero(t *testing.T) {
	calc := NewVisitEarningsCalculator(
		fixedFraudGate{decision: FraudDecision{Allowed: true, IsUnique: false}},
		NewDefaultRateResolver(&fakeCpmRateRepo{}, DefaultUserShare),
	)

	result, err := calc.Calculate(context.Background(), "fp", 1, "GB")
	if err != nil {
		t.Fatalf("calculate failed: %v", err)
	}
	if result.Blocked || result.IsUnique {
		t.Fatalf("expected allowed non-unique, got %+v", result)
	}
	if !result.Earned.IsZero() || !result.PlatformEarned.IsZero() {
		t.Fatalf("repeat visit must earn zero, got %+v", result)
	}
	if result.Tier != constants.CountryTier1 {
		t.Fatalf("expected real tier for allowed visit, got %d", result.Tier)
	}
}
