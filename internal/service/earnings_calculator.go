package service

import (
	"context"

	"github.com/clickvault/internal/constants"
	"github.com/clickvault/internal/models"

	"github.com/shopspring/decimal"
)

// EarningsResult 单次访问的收益拆分
type EarningsResult struct {
	CountryCode    string          `json:"country_code"`
	Tier           int             `json:"tier"`
	Earned         decimal.Decimal `json:"earned"`
	PlatformEarned decimal.Decimal `json:"platform_earned"`
	CPMRateUsed    decimal.Decimal `json:"cpm_rate_used"`
	RateSource     string          `json:"rate_source,omitempty"`
	IsUnique       bool            `json:"is_unique"`
	Blocked        bool            `json:"blocked"`
	BlockReason    string          `json:"block_reason,omitempty"`
}

// EarningsCalculator 访问收益计算
type EarningsCalculator interface {
	Calculate(ctx context.Context, fingerprint string, linkID uint, countryCode string) (EarningsResult, error)
}

// VisitEarningsCalculator 防刷 → 费率 → 拆分
type VisitEarningsCalculator struct {
	gate  FraudGate
	rates RateResolver
}

// NewVisitEarningsCalculator 创建收益计算器
func NewVisitEarningsCalculator(gate FraudGate, rates RateResolver) *VisitEarningsCalculator {
	return &VisitEarningsCalculator{gate: gate, rates: rates}
}

// Calculate 被拦截时直接返回零收益且不解析费率；重复访问收益为 0
func (c *VisitEarningsCalculator) Calculate(ctx context.Context, fingerprint string, linkID uint, countryCode string) (EarningsResult, error) {
	code := NormalizeCountryCode(countryCode)
	decision, err := c.gate.Evaluate(ctx, fingerprint, linkID)
	if err != nil {
		return EarningsResult{}, err
	}
	if !decision.Allowed {
		return EarningsResult{
			CountryCode:    code,
			Tier:           constants.CountryTier3,
			Earned:         decimal.Zero,
			PlatformEarned: decimal.Zero,
			CPMRateUsed:    decimal.Zero,
			Blocked:        true,
			BlockReason:    decision.Reason,
		}, nil
	}

	quote, err := c.rates.ResolveRate(ctx, code)
	if err != nil {
		return EarningsResult{}, err
	}
	result := EarningsResult{
		CountryCode:    code,
		Tier:           quote.Tier,
		Earned:         decimal.Zero,
		PlatformEarned: decimal.Zero,
		CPMRateUsed:    quote.BaseCPM,
		RateSource:     quote.Source,
		IsUnique:       decision.IsUnique,
	}
	if !decision.IsUnique {
		return result, nil
	}
	result.Earned, result.PlatformEarned = splitVisitEarnings(quote)
	return result, nil
}

// splitVisitEarnings 用户分成取每次访问单价，平台分成为 base/1000 减去用户分成（不为负）
func splitVisitEarnings(quote RateQuote) (decimal.Decimal, decimal.Decimal) {
	earned := quote.PerVisit.Round(models.MoneyScale)
	platform := quote.BaseCPM.Div(thousand).Sub(earned).Round(models.MoneyScale)
	if platform.IsNegative() {
		platform = decimal.Zero
	}
	return earned, platform
}
