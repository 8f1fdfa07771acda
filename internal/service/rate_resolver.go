package service

import (
	"context"
	"time"

	"github.com/clickvault/internal/cache"
	"github.com/clickvault/internal/constants"
	"github.com/clickvault/internal/logger"
	"github.com/clickvault/internal/models"
	"github.com/clickvault/internal/repository"

	"github.com/shopspring/decimal"
)

// DefaultUserShare 用户分成比例
var DefaultUserShare = decimal.RequireFromString("0.85")

var thousand = decimal.NewFromInt(1000)

// RateQuote 国家费率解析结果
type RateQuote struct {
	CountryCode string          `json:"country_code"`
	CountryName string          `json:"country_name"`
	Tier        int             `json:"tier"`
	BaseCPM     decimal.Decimal `json:"base_cpm"`
	UserCPM     decimal.Decimal `json:"user_cpm"`
	PerVisit    decimal.Decimal `json:"per_visit"`
	Source      string          `json:"source"`
}

// RateResolver 国家 → 费率解析
type RateResolver interface {
	ResolveRate(ctx context.Context, countryCode string) (RateQuote, error)
}

// RateStrategy 有序解析链中的单个来源，未命中返回 false
type RateStrategy interface {
	Name() string
	Lookup(ctx context.Context, countryCode string) (RateQuote, bool, error)
}

// RateCache 费率快照缓存
type RateCache interface {
	Load(ctx context.Context, countryCode string) (*RateQuote, bool, error)
	Store(ctx context.Context, quote RateQuote, ttl time.Duration) error
	Invalidate(ctx context.Context, countryCode string) error
}

func buildRateQuote(code, name string, tier int, baseCPM decimal.Decimal, userCPM *decimal.Decimal, share decimal.Decimal, source string) RateQuote {
	user := baseCPM.Mul(share).Round(models.MoneyScale)
	if userCPM != nil {
		user = userCPM.Round(models.MoneyScale)
	}
	return RateQuote{
		CountryCode: code,
		CountryName: name,
		Tier:        tier,
		BaseCPM:     baseCPM.Round(models.MoneyScale),
		UserCPM:     user,
		PerVisit:    user.Div(thousand).Round(models.MoneyScale),
		Source:      source,
	}
}

func normalizeUserShare(share decimal.Decimal) decimal.Decimal {
	if share.LessThanOrEqual(decimal.Zero) || share.GreaterThan(decimal.NewFromInt(1)) {
		return DefaultUserShare
	}
	return share
}

// StoreRateStrategy 优先读取可变费率表中启用的覆盖值
type StoreRateStrategy struct {
	repo      repository.CpmRateRepository
	userShare decimal.Decimal
}

// NewStoreRateStrategy 创建费率表策略
func NewStoreRateStrategy(repo repository.CpmRateRepository, userShare decimal.Decimal) *StoreRateStrategy {
	return &StoreRateStrategy{repo: repo, userShare: normalizeUserShare(userShare)}
}

// Name 策略名
func (s *StoreRateStrategy) Name() string {
	return constants.RateSourceStore
}

// Lookup 查询覆盖费率
func (s *StoreRateStrategy) Lookup(_ context.Context, countryCode string) (RateQuote, bool, error) {
	if s == nil || s.repo == nil {
		return RateQuote{}, false, nil
	}
	row, err := s.repo.GetByCountry(countryCode)
	if err != nil {
		return RateQuote{}, false, err
	}
	if row == nil || !row.IsActive {
		return RateQuote{}, false, nil
	}
	tier := row.Tier
	if !IsValidTier(tier) {
		tier = constants.CountryTier3
	}
	var userCPM *decimal.Decimal
	if row.UserCPM != nil {
		value := row.UserCPM.Decimal
		userCPM = &value
	}
	return buildRateQuote(row.CountryCode, row.CountryName, tier, row.Rate.Decimal, userCPM, s.userShare, constants.RateSourceStore), true, nil
}

// StaticRateStrategy 内置国家费率表
type StaticRateStrategy struct {
	userShare decimal.Decimal
}

// NewStaticRateStrategy 创建内置表策略
func NewStaticRateStrategy(userShare decimal.Decimal) *StaticRateStrategy {
	return &StaticRateStrategy{userShare: normalizeUserShare(userShare)}
}

// Name 策略名
func (s *StaticRateStrategy) Name() string {
	return constants.RateSourceStatic
}

// Lookup 查询内置表
func (s *StaticRateStrategy) Lookup(_ context.Context, countryCode string) (RateQuote, bool, error) {
	rate, ok := LookupStaticRate(countryCode)
	if !ok {
		return RateQuote{}, false, nil
	}
	return buildRateQuote(rate.CountryCode, rate.CountryName, rate.Tier, rate.BaseCPM, nil, s.userShare, constants.RateSourceStatic), true, nil
}

// TierDefaultStrategy 兜底策略，总是命中（未知国家按 tier 3）
type TierDefaultStrategy struct {
	userShare decimal.Decimal
}

// NewTierDefaultStrategy 创建兜底策略
func NewTierDefaultStrategy(userShare decimal.Decimal) *TierDefaultStrategy {
	return &TierDefaultStrategy{userShare: normalizeUserShare(userShare)}
}

// Name 策略名
func (s *TierDefaultStrategy) Name() string {
	return constants.RateSourceTierDefault
}

// Lookup 返回 tier 3 默认费率
func (s *TierDefaultStrategy) Lookup(_ context.Context, countryCode string) (RateQuote, bool, error) {
	name := constants.CountryNameUnknown
	if countryCode != constants.CountryCodeUnknown {
		name = countryCode
	}
	tier := constants.CountryTier3
	return buildRateQuote(countryCode, name, tier, TierDefaultCPM(tier), nil, s.userShare, constants.RateSourceTierDefault), true, nil
}

// ChainRateResolver 按顺序尝试各策略，首个命中者生效
type ChainRateResolver struct {
	strategies []RateStrategy
	fallback   RateStrategy
}

// NewChainRateResolver 创建解析链，末尾总是追加等级兜底
func NewChainRateResolver(userShare decimal.Decimal, strategies ...RateStrategy) *ChainRateResolver {
	return &ChainRateResolver{
		strategies: strategies,
		fallback:   NewTierDefaultStrategy(userShare),
	}
}

// NewDefaultRateResolver 费率表 → 内置表 → 等级兜底
func NewDefaultRateResolver(repo repository.CpmRateRepository, userShare decimal.Decimal) *ChainRateResolver {
	return NewChainRateResolver(userShare,
		NewStoreRateStrategy(repo, userShare),
		NewStaticRateStrategy(userShare),
	)
}

// ResolveRate 解析国家费率（纯读取）
func (r *ChainRateResolver) ResolveRate(ctx context.Context, countryCode string) (RateQuote, error) {
	code := NormalizeCountryCode(countryCode)
	for _, strategy := range r.strategies {
		if strategy == nil {
			continue
		}
		quote, found, err := strategy.Lookup(ctx, code)
		if err != nil {
			return RateQuote{}, err
		}
		if found {
			return quote, nil
		}
	}
	quote, _, err := r.fallback.Lookup(ctx, code)
	return quote, err
}

// CachedRateResolver 在解析链外包一层短 TTL 缓存
type CachedRateResolver struct {
	inner RateResolver
	cache RateCache
	ttl   time.Duration
}

// NewCachedRateResolver 创建带缓存的解析器
func NewCachedRateResolver(inner RateResolver, rateCache RateCache, ttl time.Duration) *CachedRateResolver {
	return &CachedRateResolver{inner: inner, cache: rateCache, ttl: ttl}
}

// ResolveRate 先读缓存，未命中时解析并回填
func (r *CachedRateResolver) ResolveRate(ctx context.Context, countryCode string) (RateQuote, error) {
	code := NormalizeCountryCode(countryCode)
	if r.cache != nil && r.ttl > 0 {
		cached, hit, err := r.cache.Load(ctx, code)
		if err != nil {
			logger.Warnw("cpm_rate_cache_load_failed", "country_code", code, "error", err)
		} else if hit && cached != nil {
			return *cached, nil
		}
	}

	quote, err := r.inner.ResolveRate(ctx, code)
	if err != nil {
		return RateQuote{}, err
	}
	if r.cache != nil && r.ttl > 0 {
		if err := r.cache.Store(ctx, quote, r.ttl); err != nil {
			logger.Warnw("cpm_rate_cache_store_failed", "country_code", code, "error", err)
		}
	}
	return quote, nil
}

// Invalidate 失效指定国家缓存
func (r *CachedRateResolver) Invalidate(ctx context.Context, countryCode string) error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Invalidate(ctx, NormalizeCountryCode(countryCode))
}

// RedisRateCache 基于 Redis 的费率缓存，未启用 Redis 时始终未命中
type RedisRateCache struct{}

// NewRedisRateCache 创建 Redis 费率缓存
func NewRedisRateCache() *RedisRateCache {
	return &RedisRateCache{}
}

// Load 读取缓存
func (RedisRateCache) Load(ctx context.Context, countryCode string) (*RateQuote, bool, error) {
	var quote RateQuote
	hit, err := cache.GetCpmRate(ctx, countryCode, &quote)
	if err != nil || !hit {
		return nil, false, err
	}
	return &quote, true, nil
}

// Store 写入缓存
func (RedisRateCache) Store(ctx context.Context, quote RateQuote, ttl time.Duration) error {
	return cache.SetCpmRate(ctx, quote.CountryCode, quote, ttl)
}

// Invalidate 删除缓存
func (RedisRateCache) Invalidate(ctx context.Context, countryCode string) error {
	return cache.DelCpmRate(ctx, countryCode)
}
