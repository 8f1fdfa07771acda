package service

import (
	"strings"

	"github.com/clickvault/internal/constants"

	"github.com/shopspring/decimal"
)

// StaticCountryRate 内置国家费率
type StaticCountryRate struct {
	CountryCode string
	CountryName string
	Tier        int
	BaseCPM     decimal.Decimal
}

func staticRate(code, name string, tier int, cpm string) StaticCountryRate {
	return StaticCountryRate{
		CountryCode: code,
		CountryName: name,
		Tier:        tier,
		BaseCPM:     decimal.RequireFromString(cpm),
	}
}

// tierDefaultCPM 等级兜底 base CPM
var tierDefaultCPM = map[int]decimal.Decimal{
	constants.CountryTier1: decimal.RequireFromString("2.50"),
	constants.CountryTier2: decimal.RequireFromString("1.20"),
	constants.CountryTier3: decimal.RequireFromString("0.40"),
}

// staticCountryRates 国家等级为固定编辑映射，不做计算
var staticCountryRates = buildStaticRateIndex([]StaticCountryRate{
	// tier 1
	staticRate("US", "United States", constants.CountryTier1, "3.00"),
	staticRate("GB", "United Kingdom", constants.CountryTier1, "2.80"),
	staticRate("CA", "Canada", constants.CountryTier1, "2.60"),
	staticRate("AU", "Australia", constants.CountryTier1, "2.60"),
	staticRate("NZ", "New Zealand", constants.CountryTier1, "2.20"),
	staticRate("IE", "Ireland", constants.CountryTier1, "2.20"),
	staticRate("DE", "Germany", constants.CountryTier1, "2.40"),
	staticRate("FR", "France", constants.CountryTier1, "2.10"),
	staticRate("NL", "Netherlands", constants.CountryTier1, "2.20"),
	staticRate("BE", "Belgium", constants.CountryTier1, "2.00"),
	staticRate("CH", "Switzerland", constants.CountryTier1, "2.60"),
	staticRate("AT", "Austria", constants.CountryTier1, "2.00"),
	staticRate("SE", "Sweden", constants.CountryTier1, "2.20"),
	staticRate("NO", "Norway", constants.CountryTier1, "2.40"),
	staticRate("DK", "Denmark", constants.CountryTier1, "2.20"),
	staticRate("FI", "Finland", constants.CountryTier1, "2.00"),
	staticRate("LU", "Luxembourg", constants.CountryTier1, "2.20"),
	// tier 2
	staticRate("JP", "Japan", constants.CountryTier2, "1.60"),
	staticRate("KR", "South Korea", constants.CountryTier2, "1.40"),
	staticRate("SG", "Singapore", constants.CountryTier2, "1.50"),
	staticRate("HK", "Hong Kong", constants.CountryTier2, "1.40"),
	staticRate("TW", "Taiwan", constants.CountryTier2, "1.20"),
	staticRate("IL", "Israel", constants.CountryTier2, "1.30"),
	staticRate("AE", "United Arab Emirates", constants.CountryTier2, "1.40"),
	staticRate("SA", "Saudi Arabia", constants.CountryTier2, "1.10"),
	staticRate("QA", "Qatar", constants.CountryTier2, "1.20"),
	staticRate("ES", "Spain", constants.CountryTier2, "1.30"),
	staticRate("IT", "Italy", constants.CountryTier2, "1.30"),
	staticRate("PT", "Portugal", constants.CountryTier2, "1.10"),
	staticRate("PL", "Poland", constants.CountryTier2, "1.00"),
	staticRate("CZ", "Czechia", constants.CountryTier2, "1.00"),
	staticRate("GR", "Greece", constants.CountryTier2, "0.90"),
	staticRate("HU", "Hungary", constants.CountryTier2, "0.90"),
	staticRate("SK", "Slovakia", constants.CountryTier2, "0.90"),
	staticRate("SI", "Slovenia", constants.CountryTier2, "0.90"),
	staticRate("EE", "Estonia", constants.CountryTier2, "0.90"),
	staticRate("MX", "Mexico", constants.CountryTier2, "0.80"),
	staticRate("CL", "Chile", constants.CountryTier2, "0.80"),
	// tier 3
	staticRate("BR", "Brazil", constants.CountryTier3, "0.50"),
	staticRate("AR", "Argentina", constants.CountryTier3, "0.45"),
	staticRate("CO", "Colombia", constants.CountryTier3, "0.40"),
	staticRate("TR", "Turkey", constants.CountryTier3, "0.45"),
	staticRate("RU", "Russia", constants.CountryTier3, "0.40"),
	staticRate("UA", "Ukraine", constants.CountryTier3, "0.35"),
	staticRate("CN", "China", constants.CountryTier3, "0.50"),
	staticRate("IN", "India", constants.CountryTier3, "0.30"),
	staticRate("ID", "Indonesia", constants.CountryTier3, "0.30"),
	staticRate("PH", "Philippines", constants.CountryTier3, "0.30"),
	staticRate("VN", "Vietnam", constants.CountryTier3, "0.30"),
	staticRate("TH", "Thailand", constants.CountryTier3, "0.35"),
	staticRate("MY", "Malaysia", constants.CountryTier3, "0.45"),
	staticRate("PK", "Pakistan", constants.CountryTier3, "0.25"),
	staticRate("BD", "Bangladesh", constants.CountryTier3, "0.25"),
	staticRate("EG", "Egypt", constants.CountryTier3, "0.30"),
	staticRate("NG", "Nigeria", constants.CountryTier3, "0.25"),
	staticRate("ZA", "South Africa", constants.CountryTier3, "0.50"),
	staticRate("KE", "Kenya", constants.CountryTier3, "0.25"),
	staticRate("MA", "Morocco", constants.CountryTier3, "0.30"),
})

func buildStaticRateIndex(rates []StaticCountryRate) map[string]StaticCountryRate {
	index := make(map[string]StaticCountryRate, len(rates))
	for _, rate := range rates {
		index[rate.CountryCode] = rate
	}
	return index
}

// LookupStaticRate 查询内置国家费率
func LookupStaticRate(countryCode string) (StaticCountryRate, bool) {
	rate, ok := staticCountryRates[NormalizeCountryCode(countryCode)]
	return rate, ok
}

// StaticRates 返回内置费率表（seed 使用）
func StaticRates() []StaticCountryRate {
	result := make([]StaticCountryRate, 0, len(staticCountryRates))
	for _, rate := range staticCountryRates {
		result = append(result, rate)
	}
	return result
}

// TierDefaultCPM 等级兜底费率，非法等级按 tier 3
func TierDefaultCPM(tier int) decimal.Decimal {
	if cpm, ok := tierDefaultCPM[tier]; ok {
		return cpm
	}
	return tierDefaultCPM[constants.CountryTier3]
}

// NormalizeCountryCode 国家码转大写，非法或缺失返回 XX
func NormalizeCountryCode(raw string) string {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if len(code) != 2 {
		return constants.CountryCodeUnknown
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return constants.CountryCodeUnknown
		}
	}
	return code
}

// IsValidTier 等级是否合法
func IsValidTier(tier int) bool {
	return tier >= constants.CountryTier1 && tier <= constants.CountryTier3
}
