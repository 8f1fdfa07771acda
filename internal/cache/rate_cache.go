package cache

import (
	"context"
	"strings"
	"time"
)

func cpmRateKey(countryCode string) string {
	return "cpm:rate:" + strings.ToUpper(strings.TrimSpace(countryCode))
}

// GetCpmRate 读取国家费率快照
func GetCpmRate(ctx context.Context, countryCode string, dest interface{}) (bool, error) {
	return getJSON(ctx, cpmRateKey(countryCode), dest)
}

// SetCpmRate 写入国家费率快照，ttl 非正时不缓存
func SetCpmRate(ctx context.Context, countryCode string, value interface{}, ttl time.Duration) error {
	return setJSON(ctx, cpmRateKey(countryCode), value, ttl)
}

// DelCpmRate 失效国家费率快照
func DelCpmRate(ctx context.Context, countryCode string) error {
	return del(ctx, cpmRateKey(countryCode))
}
