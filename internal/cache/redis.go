package cache

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/clickvault/internal/config"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "cv"

// store 进程内唯一的 Redis 句柄；未启用时所有读写退化为未命中
type store struct {
	client *redis.Client
	prefix string
}

var active *store

// InitRedis 按配置建立 Redis 客户端，未启用时清空句柄
func InitRedis(cfg *config.RedisConfig) error {
	if cfg == nil || !cfg.Enabled {
		active = nil
		return nil
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	prefix := strings.Trim(strings.TrimSpace(cfg.Prefix), ":")
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	active = &store{
		client: redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(host, strconv.Itoa(port)),
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		prefix: prefix,
	}
	return nil
}

// Enabled 是否已连接 Redis
func Enabled() bool {
	return active != nil && active.client != nil
}

// Ping 连通性检查
func Ping(ctx context.Context) error {
	if !Enabled() {
		return nil
	}
	return active.client.Ping(ctx).Err()
}

// Close 关闭客户端
func Close() error {
	if !Enabled() {
		return nil
	}
	client := active.client
	active = nil
	return client.Close()
}

func (s *store) key(parts ...string) string {
	segments := make([]string, 0, len(parts)+1)
	segments = append(segments, s.prefix)
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			segments = append(segments, part)
		}
	}
	return strings.Join(segments, ":")
}

func getJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !Enabled() {
		return false, nil
	}
	raw, err := active.client.Get(ctx, active.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		// 结构变更后的旧快照按未命中处理
		_ = active.client.Del(ctx, active.key(key)).Err()
		return false, nil
	}
	return true, nil
}

func setJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !Enabled() || ttl <= 0 {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return active.client.Set(ctx, active.key(key), payload, ttl).Err()
}

func del(ctx context.Context, key string) error {
	if !Enabled() {
		return nil
	}
	return active.client.Del(ctx, active.key(key)).Err()
}

// 固定窗口计数：首次命中设置过期，返回当前计数与剩余秒数
var windowScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return {n, redis.call("TTL", KEYS[1])}
`)

// ErrDisabled Redis 未启用
var ErrDisabled = errors.New("redis disabled")

// HitWindow 在 scope/subject 的固定窗口内记一次，返回窗口内累计次数与剩余时间
func HitWindow(ctx context.Context, scope, subject string, window time.Duration) (int64, time.Duration, error) {
	if !Enabled() {
		return 0, 0, ErrDisabled
	}
	seconds := int64(window / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	values, err := windowScript.Run(ctx, active.client, []string{active.key("rate", scope, subject)}, seconds).Int64Slice()
	if err != nil {
		return 0, 0, err
	}
	if len(values) != 2 {
		return 0, 0, errors.New("unexpected window counter reply")
	}
	return values[0], time.Duration(values[1]) * time.Second, nil
}
