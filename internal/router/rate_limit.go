package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/clickvault/internal/config"
	handlershared "github.com/clickvault/internal/http/handlers/shared"
	"github.com/clickvault/internal/http/response"
	"github.com/clickvault/internal/i18n"

	"github.com/gin-gonic/gin"
)

// maxKeyBodyBytes 提取限流字段时最多读取的请求体
const maxKeyBodyBytes = 16 << 10

// WindowCounter 固定窗口计数，返回窗口内累计次数与剩余时间
type WindowCounter func(ctx context.Context, scope, subject string, window time.Duration) (int64, time.Duration, error)

// RateLimitKeyFunc 生成限流主体
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 一类请求的限流规则
type RateLimitRule struct {
	Scope      string
	Window     time.Duration
	Limit      int
	MessageKey string
}

// newRateLimitRule 从配置构建规则，窗口或上限非正时规则不生效
func newRateLimitRule(scope string, cfg config.RateLimitConfig, messageKey string) RateLimitRule {
	return RateLimitRule{
		Scope:      scope,
		Window:     time.Duration(cfg.WindowSeconds) * time.Second,
		Limit:      cfg.MaxAttempts,
		MessageKey: messageKey,
	}
}

func (r RateLimitRule) active() bool {
	return r.Window > 0 && r.Limit > 0
}

// RateLimitMiddleware 固定窗口限流；计数器缺失时放行
func RateLimitMiddleware(counter WindowCounter, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if counter == nil || !rule.active() {
			c.Next()
			return
		}
		subject := ""
		if keyFunc != nil {
			subject = strings.TrimSpace(keyFunc(c))
		}
		if subject == "" {
			subject = c.ClientIP()
		}

		count, remaining, err := counter(c.Request.Context(), rule.Scope, subject, rule.Window)
		if err != nil {
			handlershared.RequestLog(c).Errorw("rate_limit_counter_failed", "scope", rule.Scope, "error", err)
			abortWith(c, response.CodeInternal, "error.rate_limit_unavailable")
			return
		}
		if count <= int64(rule.Limit) {
			c.Next()
			return
		}

		wait := int(remaining / time.Second)
		if wait < 1 {
			wait = int(rule.Window / time.Second)
		}
		if wait < 1 {
			wait = 1
		}
		key := rule.MessageKey
		if key == "" {
			key = "error.too_many_requests"
		}
		response.Error(c, response.CodeTooManyRequests, i18n.Sprintf(i18n.ResolveLocale(c), key, wait))
		c.Abort()
	}
}

// KeyByIP 按客户端 IP 限流
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByIPAndJSONField 按 JSON 字段（如登录账号）+ IP 限流，字段缺失时退化为 IP
func KeyByIPAndJSONField(field string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		value := strings.ToLower(peekJSONField(c, field))
		if value == "" {
			return c.ClientIP()
		}
		return value + "|" + c.ClientIP()
	}
}

// peekJSONField 读取请求体中的字符串字段并还原请求体
func peekJSONField(c *gin.Context, field string) string {
	if c == nil || c.Request == nil || c.Request.Body == nil {
		return ""
	}
	original := c.Request.Body
	body, err := io.ReadAll(io.LimitReader(original, maxKeyBodyBytes))
	c.Request.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(body), original), original}
	if err != nil {
		return ""
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	var value string
	if err := json.Unmarshal(payload[field], &value); err != nil {
		return ""
	}
	return strings.TrimSpace(value)
}
