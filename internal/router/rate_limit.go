package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/jaisdevansh/monu-bhiya/internal/http/response"
	"github.com/jaisdevansh/monu-bhiya/internal/i18n"
	"github.com/jaisdevansh/monu-bhiya/internal/logger"
	"github.com/jaisdevansh/monu-bhiya/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitKeyFunc 生成限流 key 的函数
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 限流规则
type RateLimitRule struct {
	Name          string
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	MessageKey    string
}

var rateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("TTL", KEYS[1])
return {current, ttl}
`)

// localWindow 未配置 Redis 时的进程内固定窗口计数
type localWindow struct {
	mu      sync.Mutex
	buckets map[string]*localBucket
	now     func() time.Time
}

type localBucket struct {
	count   int64
	resetAt time.Time
}

func newLocalWindow() *localWindow {
	return &localWindow{buckets: make(map[string]*localBucket), now: time.Now}
}

// hit 计数并返回当前计数与窗口剩余秒数
func (w *localWindow) hit(key string, window time.Duration) (int64, int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.now()
	if len(w.buckets) > 4096 {
		for k, b := range w.buckets {
			if !now.Before(b.resetAt) {
				delete(w.buckets, k)
			}
		}
	}
	bucket, ok := w.buckets[key]
	if !ok || !now.Before(bucket.resetAt) {
		bucket = &localBucket{resetAt: now.Add(window)}
		w.buckets[key] = bucket
	}
	bucket.count++
	remaining := int64(bucket.resetAt.Sub(now).Round(time.Second) / time.Second)
	return bucket.count, remaining
}

// RateLimitMiddleware 固定窗口频率限制，优先 Redis，未启用时退回进程内计数
func RateLimitMiddleware(client *redis.Client, reg *metrics.Registry, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	local := newLocalWindow()
	window := time.Duration(rule.WindowSeconds) * time.Second
	return func(c *gin.Context) {
		if rule.WindowSeconds <= 0 || rule.MaxRequests <= 0 {
			c.Next()
			return
		}

		key := ""
		if keyFunc != nil {
			key = strings.TrimSpace(keyFunc(c))
		}
		if key == "" {
			key = c.ClientIP()
		}
		if rule.Prefix != "" {
			key = fmt.Sprintf("%s:%s", rule.Prefix, key)
		}

		var count, ttlSeconds int64
		if client != nil {
			var ok bool
			count, ttlSeconds, ok = runRedisWindow(c, client, key, rule.WindowSeconds)
			if !ok {
				msg := i18n.T(i18n.ResolveLocale(c), "error.rate_limit_unavailable")
				response.Error(c, response.CodeInternal, msg)
				c.Abort()
				return
			}
		} else {
			count, ttlSeconds = local.hit(key, window)
		}

		if count > int64(rule.MaxRequests) {
			waitSeconds := int(ttlSeconds)
			if waitSeconds < 1 {
				waitSeconds = rule.WindowSeconds
			}
			if waitSeconds < 1 {
				waitSeconds = 1
			}
			msgKey := strings.TrimSpace(rule.MessageKey)
			if msgKey == "" {
				msgKey = "error.too_many_requests"
			}
			reg.RateLimited(rule.Name)
			logger.Debugw("rate_limit_rejected", "rule", rule.Name, "key", key, "count", count)
			msg := i18n.T(i18n.ResolveLocale(c), msgKey)
			response.ErrorWithData(c, response.CodeTooManyRequests, msg, gin.H{"retry_after": waitSeconds})
			c.Abort()
			return
		}

		c.Next()
	}
}

func runRedisWindow(c *gin.Context, client *redis.Client, key string, windowSeconds int) (int64, int64, bool) {
	result, err := rateLimitScript.Run(c.Request.Context(), client, []string{key}, windowSeconds).Result()
	if err != nil {
		logger.Warnw("rate_limit_redis_failed", "key", key, "error", err)
		return 0, 0, false
	}
	values, ok := result.([]interface{})
	if !ok || len(values) < 2 {
		return 0, 0, false
	}
	count, ok := toInt64(values[0])
	if !ok {
		return 0, 0, false
	}
	ttlSeconds, _ := toInt64(values[1])
	return count, ttlSeconds, true
}

// KeyByIP 使用 IP 作为限流 key
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByJSONField 使用 JSON 字段作为限流 key，字段缺失时退回 IP
func KeyByJSONField(field string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		value := strings.ToLower(strings.TrimSpace(readJSONField(c, field)))
		if value == "" {
			return c.ClientIP()
		}
		return value
	}
}

// KeyByIPAndJSONField 使用 IP + JSON 字段作为限流 key
func KeyByIPAndJSONField(field string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		value := strings.ToLower(strings.TrimSpace(readJSONField(c, field)))
		if value == "" {
			return c.ClientIP()
		}
		return fmt.Sprintf("%s|%s", value, c.ClientIP())
	}
}

// KeyByPathParam 使用路径参数作为限流 key
func KeyByPathParam(name string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		value := strings.TrimSpace(c.Param(name))
		if value == "" {
			return c.ClientIP()
		}
		return value
	}
}

func readJSONField(c *gin.Context, field string) string {
	if c == nil || c.Request == nil || c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
	if len(body) == 0 {
		return ""
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	value, ok := payload[field]
	if !ok {
		return ""
	}
	if text, ok := value.(string); ok {
		return strings.TrimSpace(text)
	}
	return ""
}

func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint64:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint8:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
