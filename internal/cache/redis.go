package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jaisdevansh/monu-bhiya/internal/config"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "monuchai"

// store 进程级 Redis 连接；为空表示未启用，所有读写退化为空操作
type store struct {
	client *redis.Client
	prefix string
}

var (
	mu      sync.RWMutex
	current *store
	// 未启用时 BuildKey 仍需要稳定前缀
	fallbackPrefix = defaultPrefix
)

func active() *store {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// InitRedis 按配置建立客户端；连接是惰性的，连通性由 Ping 检查
func InitRedis(cfg *config.RedisConfig) error {
	if cfg == nil || !cfg.Enabled {
		return Close()
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
		prefix = defaultPrefix
	}
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	mu.Lock()
	old := current
	current = &store{client: client, prefix: prefix}
	fallbackPrefix = prefix
	mu.Unlock()
	if old != nil {
		_ = old.client.Close()
	}
	return nil
}

// Close 关闭客户端并回到未启用状态
func Close() error {
	mu.Lock()
	old := current
	current = nil
	mu.Unlock()
	if old == nil {
		return nil
	}
	return old.client.Close()
}

// Enabled 是否启用 Redis
func Enabled() bool {
	return active() != nil
}

// Client 原始客户端，供限流、购物车存储等组件直接使用；未启用时为 nil
func Client() *redis.Client {
	if s := active(); s != nil {
		return s.client
	}
	return nil
}

// Ping 检查连通性，未启用时直接返回
func Ping(ctx context.Context) error {
	s := active()
	if s == nil {
		return nil
	}
	return s.client.Ping(ctx).Err()
}

// Prefix 当前键前缀
func Prefix() string {
	mu.RLock()
	defer mu.RUnlock()
	if current != nil {
		return current.prefix
	}
	return fallbackPrefix
}

// BuildKey 拼接带前缀的键
func BuildKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return Prefix()
	}
	return Prefix() + ":" + key
}

// GetJSON 读取 JSON 缓存，未命中返回 false
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	s := active()
	if s == nil {
		return false, nil
	}
	raw, err := s.client.Get(ctx, BuildKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON 写入 JSON 缓存
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	s := active()
	if s == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, BuildKey(key), payload, ttl).Err()
}

// Del 删除缓存
func Del(ctx context.Context, key string) error {
	s := active()
	if s == nil {
		return nil
	}
	return s.client.Del(ctx, BuildKey(key)).Err()
}
