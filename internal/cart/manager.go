package cart

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jaisdevansh/monu-bhiya/internal/constants"
)

// Manager 按购物车 ID 串行化访问，同一进程内同一购物车同时只有一个 Store 在变更
type Manager struct {
	adapter *Adapter
	locks   sync.Map // map[string]*sync.Mutex
}

// NewManager 创建购物车管理器
func NewManager(adapter *Adapter) *Manager {
	return &Manager{adapter: adapter}
}

// StorageOptions 存储后端选项
type StorageOptions struct {
	Kind        string
	FileDir     string
	RedisClient *redis.Client
	RedisPrefix string
	TTL         time.Duration
}

// NewStorage 根据配置选择存储后端，Redis 不可用时退回内存
func NewStorage(opts StorageOptions) (Storage, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Kind)) {
	case constants.CartStorageRedis:
		if opts.RedisClient == nil {
			return NewMemoryStorage(), nil
		}
		return NewRedisStorage(opts.RedisClient, opts.RedisPrefix, opts.TTL), nil
	case constants.CartStorageFile:
		return NewFileStorage(opts.FileDir)
	case "", constants.CartStorageMemory:
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported cart storage: %s", opts.Kind)
	}
}

// NewCartID 生成购物车 ID
func NewCartID() string {
	return uuid.NewString()
}

// ValidID 校验购物车 ID 格式
func ValidID(id string) bool {
	_, err := uuid.Parse(strings.TrimSpace(id))
	return err == nil
}

func (m *Manager) lock(id string) *sync.Mutex {
	mu, _ := m.locks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// WithCart 加锁加载购物车并执行 fn
func (m *Manager) WithCart(ctx context.Context, id string, fn func(store *Store) error) error {
	mu := m.lock(id)
	mu.Lock()
	defer mu.Unlock()
	return fn(Open(ctx, id, m.adapter))
}

// View 读取购物车视图
func (m *Manager) View(ctx context.Context, id string) View {
	var view View
	_ = m.WithCart(ctx, id, func(store *Store) error {
		view = store.Snapshot()
		return nil
	})
	return view
}

