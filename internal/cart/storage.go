package cart

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Storage 购物车快照存储后端
type Storage interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// MemoryStorage 进程内存储，用于测试与单机开发
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStorage 创建内存存储
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

// Read 读取快照
func (m *MemoryStorage) Read(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	raw, ok := m.data[key]
	if !ok {
		return nil, ErrCartNotFound
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

// Write 写入快照
func (m *MemoryStorage) Write(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	m.data[key] = buf
	return nil
}

// Delete 删除快照
func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

var safeKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// FileStorage 每个购物车一个 JSON 文件
type FileStorage struct {
	dir string
}

// NewFileStorage 创建文件存储
func NewFileStorage(dir string) (*FileStorage, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("cart file dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cart dir failed: %w", err)
	}
	return &FileStorage{dir: dir}, nil
}

func (f *FileStorage) path(key string) (string, error) {
	if !safeKeyPattern.MatchString(key) {
		return "", fmt.Errorf("unsafe cart key %q", key)
	}
	return filepath.Join(f.dir, key+".json"), nil
}

// Read 读取快照
func (f *FileStorage) Read(_ context.Context, key string) ([]byte, error) {
	path, err := f.path(key)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrCartNotFound
	}
	return raw, err
}

// Write 先写临时文件再改名，避免读到半截内容
func (f *FileStorage) Write(_ context.Context, key string, data []byte) error {
	path, err := f.path(key)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.dir, key+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete 删除快照
func (f *FileStorage) Delete(_ context.Context, key string) error {
	path, err := f.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// RedisStorage 以 Redis 字符串保存快照，每次写入刷新过期时间
type RedisStorage struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStorage 创建 Redis 存储
func NewRedisStorage(client *redis.Client, prefix string, ttl time.Duration) *RedisStorage {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "cart"
	}
	return &RedisStorage{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisStorage) key(key string) string {
	return r.prefix + ":" + key
}

// Read 读取快照
func (r *RedisStorage) Read(ctx context.Context, key string) ([]byte, error) {
	raw, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCartNotFound
	}
	return raw, err
}

// Write 写入快照
func (r *RedisStorage) Write(ctx context.Context, key string, data []byte) error {
	return r.client.Set(ctx, r.key(key), data, r.ttl).Err()
}

// Delete 删除快照
func (r *RedisStorage) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}
