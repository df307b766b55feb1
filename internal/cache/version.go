package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// 列表缓存的版本号命名空间
const (
	VersionOrders  = "orders"
	VersionCatalog = "catalog"
)

func versionKey(namespace string) string {
	return fmt.Sprintf("ver:%s", namespace)
}

// Version 读取命名空间版本号，未启用或不存在时返回 0
func Version(ctx context.Context, namespace string) (int64, error) {
	s := active()
	if s == nil {
		return 0, nil
	}
	raw, err := s.client.Get(ctx, BuildKey(versionKey(namespace))).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}

// BumpVersion 递增版本号，使该命名空间下的列表缓存全部失效
func BumpVersion(ctx context.Context, namespace string) error {
	s := active()
	if s == nil {
		return nil
	}
	return s.client.Incr(ctx, BuildKey(versionKey(namespace))).Err()
}

// VersionedKey 构建带版本号的缓存键
func VersionedKey(ctx context.Context, namespace, suffix string) (string, error) {
	version, err := Version(ctx, namespace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:v%d:%s", namespace, version, suffix), nil
}
