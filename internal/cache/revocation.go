package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// 未启用 Redis 时退化为进程内吊销表，仅在单实例部署下有效
var (
	localRevokedMu sync.Mutex
	localRevoked   = map[string]time.Time{}
)

func revokedKey(tokenID string) string {
	return "auth:revoked:" + tokenID
}

// RevokeToken 吊销令牌直到其自然过期
func RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error {
	tokenID = strings.TrimSpace(tokenID)
	if tokenID == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if s := active(); s != nil {
		return s.client.Set(ctx, BuildKey(revokedKey(tokenID)), "1", ttl).Err()
	}
	localRevokedMu.Lock()
	defer localRevokedMu.Unlock()
	pruneLocalRevokedLocked(time.Now())
	localRevoked[tokenID] = expiresAt
	return nil
}

// IsTokenRevoked 判断令牌是否已被吊销
func IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	tokenID = strings.TrimSpace(tokenID)
	if tokenID == "" {
		return false, nil
	}
	if s := active(); s != nil {
		n, err := s.client.Exists(ctx, BuildKey(revokedKey(tokenID))).Result()
		if err != nil {
			return false, err
		}
		return n > 0, nil
	}
	localRevokedMu.Lock()
	defer localRevokedMu.Unlock()
	expiresAt, ok := localRevoked[tokenID]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiresAt) {
		delete(localRevoked, tokenID)
		return false, nil
	}
	return true, nil
}

func pruneLocalRevokedLocked(now time.Time) {
	for id, expiresAt := range localRevoked {
		if now.After(expiresAt) {
			delete(localRevoked, id)
		}
	}
}
