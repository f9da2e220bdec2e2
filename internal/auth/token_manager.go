package auth

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/anoixa/album-chat/cache"
)

const revokedKeyPrefix = "auth:revoked:"

// RevocationStore 持久化的注销记录，记录在令牌过期前不会丢失
type RevocationStore interface {
	RevokeToken(ctx context.Context, jti string, expiresAt, now time.Time) error
	IsTokenRevoked(ctx context.Context, jti string, now time.Time) (bool, error)
}

// TokenManager 记录已注销的令牌
// 以 store 为准，缓存只用来加速命中
type TokenManager struct {
	store RevocationStore
	cache cache.Provider
	now   func() time.Time
}

// NewTokenManager 创建新的令牌管理器
func NewTokenManager(store RevocationStore, provider cache.Provider) *TokenManager {
	return &TokenManager{store: store, cache: provider, now: time.Now}
}

// Revoke 注销令牌
func (m *TokenManager) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	now := m.now()
	ttl := expiresAt.Sub(now)
	if ttl <= 0 {
		return nil
	}
	if err := m.store.RevokeToken(ctx, jti, expiresAt, now); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	if err := m.cache.Set(ctx, revokedKeyPrefix+jti, true, ttl); err != nil {
		log.Printf("[Auth] Revocation of %s not cached: %v", jti, err)
	}
	return nil
}

// IsRevoked 检查令牌是否已注销
func (m *TokenManager) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if hit, err := m.cache.Exists(ctx, revokedKeyPrefix+jti); err == nil && hit {
		return true, nil
	}
	return m.store.IsTokenRevoked(ctx, jti, m.now())
}
