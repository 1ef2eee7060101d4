package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

const blacklistPrefix = KeyPrefix + "token:blacklist:"

// TokenBlacklist 已注销Token的jti黑名单
// key在Token过期时自动删除，无需清理
type TokenBlacklist struct {
	client *redis.Client
}

// NewTokenBlacklist 创建黑名单
func NewTokenBlacklist(client *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{client: client}
}

// Revoke 拉黑jti直到ttl到期，ttl<=0时不写入(Token已过期)
func (b *TokenBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, blacklistPrefix+jti, "revoked", ttl).Err(); err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeRedisError, "添加Token到黑名单失败")
	}
	return nil
}

// IsRevoked jti是否已被拉黑
func (b *TokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, apperrors.WrapCode(err, apperrors.ErrCodeRedisError, "检查黑名单失败")
	}
	return n > 0, nil
}
