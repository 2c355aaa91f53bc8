package blacklist

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "tourmate:revoked:"

// RedisBlacklist stores revoked ids as keys that expire with the token.
type RedisBlacklist struct {
	client *redis.Client
}

func NewRedisBlacklist(client *redis.Client) *RedisBlacklist {
	return &RedisBlacklist{client: client}
}

func (b *RedisBlacklist) Revoke(ctx context.Context, jti string, userID uint64, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	ok, err := b.client.SetNX(ctx, keyPrefix+jti, strconv.FormatUint(userID, 10), ttl).Result()
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	if !ok {
		return ErrAlreadyRevoked
	}
	return nil
}

func (b *RedisBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, keyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("lookup revoked token: %w", err)
	}
	return n > 0, nil
}
