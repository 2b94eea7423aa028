package sessions

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultBlacklistPrefix = "blacklist:access:"

// Blacklist revokes access tokens ahead of their natural expiry, backed by
// Redis with a TTL per entry. A nil *Blacklist is valid and disables
// revocation, so callers need no special casing when Redis is not configured.
type Blacklist struct {
	client *redis.Client
	prefix string
}

// NewBlacklist creates a Redis-backed token blacklist. Prefix may be empty.
func NewBlacklist(client *redis.Client, prefix string) *Blacklist {
	if prefix == "" {
		prefix = defaultBlacklistPrefix
	}
	return &Blacklist{client: client, prefix: prefix}
}

// Revoke stores the token with the given TTL; after the TTL the entry lapses
// together with the token itself.
func (b *Blacklist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if b == nil || b.client == nil {
		return nil
	}
	return b.client.Set(ctx, b.prefix+token, "1", ttl).Err()
}

// Revoked reports whether the token is currently revoked.
func (b *Blacklist) Revoked(ctx context.Context, token string) (bool, error) {
	if b == nil || b.client == nil {
		return false, nil
	}
	n, err := b.client.Exists(ctx, b.prefix+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
