package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const denylistKeyPrefix = "taskward:revoked:"

// Denylist tracks revoked token ids in Redis until their natural expiry.
type Denylist struct {
	client *redis.Client
}

// NewDenylist constructs a Denylist.
func NewDenylist(client *redis.Client) *Denylist {
	return &Denylist{client: client}
}

// Revoke marks a token id as revoked for the remaining token lifetime.
func (d *Denylist) Revoke(ctx context.Context, jti string, until time.Time) error {
	if d == nil || d.client == nil || jti == "" {
		return nil
	}
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return d.client.Set(ctx, denylistKeyPrefix+jti, "1", ttl).Err()
}

// IsRevoked reports whether the token id has been revoked. Lookup failures
// fail closed only for explicit revocations: a Redis outage must not lock
// every user out, so errors read as "not revoked".
func (d *Denylist) IsRevoked(ctx context.Context, jti string) bool {
	if d == nil || d.client == nil || jti == "" {
		return false
	}
	n, err := d.client.Exists(ctx, denylistKeyPrefix+jti).Result()
	if err != nil {
		return false
	}
	return n > 0
}
