package resettoken

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "resettoken:"

// expiredRetention keeps token records in Redis beyond their logical expiry
// so a stale token reports ErrTokenExpired instead of being indistinguishable
// from an unknown one.
const expiredRetention = 24 * time.Hour

// RedisStore persists tokens in Redis, suitable for multi-instance
// deployments. GETDEL makes consumption atomic across instances.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore creates a Redis-backed token store.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	if client == nil {
		panic("resettoken: redis client cannot be nil")
	}
	return &RedisStore{client: client}
}

// Save stores the token as JSON with a TTL covering its lifetime plus the
// retention window.
func (r *RedisStore) Save(ctx context.Context, token Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, redisKeyPrefix+token.Value, data, storageTTL(token)).Err()
}

// storageTTL derives the Redis TTL from the token's own timestamps rather
// than the wall clock, so it stays consistent with the clock the issuing
// Service stamped the token with.
func storageTTL(token Token) time.Duration {
	return token.ExpiresAt.Sub(token.CreatedAt) + expiredRetention
}

// Consume atomically fetches and deletes the token via GETDEL.
func (r *RedisStore) Consume(ctx context.Context, value string) (Token, error) {
	data, err := r.client.GetDel(ctx, redisKeyPrefix+value).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Token{}, ErrTokenNotFound
		}
		return Token{}, err
	}

	var token Token
	if err := json.Unmarshal(data, &token); err != nil {
		return Token{}, ErrTokenNotFound
	}
	token.Value = value
	return token, nil
}
