package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// TokenCache remembers recent token-validation decisions so that repeated
// requests with the same bearer token do not each cost an authority round
// trip. Entries are short-lived; a revoked token is rejected again once its
// entry expires.
type TokenCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewTokenCache(redisURL string, ttl time.Duration) (*TokenCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &TokenCache{client: client, ttl: ttl}, nil
}

// GetValidation reports a cached decision for the token. The second return
// is false on a miss or any redis error; callers fall through to the
// authority.
func (c *TokenCache) GetValidation(ctx context.Context, token string) (bool, bool) {
	val, err := c.client.Get(ctx, validationKey(token)).Result()
	if err != nil {
		return false, false
	}
	return val == "1", true
}

func (c *TokenCache) SetValidation(ctx context.Context, token string, valid bool) {
	val := "0"
	if valid {
		val = "1"
	}
	// Best effort; a failed write just means the next request revalidates.
	_ = c.client.Set(ctx, validationKey(token), val, c.ttl).Err()
}

func (c *TokenCache) Close() error {
	return c.client.Close()
}

// validationKey stores a digest, never the raw token.
func validationKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "auth:token:" + hex.EncodeToString(sum[:])
}
