package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

// InitRedis initializes the Redis client
func InitRedis() error {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://redis:6379" // Default Redis address for Docker
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	RedisClient = redis.NewClient(opt)

	// Test the connection
	ctx := context.Background()
	_, err = RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return nil
}

// Refresh tokens are only honored while their id is on the allowlist, so a
// password reset or account deletion cuts off every session at once.
// Without Redis configured the allowlist is skipped and refresh tokens are
// honored by signature and expiry alone.

func refreshTokenKey(jti string) string {
	return fmt.Sprintf("refresh_token:%s", jti)
}

func userTokensKey(userID uint) string {
	return fmt.Sprintf("user_tokens:%d", userID)
}

// StoreRefreshToken records an issued refresh token until it expires.
func StoreRefreshToken(ctx context.Context, userID uint, jti string, ttl time.Duration) error {
	if RedisClient == nil {
		return nil
	}
	if err := RedisClient.Set(ctx, refreshTokenKey(jti), userID, ttl).Err(); err != nil {
		return err
	}
	if err := RedisClient.SAdd(ctx, userTokensKey(userID), jti).Err(); err != nil {
		return err
	}
	return RedisClient.Expire(ctx, userTokensKey(userID), ttl).Err()
}

// IsRefreshTokenActive reports whether the refresh token is still honored.
func IsRefreshTokenActive(ctx context.Context, jti string) (bool, error) {
	if RedisClient == nil {
		return true, nil
	}
	n, err := RedisClient.Exists(ctx, refreshTokenKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RevokeRefreshToken drops a single refresh token (used on rotation).
func RevokeRefreshToken(ctx context.Context, userID uint, jti string) error {
	if RedisClient == nil {
		return nil
	}
	if err := RedisClient.Del(ctx, refreshTokenKey(jti)).Err(); err != nil {
		return err
	}
	return RedisClient.SRem(ctx, userTokensKey(userID), jti).Err()
}

// RevokeUserTokens drops every refresh token issued to the user.
func RevokeUserTokens(ctx context.Context, userID uint) error {
	if RedisClient == nil {
		return nil
	}
	jtis, err := RedisClient.SMembers(ctx, userTokensKey(userID)).Result()
	if err != nil {
		return err
	}
	for _, jti := range jtis {
		if err := RedisClient.Del(ctx, refreshTokenKey(jti)).Err(); err != nil {
			return err
		}
	}
	return RedisClient.Del(ctx, userTokensKey(userID)).Err()
}
