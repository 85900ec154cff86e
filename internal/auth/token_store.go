package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hassan-khan07/Chat-App/internal/apperr"
)

const refreshTokenPrefix = "refresh_token:"

// TokenStore is the refresh-token allow-list. Only the most recently issued
// refresh token per user is valid, and it expires with the TTL.
type TokenStore interface {
	Save(ctx context.Context, userID, token string, ttl time.Duration) error
	Get(ctx context.Context, userID string) (string, error)
	Delete(ctx context.Context, userID string) error
}

type redisTokenStore struct {
	client *redis.Client
}

func NewRedisTokenStore(client *redis.Client) TokenStore {
	return &redisTokenStore{client: client}
}

func (s *redisTokenStore) Save(ctx context.Context, userID, token string, ttl time.Duration) error {
	if err := s.client.Set(ctx, refreshTokenPrefix+userID, token, ttl).Err(); err != nil {
		return apperr.Internal("failed to store refresh token", err)
	}
	return nil
}

func (s *redisTokenStore) Get(ctx context.Context, userID string) (string, error) {
	val, err := s.client.Get(ctx, refreshTokenPrefix+userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperr.Auth("refresh token expired or revoked")
		}
		return "", apperr.Internal("failed to read refresh token", err)
	}
	return val, nil
}

func (s *redisTokenStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, refreshTokenPrefix+userID).Err(); err != nil {
		return apperr.Internal("failed to revoke refresh token", err)
	}
	return nil
}
