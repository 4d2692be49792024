package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"staffdir/internal/domain"
	"staffdir/internal/repository"
)

const keyPrefix = "refresh_token:"

// tokenRecord is the stored shape. The raw value lives in the key, not the
// record, so a GET by value is a single key lookup.
type tokenRecord struct {
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// RefreshTokenRepository keeps refresh tokens in redis with a TTL matching
// their expiry, so stale records disappear without a sweep.
type RefreshTokenRepository struct {
	client *redis.Client
}

func NewRefreshTokenRepository(client *redis.Client) repository.RefreshTokenRepository {
	return &RefreshTokenRepository{client: client}
}

func (r *RefreshTokenRepository) Init(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) Save(ctx context.Context, token *domain.RefreshToken) (int64, error) {
	token.CreatedAt = time.Now().UTC()

	ttl := time.Until(token.ExpiresAt)
	if ttl <= 0 {
		return 0, fmt.Errorf("refresh token already expired at save time")
	}

	data, err := json.Marshal(tokenRecord{
		UserID:    token.UserID,
		ExpiresAt: token.ExpiresAt,
		CreatedAt: token.CreatedAt,
	})
	if err != nil {
		return 0, fmt.Errorf("marshal refresh token: %w", err)
	}

	ok, err := r.client.SetNX(ctx, keyPrefix+token.Value, data, ttl).Result()
	if err != nil {
		return 0, fmt.Errorf("store refresh token: %w", err)
	}
	if !ok {
		return 0, fmt.Errorf("store refresh token: %w", repository.ErrAlreadyExists)
	}
	return 0, nil
}

func (r *RefreshTokenRepository) GetByValue(ctx context.Context, value string) (*domain.RefreshToken, error) {
	data, err := r.client.Get(ctx, keyPrefix+value).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("load refresh token: %w", err)
	}

	var rec tokenRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal refresh token: %w", err)
	}

	return &domain.RefreshToken{
		Value:     value,
		UserID:    rec.UserID,
		ExpiresAt: rec.ExpiresAt,
		CreatedAt: rec.CreatedAt,
	}, nil
}

func (r *RefreshTokenRepository) Delete(ctx context.Context, value string) error {
	if err := r.client.Del(ctx, keyPrefix+value).Err(); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

// DeleteExpired is a no-op: redis evicts expired keys through the per-key TTL.
func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}
