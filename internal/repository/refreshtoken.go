package repository

import (
	"context"

	"staffdir/internal/domain"
)

// RefreshTokenRepository defines the store contract the auth flows consume.
// Rotation is single-use: redeeming a token deletes its record before the
// replacement is saved.
type RefreshTokenRepository interface {
	Init(ctx context.Context) error
	Save(ctx context.Context, token *domain.RefreshToken) (int64, error)
	GetByValue(ctx context.Context, value string) (*domain.RefreshToken, error)
	Delete(ctx context.Context, value string) error
	DeleteExpired(ctx context.Context) (int64, error)
}
