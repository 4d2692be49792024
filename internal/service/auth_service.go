package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"staffdir/internal/domain"
	"staffdir/internal/repository"
	"staffdir/internal/token"
)

var (
	// ErrInvalidRefreshToken is returned when a presented refresh token is unknown.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	// ErrExpiredRefreshToken is returned when a presented refresh token is past its expiry.
	ErrExpiredRefreshToken = errors.New("refresh token expired")
)

// AuthService composes credential verification, access-token issuance and
// refresh-token rotation.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.TokenPair, error)
	Refresh(ctx context.Context, refreshValue string) (*domain.TokenPair, error)
}

type authService struct {
	users      UserService
	tokens     repository.RefreshTokenRepository
	codec      *token.Codec
	refreshTTL time.Duration
}

func NewAuthService(users UserService, tokens repository.RefreshTokenRepository, codec *token.Codec, refreshTTL time.Duration) AuthService {
	return &authService{
		users:      users,
		tokens:     tokens,
		codec:      codec,
		refreshTTL: refreshTTL,
	}
}

func (s *authService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	return s.users.Register(ctx, username, password)
}

func (s *authService) Authenticate(ctx context.Context, username, password string) (*domain.TokenPair, error) {
	user, err := s.users.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return s.issuePair(ctx, user)
}

// Refresh redeems a refresh token for a new token pair. Rotation is
// single-use: the redeemed record is deleted before the replacement is saved,
// so replaying the old value fails with ErrInvalidRefreshToken.
func (s *authService) Refresh(ctx context.Context, refreshValue string) (*domain.TokenPair, error) {
	stored, err := s.tokens.GetByValue(ctx, refreshValue)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	if stored.Expired(time.Now()) {
		return nil, ErrExpiredRefreshToken
	}

	user, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("refresh token owner %d no longer exists: %w", stored.UserID, ErrInvalidRefreshToken)
		}
		return nil, err
	}

	if err := s.tokens.Delete(ctx, stored.Value); err != nil {
		return nil, err
	}

	return s.issuePair(ctx, user)
}

func (s *authService) issuePair(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	access, err := s.codec.Issue(user)
	if err != nil {
		return nil, err
	}

	refresh := &domain.RefreshToken{
		Value:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: time.Now().UTC().Add(s.refreshTTL),
	}
	if _, err := s.tokens.Save(ctx, refresh); err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh.Value,
	}, nil
}
