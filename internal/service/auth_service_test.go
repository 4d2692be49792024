package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staffdir/internal/domain"
	"staffdir/internal/repository"
	"staffdir/internal/token"
)

type memUserRepo struct {
	mu     sync.Mutex
	nextID int64
	byName map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byName: make(map[string]*domain.User)}
}

func (r *memUserRepo) Init(ctx context.Context) error { return nil }

func (r *memUserRepo) Create(ctx context.Context, user *domain.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[user.Username]; ok {
		return 0, repository.ErrAlreadyExists
	}
	r.nextID++
	user.ID = r.nextID
	clone := *user
	r.byName[user.Username] = &clone
	return user.ID, nil
}

func (r *memUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byName[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.byName {
		if user.ID == id {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) delete(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byName, username)
}

type memTokenRepo struct {
	mu      sync.Mutex
	nextID  int64
	byValue map[string]*domain.RefreshToken
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{byValue: make(map[string]*domain.RefreshToken)}
}

func (r *memTokenRepo) Init(ctx context.Context) error { return nil }

func (r *memTokenRepo) Save(ctx context.Context, tok *domain.RefreshToken) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byValue[tok.Value]; ok {
		return 0, repository.ErrAlreadyExists
	}
	r.nextID++
	tok.ID = r.nextID
	clone := *tok
	r.byValue[tok.Value] = &clone
	return tok.ID, nil
}

func (r *memTokenRepo) GetByValue(ctx context.Context, value string) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tok, ok := r.byValue[value]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *tok
	return &clone, nil
}

func (r *memTokenRepo) Delete(ctx context.Context, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byValue, value)
	return nil
}

func (r *memTokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	now := time.Now()
	for value, tok := range r.byValue {
		if tok.Expired(now) {
			delete(r.byValue, value)
			n++
		}
	}
	return n, nil
}

func newTestAuth(t *testing.T) (AuthService, *memUserRepo, *memTokenRepo, *token.Codec) {
	t.Helper()
	codec, err := token.NewCodec("test-secret-test-secret-test-sec", 2*time.Hour)
	require.NoError(t, err)

	users := newMemUserRepo()
	tokens := newMemTokenRepo()
	auth := NewAuthService(NewUserService(users), tokens, codec, 4*time.Hour)
	return auth, users, tokens, codec
}

func TestRegisterThenAuthenticate(t *testing.T) {
	auth, _, _, codec := newTestAuth(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Empty(t, user.PasswordHash)

	pair, err := auth.Authenticate(ctx, "alice", "pw1")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	subject, err := codec.Subject(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	auth, _, _, _ := newTestAuth(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "alice", "pw1")
	require.NoError(t, err)

	_, err = auth.Register(ctx, "alice", "other")
	require.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	auth, _, _, _ := newTestAuth(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "alice", "pw1")
	require.NoError(t, err)

	_, wrongPassword := auth.Authenticate(ctx, "alice", "nope")
	_, unknownUser := auth.Authenticate(ctx, "nobody", "pw1")

	require.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	require.ErrorIs(t, unknownUser, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestRefreshRotatesToken(t *testing.T) {
	auth, _, tokens, codec := newTestAuth(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "alice", "pw1")
	require.NoError(t, err)
	pair, err := auth.Authenticate(ctx, "alice", "pw1")
	require.NoError(t, err)

	rotated, err := auth.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	subject, err := codec.Subject(rotated.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)

	// single-use: the redeemed value is gone from the store
	_, err = tokens.GetByValue(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, repository.ErrNotFound)

	_, err = auth.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefreshUnknownValue(t *testing.T) {
	auth, _, _, _ := newTestAuth(t)

	_, err := auth.Refresh(context.Background(), "never-issued")
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefreshExpiredValue(t *testing.T) {
	auth, _, tokens, _ := newTestAuth(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, "alice", "pw1")
	require.NoError(t, err)

	stale := &domain.RefreshToken{
		Value:     "stale-token",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	_, err = tokens.Save(ctx, stale)
	require.NoError(t, err)

	_, err = auth.Refresh(ctx, "stale-token")
	require.ErrorIs(t, err, ErrExpiredRefreshToken)
	require.NotErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefreshFailsWhenOwnerIsGone(t *testing.T) {
	auth, users, _, _ := newTestAuth(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "alice", "pw1")
	require.NoError(t, err)
	pair, err := auth.Authenticate(ctx, "alice", "pw1")
	require.NoError(t, err)

	users.delete("alice")

	_, err = auth.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}
