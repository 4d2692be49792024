package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staffdir/internal/domain"
	"staffdir/internal/repository"
	"staffdir/internal/service"
	"staffdir/internal/token"
)

type stubUserService struct {
	users map[string]*domain.User
}

func (s *stubUserService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	return nil, nil
}

func (s *stubUserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	return nil, service.ErrInvalidCredentials
}

func (s *stubUserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, ok := s.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func (s *stubUserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return nil, repository.ErrNotFound
}

func newFilterRig(t *testing.T, pre gin.HandlerFunc) (*gin.Engine, *token.Codec, *string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	codec, err := token.NewCodec("filter-secret-filter-secret-1234", time.Hour)
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	users := &stubUserService{users: map[string]*domain.User{
		"alice": {ID: 1, Username: "alice"},
	}}

	var seen string
	router := gin.New()
	if pre != nil {
		router.Use(pre)
	}
	router.Use(authenticateRequests(users, codec, logger))
	router.GET("/whoami", func(c *gin.Context) {
		if user, ok := PrincipalFromContext(c.Request.Context()); ok {
			seen = user.Username
			c.JSON(http.StatusOK, gin.H{"username": user.Username})
			return
		}
		seen = ""
		c.JSON(http.StatusOK, gin.H{"username": nil})
	})
	return router, codec, &seen
}

func get(router *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestFilterPopulatesPrincipal(t *testing.T) {
	router, codec, seen := newFilterRig(t, nil)

	signed, err := codec.Issue(&domain.User{Username: "alice"})
	require.NoError(t, err)

	rec := get(router, "Bearer "+signed)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", *seen)
}

func TestFilterPassesThroughUnauthenticated(t *testing.T) {
	router, codec, seen := newFilterRig(t, nil)

	unknownSubject, err := codec.Issue(&domain.User{Username: "ghost"})
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not bearer shaped", "Basic abc123"},
		{"short header", "B"},
		{"garbage token", "Bearer garbage"},
		{"unknown subject", "Bearer " + unknownSubject},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := get(router, tc.header)
			// the filter never aborts; it only leaves the request unauthenticated
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Empty(t, *seen)
		})
	}
}

func TestFilterDoesNotOverwritePrincipal(t *testing.T) {
	pre := func(c *gin.Context) {
		existing := &domain.User{ID: 2, Username: "bob"}
		c.Request = c.Request.WithContext(ContextWithPrincipal(c.Request.Context(), existing))
		c.Next()
	}
	router, codec, seen := newFilterRig(t, pre)

	signed, err := codec.Issue(&domain.User{Username: "alice"})
	require.NoError(t, err)

	rec := get(router, "Bearer "+signed)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bob", *seen)
}

func TestPrincipalContextHelpers(t *testing.T) {
	ctx := context.Background()

	_, ok := PrincipalFromContext(ctx)
	assert.False(t, ok)

	user := &domain.User{ID: 1, Username: "alice"}
	ctx = ContextWithPrincipal(ctx, user)
	found, ok := PrincipalFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "alice", found.Username)

	// nil user leaves the context untouched
	ctx = ContextWithPrincipal(context.Background(), nil)
	_, ok = PrincipalFromContext(ctx)
	assert.False(t, ok)
}
