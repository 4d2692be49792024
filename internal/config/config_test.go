package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr)
	assert.Equal(t, "data/staffdir.db", cfg.Database.Path)
	assert.Equal(t, 120, cfg.Auth.AccessTTLMinutes)
	assert.Equal(t, 240, cfg.Auth.RefreshTTLMinutes)
	assert.Equal(t, "sqlite", cfg.Auth.RefreshStore)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STAFFDIR_SERVER_ADDR", "127.0.0.1:9090")
	t.Setenv("STAFFDIR_AUTH_JWTSECRET", "s3cret")
	t.Setenv("STAFFDIR_AUTH_ACCESSTTLMINUTES", "30")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 30, cfg.Auth.AccessTTLMinutes)
}

func TestLoadRejectsUnknownRefreshStore(t *testing.T) {
	t.Setenv("STAFFDIR_AUTH_REFRESHSTORE", "memcached")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRequiresRedisAddrForRedisStore(t *testing.T) {
	t.Setenv("STAFFDIR_AUTH_REFRESHSTORE", "redis")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("STAFFDIR_REDIS_ADDR", "localhost:6379")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}
