package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, 20, cfg.RateLimitAnon)
	assert.Equal(t, 100, cfg.RateLimitUser)
	assert.Same(t, cfg, AppConfig)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_TTL", "15m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("RATE_LIMIT_USER", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.JWTTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 7, cfg.RateLimitUser)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("RATE_LIMIT_ANON", "lots")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}
