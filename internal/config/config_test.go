package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DB_USER", "shop")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_NAME", "storefront")
	t.Setenv("ACCESS_TOKEN_SECRET", "access-secret")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh-secret")
	t.Setenv("CLIENT_URL", "http://localhost:5173/")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "http://localhost:5173", cfg.ClientURL)
	assert.False(t, cfg.CookieSecure)
	assert.True(t, cfg.Cache.Optional)
	assert.Equal(t, "shop@tcp(localhost:3306)/storefront?charset=utf8mb4&parseTime=true&loc=UTC", cfg.DSN())
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_PASS", "pw")
	t.Setenv("ACCESS_TOKEN_TTL_MIN", "5")
	t.Setenv("REFRESH_TOKEN_TTL_DAYS", "1")
	t.Setenv("CACHE_OPTIONAL", "false")
	t.Setenv("COOKIE_SECURE", "yes")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 24*time.Hour, cfg.RefreshTTL)
	assert.False(t, cfg.Cache.Optional)
	assert.True(t, cfg.CookieSecure)
	assert.Contains(t, cfg.DSN(), "shop:pw@tcp(")
}

func TestLoadReportsMissingVars(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_HOST", "")
	t.Setenv("CLIENT_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_HOST")
	assert.Contains(t, err.Error(), "CLIENT_URL")
}

func TestLoadRejectsSharedSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("REFRESH_TOKEN_SECRET", "access-secret")

	_, err := Load()
	assert.Error(t, err)
}

func TestRedisOptionsPreferURL(t *testing.T) {
	rc := RedisConfig{URL: "rediss://default@cache.example.com:6380/2", Token: "tok", Addr: "ignored:1"}

	opts, err := rc.Options()
	require.NoError(t, err)
	assert.Equal(t, "cache.example.com:6380", opts.Addr)
	assert.Equal(t, "tok", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.NotNil(t, opts.TLSConfig)
}

func TestRateLimitNormalized(t *testing.T) {
	rl := RateLimitConfig{Capacity: 0, RefillTokens: 0, RefillInterval: 0, TTL: 0}.normalized()
	assert.Equal(t, 1, rl.Capacity)
	assert.Equal(t, 1, rl.RefillTokens)
	assert.Equal(t, time.Second, rl.RefillInterval)
	assert.Equal(t, 5*time.Second, rl.TTL)
}

func TestBrokerURLFallsBackToAMQPURL(t *testing.T) {
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("AMQP_URL", "amqp://u:p@broker:5672/")
	assert.Equal(t, "amqp://u:p@broker:5672/", BrokerURL())

	t.Setenv("RABBITMQ_URL", "amqp://primary:5672/")
	assert.Equal(t, "amqp://primary:5672/", BrokerURL())
}
