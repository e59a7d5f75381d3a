package config

// This file defines the Redis client used as the session cache, the
// featured-products snapshot store and the rate limiter backend. If the
// server cannot be reached at startup, NewRedisClient returns nil and every
// consumer degrades: the cache handle reports itself unavailable and the
// rate limiter becomes a pass-through.

import (
	"context"
	"crypto/tls"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds connection settings. URL (plus Token, the password a
// managed Redis hands out next to its URL) takes precedence over Addr.
type RedisConfig struct {
	URL      string
	Token    string
	Addr     string
	Password string
	DB       int
	TLS      bool
}

// LoadRedisConfig reads the Redis variables:
//
//	REDIS_URL, REDIS_TOKEN – managed cache URL (redis:// or rediss://) and token
//	REDIS_HOST/REDIS_PORT  – host and port (take precedence over REDIS_ADDR)
//	REDIS_ADDR             – host:port shorthand, default localhost:6379
//	REDIS_PASSWORD, REDIS_DB, REDIS_TLS
func LoadRedisConfig() RedisConfig {
	addr := envStr("REDIS_ADDR", "localhost:6379")
	if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
		addr = host + ":" + port
	}
	tlsEnv := os.Getenv("REDIS_TLS")
	return RedisConfig{
		URL:      os.Getenv("REDIS_URL"),
		Token:    os.Getenv("REDIS_TOKEN"),
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       envInt("REDIS_DB", 0),
		TLS:      strings.EqualFold(tlsEnv, "true") || tlsEnv == "1",
	}
}

// Options converts the configuration into go-redis options.
func (rc RedisConfig) Options() (*redis.Options, error) {
	if rc.URL != "" {
		opts, err := redis.ParseURL(rc.URL)
		if err != nil {
			return nil, err
		}
		if rc.Token != "" {
			opts.Password = rc.Token
		}
		return opts, nil
	}
	opts := &redis.Options{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
	}
	if rc.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opts, nil
}

// NewRedisClient instantiates a client and pings it with a short timeout.
// The returned client is nil when the options are invalid or the server is
// unreachable.
func NewRedisClient(rc RedisConfig) *redis.Client {
	opts, err := rc.Options()
	if err != nil {
		return nil
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}

// String renders the target for startup logs without leaking credentials.
func (rc RedisConfig) String() string {
	if rc.URL != "" {
		if opts, err := redis.ParseURL(rc.URL); err == nil {
			return opts.Addr + "/" + strconv.Itoa(opts.DB)
		}
		return "invalid REDIS_URL"
	}
	return rc.Addr + "/" + strconv.Itoa(rc.DB)
}
