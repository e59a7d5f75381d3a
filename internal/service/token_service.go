package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/storefront/internal/cache"
	"github.com/iliyamo/storefront/internal/utils"
)

// TokenConfig configures token lifetimes, secrets and the cache policy.
//
// CacheOptional selects the cache-optional mode: cache write and delete
// failures are logged and ignored, and rotation with an unreachable cache
// trusts the refresh token signature alone. With CacheOptional false those
// failures are returned to the caller.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	CacheOptional bool
}

// TokenPair is what login and signup hand to the client.
type TokenPair struct {
	Access  utils.SignedToken
	Refresh utils.SignedToken
}

// TokenService issues, rotates and revokes JWTs. At most one refresh token
// per user is live in the cache; issuing a new pair replaces the old one.
type TokenService struct {
	cfg   TokenConfig
	cache Cache
	log   Logger
}

func NewTokenService(cfg TokenConfig, c Cache, log Logger) *TokenService {
	return &TokenService{cfg: cfg, cache: c, log: log}
}

func (s *TokenService) AccessTTL() time.Duration  { return s.cfg.AccessTTL }
func (s *TokenService) RefreshTTL() time.Duration { return s.cfg.RefreshTTL }

// IssueTokenPair signs an access and a refresh token for userID and stores
// the refresh token under refresh_token:<id> with the refresh TTL.
func (s *TokenService) IssueTokenPair(ctx context.Context, userID uint64) (TokenPair, error) {
	access, err := utils.SignToken(s.cfg.AccessSecret, userID, s.cfg.AccessTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := utils.SignToken(s.cfg.RefreshSecret, userID, s.cfg.RefreshTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	if err := s.cache.Set(ctx, cache.RefreshKey(userID), refresh.Token, s.cfg.RefreshTTL); err != nil {
		if !s.cfg.CacheOptional {
			return TokenPair{}, fmt.Errorf("store refresh token: %w", err)
		}
		s.log.Warnf("token: refresh token for user %d not cached, revocation disabled for this session: %v", userID, err)
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// RotateAccessToken returns a new access token for a valid refresh token.
// When the cache answers, the presented token must equal the stored one.
// The refresh token itself is not rotated.
func (s *TokenService) RotateAccessToken(ctx context.Context, refreshToken string) (utils.SignedToken, error) {
	if refreshToken == "" {
		return utils.SignedToken{}, ErrUnauthenticated
	}
	userID, err := utils.ParseToken(s.cfg.RefreshSecret, refreshToken)
	if err != nil {
		return utils.SignedToken{}, ErrInvalidToken
	}

	stored, found, err := s.cache.Get(ctx, cache.RefreshKey(userID))
	switch {
	case err != nil:
		if !s.cfg.CacheOptional {
			return utils.SignedToken{}, fmt.Errorf("load refresh token: %w", err)
		}
		s.log.Warnf("token: cache unreachable, accepting refresh token for user %d on signature alone: %v", userID, err)
	case !found || subtle.ConstantTimeCompare([]byte(stored), []byte(refreshToken)) != 1:
		return utils.SignedToken{}, ErrInvalidToken
	}

	access, err := utils.SignToken(s.cfg.AccessSecret, userID, s.cfg.AccessTTL)
	if err != nil {
		return utils.SignedToken{}, fmt.Errorf("sign access token: %w", err)
	}
	return access, nil
}

// Revoke drops the user's refresh token. Revoking twice is fine.
func (s *TokenService) Revoke(ctx context.Context, userID uint64) error {
	if err := s.cache.Del(ctx, cache.RefreshKey(userID)); err != nil {
		if !s.cfg.CacheOptional {
			return fmt.Errorf("revoke refresh token: %w", err)
		}
		s.log.Warnf("token: refresh token for user %d not revoked: %v", userID, err)
	}
	return nil
}

// VerifyAccessToken returns the user id carried by a valid access token.
func (s *TokenService) VerifyAccessToken(raw string) (uint64, error) {
	return verify(s.cfg.AccessSecret, raw)
}

// UserIDFromRefresh returns the user id carried by a valid refresh token.
func (s *TokenService) UserIDFromRefresh(raw string) (uint64, error) {
	return verify(s.cfg.RefreshSecret, raw)
}

func verify(secret, raw string) (uint64, error) {
	if raw == "" {
		return 0, ErrUnauthenticated
	}
	id, err := utils.ParseToken(secret, raw)
	if errors.Is(err, utils.ErrTokenInvalid) {
		return 0, ErrInvalidToken
	}
	return id, err
}
