package utils // package utils holds token, password and money helpers shared by the services

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrTokenInvalid is returned by ParseToken for any token that fails the
// signature, algorithm, expiry or claim checks.
var ErrTokenInvalid = errors.New("invalid token")

// SignedToken is a serialized JWT together with its expiry.
type SignedToken struct {
	Token string
	Exp   time.Time
}

// Claims is the payload of both access and refresh tokens. The user id is
// the only application claim.
type Claims struct {
	UserID uint64 `json:"userId"`
	jwt.RegisteredClaims
}

// SignToken builds an HS256 JWT for userID valid for ttl. Access and refresh
// tokens share this format and differ only by secret and lifetime. Every
// call carries a fresh jti, so two tokens are never equal.
func SignToken(secret string, userID uint64, ttl time.Duration) (SignedToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return SignedToken{}, err
	}
	return SignedToken{Token: signed, Exp: exp}, nil
}

// ParseToken verifies raw against secret and returns the embedded user id.
func ParseToken(secret, raw string) (uint64, error) {
	if raw == "" {
		return 0, ErrTokenInvalid
	}
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return 0, errors.Join(ErrTokenInvalid, err)
	}
	if claims.UserID == 0 {
		return 0, ErrTokenInvalid
	}
	return claims.UserID, nil
}
