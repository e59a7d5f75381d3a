package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/iliyamo/storefront/internal/model"
	"github.com/iliyamo/storefront/internal/repository"
	"github.com/iliyamo/storefront/internal/utils"
)

// bcrypt ignores everything past 72 bytes, so longer passwords are refused.
const (
	minPasswordLen = 6
	maxPasswordLen = 72
)

// AuthService implements signup, login, logout and token refresh on top of
// the credential store and the token service.
type AuthService struct {
	users      UserStore
	tokens     *TokenService
	bcryptCost int
	log        Logger
}

func NewAuthService(users UserStore, tokens *TokenService, bcryptCost int, log Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, bcryptCost: bcryptCost, log: log}
}

// Session is an authenticated user with freshly issued tokens.
type Session struct {
	User   model.User
	Tokens TokenPair
}

// Signup registers a customer and logs them in.
func (s *AuthService) Signup(ctx context.Context, name, email, password string) (Session, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return Session{}, invalid("name, email and password are required")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return Session{}, invalid("invalid email address")
	}
	if len(password) < minPasswordLen {
		return Session{}, invalid("password must be at least %d characters", minPasswordLen)
	}
	if len(password) > maxPasswordLen {
		return Session{}, invalid("password must be at most %d bytes", maxPasswordLen)
	}

	u, err := s.users.Create(ctx, name, email, password, model.RoleCustomer, s.bcryptCost)
	if errors.Is(err, repository.ErrEmailExists) {
		return Session{}, ErrEmailExists
	}
	if err != nil {
		return Session{}, fmt.Errorf("create user: %w", err)
	}
	return s.startSession(ctx, u)
}

// Login checks credentials. Unknown email and wrong password are reported
// the same way.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return Session{}, invalid("email and password are required")
	}
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("load user: %w", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return Session{}, ErrInvalidCredentials
	}
	return s.startSession(ctx, u)
}

// Logout revokes the session behind refreshToken. It never fails: a missing
// or invalid token has nothing to revoke and cache errors are only logged.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) {
	userID, err := s.tokens.UserIDFromRefresh(refreshToken)
	if err != nil {
		return
	}
	if err := s.tokens.Revoke(ctx, userID); err != nil {
		s.log.Warnf("auth: logout for user %d: %v", userID, err)
	}
}

// Refresh mints a new access token from a refresh token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (utils.SignedToken, error) {
	return s.tokens.RotateAccessToken(ctx, refreshToken)
}

// Authenticate resolves an access token to its user.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (model.User, error) {
	userID, err := s.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		return model.User{}, err
	}
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return model.User{}, ErrUserGone
	}
	if err != nil {
		return model.User{}, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

func (s *AuthService) startSession(ctx context.Context, u model.User) (Session, error) {
	pair, err := s.tokens.IssueTokenPair(ctx, u.ID)
	if err != nil {
		return Session{}, err
	}
	return Session{User: u, Tokens: pair}, nil
}
