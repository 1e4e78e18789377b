package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"taskmanager/internal/auth"
	dom "taskmanager/internal/domain"
	"taskmanager/internal/repo"

	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration, login and the session token lifecycle.
type AuthService struct {
	users    repo.UserRepo
	tokens   *auth.Tokens
	sessions *auth.Store
	cost     int
	log      *slog.Logger
}

// NewAuthService returns a new AuthService. cost is the bcrypt cost for new hashes.
func NewAuthService(users repo.UserRepo, tokens *auth.Tokens, sessions *auth.Store, cost int, log *slog.Logger) *AuthService {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &AuthService{users: users, tokens: tokens, sessions: sessions, cost: cost, log: log}
}

// Register creates a new user with a hashed password.
func (s *AuthService) Register(ctx context.Context, email, password string) (dom.User, error) {
	email = dom.NormalizeEmail(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return dom.User{}, dom.Validation("email and password are required")
	}
	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		s.log.Warn("registration rejected, user exists", "email", email)
		return dom.User{}, dom.ErrEmailTaken
	case !errors.Is(err, dom.ErrUserNotFound):
		return dom.User{}, dom.Internal("look up user", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return dom.User{}, dom.Internal("hash password", err)
	}
	u, err := s.users.Create(ctx, email, string(hash))
	if err != nil {
		if errors.Is(err, dom.ErrEmailTaken) {
			return dom.User{}, err
		}
		return dom.User{}, dom.Internal("create user", err)
	}
	s.log.Info("user registered", "user_id", u.ID)
	return u, nil
}

// Login verifies credentials and issues a token that replaces any earlier
// token of the same user. Unknown email and wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	email = dom.NormalizeEmail(email)
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, dom.ErrUserNotFound) {
			s.log.Warn("login failed", "email", email)
			return "", time.Time{}, dom.ErrInvalidCredentials
		}
		return "", time.Time{}, dom.Internal("look up user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.log.Warn("login failed", "email", email)
		return "", time.Time{}, dom.ErrInvalidCredentials
	}

	token, exp, err := s.tokens.Issue(u.ID)
	if err != nil {
		return "", time.Time{}, err
	}
	if err := s.sessions.Bind(ctx, u.ID, token); err != nil {
		return "", time.Time{}, dom.Internal("store session", err)
	}
	s.rehash(ctx, u, password)
	s.log.Info("user logged in", "user_id", u.ID)
	return token, exp, nil
}

// rehash upgrades a stored hash whose cost differs from the configured one.
// Failures are logged; the login already succeeded.
func (s *AuthService) rehash(ctx context.Context, u dom.User, password string) {
	cost, err := bcrypt.Cost([]byte(u.PasswordHash))
	if err != nil || cost == s.cost {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		s.log.Error("rehash password", "user_id", u.ID, "err", err)
		return
	}
	u.PasswordHash = string(hash)
	if _, err := s.users.Save(ctx, u); err != nil {
		s.log.Error("save rehashed password", "user_id", u.ID, "err", err)
	}
}

// Logout revokes the session the token belongs to.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	userID, err := s.ValidateToken(ctx, token)
	if err != nil {
		return err
	}
	if err := s.sessions.Revoke(ctx, userID); err != nil {
		return dom.Internal("revoke session", err)
	}
	s.log.Info("user logged out", "user_id", userID)
	return nil
}

// ValidateToken requires both a valid signature and that the token is the
// user's live session. It implements auth.Validator.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (int64, error) {
	userID, err := s.tokens.Parse(token)
	if err != nil {
		if errors.Is(err, dom.ErrMissingSecret) {
			return 0, err
		}
		s.log.Debug("token rejected", "err", err)
		return 0, dom.ErrInvalidToken
	}
	ok, err := s.sessions.Matches(ctx, userID, token)
	if err != nil {
		return 0, dom.Internal("session lookup", err)
	}
	if !ok {
		return 0, dom.ErrInvalidToken
	}
	return userID, nil
}
