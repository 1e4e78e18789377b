package auth

import (
	"fmt"
	"time"

	dom "taskmanager/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the signed token payload.
type Claims struct {
	UserID int64 `json:"userId"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 session tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens returns a token signer. An empty secret is accepted here and
// reported as dom.ErrMissingSecret on first use.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is the lifetime of every issued token.
func (t *Tokens) TTL() time.Duration { return t.ttl }

// Issue signs a token for userID. Each token carries a random jti so two
// tokens issued within the same second still differ.
func (t *Tokens) Issue(userID int64) (string, time.Time, error) {
	if len(t.secret) == 0 {
		return "", time.Time{}, dom.ErrMissingSecret
	}
	now := t.now()
	exp := now.Add(t.ttl)
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return s, exp, nil
}

// Parse verifies signature, structure and expiry and returns the user id.
func (t *Tokens) Parse(token string) (int64, error) {
	if len(t.secret) == 0 {
		return 0, dom.ErrMissingSecret
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !parsed.Valid || claims.UserID <= 0 {
		return 0, dom.ErrInvalidToken
	}
	return claims.UserID, nil
}
