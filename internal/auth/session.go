package auth

import (
	"context"
	"crypto/subtle"
	"strconv"
	"time"

	"taskmanager/internal/cache"
)

const sessionTTL = time.Hour

// Store binds each user to the single token currently allowed to act for
// them. Binding a new token replaces the previous one.
type Store struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewStore returns a new session store.
func NewStore(c cache.Cache, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = sessionTTL
	}
	return &Store{cache: c, ttl: ttl}
}

// Bind makes token the live token for userID.
func (s *Store) Bind(ctx context.Context, userID int64, token string) error {
	return s.cache.Set(ctx, key(userID), token, s.ttl)
}

// Matches reports whether token is the live token for userID.
func (s *Store) Matches(ctx context.Context, userID int64, token string) (bool, error) {
	v, ok, err := s.cache.Get(ctx, key(userID))
	if err != nil || !ok {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(v), []byte(token)) == 1, nil
}

// Revoke drops the binding for userID.
func (s *Store) Revoke(ctx context.Context, userID int64) error {
	return s.cache.Delete(ctx, key(userID))
}

func key(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
