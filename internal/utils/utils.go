package utils

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// ParseDurationEnv accepts "10s", "5m" and friends, or a bare number of seconds.
// Surrounding quotes left over from .env files are ignored.
func ParseDurationEnv(s string) (time.Duration, error) {
	s = strings.Trim(strings.TrimSpace(s), `"'`)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("duration must be like 10s, 5m or a number of seconds: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}
	return d, nil
}

// RedisTarget is what a redis:// or rediss:// URL resolves to.
type RedisTarget struct {
	Addr     string
	Username string
	Password string
	DB       int
	TLS      bool
}

func ParseRedisURL(s string) (RedisTarget, error) {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return RedisTarget{}, err
	}
	var t RedisTarget
	switch u.Scheme {
	case "redis":
	case "rediss":
		t.TLS = true
	default:
		return RedisTarget{}, fmt.Errorf("scheme must be redis or rediss, got %q", u.Scheme)
	}
	if t.Addr = u.Host; t.Addr == "" {
		return RedisTarget{}, fmt.Errorf("missing host in Redis URL")
	}
	if u.Port() == "" {
		t.Addr += ":6379"
	}
	if u.User != nil {
		t.Username = u.User.Username()
		t.Password, _ = u.User.Password()
	}
	if db := strings.TrimPrefix(u.Path, "/"); db != "" {
		if t.DB, err = strconv.Atoi(db); err != nil || t.DB < 0 {
			return RedisTarget{}, fmt.Errorf("invalid db index %q", u.Path)
		}
	}
	return t, nil
}

// PostgreSQL error codes the repositories translate.
const (
	PGUniqueViolation     = "23505"
	PGForeignKeyViolation = "23503"
	PGCheckViolation      = "23514"
)

// PGErrorCode returns the SQLSTATE carried by err, or "" when err is not a server error.
func PGErrorCode(err error) string {
	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		return pge.Code
	}
	return ""
}
