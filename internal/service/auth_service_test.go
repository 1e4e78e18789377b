package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskmanager/internal/auth"
	"taskmanager/internal/cache"
	dom "taskmanager/internal/domain"
	"taskmanager/internal/logging"
	"taskmanager/internal/repo"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

type authFixture struct {
	svc   *AuthService
	users *repo.MemUserRepo
	mr    *miniredis.Miniredis
}

func newAuthFixture(t *testing.T, secret string) authFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	users := repo.NewMemUserRepo(nil)
	sessions := auth.NewStore(cache.NewRedisCache(rdb, "session:"), time.Hour)
	svc := NewAuthService(users, auth.NewTokens(secret, time.Hour), sessions, bcrypt.MinCost, logging.Discard())
	return authFixture{svc: svc, users: users, mr: mr}
}

func TestAuth_RegisterLoginValidate(t *testing.T) {
	f := newAuthFixture(t, "s3cret")
	ctx := context.Background()

	u, err := f.svc.Register(ctx, "  Ada@Example.com ", "pw")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Email != "ada@example.com" {
		t.Fatalf("email not normalized: %q", u.Email)
	}
	token, exp, err := f.svc.Login(ctx, "ada@example.com", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatalf("expiry in the past: %v", exp)
	}
	id, err := f.svc.ValidateToken(ctx, token)
	if err != nil || id != u.ID {
		t.Fatalf("ValidateToken: id=%d err=%v", id, err)
	}
	if ttl := f.mr.TTL("session:1"); ttl != time.Hour {
		t.Fatalf("session ttl: got %v", ttl)
	}
}

func TestAuth_RegisterDuplicate(t *testing.T) {
	f := newAuthFixture(t, "s3cret")
	ctx := context.Background()
	if _, err := f.svc.Register(ctx, "a@b.c", "pw"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, err := f.svc.Register(ctx, "A@B.C", "other")
	if !errors.Is(err, dom.ErrEmailTaken) || dom.KindOf(err) != dom.KindConflict {
		t.Fatalf("duplicate: got %v", err)
	}
}

func TestAuth_LoginFailuresAreIndistinguishable(t *testing.T) {
	f := newAuthFixture(t, "s3cret")
	ctx := context.Background()
	_, _ = f.svc.Register(ctx, "a@b.c", "pw")

	_, _, unknown := f.svc.Login(ctx, "nobody@b.c", "pw")
	_, _, wrong := f.svc.Login(ctx, "a@b.c", "nope")
	if unknown != dom.ErrInvalidCredentials || wrong != dom.ErrInvalidCredentials {
		t.Fatalf("unknown=%v wrong=%v", unknown, wrong)
	}
}

func TestAuth_NewerLoginInvalidatesOlderToken(t *testing.T) {
	f := newAuthFixture(t, "s3cret")
	ctx := context.Background()
	_, _ = f.svc.Register(ctx, "a@b.c", "pw")

	first, _, _ := f.svc.Login(ctx, "a@b.c", "pw")
	second, _, err := f.svc.Login(ctx, "a@b.c", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if first == second {
		t.Fatalf("tokens issued back to back must differ")
	}
	if _, err := f.svc.ValidateToken(ctx, first); !errors.Is(err, dom.ErrInvalidToken) {
		t.Fatalf("old token: got %v", err)
	}
	if _, err := f.svc.ValidateToken(ctx, second); err != nil {
		t.Fatalf("new token: %v", err)
	}
}

func TestAuth_LogoutRevokes(t *testing.T) {
	f := newAuthFixture(t, "s3cret")
	ctx := context.Background()
	_, _ = f.svc.Register(ctx, "a@b.c", "pw")
	token, _, _ := f.svc.Login(ctx, "a@b.c", "pw")

	if err := f.svc.Logout(ctx, token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := f.svc.ValidateToken(ctx, token); !errors.Is(err, dom.ErrInvalidToken) {
		t.Fatalf("after logout: got %v", err)
	}
	if err := f.svc.Logout(ctx, token); !errors.Is(err, dom.ErrInvalidToken) {
		t.Fatalf("second logout: got %v", err)
	}
}

func TestAuth_SessionExpiresWithTTL(t *testing.T) {
	f := newAuthFixture(t, "s3cret")
	ctx := context.Background()
	_, _ = f.svc.Register(ctx, "a@b.c", "pw")
	token, _, _ := f.svc.Login(ctx, "a@b.c", "pw")

	f.mr.FastForward(time.Hour + time.Second)
	if _, err := f.svc.ValidateToken(ctx, token); !errors.Is(err, dom.ErrInvalidToken) {
		t.Fatalf("expired session: got %v", err)
	}
}

func TestAuth_GarbageToken(t *testing.T) {
	f := newAuthFixture(t, "s3cret")
	if _, err := f.svc.ValidateToken(context.Background(), "not.a.jwt"); !errors.Is(err, dom.ErrInvalidToken) {
		t.Fatalf("got %v", err)
	}
}

func TestAuth_MissingSecretIsInternal(t *testing.T) {
	f := newAuthFixture(t, "")
	ctx := context.Background()
	_, _ = f.svc.Register(ctx, "a@b.c", "pw")
	_, _, err := f.svc.Login(ctx, "a@b.c", "pw")
	if !errors.Is(err, dom.ErrMissingSecret) || dom.KindOf(err) != dom.KindInternal {
		t.Fatalf("got %v", err)
	}
}

func TestAuth_CacheOutageFailsClosed(t *testing.T) {
	f := newAuthFixture(t, "s3cret")
	ctx := context.Background()
	_, _ = f.svc.Register(ctx, "a@b.c", "pw")
	token, _, _ := f.svc.Login(ctx, "a@b.c", "pw")

	f.mr.Close()
	id, err := f.svc.ValidateToken(ctx, token)
	if err == nil || id != 0 || dom.KindOf(err) != dom.KindInternal {
		t.Fatalf("id=%d err=%v", id, err)
	}
}

func TestAuth_LoginRehashesOnCostChange(t *testing.T) {
	f := newAuthFixture(t, "s3cret")
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost+1)
	u, _ := f.users.Create(ctx, "a@b.c", string(hash))

	if _, _, err := f.svc.Login(ctx, "a@b.c", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	stored, _ := f.users.FindByID(ctx, u.ID)
	if cost, _ := bcrypt.Cost([]byte(stored.PasswordHash)); cost != bcrypt.MinCost {
		t.Fatalf("stored cost: got %d", cost)
	}
	if _, _, err := f.svc.Login(ctx, "a@b.c", "pw"); err != nil {
		t.Fatalf("Login after rehash: %v", err)
	}
}
