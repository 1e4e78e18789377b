package repo

import (
	"context"
	"errors"

	dom "taskmanager/internal/domain"
	"taskmanager/internal/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepo provides user persistence.
type UserRepo interface {
	FindByID(ctx context.Context, id int64) (dom.User, error)
	FindByEmail(ctx context.Context, email string) (dom.User, error)
	Create(ctx context.Context, email, passwordHash string) (dom.User, error)
	Save(ctx context.Context, u dom.User) (dom.User, error)
}

// PGUserRepo implements UserRepo with Postgres.
type PGUserRepo struct {
	db *pgxpool.Pool
}

// NewPGUserRepo returns a new PGUserRepo.
func NewPGUserRepo(db *pgxpool.Pool) *PGUserRepo {
	return &PGUserRepo{db: db}
}

const userColumns = `id, email, password_hash, created_at, updated_at`

func (r *PGUserRepo) FindByID(ctx context.Context, id int64) (dom.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// FindByEmail returns the user by email.
func (r *PGUserRepo) FindByEmail(ctx context.Context, email string) (dom.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// Create inserts a new user and returns it.
func (r *PGUserRepo) Create(ctx context.Context, email, passwordHash string) (dom.User, error) {
	query := `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING ` + userColumns
	u, err := scanUser(r.db.QueryRow(ctx, query, email, passwordHash))
	if utils.PGErrorCode(err) == utils.PGUniqueViolation {
		return dom.User{}, dom.ErrEmailTaken
	}
	return u, err
}

// Save persists the mutable fields of u (the password hash).
func (r *PGUserRepo) Save(ctx context.Context, u dom.User) (dom.User, error) {
	query := `
		UPDATE users SET password_hash = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	out, err := scanUser(r.db.QueryRow(ctx, query, u.ID, u.PasswordHash))
	if errors.Is(err, pgx.ErrNoRows) {
		return dom.User{}, dom.ErrUserNotFound
	}
	return out, err
}

func (r *PGUserRepo) findOne(ctx context.Context, query string, arg any) (dom.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return dom.User{}, dom.ErrUserNotFound
	}
	return u, err
}

func scanUser(row pgx.Row) (dom.User, error) {
	var u dom.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
