package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"go-watchlist/internal/database"
	"go-watchlist/internal/model"
)

const userColumns = `id, name, email, password_hash, avatar, created_at, updated_at`

type UserRepository struct {
	db database.DBTX
}

func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Avatar, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create inserts u and returns the stored row. A duplicate email surfaces as
// model.ErrUserAlreadyExists even when two registrations race.
func (r *UserRepository) Create(ctx context.Context, u model.User) (model.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}

	created, err := scanUser(r.db.QueryRow(ctx,
		`INSERT INTO users (id, name, email, password_hash, avatar)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+userColumns,
		u.ID, u.Name, normalizeEmail(u.Email), u.PasswordHash, u.Avatar))
	if database.IsUniqueViolation(err) {
		return model.User{}, model.ErrUserAlreadyExists
	}
	if err != nil {
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (model.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = $1`, normalizeEmail(email)))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

// SetResetToken overwrites any pending reset token for the user.
func (r *UserRepository) SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users
		 SET reset_token_hash = $2, reset_token_expires_at = $3, updated_at = now()
		 WHERE id = $1`,
		userID, tokenHash, expiresAt.UTC())
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// ConsumeResetToken swaps the password and clears the reset fields in one
// statement, so a token matches at most once.
func (r *UserRepository) ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (string, error) {
	var userID string
	err := r.db.QueryRow(ctx,
		`UPDATE users
		 SET password_hash = $2,
		     reset_token_hash = NULL,
		     reset_token_expires_at = NULL,
		     updated_at = $3
		 WHERE reset_token_hash = $1 AND reset_token_expires_at > $3
		 RETURNING id`,
		tokenHash, passwordHash, now.UTC()).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", model.ErrInvalidOrExpiredToken
	}
	if err != nil {
		return "", fmt.Errorf("consume reset token: %w", err)
	}
	return userID, nil
}

func (r *UserRepository) UpdateAvatar(ctx context.Context, userID, avatar string) (model.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`UPDATE users SET avatar = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING `+userColumns,
		userID, avatar))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("update avatar: %w", err)
	}
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
