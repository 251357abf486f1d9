package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sumire/strava-bridge/internal/domain"
)

// UserRepository handles user data access operations.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID retrieves a user by their internal ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user,
		`SELECT id, display_name, avatar_url, created_at, updated_at
		 FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find user by id %s: %w", id, err)
	}
	return &user, nil
}

// UpdateUser overwrites the profile fields of an existing user.
// It returns domain.ErrNotFound when no user has the given ID.
func (r *UserRepository) UpdateUser(ctx context.Context, id string, profile domain.UserProfile) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET display_name = $2, avatar_url = $3, updated_at = NOW()
		 WHERE id = $1`,
		id, profile.DisplayName, nullString(profile.AvatarURL),
	)
	if err != nil {
		return fmt.Errorf("update user %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user %s: rows affected: %w", id, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateUser inserts a user with the given ID. A concurrent create for the
// same ID leaves a single row carrying the latest profile.
func (r *UserRepository) CreateUser(ctx context.Context, id string, profile domain.UserProfile) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, display_name, avatar_url)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (id)
		 DO UPDATE SET display_name = EXCLUDED.display_name,
		               avatar_url = EXCLUDED.avatar_url,
		               updated_at = NOW()`,
		id, profile.DisplayName, nullString(profile.AvatarURL),
	)
	if err != nil {
		return fmt.Errorf("create user %s: %w", id, err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
