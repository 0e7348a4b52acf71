package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/readlog/internal/domain"
)

// UsersRepository keeps a local copy of identity provider accounts so that
// reviews, goals, and follows can reference them.
type UsersRepository struct {
	pool *pgxpool.Pool
}

// Upsert records the user, refreshing the display name when it is non-empty.
func (r *UsersRepository) Upsert(ctx context.Context, id, displayName string) (domain.User, error) {
	const query = `
        INSERT INTO users (id, display_name)
        VALUES ($1, $2)
        ON CONFLICT (id)
        DO UPDATE SET display_name = COALESCE(NULLIF(EXCLUDED.display_name, ''), users.display_name),
                      updated_at = now()
        RETURNING id, display_name, created_at, updated_at
    `
	var user domain.User
	err := r.pool.QueryRow(ctx, query, id, displayName).Scan(&user.ID, &user.DisplayName, &user.CreatedAt, &user.UpdatedAt)
	return user, err
}

// Get fetches a user by id.
func (r *UsersRepository) Get(ctx context.Context, id string) (domain.User, error) {
	const query = `SELECT id, display_name, created_at, updated_at FROM users WHERE id = $1`
	var user domain.User
	err := r.pool.QueryRow(ctx, query, id).Scan(&user.ID, &user.DisplayName, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}
