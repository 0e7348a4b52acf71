package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/readlog/internal/domain"
)

// GoalsRepository provides helpers for yearly reading goals.
type GoalsRepository struct {
	pool *pgxpool.Pool
}

// Upsert inserts or updates a goal and indicates whether it was newly created.
func (r *GoalsRepository) Upsert(ctx context.Context, userID string, year, target int) (domain.Goal, bool, error) {
	const query = `
        INSERT INTO goals (user_id, year, target)
        VALUES ($1,$2,$3)
        ON CONFLICT (user_id, year)
        DO UPDATE SET target = EXCLUDED.target, updated_at = now()
        RETURNING user_id, year, target, updated_at, (xmax = 0) AS inserted
    `

	var goal domain.Goal
	var inserted bool
	err := r.pool.QueryRow(ctx, query, userID, year, target).Scan(
		&goal.UserID,
		&goal.Year,
		&goal.Target,
		&goal.UpdatedAt,
		&inserted,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Goal{}, false, ErrNotFound
		}
		return domain.Goal{}, false, err
	}
	return goal, inserted, nil
}

// Get retrieves the user's goal for a year.
func (r *GoalsRepository) Get(ctx context.Context, userID string, year int) (domain.Goal, error) {
	const query = `
        SELECT user_id, year, target, updated_at
        FROM goals
        WHERE user_id = $1 AND year = $2
    `
	var goal domain.Goal
	err := r.pool.QueryRow(ctx, query, userID, year).Scan(&goal.UserID, &goal.Year, &goal.Target, &goal.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Goal{}, ErrNotFound
		}
		return domain.Goal{}, err
	}
	return goal, nil
}

// TargetOrDefault returns the stored target, or fallback when none is set.
func (r *GoalsRepository) TargetOrDefault(ctx context.Context, userID string, year, fallback int) (int, error) {
	goal, err := r.Get(ctx, userID, year)
	if errors.Is(err, ErrNotFound) {
		return fallback, nil
	}
	if err != nil {
		return 0, err
	}
	return goal.Target, nil
}

// List returns every goal the user has set, newest year first.
func (r *GoalsRepository) List(ctx context.Context, userID string) ([]domain.Goal, error) {
	const query = `
        SELECT user_id, year, target, updated_at
        FROM goals
        WHERE user_id = $1
        ORDER BY year DESC
    `
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goals := make([]domain.Goal, 0)
	for rows.Next() {
		var goal domain.Goal
		if err := rows.Scan(&goal.UserID, &goal.Year, &goal.Target, &goal.UpdatedAt); err != nil {
			return nil, err
		}
		goals = append(goals, goal)
	}
	return goals, rows.Err()
}
