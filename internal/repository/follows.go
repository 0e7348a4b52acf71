package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/readlog/internal/domain"
)

// FollowsRepository manages who follows whom and serves the activity feed.
type FollowsRepository struct {
	pool *pgxpool.Pool
}

// FeedFilters encapsulates pagination options for a follower's feed.
type FeedFilters struct {
	FollowerID string
	Limit      int
	Cursor     *Cursor
}

// FeedResult returns a page of feed entries.
type FeedResult struct {
	Items      []domain.FeedEntry
	NextCursor *string
}

// Follow records that followerID follows followeeID. Following twice is a
// no-op; an unknown followee yields ErrNotFound.
func (r *FollowsRepository) Follow(ctx context.Context, followerID, followeeID string) (bool, error) {
	const query = `
        INSERT INTO follows (follower_id, followee_id)
        VALUES ($1, $2)
        ON CONFLICT (follower_id, followee_id) DO NOTHING
    `
	tag, err := r.pool.Exec(ctx, query, followerID, followeeID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, ErrNotFound
		}
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Unfollow removes the relation.
func (r *FollowsRepository) Unfollow(ctx context.Context, followerID, followeeID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`, followerID, followeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Following lists the users followerID follows, by display name.
func (r *FollowsRepository) Following(ctx context.Context, followerID string) ([]domain.User, error) {
	const query = `
        SELECT u.id, u.display_name, u.created_at, u.updated_at
        FROM follows f
        JOIN users u ON u.id = f.followee_id
        WHERE f.follower_id = $1
        ORDER BY u.display_name, u.id
    `
	rows, err := r.pool.Query(ctx, query, followerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.DisplayName, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Feed returns public reviews by followed users, newest first. Covers are
// left out to keep pages small.
func (r *FollowsRepository) Feed(ctx context.Context, filters FeedFilters) (FeedResult, error) {
	limit := clampLimit(filters.Limit)

	where := []string{"f.follower_id = $1", "r.is_public"}
	args := []interface{}{filters.FollowerID}
	if filters.Cursor != nil {
		args = append(args, filters.Cursor.CreatedAt, filters.Cursor.ID)
		where = append(where, fmt.Sprintf("(r.created_at, r.id) < ($%d, $%d)", len(args)-1, len(args)))
	}

	query := fmt.Sprintf(`
        SELECT r.id, r.user_id, r.title, r.author, r.genre, r.rating, r.start_date, r.end_date,
               r.quote, r.body, r.is_public, r.created_at, r.updated_at, u.display_name
        FROM reviews r
        JOIN follows f ON f.followee_id = r.user_id
        JOIN users u ON u.id = r.user_id
        WHERE %s
        ORDER BY r.created_at DESC, r.id DESC
        LIMIT %d
    `, strings.Join(where, " AND "), limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return FeedResult{}, err
	}
	defer rows.Close()

	items := make([]domain.FeedEntry, 0)
	for rows.Next() {
		var e domain.FeedEntry
		err := rows.Scan(
			&e.Review.ID,
			&e.Review.UserID,
			&e.Review.Title,
			&e.Review.Author,
			&e.Review.Genre,
			&e.Review.Rating,
			&e.Review.StartDate,
			&e.Review.EndDate,
			&e.Review.Quote,
			&e.Review.Body,
			&e.Review.Public,
			&e.Review.CreatedAt,
			&e.Review.UpdatedAt,
			&e.DisplayName,
		)
		if err != nil {
			return FeedResult{}, err
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return FeedResult{}, err
	}

	result := FeedResult{Items: items}
	if len(items) > 0 {
		last := items[len(items)-1].Review
		result.NextCursor, err = nextCursor(len(items), limit, Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		if err != nil {
			return FeedResult{}, err
		}
	}
	return result, nil
}
