package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/readlog/internal/domain"
)

// ReviewsRepository provides persistence helpers for review entries.
type ReviewsRepository struct {
	pool *pgxpool.Pool
}

const reviewColumns = `
    id,
    user_id,
    title,
    author,
    genre,
    rating,
    start_date,
    end_date,
    quote,
    body,
    cover,
    is_public,
    created_at,
    updated_at
`

// ReviewParams bundles the writable fields of a review.
type ReviewParams struct {
	UserID    string
	Title     string
	Author    string
	Genre     string
	Rating    float64
	StartDate string
	EndDate   string
	Quote     string
	Body      string
	Cover     *string
	Public    bool
}

// ReviewListFilters encapsulates pagination options for one user's journal.
type ReviewListFilters struct {
	UserID string
	Limit  int
	Cursor *Cursor
}

// ReviewListResult returns the paginated payload.
type ReviewListResult struct {
	Items      []domain.Review
	NextCursor *string
}

// Create inserts a new review and returns the stored entity.
func (r *ReviewsRepository) Create(ctx context.Context, params ReviewParams) (domain.Review, error) {
	query := fmt.Sprintf(`
        INSERT INTO reviews (id, user_id, title, author, genre, rating, start_date, end_date, quote, body, cover, is_public)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING %s
    `, reviewColumns)

	row := r.pool.QueryRow(ctx, query,
		uuid.NewString(), params.UserID, params.Title, params.Author, params.Genre, params.Rating,
		params.StartDate, params.EndDate, params.Quote, params.Body, params.Cover, params.Public)
	review, err := scanReview(row)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Review{}, ErrNotFound
		}
		return domain.Review{}, fmt.Errorf("insert review: %w", err)
	}
	return review, nil
}

// Get fetches one of the user's reviews.
func (r *ReviewsRepository) Get(ctx context.Context, userID, id string) (domain.Review, error) {
	query := fmt.Sprintf(`SELECT %s FROM reviews WHERE id = $1 AND user_id = $2`, reviewColumns)
	review, err := scanReview(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Review{}, ErrNotFound
		}
		return domain.Review{}, err
	}
	return review, nil
}

// Update replaces every writable field of an existing review.
func (r *ReviewsRepository) Update(ctx context.Context, id string, params ReviewParams) (domain.Review, error) {
	query := fmt.Sprintf(`
        UPDATE reviews
        SET title = $3,
            author = $4,
            genre = $5,
            rating = $6,
            start_date = $7,
            end_date = $8,
            quote = $9,
            body = $10,
            cover = $11,
            is_public = $12,
            updated_at = now()
        WHERE id = $1 AND user_id = $2
        RETURNING %s
    `, reviewColumns)

	row := r.pool.QueryRow(ctx, query,
		id, params.UserID, params.Title, params.Author, params.Genre, params.Rating,
		params.StartDate, params.EndDate, params.Quote, params.Body, params.Cover, params.Public)
	review, err := scanReview(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Review{}, ErrNotFound
		}
		return domain.Review{}, err
	}
	return review, nil
}

// Delete removes one of the user's reviews.
func (r *ReviewsRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns a page of the user's reviews, newest first.
func (r *ReviewsRepository) List(ctx context.Context, filters ReviewListFilters) (ReviewListResult, error) {
	limit := clampLimit(filters.Limit)

	where := []string{"user_id = $1"}
	args := []interface{}{filters.UserID}
	if filters.Cursor != nil {
		args = append(args, filters.Cursor.CreatedAt, filters.Cursor.ID)
		where = append(where, fmt.Sprintf("(created_at, id) < ($%d, $%d)", len(args)-1, len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM reviews WHERE %s ORDER BY created_at DESC, id DESC LIMIT %d`,
		reviewColumns, strings.Join(where, " AND "), limit)

	items, err := r.query(ctx, query, args...)
	if err != nil {
		return ReviewListResult{}, err
	}

	result := ReviewListResult{Items: items}
	if len(items) > 0 {
		last := items[len(items)-1]
		result.NextCursor, err = nextCursor(len(items), limit, Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		if err != nil {
			return ReviewListResult{}, err
		}
	}
	return result, nil
}

// All returns the user's complete journal, newest first. Analytics and
// export work on this snapshot.
func (r *ReviewsRepository) All(ctx context.Context, userID string) ([]domain.Review, error) {
	query := fmt.Sprintf(`SELECT %s FROM reviews WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, reviewColumns)
	return r.query(ctx, query, userID)
}

func (r *ReviewsRepository) query(ctx context.Context, query string, args ...interface{}) ([]domain.Review, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Review, 0)
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, review)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanReview(row pgx.Row) (domain.Review, error) {
	var review domain.Review
	err := row.Scan(
		&review.ID,
		&review.UserID,
		&review.Title,
		&review.Author,
		&review.Genre,
		&review.Rating,
		&review.StartDate,
		&review.EndDate,
		&review.Quote,
		&review.Body,
		&review.Cover,
		&review.Public,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if err != nil {
		return domain.Review{}, err
	}
	return review, nil
}
