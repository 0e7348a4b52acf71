package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/readlog/internal/domain"
)

// WishlistRepository stores the books a user wants to read.
type WishlistRepository struct {
	pool *pgxpool.Pool
}

const wishlistColumns = `id, user_id, title, author, link, cover, created_at, updated_at`

// WishlistParams bundles the writable fields of a wishlist item.
type WishlistParams struct {
	UserID string
	Title  string
	Author string
	Link   *string
	Cover  *string
}

// Create inserts a new wishlist item.
func (r *WishlistRepository) Create(ctx context.Context, params WishlistParams) (domain.WishlistItem, error) {
	query := fmt.Sprintf(`
        INSERT INTO wishlist_items (id, user_id, title, author, link, cover)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING %s
    `, wishlistColumns)

	item, err := scanWishlistItem(r.pool.QueryRow(ctx, query,
		uuid.NewString(), params.UserID, params.Title, params.Author, params.Link, params.Cover))
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.WishlistItem{}, ErrNotFound
		}
		return domain.WishlistItem{}, fmt.Errorf("insert wishlist item: %w", err)
	}
	return item, nil
}

// Update replaces the writable fields of one of the user's items.
func (r *WishlistRepository) Update(ctx context.Context, id string, params WishlistParams) (domain.WishlistItem, error) {
	query := fmt.Sprintf(`
        UPDATE wishlist_items
        SET title = $3, author = $4, link = $5, cover = $6, updated_at = now()
        WHERE id = $1 AND user_id = $2
        RETURNING %s
    `, wishlistColumns)

	item, err := scanWishlistItem(r.pool.QueryRow(ctx, query,
		id, params.UserID, params.Title, params.Author, params.Link, params.Cover))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.WishlistItem{}, ErrNotFound
		}
		return domain.WishlistItem{}, err
	}
	return item, nil
}

// Delete removes one of the user's items.
func (r *WishlistRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM wishlist_items WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns the user's wishlist, newest first.
func (r *WishlistRepository) List(ctx context.Context, userID string) ([]domain.WishlistItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM wishlist_items WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, wishlistColumns)
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.WishlistItem, 0)
	for rows.Next() {
		item, err := scanWishlistItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanWishlistItem(row pgx.Row) (domain.WishlistItem, error) {
	var item domain.WishlistItem
	err := row.Scan(
		&item.ID,
		&item.UserID,
		&item.Title,
		&item.Author,
		&item.Link,
		&item.Cover,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	return item, err
}
