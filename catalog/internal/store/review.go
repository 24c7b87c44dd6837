package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/revizorapp/revizor/dbopen"
)

const reviewColumns = `id, product_id, user_id, importance, source, text,
	advantages, disadvantages, raw_rating, rating, max_rating,
	normalized_rating, created_at`

const insertReviewSQL = `INSERT INTO reviews (` + reviewColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func insertReviewArgs(r *Review) []any {
	if r.CreatedAt == 0 {
		r.CreatedAt = time.Now().UnixMilli()
	}
	return []any{
		r.ID, r.ProductID, r.UserID, r.Importance, r.Source, r.Text,
		r.Advantages, r.Disadvantages, r.RawRating, r.Rating, r.MaxRating,
		r.NormalizedRating, r.CreatedAt,
	}
}

// InsertReview adds a single review to a product.
func (s *Store) InsertReview(ctx context.Context, r *Review) error {
	_, err := dbopen.Exec(ctx, s.DB, insertReviewSQL, insertReviewArgs(r)...)
	return err
}

// InsertReviews adds a batch of reviews in one transaction: either
// every review lands or none do.
func (s *Store) InsertReviews(ctx context.Context, recs []*Review) error {
	return dbopen.RunTx(ctx, s.DB, func(tx *sql.Tx) error {
		for _, r := range recs {
			if _, err := tx.ExecContext(ctx, insertReviewSQL, insertReviewArgs(r)...); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetReview retrieves a review by ID, optionally scoped to a user.
func (s *Store) GetReview(ctx context.Context, id, userID string) (*Review, error) {
	q := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = ?`
	args := []any{id}
	if userID != "" {
		q += ` AND user_id = ?`
		args = append(args, userID)
	}
	return scanReview(s.DB.QueryRowContext(ctx, q, args...))
}

// UpdateReview rewrites a review's fields.
func (s *Store) UpdateReview(ctx context.Context, r *Review) error {
	_, err := dbopen.Exec(ctx, s.DB,
		`UPDATE reviews SET importance=?, source=?, text=?, advantages=?,
		disadvantages=?, raw_rating=?, rating=?, max_rating=?, normalized_rating=?
		WHERE id=?`,
		r.Importance, r.Source, r.Text, r.Advantages,
		r.Disadvantages, r.RawRating, r.Rating, r.MaxRating, r.NormalizedRating,
		r.ID,
	)
	return err
}

// DeleteReview removes a review, optionally scoped to a user. Returns
// whether a row was deleted.
func (s *Store) DeleteReview(ctx context.Context, id, userID string) (bool, error) {
	q := `DELETE FROM reviews WHERE id = ?`
	args := []any{id}
	if userID != "" {
		q += ` AND user_id = ?`
		args = append(args, userID)
	}
	res, err := dbopen.Exec(ctx, s.DB, q, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteProductReviews removes all reviews of a product, optionally
// scoped to a user. Returns the number of deleted rows.
func (s *Store) DeleteProductReviews(ctx context.Context, productID, userID string) (int64, error) {
	q := `DELETE FROM reviews WHERE product_id = ?`
	args := []any{productID}
	if userID != "" {
		q += ` AND user_id = ?`
		args = append(args, userID)
	}
	res, err := dbopen.Exec(ctx, s.DB, q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountProductReviews returns the number of reviews on a product,
// optionally scoped to a user.
func (s *Store) CountProductReviews(ctx context.Context, productID, userID string) (int, error) {
	q := `SELECT COUNT(*) FROM reviews WHERE product_id = ?`
	args := []any{productID}
	if userID != "" {
		q += ` AND user_id = ?`
		args = append(args, userID)
	}
	var n int
	err := s.DB.QueryRowContext(ctx, q, args...).Scan(&n)
	return n, err
}

// ListReviews returns a product's reviews matching the filter, oldest
// first (import order).
func (s *Store) ListReviews(ctx context.Context, productID string, f ReviewFilter) ([]*Review, error) {
	where := []string{"product_id = ?"}
	args := []any{productID}

	if f.Importance > 0 {
		where = append(where, "importance = ?")
		args = append(args, f.Importance)
	}
	for _, sub := range []struct {
		col string
		val string
	}{
		{"source", f.Source},
		{"text", f.Text},
		{"advantages", f.Advantages},
		{"disadvantages", f.Disadvantages},
	} {
		if sub.val != "" {
			where = append(where, sub.col+" LIKE ? COLLATE NOCASE")
			args = append(args, "%"+sub.val+"%")
		}
	}
	if f.RatingMin > 0 {
		where = append(where, "normalized_rating >= ?")
		args = append(args, f.RatingMin)
	}
	if f.RatingMax > 0 {
		where = append(where, "normalized_rating <= ?")
		args = append(args, f.RatingMax)
	}

	q := `SELECT ` + reviewColumns + ` FROM reviews WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY created_at, id`
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*Review
	for rows.Next() {
		r, err := scanReviewRows(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

func scanReview(row *sql.Row) (*Review, error) {
	var r Review
	err := row.Scan(&r.ID, &r.ProductID, &r.UserID, &r.Importance, &r.Source,
		&r.Text, &r.Advantages, &r.Disadvantages, &r.RawRating, &r.Rating,
		&r.MaxRating, &r.NormalizedRating, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func scanReviewRows(rows *sql.Rows) (*Review, error) {
	var r Review
	err := rows.Scan(&r.ID, &r.ProductID, &r.UserID, &r.Importance, &r.Source,
		&r.Text, &r.Advantages, &r.Disadvantages, &r.RawRating, &r.Rating,
		&r.MaxRating, &r.NormalizedRating, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
