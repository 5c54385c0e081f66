package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tdnguyen/novelnest/models"
)

type RatingRepository struct {
	db *sql.DB
}

func NewRatingRepository(db *sql.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// AddRating inserts one rating per (book, user) pair. A star outside
// 0..5 is ErrInvalidStar. A duplicate pair is ErrAlreadyRated rather
// than a hard failure: the insert uses ON CONFLICT DO NOTHING against
// the pair's unique constraint, so two concurrent calls cannot both
// land. One inserts, the other sees zero rows affected.
func (r *RatingRepository) AddRating(ctx context.Context, bookID, userID string, star int) (string, error) {
	if star < 0 || star > 5 {
		return "", fmt.Errorf("star %d: %w", star, ErrInvalidStar)
	}

	ratingID := uuid.NewString()
	query := `
		INSERT INTO ratings (id, book_id, user_id, star, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (book_id, user_id) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, ratingID, bookID, userID, star, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to insert rating: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("failed to read rating insert result: %w", err)
	}
	if affected == 0 {
		return "", fmt.Errorf("book %s user %s: %w", bookID, userID, ErrAlreadyRated)
	}
	return ratingID, nil
}

// GetRatings returns all ratings for a book, newest first.
func (r *RatingRepository) GetRatings(ctx context.Context, bookID string) ([]models.Rating, error) {
	query := `
		SELECT id, book_id, user_id, star, created_at
		FROM ratings
		WHERE book_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}
	defer rows.Close()

	var ratings []models.Rating
	for rows.Next() {
		var rat models.Rating
		if err := rows.Scan(&rat.ID, &rat.BookID, &rat.UserID, &rat.Star, &rat.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rating row: %w", err)
		}
		ratings = append(ratings, rat)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rating rows: %w", err)
	}

	if ratings == nil {
		ratings = []models.Rating{}
	}
	return ratings, nil
}

// GetAggregate computes the average and count over a book's ratings.
// A book with no ratings aggregates to {0, 0}.
func (r *RatingRepository) GetAggregate(ctx context.Context, bookID string) (models.RatingAggregate, error) {
	return ratingAggregate(ctx, r.db, bookID)
}

// ratingAggregate is shared with BookRepository.GetBook, which folds the
// aggregate into the book detail view.
func ratingAggregate(ctx context.Context, db *sql.DB, bookID string) (models.RatingAggregate, error) {
	query := `SELECT COALESCE(AVG(star), 0), COUNT(id) FROM ratings WHERE book_id = $1`
	var agg models.RatingAggregate
	if err := db.QueryRowContext(ctx, query, bookID).Scan(&agg.Average, &agg.Count); err != nil {
		return models.RatingAggregate{}, fmt.Errorf("failed to aggregate ratings: %w", err)
	}
	return agg, nil
}
