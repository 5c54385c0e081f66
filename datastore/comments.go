package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tdnguyen/novelnest/models"
)

type CommentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// AddComment appends a comment. There is no moderation step; every
// authenticated comment lands.
func (r *CommentRepository) AddComment(ctx context.Context, bookID, userID, content string) (string, error) {
	commentID := uuid.NewString()
	query := `
		INSERT INTO comments (id, book_id, user_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.ExecContext(ctx, query, commentID, bookID, userID, content, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("failed to insert comment: %w", err)
	}
	return commentID, nil
}

// GetComments returns a book's comments, newest first.
func (r *CommentRepository) GetComments(ctx context.Context, bookID string) ([]models.Comment, error) {
	query := `
		SELECT id, book_id, user_id, content, created_at
		FROM comments
		WHERE book_id = $1
		ORDER BY created_at DESC
	`
	return r.queryComments(ctx, query, bookID)
}

// GetAllComments returns every comment in the store, newest first.
// Admin moderation view only.
func (r *CommentRepository) GetAllComments(ctx context.Context) ([]models.Comment, error) {
	query := `
		SELECT id, book_id, user_id, content, created_at
		FROM comments
		ORDER BY created_at DESC
	`
	return r.queryComments(ctx, query)
}

func (r *CommentRepository) queryComments(ctx context.Context, query string, args ...any) ([]models.Comment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.BookID, &c.UserID, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment row: %w", err)
		}
		comments = append(comments, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comment rows: %w", err)
	}

	if comments == nil {
		comments = []models.Comment{}
	}
	return comments, nil
}

// DeleteComment removes a comment by ID.
func (r *CommentRepository) DeleteComment(ctx context.Context, commentID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, commentID)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("comment %s: %w", commentID, ErrNotFound)
	}
	return nil
}
