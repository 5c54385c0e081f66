package datastore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/tdnguyen/novelnest/models"
)

type ChapterRepository struct {
	db *sql.DB
}

func NewChapterRepository(db *sql.DB) *ChapterRepository {
	return &ChapterRepository{db: db}
}

// GetChapter retrieves a chapter by its 1-based number within a book.
// Returns (nil, nil) when no such chapter exists.
func (r *ChapterRepository) GetChapter(ctx context.Context, bookID string, number int) (*models.Chapter, error) {
	query := `
		SELECT id, book_id, chapter_number, title, content, price
		FROM chapters
		WHERE book_id = $1 AND chapter_number = $2
	`
	var c models.Chapter
	err := r.db.QueryRowContext(ctx, query, bookID, number).Scan(
		&c.ID, &c.BookID, &c.Number, &c.Title, &c.Content, &c.Price,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get chapter %d of book %s: %w", number, bookID, err)
	}
	return &c, nil
}

// GetReadingMeta returns the book title and chapter count shown
// alongside a chapter in the reading view.
func (r *ChapterRepository) GetReadingMeta(ctx context.Context, bookID string) (*models.ReadingMeta, error) {
	query := `
		SELECT b.title, COUNT(c.id)
		FROM books b
		LEFT JOIN chapters c ON c.book_id = b.id
		WHERE b.id = $1
		GROUP BY b.title
	`
	var meta models.ReadingMeta
	err := r.db.QueryRowContext(ctx, query, bookID).Scan(&meta.Title, &meta.ChapterCount)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("book %s: %w", bookID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get reading meta: %w", err)
	}
	return &meta, nil
}

// AddChapter inserts a single chapter with an explicit number. The
// ownership check is mandatory: only the book's stored author may add
// chapters, anyone else gets ErrNotOwner. The unique constraint on
// (book_id, chapter_number) rejects a number already taken.
func (r *ChapterRepository) AddChapter(ctx context.Context, bookID string, number int, input models.ChapterInput, authorID string) (string, error) {
	var storedAuthor string
	err := r.db.QueryRowContext(ctx, `SELECT author_id FROM books WHERE id = $1`, bookID).Scan(&storedAuthor)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("book %s: %w", bookID, ErrNotFound)
		}
		return "", fmt.Errorf("failed to check book ownership: %w", err)
	}
	if storedAuthor != authorID {
		return "", fmt.Errorf("book %s: %w", bookID, ErrNotOwner)
	}

	chapterID := uuid.NewString()
	query := `
		INSERT INTO chapters (id, book_id, chapter_number, title, content, price)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.db.ExecContext(ctx, query, chapterID, bookID, number, input.Title, input.Content, input.Price); err != nil {
		return "", fmt.Errorf("failed to insert chapter %d: %w", number, err)
	}
	return chapterID, nil
}
