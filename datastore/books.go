package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/tdnguyen/novelnest/models"
)

// Sort keys accepted by ListBooks.
const (
	SortByRating  = "rating"
	SortByUpdated = "updated"
)

const defaultListLimit = 20

// ListBooksFilter narrows the candidate set before the in-memory sort.
type ListBooksFilter struct {
	ValidOnly bool
	Title     string // case-insensitive substring match, empty = no filter
	GenreID   string // membership test, empty = no filter
	AuthorID  string // empty = no filter
	SortBy    string // SortByRating (default) or SortByUpdated
	Limit     int    // <= 0 means defaultListLimit
}

type BookRepository struct {
	db *sql.DB
}

func NewBookRepository(db *sql.DB) *BookRepository {
	return &BookRepository{db: db}
}

// ListBooks returns book summaries with their rating aggregates, sorted
// descending by the chosen key. Candidates come back from the store in
// creation order, and the sort is stable, so ties keep that order.
func (r *BookRepository) ListBooks(ctx context.Context, filter ListBooksFilter) ([]models.BookSummary, error) {
	query := `
		SELECT b.id, b.title, b.cover_id, b.updated_at,
		       COALESCE(AVG(r.star), 0), COUNT(r.id)
		FROM books b
		LEFT JOIN ratings r ON r.book_id = b.id
		WHERE b.is_valid = $1
	`
	args := []any{filter.ValidOnly}

	if filter.Title != "" {
		args = append(args, "%"+filter.Title+"%")
		query += ` AND b.title ILIKE $` + strconv.Itoa(len(args))
	}
	if filter.GenreID != "" {
		args = append(args, filter.GenreID)
		query += ` AND EXISTS (SELECT 1 FROM book_genres bg WHERE bg.book_id = b.id AND bg.genre_id = $` + strconv.Itoa(len(args)) + `)`
	}
	if filter.AuthorID != "" {
		args = append(args, filter.AuthorID)
		query += ` AND b.author_id = $` + strconv.Itoa(len(args))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	args = append(args, limit)
	query += `
		GROUP BY b.id
		ORDER BY b.created_at ASC
		LIMIT $` + strconv.Itoa(len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	defer rows.Close()

	var books []models.BookSummary
	for rows.Next() {
		var b models.BookSummary
		if err := rows.Scan(&b.ID, &b.Title, &b.CoverID, &b.UpdatedAt, &b.AverageRating, &b.RatingCount); err != nil {
			return nil, fmt.Errorf("failed to scan book row: %w", err)
		}
		books = append(books, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating book rows: %w", err)
	}

	switch filter.SortBy {
	case SortByUpdated:
		sort.SliceStable(books, func(i, j int) bool {
			return books[i].UpdatedAt.After(books[j].UpdatedAt)
		})
	default:
		sort.SliceStable(books, func(i, j int) bool {
			return books[i].AverageRating > books[j].AverageRating
		})
	}

	if books == nil {
		books = []models.BookSummary{}
	}
	return books, nil
}

// GetBook resolves the full book view: genre names in stored order, the
// author's display name, chapters ascending by number, and the rating
// aggregate. Returns (nil, nil) when no book matches, so callers must
// existence-check before touching fields.
func (r *BookRepository) GetBook(ctx context.Context, bookID string) (*models.BookDetail, error) {
	query := `
		SELECT b.id, b.title, b.slug, b.description, b.cover_id, b.is_valid, b.created_at, b.updated_at,
		       COALESCE(u.name, u.username)
		FROM books b
		JOIN users u ON u.id = b.author_id
		WHERE b.id = $1
	`
	var detail models.BookDetail
	err := r.db.QueryRowContext(ctx, query, bookID).Scan(
		&detail.ID, &detail.Title, &detail.Slug, &detail.Description, &detail.CoverID,
		&detail.IsValid, &detail.CreatedAt, &detail.UpdatedAt, &detail.Author,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get book %s: %w", bookID, err)
	}

	genres, err := r.bookGenreNames(ctx, bookID)
	if err != nil {
		return nil, err
	}
	detail.Genres = genres

	chapters, err := r.bookChapters(ctx, bookID)
	if err != nil {
		return nil, err
	}
	detail.Chapters = chapters

	agg, err := ratingAggregate(ctx, r.db, bookID)
	if err != nil {
		return nil, err
	}
	detail.AverageRating = agg.Average
	detail.RatingCount = agg.Count

	return &detail, nil
}

func (r *BookRepository) bookGenreNames(ctx context.Context, bookID string) ([]string, error) {
	query := `
		SELECT g.name
		FROM book_genres bg
		JOIN genres g ON g.id = bg.genre_id
		WHERE bg.book_id = $1
		ORDER BY bg.position ASC
	`
	rows, err := r.db.QueryContext(ctx, query, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to query book genres: %w", err)
	}
	defer rows.Close()

	genres := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan genre name: %w", err)
		}
		genres = append(genres, name)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating genre rows: %w", err)
	}
	return genres, nil
}

func (r *BookRepository) bookChapters(ctx context.Context, bookID string) ([]models.Chapter, error) {
	query := `
		SELECT id, book_id, chapter_number, title, content, price
		FROM chapters
		WHERE book_id = $1
		ORDER BY chapter_number ASC
	`
	rows, err := r.db.QueryContext(ctx, query, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chapters: %w", err)
	}
	defer rows.Close()

	chapters := []models.Chapter{}
	for rows.Next() {
		var c models.Chapter
		if err := rows.Scan(&c.ID, &c.BookID, &c.Number, &c.Title, &c.Content, &c.Price); err != nil {
			return nil, fmt.Errorf("failed to scan chapter row: %w", err)
		}
		chapters = append(chapters, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chapter rows: %w", err)
	}
	return chapters, nil
}

// SubmitBookInput is an author's submission: the book plus its initial
// chapters in reading order.
type SubmitBookInput struct {
	Title       string
	Slug        string
	Description string
	CoverID     string
	GenreIDs    []string
	Chapters    []models.ChapterInput
}

// SubmitBook inserts the pending book, its genre links, and its chapters
// numbered 1..N in submission order, all in one transaction. A failed
// chapter insert rolls the book back rather than leaving an orphaned
// pending record.
func (r *BookRepository) SubmitBook(ctx context.Context, input SubmitBookInput, authorID string) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Rollback is safe even if Commit succeeds

	bookID := uuid.NewString()
	now := time.Now().UTC()

	bookQuery := `
		INSERT INTO books (id, title, slug, description, cover_id, author_id, is_valid, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7, $7)
	`
	if _, err := tx.ExecContext(ctx, bookQuery, bookID, input.Title, input.Slug, input.Description, input.CoverID, authorID, now); err != nil {
		return "", fmt.Errorf("failed to insert book: %w", err)
	}

	genreQuery := `INSERT INTO book_genres (book_id, genre_id, position) VALUES ($1, $2, $3)`
	for i, genreID := range input.GenreIDs {
		if _, err := tx.ExecContext(ctx, genreQuery, bookID, genreID, i); err != nil {
			return "", fmt.Errorf("failed to link genre %s: %w", genreID, err)
		}
	}

	chapterQuery := `
		INSERT INTO chapters (id, book_id, chapter_number, title, content, price)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for i, chapter := range input.Chapters {
		if _, err := tx.ExecContext(ctx, chapterQuery,
			uuid.NewString(), bookID, i+1, chapter.Title, chapter.Content, chapter.Price,
		); err != nil {
			return "", fmt.Errorf("failed to insert chapter %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit book submission: %w", err)
	}
	return bookID, nil
}

// ApproveBook publishes a pending book and marks its author as an
// author. Both writes share one transaction so an approval cannot leave
// the flags half-set.
func (r *BookRepository) ApproveBook(ctx context.Context, bookID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	bookQuery := `UPDATE books SET is_valid = TRUE, updated_at = $1 WHERE id = $2 RETURNING author_id`
	var authorID string
	if err := tx.QueryRowContext(ctx, bookQuery, time.Now().UTC(), bookID).Scan(&authorID); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("book %s: %w", bookID, ErrNotFound)
		}
		return fmt.Errorf("failed to approve book: %w", err)
	}

	authorQuery := `UPDATE users SET is_author = TRUE WHERE id = $1`
	if _, err := tx.ExecContext(ctx, authorQuery, authorID); err != nil {
		return fmt.Errorf("failed to set author flag: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit approval: %w", err)
	}
	return nil
}

// DeleteBookCascade removes the book's ratings, comments, chapters,
// genre links, cover blob, and finally the book row in one transaction.
// Either the whole cascade lands or none of it does; no orphans either
// way. Returns the number of chapters deleted.
func (r *BookRepository) DeleteBookCascade(ctx context.Context, bookID string) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var coverID string
	if err := tx.QueryRowContext(ctx, `SELECT cover_id FROM books WHERE id = $1`, bookID).Scan(&coverID); err != nil {
		if err == sql.ErrNoRows {
			return 0, fmt.Errorf("book %s: %w", bookID, ErrNotFound)
		}
		return 0, fmt.Errorf("failed to load book for deletion: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM ratings WHERE book_id = $1`, bookID); err != nil {
		return 0, fmt.Errorf("failed to delete ratings: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE book_id = $1`, bookID); err != nil {
		return 0, fmt.Errorf("failed to delete comments: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM chapters WHERE book_id = $1`, bookID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete chapters: %w", err)
	}
	chaptersDeleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted chapters: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM book_genres WHERE book_id = $1`, bookID); err != nil {
		return 0, fmt.Errorf("failed to delete genre links: %w", err)
	}
	// cover_id is TEXT while blobs.id is UUID. A stored value that is
	// not a blob ID would fail the cast and abort the whole cascade, so
	// only a parseable ID reaches the delete.
	if _, err := uuid.Parse(coverID); err == nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM blobs WHERE id = $1`, coverID); err != nil {
			return 0, fmt.Errorf("failed to delete cover blob: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, bookID); err != nil {
		return 0, fmt.Errorf("failed to delete book: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit cascade delete: %w", err)
	}
	return int(chaptersDeleted), nil
}
