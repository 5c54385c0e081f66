package datastore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdnguyen/novelnest/models"
)

func newBookRepoMock(t *testing.T) (*BookRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err, "sqlmock new")
	return NewBookRepository(db), mock, func() { db.Close() }
}

func TestListBooksSortsByRatingDescendingWithStableTies(t *testing.T) {
	repo, mock, done := newBookRepoMock(t)
	defer done()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "title", "cover_id", "updated_at", "avg", "count"}).
		AddRow("a", "Alpha", "", now, 3.0, 4).
		AddRow("b", "Beta", "", now, 5.0, 1).
		AddRow("c", "Gamma", "", now, 3.0, 2) // ties with "a", must stay after it

	mock.ExpectQuery("SELECT b.id, b.title, b.cover_id").
		WithArgs(true, defaultListLimit).
		WillReturnRows(rows)

	books, err := repo.ListBooks(context.Background(), ListBooksFilter{ValidOnly: true})
	require.NoError(t, err)

	require.Len(t, books, 3)
	assert.Equal(t, "b", books[0].ID)
	assert.Equal(t, "a", books[1].ID)
	assert.Equal(t, "c", books[2].ID)

	for i := 1; i < len(books); i++ {
		assert.GreaterOrEqual(t, books[i-1].AverageRating, books[i].AverageRating,
			"averages must be non-increasing")
	}

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListBooksSortsByUpdatedAt(t *testing.T) {
	repo, mock, done := newBookRepoMock(t)
	defer done()

	older := time.Now().Add(-time.Hour)
	newer := time.Now()
	rows := sqlmock.NewRows([]string{"id", "title", "cover_id", "updated_at", "avg", "count"}).
		AddRow("a", "Alpha", "", older, 5.0, 1).
		AddRow("b", "Beta", "", newer, 1.0, 1)

	mock.ExpectQuery("SELECT b.id, b.title, b.cover_id").
		WithArgs(true, defaultListLimit).
		WillReturnRows(rows)

	books, err := repo.ListBooks(context.Background(), ListBooksFilter{ValidOnly: true, SortBy: SortByUpdated})
	require.NoError(t, err)

	require.Len(t, books, 2)
	assert.Equal(t, "b", books[0].ID, "most recently updated first")
	assert.Equal(t, "a", books[1].ID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListBooksAppliesFilters(t *testing.T) {
	repo, mock, done := newBookRepoMock(t)
	defer done()

	authorID := "7b0d1a7e-5a52-4f9f-9f0e-0c9f3f7f2a11"
	mock.ExpectQuery("SELECT b.id, b.title, b.cover_id").
		WithArgs(true, "%dragon%", "g1", authorID, 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "cover_id", "updated_at", "avg", "count"}))

	books, err := repo.ListBooks(context.Background(), ListBooksFilter{
		ValidOnly: true,
		Title:     "dragon",
		GenreID:   "g1",
		AuthorID:  authorID,
		Limit:     5,
	})
	require.NoError(t, err)
	assert.Empty(t, books)
	assert.NotNil(t, books, "no matches must be an empty slice, not nil")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBookMissingReturnsNil(t *testing.T) {
	repo, mock, done := newBookRepoMock(t)
	defer done()

	mock.ExpectQuery("SELECT b.id, b.title, b.slug, b.description").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	book, err := repo.GetBook(context.Background(), "missing")
	require.NoError(t, err, "a missing book is not an error")
	assert.Nil(t, book)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitBookNumbersChaptersInOrder(t *testing.T) {
	repo, mock, done := newBookRepoMock(t)
	defer done()

	input := SubmitBookInput{
		Title:       "The Long Road",
		Slug:        "the-long-road",
		Description: "d",
		CoverID:     "cover-1",
		GenreIDs:    []string{"g1", "g2"},
		Chapters: []models.ChapterInput{
			{Title: "One", Content: "c1"},
			{Title: "Two", Content: "c2"},
			{Title: "Three", Content: "c3"},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO books").
		WithArgs(sqlmock.AnyArg(), "The Long Road", "the-long-road", "d", "cover-1", "author-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO book_genres").
		WithArgs(sqlmock.AnyArg(), "g1", 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO book_genres").
		WithArgs(sqlmock.AnyArg(), "g2", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO chapters").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), 1, "One", "c1", 0.0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO chapters").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), 2, "Two", "c2", 0.0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO chapters").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), 3, "Three", "c3", 0.0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	bookID, err := repo.SubmitBook(context.Background(), input, "author-1")
	require.NoError(t, err)
	assert.NotEmpty(t, bookID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitBookRollsBackWhenChapterInsertFails(t *testing.T) {
	repo, mock, done := newBookRepoMock(t)
	defer done()

	input := SubmitBookInput{
		Title:    "Half Done",
		Chapters: []models.ChapterInput{{Title: "One", Content: "c1"}},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO books").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO chapters").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := repo.SubmitBook(context.Background(), input, "author-1")
	require.Error(t, err, "a failed chapter insert must fail the whole submission")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveBookSetsAuthorFlagInSameTransaction(t *testing.T) {
	repo, mock, done := newBookRepoMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE books SET is_valid = TRUE").
		WithArgs(sqlmock.AnyArg(), "b1").
		WillReturnRows(sqlmock.NewRows([]string{"author_id"}).AddRow("author-1"))
	mock.ExpectExec("UPDATE users SET is_author = TRUE").
		WithArgs("author-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ApproveBook(context.Background(), "b1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveBookUnknownIDIsNotFound(t *testing.T) {
	repo, mock, done := newBookRepoMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE books SET is_valid = TRUE").
		WithArgs(sqlmock.AnyArg(), "missing").
		WillReturnRows(sqlmock.NewRows([]string{"author_id"}))
	mock.ExpectRollback()

	err := repo.ApproveBook(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteBookCascadeRemovesEverything(t *testing.T) {
	repo, mock, done := newBookRepoMock(t)
	defer done()

	coverID := "0b961354-5c7e-4c9f-8b63-6a2f0d7e4f2c"

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT cover_id FROM books").
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"cover_id"}).AddRow(coverID))
	mock.ExpectExec("DELETE FROM ratings").
		WithArgs("b1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM comments").
		WithArgs("b1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM chapters").
		WithArgs("b1").
		WillReturnResult(sqlmock.NewResult(0, 7))
	mock.ExpectExec("DELETE FROM book_genres").
		WithArgs("b1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM blobs").
		WithArgs(coverID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM books").
		WithArgs("b1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	chaptersDeleted, err := repo.DeleteBookCascade(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, 7, chaptersDeleted)

	require.NoError(t, mock.ExpectationsWereMet())
}

// A cover_id that is not a blob ID must not abort the cascade: the
// blob delete is skipped and everything else still goes.
func TestDeleteBookCascadeSkipsUnparseableCover(t *testing.T) {
	repo, mock, done := newBookRepoMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT cover_id FROM books").
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"cover_id"}).AddRow("my-cover.png"))
	mock.ExpectExec("DELETE FROM ratings").
		WithArgs("b1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM comments").
		WithArgs("b1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM chapters").
		WithArgs("b1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM book_genres").
		WithArgs("b1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM books").
		WithArgs("b1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	chaptersDeleted, err := repo.DeleteBookCascade(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, 3, chaptersDeleted)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteBookCascadeUnknownIDIsNotFound(t *testing.T) {
	repo, mock, done := newBookRepoMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT cover_id FROM books").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"cover_id"}))
	mock.ExpectRollback()

	_, err := repo.DeleteBookCascade(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
