package routehandlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdnguyen/novelnest/auth"
	"github.com/tdnguyen/novelnest/datastore"
	"github.com/tdnguyen/novelnest/models"
	"github.com/tdnguyen/novelnest/webutil"
)

func newBookHandlerMock(t *testing.T) (*BookHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewBookHandler(datastore.NewBookRepository(db)), mock
}

func getBooks(t *testing.T, h *BookHandler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	webutil.MakeHandler(h.HandleListBooks)(rec, req)
	return rec
}

// Malformed reference IDs in the listing filters are client faults, not
// server errors. Neither may reach the database.
func TestHandleListBooksRejectsMalformedAuthorID(t *testing.T) {
	h, mock := newBookHandlerMock(t)

	rec := getBooks(t, h, "/books?author=not-a-uuid")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleListBooksRejectsMalformedGenreID(t *testing.T) {
	h, mock := newBookHandlerMock(t)

	rec := getBooks(t, h, "/books?genre=fantasy")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleListBooksAcceptsValidFilters(t *testing.T) {
	h, mock := newBookHandlerMock(t)

	genreID := "4c3c5a64-9f2e-4b1a-8e53-2f6d1a0f7b9d"
	authorID := "7b0d1a7e-5a52-4f9f-9f0e-0c9f3f7f2a11"

	mock.ExpectQuery("SELECT b.id, b.title, b.cover_id").
		WithArgs(true, genreID, authorID, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "cover_id", "updated_at", "avg", "count"}))

	rec := getBooks(t, h, "/books?genre="+genreID+"&author="+authorID)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

// The cover must be a blob ID handed out by the upload endpoint. A
// free-form string stored as cover_id would later make the cascade
// delete unable to match it against the blobs table.
func TestHandleSubmitBookRejectsMalformedCoverID(t *testing.T) {
	h, mock := newBookHandlerMock(t)

	body := `{"bookName":"The Long Road","bookCover":"my-cover.png","chapters":[{"title":"One","content":"c1"}]}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/novels", strings.NewReader(body))
	ctx := auth.ContextWithUser(req.Context(), &models.User{ID: "u1", Username: "writer"})
	webutil.MakeHandler(h.HandleSubmitBook)(rec, req.WithContext(ctx))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleSubmitBookAcceptsCoverlessSubmission(t *testing.T) {
	h, mock := newBookHandlerMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO books").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO chapters").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	body := `{"bookName":"The Long Road","chapters":[{"title":"One","content":"c1"}]}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/novels", strings.NewReader(body))
	ctx := auth.ContextWithUser(req.Context(), &models.User{ID: "u1", Username: "writer"})
	webutil.MakeHandler(h.HandleSubmitBook)(rec, req.WithContext(ctx))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
