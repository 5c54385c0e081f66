package routehandlers

import (
	"encoding/json"
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

const testBookID = "7f4df0f7-1e19-4a52-9c9c-27a8e13e9d6b"

func newRatingHandlerMock(t *testing.T) (*RatingHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRatingHandler(datastore.NewRatingRepository(db)), mock
}

func postRating(t *testing.T, h *RatingHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/ratings", strings.NewReader(body))
	ctx := auth.ContextWithUser(req.Context(), &models.User{ID: "u1", Username: "reader"})
	webutil.MakeHandler(h.HandleAddRating)(rec, req.WithContext(ctx))
	return rec
}

func TestHandleAddRatingAcceptsFirstRating(t *testing.T) {
	h, mock := newRatingHandlerMock(t)

	mock.ExpectExec("INSERT INTO ratings").
		WithArgs(sqlmock.AnyArg(), testBookID, "u1", 4, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := postRating(t, h, `{"book_id":"`+testBookID+`","star":4}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Thank for your rating", body["message"])
	assert.NotEmpty(t, body["rating_id"])
	require.NoError(t, mock.ExpectationsWereMet())
}

// A repeat rating is not an error for the client. The first rating
// stands and the response says so.
func TestHandleAddRatingRepeatIsSoftOK(t *testing.T) {
	h, mock := newRatingHandlerMock(t)

	mock.ExpectExec("INSERT INTO ratings").
		WillReturnResult(sqlmock.NewResult(0, 0))

	rec := postRating(t, h, `{"book_id":"`+testBookID+`","star":2}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "You have already rated", body["message"])
	assert.Empty(t, body["rating_id"])
}

func TestHandleAddRatingRejectsOutOfRangeStar(t *testing.T) {
	h, _ := newRatingHandlerMock(t)

	rec := postRating(t, h, `{"book_id":"`+testBookID+`","star":6}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAddRatingRejectsMalformedBookID(t *testing.T) {
	h, _ := newRatingHandlerMock(t)

	rec := postRating(t, h, `{"book_id":"not-a-uuid","star":3}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAddRatingRequiresUser(t *testing.T) {
	h, _ := newRatingHandlerMock(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/ratings", strings.NewReader(`{"book_id":"`+testBookID+`","star":3}`))
	webutil.MakeHandler(h.HandleAddRating)(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
