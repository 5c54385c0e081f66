package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Leading bytes of a valid PNG. Enough for content sniffing.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func newBlobStoreMock(t *testing.T) (*SQLBlobStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLBlobStore(db), mock
}

func TestUploadSniffsContentType(t *testing.T) {
	store, mock := newBlobStoreMock(t)

	// Filename says JPEG but the bytes are a PNG. The stored type must
	// follow the bytes.
	mock.ExpectExec("INSERT INTO blobs").
		WithArgs(sqlmock.AnyArg(), "cover.jpg", "image/png", pngHeader, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := store.Upload(context.Background(), "cover.jpg", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadRejectsEmptyStream(t *testing.T) {
	store, _ := newBlobStoreMock(t)

	_, err := store.Upload(context.Background(), "empty.png", bytes.NewReader(nil))
	assert.Error(t, err)
}

func TestOpenReturnsStoredBytes(t *testing.T) {
	store, mock := newBlobStoreMock(t)

	rows := sqlmock.NewRows([]string{"id", "filename", "content_type", "data", "created_at"}).
		AddRow("blob-1", "cover.png", "image/png", pngHeader, time.Now())
	mock.ExpectQuery("SELECT .+ FROM blobs WHERE id").
		WithArgs("blob-1").
		WillReturnRows(rows)

	meta, rc, err := store.Open(context.Background(), "blob-1")
	require.NoError(t, err)
	defer rc.Close()

	assert.Equal(t, "image/png", meta.ContentType)
	assert.Equal(t, int64(len(pngHeader)), meta.Size)

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
}

func TestOpenUnknownIDIsNotFound(t *testing.T) {
	store, mock := newBlobStoreMock(t)

	mock.ExpectQuery("SELECT .+ FROM blobs WHERE id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, _, err := store.Open(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrBlobNotFound))
}
