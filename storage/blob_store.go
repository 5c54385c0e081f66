package storage

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ErrBlobNotFound indicates the blob ID does not resolve.
var ErrBlobNotFound = fmt.Errorf("blob not found")

// BlobMeta describes a stored blob without its bytes.
type BlobMeta struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

// BlobStore defines ID-addressed binary storage for cover images.
type BlobStore interface {
	// Upload consumes the stream and returns the new blob's opaque ID.
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)

	// Open returns the blob's metadata and a reader over its bytes, or
	// ErrBlobNotFound if the ID does not resolve.
	Open(ctx context.Context, id string) (*BlobMeta, io.ReadCloser, error)
}

// SQLBlobStore implements BlobStore on the blobs table, sharing the
// connection pool with the entity repositories so the book cascade
// delete can remove covers in the same transaction.
type SQLBlobStore struct {
	db *sql.DB
}

func NewSQLBlobStore(db *sql.DB) *SQLBlobStore {
	return &SQLBlobStore{db: db}
}

// Upload reads the whole stream and stores it under a fresh UUID. The
// content type is sniffed from the leading bytes rather than trusted
// from the filename, so downloads serve what was actually stored.
func (s *SQLBlobStore) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read blob stream: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("blob is empty")
	}

	blobID := uuid.NewString()
	contentType := http.DetectContentType(data)

	query := `
		INSERT INTO blobs (id, filename, content_type, data, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := s.db.ExecContext(ctx, query, blobID, filename, contentType, data, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("failed to insert blob: %w", err)
	}
	return blobID, nil
}

func (s *SQLBlobStore) Open(ctx context.Context, id string) (*BlobMeta, io.ReadCloser, error) {
	query := `SELECT id, filename, content_type, data, created_at FROM blobs WHERE id = $1`

	var meta BlobMeta
	var data []byte
	err := s.db.QueryRowContext(ctx, query, id).Scan(&meta.ID, &meta.Filename, &meta.ContentType, &data, &meta.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, fmt.Errorf("blob %s: %w", id, ErrBlobNotFound)
		}
		return nil, nil, fmt.Errorf("failed to open blob %s: %w", id, err)
	}
	meta.Size = int64(len(data))
	return &meta, io.NopCloser(bytes.NewReader(data)), nil
}
