package datastore

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema statements applied in order at startup. Each statement is
// idempotent so repeated application is safe.
var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		name TEXT,
		avatar TEXT NOT NULL DEFAULT './default-avt.jpg',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		is_author BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS genres (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS blobs (
		id UUID PRIMARY KEY,
		filename TEXT NOT NULL,
		content_type TEXT NOT NULL,
		data BYTEA NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS books (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		slug TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		cover_id TEXT NOT NULL DEFAULT '',
		author_id UUID NOT NULL REFERENCES users(id),
		is_valid BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS book_genres (
		book_id UUID NOT NULL REFERENCES books(id) ON DELETE CASCADE,
		genre_id UUID NOT NULL REFERENCES genres(id),
		position INT NOT NULL,
		PRIMARY KEY (book_id, genre_id)
	)`,
	`CREATE TABLE IF NOT EXISTS chapters (
		id UUID PRIMARY KEY,
		book_id UUID NOT NULL REFERENCES books(id),
		chapter_number INT NOT NULL,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		price DOUBLE PRECISION NOT NULL DEFAULT 0,
		UNIQUE (book_id, chapter_number)
	)`,
	`CREATE TABLE IF NOT EXISTS ratings (
		id UUID PRIMARY KEY,
		book_id UUID NOT NULL REFERENCES books(id),
		user_id UUID NOT NULL REFERENCES users(id),
		star INT NOT NULL CHECK (star >= 0 AND star <= 5),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (book_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id UUID PRIMARY KEY,
		book_id UUID NOT NULL REFERENCES books(id),
		user_id UUID NOT NULL REFERENCES users(id),
		content TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// ApplyMigrations runs the schema statements against the database.
// The ratings (book_id, user_id) and chapters (book_id, chapter_number)
// unique constraints are load-bearing: concurrent writers race past the
// application-level existence checks and the constraints are what keep
// duplicates out.
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrationStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}
