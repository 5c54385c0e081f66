package datastore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tdnguyen/novelnest/models"
)

type GenreRepository struct {
	db *sql.DB
}

func NewGenreRepository(db *sql.DB) *GenreRepository {
	return &GenreRepository{db: db}
}

// GetGenres returns the full genre reference list. Genres are seeded
// out-of-band and never mutated through the API.
func (r *GenreRepository) GetGenres(ctx context.Context) ([]models.Genre, error) {
	query := `SELECT id, name, description FROM genres ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query genres: %w", err)
	}
	defer rows.Close()

	var genres []models.Genre
	for rows.Next() {
		var g models.Genre
		if err := rows.Scan(&g.ID, &g.Name, &g.Description); err != nil {
			return nil, fmt.Errorf("failed to scan genre row: %w", err)
		}
		genres = append(genres, g)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating genre rows: %w", err)
	}

	if genres == nil {
		genres = []models.Genre{}
	}
	return genres, nil
}
