package datastore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tdnguyen/novelnest/models"
)

type StatsRepository struct {
	db *sql.DB
}

func NewStatsRepository(db *sql.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// GetGenreStats counts how many books carry each genre, most-used first.
func (r *StatsRepository) GetGenreStats(ctx context.Context) ([]models.GenreStat, error) {
	query := `
		SELECT g.name, COUNT(bg.book_id)
		FROM genres g
		LEFT JOIN book_genres bg ON bg.genre_id = g.id
		GROUP BY g.name
		ORDER BY COUNT(bg.book_id) DESC, g.name ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query genre stats: %w", err)
	}
	defer rows.Close()

	var stats []models.GenreStat
	for rows.Next() {
		var s models.GenreStat
		if err := rows.Scan(&s.Genre, &s.BookCount); err != nil {
			return nil, fmt.Errorf("failed to scan genre stat row: %w", err)
		}
		stats = append(stats, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating genre stat rows: %w", err)
	}

	if stats == nil {
		stats = []models.GenreStat{}
	}
	return stats, nil
}

// GetNovelStats counts books created per calendar day, ascending by date.
func (r *StatsRepository) GetNovelStats(ctx context.Context) ([]models.NovelStat, error) {
	query := `
		SELECT TO_CHAR(created_at::date, 'YYYY-MM-DD'), COUNT(id)
		FROM books
		GROUP BY created_at::date
		ORDER BY created_at::date ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query novel stats: %w", err)
	}
	defer rows.Close()

	var stats []models.NovelStat
	for rows.Next() {
		var s models.NovelStat
		if err := rows.Scan(&s.Date, &s.Count); err != nil {
			return nil, fmt.Errorf("failed to scan novel stat row: %w", err)
		}
		stats = append(stats, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating novel stat rows: %w", err)
	}

	if stats == nil {
		stats = []models.NovelStat{}
	}
	return stats, nil
}
