package models

import "time"

// Book is the stored novel record. Genre membership lives in the
// book_genres join table and is resolved into names on read.
type Book struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CoverID     string    `json:"cover"`
	AuthorID    string    `json:"author_id"`
	IsValid     bool      `json:"is_valid"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BookSummary is the listing shape: the stored fields readers browse by,
// plus the rating aggregate the list is sorted on.
type BookSummary struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	CoverID       string    `json:"cover"`
	UpdatedAt     time.Time `json:"updated_at"`
	AverageRating float64   `json:"average_rating"`
	RatingCount   int       `json:"rating_count"`
}

// BookDetail is the fully resolved view of a single book: genre names in
// stored order, the author's display name, chapters ascending by number,
// and the rating aggregate.
type BookDetail struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description"`
	CoverID       string    `json:"cover"`
	Author        string    `json:"author"`
	Genres        []string  `json:"genres"`
	Chapters      []Chapter `json:"chapters"`
	IsValid       bool      `json:"is_valid"`
	AverageRating float64   `json:"average_rating"`
	RatingCount   int       `json:"rating_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ReadingMeta accompanies a single chapter in the reading view.
type ReadingMeta struct {
	Title        string `json:"title"`
	ChapterCount int    `json:"chapter_count"`
}
