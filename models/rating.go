package models

import "time"

// Rating is unique per (BookID, UserID); the database enforces the pair.
type Rating struct {
	ID        string    `json:"id"`
	BookID    string    `json:"book_id"`
	UserID    string    `json:"user_id"`
	Star      int       `json:"star"` // 0..5
	CreatedAt time.Time `json:"created_at"`
}

// RatingAggregate is the computed average and count over all ratings
// for a book. Zero-valued when the book has no ratings.
type RatingAggregate struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}
