package models

import "time"

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`    // Never exposed in API responses
	Name         *string   `json:"name"` // Pen name; nil until the user sets one
	Avatar       string    `json:"avatar"`
	IsActive     bool      `json:"is_active"`
	IsAdmin      bool      `json:"is_admin"`
	IsAuthor     bool      `json:"is_author"`
	CreatedAt    time.Time `json:"created_at"`
}
