package models

type Chapter struct {
	ID      string  `json:"id"`
	BookID  string  `json:"book_id"`
	Number  int     `json:"chapter_number"` // 1-based, unique within a book
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Price   float64 `json:"price"`
}

// ChapterInput is a chapter as submitted by an author, before a number
// has been assigned.
type ChapterInput struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Price   float64 `json:"price"`
}
