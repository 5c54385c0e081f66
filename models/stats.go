package models

type GenreStat struct {
	Genre     string `json:"genre"`
	BookCount int    `json:"book_count"`
}

type NovelStat struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}
