package routehandlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tdnguyen/novelnest/auth"
	"github.com/tdnguyen/novelnest/datastore"
	"github.com/tdnguyen/novelnest/models"
	"github.com/tdnguyen/novelnest/webutil"
)

type BookHandler struct {
	Books *datastore.BookRepository
}

func NewBookHandler(books *datastore.BookRepository) *BookHandler {
	return &BookHandler{Books: books}
}

// HandleListBooks lists published books, filtered by optional title
// substring, genre, and author query parameters, sorted descending by
// rating (default) or update time.
func (h *BookHandler) HandleListBooks(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()

	filter := datastore.ListBooksFilter{
		ValidOnly: true,
		Title:     q.Get("title"),
		SortBy:    q.Get("sort"),
	}
	if genreID := q.Get("genre"); genreID != "" {
		if _, err := uuid.Parse(genreID); err != nil {
			return webutil.ErrBadRequest("Invalid genre ID format")
		}
		filter.GenreID = genreID
	}
	if authorID := q.Get("author"); authorID != "" {
		if _, err := uuid.Parse(authorID); err != nil {
			return webutil.ErrBadRequest("Invalid author ID format")
		}
		filter.AuthorID = authorID
	}

	books, err := h.Books.ListBooks(r.Context(), filter)
	if err != nil {
		return fmt.Errorf("failed to list books: %w", err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, books)
	return nil
}

// HandleGetBook returns the fully resolved book view.
func (h *BookHandler) HandleGetBook(w http.ResponseWriter, r *http.Request) error {
	bookID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(bookID); err != nil {
		return webutil.ErrBadRequest("Invalid book ID format")
	}

	book, err := h.Books.GetBook(r.Context(), bookID)
	if err != nil {
		return fmt.Errorf("failed to retrieve book %s: %w", bookID, err)
	}
	if book == nil {
		return webutil.ErrNotFound("Book not found")
	}

	webutil.RespondWithJSON(w, http.StatusOK, book)
	return nil
}

// HandleSubmitBook accepts an author's submission: the book with its
// chapters in reading order. The book lands pending until an admin
// approves it.
func (h *BookHandler) HandleSubmitBook(w http.ResponseWriter, r *http.Request) error {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		return webutil.ErrUnauthorized("")
	}

	var requestData struct {
		BookName    string                `json:"bookName"`
		Description string                `json:"description"`
		BookCover   string                `json:"bookCover"`
		Genres      []string              `json:"genres"`
		Chapters    []models.ChapterInput `json:"chapters"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		return webutil.ErrBadRequest("Invalid request payload: " + err.Error())
	}
	defer r.Body.Close()

	if requestData.BookName == "" {
		return webutil.ErrBadRequest("Book name is required")
	}
	if len(requestData.Chapters) == 0 {
		return webutil.ErrBadRequest("At least one chapter is required")
	}
	// The cover is a blob ID from /upload. Accepting anything else here
	// would leave a cover_id the cascade delete cannot match against
	// blobs, making the book undeletable.
	if requestData.BookCover != "" {
		if _, err := uuid.Parse(requestData.BookCover); err != nil {
			return webutil.ErrBadRequest("Invalid cover ID format")
		}
	}

	input := datastore.SubmitBookInput{
		Title:       requestData.BookName,
		Slug:        webutil.GenerateSlug(requestData.BookName),
		Description: requestData.Description,
		CoverID:     requestData.BookCover,
		GenreIDs:    requestData.Genres,
		Chapters:    requestData.Chapters,
	}

	bookID, err := h.Books.SubmitBook(r.Context(), input, user.ID)
	if err != nil {
		return fmt.Errorf("failed to submit book for %s: %w", user.ID, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message":  "Book sent successfully",
		"novel_id": bookID,
	})
	return nil
}

// HandleAuthorBooks lists the authenticated author's published books.
func (h *BookHandler) HandleAuthorBooks(w http.ResponseWriter, r *http.Request) error {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		return webutil.ErrUnauthorized("")
	}

	books, err := h.Books.ListBooks(r.Context(), datastore.ListBooksFilter{
		ValidOnly: true,
		AuthorID:  user.ID,
	})
	if err != nil {
		return fmt.Errorf("failed to list author books: %w", err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, books)
	return nil
}

// HandleSubmissionHistory lists the authenticated author's pending
// submissions, the ones still waiting on admin review.
func (h *BookHandler) HandleSubmissionHistory(w http.ResponseWriter, r *http.Request) error {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		return webutil.ErrUnauthorized("")
	}

	books, err := h.Books.ListBooks(r.Context(), datastore.ListBooksFilter{
		ValidOnly: false,
		AuthorID:  user.ID,
	})
	if err != nil {
		return fmt.Errorf("failed to list submission history: %w", err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, books)
	return nil
}
