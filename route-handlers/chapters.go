package routehandlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tdnguyen/novelnest/auth"
	"github.com/tdnguyen/novelnest/datastore"
	"github.com/tdnguyen/novelnest/models"
	"github.com/tdnguyen/novelnest/webutil"
)

type ChapterHandler struct {
	Chapters *datastore.ChapterRepository
}

func NewChapterHandler(chapters *datastore.ChapterRepository) *ChapterHandler {
	return &ChapterHandler{Chapters: chapters}
}

// HandleGetChapter returns one chapter plus the book's reading metadata
// (title and chapter count) for the reading view.
func (h *ChapterHandler) HandleGetChapter(w http.ResponseWriter, r *http.Request) error {
	bookID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(bookID); err != nil {
		return webutil.ErrBadRequest("Invalid book ID format")
	}

	number, err := strconv.Atoi(chi.URLParam(r, "num"))
	if err != nil || number < 1 {
		return webutil.ErrBadRequest("Invalid chapter number")
	}

	chapter, err := h.Chapters.GetChapter(r.Context(), bookID, number)
	if err != nil {
		return fmt.Errorf("failed to retrieve chapter %d of %s: %w", number, bookID, err)
	}
	if chapter == nil {
		return webutil.ErrNotFound("Chapter not found")
	}

	meta, err := h.Chapters.GetReadingMeta(r.Context(), bookID)
	if err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return webutil.ErrNotFound("Book not found")
		}
		return fmt.Errorf("failed to retrieve reading meta for %s: %w", bookID, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"chapter": chapter,
		"book":    meta,
	})
	return nil
}

// HandleAddChapter inserts a single chapter into an existing book.
// Only the book's owner may add chapters; anyone else gets 403.
func (h *ChapterHandler) HandleAddChapter(w http.ResponseWriter, r *http.Request) error {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		return webutil.ErrUnauthorized("")
	}

	var requestData struct {
		NovelID       string  `json:"novelId"`
		ChapterNumber int     `json:"chapterNumber"`
		ChapterName   string  `json:"chapterName"`
		Content       string  `json:"content"`
		Price         float64 `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		return webutil.ErrBadRequest("Invalid request payload: " + err.Error())
	}
	defer r.Body.Close()

	if _, err := uuid.Parse(requestData.NovelID); err != nil {
		return webutil.ErrBadRequest("Invalid novel ID format")
	}
	if requestData.ChapterNumber < 1 {
		return webutil.ErrBadRequest("Chapter number must be positive")
	}

	input := models.ChapterInput{
		Title:   requestData.ChapterName,
		Content: requestData.Content,
		Price:   requestData.Price,
	}

	chapterID, err := h.Chapters.AddChapter(r.Context(), requestData.NovelID, requestData.ChapterNumber, input, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, datastore.ErrNotOwner):
			return webutil.ErrForbidden("The book is not yours")
		case errors.Is(err, datastore.ErrNotFound):
			return webutil.ErrNotFound("Book not found")
		}
		return fmt.Errorf("failed to add chapter to %s: %w", requestData.NovelID, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message":    "Chapter stored successfully",
		"chapter_id": chapterID,
	})
	return nil
}
