package routehandlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tdnguyen/novelnest/datastore"
	"github.com/tdnguyen/novelnest/models"
	"github.com/tdnguyen/novelnest/webutil"
)

// AdminHandler serves the moderation surface. The admin gate itself
// lives in the router middleware; these handlers assume it has run.
type AdminHandler struct {
	Books    *datastore.BookRepository
	Users    *datastore.UserRepository
	Comments *datastore.CommentRepository
}

func NewAdminHandler(books *datastore.BookRepository, users *datastore.UserRepository, comments *datastore.CommentRepository) *AdminHandler {
	return &AdminHandler{Books: books, Users: users, Comments: comments}
}

// HandlePendingBooks returns the full detail view of every book still
// waiting on review.
func (h *AdminHandler) HandlePendingBooks(w http.ResponseWriter, r *http.Request) error {
	pending, err := h.Books.ListBooks(r.Context(), datastore.ListBooksFilter{ValidOnly: false})
	if err != nil {
		return fmt.Errorf("failed to list pending books: %w", err)
	}

	novels := []models.BookDetail{}
	for _, summary := range pending {
		detail, err := h.Books.GetBook(r.Context(), summary.ID)
		if err != nil {
			return fmt.Errorf("failed to resolve pending book %s: %w", summary.ID, err)
		}
		if detail == nil {
			// Deleted between the list and the lookup; skip it.
			continue
		}
		novels = append(novels, *detail)
	}

	webutil.RespondWithJSON(w, http.StatusOK, novels)
	return nil
}

// HandleApproveBook publishes a pending book and promotes its author.
func (h *AdminHandler) HandleApproveBook(w http.ResponseWriter, r *http.Request) error {
	bookID, err := decodeBookIDBody(r)
	if err != nil {
		return err
	}

	if err := h.Books.ApproveBook(r.Context(), bookID); err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return webutil.ErrNotFound("Book not found")
		}
		return fmt.Errorf("failed to approve book %s: %w", bookID, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Book upload successfully!!!"})
	return nil
}

// HandleRejectBook removes a pending submission entirely: the book, its
// chapters, and its cover blob.
func (h *AdminHandler) HandleRejectBook(w http.ResponseWriter, r *http.Request) error {
	bookID, err := decodeBookIDBody(r)
	if err != nil {
		return err
	}

	if _, err := h.Books.DeleteBookCascade(r.Context(), bookID); err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return webutil.ErrNotFound("Book not found")
		}
		return fmt.Errorf("failed to reject book %s: %w", bookID, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Reject successfully!!!"})
	return nil
}

// HandleDeleteBook removes a book and everything referencing it.
func (h *AdminHandler) HandleDeleteBook(w http.ResponseWriter, r *http.Request) error {
	bookID := chi.URLParam(r, "book_id")
	if _, err := uuid.Parse(bookID); err != nil {
		return webutil.ErrBadRequest("Invalid book ID format")
	}

	chaptersDeleted, err := h.Books.DeleteBookCascade(r.Context(), bookID)
	if err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return webutil.ErrNotFound("Book not found")
		}
		return fmt.Errorf("failed to delete book %s: %w", bookID, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"message":                "Book and associated chapters deleted successfully",
		"chapters_deleted_count": chaptersDeleted,
	})
	return nil
}

// HandleGetUsers lists every account.
func (h *AdminHandler) HandleGetUsers(w http.ResponseWriter, r *http.Request) error {
	users, err := h.Users.GetUsers(r.Context())
	if err != nil {
		return fmt.Errorf("failed to retrieve users: %w", err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, users)
	return nil
}

// HandleToggleUserActive flips an account's active flag. Deactivation
// takes effect immediately, outstanding tokens included.
func (h *AdminHandler) HandleToggleUserActive(w http.ResponseWriter, r *http.Request) error {
	var requestData struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		return webutil.ErrBadRequest("Invalid request payload: " + err.Error())
	}
	defer r.Body.Close()

	if _, err := uuid.Parse(requestData.UserID); err != nil {
		return webutil.ErrBadRequest("Invalid user ID format")
	}

	if err := h.Users.ToggleUserActive(r.Context(), requestData.UserID); err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return webutil.ErrNotFound("User not found")
		}
		return fmt.Errorf("failed to toggle active flag for %s: %w", requestData.UserID, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Successfully!!!"})
	return nil
}

// HandleGetAllComments lists every comment for moderation.
func (h *AdminHandler) HandleGetAllComments(w http.ResponseWriter, r *http.Request) error {
	comments, err := h.Comments.GetAllComments(r.Context())
	if err != nil {
		return fmt.Errorf("failed to retrieve comments: %w", err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, comments)
	return nil
}

// HandleDeleteComment removes a comment.
func (h *AdminHandler) HandleDeleteComment(w http.ResponseWriter, r *http.Request) error {
	var requestData struct {
		CommentID string `json:"comment_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		return webutil.ErrBadRequest("Invalid request payload: " + err.Error())
	}
	defer r.Body.Close()

	if _, err := uuid.Parse(requestData.CommentID); err != nil {
		return webutil.ErrBadRequest("Invalid comment ID format")
	}

	if err := h.Comments.DeleteComment(r.Context(), requestData.CommentID); err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return webutil.ErrNotFound("Comment not found")
		}
		return fmt.Errorf("failed to delete comment %s: %w", requestData.CommentID, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Successfully!!!"})
	return nil
}

// decodeBookIDBody reads the {"book_id": ...} body shared by the
// approve and reject routes.
func decodeBookIDBody(r *http.Request) (string, error) {
	var requestData struct {
		BookID string `json:"book_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		return "", webutil.ErrBadRequest("Invalid request payload: " + err.Error())
	}
	defer r.Body.Close()

	if _, err := uuid.Parse(requestData.BookID); err != nil {
		return "", webutil.ErrBadRequest("Invalid book ID format")
	}
	return requestData.BookID, nil
}
