package routehandlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tdnguyen/novelnest/auth"
	"github.com/tdnguyen/novelnest/datastore"
	"github.com/tdnguyen/novelnest/webutil"
)

type CommentHandler struct {
	Comments *datastore.CommentRepository
}

func NewCommentHandler(comments *datastore.CommentRepository) *CommentHandler {
	return &CommentHandler{Comments: comments}
}

// HandleAddComment appends the authenticated user's comment to a book.
func (h *CommentHandler) HandleAddComment(w http.ResponseWriter, r *http.Request) error {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		return webutil.ErrUnauthorized("")
	}

	var requestData struct {
		BookID  string `json:"book_id"`
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		return webutil.ErrBadRequest("Invalid request payload: " + err.Error())
	}
	defer r.Body.Close()

	if _, err := uuid.Parse(requestData.BookID); err != nil {
		return webutil.ErrBadRequest("Invalid book ID format")
	}
	if requestData.Comment == "" {
		return webutil.ErrBadRequest("Comment is required")
	}

	commentID, err := h.Comments.AddComment(r.Context(), requestData.BookID, user.ID, requestData.Comment)
	if err != nil {
		return fmt.Errorf("failed to add comment to %s: %w", requestData.BookID, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message":    "Success",
		"comment_id": commentID,
	})
	return nil
}

// HandleGetBookComments returns a book's comments.
func (h *CommentHandler) HandleGetBookComments(w http.ResponseWriter, r *http.Request) error {
	bookID := chi.URLParam(r, "book_id")
	if _, err := uuid.Parse(bookID); err != nil {
		return webutil.ErrBadRequest("Invalid book ID format")
	}

	comments, err := h.Comments.GetComments(r.Context(), bookID)
	if err != nil {
		return fmt.Errorf("failed to retrieve comments for %s: %w", bookID, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, comments)
	return nil
}
