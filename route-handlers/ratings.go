package routehandlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tdnguyen/novelnest/auth"
	"github.com/tdnguyen/novelnest/datastore"
	"github.com/tdnguyen/novelnest/webutil"
)

type RatingHandler struct {
	Ratings *datastore.RatingRepository
}

func NewRatingHandler(ratings *datastore.RatingRepository) *RatingHandler {
	return &RatingHandler{Ratings: ratings}
}

// HandleAddRating records the authenticated user's rating for a book.
// Rating the same book twice is not an error: the first rating stands
// and the response says so.
func (h *RatingHandler) HandleAddRating(w http.ResponseWriter, r *http.Request) error {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		return webutil.ErrUnauthorized("")
	}

	var requestData struct {
		BookID string `json:"book_id"`
		Star   int    `json:"star"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		return webutil.ErrBadRequest("Invalid request payload: " + err.Error())
	}
	defer r.Body.Close()

	if _, err := uuid.Parse(requestData.BookID); err != nil {
		return webutil.ErrBadRequest("Invalid book ID format")
	}

	ratingID, err := h.Ratings.AddRating(r.Context(), requestData.BookID, user.ID, requestData.Star)
	if err != nil {
		switch {
		case errors.Is(err, datastore.ErrInvalidStar):
			return webutil.ErrBadRequestWrap("Star must be between 0 and 5", err)
		case errors.Is(err, datastore.ErrAlreadyRated):
			webutil.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "You have already rated"})
			return nil
		}
		return fmt.Errorf("failed to add rating for %s: %w", requestData.BookID, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message":   "Thank for your rating",
		"rating_id": ratingID,
	})
	return nil
}

// HandleGetRatings returns all ratings for a book.
func (h *RatingHandler) HandleGetRatings(w http.ResponseWriter, r *http.Request) error {
	bookID := chi.URLParam(r, "book_id")
	if _, err := uuid.Parse(bookID); err != nil {
		return webutil.ErrBadRequest("Invalid book ID format")
	}

	ratings, err := h.Ratings.GetRatings(r.Context(), bookID)
	if err != nil {
		return fmt.Errorf("failed to retrieve ratings for %s: %w", bookID, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, ratings)
	return nil
}
