package routehandlers

import (
	"fmt"
	"net/http"

	"github.com/tdnguyen/novelnest/datastore"
	"github.com/tdnguyen/novelnest/webutil"
)

type GenreHandler struct {
	Genres *datastore.GenreRepository
}

func NewGenreHandler(genres *datastore.GenreRepository) *GenreHandler {
	return &GenreHandler{Genres: genres}
}

func (h *GenreHandler) HandleGetGenres(w http.ResponseWriter, r *http.Request) error {
	genres, err := h.Genres.GetGenres(r.Context())
	if err != nil {
		return fmt.Errorf("failed to retrieve genres: %w", err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, genres)
	return nil
}
