package routehandlers

import (
	"fmt"
	"net/http"

	"github.com/tdnguyen/novelnest/datastore"
	"github.com/tdnguyen/novelnest/webutil"
)

type StatsHandler struct {
	Stats *datastore.StatsRepository
}

func NewStatsHandler(stats *datastore.StatsRepository) *StatsHandler {
	return &StatsHandler{Stats: stats}
}

// HandleGenreStats returns how many books carry each genre.
func (h *StatsHandler) HandleGenreStats(w http.ResponseWriter, r *http.Request) error {
	stats, err := h.Stats.GetGenreStats(r.Context())
	if err != nil {
		return fmt.Errorf("failed to retrieve genre stats: %w", err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, stats)
	return nil
}

// HandleNovelStats returns books created per calendar day, ascending.
func (h *StatsHandler) HandleNovelStats(w http.ResponseWriter, r *http.Request) error {
	stats, err := h.Stats.GetNovelStats(r.Context())
	if err != nil {
		return fmt.Errorf("failed to retrieve novel stats: %w", err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, stats)
	return nil
}
