package handler

import (
	"log/slog"
	"net/http"

	"github.com/harshyelwatkar/rapmania/internal/repository"
)

// GenreHandler serves the static genre reference data.
type GenreHandler struct {
	genres repository.GenreRepository
	logger *slog.Logger
}

func NewGenreHandler(genres repository.GenreRepository, logger *slog.Logger) *GenreHandler {
	return &GenreHandler{genres: genres, logger: logger}
}

// HandleList returns all genres.
//
// HTTP: GET /api/genres
func (h *GenreHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	genres, err := h.genres.ListGenres(r.Context())
	if err != nil {
		h.logger.Error("failed to list genres", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, genres)
}
