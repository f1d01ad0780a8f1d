package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/harshyelwatkar/rapmania/internal/apperror"
	"github.com/harshyelwatkar/rapmania/internal/auth"
	"github.com/harshyelwatkar/rapmania/internal/model"
	"github.com/harshyelwatkar/rapmania/internal/service"
)

// RapHandler owns the saved-lyric endpoints: create, the three read lists,
// single reads, updates, deletes, and likes.
type RapHandler struct {
	raps   *service.RapService
	logger *slog.Logger
}

func NewRapHandler(raps *service.RapService, logger *slog.Logger) *RapHandler {
	return &RapHandler{raps: raps, logger: logger}
}

// likeResponse is the body for like/unlike/count responses. Like is omitted
// on the responses that don't carry a row.
type likeResponse struct {
	Like  *model.Like `json:"like,omitempty"`
	Count int         `json:"count"`
}

// HandleCreate saves a rap owned by the session user.
//
// HTTP: POST /api/rap
// Auth: Required
// BODY: {"genreId": "...", "topic": "...", "stanzaCount": 8,
//        "explicit": false, "content": "...", "isPublic": true}
//
// Any owner field in the body is ignored — ownership always comes from the
// session.
func (h *RapHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	var req struct {
		GenreID     string `json:"genreId"`
		Topic       string `json:"topic"`
		StanzaCount int    `json:"stanzaCount"`
		Explicit    bool   `json:"explicit"`
		Content     string `json:"content"`
		IsPublic    bool   `json:"isPublic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	rap, err := h.raps.Create(r.Context(), userID, service.CreateRapInput{
		GenreID:     req.GenreID,
		Topic:       req.Topic,
		StanzaCount: req.StanzaCount,
		Explicit:    req.Explicit,
		Content:     req.Content,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, rap)
}

// HandleListMine returns the session user's raps, newest first. Private
// entries included — it's their own library.
//
// HTTP: GET /api/rap/user
// Auth: Required
func (h *RapHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	raps, err := h.raps.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list user raps", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, raps)
}

// HandleListPublic returns the public feed, newest first.
//
// HTTP: GET /api/rap/public
func (h *RapHandler) HandleListPublic(w http.ResponseWriter, r *http.Request) {
	raps, err := h.raps.ListPublic(r.Context())
	if err != nil {
		h.logger.Error("failed to list public raps", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, raps)
}

// HandleSearch searches the public feed.
//
// HTTP: GET /api/rap/search?q=...
//
// The minimum query length is a caller-side contract: shorter queries are a
// 400 here and the service below is never invoked.
func (h *RapHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if len(query) < service.MinSearchLength {
		writeError(w, apperror.ValidationFailed("q",
			fmt.Sprintf("search query must be at least %d characters", service.MinSearchLength)))
		return
	}

	raps, err := h.raps.Search(r.Context(), query)
	if err != nil {
		h.logger.Error("search failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, raps)
}

// HandleGet returns a single rap, access-gated.
//
// HTTP: GET /api/rap/{id}
// Auth: Optional — anonymous callers can read public raps; private raps are
// forbidden for everyone but the owner.
func (h *RapHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	// Anonymous callers carry an empty ID; the read rule treats that as
	// "not the owner".
	callerID, _ := auth.UserIDFromContext(r.Context())

	rap, err := h.raps.GetByID(r.Context(), id, callerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rap)
}

// HandleUpdate applies a partial update to an owned rap.
//
// HTTP: PUT /api/rap/{id}
// Auth: Required, owner only
//
// Pointer fields distinguish "absent" from "zero": `"isPublic": false` flips
// the flag, while omitting it leaves the flag alone.
func (h *RapHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	var req struct {
		GenreID     *string `json:"genreId"`
		Topic       *string `json:"topic"`
		StanzaCount *int    `json:"stanzaCount"`
		Explicit    *bool   `json:"explicit"`
		Content     *string `json:"content"`
		IsPublic    *bool   `json:"isPublic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	rap, err := h.raps.Update(r.Context(), r.PathValue("id"), userID, service.UpdateRapInput{
		GenreID:     req.GenreID,
		Topic:       req.Topic,
		StanzaCount: req.StanzaCount,
		Explicit:    req.Explicit,
		Content:     req.Content,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rap)
}

// HandleDelete removes an owned rap. Its likes go with it.
//
// HTTP: DELETE /api/rap/{id}
// Auth: Required, owner only
func (h *RapHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	if err := h.raps.Delete(r.Context(), r.PathValue("id"), userID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleLike records the session user's like.
//
// HTTP: POST /api/rap/{id}/like
// Auth: Required (any authenticated user, not owner-gated)
//
// Idempotent: liking twice returns the existing like and the same count.
func (h *RapHandler) HandleLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	like, count, err := h.raps.Like(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, likeResponse{Like: like, Count: count})
}

// HandleUnlike removes the session user's like, if any.
//
// HTTP: DELETE /api/rap/{id}/like
// Auth: Required
func (h *RapHandler) HandleUnlike(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	count, err := h.raps.Unlike(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, likeResponse{Count: count})
}

// HandleLikeCount returns the like count for a rap.
//
// HTTP: GET /api/rap/{id}/likes
func (h *RapHandler) HandleLikeCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.raps.LikeCount(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, likeResponse{Count: count})
}
