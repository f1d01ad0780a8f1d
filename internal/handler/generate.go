package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/harshyelwatkar/rapmania/internal/apperror"
	"github.com/harshyelwatkar/rapmania/internal/generator"
	"github.com/harshyelwatkar/rapmania/internal/service"
)

// minTopicLength keeps the provider from being invoked on throwaway input.
const minTopicLength = 3

// GenerateHandler turns a generation request into lyric text. Nothing is
// persisted here — saving is a separate, explicit POST /api/rap.
//
// The gen field is nil when the provider credential isn't configured. The
// handler then reports a misconfigured deployment without attempting
// generation, the same way the playground-style executors degrade when their
// backend is absent.
type GenerateHandler struct {
	gen    generator.Generator
	logger *slog.Logger
}

func NewGenerateHandler(gen generator.Generator, logger *slog.Logger) *GenerateHandler {
	return &GenerateHandler{gen: gen, logger: logger}
}

// HandleGenerate produces lyrics for the posted parameters.
//
// HTTP: POST /api/rap/generate
// Auth: Required
// BODY: {"genre": "...", "topic": "...", "stanzaCount": 8, "explicit": false}
//
// Validation failures are field-level 400s and never reach the generator.
// Once validation passes, the response is always 200 with non-empty content —
// the generator absorbs provider failures through its fallback chain.
func (h *GenerateHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generator.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	req.Topic = strings.TrimSpace(req.Topic)
	req.Genre = strings.TrimSpace(req.Genre)

	switch {
	case req.Topic == "":
		writeError(w, apperror.ValidationFailed("topic", "topic is required"))
		return
	case len(req.Topic) < minTopicLength:
		writeError(w, apperror.ValidationFailed("topic",
			fmt.Sprintf("topic must be at least %d characters", minTopicLength)))
		return
	case len(req.Topic) > service.MaxTopicLength:
		writeError(w, apperror.ValidationFailed("topic",
			fmt.Sprintf("topic must be %d characters or less", service.MaxTopicLength)))
		return
	case req.Genre == "":
		writeError(w, apperror.ValidationFailed("genre", "genre is required"))
		return
	case req.StanzaCount < service.MinStanzaCount || req.StanzaCount > service.MaxStanzaCount:
		writeError(w, apperror.ValidationFailed("stanzaCount",
			fmt.Sprintf("stanzaCount must be between %d and %d",
				service.MinStanzaCount, service.MaxStanzaCount)))
		return
	}

	if h.gen == nil {
		writeError(w, apperror.Misconfigured("lyric generation is not configured: GEMINI_API_KEY is not set"))
		return
	}

	result, err := h.gen.Generate(r.Context(), req)
	if err != nil {
		// Only precondition violations reach here, and validation above
		// already rules them out. Log and keep the detail internal.
		h.logger.Error("generation failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "lyric generation failed",
		})
		return
	}

	h.logger.Info("lyrics generated",
		slog.String("genre", req.Genre),
		slog.String("source", string(result.Source)),
	)

	writeJSON(w, http.StatusOK, result)
}
