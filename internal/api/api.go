/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package api exposes the recommendation HTTP surface.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/friendsincode/soundlog/internal/curation"
	"github.com/friendsincode/soundlog/internal/recommend"
)

// API exposes HTTP handlers.
type API struct {
	orchestrator *recommend.Orchestrator
	logger       zerolog.Logger
}

// New creates the API router wrapper.
func New(orchestrator *recommend.Orchestrator, logger zerolog.Logger) *API {
	return &API{
		orchestrator: orchestrator,
		logger:       logger.With().Str("component", "api").Logger(),
	}
}

// Routes mounts all endpoints under /api/v1.
func (a *API) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", a.handleHealth)

		r.Route("/recommendations", func(r chi.Router) {
			r.Get("/smart", a.handleSmartRecommendations)
			r.Get("/ai", a.handleAIRecommendations)
			r.Get("/moods", a.handleMoods)
			r.Get("/mood/{mood}", a.handleMoodRecommendations)
		})
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleSmartRecommendations(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)
	mood := curation.Mood(r.URL.Query().Get("mood"))

	result := a.orchestrator.GetSmartRecommendations(r.Context(), userID, mood)
	writeJSON(w, http.StatusOK, map[string]any{
		"recommendations": result,
		"aiRateLimitInfo": a.orchestrator.QuotaStats(),
	})
}

func (a *API) handleMoodRecommendations(w http.ResponseWriter, r *http.Request) {
	mood := curation.Mood(chi.URLParam(r, "mood"))

	result, err := a.orchestrator.GetMoodRecommendations(r.Context(), mood)
	if err != nil {
		var valErr *recommend.ValidationError
		if errors.As(err, &valErr) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":      "invalid_mood",
				"message":    valErr.Error(),
				"validMoods": valErr.ValidValues,
			})
			return
		}
		a.logger.Error().Err(err).Msg("mood recommendations failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"recommendations": result,
		"aiRateLimitInfo": a.orchestrator.QuotaStats(),
	})
}

func (a *API) handleAIRecommendations(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)
	mood := curation.Mood(r.URL.Query().Get("mood"))

	result, err := a.orchestrator.GetAIRecommendations(r.Context(), userID, mood)
	if err != nil {
		var quotaErr *recommend.QuotaExhaustedError
		if errors.As(err, &quotaErr) {
			retrySeconds := int(quotaErr.RetryAfter.Seconds() + 0.5)
			if retrySeconds < 1 {
				retrySeconds = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retrySeconds))
			writeJSON(w, http.StatusTooManyRequests, map[string]any{
				"error":           "quota_exhausted",
				"message":         quotaErr.Error(),
				"retryAfter":      retrySeconds,
				"aiRateLimitInfo": a.orchestrator.QuotaStats(),
			})
			return
		}
		a.logger.Error().Err(err).Msg("AI recommendations failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"recommendations": result,
		"aiRateLimitInfo": a.orchestrator.QuotaStats(),
		"aiPowered":       true,
	})
}

func (a *API) handleMoods(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"availableMoods": curation.MoodNames(),
	})
}

// requestUserID identifies the caller. Authentication lives upstream; the
// gateway forwards the resolved identity in a header.
func requestUserID(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	return r.URL.Query().Get("user_id")
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
