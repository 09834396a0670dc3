/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package taste derives a listening profile from a user's ratings and
// reviews. The AI path is optional and quota-governed; every branch has a
// deterministic heuristic fallback so analysis never fails.
package taste

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/soundlog/internal/ai"
	"github.com/friendsincode/soundlog/internal/curation"
	"github.com/friendsincode/soundlog/internal/models"
	"github.com/friendsincode/soundlog/internal/quota"
	"github.com/friendsincode/soundlog/internal/telemetry"
)

const (
	minRatingsForAI    = 3
	highScoreThreshold = 70
	lowScoreThreshold  = 30
	maxHighRatings     = 10
	maxLowRatings      = 5
	maxReviews         = 5
	maxReviewChars     = 200
	maxQueryChars      = 100
	aiCallTimeout      = 8 * time.Second
)

// Analyzer converts taste signals into profiles and search queries.
type Analyzer struct {
	ai       ai.Client // nil when no credential is configured
	governor *quota.Governor
	logger   zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewAnalyzer creates an analyzer. Pass a nil ai.Client to force the
// deterministic heuristic everywhere.
func NewAnalyzer(aiClient ai.Client, governor *quota.Governor, rng *rand.Rand, logger zerolog.Logger) *Analyzer {
	return &Analyzer{
		ai:       aiClient,
		governor: governor,
		rng:      rng,
		logger:   logger.With().Str("component", "taste").Logger(),
	}
}

// Analyze produces a TasteProfile, preferring an AI summary when permitted
// and enough signal exists. It never returns an error; AI failures fall back
// to the heuristic.
func (a *Analyzer) Analyze(ctx context.Context, ratings []models.Rating, reviews []models.Review, forceAI bool) models.TasteProfile {
	if a.ai == nil {
		return a.basicProfile(ratings, reviews)
	}
	if !forceAI && !a.governor.CanMakeRequest() {
		return a.basicProfile(ratings, reviews)
	}
	if len(ratings) < minRatingsForAI {
		return a.basicProfile(ratings, reviews)
	}
	if !a.governor.CanMakeRequestAndRecord() {
		return a.basicProfile(ratings, reviews)
	}

	callCtx, cancel := context.WithTimeout(ctx, aiCallTimeout)
	defer cancel()

	raw, err := a.ai.GenerateContent(callCtx, buildProfilePrompt(ratings, reviews))
	if err != nil {
		a.governor.UndoLastRequest()
		telemetry.AIRequests.WithLabelValues(string(ai.Classify(err))).Inc()
		a.logger.Warn().Err(err).Str("class", string(ai.Classify(err))).Msg("AI profile generation failed, using heuristic")
		return a.basicProfile(ratings, reviews)
	}

	profile, err := parseProfile(raw)
	if err != nil {
		a.governor.UndoLastRequest()
		telemetry.AIRequests.WithLabelValues(string(ai.FailureOther)).Inc()
		a.logger.Warn().Err(err).Str("class", string(ai.FailureOther)).Msg("AI profile unparseable, using heuristic")
		return a.basicProfile(ratings, reviews)
	}
	telemetry.AIRequests.WithLabelValues("ok").Inc()
	return profile
}

// GenerateSearchQuery builds a provider search query from the profile,
// AI-assisted when allowed, deterministic otherwise. The returned query
// always carries the provider's artist filter syntax.
func (a *Analyzer) GenerateSearchQuery(ctx context.Context, profile models.TasteProfile, mood curation.Mood, itemType string, forceAI bool) string {
	fallback := a.fallbackQuery(mood)

	if a.ai == nil {
		return fallback
	}
	if !forceAI && !a.governor.CanMakeRequest() {
		return fallback
	}
	if !a.governor.CanMakeRequestAndRecord() {
		return fallback
	}

	callCtx, cancel := context.WithTimeout(ctx, aiCallTimeout)
	defer cancel()

	raw, err := a.ai.GenerateContent(callCtx, buildQueryPrompt(profile, mood, itemType))
	if err != nil {
		a.governor.UndoLastRequest()
		telemetry.AIRequests.WithLabelValues(string(ai.Classify(err))).Inc()
		a.logger.Warn().Err(err).Str("class", string(ai.Classify(err))).Msg("AI query generation failed, using curated fallback")
		return fallback
	}
	telemetry.AIRequests.WithLabelValues("ok").Inc()

	query := cleanQuery(raw)
	if !strings.Contains(query, `artist:"`) {
		a.logger.Debug().Str("query", query).Msg("AI query missing artist filter, discarding")
		return fallback
	}
	return query
}

// ExtractGenres derives up to three valid genre seeds from a profile plus
// the mood's lead genre, padded from the vocabulary when short.
func (a *Analyzer) ExtractGenres(profile models.TasteProfile, mood curation.Mood) []string {
	genres := make([]string, 0, 3)
	for _, g := range profile.PreferredGenres {
		if curation.ValidGenre(g) {
			genres = append(genres, g)
		}
		if len(genres) == 2 {
			break
		}
	}

	moodGenre := curation.PrimaryGenre(mood)
	if curation.ValidGenre(moodGenre) && !containsString(genres, moodGenre) && len(genres) < 3 {
		genres = append(genres, moodGenre)
	}

	a.mu.Lock()
	for len(genres) < 3 {
		candidate := curation.RandomGenre(a.rng)
		if !containsString(genres, candidate) {
			genres = append(genres, candidate)
		}
	}
	a.mu.Unlock()

	return curation.FilterValidGenres(genres)
}

// basicProfile is the deterministic heuristic: a mean-score bucketed genre
// bundle plus a templated summary.
func (a *Analyzer) basicProfile(ratings []models.Rating, reviews []models.Review) models.TasteProfile {
	mean := 50
	if len(ratings) > 0 {
		total := 0
		for _, r := range ratings {
			total += r.Score
		}
		mean = total / len(ratings)
	}

	highCount := 0
	for _, r := range ratings {
		if r.Score >= highScoreThreshold {
			highCount++
		}
	}

	var genres []string
	switch {
	case mean > 75:
		genres = []string{"pop", "rock", "indie"}
	case mean < 40:
		genres = []string{"alternative", "electronic", "ambient"}
	case highCount > 10:
		genres = []string{"rock", "indie", "folk"}
	default:
		genres = []string{"pop", "indie", "alternative"}
	}

	characteristics := []string{"selective listener", "values craft over hype"}
	if mean > 70 {
		characteristics = []string{"enthusiastic listener", "open to new releases"}
	}

	return models.TasteProfile{
		Summary:         fmt.Sprintf("Listener with %d ratings averaging %d/100.", len(ratings), mean),
		PreferredGenres: genres,
		Characteristics: characteristics,
	}
}

func (a *Analyzer) fallbackQuery(mood curation.Mood) string {
	a.mu.Lock()
	artist := curation.RandomArtist(a.rng, mood)
	a.mu.Unlock()
	if artist == "" {
		return fmt.Sprintf("genre:%s", curation.PrimaryGenre(mood))
	}
	return fmt.Sprintf("artist:%q", artist)
}

func buildProfilePrompt(ratings []models.Rating, reviews []models.Review) string {
	var b strings.Builder
	b.WriteString("You are a music taste analyst. From the listening signals below, ")
	b.WriteString("return ONLY a JSON object {\"summary\": string, \"preferredGenres\": [3-5 strings], \"characteristics\": [strings]}. ")
	b.WriteString("Genres must come from this list: ")
	b.WriteString(strings.Join(curation.Genres(), ", "))
	b.WriteString(".\n\nHighly rated:\n")

	high := 0
	for _, r := range ratings {
		if r.Score >= highScoreThreshold && high < maxHighRatings {
			fmt.Fprintf(&b, "- %s (%d/100)\n", r.ItemName, r.Score)
			high++
		}
	}

	b.WriteString("\nDisliked:\n")
	low := 0
	for _, r := range ratings {
		if r.Score <= lowScoreThreshold && low < maxLowRatings {
			fmt.Fprintf(&b, "- %s (%d/100)\n", r.ItemName, r.Score)
			low++
		}
	}

	b.WriteString("\nRecent reviews:\n")
	for i, review := range reviews {
		if i == maxReviews {
			break
		}
		text := review.Content
		if len(text) > maxReviewChars {
			text = text[:maxReviewChars]
		}
		fmt.Fprintf(&b, "- %s: %s\n", review.ItemName, text)
	}

	return b.String()
}

func buildQueryPrompt(profile models.TasteProfile, mood curation.Mood, itemType string) string {
	return fmt.Sprintf(
		"Produce one Spotify %s search query matching this taste: %s (genres: %s), mood: %s. "+
			"The query must include an artist filter like artist:\"Name\". Reply with the query only.",
		itemType, profile.Summary, strings.Join(profile.PreferredGenres, ", "), mood,
	)
}

func parseProfile(raw string) (models.TasteProfile, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var profile models.TasteProfile
	if err := json.Unmarshal([]byte(cleaned), &profile); err != nil {
		return models.TasteProfile{}, fmt.Errorf("parse profile: %w", err)
	}
	if profile.Summary == "" {
		return models.TasteProfile{}, fmt.Errorf("parse profile: missing summary")
	}

	profile.PreferredGenres = curation.FilterValidGenres(profile.PreferredGenres)
	if len(profile.PreferredGenres) == 0 {
		return models.TasteProfile{}, fmt.Errorf("parse profile: no valid genres")
	}
	if len(profile.PreferredGenres) > 5 {
		profile.PreferredGenres = profile.PreferredGenres[:5]
	}
	return profile, nil
}

func cleanQuery(raw string) string {
	query := strings.TrimSpace(raw)
	if idx := strings.IndexByte(query, '\n'); idx >= 0 {
		query = query[:idx]
	}
	query = strings.Trim(query, "`")
	// LLMs often wrap the whole query in quotes; the artist filter's own
	// quotes must survive, so only the outermost pair is stripped.
	if len(query) >= 2 && query[0] == '"' && query[len(query)-1] == '"' {
		query = query[1 : len(query)-1]
	}
	if len(query) > maxQueryChars {
		query = query[:maxQueryChars]
	}
	return strings.TrimSpace(query)
}

func containsString(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}
