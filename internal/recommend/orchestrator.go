/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package recommend

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/soundlog/internal/cache"
	"github.com/friendsincode/soundlog/internal/curation"
	"github.com/friendsincode/soundlog/internal/events"
	"github.com/friendsincode/soundlog/internal/models"
	"github.com/friendsincode/soundlog/internal/quota"
	"github.com/friendsincode/soundlog/internal/signals"
	"github.com/friendsincode/soundlog/internal/spotify"
	"github.com/friendsincode/soundlog/internal/taste"
	"github.com/friendsincode/soundlog/internal/telemetry"
)

const (
	minSignalsForPersonalized = 5
	slateLimit                = 12
	byArtistsMinimum          = 8
	fillerThreshold           = 8
	aiSearchLimit             = 10
	aiSearchTimeout           = 5 * time.Second

	degradedMessage  = "Unable to fetch recommendations at this time"
	fallbackAnalysis = "AI analysis unavailable"
)

// Publisher is the event-bus surface the orchestrator needs. Both the
// in-memory bus and the NATS bridge satisfy it.
type Publisher interface {
	Publish(eventType events.EventType, payload events.Payload)
}

// Orchestrator sequences the sourcing strategies into final recommendation
// slates. It holds no per-request state; one instance serves all requests.
type Orchestrator struct {
	signals    signals.Source
	analyzer   *taste.Analyzer
	strategies *Strategies
	composer   *Composer
	catalog    spotify.Catalog
	governor   *quota.Governor
	bus        Publisher
	moodCache  *cache.Cache
	logger     zerolog.Logger
}

// NewOrchestrator wires the recommendation pipeline. bus and moodCache may
// be nil; events and caching are then skipped.
func NewOrchestrator(
	source signals.Source,
	analyzer *taste.Analyzer,
	strategies *Strategies,
	composer *Composer,
	catalog spotify.Catalog,
	governor *quota.Governor,
	bus Publisher,
	moodCache *cache.Cache,
	logger zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		signals:    source,
		analyzer:   analyzer,
		strategies: strategies,
		composer:   composer,
		catalog:    catalog,
		governor:   governor,
		bus:        bus,
		moodCache:  moodCache,
		logger:     logger.With().Str("component", "orchestrator").Logger(),
	}
}

// QuotaStats reports the current AI budget for cooldown UI.
func (o *Orchestrator) QuotaStats() quota.Stats {
	return o.governor.Snapshot()
}

// GetSmartRecommendations is the default entry. Users with enough taste
// signals get a personalized slate; everyone else gets the mood slate.
// It never fails: degraded slates carry an error message instead.
func (o *Orchestrator) GetSmartRecommendations(ctx context.Context, userID string, mood curation.Mood) models.RecommendationResult {
	mood = normalizeMood(mood)

	count, err := o.signals.SignalCount(ctx, userID)
	if err != nil {
		o.logger.Warn().Err(err).Str("user_id", userID).Msg("signal count unavailable, serving mood slate")
		count = 0
	}

	var result models.RecommendationResult
	if count >= minSignalsForPersonalized {
		result = o.personalized(ctx, userID, mood, false)
	} else {
		result = o.moodSlate(ctx, mood)
	}

	o.served(result, userID)
	return result
}

// GetMoodRecommendations serves the curated mood slate. The mood is
// validated before any strategy runs.
func (o *Orchestrator) GetMoodRecommendations(ctx context.Context, mood curation.Mood) (models.RecommendationResult, error) {
	if !curation.ValidMood(mood) {
		return models.RecommendationResult{}, &ValidationError{
			Field:       "mood",
			Message:     "unknown mood",
			ValidValues: curation.MoodNames(),
		}
	}

	result := o.moodSlate(ctx, mood)
	o.served(result, "")
	return result, nil
}

// GetAIRecommendations is the forced-AI entry. It fails fast on an
// exhausted quota before touching any provider.
func (o *Orchestrator) GetAIRecommendations(ctx context.Context, userID string, mood curation.Mood) (models.RecommendationResult, error) {
	mood = normalizeMood(mood)

	if !o.governor.CanMakeRequest() {
		retryAfter := o.governor.TimeUntilReset()
		telemetry.QuotaDenials.Inc()
		o.publish(events.EventQuotaDenied, events.Payload{
			"user_id":     userID,
			"retry_after": retryAfter.Seconds(),
		})
		return models.RecommendationResult{}, &QuotaExhaustedError{RetryAfter: retryAfter}
	}

	count, err := o.signals.SignalCount(ctx, userID)
	if err != nil {
		o.logger.Warn().Err(err).Str("user_id", userID).Msg("signal count unavailable, serving mood slate")
		count = 0
	}

	var result models.RecommendationResult
	if count >= minSignalsForPersonalized {
		result = o.personalized(ctx, userID, mood, true)
	} else {
		result = o.moodSlate(ctx, mood)
		result.NeedMoreData = true
	}

	o.served(result, userID)
	return result, nil
}

// moodSlate runs the mood-only pipeline. It never fails; a broken pipeline
// yields an empty slate with an error message.
func (o *Orchestrator) moodSlate(ctx context.Context, mood curation.Mood) (result models.RecommendationResult) {
	result = models.RecommendationResult{
		Type:   models.RecommendationMood,
		Mood:   string(mood),
		Albums: []models.Album{},
		Tracks: []models.Track{},
	}

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error().Interface("panic", r).Str("mood", string(mood)).Msg("mood pipeline failed")
			result.Albums = []models.Album{}
			result.Error = degradedMessage
		}
	}()

	if o.moodCache != nil {
		if albums, hit := o.moodCache.GetMoodAlbums(ctx, string(mood)); hit {
			result.Albums = albums
			return result
		}
	}

	candidates, failures := o.strategies.ByArtists(ctx, mood, byArtistsMinimum)

	more, fails := o.strategies.FromRecommendations(ctx, mood, candidates)
	candidates = append(candidates, more...)
	failures = append(failures, fails...)

	more, fails = o.strategies.Trending(ctx, mood, candidates)
	candidates = append(candidates, more...)
	failures = append(failures, fails...)

	if len(candidates) == 0 && len(failures) > 0 {
		o.logger.Error().Int("failures", len(failures)).Str("mood", string(mood)).Msg("all strategies failed")
		result.Error = degradedMessage
		return result
	}

	result.Albums = o.composer.Compose(candidates, slateLimit)

	if o.moodCache != nil && len(result.Albums) > 0 {
		if err := o.moodCache.SetMoodAlbums(ctx, string(mood), result.Albums); err != nil {
			o.logger.Debug().Err(err).Msg("mood slate cache write failed")
		}
	}
	return result
}

// personalized runs the taste-aware pipeline. Any escape hatch lands on
// the mood slate rather than an empty response.
func (o *Orchestrator) personalized(ctx context.Context, userID string, mood curation.Mood, useAI bool) (result models.RecommendationResult) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error().Interface("panic", r).Str("user_id", userID).Msg("personalized pipeline failed")
			result = o.moodSlate(ctx, mood)
			result.IsUsingAIFallback = true
			result.FallbackReason = fallbackAnalysis
		}
	}()

	ratings, err := o.signals.RecentRatings(ctx, userID)
	if err != nil {
		o.logger.Warn().Err(err).Str("user_id", userID).Msg("rating fetch failed")
	}
	reviews, err := o.signals.RecentReviews(ctx, userID)
	if err != nil {
		o.logger.Warn().Err(err).Str("user_id", userID).Msg("review fetch failed")
	}

	profile, ok := o.analyzeSafely(ctx, ratings, reviews, useAI)
	if !ok {
		result = o.moodSlate(ctx, mood)
		result.IsUsingAIFallback = true
		result.FallbackReason = fallbackAnalysis
		return result
	}

	aiFallback := false

	// Artist search runs first so the curated baseline never depends on
	// the AI budget.
	candidates, _ := o.strategies.ByArtists(ctx, mood, byArtistsMinimum)

	if useAI {
		found, usedFallback := o.aiAlbumSearch(ctx, profile, mood)
		candidates = append(candidates, found...)
		if usedFallback {
			aiFallback = true
			o.publish(events.EventAIFallback, events.Payload{
				"user_id": userID,
				"mood":    string(mood),
			})
		}
	}

	if genres := o.analyzer.ExtractGenres(profile, mood); len(genres) > 0 {
		more, _ := o.strategies.FromRecommendations(ctx, mood, candidates)
		candidates = append(candidates, more...)
	}

	if len(candidates) < fillerThreshold {
		more, _ := o.strategies.Trending(ctx, mood, candidates)
		candidates = append(candidates, more...)
	}

	result = models.RecommendationResult{
		Type:                models.RecommendationPersonalized,
		Mood:                string(mood),
		Albums:              o.composer.Compose(candidates, slateLimit),
		Tracks:              []models.Track{},
		TasteProfileSummary: profile.Summary,
		IsUsingAIFallback:   aiFallback,
	}
	if aiFallback {
		result.FallbackReason = "AI search unavailable"
	}
	return result
}

// analyzeSafely shields the pipeline from analyzer panics; the analyzer
// normally self-falls-back and never fails.
func (o *Orchestrator) analyzeSafely(ctx context.Context, ratings []models.Rating, reviews []models.Review, forceAI bool) (profile models.TasteProfile, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error().Interface("panic", r).Msg("taste analysis failed")
			ok = false
		}
	}()
	return o.analyzer.Analyze(ctx, ratings, reviews, forceAI), true
}

// aiAlbumSearch issues the single AI-derived catalog search. Failure is
// reported as a fallback flag, never an error.
func (o *Orchestrator) aiAlbumSearch(ctx context.Context, profile models.TasteProfile, mood curation.Mood) ([]models.Album, bool) {
	query := o.analyzer.GenerateSearchQuery(ctx, profile, mood, "album", true)

	callCtx, cancel := context.WithTimeout(ctx, aiSearchTimeout)
	defer cancel()

	found, err := o.catalog.SearchAlbums(callCtx, query, aiSearchLimit)
	if err != nil {
		o.logger.Warn().Err(err).Str("query", query).Msg("AI-derived album search failed")
		return nil, true
	}

	real := found[:0]
	for _, album := range found {
		if curation.IsRealAlbum(curation.AlbumRecord{
			Name:        album.Name,
			ArtistName:  album.PrimaryArtist(),
			AlbumType:   album.AlbumType,
			TotalTracks: album.TotalTracks,
		}) {
			real = append(real, album)
		}
	}
	return real, false
}

func (o *Orchestrator) served(result models.RecommendationResult, userID string) {
	telemetry.RecommendationsServed.WithLabelValues(string(result.Type)).Inc()
	o.publish(events.EventRecommendationServed, events.Payload{
		"type":    string(result.Type),
		"mood":    result.Mood,
		"albums":  len(result.Albums),
		"user_id": userID,
	})
}

func (o *Orchestrator) publish(eventType events.EventType, payload events.Payload) {
	if o.bus == nil {
		return
	}
	o.bus.Publish(eventType, payload)
}

func normalizeMood(mood curation.Mood) curation.Mood {
	if mood == "" || !curation.ValidMood(mood) {
		return curation.DefaultMood
	}
	return mood
}
