/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package recommend implements the album recommendation pipeline: three
// independent sourcing strategies, a diversity-enforcing composer, and the
// orchestrator that sequences them per request.
package recommend

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/soundlog/internal/curation"
	"github.com/friendsincode/soundlog/internal/models"
	"github.com/friendsincode/soundlog/internal/spotify"
	"github.com/friendsincode/soundlog/internal/telemetry"
)

const (
	artistsPerQuery     = 6
	albumsPerArtist     = 2
	recentYearThreshold = 2015
	trendingTarget      = 8
	trendingMinTracks   = 5
	minTrackPopularity  = 35
	minSeedPopularity   = 40
)

// SoftFailure records a swallowed provider error for observability. The
// strategies never propagate errors; they return whatever they collected.
type SoftFailure struct {
	Strategy string
	Query    string
	Err      error
}

// Strategies bundles the three album-sourcing strategies over one catalog.
type Strategies struct {
	catalog spotify.Catalog
	timeout time.Duration
	logger  zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewStrategies creates the strategy set. The rng seeds artist and genre
// selection; tests inject a fixed seed.
func NewStrategies(catalog spotify.Catalog, timeout time.Duration, rng *rand.Rand, logger zerolog.Logger) *Strategies {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Strategies{
		catalog: catalog,
		timeout: timeout,
		rng:     rng,
		logger:  logger.With().Str("component", "strategies").Logger(),
	}
}

// ByArtists sources albums from six random curated artists for the mood.
// Per-artist searches run concurrently; an artist's failure never cancels
// the others.
func (s *Strategies) ByArtists(ctx context.Context, mood curation.Mood, desiredMinimum int) ([]models.Album, []SoftFailure) {
	s.mu.Lock()
	artists := curation.RandomArtists(s.rng, mood, artistsPerQuery)
	s.mu.Unlock()

	type artistResult struct {
		albums  []models.Album
		failure *SoftFailure
	}

	results := make(chan artistResult, len(artists))
	var wg sync.WaitGroup
	for _, artist := range artists {
		wg.Add(1)
		go func(artist string) {
			defer wg.Done()

			callCtx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			query := fmt.Sprintf("album artist:%q", artist)
			found, err := s.catalog.SearchAlbums(callCtx, query, 10)
			if err != nil {
				telemetry.StrategyFailures.WithLabelValues("by_artists").Inc()
				s.logger.Debug().Err(err).Str("artist", artist).Msg("artist search failed")
				results <- artistResult{failure: &SoftFailure{Strategy: "by_artists", Query: query, Err: err}}
				return
			}
			results <- artistResult{albums: topAlbumsForArtist(found)}
		}(artist)
	}
	wg.Wait()
	close(results)

	var albums []models.Album
	var failures []SoftFailure
	for res := range results {
		if res.failure != nil {
			failures = append(failures, *res.failure)
			continue
		}
		albums = append(albums, res.albums...)
	}
	return albums, failures
}

// topAlbumsForArtist keeps the artist's two best real albums ranked by a
// recency-weighted popularity score.
func topAlbumsForArtist(found []models.Album) []models.Album {
	real := make([]models.Album, 0, len(found))
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

	sort.SliceStable(real, func(i, j int) bool {
		return compositeScore(real[i]) > compositeScore(real[j])
	})

	if len(real) > albumsPerArtist {
		real = real[:albumsPerArtist]
	}
	return real
}

func compositeScore(album models.Album) float64 {
	factor := 0.5
	if album.ReleaseYear() >= recentYearThreshold {
		factor = 1.0
	}
	return factor * float64(album.Popularity)
}

// FromRecommendations sources albums from the provider's recommendation
// endpoint using up to two valid genre seeds for the mood. With zero valid
// seeds it silently returns nothing.
func (s *Strategies) FromRecommendations(ctx context.Context, mood curation.Mood, existing []models.Album) ([]models.Album, []SoftFailure) {
	cfg, ok := curation.ConfigurationFor(mood)
	if !ok {
		return nil, nil
	}

	seeds := curation.FilterValidGenres(cfg.Genres)
	if len(seeds) == 0 {
		return nil, nil
	}
	if len(seeds) > 2 {
		seeds = seeds[:2]
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tracks, err := s.catalog.Recommendations(callCtx, seeds, cfg.Attributes, 20, minSeedPopularity)
	if err != nil {
		telemetry.StrategyFailures.WithLabelValues("from_recommendations").Inc()
		s.logger.Debug().Err(err).Str("mood", string(mood)).Msg("recommendation seed query failed")
		return nil, []SoftFailure{{Strategy: "from_recommendations", Query: "seeds=" + seeds[0], Err: err}}
	}

	seen := idSet(existing)
	var albums []models.Album
	for _, track := range tracks {
		album := track.Album
		if album.ID == "" {
			continue
		}
		if _, dup := seen[album.ID]; dup {
			continue
		}
		if curation.HasCompilationKeyword(album.Name) {
			continue
		}
		if track.Popularity < minTrackPopularity {
			continue
		}
		seen[album.ID] = struct{}{}
		albums = append(albums, album)
	}
	return albums, nil
}

// Trending fills remaining slots with recent-year genre searches, walking
// back over the current and two preceding years and stopping once eight
// candidates are collected.
func (s *Strategies) Trending(ctx context.Context, mood curation.Mood, existing []models.Album) ([]models.Album, []SoftFailure) {
	genre := curation.PrimaryGenre(mood)
	currentYear := time.Now().Year()
	seen := idSet(existing)

	var albums []models.Album
	var failures []SoftFailure
	for offset := 0; offset < 3 && len(albums) < trendingTarget; offset++ {
		year := currentYear - offset
		query := fmt.Sprintf("year:%d genre:%s", year, genre)

		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		found, err := s.catalog.SearchAlbums(callCtx, query, 20)
		cancel()
		if err != nil {
			telemetry.StrategyFailures.WithLabelValues("trending").Inc()
			s.logger.Debug().Err(err).Int("year", year).Msg("trending search failed")
			failures = append(failures, SoftFailure{Strategy: "trending", Query: query, Err: err})
			continue
		}

		for _, album := range found {
			if len(albums) >= trendingTarget {
				break
			}
			if _, dup := seen[album.ID]; dup {
				continue
			}
			if album.AlbumType != "album" || album.TotalTracks < trendingMinTracks {
				continue
			}
			if !curation.IsRealAlbum(curation.AlbumRecord{
				Name:        album.Name,
				ArtistName:  album.PrimaryArtist(),
				AlbumType:   album.AlbumType,
				TotalTracks: album.TotalTracks,
			}) {
				continue
			}
			seen[album.ID] = struct{}{}
			albums = append(albums, album)
		}
	}
	return albums, failures
}

func idSet(albums []models.Album) map[string]struct{} {
	set := make(map[string]struct{}, len(albums))
	for _, album := range albums {
		set[album.ID] = struct{}{}
	}
	return set
}
