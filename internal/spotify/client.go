/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package spotify wraps the Spotify Web API search and recommendation
// endpoints behind the narrow Catalog interface the recommendation core
// needs. Authentication uses the client-credentials grant; shape mismatches
// from the provider are treated as empty results rather than hard errors.
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/friendsincode/soundlog/internal/models"
	"github.com/friendsincode/soundlog/internal/telemetry"
)

const (
	defaultBaseURL = "https://api.spotify.com/v1"
	tokenURL       = "https://accounts.spotify.com/api/token"
)

// Catalog is the capability surface the recommendation pipeline consumes.
type Catalog interface {
	SearchAlbums(ctx context.Context, query string, limit int) ([]models.Album, error)
	Recommendations(ctx context.Context, seedGenres []string, attributes map[string]float64, limit, minPopularity int) ([]Track, error)
}

// Client is an HTTP client for the Spotify Web API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	market     string
	logger     zerolog.Logger
}

var _ Catalog = (*Client)(nil)

// NewClient constructs a client over an already-authenticated http.Client.
// Tests pass an httptest server URL here.
func NewClient(httpClient *http.Client, baseURL, market string, logger zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		market:     market,
		logger:     logger.With().Str("component", "spotify").Logger(),
	}
}

// NewClientFromCredentials builds a client using the client-credentials
// grant; tokens refresh transparently.
func NewClientFromCredentials(clientID, clientSecret, market string, timeout time.Duration, logger zerolog.Logger) *Client {
	creds := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}
	httpClient := creds.Client(context.Background())
	httpClient.Timeout = timeout
	return NewClient(httpClient, defaultBaseURL, market, logger)
}

// SearchAlbums runs an album search and maps results to domain albums.
func (c *Client) SearchAlbums(ctx context.Context, query string, limit int) ([]models.Album, error) {
	if limit <= 0 {
		limit = 20
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "album")
	params.Set("limit", strconv.Itoa(limit))
	if c.market != "" {
		params.Set("market", c.market)
	}

	var parsed searchResponse
	if err := c.get(ctx, "/search?"+params.Encode(), &parsed); err != nil {
		telemetry.ProviderRequests.WithLabelValues("search", "error").Inc()
		return nil, err
	}
	telemetry.ProviderRequests.WithLabelValues("search", "ok").Inc()

	albums := make([]models.Album, 0, len(parsed.Albums.Items))
	for _, item := range parsed.Albums.Items {
		albums = append(albums, mapAlbum(item))
	}
	return albums, nil
}

// Recommendations calls the recommendation endpoint with up to five genre
// seeds and mood tuning attributes.
func (c *Client) Recommendations(ctx context.Context, seedGenres []string, attributes map[string]float64, limit, minPopularity int) ([]Track, error) {
	if limit <= 0 {
		limit = 20
	}
	if len(seedGenres) > 5 {
		seedGenres = seedGenres[:5]
	}

	params := url.Values{}
	params.Set("seed_genres", strings.Join(seedGenres, ","))
	params.Set("limit", strconv.Itoa(limit))
	if c.market != "" {
		params.Set("market", c.market)
	}
	if minPopularity > 0 {
		params.Set("min_popularity", strconv.Itoa(minPopularity))
	}

	// Stable ordering keeps request URLs deterministic for identical inputs.
	keys := make([]string, 0, len(attributes))
	for key := range attributes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		params.Set(key, strconv.FormatFloat(attributes[key], 'f', -1, 64))
	}

	var parsed recommendationsResponse
	if err := c.get(ctx, "/recommendations?"+params.Encode(), &parsed); err != nil {
		telemetry.ProviderRequests.WithLabelValues("recommendations", "error").Inc()
		return nil, err
	}
	telemetry.ProviderRequests.WithLabelValues("recommendations", "ok").Inc()

	tracks := make([]Track, 0, len(parsed.Tracks))
	for _, item := range parsed.Tracks {
		tracks = append(tracks, mapTrack(item))
	}
	return tracks, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("spotify: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("spotify: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("spotify: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		// Shape mismatch reads as "no results" to callers; strategies treat
		// the logged error as a soft failure.
		c.logger.Debug().Err(err).Str("path", path).Msg("undecodable provider response")
		return fmt.Errorf("spotify: decode response: %w", err)
	}
	return nil
}
