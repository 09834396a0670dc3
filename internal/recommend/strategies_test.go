/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package recommend

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/soundlog/internal/curation"
	"github.com/friendsincode/soundlog/internal/models"
	"github.com/friendsincode/soundlog/internal/spotify"
)

func newTestStrategies(catalog *stubCatalog) *Strategies {
	return NewStrategies(catalog, time.Second, rand.New(rand.NewSource(42)), zerolog.Nop())
}

func TestByArtistsKeepsTopTwoPerArtist(t *testing.T) {
	catalog := &stubCatalog{albums: []models.Album{
		{ID: "old", Name: "Early Work", Artists: []models.ArtistRef{{ID: "a", Name: "A"}}, AlbumType: "album", TotalTracks: 10, Popularity: 90, ReleaseDate: "2005-01-01"},
		{ID: "new", Name: "Recent Work", Artists: []models.ArtistRef{{ID: "a", Name: "A"}}, AlbumType: "album", TotalTracks: 10, Popularity: 60, ReleaseDate: "2021-01-01"},
		{ID: "mid", Name: "Middle Work", Artists: []models.ArtistRef{{ID: "a", Name: "A"}}, AlbumType: "album", TotalTracks: 10, Popularity: 50, ReleaseDate: "2019-01-01"},
		{ID: "comp", Name: "Greatest Hits", Artists: []models.ArtistRef{{ID: "a", Name: "A"}}, AlbumType: "album", TotalTracks: 10, Popularity: 99, ReleaseDate: "2022-01-01"},
	}}
	s := newTestStrategies(catalog)

	albums, failures := s.ByArtists(context.Background(), curation.MoodHappy, 8)

	if len(failures) != 0 {
		t.Fatalf("unexpected failures: %v", failures)
	}
	// Six artist queries, each returning the same fixture, each trimmed
	// to its two best real albums.
	if len(albums) != 2*artistsPerQuery {
		t.Fatalf("got %d albums, want %d", len(albums), 2*artistsPerQuery)
	}
	for _, album := range albums {
		if album.ID == "comp" {
			t.Error("compilation album survived the real-album filter")
		}
	}
	// Recency-weighted score: new (1.0*60) > mid (1.0*50) > old (0.5*90).
	if albums[0].ID != "new" && albums[1].ID != "new" {
		t.Errorf("top-2 selection = [%s %s], want to include %q", albums[0].ID, albums[1].ID, "new")
	}
	for i := 0; i < len(albums); i += 2 {
		if albums[i].ID == "old" || albums[i+1].ID == "old" {
			t.Error("older low-score album outranked recent releases")
		}
	}
}

func TestByArtistsIsolatesFailures(t *testing.T) {
	catalog := &stubCatalog{searchErr: errors.New("timeout")}
	s := newTestStrategies(catalog)

	albums, failures := s.ByArtists(context.Background(), curation.MoodSad, 8)

	if len(albums) != 0 {
		t.Errorf("got %d albums from a failing provider, want 0", len(albums))
	}
	if len(failures) != artistsPerQuery {
		t.Errorf("recorded %d soft failures, want %d", len(failures), artistsPerQuery)
	}
}

func TestFromRecommendationsFiltersTracks(t *testing.T) {
	catalog := &stubCatalog{tracks: []spotify.Track{
		{ID: "t1", Name: "Keeper", Popularity: 70, Album: testAlbum("keep", "ar1", "Kept Album")},
		{ID: "t2", Name: "Dup", Popularity: 70, Album: testAlbum("existing", "ar2", "Already Seen")},
		{ID: "t3", Name: "Unpopular", Popularity: 20, Album: testAlbum("weak", "ar3", "Weak Album")},
		{ID: "t4", Name: "Comp", Popularity: 70, Album: testAlbum("comp", "ar4", "Karaoke Classics")},
		{ID: "t5", Name: "Repeat", Popularity: 70, Album: testAlbum("keep", "ar1", "Kept Album")},
	}}
	s := newTestStrategies(catalog)
	existing := []models.Album{testAlbum("existing", "ar2", "Already Seen")}

	albums, failures := s.FromRecommendations(context.Background(), curation.MoodEnergetic, existing)

	if len(failures) != 0 {
		t.Fatalf("unexpected failures: %v", failures)
	}
	if len(albums) != 1 || albums[0].ID != "keep" {
		t.Errorf("FromRecommendations = %v, want only album %q", albums, "keep")
	}
}

func TestFromRecommendationsSwallowsProviderError(t *testing.T) {
	catalog := &stubCatalog{recErr: errors.New("503")}
	s := newTestStrategies(catalog)

	albums, failures := s.FromRecommendations(context.Background(), curation.MoodChill, nil)

	if len(albums) != 0 {
		t.Errorf("got %d albums, want 0", len(albums))
	}
	if len(failures) != 1 {
		t.Errorf("recorded %d failures, want 1", len(failures))
	}
}

func TestTrendingFilters(t *testing.T) {
	catalog := &stubCatalog{albums: []models.Album{
		testAlbum("good", "ar1", "Solid Record"),
		{ID: "thin", Name: "Thin EP", Artists: []models.ArtistRef{{ID: "ar2", Name: "B"}}, AlbumType: "album", TotalTracks: 4, Popularity: 50},
		{ID: "single", Name: "A Single", Artists: []models.ArtistRef{{ID: "ar3", Name: "C"}}, AlbumType: "single", TotalTracks: 6, Popularity: 50},
		{ID: "seen", Name: "Seen Before", Artists: []models.ArtistRef{{ID: "ar4", Name: "D"}}, AlbumType: "album", TotalTracks: 10, Popularity: 50},
	}}
	s := newTestStrategies(catalog)
	existing := []models.Album{{ID: "seen"}}

	albums, failures := s.Trending(context.Background(), curation.MoodNostalgic, existing)

	if len(failures) != 0 {
		t.Fatalf("unexpected failures: %v", failures)
	}
	if len(albums) != 1 || albums[0].ID != "good" {
		t.Errorf("Trending = %v, want only album %q", albums, "good")
	}
}

func TestTrendingStopsAtTarget(t *testing.T) {
	var many []models.Album
	for i := 0; i < 20; i++ {
		many = append(many, testAlbum(string(rune('a'+i)), string(rune('A'+i)), "Album"))
	}
	catalog := &stubCatalog{albums: many}
	s := newTestStrategies(catalog)

	albums, _ := s.Trending(context.Background(), curation.MoodRomantic, nil)

	if len(albums) != trendingTarget {
		t.Errorf("Trending returned %d albums, want %d", len(albums), trendingTarget)
	}
	if catalog.searchCalls != 1 {
		t.Errorf("Trending issued %d searches, want 1 once the target is hit", catalog.searchCalls)
	}
}
