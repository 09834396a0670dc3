/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package recommend

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/friendsincode/soundlog/internal/models"
)

func testAlbum(id, artistID, name string) models.Album {
	return models.Album{
		ID:          id,
		Name:        name,
		Artists:     []models.ArtistRef{{ID: artistID, Name: "artist-" + artistID}},
		AlbumType:   "album",
		TotalTracks: 10,
		Popularity:  60,
		ReleaseDate: "2022-03-01",
	}
}

func TestComposeArtistDiversity(t *testing.T) {
	var candidates []models.Album
	for i := 0; i < 5; i++ {
		candidates = append(candidates, testAlbum(fmt.Sprintf("a%d", i), "artist-a", fmt.Sprintf("A Album %d", i)))
	}
	for i := 0; i < 5; i++ {
		candidates = append(candidates, testAlbum(fmt.Sprintf("b%d", i), "artist-b", fmt.Sprintf("B Album %d", i)))
	}

	composer := NewComposer(rand.New(rand.NewSource(7)))
	got := composer.Compose(candidates, 10)

	perArtist := map[string]int{}
	for _, album := range got {
		perArtist[album.PrimaryArtistID()]++
	}
	if perArtist["artist-a"] > 2 {
		t.Errorf("artist-a contributed %d albums, want at most 2", perArtist["artist-a"])
	}
	if perArtist["artist-b"] > 2 {
		t.Errorf("artist-b contributed %d albums, want at most 2", perArtist["artist-b"])
	}
}

func TestComposeLengthCap(t *testing.T) {
	var candidates []models.Album
	for i := 0; i < 20; i++ {
		candidates = append(candidates, testAlbum(fmt.Sprintf("id%d", i), fmt.Sprintf("artist%d", i), fmt.Sprintf("Album %d", i)))
	}

	composer := NewComposer(rand.New(rand.NewSource(7)))

	tests := []struct {
		name  string
		input []models.Album
		limit int
		want  int
	}{
		{"limit below unique count", candidates, 12, 12},
		{"limit above unique count", candidates[:4], 12, 4},
		{"zero limit", candidates, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := composer.Compose(tt.input, tt.limit)
			if len(got) != tt.want {
				t.Errorf("Compose returned %d albums, want %d", len(got), tt.want)
			}
		})
	}
}

func TestComposeDeduplicates(t *testing.T) {
	album := testAlbum("dup", "artist-x", "Repeated")
	candidates := []models.Album{album, album, album, album, album}

	composer := NewComposer(rand.New(rand.NewSource(7)))
	got := composer.Compose(candidates, 12)

	if len(got) != 1 {
		t.Fatalf("Compose returned %d albums, want exactly 1", len(got))
	}
	if got[0].ID != "dup" {
		t.Errorf("Compose kept id %q, want %q", got[0].ID, "dup")
	}
}

func TestComposeSkipsEmptyIDs(t *testing.T) {
	candidates := []models.Album{
		{Name: "no id", Artists: []models.ArtistRef{{ID: "a"}}},
		testAlbum("ok", "artist-y", "Kept"),
	}

	composer := NewComposer(rand.New(rand.NewSource(7)))
	got := composer.Compose(candidates, 12)

	if len(got) != 1 || got[0].ID != "ok" {
		t.Errorf("Compose = %v, want only the album with an id", got)
	}
}
