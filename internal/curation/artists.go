/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package curation

import (
	_ "embed"
	"fmt"
	"math/rand"

	"gopkg.in/yaml.v3"
)

//go:embed artists.yaml
var artistsYAML []byte

// artistCatalog maps each mood to its curated artist list. Loaded once at
// init; the catalog is read-only afterwards.
var artistCatalog map[Mood][]string

func init() {
	catalog, err := loadArtistCatalog(artistsYAML)
	if err != nil {
		panic(fmt.Sprintf("curation: invalid embedded artist catalog: %v", err))
	}
	artistCatalog = catalog
}

func loadArtistCatalog(raw []byte) (map[Mood][]string, error) {
	var parsed map[string][]string
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}

	catalog := make(map[Mood][]string, len(parsed))
	for key, artists := range parsed {
		mood := Mood(key)
		if !ValidMood(mood) {
			return nil, fmt.Errorf("unknown mood %q in artist catalog", key)
		}
		if len(artists) < 50 {
			return nil, fmt.Errorf("mood %q has %d artists, need at least 50", key, len(artists))
		}
		catalog[mood] = artists
	}

	for _, mood := range Moods() {
		if _, ok := catalog[mood]; !ok {
			return nil, fmt.Errorf("mood %q missing from artist catalog", mood)
		}
	}
	return catalog, nil
}

// ArtistsFor returns the curated artist list for a mood. The returned slice
// must not be mutated.
func ArtistsFor(mood Mood) []string {
	return artistCatalog[mood]
}

// RandomArtists picks up to n distinct artists from the mood's curated list.
func RandomArtists(rng *rand.Rand, mood Mood, n int) []string {
	pool := artistCatalog[mood]
	if len(pool) == 0 {
		return nil
	}
	if n > len(pool) {
		n = len(pool)
	}
	picked := rng.Perm(len(pool))[:n]
	out := make([]string, n)
	for i, idx := range picked {
		out[i] = pool[idx]
	}
	return out
}

// RandomArtist picks a single curated artist for a mood.
func RandomArtist(rng *rand.Rand, mood Mood) string {
	pool := artistCatalog[mood]
	if len(pool) == 0 {
		return ""
	}
	return pool[rng.Intn(len(pool))]
}
