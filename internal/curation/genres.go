/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package curation

import "math/rand"

// genreVocabulary is the fixed set of genre seeds the provider accepts. Taste
// profiles and AI output are filtered against this list before use.
var genreVocabulary = []string{
	"pop", "rock", "indie", "alternative", "hip-hop", "r-n-b", "soul",
	"jazz", "classical", "electronic", "dance", "house", "ambient", "chill",
	"acoustic", "folk", "country", "metal", "punk", "blues", "funk", "disco",
	"latin", "k-pop",
}

var genreSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(genreVocabulary))
	for _, g := range genreVocabulary {
		set[g] = struct{}{}
	}
	return set
}()

// ValidGenre reports whether the genre is in the fixed vocabulary.
func ValidGenre(genre string) bool {
	_, ok := genreSet[genre]
	return ok
}

// Genres returns the full vocabulary.
func Genres() []string {
	out := make([]string, len(genreVocabulary))
	copy(out, genreVocabulary)
	return out
}

// RandomGenre picks one genre from the vocabulary using the supplied source.
func RandomGenre(rng *rand.Rand) string {
	return genreVocabulary[rng.Intn(len(genreVocabulary))]
}

// FilterValidGenres keeps only vocabulary genres, preserving order.
func FilterValidGenres(genres []string) []string {
	out := make([]string, 0, len(genres))
	for _, g := range genres {
		if ValidGenre(g) {
			out = append(out, g)
		}
	}
	return out
}
