/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package curation holds the static mood, genre, and artist data that seeds
// recommendation queries. Everything here is immutable for process lifetime.
package curation

import "sort"

// Mood is one of the fixed set of mood keys the service understands.
type Mood string

const (
	MoodHappy     Mood = "happy"
	MoodSad       Mood = "sad"
	MoodEnergetic Mood = "energetic"
	MoodChill     Mood = "chill"
	MoodRomantic  Mood = "romantic"
	MoodFocus     Mood = "focus"
	MoodParty     Mood = "party"
	MoodNostalgic Mood = "nostalgic"
)

// DefaultMood is used when a caller supplies none.
const DefaultMood = MoodHappy

// MoodConfiguration maps a mood to provider seeds and tuning parameters.
type MoodConfiguration struct {
	Genres      []string
	Attributes  map[string]float64 // Spotify recommendation tuning knobs
	SearchTerms []string
}

var moodConfigurations = map[Mood]MoodConfiguration{
	MoodHappy: {
		Genres:      []string{"pop", "dance", "indie"},
		Attributes:  map[string]float64{"target_valence": 0.8, "target_energy": 0.7, "target_danceability": 0.7},
		SearchTerms: []string{"feel good", "upbeat", "summer"},
	},
	MoodSad: {
		Genres:      []string{"acoustic", "folk", "indie"},
		Attributes:  map[string]float64{"target_valence": 0.2, "target_energy": 0.3, "target_acousticness": 0.7},
		SearchTerms: []string{"heartbreak", "melancholy", "rainy day"},
	},
	MoodEnergetic: {
		Genres:      []string{"rock", "electronic", "punk"},
		Attributes:  map[string]float64{"target_energy": 0.9, "target_tempo": 140, "target_danceability": 0.6},
		SearchTerms: []string{"workout", "high energy", "power"},
	},
	MoodChill: {
		Genres:      []string{"chill", "ambient", "r-n-b"},
		Attributes:  map[string]float64{"target_valence": 0.5, "target_energy": 0.3, "target_acousticness": 0.5},
		SearchTerms: []string{"chill", "laid back", "late night"},
	},
	MoodRomantic: {
		Genres:      []string{"soul", "r-n-b", "jazz"},
		Attributes:  map[string]float64{"target_valence": 0.6, "target_energy": 0.4, "target_acousticness": 0.4},
		SearchTerms: []string{"love songs", "slow dance", "romance"},
	},
	MoodFocus: {
		Genres:      []string{"classical", "ambient", "electronic"},
		Attributes:  map[string]float64{"target_energy": 0.3, "target_instrumentalness": 0.8, "target_valence": 0.4},
		SearchTerms: []string{"study", "deep focus", "instrumental"},
	},
	MoodParty: {
		Genres:      []string{"dance", "house", "hip-hop"},
		Attributes:  map[string]float64{"target_danceability": 0.9, "target_energy": 0.8, "target_valence": 0.7},
		SearchTerms: []string{"party", "dance floor", "club"},
	},
	MoodNostalgic: {
		Genres:      []string{"rock", "disco", "soul"},
		Attributes:  map[string]float64{"target_valence": 0.6, "target_energy": 0.5, "target_acousticness": 0.3},
		SearchTerms: []string{"throwback", "classics", "golden oldies"},
	},
}

// ValidMood reports whether the given key is one of the known moods.
func ValidMood(mood Mood) bool {
	_, ok := moodConfigurations[mood]
	return ok
}

// Moods returns the fixed mood list in stable order.
func Moods() []Mood {
	moods := make([]Mood, 0, len(moodConfigurations))
	for mood := range moodConfigurations {
		moods = append(moods, mood)
	}
	sort.Slice(moods, func(i, j int) bool { return moods[i] < moods[j] })
	return moods
}

// MoodNames returns the mood list as plain strings, for API payloads.
func MoodNames() []string {
	moods := Moods()
	names := make([]string, len(moods))
	for i, mood := range moods {
		names[i] = string(mood)
	}
	return names
}

// ConfigurationFor returns the static configuration for a mood. The second
// return is false for unknown moods.
func ConfigurationFor(mood Mood) (MoodConfiguration, bool) {
	cfg, ok := moodConfigurations[mood]
	return cfg, ok
}

// PrimaryGenre returns the first configured genre for a mood, used to seed
// trending-year searches.
func PrimaryGenre(mood Mood) string {
	cfg, ok := moodConfigurations[mood]
	if !ok || len(cfg.Genres) == 0 {
		return "pop"
	}
	return cfg.Genres[0]
}
