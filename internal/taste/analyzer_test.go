/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package taste

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/soundlog/internal/ai"
	"github.com/friendsincode/soundlog/internal/curation"
	"github.com/friendsincode/soundlog/internal/models"
	"github.com/friendsincode/soundlog/internal/quota"
)

// fakeAI scripts GenerateContent responses and counts calls.
type fakeAI struct {
	response string
	err      error
	calls    int
}

func (f *fakeAI) GenerateContent(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func newAnalyzer(client ai.Client, governor *quota.Governor) *Analyzer {
	return NewAnalyzer(client, governor, rand.New(rand.NewSource(42)), zerolog.Nop())
}

func ratingsWithScores(scores ...int) []models.Rating {
	ratings := make([]models.Rating, len(scores))
	for i, score := range scores {
		ratings[i] = models.Rating{ItemName: "item", Score: score, ItemType: models.ItemAlbum}
	}
	return ratings
}

func TestAnalyzeWithoutCredentialUsesHeuristicAndNoQuota(t *testing.T) {
	governor := quota.NewGovernor(2, time.Minute)
	analyzer := newAnalyzer(nil, governor)

	profile := analyzer.Analyze(context.Background(), ratingsWithScores(90, 85, 80, 75), nil, true)

	if profile.Summary == "" || len(profile.PreferredGenres) == 0 {
		t.Fatalf("heuristic profile incomplete: %+v", profile)
	}
	if got := governor.Remaining(); got != 2 {
		t.Fatalf("quota consumed without AI call: remaining = %d", got)
	}
}

func TestAnalyzeRequiresMinimumRatings(t *testing.T) {
	governor := quota.NewGovernor(2, time.Minute)
	client := &fakeAI{response: `{"summary":"s","preferredGenres":["pop"],"characteristics":[]}`}
	analyzer := newAnalyzer(client, governor)

	analyzer.Analyze(context.Background(), ratingsWithScores(90, 85), nil, true)

	if client.calls != 0 {
		t.Fatalf("AI called with insufficient ratings: %d calls", client.calls)
	}
}

func TestAnalyzeRespectsQuotaWhenNotForced(t *testing.T) {
	governor := quota.NewGovernor(1, time.Minute)
	governor.CanMakeRequestAndRecord() // exhaust

	client := &fakeAI{response: `{"summary":"s","preferredGenres":["pop"],"characteristics":[]}`}
	analyzer := newAnalyzer(client, governor)

	analyzer.Analyze(context.Background(), ratingsWithScores(90, 85, 80), nil, false)

	if client.calls != 0 {
		t.Fatalf("AI called past quota: %d calls", client.calls)
	}
}

func TestAnalyzeParsesFencedJSON(t *testing.T) {
	governor := quota.NewGovernor(2, time.Minute)
	client := &fakeAI{response: "```json\n{\"summary\":\"loves guitar music\",\"preferredGenres\":[\"rock\",\"indie\",\"polka\"],\"characteristics\":[\"eclectic\"]}\n```"}
	analyzer := newAnalyzer(client, governor)

	profile := analyzer.Analyze(context.Background(), ratingsWithScores(90, 85, 80), nil, false)

	if profile.Summary != "loves guitar music" {
		t.Fatalf("summary = %q", profile.Summary)
	}
	// Out-of-vocabulary genres are filtered.
	for _, g := range profile.PreferredGenres {
		if !curation.ValidGenre(g) {
			t.Fatalf("invalid genre survived: %q", g)
		}
	}
	if got := governor.Remaining(); got != 1 {
		t.Fatalf("remaining = %d, want 1 after successful AI call", got)
	}
}

func TestAnalyzeRefundsQuotaOnFailure(t *testing.T) {
	governor := quota.NewGovernor(2, time.Minute)
	client := &fakeAI{err: &ai.ProviderError{StatusCode: 429, Message: "quota exhausted"}}
	analyzer := newAnalyzer(client, governor)

	profile := analyzer.Analyze(context.Background(), ratingsWithScores(90, 85, 80), nil, false)

	if profile.Summary == "" {
		t.Fatal("expected heuristic fallback profile")
	}
	if got := governor.Remaining(); got != 2 {
		t.Fatalf("remaining = %d, want 2 after refund", got)
	}
}

func TestAnalyzeRefundsQuotaOnUnparseableOutput(t *testing.T) {
	governor := quota.NewGovernor(2, time.Minute)
	client := &fakeAI{response: "certainly! here is your profile..."}
	analyzer := newAnalyzer(client, governor)

	analyzer.Analyze(context.Background(), ratingsWithScores(90, 85, 80), nil, false)

	if got := governor.Remaining(); got != 2 {
		t.Fatalf("remaining = %d, want 2 after refund", got)
	}
}

func TestBasicProfileBuckets(t *testing.T) {
	analyzer := newAnalyzer(nil, quota.NewGovernor(2, time.Minute))

	tests := []struct {
		name       string
		scores     []int
		wantGenre  string
	}{
		{"high mean", []int{90, 95, 85}, "pop"},
		{"low mean", []int{10, 20, 30}, "alternative"},
		{"no ratings default", nil, "pop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := analyzer.basicProfile(ratingsWithScores(tt.scores...), nil)
			if profile.PreferredGenres[0] != tt.wantGenre {
				t.Fatalf("lead genre = %q, want %q", profile.PreferredGenres[0], tt.wantGenre)
			}
		})
	}
}

func TestGenerateSearchQueryFallsBackWithoutArtistFilter(t *testing.T) {
	governor := quota.NewGovernor(2, time.Minute)
	client := &fakeAI{response: "just some vibes"}
	analyzer := newAnalyzer(client, governor)

	query := analyzer.GenerateSearchQuery(context.Background(), models.TasteProfile{}, curation.MoodChill, "album", true)

	if !strings.Contains(query, `artist:"`) {
		t.Fatalf("fallback query missing artist filter: %q", query)
	}
}

func TestGenerateSearchQueryAcceptsValidAIOutput(t *testing.T) {
	governor := quota.NewGovernor(2, time.Minute)
	client := &fakeAI{response: "\"album artist:\"Khruangbin\" genre:chill\""}
	analyzer := newAnalyzer(client, governor)

	query := analyzer.GenerateSearchQuery(context.Background(), models.TasteProfile{}, curation.MoodChill, "album", true)

	if !strings.Contains(query, `artist:"Khruangbin"`) {
		t.Fatalf("AI query discarded: %q", query)
	}
	if len(query) > 100 {
		t.Fatalf("query exceeds 100 chars: %d", len(query))
	}
}

func TestExtractGenresAlwaysThreeValid(t *testing.T) {
	analyzer := newAnalyzer(nil, quota.NewGovernor(2, time.Minute))

	tests := []struct {
		name    string
		profile models.TasteProfile
	}{
		{"empty profile", models.TasteProfile{}},
		{"partial profile", models.TasteProfile{PreferredGenres: []string{"jazz"}}},
		{"invalid genres", models.TasteProfile{PreferredGenres: []string{"polka", "zydeco"}}},
		{"full profile", models.TasteProfile{PreferredGenres: []string{"rock", "metal", "punk", "blues"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			genres := analyzer.ExtractGenres(tt.profile, curation.MoodHappy)
			if len(genres) != 3 {
				t.Fatalf("got %d genres, want 3: %v", len(genres), genres)
			}
			for _, g := range genres {
				if !curation.ValidGenre(g) {
					t.Fatalf("invalid genre %q", g)
				}
			}
		})
	}
}

func TestCleanQueryTruncatesAndUnquotes(t *testing.T) {
	long := "\"" + strings.Repeat("a", 150) + "\""
	if got := cleanQuery(long); len(got) > 100 {
		t.Fatalf("len = %d, want <= 100", len(got))
	}
	if got := cleanQuery("`artist:\"X\"`\nextra line"); got != `artist:"X"` {
		t.Fatalf("cleanQuery = %q", got)
	}
}
