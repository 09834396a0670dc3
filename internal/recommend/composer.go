/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package recommend

import (
	"math/rand"
	"sync"

	"github.com/friendsincode/soundlog/internal/models"
)

const maxAlbumsPerArtist = 2

// Composer turns a raw candidate pool into a final diverse, shuffled slate.
type Composer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewComposer(rng *rand.Rand) *Composer {
	return &Composer{rng: rng}
}

// Compose deduplicates by album id (first occurrence wins), enforces
// artist diversity in two passes, shuffles and truncates to limit.
//
// Pass one admits at most one album per primary artist, preserving
// candidate order. Pass two tops up from artists holding exactly one slot,
// so no artist ever holds more than two.
func (c *Composer) Compose(candidates []models.Album, limit int) []models.Album {
	if limit <= 0 {
		return []models.Album{}
	}

	deduped := make([]models.Album, 0, len(candidates))
	seenIDs := make(map[string]struct{}, len(candidates))
	for _, album := range candidates {
		if album.ID == "" {
			continue
		}
		if _, dup := seenIDs[album.ID]; dup {
			continue
		}
		seenIDs[album.ID] = struct{}{}
		deduped = append(deduped, album)
	}

	perArtist := make(map[string]int, len(deduped))
	picked := make([]models.Album, 0, limit)
	for _, album := range deduped {
		if len(picked) >= limit {
			break
		}
		artist := album.PrimaryArtistID()
		if perArtist[artist] >= 1 {
			continue
		}
		perArtist[artist]++
		picked = append(picked, album)
	}

	if len(picked) < limit {
		inSlate := idSet(picked)
		for _, album := range deduped {
			if len(picked) >= limit {
				break
			}
			if _, dup := inSlate[album.ID]; dup {
				continue
			}
			artist := album.PrimaryArtistID()
			if perArtist[artist] != 1 {
				continue
			}
			perArtist[artist]++
			inSlate[album.ID] = struct{}{}
			picked = append(picked, album)
		}
	}

	c.mu.Lock()
	c.rng.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	c.mu.Unlock()

	if len(picked) > limit {
		picked = picked[:limit]
	}
	return picked
}
