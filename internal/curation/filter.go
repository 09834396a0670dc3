/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package curation

import "strings"

// compilationKeywords flag albums that are collections rather than proper
// studio releases: greatest-hits discs, karaoke covers, holiday compilations
// and the like. Matching is case-insensitive substring on album and primary
// artist name.
var compilationKeywords = []string{
	"greatest hits",
	"best of",
	"the essential",
	"collection",
	"anthology",
	"compilation",
	"various artists",
	"karaoke",
	"tribute",
	"covers",
	"remix",
	"remixes",
	"remastered hits",
	"soundtrack",
	"original motion picture",
	"christmas",
	"holiday",
	"live at",
	"deluxe anniversary",
}

// AlbumRecord is the subset of provider album fields the filter inspects.
type AlbumRecord struct {
	Name        string
	ArtistName  string
	AlbumType   string
	TotalTracks int
}

// IsRealAlbum reports whether an album looks like an actual studio release.
// Singles need at least three tracks; anything with a compilation-style
// keyword in its name or primary artist is rejected outright.
func IsRealAlbum(album AlbumRecord) bool {
	if album.TotalTracks <= 0 {
		return false
	}

	name := strings.ToLower(album.Name)
	artist := strings.ToLower(album.ArtistName)
	for _, keyword := range compilationKeywords {
		if strings.Contains(name, keyword) || strings.Contains(artist, keyword) {
			return false
		}
	}

	switch {
	case album.AlbumType == "album":
		return true
	case album.AlbumType == "single" && album.TotalTracks >= 3:
		return true
	case album.TotalTracks >= 4:
		return true
	}
	return false
}

// HasCompilationKeyword checks only the name blacklist, used when filtering
// track parents where album_type is not authoritative.
func HasCompilationKeyword(name string) bool {
	lowered := strings.ToLower(name)
	for _, keyword := range compilationKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
