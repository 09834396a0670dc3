/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import "time"

// ItemType enumerates the catalog item kinds users can rate or review.
type ItemType string

const (
	ItemAlbum  ItemType = "album"
	ItemTrack  ItemType = "track"
	ItemArtist ItemType = "artist"
)

// Rating is a user's numeric score for a catalog item. Scores are 0-100.
type Rating struct {
	ID        string   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string   `gorm:"type:uuid;index" json:"userId"`
	ItemID    string   `gorm:"index" json:"itemId"`
	ItemType  ItemType `gorm:"type:varchar(16)" json:"itemType"`
	ItemName  string   `json:"itemName"`
	Score     int      `json:"score"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Review is a user's free-text writeup for a catalog item.
type Review struct {
	ID        string   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string   `gorm:"type:uuid;index" json:"userId"`
	ItemID    string   `gorm:"index" json:"itemId"`
	ItemType  ItemType `gorm:"type:varchar(16)" json:"itemType"`
	ItemName  string   `json:"itemName"`
	Content   string   `gorm:"type:text" json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ArtistRef is the id+name projection of a provider artist.
type ArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Image is a provider album artwork reference.
type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Album is a provider-shaped album record. It exists only for the duration
// of one recommendation request.
type Album struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Artists      []ArtistRef       `json:"artists"`
	Images       []Image           `json:"images"`
	ReleaseDate  string            `json:"release_date"`
	TotalTracks  int               `json:"total_tracks"`
	AlbumType    string            `json:"album_type"`
	Popularity   int               `json:"popularity"`
	ExternalURLs map[string]string `json:"external_urls"`
}

// PrimaryArtist returns the first listed artist name, or empty.
func (a Album) PrimaryArtist() string {
	if len(a.Artists) == 0 {
		return ""
	}
	return a.Artists[0].Name
}

// PrimaryArtistID returns the first listed artist id, or empty.
func (a Album) PrimaryArtistID() string {
	if len(a.Artists) == 0 {
		return ""
	}
	return a.Artists[0].ID
}

// ReleaseYear parses the leading year from a provider release date
// ("2013", "2013-05", "2013-05-17"). Zero when unparseable.
func (a Album) ReleaseYear() int {
	if len(a.ReleaseDate) < 4 {
		return 0
	}
	year := 0
	for _, r := range a.ReleaseDate[:4] {
		if r < '0' || r > '9' {
			return 0
		}
		year = year*10 + int(r-'0')
	}
	return year
}

// TasteProfile is the derived view of a user's listening taste. It is
// recomputed per request and never persisted.
type TasteProfile struct {
	Summary         string   `json:"summary"`
	PreferredGenres []string `json:"preferredGenres"`
	Characteristics []string `json:"characteristics"`
}

// Track is reserved in the result payload; recommendation responses always
// carry an empty track list today.
type Track struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Artists []ArtistRef `json:"artists"`
}

// RecommendationType distinguishes mood-only from personalized results.
type RecommendationType string

const (
	RecommendationMood         RecommendationType = "mood"
	RecommendationPersonalized RecommendationType = "personalized"
)

// RecommendationResult is the composed album feed returned to callers.
type RecommendationResult struct {
	Type                RecommendationType `json:"type"`
	Mood                string             `json:"mood"`
	Albums              []Album            `json:"albums"`
	Tracks              []Track            `json:"tracks"`
	TasteProfileSummary string             `json:"tasteProfileSummary,omitempty"`
	IsUsingAIFallback   bool               `json:"isUsingAiFallback"`
	FallbackReason      string             `json:"fallbackReason,omitempty"`
	NeedMoreData        bool               `json:"needMoreData,omitempty"`
	Error               string             `json:"error,omitempty"`
}
