/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package spotify

import "github.com/friendsincode/soundlog/internal/models"

// Wire shapes for the subset of the Spotify Web API this service consumes.

type wireArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type wireImage struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type wireAlbum struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Artists      []wireArtist      `json:"artists"`
	Images       []wireImage       `json:"images"`
	ReleaseDate  string            `json:"release_date"`
	TotalTracks  int               `json:"total_tracks"`
	AlbumType    string            `json:"album_type"`
	Popularity   int               `json:"popularity"`
	ExternalURLs map[string]string `json:"external_urls"`
}

type wireTrack struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Album      wireAlbum    `json:"album"`
	Artists    []wireArtist `json:"artists"`
	Popularity int          `json:"popularity"`
}

type searchResponse struct {
	Albums struct {
		Items []wireAlbum `json:"items"`
	} `json:"albums"`
	Tracks struct {
		Items []wireTrack `json:"items"`
	} `json:"tracks"`
}

type recommendationsResponse struct {
	Tracks []wireTrack `json:"tracks"`
}

// Track is a provider track with its parent album attached.
type Track struct {
	ID         string
	Name       string
	Album      models.Album
	Popularity int
}

func mapAlbum(a wireAlbum) models.Album {
	album := models.Album{
		ID:           a.ID,
		Name:         a.Name,
		ReleaseDate:  a.ReleaseDate,
		TotalTracks:  a.TotalTracks,
		AlbumType:    a.AlbumType,
		Popularity:   a.Popularity,
		ExternalURLs: a.ExternalURLs,
	}
	for _, artist := range a.Artists {
		album.Artists = append(album.Artists, models.ArtistRef{ID: artist.ID, Name: artist.Name})
	}
	for _, img := range a.Images {
		album.Images = append(album.Images, models.Image{URL: img.URL, Width: img.Width, Height: img.Height})
	}
	return album
}

func mapTrack(t wireTrack) Track {
	return Track{
		ID:         t.ID,
		Name:       t.Name,
		Album:      mapAlbum(t.Album),
		Popularity: t.Popularity,
	}
}
