/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package signals reads a user's historical ratings and reviews — the taste
// signals the recommendation core consumes. The write path belongs to the
// social-catalog CRUD layer; this store is read-only.
package signals

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/soundlog/internal/models"
)

const (
	maxRatings = 50
	maxReviews = 20
)

// Source provides read access to a user's taste signals.
type Source interface {
	RecentRatings(ctx context.Context, userID string) ([]models.Rating, error)
	RecentReviews(ctx context.Context, userID string) ([]models.Review, error)
	SignalCount(ctx context.Context, userID string) (int, error)
}

// Store is the gorm-backed Source implementation.
type Store struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewStore creates a signal store over the shared database handle.
func NewStore(db *gorm.DB, logger zerolog.Logger) *Store {
	return &Store{db: db, logger: logger.With().Str("component", "signals").Logger()}
}

var _ Source = (*Store)(nil)

// RecentRatings returns up to 50 of the user's ratings, most recent first.
func (s *Store) RecentRatings(ctx context.Context, userID string) ([]models.Rating, error) {
	var ratings []models.Rating
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(maxRatings).
		Find(&ratings).Error
	return ratings, err
}

// RecentReviews returns up to 20 of the user's reviews, most recent first.
func (s *Store) RecentReviews(ctx context.Context, userID string) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(maxReviews).
		Find(&reviews).Error
	return reviews, err
}

// SignalCount returns the user's combined rating and review count, used by
// the orchestrator to choose between the mood-only and personalized paths.
func (s *Store) SignalCount(ctx context.Context, userID string) (int, error) {
	var ratings, reviews int64
	if err := s.db.WithContext(ctx).Model(&models.Rating{}).Where("user_id = ?", userID).Count(&ratings).Error; err != nil {
		return 0, err
	}
	if err := s.db.WithContext(ctx).Model(&models.Review{}).Where("user_id = ?", userID).Count(&reviews).Error; err != nil {
		return 0, err
	}
	return int(ratings + reviews), nil
}
