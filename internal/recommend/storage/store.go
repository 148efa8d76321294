// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

// Package storage persists recommendation records.
//
// Records are append-only: a record is written once under its ID and never
// updated. History is read newest first per user.
//
// # Storage Format
//
// The Badger store keeps two key families:
//
//	rec:{id}                                       -> hex sha256 + record JSON
//	rec_user:{len}{user}:{inv_created}:{inv_seq}   -> id
//
// Inverted timestamps and sequence numbers make a forward prefix scan
// return the most recent record first, with later saves winning ties.
package storage

import (
	"context"
	"errors"

	"github.com/tomtom215/cappi/internal/models"
)

var (
	// ErrRecordExists is returned when saving a record whose ID is already stored.
	ErrRecordExists = errors.New("recommendation record already exists")

	// ErrCorruptRecord is returned when a stored record fails its checksum.
	ErrCorruptRecord = errors.New("recommendation record checksum mismatch")
)

// RecordStore persists recommendation records.
type RecordStore interface {
	// Save appends record. Records are immutable once saved.
	Save(ctx context.Context, record *models.RecommendationRecord) error

	// LatestForUser returns up to limit records of userID, most recent first.
	LatestForUser(ctx context.Context, userID string, limit int) ([]models.RecommendationRecord, error)
}

func checkSave(record *models.RecommendationRecord) error {
	if record == nil {
		return models.InvalidInput("nil record")
	}
	if record.ID == "" || record.UserID == "" {
		return models.InvalidInput("record id and user id are required")
	}
	return nil
}

func checkLatest(userID string, limit int) error {
	if userID == "" {
		return models.InvalidInput("user id is required")
	}
	if limit <= 0 {
		return models.InvalidInput("limit must be positive, got %d", limit)
	}
	return nil
}
