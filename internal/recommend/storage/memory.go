// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tomtom215/cappi/internal/models"
)

// MemoryStore is an in-memory RecordStore. Records are deep-copied on the
// way in and out so callers cannot mutate stored history.
type MemoryStore struct {
	mu     sync.RWMutex
	ids    map[string]struct{}
	byUser map[string][]models.RecommendationRecord
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		ids:    make(map[string]struct{}),
		byUser: make(map[string][]models.RecommendationRecord),
	}
}

// Save implements RecordStore.
func (s *MemoryStore) Save(ctx context.Context, record *models.RecommendationRecord) error {
	if err := checkSave(record); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.ids[record.ID]; dup {
		return fmt.Errorf("%w: %s", ErrRecordExists, record.ID)
	}
	s.ids[record.ID] = struct{}{}
	s.byUser[record.UserID] = append(s.byUser[record.UserID], cloneRecord(record))
	return nil
}

// LatestForUser implements RecordStore.
func (s *MemoryStore) LatestForUser(ctx context.Context, userID string, limit int) ([]models.RecommendationRecord, error) {
	if err := checkLatest(userID, limit); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	history := s.byUser[userID]
	// Newest first; later saves win ties on CreatedAt.
	idx := make([]int, len(history))
	for i := range idx {
		idx[i] = len(history) - 1 - i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return history[idx[a]].CreatedAt.After(history[idx[b]].CreatedAt)
	})

	out := make([]models.RecommendationRecord, 0, min(limit, len(idx)))
	for _, i := range idx {
		if len(out) == limit {
			break
		}
		out = append(out, cloneRecord(&history[i]))
	}
	s.mu.RUnlock()
	return out, nil
}

func cloneRecord(r *models.RecommendationRecord) models.RecommendationRecord {
	c := *r
	c.Items = make([]models.RankedItem, len(r.Items))
	for i, item := range r.Items {
		item.Reasons = append(make([]string, 0, len(item.Reasons)), item.Reasons...)
		c.Items[i] = item
	}
	if r.Context.Preferences != nil {
		c.Context.Preferences = make(map[string]any, len(r.Context.Preferences))
		for k, v := range r.Context.Preferences {
			c.Context.Preferences[k] = v
		}
	}
	return c
}

var _ RecordStore = (*MemoryStore)(nil)
