// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/cappi/internal/models"
)

type storeFactory struct {
	name string
	open func(t *testing.T) RecordStore
}

func factories() []storeFactory {
	return []storeFactory{
		{"memory", func(t *testing.T) RecordStore { return NewMemoryStore() }},
		{"badger", func(t *testing.T) RecordStore {
			t.Helper()
			s, err := OpenBadger(BadgerOptions{InMemory: true})
			if err != nil {
				t.Fatalf("OpenBadger: %v", err)
			}
			t.Cleanup(func() { _ = s.Close() })
			return s
		}},
	}
}

var baseTime = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func makeRecord(id, userID string, createdAt time.Time) *models.RecommendationRecord {
	return &models.RecommendationRecord{
		ID:     id,
		UserID: userID,
		Context: models.RequestContext{
			City:          "Cancún",
			Country:       "Mexico",
			BudgetLevel:   models.BudgetLuxury,
			RiskTolerance: models.RiskToleranceMedium,
			Preferences:   map[string]any{"vibe": "romantic"},
		},
		Items: []models.RankedItem{
			{EntityType: models.EntityPlace, EntityID: "rooftop22", Name: "Rooftop 22 & Bar", Score: 88, Reasons: []string{"safe zone verified", "verified partner", "premium experience"}, SafetyScore: 95},
			{EntityType: models.EntityExperience, EntityID: "dinner", Name: "Cena VIP", Score: 88, Reasons: []string{"safe zone verified", "highly rated", "very popular"}, SafetyScore: 92},
			{EntityType: models.EntityPlace, EntityID: "delfines", Name: "Playa Delfines", Score: 84, Reasons: []string{}, SafetyScore: 85},
		},
		ModelVersion: "v1-safe-first",
		CreatedAt:    createdAt,
	}
}

func assertSameRecord(t *testing.T, got, want *models.RecommendationRecord) {
	t.Helper()
	if got.ID != want.ID || got.UserID != want.UserID || got.ModelVersion != want.ModelVersion {
		t.Errorf("header mismatch: got %s/%s/%s, want %s/%s/%s", got.ID, got.UserID, got.ModelVersion, want.ID, want.UserID, want.ModelVersion)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
	if got.Context.City != want.Context.City || got.Context.RiskTolerance != want.Context.RiskTolerance {
		t.Errorf("context mismatch: got %+v", got.Context)
	}
	if len(got.Items) != len(want.Items) {
		t.Fatalf("expected %d items, got %d", len(want.Items), len(got.Items))
	}
	for i := range want.Items {
		g, w := got.Items[i], want.Items[i]
		if g.EntityID != w.EntityID || g.Score != w.Score || g.Name != w.Name || g.EntityType != w.EntityType || g.SafetyScore != w.SafetyScore {
			t.Errorf("item %d: got %+v, want %+v", i, g, w)
		}
		if fmt.Sprint(g.Reasons) != fmt.Sprint(w.Reasons) {
			t.Errorf("item %d reasons: got %v, want %v", i, g.Reasons, w.Reasons)
		}
	}
}

func TestSaveThenLatestRoundTrip(t *testing.T) {
	t.Parallel()

	for _, f := range factories() {
		t.Run(f.name, func(t *testing.T) {
			t.Parallel()
			store := f.open(t)
			ctx := context.Background()

			rec := makeRecord("r1", "traveler-1", baseTime)
			if err := store.Save(ctx, rec); err != nil {
				t.Fatalf("Save: %v", err)
			}

			latest, err := store.LatestForUser(ctx, "traveler-1", 1)
			if err != nil {
				t.Fatalf("LatestForUser: %v", err)
			}
			if len(latest) != 1 {
				t.Fatalf("expected 1 record, got %d", len(latest))
			}
			assertSameRecord(t, &latest[0], rec)
			if latest[0].Context.Preferences["vibe"] != "romantic" {
				t.Errorf("expected preferences to round trip, got %v", latest[0].Context.Preferences)
			}
		})
	}
}

func TestLatestForUserOrderingAndLimit(t *testing.T) {
	t.Parallel()

	for _, f := range factories() {
		t.Run(f.name, func(t *testing.T) {
			t.Parallel()
			store := f.open(t)
			ctx := context.Background()

			saves := []*models.RecommendationRecord{
				makeRecord("old", "u1", baseTime.Add(-2*time.Hour)),
				makeRecord("newest", "u1", baseTime),
				makeRecord("middle", "u1", baseTime.Add(-time.Hour)),
				makeRecord("tie-later", "u1", baseTime),
				makeRecord("other-user", "u10", baseTime.Add(time.Hour)),
			}
			for _, r := range saves {
				if err := store.Save(ctx, r); err != nil {
					t.Fatalf("Save %s: %v", r.ID, err)
				}
			}

			all, err := store.LatestForUser(ctx, "u1", 10)
			if err != nil {
				t.Fatalf("LatestForUser: %v", err)
			}
			want := []string{"tie-later", "newest", "middle", "old"}
			if len(all) != len(want) {
				t.Fatalf("expected %d records, got %d", len(want), len(all))
			}
			for i, id := range want {
				if all[i].ID != id {
					t.Errorf("position %d: expected %s, got %s", i, id, all[i].ID)
				}
			}

			two, err := store.LatestForUser(ctx, "u1", 2)
			if err != nil {
				t.Fatalf("LatestForUser: %v", err)
			}
			if len(two) != 2 || two[0].ID != "tie-later" {
				t.Errorf("expected limit to keep the newest records, got %v", two)
			}

			none, err := store.LatestForUser(ctx, "nobody", 5)
			if err != nil || none == nil || len(none) != 0 {
				t.Errorf("expected empty non-nil history, got %v, %v", none, err)
			}
		})
	}
}

func TestSaveIsAppendOnly(t *testing.T) {
	t.Parallel()

	for _, f := range factories() {
		t.Run(f.name, func(t *testing.T) {
			t.Parallel()
			store := f.open(t)
			ctx := context.Background()

			if err := store.Save(ctx, makeRecord("dup", "u1", baseTime)); err != nil {
				t.Fatalf("Save: %v", err)
			}
			err := store.Save(ctx, makeRecord("dup", "u1", baseTime.Add(time.Minute)))
			if !errors.Is(err, ErrRecordExists) {
				t.Errorf("expected ErrRecordExists, got %v", err)
			}
		})
	}
}

func TestStoreRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	for _, f := range factories() {
		t.Run(f.name, func(t *testing.T) {
			t.Parallel()
			store := f.open(t)
			ctx := context.Background()

			if err := store.Save(ctx, nil); !errors.Is(err, models.ErrInvalidInput) {
				t.Errorf("nil record: expected ErrInvalidInput, got %v", err)
			}
			if err := store.Save(ctx, makeRecord("", "u1", baseTime)); !errors.Is(err, models.ErrInvalidInput) {
				t.Errorf("missing id: expected ErrInvalidInput, got %v", err)
			}
			if _, err := store.LatestForUser(ctx, "u1", 0); !errors.Is(err, models.ErrInvalidInput) {
				t.Errorf("zero limit: expected ErrInvalidInput, got %v", err)
			}
			if _, err := store.LatestForUser(ctx, "", 5); !errors.Is(err, models.ErrInvalidInput) {
				t.Errorf("empty user: expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestMemoryStoreIsolatesCallers(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	rec := makeRecord("r1", "u1", baseTime)
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	rec.Items[0].Score = 1
	rec.Items[0].Reasons[0] = "mutated"

	latest, _ := store.LatestForUser(ctx, "u1", 1)
	if latest[0].Items[0].Score != 88 || latest[0].Items[0].Reasons[0] != "safe zone verified" {
		t.Error("stored record was mutated through the caller's pointer")
	}
}

func TestBadgerDetectsCorruption(t *testing.T) {
	t.Parallel()

	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		t.Fatalf("badger.Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store, err := NewBadgerStore(db)
	if err != nil {
		t.Fatalf("NewBadgerStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	if err := store.Save(ctx, makeRecord("r1", "u1", baseTime)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	err = db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(recordKeyPrefix + "r1"))
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		val[len(val)-2] ^= 0x01
		return txn.Set([]byte(recordKeyPrefix+"r1"), val)
	})
	if err != nil {
		t.Fatalf("tamper: %v", err)
	}

	if _, err := store.LatestForUser(ctx, "u1", 1); !errors.Is(err, ErrCorruptRecord) {
		t.Errorf("expected ErrCorruptRecord, got %v", err)
	}
	if _, err := store.Get(ctx, "missing"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
