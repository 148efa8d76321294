// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cappi/internal/metrics"
	"github.com/tomtom215/cappi/internal/models"
)

// Key prefixes for BadgerDB storage
const (
	recordKeyPrefix     = "rec:"
	recordUserKeyPrefix = "rec_user:"
	recordSequenceKey   = "seq:rec"
)

// checksumLen is the hex SHA-256 prefix stored before each record's JSON.
const checksumLen = sha256.Size * 2

// BadgerStore implements RecordStore on BadgerDB.
type BadgerStore struct {
	db  *badger.DB
	seq *badger.Sequence
	own bool
}

// BadgerOptions configures OpenBadger.
type BadgerOptions struct {
	// Path is the data directory. Ignored when InMemory is set.
	Path     string
	InMemory bool
}

// OpenBadger opens a BadgerDB and returns a store that owns it.
func OpenBadger(opts BadgerOptions) (*BadgerStore, error) {
	bopts := badger.DefaultOptions(opts.Path).WithLogger(nil)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}
	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	store, err := NewBadgerStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	store.own = true
	return store, nil
}

// NewBadgerStore creates a store on an already opened DB. The caller keeps
// ownership of db.
func NewBadgerStore(db *badger.DB) (*BadgerStore, error) {
	seq, err := db.GetSequence([]byte(recordSequenceKey), 100)
	if err != nil {
		return nil, fmt.Errorf("record sequence: %w", err)
	}
	return &BadgerStore{db: db, seq: seq}, nil
}

// Close releases the sequence lease and, for stores created by OpenBadger, the DB.
func (s *BadgerStore) Close() error {
	err := s.seq.Release()
	if s.own {
		if cerr := s.db.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Save implements RecordStore.
func (s *BadgerStore) Save(ctx context.Context, record *models.RecommendationRecord) (err error) {
	defer func() { metrics.RecordStoreOperation("save", err) }()

	if err := checkSave(record); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	data := append([]byte(checksum(raw)), raw...)

	n, err := s.seq.Next()
	if err != nil {
		return models.Unavailable("record store", fmt.Errorf("next sequence: %w", err))
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		key := []byte(recordKeyPrefix + record.ID)
		if _, err := txn.Get(key); err == nil {
			return ErrRecordExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check record: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return fmt.Errorf("set record: %w", err)
		}
		if err := txn.Set(userIndexKey(record, n), []byte(record.ID)); err != nil {
			return fmt.Errorf("set user index: %w", err)
		}
		return nil
	})
	if errors.Is(err, ErrRecordExists) {
		return fmt.Errorf("%w: %s", ErrRecordExists, record.ID)
	}
	if err != nil {
		return models.Unavailable("record store", err)
	}
	return nil
}

// LatestForUser implements RecordStore.
func (s *BadgerStore) LatestForUser(ctx context.Context, userID string, limit int) (records []models.RecommendationRecord, err error) {
	defer func() { metrics.RecordStoreOperation("latest", err) }()

	if err := checkLatest(userID, limit); err != nil {
		return nil, err
	}

	records = make([]models.RecommendationRecord, 0, limit)
	err = s.db.View(func(txn *badger.Txn) error {
		prefix := userPrefix(userID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix) && len(records) < limit; it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			id, err := it.Item().ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("read index: %w", err)
			}
			rec, err := getRecord(txn, string(id))
			if err != nil {
				return err
			}
			records = append(records, *rec)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCorruptRecord) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, models.Unavailable("record store", err)
	}
	return records, nil
}

// Get returns the record stored under id.
func (s *BadgerStore) Get(_ context.Context, id string) (*models.RecommendationRecord, error) {
	var rec *models.RecommendationRecord
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		rec, err = getRecord(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func getRecord(txn *badger.Txn, id string) (*models.RecommendationRecord, error) {
	item, err := txn.Get([]byte(recordKeyPrefix + id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("record %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}

	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}
	if len(val) < checksumLen || checksum(val[checksumLen:]) != string(val[:checksumLen]) {
		return nil, fmt.Errorf("%w: %s", ErrCorruptRecord, id)
	}

	var rec models.RecommendationRecord
	if err := json.Unmarshal(val[checksumLen:], &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &rec, nil
}

// userIndexKey orders a user's records newest first under forward iteration.
func userIndexKey(record *models.RecommendationRecord, seq uint64) []byte {
	b := bytes.NewBuffer(userPrefix(record.UserID))
	fmt.Fprintf(b, "%020d:%020d", invertNanos(record.CreatedAt.UnixNano()), math.MaxUint64-seq)
	return b.Bytes()
}

// userPrefix length-prefixes the user ID so no user's prefix is a prefix of another's.
func userPrefix(userID string) []byte {
	return []byte(fmt.Sprintf("%s%04d%s:", recordUserKeyPrefix, len(userID), userID))
}

func invertNanos(n int64) uint64 {
	// Shift into unsigned space so pre-1970 times still sort correctly.
	return math.MaxUint64 - (uint64(n) ^ (1 << 63))
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

var _ RecordStore = (*BadgerStore)(nil)
