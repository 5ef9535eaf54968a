// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package host

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/blinklabs-io/quill/ledger"
	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

var (
	// ErrSlotNotFound indicates no storage slot exists for the given key
	ErrSlotNotFound = errors.New("storage slot not found")
	// ErrSlotExists indicates an attempt to create a slot that already exists
	ErrSlotExists = errors.New("storage slot already exists")
)

const (
	slotKeyPrefix = "slot:"

	// slotHeaderSize covers the owner identity and the capacity field
	slotHeaderSize = ledger.IdentitySize + 4
)

// Slot is one ledger account's storage: an owner identity, a fixed
// capacity, and the current record bytes
type Slot struct {
	Data     []byte
	Owner    ledger.Identity
	Capacity uint32
}

func encodeSlot(slot *Slot) []byte {
	ret := make([]byte, 0, slotHeaderSize+len(slot.Data))
	ret = append(ret, slot.Owner[:]...)
	ret = binary.LittleEndian.AppendUint32(ret, slot.Capacity)
	ret = append(ret, slot.Data...)
	return ret
}

func decodeSlot(data []byte) (*Slot, error) {
	if len(data) < slotHeaderSize {
		return nil, fmt.Errorf("truncated slot: %d bytes", len(data))
	}
	slot := &Slot{}
	copy(slot.Owner[:], data[:ledger.IdentitySize])
	slot.Capacity = binary.LittleEndian.Uint32(
		data[ledger.IdentitySize:slotHeaderSize],
	)
	slot.Data = append([]byte{}, data[slotHeaderSize:]...)
	return slot, nil
}

func slotKey(key ledger.Identity) []byte {
	return append([]byte(slotKeyPrefix), key[:]...)
}

// StoreOptionFunc configures a Store
type StoreOptionFunc func(*Store)

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) StoreOptionFunc {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithDataDir specifies the data directory to use for storage. An empty
// data directory gives an in-memory store, useful for testing.
func WithDataDir(dataDir string) StoreOptionFunc {
	return func(s *Store) {
		s.dataDir = dataDir
	}
}

// Store persists ledger account storage slots in badger. Each mutating
// access to a slot runs inside a single badger transaction so a failed
// instruction leaves the slot byte-for-byte unchanged.
type Store struct {
	db      *badger.DB
	logger  *slog.Logger
	dataDir string
}

// NewStore creates a new account store
func NewStore(opts ...StoreOptionFunc) (*Store, error) {
	s := &Store{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		s.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	var db *badger.DB
	var err error
	if s.dataDir == "" {
		badgerOpts := badger.DefaultOptions("").
			WithLogger(newBadgerLogger(s.logger)).
			// The default INFO logging is a bit verbose
			WithLoggingLevel(badger.WARNING).
			WithInMemory(true)
		db, err = badger.Open(badgerOpts)
		if err != nil {
			return nil, err
		}
	} else {
		// Make sure that we can read data dir, and create if it doesn't exist
		if _, err := os.Stat(s.dataDir); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read data dir: %w", err)
			}
			if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data dir: %w", err)
			}
		}
		slotDir := filepath.Join(
			s.dataDir,
			"slots",
		)
		badgerOpts := badger.DefaultOptions(slotDir).
			WithLogger(newBadgerLogger(s.logger)).
			WithLoggingLevel(badger.WARNING).
			WithCompression(options.Snappy)
		db, err = badger.Open(badgerOpts)
		if err != nil {
			return nil, err
		}
	}
	s.db = db
	return s, nil
}

// Close releases the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateSlot allocates a new storage slot for the given key. The slot's
// capacity is fixed at creation time.
func (s *Store) CreateSlot(
	key ledger.Identity,
	owner ledger.Identity,
	capacity uint32,
	data []byte,
) error {
	if len(data) > int(capacity) {
		return fmt.Errorf(
			"%w: initial data %d bytes, capacity %d",
			ledger.ErrCapacity,
			len(data),
			capacity,
		)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		k := slotKey(key)
		_, err := txn.Get(k)
		if err == nil {
			return fmt.Errorf("%w: %s", ErrSlotExists, key)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		slot := &Slot{
			Owner:    owner,
			Capacity: capacity,
			Data:     data,
		}
		return txn.Set(k, encodeSlot(slot))
	})
}

// GetSlot reads a storage slot
func (s *Store) GetSlot(key ledger.Identity) (*Slot, error) {
	var slot *Slot
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(slotKey(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", ErrSlotNotFound, key)
			}
			return err
		}
		return item.Value(func(val []byte) error {
			slot, err = decodeSlot(val)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return slot, nil
}

// UpdateSlot runs fn against the current slot contents inside a single
// read-write transaction. The bytes returned by fn replace the slot data;
// if fn returns an error nothing is written and the error is surfaced
// verbatim.
func (s *Store) UpdateSlot(
	key ledger.Identity,
	fn func(*Slot) ([]byte, error),
) error {
	return s.db.Update(func(txn *badger.Txn) error {
		k := slotKey(key)
		item, err := txn.Get(k)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", ErrSlotNotFound, key)
			}
			return err
		}
		var slot *Slot
		err = item.Value(func(val []byte) error {
			slot, err = decodeSlot(val)
			return err
		})
		if err != nil {
			return err
		}
		newData, err := fn(slot)
		if err != nil {
			return err
		}
		if len(newData) > int(slot.Capacity) {
			return fmt.Errorf(
				"%w: encoded size %d, capacity %d",
				ledger.ErrCapacity,
				len(newData),
				slot.Capacity,
			)
		}
		slot.Data = newData
		return txn.Set(k, encodeSlot(slot))
	})
}

// badgerLogger is a wrapper around our logger to satisfy the badger
// logger interface
type badgerLogger struct {
	logger *slog.Logger
}

func newBadgerLogger(logger *slog.Logger) *badgerLogger {
	return &badgerLogger{
		logger: logger.With("component", "badger"),
	}
}

func (b *badgerLogger) Errorf(format string, args ...any) {
	b.logger.Error(fmt.Sprintf(format, args...))
}

func (b *badgerLogger) Warningf(format string, args ...any) {
	b.logger.Warn(fmt.Sprintf(format, args...))
}

func (b *badgerLogger) Infof(format string, args ...any) {
	b.logger.Info(fmt.Sprintf(format, args...))
}

func (b *badgerLogger) Debugf(format string, args ...any) {
	b.logger.Debug(fmt.Sprintf(format, args...))
}
