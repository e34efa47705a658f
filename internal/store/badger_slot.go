package store

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// BadgerSlotStore keeps the ledger slot under the key "slot:{name}" in a
// BadgerDB instance.
type BadgerSlotStore struct {
	db   *badger.DB
	name string
}

func NewBadgerSlotStore(db *badger.DB, name string) *BadgerSlotStore {
	if name == "" {
		name = DefaultSlot
	}
	return &BadgerSlotStore{db: db, name: name}
}

// OpenBadger opens a BadgerDB directory with Badger's own logging limited to
// errors.
func OpenBadger(dir string) (*badger.DB, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return db, nil
}

func (s *BadgerSlotStore) key() []byte {
	return []byte("slot:" + s.name)
}

// Name returns the slot's key without the "slot:" prefix.
func (s *BadgerSlotStore) Name() string {
	return s.name
}

// Read returns the slot's contents, or nil if the key is absent.
func (s *BadgerSlotStore) Read() ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key())
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read slot %q: %w", s.name, err)
	}
	return value, nil
}

// Write replaces the slot's contents in a single transaction.
func (s *BadgerSlotStore) Write(data []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.key(), data)
	})
	if err != nil {
		return fmt.Errorf("write slot %q: %w", s.name, err)
	}
	return nil
}
