package store

import (
	"database/sql"
	"fmt"
	"time"
)

// DefaultSlot is the slot name the ledger persists to when none is configured.
const DefaultSlot = "events"

// SlotStore is a single named value in the ledger_slots table. The ledger
// writes its whole collection to it as one blob.
type SlotStore struct {
	db   *sql.DB
	name string
}

func NewSlotStore(db *sql.DB, name string) *SlotStore {
	if name == "" {
		name = DefaultSlot
	}
	return &SlotStore{db: db, name: name}
}

// Name returns the slot's key.
func (s *SlotStore) Name() string {
	return s.name
}

// Read returns the slot's contents, or nil if the slot has never been written.
func (s *SlotStore) Read() ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM ledger_slots WHERE name = ?`, s.name).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read slot %q: %w", s.name, err)
	}
	return value, nil
}

// Write replaces the slot's contents.
func (s *SlotStore) Write(data []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO ledger_slots (name, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.name, data, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("write slot %q: %w", s.name, err)
	}
	return nil
}

// UpdatedAt reports when the slot was last written. The zero time is
// returned for an empty slot.
func (s *SlotStore) UpdatedAt() (time.Time, error) {
	var at time.Time
	err := s.db.QueryRow(`SELECT updated_at FROM ledger_slots WHERE name = ?`, s.name).Scan(&at)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("slot %q updated_at: %w", s.name, err)
	}
	return at, nil
}
