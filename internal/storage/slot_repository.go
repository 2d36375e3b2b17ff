package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SavedEventsSlot is the slot holding the JSON-serialized event collection.
const SavedEventsSlot = "savedEvents"

// SlotRepository stores named JSON documents, one value per name.
type SlotRepository struct {
	BaseRepository
}

// NewSlotRepository creates a new slot repository.
func NewSlotRepository(db *DB) *SlotRepository {
	return &SlotRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Get returns the value stored under name. ok is false when the slot is absent.
func (r *SlotRepository) Get(ctx context.Context, name string) (value string, ok bool, err error) {
	err = r.DB().QueryRowContext(ctx, "SELECT value FROM slots WHERE name = ?", name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("querying slot %s: %w", name, err)
	}
	return value, true, nil
}

// Put creates or replaces the value stored under name.
func (r *SlotRepository) Put(ctx context.Context, name, value string) error {
	now := r.Now()
	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO slots (name, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, name, value, now)
	if err != nil {
		return fmt.Errorf("writing slot %s: %w", name, err)
	}
	return nil
}

// Delete removes the slot. Removing an absent slot is not an error.
func (r *SlotRepository) Delete(ctx context.Context, name string) error {
	if _, err := r.DB().ExecContext(ctx, "DELETE FROM slots WHERE name = ?", name); err != nil {
		return fmt.Errorf("deleting slot %s: %w", name, err)
	}
	return nil
}
