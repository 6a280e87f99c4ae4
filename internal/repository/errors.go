// Package repository provides persistence implementations for the user
// collection backed by a flat JSON file or a PostgreSQL table.
package repository

import (
	"errors"
	"fmt"
)

// ErrStorage marks every failure to read or write the persisted collection.
// Callers match it with errors.Is.
var ErrStorage = errors.New("storage error")

// storageError wraps err with op and ErrStorage.
func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
