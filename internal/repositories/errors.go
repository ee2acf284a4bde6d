package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a guarded update matched no row.
	ErrConflict = errors.New("record changed concurrently")
)

func wrapFind(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to find %s: %w", what, err)
}
