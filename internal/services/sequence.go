// internal/services/sequence.go
package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/ipforge/ipforge-backend/internal/models"
)

// nextSequence pre-increments the named counter inside the caller's
// transaction and returns the new value. The first call returns 1. Rolling
// the transaction back also rolls the counter back, so a failed operation
// never consumes an id.
func nextSequence(tx *gorm.DB, name string) (uint64, error) {
	var seq models.Sequence
	if err := tx.Where(models.Sequence{Name: name}).FirstOrCreate(&seq).Error; err != nil {
		return 0, fmt.Errorf("failed to load sequence %s: %w", name, err)
	}

	seq.Value++
	if err := tx.Save(&seq).Error; err != nil {
		return 0, fmt.Errorf("failed to advance sequence %s: %w", name, err)
	}

	return seq.Value, nil
}

// currentSequence reads the counter's resting value without advancing it.
func currentSequence(db *gorm.DB, name string) (uint64, error) {
	var seq models.Sequence
	if err := db.Where(models.Sequence{Name: name}).FirstOrCreate(&seq).Error; err != nil {
		return 0, fmt.Errorf("failed to load sequence %s: %w", name, err)
	}
	return seq.Value, nil
}
