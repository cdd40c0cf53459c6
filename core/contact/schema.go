package contact

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// EnsureSchema creates the contacts table, its indexes and the key lock table
// if they are missing.
func EnsureSchema(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&Contact{}, &KeyLock{}); err != nil {
		return fmt.Errorf("failed to ensure contacts schema: %w", err)
	}
	return nil
}
