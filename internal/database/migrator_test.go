package database

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewMigrator_Validation(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("fails with nil database", func(t *testing.T) {
		migrator, err := NewMigrator(nil, "/some/path", logger)
		assert.Error(t, err)
		assert.Nil(t, migrator)
		assert.Contains(t, err.Error(), "database connection is required")
	})

	t.Run("fails with nil pool", func(t *testing.T) {
		db := &DB{pool: nil}
		migrator, err := NewMigrator(db, "/some/path", logger)
		assert.Error(t, err)
		assert.Nil(t, migrator)
		assert.Contains(t, err.Error(), "database connection is required")
	})
}
