package badger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/scholar/internal/common"
)

// BadgerDB wraps the badgerhold store backing the document catalog.
type BadgerDB struct {
	store  *badgerhold.Store
	logger arbor.ILogger
	config *common.BadgerConfig
}

// NewBadgerDB opens the catalog database at the configured path, wiping
// any previous data first when reset_on_startup is set.
func NewBadgerDB(logger arbor.ILogger, config *common.BadgerConfig) (*BadgerDB, error) {
	if config.ResetOnStartup {
		if err := os.RemoveAll(config.Path); err != nil && !os.IsNotExist(err) {
			logger.Warn().Err(err).Str("path", config.Path).Msg("Failed to reset catalog database")
		} else {
			logger.Debug().Str("path", config.Path).Msg("Catalog database reset (reset_on_startup=true)")
		}
	}

	if err := os.MkdirAll(filepath.Dir(config.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create catalog directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = config.Path
	options.ValueDir = config.Path
	options.Logger = nil // badger's own logger is noisy, arbor covers it

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}

	logger.Debug().Str("path", config.Path).Msg("Catalog database opened")

	return &BadgerDB{
		store:  store,
		logger: logger,
		config: config,
	}, nil
}

// Store exposes the underlying badgerhold store.
func (b *BadgerDB) Store() *badgerhold.Store {
	return b.store
}

// Close releases the database.
func (b *BadgerDB) Close() error {
	if b.store != nil {
		return b.store.Close()
	}
	return nil
}
