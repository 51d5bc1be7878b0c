// Package sqlite implements the embedded SQLite storage backend for the
// freezer inventory. SQLite is the durable store: every mutating
// operation commits before returning, and the database file is reused
// across runs.
package sqlite

import (
	"database/sql"
	_ "embed"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/freezer/pkg/types"
)

//go:embed schema.sql
var schemaSQL string

// dbFileName is the SQLite database file created under DataDir.
const dbFileName = "freezer.db"

// Backend implements the Store interface using an embedded SQLite
// database.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
}

// Compile-time interface check: Backend must implement Store.
var _ types.Store = (*Backend)(nil)

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{}
}

// Attach initializes the backend with the given configuration.
// Creates DataDir if it does not exist and applies the schema.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	config.Normalize()
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, dbFileName))
	if err != nil {
		return err
	}

	// Single connection: SQLite allows one writer at a time, and funneling
	// through one conn avoids SQLITE_BUSY under concurrent adders.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return err
	}

	b.db = db
	b.config = config
	b.attached = true
	return nil
}

// Detach releases the database connection. Idempotent. After Detach, all
// operations return ErrStoreDetached.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil // idempotent
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}

	b.attached = false
	return nil
}

// guard returns ErrStoreDetached unless the backend is attached.
// Callers must hold b.mu (read or write lock).
func (b *Backend) guard() error {
	if !b.attached {
		return types.ErrStoreDetached
	}
	return nil
}

// generateUUID generates a new UUID v7 for item IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}
