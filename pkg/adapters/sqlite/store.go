// Package sqlite stores collection slots as rows of a key/value table using
// the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/introspection"
	_ "modernc.org/sqlite"

	"github.com/aretw0/wiki/pkg/core"
)

// DefaultFilename is the database file created inside the vault system dir.
const DefaultFilename = "wiki.db"

// Store implements core.Store on a single SQLite table.
type Store struct {
	db       *sql.DB
	path     string
	readOnly bool
	logger   *slog.Logger
}

// Config holds the configuration for the SQLite store.
type Config struct {
	Path     string // database file
	ReadOnly bool
	Logger   *slog.Logger
}

// NewStore opens (creating if needed) the database at config.Path.
// The schema is created automatically.
func NewStore(config Config) (*Store, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "sqlite-store")

	if dir := filepath.Dir(config.Path); !config.ReadOnly {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &Store{
		db:       db,
		path:     config.Path,
		readOnly: config.ReadOnly,
		logger:   logger,
	}

	if err := s.createSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Debug("SQLite store initialized", "path", config.Path)
	return s, nil
}

func (s *Store) createSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			updated_at DATETIME NOT NULL
		);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Initialize implements core.Store. It re-applies the (idempotent) schema.
func (s *Store) Initialize(ctx context.Context) error {
	if err := s.createSchema(ctx); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Get implements core.Store.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", core.ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("querying slot %s: %w", key, err)
	}
	return value, nil
}

// Set implements core.Store.
func (s *Store) Set(ctx context.Context, key string, data []byte) error {
	if s.readOnly {
		return core.ErrReadOnly
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("writing slot %s: %w", key, err)
	}

	s.logger.Debug("slot written", "key", key, "bytes", len(data))
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// StoreState exposes internal state for observability.
type StoreState struct {
	Path     string `json:"path"`
	Slots    int    `json:"slots"`
	ReadOnly bool   `json:"read_only"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	st := StoreState{Path: s.path, ReadOnly: s.readOnly}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM kv`).Scan(&st.Slots); err != nil {
		s.logger.Debug("failed to count slots", "error", err)
	}
	return st
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "sqlite-store"
}

var (
	_ core.Store                   = (*Store)(nil)
	_ core.Closer                  = (*Store)(nil)
	_ introspection.Introspectable = (*Store)(nil)
	_ introspection.Component      = (*Store)(nil)
)
