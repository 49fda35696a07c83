package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the persistence gateway for projects, sessions, messages,
// notes and todos. Writes go through a single connection; reads use a
// small pool.
type Store struct {
	writeDB *sql.DB
	readDB  *sql.DB
	dbPath  string

	now func() time.Time
}

// NewStore opens (and if necessary creates) the SQLite database at
// dbPath. An empty path defaults to ~/.labasi/labasi.db.
func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(homeDir, ".labasi", "labasi.db")
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open write database: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("failed to open read database: %w", err)
	}
	cfg := DefaultConfig()
	readDB.SetMaxOpenConns(cfg.MaxOpenConns)
	readDB.SetMaxIdleConns(cfg.MaxIdleConns)
	readDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	store := &Store{
		writeDB: writeDB,
		readDB:  readDB,
		dbPath:  dbPath,
		now:     func() time.Time { return time.Now().UTC() },
	}

	if err := store.initializeDB(); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := store.createTables(); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return store, nil
}

func (s *Store) initializeDB() error {
	cfg := DefaultConfig()
	for _, pragma := range cfg.pragmas() {
		if _, err := s.writeDB.Exec(pragma); err != nil {
			return fmt.Errorf("failed to set %s: %w", pragma, err)
		}
	}
	// The read pool needs foreign_keys and busy_timeout too; WAL is a
	// property of the database file itself.
	for _, pragma := range cfg.pragmas() {
		if _, err := s.readDB.Exec(pragma); err != nil {
			return fmt.Errorf("failed to set %s on read pool: %w", pragma, err)
		}
	}
	return nil
}

func (s *Store) createTables() error {
	queries := []string{
		queryCreateProjectsTable,
		queryCreateSessionsTable,
		queryCreateMessagesTable,
		queryCreateNotesTable,
		queryCreateTodosTable,
		queryCreateMessageSearch,
		queryCreateMessageSearchInsertTrigger,
		queryCreateMessageSearchDeleteTrigger,
		queryCreateIndexSessionsProject,
		queryCreateIndexSessionsAgent,
		queryCreateIndexMessagesSession,
		queryCreateIndexNotesProject,
		queryCreateIndexTodosProject,
		queryCreateIndexTodosStatus,
	}

	for _, query := range queries {
		if _, err := s.writeDB.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}

// Close flushes and closes both connection pools.
func (s *Store) Close() error {
	var errs []error

	if _, err := s.writeDB.Exec("PRAGMA optimize"); err != nil {
		errs = append(errs, fmt.Errorf("failed to optimize: %w", err))
	}

	if err := s.readDB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close read db: %w", err))
	}

	if err := s.writeDB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close write db: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}

	return nil
}
