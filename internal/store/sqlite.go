package store

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"nickandperla.net/bfi/internal/tape"
)

// Current schema version
const SchemaVersion = "1"

// SQLite is a SQLite-backed store.
type SQLite struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLite creates a new SQLite store at the given path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, err
	}

	// Create tables if not exists
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			name TEXT PRIMARY KEY,
			session TEXT NOT NULL,
			cursor INTEGER NOT NULL,
			cells BLOB NOT NULL,
			saved TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLite{db: db}

	// Check/set schema version (use unlocked versions since we're in init)
	version, err := s.getMetadataUnlocked("schema_version")
	if err != nil {
		db.Close()
		return nil, err
	}

	switch version {
	case "":
		if err := s.setMetadataUnlocked("schema_version", SchemaVersion); err != nil {
			db.Close()
			return nil, err
		}
	case SchemaVersion:
	default:
		db.Close()
		return nil, fmt.Errorf("unsupported schema version: %s (expected %s)", version, SchemaVersion)
	}

	return s, nil
}

// Get retrieves a snapshot by name.
func (s *SQLite) Get(name string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		snap  = Snapshot{Name: name}
		blob  []byte
		saved string
	)
	err := s.db.QueryRow(
		"SELECT session, cursor, cells, saved FROM snapshots WHERE name = ?", name,
	).Scan(&snap.Session, &snap.Cursor, &blob, &saved)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	snap.Cells, err = decodeCells(blob)
	if err != nil {
		return nil, fmt.Errorf("snapshot %q: %w", name, err)
	}
	snap.Saved, err = time.Parse(time.RFC3339Nano, saved)
	if err != nil {
		return nil, fmt.Errorf("snapshot %q: %w", name, err)
	}
	return &snap, nil
}

// Put stores a snapshot under its name.
func (s *SQLite) Put(snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO snapshots (name, session, cursor, cells, saved) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			session = excluded.session,
			cursor = excluded.cursor,
			cells = excluded.cells,
			saved = excluded.saved
	`, snap.Name, snap.Session, snap.Cursor, encodeCells(snap.Cells), snap.Saved.UTC().Format(time.RFC3339Nano))
	return err
}

// Delete removes a snapshot by name.
func (s *SQLite) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM snapshots WHERE name = ?", name)
	return err
}

// List returns all snapshot names in sorted order.
func (s *SQLite) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query("SELECT name FROM snapshots ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// GetMetadata retrieves a metadata value by key.
func (s *SQLite) GetMetadata(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getMetadataUnlocked(key)
}

// getMetadataUnlocked retrieves metadata without locking (caller must hold lock).
func (s *SQLite) getMetadataUnlocked(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetMetadata stores a metadata value by key.
func (s *SQLite) SetMetadata(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setMetadataUnlocked(key, value)
}

// setMetadataUnlocked stores metadata without locking (caller must hold lock).
func (s *SQLite) setMetadataUnlocked(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// encodeCells packs cells as (zigzag varint address, value byte) pairs.
func encodeCells(cells []tape.Cell) []byte {
	buf := make([]byte, 0, len(cells)*3)
	for _, c := range cells {
		buf = binary.AppendVarint(buf, int64(c.Addr))
		buf = append(buf, c.Value)
	}
	return buf
}

var errCorruptCells = errors.New("corrupt cell data")

// decodeCells reverses encodeCells.
func decodeCells(b []byte) ([]tape.Cell, error) {
	var cells []tape.Cell
	for len(b) > 0 {
		addr, n := binary.Varint(b)
		if n <= 0 || n >= len(b) {
			return nil, errCorruptCells
		}
		cells = append(cells, tape.Cell{Addr: int(addr), Value: b[n]})
		b = b[n+1:]
	}
	return cells, nil
}
