package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	conn *sql.DB
	path string
}

// Open creates or opens a SQLite database at the given path.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return &DB{conn: conn, path: dbPath}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// LoadAll loads every collection in one snapshot. Gatherings, counseling
// and activities come back most-recent-first; members alphabetically.
func (db *DB) LoadAll() (*Snapshot, error) {
	gatherings, err := db.GetAllGatherings()
	if err != nil {
		return nil, fmt.Errorf("loading gatherings: %w", err)
	}
	members, err := db.GetAllMembers()
	if err != nil {
		return nil, fmt.Errorf("loading members: %w", err)
	}
	counseling, err := db.GetAllCounseling()
	if err != nil {
		return nil, fmt.Errorf("loading counseling: %w", err)
	}
	activities, err := db.GetAllActivities()
	if err != nil {
		return nil, fmt.Errorf("loading activities: %w", err)
	}

	return &Snapshot{
		Gatherings: gatherings,
		Members:    members,
		Counseling: counseling,
		Activities: activities,
	}, nil
}

// GetStats returns record counts across all collections.
func (db *DB) GetStats() (*Stats, error) {
	s := &Stats{}
	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM gatherings", &s.Gatherings},
		{"SELECT COUNT(*) FROM members", &s.Members},
		{"SELECT COUNT(*) FROM counseling", &s.Counseling},
		{"SELECT COUNT(*) FROM counseling WHERE resolved = 1", &s.CounselingResolved},
		{"SELECT COUNT(*) FROM activities", &s.Activities},
	}
	for _, c := range counts {
		if err := db.conn.QueryRow(c.query).Scan(c.dest); err != nil {
			return nil, err
		}
	}
	return s, nil
}
