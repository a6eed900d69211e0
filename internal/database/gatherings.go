package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// InsertGathering inserts a gathering record and returns its ID. An empty
// ID gets a fresh UUID. Total is always recomputed from the counts so the
// total == sum(counts) invariant cannot be violated by the caller.
func (db *DB) InsertGathering(g Gathering) (string, error) {
	if !g.Category.Valid() {
		return "", fmt.Errorf("invalid gathering category: %q", g.Category)
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	g.Total = g.Attendance.Sum()

	_, err := db.conn.Exec(
		`INSERT INTO gatherings (id, date, category, men, women, adolescents, children, online, total, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Date, string(g.Category),
		g.Attendance.Men, g.Attendance.Women, g.Attendance.Adolescents,
		g.Attendance.Children, g.Attendance.Online, g.Total, g.Notes,
	)
	if err != nil {
		return "", err
	}
	return g.ID, nil
}

// GetAllGatherings returns all gatherings, most recent first.
func (db *DB) GetAllGatherings() ([]Gathering, error) {
	rows, err := db.conn.Query(
		`SELECT id, date, category, men, women, adolescents, children, online, total, notes, created_at
		FROM gatherings ORDER BY date DESC, created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGatherings(rows)
}

// GetGathering returns a single gathering by ID, or nil if absent.
func (db *DB) GetGathering(id string) (*Gathering, error) {
	row := db.conn.QueryRow(
		`SELECT id, date, category, men, women, adolescents, children, online, total, notes, created_at
		FROM gatherings WHERE id = ?`, id,
	)
	g, err := scanGathering(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// DeleteGathering removes a gathering record.
func (db *DB) DeleteGathering(id string) error {
	_, err := db.conn.Exec("DELETE FROM gatherings WHERE id = ?", id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGathering(row rowScanner) (*Gathering, error) {
	var g Gathering
	var category string
	if err := row.Scan(
		&g.ID, &g.Date, &category,
		&g.Attendance.Men, &g.Attendance.Women, &g.Attendance.Adolescents,
		&g.Attendance.Children, &g.Attendance.Online,
		&g.Total, &g.Notes, &g.CreatedAt,
	); err != nil {
		return nil, err
	}
	g.Category = GatheringCategory(category)
	return &g, nil
}

func scanGatherings(rows *sql.Rows) ([]Gathering, error) {
	var gatherings []Gathering
	for rows.Next() {
		g, err := scanGathering(rows)
		if err != nil {
			return nil, err
		}
		gatherings = append(gatherings, *g)
	}
	return gatherings, rows.Err()
}
