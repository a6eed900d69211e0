package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// InsertActivity inserts an activity record and returns its ID.
func (db *DB) InsertActivity(a Activity) (string, error) {
	if !a.Category.Valid() {
		return "", fmt.Errorf("invalid activity category: %q", a.Category)
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := db.conn.Exec(
		`INSERT INTO activities (id, date, category, description, location)
		VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.Date, string(a.Category), a.Description, a.Location,
	)
	if err != nil {
		return "", err
	}
	return a.ID, nil
}

// GetAllActivities returns all activities, most recent first.
func (db *DB) GetAllActivities() ([]Activity, error) {
	rows, err := db.conn.Query(
		`SELECT id, date, category, description, location, created_at
		FROM activities ORDER BY date DESC, created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []Activity
	for rows.Next() {
		var a Activity
		var category string
		if err := rows.Scan(&a.ID, &a.Date, &category, &a.Description, &a.Location, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Category = ActivityCategory(category)
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// GetActivity returns a single activity by ID, or nil if absent.
func (db *DB) GetActivity(id string) (*Activity, error) {
	row := db.conn.QueryRow(
		`SELECT id, date, category, description, location, created_at
		FROM activities WHERE id = ?`, id,
	)
	var a Activity
	var category string
	err := row.Scan(&a.ID, &a.Date, &category, &a.Description, &a.Location, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.Category = ActivityCategory(category)
	return &a, nil
}

// DeleteActivity removes an activity record.
func (db *DB) DeleteActivity(id string) error {
	_, err := db.conn.Exec("DELETE FROM activities WHERE id = ?", id)
	return err
}
