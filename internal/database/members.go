package database

import (
	"database/sql"

	"github.com/google/uuid"
)

// InsertMember adds a member to the roster and returns its ID.
func (db *DB) InsertMember(m Member) (string, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	_, err := db.conn.Exec(
		`INSERT INTO members (id, name, phone, since) VALUES (?, ?, ?, ?)`,
		m.ID, m.Name, m.Phone, m.Since,
	)
	if err != nil {
		return "", err
	}
	return m.ID, nil
}

// GetAllMembers returns the full roster ordered by name.
func (db *DB) GetAllMembers() ([]Member, error) {
	rows, err := db.conn.Query(
		"SELECT id, name, phone, since, created_at FROM members ORDER BY name COLLATE NOCASE",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.Name, &m.Phone, &m.Since, &m.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// GetMember returns a single member by ID, or nil if absent.
func (db *DB) GetMember(id string) (*Member, error) {
	row := db.conn.QueryRow(
		"SELECT id, name, phone, since, created_at FROM members WHERE id = ?", id,
	)
	var m Member
	err := row.Scan(&m.ID, &m.Name, &m.Phone, &m.Since, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMember updates a member's roster entry. Existing counseling rows
// keep their denormalized name/phone snapshot on purpose.
func (db *DB) UpdateMember(m Member) error {
	_, err := db.conn.Exec(
		"UPDATE members SET name = ?, phone = ?, since = ? WHERE id = ?",
		m.Name, m.Phone, m.Since, m.ID,
	)
	return err
}
