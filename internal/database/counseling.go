package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// InsertCounseling records a counseling session for a member. The member's
// name and phone are captured from the roster at this moment; later roster
// edits do not touch the stored session.
func (db *DB) InsertCounseling(date, memberID, notes string) (string, error) {
	member, err := db.GetMember(memberID)
	if err != nil {
		return "", err
	}
	if member == nil {
		return "", fmt.Errorf("member %s not found", memberID)
	}

	id := uuid.NewString()
	_, err = db.conn.Exec(
		`INSERT INTO counseling (id, date, member_id, member_name, member_phone, notes, resolved)
		VALUES (?, ?, ?, ?, ?, ?, 0)`,
		id, date, member.ID, member.Name, member.Phone, notes,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetAllCounseling returns all counseling sessions, most recent first.
func (db *DB) GetAllCounseling() ([]CounselingSession, error) {
	rows, err := db.conn.Query(
		`SELECT id, date, member_id, member_name, member_phone, notes, resolved, created_at
		FROM counseling ORDER BY date DESC, created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []CounselingSession
	for rows.Next() {
		s, err := scanCounseling(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// GetCounseling returns a single session by ID, or nil if absent.
func (db *DB) GetCounseling(id string) (*CounselingSession, error) {
	row := db.conn.QueryRow(
		`SELECT id, date, member_id, member_name, member_phone, notes, resolved, created_at
		FROM counseling WHERE id = ?`, id,
	)
	s, err := scanCounseling(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// UpdateCounseling updates the mutable fields of a session. The member
// snapshot fields are not touched.
func (db *DB) UpdateCounseling(id, date, notes string) error {
	_, err := db.conn.Exec(
		"UPDATE counseling SET date = ?, notes = ? WHERE id = ?",
		date, notes, id,
	)
	return err
}

// ToggleCounselingResolved flips the resolved flag of a session.
func (db *DB) ToggleCounselingResolved(id string) error {
	_, err := db.conn.Exec(
		"UPDATE counseling SET resolved = NOT resolved WHERE id = ?", id,
	)
	return err
}

func scanCounseling(row rowScanner) (*CounselingSession, error) {
	var s CounselingSession
	if err := row.Scan(
		&s.ID, &s.Date, &s.MemberID, &s.MemberName, &s.MemberPhone,
		&s.Notes, &s.Resolved, &s.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}
