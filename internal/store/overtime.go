package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jvanwell/taskbank/internal/model"
)

type OvertimeStore struct {
	db *sql.DB
}

func NewOvertimeStore(db *sql.DB) *OvertimeStore {
	return &OvertimeStore{db: db}
}

func scanOvertime(scanner interface{ Scan(...any) error }) (*model.OvertimeEntry, error) {
	var e model.OvertimeEntry
	err := scanner.Scan(&e.ID, &e.Username, &e.Date, &e.Minutes, &e.Comment, &e.IsAdd, &e.Timestamp)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

const overtimeCols = `id, username, date, minutes, comment, is_add, timestamp`

// Append adds a new entry with a fresh creation timestamp. Validation happens
// in the ledger package before this is called.
func (s *OvertimeStore) Append(username, date string, minutes int, comment string, isAdd bool, timestamp time.Time) (*model.OvertimeEntry, error) {
	result, err := s.db.Exec(
		`INSERT INTO overtime_entries (username, date, minutes, comment, is_add, timestamp) VALUES (?, ?, ?, ?, ?, ?)`,
		username, date, minutes, comment, isAdd, timestamp.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert overtime entry: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+overtimeCols+` FROM overtime_entries WHERE id = ?`, id)
	return scanOvertime(row)
}

// EntriesByUsername returns a person's full ledger, oldest first.
func (s *OvertimeStore) EntriesByUsername(username string) ([]model.OvertimeEntry, error) {
	rows, err := s.db.Query(
		`SELECT `+overtimeCols+` FROM overtime_entries WHERE username = ? ORDER BY timestamp ASC, id ASC`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("list overtime entries: %w", err)
	}
	defer rows.Close()

	var entries []model.OvertimeEntry
	for rows.Next() {
		e, err := scanOvertime(rows)
		if err != nil {
			return nil, fmt.Errorf("scan overtime entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// LatestByUsername returns the entry with the maximum timestamp, or nil for
// an empty ledger.
func (s *OvertimeStore) LatestByUsername(username string) (*model.OvertimeEntry, error) {
	row := s.db.QueryRow(
		`SELECT `+overtimeCols+` FROM overtime_entries WHERE username = ? ORDER BY timestamp DESC, id DESC LIMIT 1`,
		username,
	)
	e, err := scanOvertime(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest overtime entry: %w", err)
	}
	return e, nil
}

// ReplaceLatest overwrites the fields of the entry identified by its creation
// timestamp, keeping that timestamp as its identity. The WHERE clause pins
// both username and timestamp, so zero rows affected means the target was
// deleted out from under us (a reset race). Callers establish that the target
// is the latest entry before calling; requests for one ledger are not
// expected to interleave.
func (s *OvertimeStore) ReplaceLatest(username string, target time.Time, date string, minutes int, comment string, isAdd bool) (*model.OvertimeEntry, error) {
	result, err := s.db.Exec(
		`UPDATE overtime_entries SET date = ?, minutes = ?, comment = ?, is_add = ? WHERE username = ? AND timestamp = ?`,
		date, minutes, comment, isAdd, username, target.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("replace overtime entry: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, nil
	}

	row := s.db.QueryRow(
		`SELECT `+overtimeCols+` FROM overtime_entries WHERE username = ? AND timestamp = ?`,
		username, target.UTC(),
	)
	return scanOvertime(row)
}

// Usernames lists every username that has at least one entry.
func (s *OvertimeStore) Usernames() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT username FROM overtime_entries ORDER BY username ASC`)
	if err != nil {
		return nil, fmt.Errorf("list overtime usernames: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan username: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DeleteAll wipes every ledger. Only reachable through the gated reset flow.
func (s *OvertimeStore) DeleteAll() error {
	if _, err := s.db.Exec(`DELETE FROM overtime_entries`); err != nil {
		return fmt.Errorf("reset overtime entries: %w", err)
	}
	return nil
}
