package store

import (
	"database/sql"
	"fmt"

	"github.com/jvanwell/taskbank/internal/model"
)

type PreferenceStore struct {
	db *sql.DB
}

func NewPreferenceStore(db *sql.DB) *PreferenceStore {
	return &PreferenceStore{db: db}
}

// Set records an assistant's preference for a task. Last write wins.
func (s *PreferenceStore) Set(username string, taskID int64, pref model.TaskPreference) error {
	_, err := s.db.Exec(
		`INSERT INTO task_preferences (username, task_id, preference) VALUES (?, ?, ?)
		 ON CONFLICT (username, task_id) DO UPDATE SET preference = excluded.preference, updated_at = CURRENT_TIMESTAMP`,
		username, taskID, string(pref),
	)
	if err != nil {
		return fmt.Errorf("set task preference: %w", err)
	}
	return nil
}

// ListByUsername returns the assistant's preferences keyed by task id.
// Unset tasks are simply absent (treated as neutral by callers).
func (s *PreferenceStore) ListByUsername(username string) (map[int64]model.TaskPreference, error) {
	rows, err := s.db.Query(
		`SELECT task_id, preference FROM task_preferences WHERE username = ?`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("list task preferences: %w", err)
	}
	defer rows.Close()

	prefs := make(map[int64]model.TaskPreference)
	for rows.Next() {
		var taskID int64
		var pref string
		if err := rows.Scan(&taskID, &pref); err != nil {
			return nil, fmt.Errorf("scan task preference: %w", err)
		}
		prefs[taskID] = model.TaskPreference(pref)
	}
	return prefs, rows.Err()
}
