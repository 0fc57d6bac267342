package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jvanwell/taskbank/internal/model"
	"github.com/jvanwell/taskbank/internal/schedule"
)

// ErrStaleCompletion is returned when a completion would move last_completed
// backwards. Completion timestamps only ever advance.
var ErrStaleCompletion = fmt.Errorf("completion timestamp precedes existing last_completed")

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var freq string
	var lastCompleted sql.NullTime
	var completedBy sql.NullInt64

	err := scanner.Scan(
		&t.ID, &t.Title, &t.Description, &freq, &t.IsPinned,
		&t.CreatedBy, &t.CreatedAt, &lastCompleted, &completedBy,
		&t.CompletionComment, &t.EvidenceKey, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Frequency = schedule.Frequency(freq)
	if lastCompleted.Valid {
		t.LastCompleted = &lastCompleted.Time
	}
	if completedBy.Valid {
		t.CompletedBy = &completedBy.Int64
	}
	return &t, nil
}

const taskCols = `id, title, description, frequency, is_pinned, created_by, created_at, last_completed, completed_by, completion_comment, evidence_key, updated_at`

func (s *TaskStore) Create(title, description string, freq schedule.Frequency, createdBy int64) (*model.Task, error) {
	result, err := s.db.Exec(
		`INSERT INTO tasks (title, description, frequency, created_by) VALUES (?, ?, ?, ?)`,
		title, description, string(freq), createdBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) GetByID(id int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *TaskStore) List() ([]model.Task, error) {
	rows, err := s.db.Query(`SELECT ` + taskCols + ` FROM tasks ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *TaskStore) ListByFrequency(freq schedule.Frequency) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks WHERE frequency = ? ORDER BY created_at ASC, id ASC`,
		string(freq),
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks by frequency: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *TaskStore) Update(id int64, title, description string, freq schedule.Frequency) (*model.Task, error) {
	_, err := s.db.Exec(
		`UPDATE tasks SET title = ?, description = ?, frequency = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		title, description, string(freq), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) SetPinned(id int64, pinned bool) (*model.Task, error) {
	_, err := s.db.Exec(
		`UPDATE tasks SET is_pinned = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		pinned, id,
	)
	if err != nil {
		return nil, fmt.Errorf("set pinned: %w", err)
	}
	return s.GetByID(id)
}

// MarkDone records a completion. last_completed never moves backwards: a
// completion older than the stored one is rejected with ErrStaleCompletion.
func (s *TaskStore) MarkDone(id int64, completedBy int64, completedAt time.Time, comment, evidenceKey string) (*model.Task, error) {
	existing, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}
	if existing.LastCompleted != nil && completedAt.Before(*existing.LastCompleted) {
		return nil, ErrStaleCompletion
	}

	_, err = s.db.Exec(
		`UPDATE tasks SET last_completed = ?, completed_by = ?, completion_comment = ?, evidence_key = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		completedAt.UTC(), completedBy, comment, evidenceKey, id,
	)
	if err != nil {
		return nil, fmt.Errorf("mark done: %w", err)
	}
	return s.GetByID(id)
}

// DeleteAll wipes the task list along with its history and preferences.
// Only reachable through the gated reset flow.
func (s *TaskStore) DeleteAll() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"audit_log", "task_preferences", "tasks"} {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return tx.Commit()
}
