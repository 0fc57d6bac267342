package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jvanwell/taskbank/internal/model"
)

type AuditStore struct {
	db *sql.DB
}

func NewAuditStore(db *sql.DB) *AuditStore {
	return &AuditStore{db: db}
}

func scanAudit(scanner interface{ Scan(...any) error }) (*model.AuditEntry, error) {
	var e model.AuditEntry
	var action string
	err := scanner.Scan(
		&e.ID, &action, &e.TaskID, &e.UserID, &e.Username,
		&e.Summary, &e.CompletionComment, &e.EvidenceKey, &e.Timestamp,
	)
	if err != nil {
		return nil, err
	}
	e.Action = model.AuditAction(action)
	return &e, nil
}

const auditCols = `id, action, task_id, user_id, username, summary, completion_comment, evidence_key, timestamp`

// Append writes one history entry. The log is append-only; there are no
// update or delete methods on purpose.
func (s *AuditStore) Append(action model.AuditAction, taskID, userID int64, username, summary, completionComment, evidenceKey string, timestamp time.Time) (*model.AuditEntry, error) {
	result, err := s.db.Exec(
		`INSERT INTO audit_log (action, task_id, user_id, username, summary, completion_comment, evidence_key, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(action), taskID, userID, username, summary, completionComment, evidenceKey, timestamp.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert audit entry: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+auditCols+` FROM audit_log WHERE id = ?`, id)
	return scanAudit(row)
}

// ListAll returns the global audit log, newest first (the list view order).
// Ties on timestamp fall back to insertion order.
func (s *AuditStore) ListAll() ([]model.AuditEntry, error) {
	return s.query(`SELECT ` + auditCols + ` FROM audit_log ORDER BY timestamp DESC, id DESC`)
}

// ListByTask returns one task's history oldest first, the chronological
// narrative order.
func (s *AuditStore) ListByTask(taskID int64) ([]model.AuditEntry, error) {
	return s.query(
		`SELECT `+auditCols+` FROM audit_log WHERE task_id = ? ORDER BY timestamp ASC, id ASC`,
		taskID,
	)
}

// ListByTaskRecentFirst returns one task's history newest first, used by the
// "most recent first" dialog view.
func (s *AuditStore) ListByTaskRecentFirst(taskID int64) ([]model.AuditEntry, error) {
	return s.query(
		`SELECT `+auditCols+` FROM audit_log WHERE task_id = ? ORDER BY timestamp DESC, id DESC`,
		taskID,
	)
}

func (s *AuditStore) query(q string, args ...any) ([]model.AuditEntry, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []model.AuditEntry
	for rows.Next() {
		e, err := scanAudit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}
