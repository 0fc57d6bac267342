package model

import "time"

// AuditAction tags what kind of task mutation produced a history entry.
type AuditAction string

const (
	ActionTaskCreated    AuditAction = "task_created"
	ActionTaskUpdated    AuditAction = "task_updated"
	ActionTaskMarkedDone AuditAction = "task_marked_done"
)

// AuditEntry is one line in the append-only task history. Exactly one entry
// is written per mutating task operation.
type AuditEntry struct {
	ID                int64       `json:"id"`
	Action            AuditAction `json:"action"`
	TaskID            int64       `json:"task_id"`
	UserID            int64       `json:"user_id"`
	Username          string      `json:"username"`
	Summary           string      `json:"summary"`
	CompletionComment string      `json:"completion_comment,omitempty"`
	EvidenceKey       string      `json:"evidence_key,omitempty"`
	Timestamp         time.Time   `json:"timestamp"`
}
