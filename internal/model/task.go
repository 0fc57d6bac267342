package model

import (
	"time"

	"github.com/jvanwell/taskbank/internal/schedule"
)

type Task struct {
	ID                int64              `json:"id"`
	Title             string             `json:"title"`
	Description       string             `json:"description"`
	Frequency         schedule.Frequency `json:"frequency"`
	IsPinned          bool               `json:"is_pinned"`
	CreatedBy         int64              `json:"created_by"`
	CreatedAt         time.Time          `json:"created_at"`
	LastCompleted     *time.Time         `json:"last_completed"`
	CompletedBy       *int64             `json:"completed_by"`
	CompletionComment string             `json:"completion_comment"`
	EvidenceKey       string             `json:"evidence_key,omitempty"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// TaskPreference records how an assistant feels about a task. Last write wins;
// no history is kept.
type TaskPreference string

const (
	PreferencePreferred TaskPreference = "preferred"
	PreferenceNeutral   TaskPreference = "neutral"
	PreferenceHated     TaskPreference = "hated"
)

func (p TaskPreference) Valid() bool {
	switch p {
	case PreferencePreferred, PreferenceNeutral, PreferenceHated:
		return true
	}
	return false
}
