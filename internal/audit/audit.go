// Package audit derives the human-readable task history: one entry per
// mutating task operation, with a generated change summary. It is a pure
// read-side projection; the store only persists what this package produces.
package audit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jvanwell/taskbank/internal/model"
)

// CreatedSummary describes a freshly created task.
func CreatedSummary(task model.Task) string {
	return fmt.Sprintf("created task %q (%s)", task.Title, task.Frequency)
}

// UpdateSummary describes what changed between two versions of a task.
// Unchanged fields are not mentioned; a no-op edit still gets an entry.
func UpdateSummary(before, after model.Task) string {
	var changes []string
	if before.Title != after.Title {
		changes = append(changes, fmt.Sprintf("title changed from %q to %q", before.Title, after.Title))
	}
	if before.Description != after.Description {
		changes = append(changes, "description updated")
	}
	if before.Frequency != after.Frequency {
		changes = append(changes, fmt.Sprintf("frequency changed from %s to %s", before.Frequency, after.Frequency))
	}
	if len(changes) == 0 {
		return "no fields changed"
	}
	return strings.Join(changes, ", ")
}

// CompletedSummary describes a completion, noting whether it happened on or
// before the computed due date.
func CompletedSummary(task model.Task, completedOnTime bool) string {
	if completedOnTime {
		return fmt.Sprintf("marked %q done on time", task.Title)
	}
	return fmt.Sprintf("marked %q done late", task.Title)
}

// Chronological orders entries oldest first for the per-task narrative view.
// The sort is stable: entries sharing a timestamp keep insertion order.
func Chronological(entries []model.AuditEntry) []model.AuditEntry {
	out := make([]model.AuditEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// RecentFirst orders entries newest first for the global audit list view.
// Stable, so same-timestamp entries keep insertion order.
func RecentFirst(entries []model.AuditEntry) []model.AuditEntry {
	out := make([]model.AuditEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// ForTask filters entries down to one task's history, preserving order.
func ForTask(entries []model.AuditEntry, taskID int64) []model.AuditEntry {
	var out []model.AuditEntry
	for _, e := range entries {
		if e.TaskID == taskID {
			out = append(out, e)
		}
	}
	return out
}
