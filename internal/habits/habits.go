// Package habits summarizes an assistant's completion record for the manager
// analytics view. Pure projection over tasks and audit history.
package habits

import (
	"time"

	"github.com/jvanwell/taskbank/internal/audit"
	"github.com/jvanwell/taskbank/internal/model"
	"github.com/jvanwell/taskbank/internal/schedule"
)

// CompletionRecord is one completion by the assistant, with whether it beat
// the due date that applied at the time.
type CompletionRecord struct {
	TaskID          int64              `json:"task_id"`
	TaskTitle       string             `json:"task_title"`
	Frequency       schedule.Frequency `json:"frequency"`
	CompletedOnTime bool               `json:"completed_on_time"`
	Timestamp       time.Time          `json:"timestamp"`
}

// Summary aggregates an assistant's completions.
type Summary struct {
	Username       string `json:"username"`
	TotalTasks     int    `json:"total_tasks"`
	CompletedTasks int    `json:"completed_tasks"`
	OnTimeTasks    int    `json:"on_time_tasks"`
	DailyTasks     int    `json:"daily_tasks"`
	WeeklyTasks    int    `json:"weekly_tasks"`
	MonthlyTasks   int    `json:"monthly_tasks"`
}

// Habits is the full per-assistant view: the raw completions plus totals.
type Habits struct {
	Completions []CompletionRecord `json:"completions"`
	Summary     Summary            `json:"summary"`
}

// Build derives the habit view for one assistant from the task list and the
// full audit history. Completions are replayed chronologically per task so
// each one is judged against the due date that was in force when it happened.
func Build(username string, tasks []model.Task, history []model.AuditEntry) Habits {
	byID := make(map[int64]model.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	// Track the previous completion per task while replaying history oldest
	// first; the due date for each completion derives from the one before it.
	lastDone := make(map[int64]time.Time)

	h := Habits{Summary: Summary{Username: username, TotalTasks: len(tasks)}}

	for _, e := range audit.Chronological(history) {
		if e.Action != model.ActionTaskMarkedDone {
			continue
		}
		task, known := byID[e.TaskID]
		if !known {
			continue
		}

		var prev *time.Time
		if p, ok := lastDone[e.TaskID]; ok {
			prev = &p
		}
		due := schedule.NextDue(task.Frequency, prev, task.CreatedAt)
		lastDone[e.TaskID] = e.Timestamp

		if e.Username != username {
			continue
		}

		// Completing on the due day itself still counts as on time.
		onTime := !schedule.StartOfDay(e.Timestamp).After(due)

		h.Completions = append(h.Completions, CompletionRecord{
			TaskID:          e.TaskID,
			TaskTitle:       task.Title,
			Frequency:       task.Frequency,
			CompletedOnTime: onTime,
			Timestamp:       e.Timestamp,
		})

		h.Summary.CompletedTasks++
		if onTime {
			h.Summary.OnTimeTasks++
		}
		switch task.Frequency {
		case schedule.Daily:
			h.Summary.DailyTasks++
		case schedule.Weekly:
			h.Summary.WeeklyTasks++
		case schedule.Monthly:
			h.Summary.MonthlyTasks++
		}
	}

	return h
}
