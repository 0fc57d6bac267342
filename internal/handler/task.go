package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/jvanwell/taskbank/internal/audit"
	"github.com/jvanwell/taskbank/internal/auth"
	"github.com/jvanwell/taskbank/internal/evidence"
	"github.com/jvanwell/taskbank/internal/model"
	"github.com/jvanwell/taskbank/internal/notify"
	"github.com/jvanwell/taskbank/internal/schedule"
	"github.com/jvanwell/taskbank/internal/store"
	"github.com/jvanwell/taskbank/internal/websocket"
)

type TaskHandler struct {
	taskStore  *store.TaskStore
	auditStore *store.AuditStore
	prefStore  *store.PreferenceStore
	evidence   *evidence.Store
	notifier   *notify.Service
	hub        *websocket.Hub
}

func NewTaskHandler(
	ts *store.TaskStore,
	as *store.AuditStore,
	ps *store.PreferenceStore,
	ev *evidence.Store,
	n *notify.Service,
	hub *websocket.Hub,
) *TaskHandler {
	return &TaskHandler{
		taskStore:  ts,
		auditStore: as,
		prefStore:  ps,
		evidence:   ev,
		notifier:   n,
		hub:        hub,
	}
}

func (h *TaskHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

// taskView is a task decorated with scheduling state for the list screens.
type taskView struct {
	model.Task
	NextDue      time.Time            `json:"next_due"`
	UrgencyLevel schedule.Level       `json:"urgency_level"`
	Preference   model.TaskPreference `json:"preference,omitempty"`
}

type taskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Frequency   string `json:"frequency"`
}

// List returns all tasks sorted most urgent first. Pinned tasks always lead,
// then overdue, then upcoming ones ranked by how soon they are due.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	var tasks []model.Task
	var err error
	if f := r.URL.Query().Get("frequency"); f != "" {
		freq, parseErr := schedule.ParseFrequency(f)
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, "frequency must be daily, weekly or monthly")
			return
		}
		tasks, err = h.taskStore.ListByFrequency(freq)
	} else {
		tasks, err = h.taskStore.List()
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}

	prefs := map[int64]model.TaskPreference{}
	if username := auth.Username(r.Context()); username != "" {
		if p, err := h.prefStore.ListByUsername(username); err == nil {
			prefs = p
		}
	}

	now := time.Now()
	views := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		due := schedule.NextDue(t.Frequency, t.LastCompleted, t.CreatedAt)
		views = append(views, taskView{
			Task:         t,
			NextDue:      due,
			UrgencyLevel: t.Frequency.Level(due, now),
			Preference:   prefs[t.ID],
		})
	}

	schedule.SortByScore(views, func(v taskView) float64 {
		return schedule.Score(v.Frequency, v.NextDue, v.IsPinned, now)
	})

	writeJSON(w, http.StatusOK, views)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	task, err := h.taskStore.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	now := time.Now()
	due := schedule.NextDue(task.Frequency, task.LastCompleted, task.CreatedAt)
	writeJSON(w, http.StatusOK, taskView{
		Task:         *task,
		NextDue:      due,
		UrgencyLevel: task.Frequency.Level(due, now),
	})
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	freq, err := schedule.ParseFrequency(req.Frequency)
	if err != nil {
		writeError(w, http.StatusBadRequest, "frequency must be daily, weekly or monthly")
		return
	}

	task, err := h.taskStore.Create(req.Title, req.Description, freq, ac.UserID)
	if err != nil {
		log.Printf("failed to create task: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	if _, err := h.auditStore.Append(model.ActionTaskCreated, task.ID, ac.UserID, ac.Username, audit.CreatedSummary(*task), "", "", time.Now()); err != nil {
		log.Printf("failed to record task creation: %v", err)
	}

	h.broadcast(websocket.NewMessage("task", "created", task.ID, nil))

	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	before, err := h.taskStore.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if before == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	freq, err := schedule.ParseFrequency(req.Frequency)
	if err != nil {
		writeError(w, http.StatusBadRequest, "frequency must be daily, weekly or monthly")
		return
	}

	after, err := h.taskStore.Update(id, req.Title, req.Description, freq)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update task")
		return
	}

	if _, err := h.auditStore.Append(model.ActionTaskUpdated, id, ac.UserID, ac.Username, audit.UpdateSummary(*before, *after), "", "", time.Now()); err != nil {
		log.Printf("failed to record task update: %v", err)
	}

	h.broadcast(websocket.NewMessage("task", "updated", id, nil))

	writeJSON(w, http.StatusOK, after)
}

func (h *TaskHandler) SetPinned(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.taskStore.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	var req struct {
		Pinned bool `json:"pinned"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	task, err := h.taskStore.SetPinned(id, req.Pinned)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update pin")
		return
	}

	h.broadcast(websocket.NewMessage("task", "pinned", id, map[string]any{"pinned": req.Pinned}))

	writeJSON(w, http.StatusOK, task)
}

// Complete marks a task done. The request may be JSON with a comment, or
// multipart/form-data carrying a comment plus an evidence photo.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.taskStore.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	comment, evidenceKey, err := h.readCompletion(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now()
	due := schedule.NextDue(existing.Frequency, existing.LastCompleted, existing.CreatedAt)
	onTime := !schedule.StartOfDay(now).After(due)

	task, err := h.taskStore.MarkDone(id, ac.UserID, now, comment, evidenceKey)
	if err != nil {
		if errors.Is(err, store.ErrStaleCompletion) {
			writeError(w, http.StatusConflict, "task was already completed more recently")
			return
		}
		log.Printf("failed to mark task done: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to complete task")
		return
	}

	if _, err := h.auditStore.Append(model.ActionTaskMarkedDone, id, ac.UserID, ac.Username, audit.CompletedSummary(*task, onTime), comment, evidenceKey, now); err != nil {
		log.Printf("failed to record task completion: %v", err)
	}

	if h.notifier != nil && ac.Role != model.RoleManager {
		h.notifier.TaskDone(task, ac.Username)
	}

	h.broadcast(websocket.NewMessage("task", "completed", id, map[string]any{"by": ac.Username}))

	writeJSON(w, http.StatusOK, taskView{
		Task:         *task,
		NextDue:      schedule.NextDue(task.Frequency, task.LastCompleted, task.CreatedAt),
		UrgencyLevel: task.Frequency.Level(schedule.NextDue(task.Frequency, task.LastCompleted, task.CreatedAt), now),
	})
}

// readCompletion extracts the comment and optional evidence photo from a
// completion request.
func (h *TaskHandler) readCompletion(r *http.Request) (comment, evidenceKey string, err error) {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		var req struct {
			Comment string `json:"comment"`
		}
		// An empty body is fine; completion without a comment is allowed.
		if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil && decodeErr != io.EOF {
			return "", "", errors.New("invalid JSON")
		}
		return strings.TrimSpace(req.Comment), "", nil
	}

	if err := r.ParseMultipartForm(12 << 20); err != nil {
		return "", "", errors.New("invalid multipart form")
	}
	comment = strings.TrimSpace(r.FormValue("comment"))

	file, header, err := r.FormFile("photo")
	if err == http.ErrMissingFile {
		return comment, "", nil
	}
	if err != nil {
		return "", "", errors.New("invalid photo upload")
	}
	defer file.Close()

	if h.evidence == nil {
		return comment, "", nil
	}
	key, err := h.evidence.Save(r.Context(), file, header.Filename)
	if err != nil {
		return "", "", err
	}
	return comment, key, nil
}

// Evidence streams the completion photo attached to a task.
func (h *TaskHandler) Evidence(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	task, err := h.taskStore.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if task == nil || task.EvidenceKey == "" {
		writeError(w, http.StatusNotFound, "no evidence photo for this task")
		return
	}

	if h.evidence == nil {
		writeError(w, http.StatusNotFound, "evidence storage not configured")
		return
	}

	rc, contentType, err := h.evidence.Open(r.Context(), task.EvidenceKey)
	if err != nil {
		writeError(w, http.StatusNotFound, "evidence photo not found")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	io.Copy(w, rc)
}
