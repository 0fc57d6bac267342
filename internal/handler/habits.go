package handler

import (
	"net/http"

	"github.com/jvanwell/taskbank/internal/auth"
	"github.com/jvanwell/taskbank/internal/habits"
	"github.com/jvanwell/taskbank/internal/model"
	"github.com/jvanwell/taskbank/internal/store"
)

type HabitsHandler struct {
	taskStore  *store.TaskStore
	auditStore *store.AuditStore
}

func NewHabitsHandler(ts *store.TaskStore, as *store.AuditStore) *HabitsHandler {
	return &HabitsHandler{taskStore: ts, auditStore: as}
}

// Get returns an assistant's completion habits. Assistants can only see
// their own; managers can name anyone.
func (h *HabitsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	username := r.PathValue("username")
	if username == "" {
		username = ac.Username
	}
	if username != ac.Username && ac.Role != model.RoleManager {
		writeError(w, http.StatusForbidden, "cannot view another person's habits")
		return
	}

	tasks, err := h.taskStore.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load tasks")
		return
	}
	history, err := h.auditStore.ListAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	writeJSON(w, http.StatusOK, habits.Build(username, tasks, history))
}
