package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/jvanwell/taskbank/internal/auth"
	"github.com/jvanwell/taskbank/internal/gate"
	"github.com/jvanwell/taskbank/internal/model"
	"github.com/jvanwell/taskbank/internal/store"
	"github.com/jvanwell/taskbank/internal/websocket"
)

// AdminHandler exposes the destructive manager operations. Each one is a
// two-step flow: request a gate token naming the action, then confirm with
// the token before it expires.
type AdminHandler struct {
	gate          *gate.Service
	taskStore     *store.TaskStore
	overtimeStore *store.OvertimeStore
	userStore     *store.UserStore
	sessionStore  *store.SessionStore
	hub           *websocket.Hub
}

func NewAdminHandler(
	g *gate.Service,
	ts *store.TaskStore,
	os *store.OvertimeStore,
	us *store.UserStore,
	ss *store.SessionStore,
	hub *websocket.Hub,
) *AdminHandler {
	return &AdminHandler{
		gate:          g,
		taskStore:     ts,
		overtimeStore: os,
		userStore:     us,
		sessionStore:  ss,
		hub:           hub,
	}
}

func (h *AdminHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

var gateActions = map[string]bool{
	gate.ActionResetTasks:    true,
	gate.ActionResetOvertime: true,
	gate.ActionDeleteUser:    true,
	gate.ActionRestoreBackup: true,
}

// IssueGate hands out a short-lived token for one destructive action.
func (h *AdminHandler) IssueGate(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !gateActions[req.Action] {
		writeError(w, http.StatusBadRequest, "unknown action")
		return
	}

	token, err := h.gate.Issue(ac.UserID, req.Action)
	if err != nil {
		log.Printf("failed to issue gate token: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token, "action": req.Action})
}

// ResetTasks wipes all tasks, their history and preferences.
func (h *AdminHandler) ResetTasks(w http.ResponseWriter, r *http.Request) {
	if _, ok := verifyGate(w, r, h.gate, gate.ActionResetTasks); !ok {
		return
	}

	if err := h.taskStore.DeleteAll(); err != nil {
		log.Printf("failed to reset tasks: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to reset tasks")
		return
	}

	h.broadcast(websocket.NewMessage("task", "reset", 0, nil))
	w.WriteHeader(http.StatusNoContent)
}

// ResetOvertime wipes every overtime ledger.
func (h *AdminHandler) ResetOvertime(w http.ResponseWriter, r *http.Request) {
	if _, ok := verifyGate(w, r, h.gate, gate.ActionResetOvertime); !ok {
		return
	}

	if err := h.overtimeStore.DeleteAll(); err != nil {
		log.Printf("failed to reset overtime: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to reset overtime")
		return
	}

	h.broadcast(websocket.NewMessage("overtime", "reset", 0, nil))
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAssistant removes an assistant account and its sessions. Manager
// accounts cannot be deleted this way.
func (h *AdminHandler) DeleteAssistant(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if _, ok := verifyGate(w, r, h.gate, gate.ActionDeleteUser); !ok {
		return
	}

	target, err := h.userStore.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if target == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if target.Role == model.RoleManager {
		writeError(w, http.StatusForbidden, "manager accounts cannot be deleted")
		return
	}

	if err := h.sessionStore.DeleteForUser(id); err != nil {
		log.Printf("failed to delete sessions for user %d: %v", id, err)
	}
	if err := h.userStore.DeleteAssistant(id); err != nil {
		log.Printf("failed to delete assistant: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete assistant")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
