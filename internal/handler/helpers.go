package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/jvanwell/taskbank/internal/auth"
	"github.com/jvanwell/taskbank/internal/gate"
)

func parseIDParam(r *http.Request) (int64, error) {
	idStr := r.PathValue("id")
	return strconv.ParseInt(idStr, 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// verifyGate reads a gate token from the request body and checks that it was
// issued to the authenticated user for the named action. On failure the
// response has already been written.
func verifyGate(w http.ResponseWriter, r *http.Request, g *gate.Service, action string) (int64, bool) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return 0, false
	}

	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return 0, false
	}

	if err := g.Verify(req.Token, ac.UserID, action); err != nil {
		if errors.Is(err, gate.ErrWrongAction) {
			writeError(w, http.StatusForbidden, "token was issued for a different action")
			return 0, false
		}
		writeError(w, http.StatusForbidden, "invalid or expired token")
		return 0, false
	}
	return ac.UserID, true
}
