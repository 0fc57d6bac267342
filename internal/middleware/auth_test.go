package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jvanwell/taskbank/internal/auth"
	"github.com/jvanwell/taskbank/internal/database"
	"github.com/jvanwell/taskbank/internal/model"
	"github.com/jvanwell/taskbank/internal/store"
)

func setupAuthTest(t *testing.T) (*store.UserStore, *store.SessionStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return store.NewUserStore(db), store.NewSessionStore(db)
}

func TestRequireAuthRejectsMissingCookie(t *testing.T) {
	us, ss := setupAuthTest(t)

	handler := RequireAuth(ss, us)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	}))

	req := httptest.NewRequest("GET", "/api/tasks", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthRejectsUnknownToken(t *testing.T) {
	us, ss := setupAuthTest(t)

	handler := RequireAuth(ss, us)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	}))

	req := httptest.NewRequest("GET", "/api/tasks", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "bogus"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthPopulatesContext(t *testing.T) {
	us, ss := setupAuthTest(t)
	u, _ := us.Create("marie", "hunter2hunter2", model.RoleAssistant, "MV", model.LanguageDutch)
	sess, _ := ss.Create(u.ID)

	var got auth.AuthContext
	handler := RequireAuth(ss, us)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.FromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/api/tasks", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: sess.Token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got.UserID != u.ID || got.Username != "marie" || got.Role != model.RoleAssistant {
		t.Errorf("auth context = %+v", got)
	}
}

func TestRequireManager(t *testing.T) {
	ok := false
	handler := RequireManager(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok = true
	}))

	// Assistant: forbidden.
	req := httptest.NewRequest("GET", "/api/audit", nil)
	req = req.WithContext(auth.WithAuth(req.Context(), auth.AuthContext{UserID: 1, Role: model.RoleAssistant}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden || ok {
		t.Errorf("assistant: status = %d, handler reached = %v", rec.Code, ok)
	}

	// Manager: allowed.
	req = httptest.NewRequest("GET", "/api/audit", nil)
	req = req.WithContext(auth.WithAuth(req.Context(), auth.AuthContext{UserID: 2, Role: model.RoleManager}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !ok {
		t.Errorf("manager: status = %d, handler reached = %v", rec.Code, ok)
	}
}
