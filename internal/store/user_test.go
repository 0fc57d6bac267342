package store

import (
	"testing"

	"github.com/jvanwell/taskbank/internal/database"
	"github.com/jvanwell/taskbank/internal/model"
)

func setupUserTestDB(t *testing.T) (*UserStore, *SessionStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewUserStore(db), NewSessionStore(db)
}

func TestUserCreateHashesPassword(t *testing.T) {
	us, _ := setupUserTestDB(t)

	u, err := us.Create("marie", "hunter2hunter2", model.RoleAssistant, "MV", model.LanguageDutch)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.PasswordHash == "hunter2hunter2" || u.PasswordHash == "" {
		t.Errorf("password stored in the clear or empty")
	}
	if u.Role != model.RoleAssistant {
		t.Errorf("role = %q", u.Role)
	}
}

func TestUserAuthenticate(t *testing.T) {
	us, _ := setupUserTestDB(t)
	us.Create("marie", "hunter2hunter2", model.RoleAssistant, "MV", model.LanguageDutch)

	u, err := us.Authenticate("marie", "hunter2hunter2")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if u == nil {
		t.Fatal("expected successful auth")
	}

	u, err = us.Authenticate("marie", "wrong")
	if err != nil {
		t.Fatalf("authenticate wrong: %v", err)
	}
	if u != nil {
		t.Error("wrong password must not authenticate")
	}

	u, err = us.Authenticate("ghost", "hunter2hunter2")
	if err != nil {
		t.Fatalf("authenticate unknown: %v", err)
	}
	if u != nil {
		t.Error("unknown user must not authenticate")
	}
}

func TestUserListAssistants(t *testing.T) {
	us, _ := setupUserTestDB(t)
	us.Create("dr-peeters", "managerpass", model.RoleManager, "DP", model.LanguageDutch)
	us.Create("sofie", "assistpass1", model.RoleAssistant, "SD", model.LanguageFrench)
	us.Create("marie", "assistpass2", model.RoleAssistant, "MV", model.LanguageDutch)

	assistants, err := us.ListAssistants()
	if err != nil {
		t.Fatalf("list assistants: %v", err)
	}
	if len(assistants) != 2 {
		t.Fatalf("len = %d, want 2", len(assistants))
	}
	if assistants[0].Username != "marie" || assistants[1].Username != "sofie" {
		t.Errorf("order = %s, %s", assistants[0].Username, assistants[1].Username)
	}
}

func TestDeleteAssistantRefusesManager(t *testing.T) {
	us, _ := setupUserTestDB(t)
	mgr, _ := us.Create("dr-peeters", "managerpass", model.RoleManager, "DP", model.LanguageDutch)

	if err := us.DeleteAssistant(mgr.ID); err == nil {
		t.Error("deleting a manager through DeleteAssistant must fail")
	}

	got, _ := us.GetByID(mgr.ID)
	if got == nil {
		t.Error("manager was deleted")
	}
}

func TestSessionLifecycle(t *testing.T) {
	us, ss := setupUserTestDB(t)
	u, _ := us.Create("marie", "hunter2hunter2", model.RoleAssistant, "MV", model.LanguageDutch)

	sess, err := ss.Create(u.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if len(sess.Token) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(sess.Token))
	}

	got, err := ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got == nil || got.UserID != u.ID {
		t.Fatalf("get by token = %+v", got)
	}

	if err := ss.DeleteForUser(u.ID); err != nil {
		t.Fatalf("delete for user: %v", err)
	}
	got, _ = ss.GetByToken(sess.Token)
	if got != nil {
		t.Error("session survived DeleteForUser")
	}
}
