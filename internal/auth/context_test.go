package auth

import (
	"context"
	"testing"

	"github.com/jvanwell/taskbank/internal/model"
)

func TestWithAuthRoundTrip(t *testing.T) {
	ac := AuthContext{UserID: 42, Username: "marie", Role: model.RoleAssistant, SessionID: 7}
	ctx := WithAuth(context.Background(), ac)

	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected auth context")
	}
	if got != ac {
		t.Errorf("got %+v, want %+v", got, ac)
	}
}

func TestEmptyContext(t *testing.T) {
	ctx := context.Background()

	if _, ok := FromContext(ctx); ok {
		t.Error("expected no auth context")
	}
	if UserID(ctx) != 0 {
		t.Error("UserID on empty context should be 0")
	}
	if Username(ctx) != "" {
		t.Error("Username on empty context should be empty")
	}
	if IsManager(ctx) {
		t.Error("IsManager on empty context should be false")
	}
}

func TestIsManager(t *testing.T) {
	mgr := WithAuth(context.Background(), AuthContext{UserID: 1, Role: model.RoleManager})
	if !IsManager(mgr) {
		t.Error("manager role not detected")
	}

	asst := WithAuth(context.Background(), AuthContext{UserID: 2, Role: model.RoleAssistant})
	if IsManager(asst) {
		t.Error("assistant reported as manager")
	}
}
