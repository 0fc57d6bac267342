package store

import (
	"testing"
	"time"

	"github.com/jvanwell/taskbank/internal/database"
)

func setupBackupStore(t *testing.T) *BackupStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewBackupStore(db)
}

func TestBackupRecordAndList(t *testing.T) {
	bs := setupBackupStore(t)

	run, err := bs.Record("backups/taskbank-2026-01-05.db.enc", 2048)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if run.ID == 0 {
		t.Error("expected nonzero id")
	}

	runs, err := bs.List(10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].ObjectKey != "backups/taskbank-2026-01-05.db.enc" {
		t.Errorf("object key = %q", runs[0].ObjectKey)
	}
	if runs[0].SizeBytes != 2048 {
		t.Errorf("size = %d, want 2048", runs[0].SizeBytes)
	}
}

func TestBackupGetByID(t *testing.T) {
	bs := setupBackupStore(t)

	run, err := bs.Record("backups/a.db.enc", 1)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	got, err := bs.GetByID(run.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got == nil || got.ObjectKey != "backups/a.db.enc" {
		t.Errorf("got %+v", got)
	}

	missing, err := bs.GetByID(9999)
	if err != nil {
		t.Fatalf("GetByID missing failed: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing run")
	}
}

func TestBackupDeleteOlderThan(t *testing.T) {
	bs := setupBackupStore(t)

	if _, err := bs.Record("backups/old.db.enc", 1); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if _, err := bs.db.Exec(`UPDATE backup_runs SET created_at = ?`, time.Now().UTC().AddDate(0, 0, -45)); err != nil {
		t.Fatalf("age record: %v", err)
	}
	if _, err := bs.Record("backups/new.db.enc", 2); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	keys, err := bs.DeleteOlderThan(time.Now().UTC().AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("DeleteOlderThan failed: %v", err)
	}
	if len(keys) != 1 || keys[0] != "backups/old.db.enc" {
		t.Errorf("keys = %v", keys)
	}

	runs, err := bs.List(10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ObjectKey != "backups/new.db.enc" {
		t.Errorf("remaining runs = %+v", runs)
	}
}
