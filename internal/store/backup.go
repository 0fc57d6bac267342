package store

import (
	"database/sql"
	"fmt"
	"time"
)

// BackupRun records one completed offsite backup upload.
type BackupRun struct {
	ID        int64     `json:"id"`
	ObjectKey string    `json:"object_key"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

type BackupStore struct {
	db *sql.DB
}

func NewBackupStore(db *sql.DB) *BackupStore {
	return &BackupStore{db: db}
}

func (s *BackupStore) Record(objectKey string, sizeBytes int64) (*BackupRun, error) {
	now := time.Now().UTC()
	result, err := s.db.Exec(
		`INSERT INTO backup_runs (object_key, size_bytes, created_at) VALUES (?, ?, ?)`,
		objectKey, sizeBytes, now,
	)
	if err != nil {
		return nil, fmt.Errorf("record backup run: %w", err)
	}
	id, _ := result.LastInsertId()
	return &BackupRun{ID: id, ObjectKey: objectKey, SizeBytes: sizeBytes, CreatedAt: now}, nil
}

func (s *BackupStore) GetByID(id int64) (*BackupRun, error) {
	row := s.db.QueryRow(`SELECT id, object_key, size_bytes, created_at FROM backup_runs WHERE id = ?`, id)
	var r BackupRun
	err := row.Scan(&r.ID, &r.ObjectKey, &r.SizeBytes, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get backup run: %w", err)
	}
	return &r, nil
}

func (s *BackupStore) List(limit int) ([]BackupRun, error) {
	rows, err := s.db.Query(
		`SELECT id, object_key, size_bytes, created_at FROM backup_runs ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list backup runs: %w", err)
	}
	defer rows.Close()

	var runs []BackupRun
	for rows.Next() {
		var r BackupRun
		if err := rows.Scan(&r.ID, &r.ObjectKey, &r.SizeBytes, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan backup run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// DeleteOlderThan prunes run records older than the cutoff and returns their
// object keys so the caller can delete the remote objects too.
func (s *BackupStore) DeleteOlderThan(before time.Time) ([]string, error) {
	rows, err := s.db.Query(`SELECT object_key FROM backup_runs WHERE created_at < ?`, before.UTC())
	if err != nil {
		return nil, fmt.Errorf("select old backup runs: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan object key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := s.db.Exec(`DELETE FROM backup_runs WHERE created_at < ?`, before.UTC()); err != nil {
		return nil, fmt.Errorf("delete old backup runs: %w", err)
	}
	return keys, nil
}
