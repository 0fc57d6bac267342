package store

import (
	"database/sql"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/jvanwell/taskbank/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var role, language string
	err := scanner.Scan(&u.ID, &u.Username, &role, &u.Initials, &language, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.Role = model.Role(role)
	u.Language = model.Language(language)
	return &u, nil
}

const userCols = `id, username, role, initials, language, password_hash, created_at, updated_at`

// Create registers a user with a bcrypt-hashed password.
func (s *UserStore) Create(username, password string, role model.Role, initials string, language model.Language) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	result, err := s.db.Exec(
		`INSERT INTO users (username, role, initials, language, password_hash) VALUES (?, ?, ?, ?, ?)`,
		username, string(role), initials, string(language), string(hash),
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByUsername(username string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE username = ?`, username)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

// Authenticate checks a username/password pair and returns the user on
// success, nil on any mismatch (no distinction leaked to the caller).
func (s *UserStore) Authenticate(username, password string) (*model.User, error) {
	u, err := s.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, nil
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, nil
	}
	return u, nil
}

// ListAssistants returns all assistant users ordered by username.
func (s *UserStore) ListAssistants() ([]model.User, error) {
	rows, err := s.db.Query(
		`SELECT `+userCols+` FROM users WHERE role = ? ORDER BY username ASC`,
		string(model.RoleAssistant),
	)
	if err != nil {
		return nil, fmt.Errorf("list assistants: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// ListManagers returns all manager users ordered by username.
func (s *UserStore) ListManagers() ([]model.User, error) {
	rows, err := s.db.Query(
		`SELECT `+userCols+` FROM users WHERE role = ? ORDER BY username ASC`,
		string(model.RoleManager),
	)
	if err != nil {
		return nil, fmt.Errorf("list managers: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *UserStore) UpdateProfile(id int64, initials string, language model.Language) (*model.User, error) {
	_, err := s.db.Exec(
		`UPDATE users SET initials = ?, language = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		initials, string(language), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update user profile: %w", err)
	}
	return s.GetByID(id)
}

// DeleteAssistant removes an assistant account. Manager accounts are never
// deleted this way.
func (s *UserStore) DeleteAssistant(id int64) error {
	result, err := s.db.Exec(
		`DELETE FROM users WHERE id = ? AND role = ?`,
		id, string(model.RoleAssistant),
	)
	if err != nil {
		return fmt.Errorf("delete assistant: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("assistant %d not found", id)
	}
	return nil
}
