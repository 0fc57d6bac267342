// Package gate issues and verifies short-lived signed tokens that guard
// destructive operations. A manager first requests a token naming the
// operation, then presents it when confirming; the two-step flow prevents a
// single stray request from wiping data.
package gate

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token fails signature or claim checks.
	ErrInvalidToken = errors.New("invalid gate token")
	// ErrWrongAction is returned when a valid token names a different operation.
	ErrWrongAction = errors.New("token issued for different action")
)

// Known gated actions.
const (
	ActionResetTasks    = "reset_tasks"
	ActionResetOvertime = "reset_overtime"
	ActionDeleteUser    = "delete_user"
	ActionRestoreBackup = "restore_backup"
)

// Config holds gate configuration.
type Config struct {
	Secret []byte
	TTL    time.Duration
}

// Service signs and verifies gate tokens.
type Service struct {
	cfg Config
}

type claims struct {
	Action string `json:"act"`
	jwt.RegisteredClaims
}

// NewService creates a gate service. TTL defaults to two minutes.
func NewService(cfg Config) *Service {
	if cfg.TTL == 0 {
		cfg.TTL = 2 * time.Minute
	}
	return &Service{cfg: cfg}
}

// Issue returns a signed token authorizing userID to perform action once,
// valid for the configured TTL.
func (s *Service) Issue(userID int64, action string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Action: action,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TTL)),
		},
	})

	signed, err := token.SignedString(s.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("sign gate token: %w", err)
	}
	return signed, nil
}

// Verify checks that tokenString is a valid, unexpired token issued to userID
// for the given action.
func (s *Service) Verify(tokenString string, userID int64, action string) error {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.cfg.Secret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}

	if c.Subject != fmt.Sprintf("%d", userID) {
		return ErrInvalidToken
	}
	if c.Action != action {
		return ErrWrongAction
	}
	return nil
}
