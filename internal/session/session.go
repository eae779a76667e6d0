// Package session holds the client-side record of a logged-in account. It
// replaces the ambient auth context of the original UI with an explicit
// object that is passed into request-making code and loaded/saved on demand.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/livetest-app/livetest/internal/models"
)

// ErrNotFound indicates no session has been saved yet.
var ErrNotFound = errors.New("no saved session")

// Session is the ephemeral identity of the logged-in user. Exactly one role
// applies; the role gates which actions the clients offer (the grading
// service enforces nothing at this layer).
type Session struct {
	UserID      int    `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	AccessToken string `json:"access_token"`
}

// IsTeacher reports whether teacher-only actions are available.
func (s Session) IsTeacher() bool {
	return s.Role == models.RoleTeacher
}

// Valid reports whether the session carries enough to authenticate requests.
func (s Session) Valid() bool {
	return s.AccessToken != "" && (s.Role == models.RoleTeacher || s.Role == models.RoleStudent)
}

// Load reads a previously saved session from path.
func Load(path string) (Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Session{}, ErrNotFound
		}
		return Session{}, fmt.Errorf("read session file: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("parse session file: %w", err)
	}
	if !s.Valid() {
		return Session{}, ErrNotFound
	}

	return s, nil
}

// Save writes the session to path, readable by the owner only.
func Save(path string, s Session) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}

	return nil
}

// Clear removes a saved session. Missing files are not an error.
func Clear(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
