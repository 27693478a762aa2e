// File: internal/session/state.go
package session

import (
	"time"

	"github.com/google/uuid"
)

// State is the locally cached snapshot of an authenticated identity. It is
// the only thing the rest of the application reads to answer "who is the
// current user" and "what role do they have"; only the authentication
// gateway writes it.
type State struct {
	Handle    string    `json:"handle"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsAuthenticated reports whether a session handle is present and the state
// has not expired. Pure and side-effect free; safe to call on every request.
func (s *State) IsAuthenticated() bool {
	if s == nil || s.Handle == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || time.Now().Before(s.ExpiresAt)
}

// IsAdmin reports whether the cached role is admin.
func (s *State) IsAdmin() bool {
	return s.IsAuthenticated() && s.Role == "admin"
}
