// File: internal/auth/model.go
package auth

import (
	"time"

	"github.com/google/uuid"

	"cv_bank_backend/internal/session"
)

// RegisterRequest is the payload for account creation.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=255"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=5,max=72"`
}

// LoginRequest carries backend-specific credentials: email+password for the
// embedded and hosted backends, id_token for the firebase backend.
type LoginRequest struct {
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password"`
	IDToken  string `json:"id_token"`
}

// SessionResponse is the session projection returned to clients. The handle
// travels in the token field; clients echo it back as a bearer token.
type SessionResponse struct {
	Token     string    `json:"token"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ToSessionResponse converts a session state into its API projection.
func ToSessionResponse(s *session.State) SessionResponse {
	return SessionResponse{
		Token:     s.Handle,
		UserID:    s.UserID,
		Name:      s.Name,
		Role:      s.Role,
		ExpiresAt: s.ExpiresAt,
	}
}
