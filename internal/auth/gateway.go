// File: internal/auth/gateway.go
package auth

import (
	"context"

	"cv_bank_backend/internal/session"
)

// EventKind identifies an auth state transition.
type EventKind string

const (
	EventSignedIn  EventKind = "signed_in"
	EventSignedOut EventKind = "signed_out"
)

// Event is delivered to auth state observers. State is the session that
// signed in, or the session that was just destroyed.
type Event struct {
	Kind  EventKind
	State *session.State
}

// Credentials carries whatever the active backend needs to authenticate.
// Email+Password drive the embedded and hosted backends; the firebase
// backend requires a provider-issued IDToken instead.
type Credentials struct {
	Email    string
	Password string
	IDToken  string
}

// Gateway is the authentication boundary. Exactly one implementation is
// active per process, chosen by the configured backend.
//
// Semantics shared by all implementations:
//   - Login failure returns common.ErrUnauthorized and leaves the session
//     cache untouched.
//   - Register behaves as Login on success; a duplicate email
//     (case-insensitive) fails with common.ErrConflict without mutating the
//     store.
//   - CheckSession never surfaces provider outages as errors: an unreachable
//     or rejecting authority degrades to (nil, nil) with the cache cleared.
//   - Logout clears the cached session, revokes the remote session where the
//     provider supports it, and emits a signed-out event.
type Gateway interface {
	Login(ctx context.Context, creds Credentials) (*session.State, error)
	Register(ctx context.Context, name, email, password string) (*session.State, error)
	CheckSession(ctx context.Context, handle string) (*session.State, error)
	Logout(ctx context.Context, handle string) error

	// OnAuthStateChange registers an observer for sign-in/sign-out events.
	// The returned function unsubscribes it.
	OnAuthStateChange(fn func(Event)) (unsubscribe func())

	// Bootstrap ensures the reserved administrator account exists. Called
	// once at startup, before the server accepts traffic.
	Bootstrap(ctx context.Context) error
}
