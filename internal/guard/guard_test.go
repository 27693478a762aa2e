package guard

import (
	"testing"
	"time"

	"cv_bank_backend/internal/session"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func activeState(role string) *session.State {
	return &session.State{
		Handle:    "handle",
		UserID:    uuid.New(),
		Name:      "Test User",
		Role:      role,
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func TestResolve(t *testing.T) {
	expired := activeState("user")
	expired.ExpiresAt = time.Now().Add(-time.Minute)

	tests := []struct {
		name         string
		class        RouteClass
		state        *session.State
		wantAllowed  bool
		wantRedirect string
	}{
		{"public route, anonymous", Public, nil, true, ""},
		{"public route, authenticated user", Public, activeState("user"), true, ""},
		{"public route, authenticated admin", Public, activeState("admin"), true, ""},
		{"user route, anonymous", AuthenticatedUser, nil, false, PathLogin},
		{"user route, expired session", AuthenticatedUser, expired, false, PathLogin},
		{"user route, authenticated user", AuthenticatedUser, activeState("user"), true, ""},
		{"user route, authenticated admin", AuthenticatedUser, activeState("admin"), true, ""},
		{"admin route, anonymous", AuthenticatedAdmin, nil, false, PathLogin},
		{"admin route, authenticated user", AuthenticatedAdmin, activeState("user"), false, PathUserHome},
		{"admin route, authenticated admin", AuthenticatedAdmin, activeState("admin"), true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.class, tt.state)
			assert.Equal(t, tt.wantAllowed, got.Allowed)
			assert.Equal(t, tt.wantRedirect, got.RedirectTo)
		})
	}
}

func TestResolveUnmatched(t *testing.T) {
	assert.Equal(t, PathLogin, ResolveUnmatched(nil).RedirectTo)
	assert.Equal(t, PathUserHome, ResolveUnmatched(activeState("user")).RedirectTo)
	assert.Equal(t, PathAdminHome, ResolveUnmatched(activeState("admin")).RedirectTo)

	expired := activeState("admin")
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	assert.Equal(t, PathLogin, ResolveUnmatched(expired).RedirectTo)
}

func TestResolveIsPure(t *testing.T) {
	state := activeState("user")
	before := *state
	Resolve(AuthenticatedAdmin, state)
	assert.Equal(t, before, *state, "Resolve must not mutate the session state")
}
