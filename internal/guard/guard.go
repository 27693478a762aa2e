// File: internal/guard/guard.go
package guard

import "cv_bank_backend/internal/session"

// RouteClass classifies a route by the access it requires.
type RouteClass int

const (
	// Public routes (login, register) are reachable unconditionally.
	Public RouteClass = iota
	// AuthenticatedUser routes require any authenticated session.
	AuthenticatedUser
	// AuthenticatedAdmin routes additionally require the admin role.
	AuthenticatedAdmin
)

// Redirect targets consumed by the external routing surface.
const (
	PathLogin     = "/login"
	PathUserHome  = "/my-profile"
	PathAdminHome = "/admin/dashboard"
)

// Decision is the outcome of an access check: either allow, or redirect to
// the given path.
type Decision struct {
	Allowed    bool
	RedirectTo string
}

func allow() Decision { return Decision{Allowed: true} }

func redirect(path string) Decision { return Decision{RedirectTo: path} }

// Resolve decides whether a route of the given class is reachable with the
// given session state. It is pure: no I/O, no clock beyond the state's own
// expiry, so the router can call it on every navigation.
func Resolve(class RouteClass, state *session.State) Decision {
	if class == Public {
		return allow()
	}
	if !state.IsAuthenticated() {
		return redirect(PathLogin)
	}
	if class == AuthenticatedAdmin && !state.IsAdmin() {
		return redirect(PathUserHome)
	}
	return allow()
}

// ResolveUnmatched decides where an unknown path lands: the admin landing for
// an authenticated admin, the user landing for any other authenticated
// session, and login otherwise.
func ResolveUnmatched(state *session.State) Decision {
	switch {
	case state.IsAdmin():
		return redirect(PathAdminHome)
	case state.IsAuthenticated():
		return redirect(PathUserHome)
	default:
		return redirect(PathLogin)
	}
}
