// File: internal/session/cache.go
package session

import "context"

// Cache stores session state durably between requests, keyed by the session
// handle. A missing, expired or unreadable entry is reported as (nil, nil):
// the caller always degrades to logged-out, never to a crash. Only the
// authentication gateway writes the cache.
type Cache interface {
	Get(ctx context.Context, handle string) (*State, error)
	Set(ctx context.Context, state *State) error
	Clear(ctx context.Context, handle string) error
	// PurgeExpired removes entries whose lifetime has passed and returns how
	// many were dropped. Backends that expire natively may return 0.
	PurgeExpired(ctx context.Context) (int, error)
}
