// File: internal/auth/local_gateway.go
package auth

import (
	"context"
	"errors"
	"time"

	"cv_bank_backend/internal/common"
	"cv_bank_backend/internal/config"
	"cv_bank_backend/internal/platform/crypto"
	"cv_bank_backend/internal/session"
	"cv_bank_backend/internal/user"

	"go.uber.org/zap"
)

// localGateway authenticates against the embedded store. Session handles are
// opaque random strings; the session cache is the only record of a live
// session, so purging an entry is a logout. This variant is the development
// and offline mode: credentials are matched as stored, without hashing.
type localGateway struct {
	users    user.Repository
	cache    session.Cache
	notifier *notifier
	lifetime time.Duration
	cfg      *config.Config
	logger   *zap.Logger
}

// NewLocalGateway creates the embedded-backend gateway.
func NewLocalGateway(users user.Repository, cache session.Cache, cfg *config.Config, logger *zap.Logger) Gateway {
	return &localGateway{
		users:    users,
		cache:    cache,
		notifier: newNotifier(),
		lifetime: cfg.SessionLifetime,
		cfg:      cfg,
		logger:   logger.Named("local-gateway"),
	}
}

func (g *localGateway) Login(ctx context.Context, creds Credentials) (*session.State, error) {
	u, err := g.users.FindByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized.WithDetails("Invalid email or password.")
		}
		g.logger.Error("user lookup failed during login", zap.Error(err))
		return nil, common.ErrUnauthorized.WithDetails("Invalid email or password.")
	}
	if u.Credential == nil || *u.Credential != creds.Password {
		return nil, common.ErrUnauthorized.WithDetails("Invalid email or password.")
	}
	return g.openSession(ctx, u)
}

func (g *localGateway) Register(ctx context.Context, name, email, password string) (*session.State, error) {
	u := &user.User{
		Name:       name,
		Email:      email,
		Role:       roleForEmail(g.cfg, email),
		Credential: &password,
	}
	if err := g.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return g.openSession(ctx, u)
}

func (g *localGateway) openSession(ctx context.Context, u *user.User) (*session.State, error) {
	handle, err := crypto.NewSessionHandle()
	if err != nil {
		g.logger.Error("session handle generation failed", zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not create a session.")
	}
	state := &session.State{
		Handle:    handle,
		UserID:    u.ID,
		Name:      u.Name,
		Role:      u.Role,
		ExpiresAt: time.Now().Add(g.lifetime),
	}
	if err := g.cache.Set(ctx, state); err != nil {
		g.logger.Error("session cache write failed", zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not persist the session.")
	}
	g.notifier.publish(Event{Kind: EventSignedIn, State: state})
	return state, nil
}

// CheckSession resolves a handle against the cache. For this backend the
// cache is authoritative: a miss means the session is gone.
func (g *localGateway) CheckSession(ctx context.Context, handle string) (*session.State, error) {
	if handle == "" {
		return nil, nil
	}
	state, err := g.cache.Get(ctx, handle)
	if err != nil {
		g.logger.Warn("session cache read failed, treating as signed out", zap.Error(err))
		return nil, nil
	}
	if state == nil || !state.IsAuthenticated() {
		return nil, nil
	}
	// Refresh the expiry on every explicit check.
	state.ExpiresAt = time.Now().Add(g.lifetime)
	if err := g.cache.Set(ctx, state); err != nil {
		g.logger.Warn("session refresh write failed", zap.Error(err))
	}
	return state, nil
}

func (g *localGateway) Logout(ctx context.Context, handle string) error {
	if handle == "" {
		return nil
	}
	state, err := g.cache.Get(ctx, handle)
	if err != nil {
		g.logger.Warn("session cache read failed during logout", zap.Error(err))
	}
	if err := g.cache.Clear(ctx, handle); err != nil {
		g.logger.Error("session cache clear failed", zap.Error(err))
		return common.ErrInternalServer.WithDetails("Could not clear the session.")
	}
	g.notifier.publish(Event{Kind: EventSignedOut, State: state})
	return nil
}

func (g *localGateway) OnAuthStateChange(fn func(Event)) func() {
	return g.notifier.subscribe(fn)
}

func (g *localGateway) Bootstrap(ctx context.Context) error {
	return bootstrapAdmin(ctx, g.users, g.cfg, g.logger, func(password string) (*string, error) {
		return &password, nil
	})
}

// roleForEmail grants the admin role only to the reserved bootstrap email.
// Every other registration is a regular user regardless of request content.
func roleForEmail(cfg *config.Config, email string) string {
	if user.NormalizeEmail(email) == user.NormalizeEmail(cfg.AdminBootstrapEmail) {
		return common.RoleAdmin
	}
	return common.RoleUser
}

// bootstrapAdmin creates the reserved administrator account when missing.
// encode turns the configured password into stored credential material.
func bootstrapAdmin(ctx context.Context, users user.Repository, cfg *config.Config, logger *zap.Logger, encode func(string) (*string, error)) error {
	email := user.NormalizeEmail(cfg.AdminBootstrapEmail)
	if _, err := users.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, common.ErrNotFound) {
		return err
	}

	cred, err := encode(cfg.AdminBootstrapPassword)
	if err != nil {
		return err
	}
	u := &user.User{
		Name:       cfg.AdminBootstrapName,
		Email:      email,
		Role:       common.RoleAdmin,
		Credential: cred,
	}
	if err := users.Create(ctx, u); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil // lost a race with another instance; account exists
		}
		return err
	}
	logger.Info("bootstrap administrator account created", zap.String("email", email))
	return nil
}
