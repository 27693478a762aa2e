// File: internal/auth/firebase_gateway.go
package auth

import (
	"context"
	"errors"
	"time"

	"cv_bank_backend/internal/common"
	"cv_bank_backend/internal/config"
	"cv_bank_backend/internal/firebase"
	"cv_bank_backend/internal/session"
	"cv_bank_backend/internal/user"

	firebaseauth "firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
)

// identityProvider is the slice of the Firebase Admin surface the gateway
// consumes. *firebase.Service satisfies it.
type identityProvider interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error)
	CreateUser(ctx context.Context, email, password, displayName string) (*firebaseauth.UserRecord, error)
	GetUserByEmail(ctx context.Context, email string) (*firebaseauth.UserRecord, error)
	CustomToken(ctx context.Context, uid string) (string, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
	DeleteUser(ctx context.Context, uid string) error
}

// firebaseGateway delegates identity to Firebase Authentication. The session
// handle is the provider-issued ID token (or, right after registration, a
// custom token the client exchanges). The account record in Firestore maps
// the provider identity to our user ID and role; the provider never decides
// the role.
type firebaseGateway struct {
	fb       identityProvider
	users    user.Repository
	cache    session.Cache
	notifier *notifier
	lifetime time.Duration
	cfg      *config.Config
	logger   *zap.Logger
}

// NewFirebaseGateway creates the firebase-backend gateway.
func NewFirebaseGateway(fb *firebase.Service, users user.Repository, cache session.Cache, cfg *config.Config, logger *zap.Logger) Gateway {
	return &firebaseGateway{
		fb:       fb,
		users:    users,
		cache:    cache,
		notifier: newNotifier(),
		lifetime: cfg.SessionLifetime,
		cfg:      cfg,
		logger:   logger.Named("firebase-gateway"),
	}
}

// Login requires a provider-issued ID token; the password flow happens on
// the client against Firebase directly.
func (g *firebaseGateway) Login(ctx context.Context, creds Credentials) (*session.State, error) {
	if creds.IDToken == "" {
		return nil, common.ErrUnauthorized.WithDetails("This backend requires a Firebase ID token to sign in.")
	}
	token, err := g.fb.VerifyIDToken(ctx, creds.IDToken)
	if err != nil {
		return nil, common.ErrUnauthorized.WithDetails("Invalid or expired ID token.")
	}

	email, _ := token.Claims["email"].(string)
	if email == "" {
		return nil, common.ErrUnauthorized.WithDetails("ID token carries no email claim.")
	}
	u, err := g.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			g.logger.Error("account lookup failed during login", zap.Error(err))
		}
		return nil, common.ErrUnauthorized.WithDetails("No account is linked to this identity.")
	}

	expiresAt := time.Unix(token.Expires, 0)
	if !expiresAt.After(time.Now()) {
		expiresAt = time.Now().Add(g.lifetime)
	}
	state := &session.State{
		Handle:    creds.IDToken,
		UserID:    u.ID,
		Name:      u.Name,
		Role:      u.Role,
		ExpiresAt: expiresAt,
	}
	if err := g.cache.Set(ctx, state); err != nil {
		g.logger.Error("session cache write failed", zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not persist the session.")
	}
	g.notifier.publish(Event{Kind: EventSignedIn, State: state})
	return state, nil
}

// Register provisions the Firebase Auth user and the Firestore account
// record, then opens a session on a custom token the client can exchange
// for an ID token.
func (g *firebaseGateway) Register(ctx context.Context, name, email, password string) (*session.State, error) {
	if _, err := g.users.FindByEmail(ctx, email); err == nil {
		return nil, common.ErrConflict.WithDetails("User with this email already exists.")
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	record, err := g.fb.CreateUser(ctx, user.NormalizeEmail(email), password, name)
	if err != nil {
		return nil, common.ErrConflict.WithDetails("The identity provider rejected this registration.")
	}

	u := &user.User{
		Name:  name,
		Email: email,
		Role:  roleForEmail(g.cfg, email),
	}
	if err := g.users.Create(ctx, u); err != nil {
		// Roll back the provider user so a failed registration leaves no
		// orphaned identity behind.
		if delErr := g.fb.DeleteUser(ctx, record.UID); delErr != nil {
			g.logger.Error("orphaned provider user could not be removed",
				zap.String("uid", record.UID), zap.Error(delErr))
		}
		return nil, err
	}

	customToken, err := g.fb.CustomToken(ctx, record.UID)
	if err != nil {
		return nil, common.ErrInternalServer.WithDetails("Could not create a session token.")
	}

	state := &session.State{
		Handle:    customToken,
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

// CheckSession consults the cache first; on a miss it asks the provider to
// verify the handle as an ID token and rebuilds the state. Provider outages
// degrade to signed out, never to an error.
func (g *firebaseGateway) CheckSession(ctx context.Context, handle string) (*session.State, error) {
	if handle == "" {
		return nil, nil
	}
	state, err := g.cache.Get(ctx, handle)
	if err != nil {
		g.logger.Warn("session cache read failed", zap.Error(err))
	}
	if state != nil && state.IsAuthenticated() {
		return state, nil
	}

	token, err := g.fb.VerifyIDToken(ctx, handle)
	if err != nil {
		if clearErr := g.cache.Clear(ctx, handle); clearErr != nil {
			g.logger.Warn("session cache clear failed for rejected handle", zap.Error(clearErr))
		}
		return nil, nil
	}
	email, _ := token.Claims["email"].(string)
	if email == "" {
		return nil, nil
	}
	u, err := g.users.FindByEmail(ctx, email)
	if err != nil {
		g.logger.Warn("account lookup failed during session check, treating as signed out", zap.Error(err))
		return nil, nil
	}

	expiresAt := time.Unix(token.Expires, 0)
	if !expiresAt.After(time.Now()) {
		return nil, nil
	}
	state = &session.State{
		Handle:    handle,
		UserID:    u.ID,
		Name:      u.Name,
		Role:      u.Role,
		ExpiresAt: expiresAt,
	}
	if err := g.cache.Set(ctx, state); err != nil {
		g.logger.Warn("session cache write failed during session check", zap.Error(err))
	}
	return state, nil
}

func (g *firebaseGateway) Logout(ctx context.Context, handle string) error {
	if handle == "" {
		return nil
	}
	state, err := g.cache.Get(ctx, handle)
	if err != nil {
		g.logger.Warn("session cache read failed during logout", zap.Error(err))
	}

	// Best effort remote revocation; the cached session dies regardless.
	if token, err := g.fb.VerifyIDToken(ctx, handle); err == nil {
		if err := g.fb.RevokeRefreshTokens(ctx, token.UID); err != nil {
			g.logger.Warn("remote token revocation failed", zap.Error(err))
		}
	}

	if err := g.cache.Clear(ctx, handle); err != nil {
		g.logger.Error("session cache clear failed", zap.Error(err))
		return common.ErrInternalServer.WithDetails("Could not clear the session.")
	}
	g.notifier.publish(Event{Kind: EventSignedOut, State: state})
	return nil
}

func (g *firebaseGateway) OnAuthStateChange(fn func(Event)) func() {
	return g.notifier.subscribe(fn)
}

// Bootstrap provisions the reserved administrator both in Firebase Auth and
// in the Firestore account collection.
func (g *firebaseGateway) Bootstrap(ctx context.Context) error {
	email := user.NormalizeEmail(g.cfg.AdminBootstrapEmail)
	if _, err := g.fb.GetUserByEmail(ctx, email); err != nil {
		if _, err := g.fb.CreateUser(ctx, email, g.cfg.AdminBootstrapPassword, g.cfg.AdminBootstrapName); err != nil {
			return err
		}
	}
	// Credential material lives with the provider, not in our record.
	return bootstrapAdmin(ctx, g.users, g.cfg, g.logger, func(string) (*string, error) {
		return nil, nil
	})
}
