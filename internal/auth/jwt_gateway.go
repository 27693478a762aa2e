// File: internal/auth/jwt_gateway.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cv_bank_backend/internal/common"
	"cv_bank_backend/internal/config"
	"cv_bank_backend/internal/session"
	"cv_bank_backend/internal/user"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// sessionClaims is the JWT payload for hosted-backend sessions.
type sessionClaims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// jwtGateway authenticates against PostgreSQL with bcrypt credential hashes
// and issues HS256 tokens as session handles. The Redis cache is the
// revocation record: a verified token whose cache entry is gone counts as
// signed out.
type jwtGateway struct {
	users    user.Repository
	cache    session.Cache
	notifier *notifier
	secret   []byte
	lifetime time.Duration
	cfg      *config.Config
	logger   *zap.Logger
}

// NewJWTGateway creates the hosted-backend gateway.
func NewJWTGateway(users user.Repository, cache session.Cache, cfg *config.Config, logger *zap.Logger) Gateway {
	return &jwtGateway{
		users:    users,
		cache:    cache,
		notifier: newNotifier(),
		secret:   []byte(cfg.JWTSecretKey),
		lifetime: cfg.SessionLifetime,
		cfg:      cfg,
		logger:   logger.Named("jwt-gateway"),
	}
}

func (g *jwtGateway) Login(ctx context.Context, creds Credentials) (*session.State, error) {
	u, err := g.users.FindByEmail(ctx, creds.Email)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			g.logger.Error("user lookup failed during login", zap.Error(err))
		}
		return nil, common.ErrUnauthorized.WithDetails("Invalid email or password.")
	}
	if u.Credential == nil ||
		bcrypt.CompareHashAndPassword([]byte(*u.Credential), []byte(creds.Password)) != nil {
		return nil, common.ErrUnauthorized.WithDetails("Invalid email or password.")
	}
	return g.openSession(ctx, u)
}

func (g *jwtGateway) Register(ctx context.Context, name, email, password string) (*session.State, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		g.logger.Error("password hashing failed", zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not process the credential.")
	}
	cred := string(hash)
	u := &user.User{
		Name:       name,
		Email:      email,
		Role:       roleForEmail(g.cfg, email),
		Credential: &cred,
	}
	if err := g.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return g.openSession(ctx, u)
}

func (g *jwtGateway) openSession(ctx context.Context, u *user.User) (*session.State, error) {
	expiresAt := time.Now().Add(g.lifetime)
	claims := sessionClaims{
		Name: u.Name,
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		g.logger.Error("token signing failed", zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not create a session.")
	}

	state := &session.State{
		Handle:    token,
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

func (g *jwtGateway) parseToken(handle string) (*sessionClaims, error) {
	token, err := jwt.ParseWithClaims(handle, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return g.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// CheckSession verifies the token signature and expiry, then consults the
// cache: a verified token without a cache entry has been revoked.
func (g *jwtGateway) CheckSession(ctx context.Context, handle string) (*session.State, error) {
	if handle == "" {
		return nil, nil
	}
	claims, err := g.parseToken(handle)
	if err != nil {
		if clearErr := g.cache.Clear(ctx, handle); clearErr != nil {
			g.logger.Warn("session cache clear failed for invalid token", zap.Error(clearErr))
		}
		return nil, nil
	}

	state, err := g.cache.Get(ctx, handle)
	if err != nil {
		g.logger.Warn("session cache read failed, treating as signed out", zap.Error(err))
		return nil, nil
	}
	if state == nil {
		return nil, nil // revoked or expired out of the cache
	}
	if !state.IsAuthenticated() {
		return nil, nil
	}

	// Cached state and token must agree on the subject.
	if state.UserID.String() != claims.Subject {
		g.logger.Warn("cached session subject mismatch, clearing",
			zap.String("cached", state.UserID.String()), zap.String("token", claims.Subject))
		if err := g.cache.Clear(ctx, handle); err != nil {
			g.logger.Warn("session cache clear failed", zap.Error(err))
		}
		return nil, nil
	}
	return state, nil
}

func (g *jwtGateway) Logout(ctx context.Context, handle string) error {
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

func (g *jwtGateway) OnAuthStateChange(fn func(Event)) func() {
	return g.notifier.subscribe(fn)
}

func (g *jwtGateway) Bootstrap(ctx context.Context) error {
	return bootstrapAdmin(ctx, g.users, g.cfg, g.logger, func(password string) (*string, error) {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		cred := string(hash)
		return &cred, nil
	})
}

