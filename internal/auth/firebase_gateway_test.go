package auth

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"cv_bank_backend/internal/common"
	"cv_bank_backend/internal/config"
	"cv_bank_backend/internal/user"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// fakeProvider is an in-process identityProvider that records the users it
// has created and deleted.
type fakeProvider struct {
	created []string
	deleted []string
}

func (p *fakeProvider) VerifyIDToken(context.Context, string) (*firebaseauth.Token, error) {
	return nil, fmt.Errorf("fake provider: no verifiable tokens")
}

func (p *fakeProvider) CreateUser(_ context.Context, email, _, displayName string) (*firebaseauth.UserRecord, error) {
	uid := "fake-uid-" + email
	p.created = append(p.created, uid)
	return &firebaseauth.UserRecord{
		UserInfo: &firebaseauth.UserInfo{UID: uid, Email: email, DisplayName: displayName},
	}, nil
}

func (p *fakeProvider) GetUserByEmail(context.Context, string) (*firebaseauth.UserRecord, error) {
	return nil, fmt.Errorf("fake provider: user not found")
}

func (p *fakeProvider) CustomToken(_ context.Context, uid string) (string, error) {
	return "custom-token-" + uid, nil
}

func (p *fakeProvider) RevokeRefreshTokens(context.Context, string) error { return nil }

func (p *fakeProvider) DeleteUser(_ context.Context, uid string) error {
	p.deleted = append(p.deleted, uid)
	return nil
}

// brokenCreateRepository passes reads through and fails every write.
type brokenCreateRepository struct {
	user.Repository
}

func (brokenCreateRepository) Create(context.Context, *user.User) error {
	return fmt.Errorf("account store unavailable")
}

func newFirebaseTestGateway(t *testing.T, users user.Repository) (*firebaseGateway, *fakeProvider) {
	t.Helper()
	provider := &fakeProvider{}
	cfg := &config.Config{
		Backend:                config.BackendFirebase,
		SessionLifetime:        time.Hour,
		AdminBootstrapEmail:    "admin@usm.edu.co",
		AdminBootstrapName:     "Administrador",
		AdminBootstrapPassword: "admin123",
	}
	return &firebaseGateway{
		fb:       provider,
		users:    users,
		cache:    newMemoryCache(),
		notifier: newNotifier(),
		lifetime: cfg.SessionLifetime,
		cfg:      cfg,
		logger:   zap.NewNop(),
	}, provider
}

func newUserRepo(t *testing.T) user.Repository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "fb_test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&user.User{}))
	return user.NewGORMRepository(db)
}

func TestFirebaseRegisterOpensSession(t *testing.T) {
	users := newUserRepo(t)
	gw, provider := newFirebaseTestGateway(t, users)
	ctx := context.Background()

	state, err := gw.Register(ctx, "Ana Ruiz", "ana@example.com", "secret1")
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Contains(t, state.Handle, "custom-token-")
	assert.Equal(t, common.RoleUser, state.Role)
	assert.Empty(t, provider.deleted)

	stored, err := users.FindByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Nil(t, stored.Credential, "credential material stays with the provider")
}

func TestFirebaseRegisterRollsBackOrphanedProviderUser(t *testing.T) {
	users := brokenCreateRepository{newUserRepo(t)}
	gw, provider := newFirebaseTestGateway(t, users)

	state, err := gw.Register(context.Background(), "Ana Ruiz", "ana@example.com", "secret1")
	require.Error(t, err)
	assert.Nil(t, state)

	// The provider user created before the failing write must be removed.
	require.Len(t, provider.created, 1)
	assert.Equal(t, provider.created, provider.deleted)
}

func TestFirebaseLoginRequiresIDToken(t *testing.T) {
	gw, _ := newFirebaseTestGateway(t, newUserRepo(t))

	state, err := gw.Login(context.Background(), Credentials{Email: "ana@example.com", Password: "secret1"})
	assert.Nil(t, state)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}
