package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"cv_bank_backend/internal/app"
	"cv_bank_backend/internal/auth"
	"cv_bank_backend/internal/config"
	"cv_bank_backend/internal/jobs"
	"cv_bank_backend/internal/platform/database"
	"cv_bank_backend/internal/profile"
	"cv_bank_backend/internal/session"
	"cv_bank_backend/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupTestApp wires the full local-backend stack against a throwaway
// SQLite database and file session cache.
func setupTestApp(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()

	cfg := &config.Config{
		Backend:                config.BackendLocal,
		GinMode:                gin.TestMode,
		ServerHost:             "127.0.0.1",
		ServerPort:             "0",
		LogLevel:               "error",
		SQLitePath:             filepath.Join(dir, "api_test.db"),
		SessionCachePath:       filepath.Join(dir, "sessions.json"),
		SessionLifetime:        time.Hour,
		AdminBootstrapEmail:    "admin@usm.edu.co",
		AdminBootstrapName:     "Administrador",
		AdminBootstrapPassword: "admin123",
	}
	logger := zap.NewNop()

	db, err := database.NewGORM(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseGORMDB(db) })

	users := user.NewGORMRepository(db)
	cache := session.NewFileCache(cfg.SessionCachePath, logger)
	gateway := auth.NewLocalGateway(users, cache, cfg, logger)
	require.NoError(t, gateway.Bootstrap(context.Background()))

	store := profile.NewGORMStore(db)
	profileSvc := profile.NewService(store, users, logger)

	server, err := app.NewServer(
		cfg,
		logger,
		gateway,
		auth.NewHandler(gateway, logger),
		profile.NewHandler(profileSvc, logger),
		jobs.NewSessionPurgeJob(cache, logger, cfg),
	)
	require.NoError(t, err)
	return server.Router()
}

// envelope matches the standard success response shape.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "body: %s", rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out), "data: %s", string(env.Data))
}

func registerAndLogin(t *testing.T, handler http.Handler, name, email, password string) auth.SessionResponse {
	t.Helper()
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name": name, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var sess auth.SessionResponse
	decodeData(t, rec, &sess)
	require.NotEmpty(t, sess.Token)
	return sess
}

func TestHealthEndpoint(t *testing.T) {
	handler := setupTestApp(t)
	rec := doJSON(t, handler, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProfileLifecycle(t *testing.T) {
	handler := setupTestApp(t)
	sess := registerAndLogin(t, handler, "Ana Ruiz", "ana@example.com", "secret1")

	// A brand-new account reads a defaulted profile, never a 404.
	rec := doJSON(t, handler, http.MethodGet, "/api/v1/profile", sess.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var p profile.Profile
	decodeData(t, rec, &p)
	assert.Empty(t, p.PersonalData.FullName)
	assert.Empty(t, p.Experiences)
	assert.True(t, p.Settings.NotifyNewOpportunity)

	// Two experiences; the newer one must come back first.
	for _, exp := range []gin.H{
		{"company": "Acme", "role": "Backend Developer", "start_date": "2020-01-01", "end_date": "2022-05-31"},
		{"company": "Globex", "role": "Platform Engineer", "start_date": "2022-06-01", "is_current": true},
	} {
		rec = doJSON(t, handler, http.MethodPost, "/api/v1/profile/experiences", sess.Token, exp)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/profile/experiences", sess.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var exps []profile.ProfessionalExperience
	decodeData(t, rec, &exps)
	require.Len(t, exps, 2)
	assert.Equal(t, "Globex", exps[0].Company)
	assert.Nil(t, exps[0].EndDate, "current position carries no end date")
	assert.Equal(t, "Acme", exps[1].Company)

	// Personal data is a singleton: PUT twice, read one row back.
	for _, name := range []string{"Ana Ruiz", "Ana Ruiz de Garcia"} {
		rec = doJSON(t, handler, http.MethodPut, "/api/v1/profile/personal-data", sess.Token, gin.H{
			"full_name": name, "city": "Medellin", "country": "Colombia",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	var data profile.PersonalData
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/profile/personal-data", sess.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &data)
	assert.Equal(t, "Ana Ruiz de Garcia", data.FullName)

	// Invalid language level is a 400 before it reaches storage.
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/profile/languages", sess.Token, gin.H{
		"name": "English", "level": "Fluent",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/profile/languages", sess.Token, gin.H{
		"name": "English", "level": "Advanced",
	})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestSessionEndpoints(t *testing.T) {
	handler := setupTestApp(t)
	sess := registerAndLogin(t, handler, "Ana Ruiz", "ana@example.com", "secret1")

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/auth/session", sess.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var checked auth.SessionResponse
	decodeData(t, rec, &checked)
	assert.Equal(t, sess.UserID, checked.UserID)

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/auth/logout", sess.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// The dead handle no longer opens anything.
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/auth/session", sess.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/profile", sess.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUnauthenticatedRequestsRedirectToLogin(t *testing.T) {
	handler := setupTestApp(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/profile", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body struct {
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "UNAUTHORIZED", body.Code)
	assert.Equal(t, "/login", body.Details["redirect_to"], "body: %s", rec.Body.String())
}

func TestAdminRoutesEnforceRole(t *testing.T) {
	handler := setupTestApp(t)
	userSess := registerAndLogin(t, handler, "Ana Ruiz", "ana@example.com", "secret1")

	// Regular users are turned away from the admin surface.
	rec := doJSON(t, handler, http.MethodGet, "/api/v1/admin/users", userSess.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())

	// The bootstrapped administrator signs in with the configured password.
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "admin@usm.edu.co", "password": "admin123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var adminSess auth.SessionResponse
	decodeData(t, rec, &adminSess)
	require.Equal(t, "admin", adminSess.Role)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/admin/users", adminSess.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var listed []profile.UserProfile
	decodeData(t, rec, &listed)
	require.Len(t, listed, 1, "only candidates appear in the listing")
	assert.Equal(t, "Ana Ruiz", listed[0].User.Name)

	detailPath := fmt.Sprintf("/api/v1/admin/users/%s/profile", userSess.UserID)
	rec = doJSON(t, handler, http.MethodGet, detailPath, adminSess.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestAdminDashboardStats(t *testing.T) {
	handler := setupTestApp(t)

	candidate := registerAndLogin(t, handler, "Ana Ruiz", "ana@example.com", "secret1")
	for _, tool := range []gin.H{
		{"name": "Go", "category": "Backend"},
		{"name": "Postgres", "category": "Database"},
	} {
		rec := doJSON(t, handler, http.MethodPost, "/api/v1/profile/tools", candidate.Token, tool)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "admin@usm.edu.co", "password": "admin123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var adminSess auth.SessionResponse
	decodeData(t, rec, &adminSess)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/admin/dashboard/stats", adminSess.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var stats profile.DashboardStats
	decodeData(t, rec, &stats)
	assert.Equal(t, 1, stats.TotalCandidates)
	assert.Equal(t, 1, stats.ExperienceDistribution["none"])
	require.Len(t, stats.TopTools, 2)
	assert.Equal(t, "Go", stats.TopTools[0].Name)
}

func TestUnknownPathLandsPerSession(t *testing.T) {
	handler := setupTestApp(t)

	decode404 := func(rec *httptest.ResponseRecorder) string {
		t.Helper()
		require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
		var body struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "NOT_FOUND", body.Code)
		redirect, _ := body.Details["redirect_to"].(string)
		return redirect
	}

	// Signed out: unknown paths land on login.
	rec := doJSON(t, handler, http.MethodGet, "/api/v1/no/such/path", "", nil)
	assert.Equal(t, "/login", decode404(rec))

	// A candidate lands on their profile.
	userSess := registerAndLogin(t, handler, "Ana Ruiz", "ana@example.com", "secret1")
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/no/such/path", userSess.Token, nil)
	assert.Equal(t, "/my-profile", decode404(rec))

	// An administrator lands on the dashboard.
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "admin@usm.edu.co", "password": "admin123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var adminSess auth.SessionResponse
	decodeData(t, rec, &adminSess)
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/no/such/path", adminSess.Token, nil)
	assert.Equal(t, "/admin/dashboard", decode404(rec))

	// A garbage token reads as signed out, not as an error.
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/no/such/path", "not-a-real-handle", nil)
	assert.Equal(t, "/login", decode404(rec))
}
