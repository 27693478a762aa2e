// File: internal/firebase/service.go
package firebase

import (
	"context"
	"fmt"
	"path/filepath"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"cv_bank_backend/internal/config"
)

// Service wraps the Firebase Admin SDK clients used by the firebase backend:
// Auth for identity and Firestore for entity storage.
type Service struct {
	authClient      *auth.Client
	firestoreClient *firestore.Client
	logger          *zap.Logger
}

// NewService initializes the Firebase Admin SDK. It returns (nil, nil) when
// the firebase backend is not active so the wire graph stays uniform across
// backends.
func NewService(cfg *config.Config, logger *zap.Logger) (*Service, error) {
	if cfg.Backend != config.BackendFirebase {
		return nil, nil
	}
	if cfg.FirebaseServiceAccountKeyPath == "" {
		logger.Error("Firebase service account key path is not configured.")
		return nil, fmt.Errorf("firebase service account key path is required")
	}

	cleanPath := filepath.Clean(cfg.FirebaseServiceAccountKeyPath)
	opt := option.WithCredentialsFile(cleanPath)

	var app *firebase.App
	var err error
	if cfg.FirebaseProjectID != "" {
		conf := &firebase.Config{ProjectID: cfg.FirebaseProjectID}
		app, err = firebase.NewApp(context.Background(), conf, opt)
	} else {
		// Let the SDK infer the project from the credentials file.
		app, err = firebase.NewApp(context.Background(), nil, opt)
	}
	if err != nil {
		logger.Error("Failed to initialize Firebase Admin SDK app", zap.Error(err), zap.String("keyPath", cleanPath))
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	authClient, err := app.Auth(context.Background())
	if err != nil {
		logger.Error("Failed to get Firebase Auth client", zap.Error(err))
		return nil, fmt.Errorf("error getting Firebase Auth client: %w", err)
	}

	firestoreClient, err := app.Firestore(context.Background())
	if err != nil {
		logger.Error("Failed to get Firestore client", zap.Error(err))
		return nil, fmt.Errorf("error getting Firestore client: %w", err)
	}

	logger.Info("Firebase Admin SDK initialized successfully.")
	return &Service{
		authClient:      authClient,
		firestoreClient: firestoreClient,
		logger:          logger,
	}, nil
}

// Firestore exposes the Firestore client for the entity store.
func (s *Service) Firestore() *firestore.Client {
	return s.firestoreClient
}

// VerifyIDToken verifies a Firebase ID token and returns the token claims.
func (s *Service) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	if idToken == "" {
		return nil, fmt.Errorf("ID token must not be empty")
	}
	token, err := s.authClient.VerifyIDToken(ctx, idToken)
	if err != nil {
		s.logger.Warn("Firebase ID token verification failed", zap.Error(err))
		return nil, fmt.Errorf("failed to verify Firebase ID token: %w", err)
	}
	s.logger.Debug("Firebase ID token verified successfully", zap.String("uid", token.UID))
	return token, nil
}

// CreateUser provisions a Firebase Auth user with an email/password credential.
func (s *Service) CreateUser(ctx context.Context, email, password, displayName string) (*auth.UserRecord, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)
	record, err := s.authClient.CreateUser(ctx, params)
	if err != nil {
		s.logger.Warn("Firebase user creation failed", zap.Error(err), zap.String("email", email))
		return nil, err
	}
	return record, nil
}

// GetUserByEmail looks up a Firebase Auth user.
func (s *Service) GetUserByEmail(ctx context.Context, email string) (*auth.UserRecord, error) {
	return s.authClient.GetUserByEmail(ctx, email)
}

// CustomToken mints a custom token for the given UID. The client exchanges
// it for an ID token via the Firebase client SDK.
func (s *Service) CustomToken(ctx context.Context, uid string) (string, error) {
	token, err := s.authClient.CustomToken(ctx, uid)
	if err != nil {
		s.logger.Error("Failed to mint custom token", zap.Error(err), zap.String("uid", uid))
		return "", fmt.Errorf("failed to mint custom token: %w", err)
	}
	return token, nil
}

// DeleteUser removes a Firebase Auth user, used to roll back a registration
// whose account record could not be written.
func (s *Service) DeleteUser(ctx context.Context, uid string) error {
	if err := s.authClient.DeleteUser(ctx, uid); err != nil {
		s.logger.Warn("Firebase user deletion failed", zap.Error(err), zap.String("uid", uid))
		return fmt.Errorf("failed to delete Firebase user: %w", err)
	}
	return nil
}

// RevokeRefreshTokens revokes all refresh tokens for a given user.
func (s *Service) RevokeRefreshTokens(ctx context.Context, uid string) error {
	if err := s.authClient.RevokeRefreshTokens(ctx, uid); err != nil {
		s.logger.Error("Failed to revoke refresh tokens", zap.Error(err), zap.String("uid", uid))
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	s.logger.Info("Successfully revoked refresh tokens for user", zap.String("uid", uid))
	return nil
}

// Close releases the Firestore client connection.
func (s *Service) Close() {
	if s == nil || s.firestoreClient == nil {
		return
	}
	if err := s.firestoreClient.Close(); err != nil {
		s.logger.Warn("Error closing Firestore client", zap.Error(err))
	}
}
