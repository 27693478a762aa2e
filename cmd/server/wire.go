// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"cv_bank_backend/internal/app"
	"cv_bank_backend/internal/auth"
	"cv_bank_backend/internal/config"
	"cv_bank_backend/internal/firebase"
	"cv_bank_backend/internal/jobs"
	"cv_bank_backend/internal/platform/database"
	"cv_bank_backend/internal/platform/logger"
	"cv_bank_backend/internal/profile"

	"github.com/google/wire"
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform Layer
		logger.New,
		database.NewGORM,
		firebase.NewService,
		provideRedisClient,
		provideSessionCache,
		provideCleanup,

		// Accounts and entity storage (backend-switched)
		provideUserRepository,
		provideStore,

		// Authentication
		provideGateway,
		auth.NewHandler,

		// Profiles
		profile.NewService,
		profile.NewHandler,

		// Jobs
		jobs.NewSessionPurgeJob,

		// Application Layer
		app.NewServer,
	)
	return nil, nil, nil
}
