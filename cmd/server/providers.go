// File: cmd/server/providers.go
package main

import (
	"log"

	"cv_bank_backend/internal/auth"
	"cv_bank_backend/internal/config"
	"cv_bank_backend/internal/firebase"
	"cv_bank_backend/internal/platform/database"
	"cv_bank_backend/internal/profile"
	"cv_bank_backend/internal/session"
	"cv_bank_backend/internal/user"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// The providers below switch on the configured backend so the wire graph
// stays identical across the three variants. Providers for inactive
// backends return nil and are never dereferenced.

func provideRedisClient(cfg *config.Config) *redis.Client {
	if !cfg.IsRemoteBackend() {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func provideSessionCache(cfg *config.Config, client *redis.Client, logger *zap.Logger) session.Cache {
	if cfg.Backend == config.BackendLocal {
		return session.NewFileCache(cfg.SessionCachePath, logger)
	}
	return session.NewRedisCache(client, logger)
}

func provideUserRepository(cfg *config.Config, db *gorm.DB, fb *firebase.Service) user.Repository {
	if cfg.Backend == config.BackendFirebase {
		return user.NewFirestoreRepository(fb.Firestore())
	}
	return user.NewGORMRepository(db)
}

func provideStore(cfg *config.Config, db *gorm.DB, fb *firebase.Service) profile.Store {
	if cfg.Backend == config.BackendFirebase {
		return profile.NewFirestoreStore(fb.Firestore())
	}
	return profile.NewGORMStore(db)
}

func provideGateway(
	cfg *config.Config,
	users user.Repository,
	cache session.Cache,
	fb *firebase.Service,
	logger *zap.Logger,
) auth.Gateway {
	switch cfg.Backend {
	case config.BackendFirebase:
		return auth.NewFirebaseGateway(fb, users, cache, cfg, logger)
	case config.BackendHosted:
		return auth.NewJWTGateway(users, cache, cfg, logger)
	default:
		return auth.NewLocalGateway(users, cache, cfg, logger)
	}
}

func provideCleanup(logger *zap.Logger, db *gorm.DB, fb *firebase.Service, redisClient *redis.Client) func() {
	return func() {
		logger.Info("Executing cleanup tasks...")
		database.CloseGORMDB(db)
		fb.Close()
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				log.Printf("ERROR: Failed to close Redis client during cleanup: %v", err)
			}
		}
		if err := logger.Sync(); err != nil {
			log.Printf("ERROR: Failed to sync logger during cleanup: %v", err)
		}
		log.Println("Cleanup finished.")
	}
}
