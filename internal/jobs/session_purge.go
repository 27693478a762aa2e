// File: internal/jobs/session_purge.go
package jobs

import (
	"context"
	"fmt"
	"time"

	"cv_bank_backend/internal/config"
	"cv_bank_backend/internal/session"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SessionPurgeJob periodically sweeps expired entries out of the session
// cache. The Redis cache expires entries natively, so there the sweep is a
// no-op; the file cache needs it to keep the session file from growing.
type SessionPurgeJob struct {
	cache         session.Cache
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron
}

// NewSessionPurgeJob creates a new SessionPurgeJob.
func NewSessionPurgeJob(cache session.Cache, logger *zap.Logger, cfg *config.Config) *SessionPurgeJob {
	scheduler := cron.New(cron.WithLogger(NewCronLogger(logger.Named("cron"))))
	return &SessionPurgeJob{
		cache:         cache,
		logger:        logger.Named("SessionPurgeJob"),
		cfg:           cfg,
		cronScheduler: scheduler,
	}
}

// SetupAndStart schedules and starts the cron job.
func (j *SessionPurgeJob) SetupAndStart() error {
	jobSpec := j.cfg.SessionPurgeSchedule
	if jobSpec == "" {
		j.logger.Warn("Session purge schedule not defined (SESSION_PURGE_SCHEDULE). Job will not run.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(jobSpec, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule session purge job", zap.String("spec", jobSpec), zap.Error(err))
		return err
	}

	j.logger.Info("Session purge job scheduled", zap.String("spec", jobSpec), zap.Any("jobID", jobID))
	j.cronScheduler.Start()
	return nil
}

// runJob is the actual work performed by the cron job.
func (j *SessionPurgeJob) runJob() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	purged, err := j.cache.PurgeExpired(ctx)
	if err != nil {
		j.logger.Error("Session purge run failed", zap.Error(err))
		return
	}
	if purged > 0 {
		j.logger.Info("Session purge run completed", zap.Int("sessions_purged", purged))
	}
}

// Stop gracefully stops the cron scheduler.
func (j *SessionPurgeJob) Stop() {
	if j.cronScheduler != nil {
		j.logger.Info("Stopping session purge job scheduler...")
		stopCtx := j.cronScheduler.Stop()
		select {
		case <-stopCtx.Done():
			j.logger.Info("Session purge job scheduler stopped gracefully.")
		case <-time.After(10 * time.Second):
			j.logger.Warn("Session purge job scheduler stop timed out.")
		}
	}
}

// --- Cron Logger Adapter ---

// cronLogger adapts zap.Logger to the cron.Logger interface.
type cronLogger struct {
	zl *zap.Logger
}

// NewCronLogger creates a new cronLogger.
func NewCronLogger(zl *zap.Logger) cron.Logger {
	return &cronLogger{zl: zl}
}

func (cl *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	cl.zl.Info(msg, cl.parseKeysAndValues(keysAndValues...)...)
}

func (cl *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := cl.parseKeysAndValues(keysAndValues...)
	fields = append(fields, zap.Error(err))
	cl.zl.Error(msg, fields...)
}

func (cl *cronLogger) parseKeysAndValues(keysAndValues ...interface{}) []zap.Field {
	var fields []zap.Field
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), keysAndValues[i+1]))
		} else {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), "MISSING_VALUE"))
		}
	}
	return fields
}
