package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/courtside/courtmatch/internal/booking"
)

const expiryJobTimeout = 2 * time.Minute

// RegisterHousekeepingJobs registers the nightly sweep that expires open play
// requests whose date has passed. Runs shortly after midnight so yesterday's
// requests stop appearing in admin review lists.
func RegisterHousekeepingJobs(service *booking.Service) error {
	if service == nil {
		return fmt.Errorf("housekeeping jobs require booking service")
	}

	jobName := "expire_stale_requests"
	cronExpr := "10 0 * * *"
	jobLogger := log.With().
		Str("component", "expire_stale_requests_job").
		Str("job_name", jobName).
		Str("cron", cronExpr).
		Logger()

	_, err := AddJob(jobName, cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), expiryJobTimeout)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		expired, err := service.ExpireStaleRequests(ctx, time.Now())
		if err != nil {
			jobLogger.Error().Err(err).Msg("Failed to expire stale play requests")
			return
		}
		if expired > 0 {
			jobLogger.Info().Int64("expired", expired).Msg("Expired stale play requests")
		}
	})
	if err != nil {
		return fmt.Errorf("register %s job: %w", jobName, err)
	}
	return nil
}
