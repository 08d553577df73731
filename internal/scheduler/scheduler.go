// Package scheduler owns the background job runner, a process-wide gocron
// scheduler that carries the housekeeping sweeps.
package scheduler

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotInitialized = errors.New("scheduler not initialized")
	ErrEmptyJobName   = errors.New("job name is required")
	ErrEmptyCronExpr  = errors.New("cron expression is required")
)

var (
	initOnce sync.Once
	initErr  error
	stopOnce sync.Once
	stopErr  error

	runner gocron.Scheduler
)

// Init builds the process scheduler. Jobs are singleton-moded: a sweep still
// running when its next trigger fires is rescheduled, not stacked.
func Init() error {
	initOnce.Do(func() {
		sched, err := gocron.NewScheduler(
			gocron.WithGlobalJobOptions(
				gocron.WithSingletonMode(gocron.LimitModeReschedule),
				gocron.WithEventListeners(
					gocron.AfterJobRunsWithPanic(func(jobID uuid.UUID, jobName string, recoverData any) {
						log.Error().
							Str("job_id", jobID.String()).
							Str("job_name", jobName).
							Interface("panic", recoverData).
							Msg("Scheduler job panicked")
					}),
				),
			),
		)
		if err != nil {
			initErr = err
			return
		}
		runner = sched
		log.Info().Msg("Scheduler initialized")
	})
	return initErr
}

// Start begins running registered jobs.
func Start() error {
	if runner == nil {
		return ErrNotInitialized
	}
	log.Info().Msg("Scheduler starting")
	runner.Start()
	return nil
}

// Stop shuts the scheduler down, waiting for running jobs. Safe to call more
// than once.
func Stop() error {
	if runner == nil {
		return ErrNotInitialized
	}
	stopOnce.Do(func() {
		log.Info().Msg("Scheduler stopping")
		stopErr = runner.Shutdown()
	})
	return stopErr
}

// AddJob registers a cron-based job. The task is wrapped with start/finish
// logging under the job's name.
func AddJob(name, cronExpr string, task func()) (gocron.Job, error) {
	if runner == nil {
		return nil, ErrNotInitialized
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyJobName
	}
	if strings.TrimSpace(cronExpr) == "" {
		return nil, ErrEmptyCronExpr
	}

	jobLogger := log.With().Str("job_name", name).Str("cron", cronExpr).Logger()

	job, err := runner.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(func() {
			jobLogger.Debug().Msg("Scheduler job started")
			task()
			jobLogger.Debug().Msg("Scheduler job completed")
		}),
		gocron.WithName(name),
	)
	if err != nil {
		jobLogger.Error().Err(err).Msg("Failed to register scheduler job")
		return nil, err
	}
	jobLogger.Info().Msg("Scheduler job registered")
	return job, nil
}
