package dirsync

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lostandfound-admin/lostandfound-admin/internal/db/models"
)

const (
	// DefaultSyncHourUTC is the scheduled sync hour when none is configured.
	DefaultSyncHourUTC = 2

	// failureBackoff is how long the scheduler pauses after a failed run
	// before rearming the daily timer.
	failureBackoff = time.Hour

	// scheduledActor is the PerformedBy value for scheduler-triggered runs.
	scheduledActor = "System (Scheduled)"
)

// auditLogger records the outcome of scheduled runs in the activity log.
// Satisfied by *activity.Service.
type auditLogger interface {
	Log(action, details, performedBy, category, ipAddress, status string)
}

// Scheduler triggers one reconciliation pass per day at a fixed UTC hour.
type Scheduler struct {
	reconciler *Reconciler
	audit      auditLogger
	record     func(*Result)
	hourUTC    int
}

// NewScheduler creates a daily sync scheduler. record persists the run
// outcome (e.g. for the dashboard status line) and may be nil.
func NewScheduler(reconciler *Reconciler, audit auditLogger, hourUTC int, record func(*Result)) *Scheduler {
	if hourUTC < 0 || hourUTC > 23 {
		hourUTC = DefaultSyncHourUTC
	}

	return &Scheduler{
		reconciler: reconciler,
		audit:      audit,
		record:     record,
		hourUTC:    hourUTC,
	}
}

// Run blocks until the context is cancelled, executing one sync per day.
// A run failure does not stop the scheduler; the next day's run proceeds.
func (s *Scheduler) Run(ctx context.Context) {
	log.Info().Int("hour_utc", s.hourUTC).Msg("AD sync scheduler started, will sync daily")

	for {
		now := time.Now().UTC()
		next := NextRunAfter(now, s.hourUTC)

		log.Info().
			Time("next_sync", next).
			Float64("hours_until", next.Sub(now).Hours()).
			Msg("next AD sync scheduled")

		timer := time.NewTimer(next.Sub(now))

		select {
		case <-ctx.Done():
			timer.Stop()
			log.Info().Msg("AD sync scheduler stopped")

			return
		case <-timer.C:
		}

		s.runOnce(ctx)
	}
}

// runOnce executes the pass and records the outcome in the activity log.
func (s *Scheduler) runOnce(ctx context.Context) {
	log.Info().Msg("starting scheduled daily AD sync")

	result := s.reconciler.Run()

	status := models.ActivityStatusSuccess
	if !result.Success {
		status = models.ActivityStatusFailed
	}

	if s.audit != nil {
		s.audit.Log("Scheduled AD Sync", result.Summary(), scheduledActor, models.ActivityCategoryADSync, "", status)
	}

	if s.record != nil {
		s.record(result)
	}

	log.Info().Str("summary", result.Summary()).Msg("scheduled AD sync completed")

	if !result.Success {
		// Pause before rearming the daily timer. The next attempt is the
		// next scheduled run, not an immediate retry.
		timer := time.NewTimer(failureBackoff)

		select {
		case <-ctx.Done():
			timer.Stop()
		case <-timer.C:
		}
	}
}

// NextRunAfter returns the next occurrence of the given UTC hour strictly
// after now.
func NextRunAfter(now time.Time, hourUTC int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hourUTC, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}

	return next
}
