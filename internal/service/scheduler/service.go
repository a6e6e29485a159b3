// Package scheduler runs the periodic backlog digest and statistics refresh jobs.
package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/aimd54/rocase/internal/config"
	prommetrics "github.com/aimd54/rocase/internal/metrics"
	"github.com/aimd54/rocase/internal/models"
	"github.com/aimd54/rocase/internal/notify"
	"github.com/aimd54/rocase/pkg/logger"
)

const (
	jobBacklogDigest = "backlog_digest"
	jobStatsRefresh  = "stats_refresh"
)

// PendingLister lists case requests still waiting for review.
type PendingLister interface {
	ListPendingBefore(ctx context.Context, cutoff time.Time) ([]models.CaseRequest, error)
}

// GaugeRefresher republishes statistics gauges.
type GaugeRefresher interface {
	RefreshGauges(ctx context.Context) error
}

// DigestSender delivers the backlog digest.
type DigestSender interface {
	SendBacklogDigest(ctx context.Context, pending []notify.PendingRequest, now time.Time) error
}

// Service handles periodic jobs.
type Service struct {
	config   *config.Config
	requests PendingLister
	stats    GaugeRefresher
	notifier DigestSender
	log      *logger.Logger
	cron     *cron.Cron
	now      func() time.Time
}

// NewService creates a new scheduler service.
func NewService(
	cfg *config.Config,
	requests PendingLister,
	stats GaugeRefresher,
	notifier DigestSender,
	log *logger.Logger,
) *Service {
	return &Service{
		config:   cfg,
		requests: requests,
		stats:    stats,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// Start initializes and starts the cron scheduler.
func (s *Service) Start() error {
	if !s.config.Scheduler.Enabled {
		s.log.Info().Msg("Scheduler is disabled in configuration")
		return nil
	}

	location, err := s.config.Scheduler.GetLocation()
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", s.config.Scheduler.Timezone, err)
	}

	s.cron = cron.New(cron.WithLocation(location))

	cronExpr, err := s.buildCronExpression()
	if err != nil {
		return fmt.Errorf("failed to build cron expression: %w", err)
	}

	_, err = s.cron.AddFunc(cronExpr, func() {
		s.runBacklogDigest(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to register backlog digest job: %w", err)
	}

	if s.config.Scheduler.StatsRefresh != "" && s.stats != nil {
		_, err = s.cron.AddFunc(s.config.Scheduler.StatsRefresh, func() {
			s.runStatsRefresh(context.Background())
		})
		if err != nil {
			return fmt.Errorf("failed to register stats refresh job: %w", err)
		}
		s.log.Info().
			Str("schedule", s.config.Scheduler.StatsRefresh).
			Msg("Stats refresh job registered")
	}

	s.cron.Start()

	entries := s.cron.Entries()
	nextRun := ""
	if len(entries) > 0 {
		nextRun = entries[0].Next.Format(time.RFC3339)
	}

	s.log.Info().
		Str("schedule", cronExpr).
		Str("timezone", s.config.Scheduler.Timezone).
		Str("time", s.config.Scheduler.Time).
		Bool("skip_weekends", s.config.Scheduler.SkipWeekends).
		Str("next_run", nextRun).
		Msg("Scheduler started successfully")

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Service) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.log.Info().Msg("Scheduler stopped")
	}
}

// buildCronExpression generates the digest cron expression from config.
func (s *Service) buildCronExpression() (string, error) {
	// Parse time string (format: "HH:MM")
	parts := strings.Split(s.config.Scheduler.Time, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time format %q, expected HH:MM", s.config.Scheduler.Time)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour %q", parts[0])
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute %q", parts[1])
	}

	// Format: "minute hour day month weekday"
	if s.config.Scheduler.SkipWeekends {
		return fmt.Sprintf("%d %d * * 1-5", minute, hour), nil
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}

// runBacklogDigest posts the list of case requests that have waited past the minimum age.
func (s *Service) runBacklogDigest(ctx context.Context) {
	start := time.Now()

	defer func() {
		prommetrics.ObserveSchedulerJobDuration(jobBacklogDigest, time.Since(start).Seconds())
		prommetrics.SetSchedulerLastRun(jobBacklogDigest)
	}()

	s.log.Info().Msg("Running backlog digest job")

	now := s.now()
	cutoff := now.Add(-s.config.Scheduler.PendingMinAge())

	queryStart := time.Now()
	requests, err := s.requests.ListPendingBefore(ctx, cutoff)
	queryDuration := time.Since(queryStart)

	if err != nil {
		s.log.Error().
			Err(err).
			Dur("query_duration", queryDuration).
			Msg("Failed to list pending case requests")
		prommetrics.RecordSchedulerJobRun(jobBacklogDigest, "error")
		prommetrics.RecordSchedulerNotificationFailed("query_error")
		return
	}

	pending := buildPendingRequests(requests)
	prommetrics.SetSchedulerStaleRequests(len(pending))

	s.log.Info().
		Int("count", len(pending)).
		Time("cutoff", cutoff).
		Dur("query_duration", queryDuration).
		Msg("Found stale case requests")

	if len(pending) == 0 {
		s.log.Debug().Msg("No stale case requests to notify about")
		prommetrics.RecordSchedulerJobRun(jobBacklogDigest, "success")
		return
	}

	sendStart := time.Now()
	err = s.notifier.SendBacklogDigest(ctx, pending, now)
	sendDuration := time.Since(sendStart)

	if err != nil {
		s.log.Error().
			Err(err).
			Dur("send_duration", sendDuration).
			Msg("Failed to send backlog digest")
		prommetrics.RecordSchedulerJobRun(jobBacklogDigest, "error")
		prommetrics.RecordSchedulerNotificationFailed("webhook_error")
		return
	}

	prommetrics.RecordSchedulerJobRun(jobBacklogDigest, "success")
	prommetrics.RecordSchedulerNotificationSent()

	s.log.Info().
		Int("request_count", len(pending)).
		Dur("send_duration", sendDuration).
		Dur("total_duration", time.Since(start)).
		Msg("Successfully sent backlog digest")
}

// runStatsRefresh republishes the case and request gauges.
func (s *Service) runStatsRefresh(ctx context.Context) {
	start := time.Now()

	defer func() {
		prommetrics.ObserveSchedulerJobDuration(jobStatsRefresh, time.Since(start).Seconds())
		prommetrics.SetSchedulerLastRun(jobStatsRefresh)
	}()

	if err := s.stats.RefreshGauges(ctx); err != nil {
		s.log.Error().
			Err(err).
			Dur("duration", time.Since(start)).
			Msg("Stats refresh job failed")
		prommetrics.RecordSchedulerJobRun(jobStatsRefresh, "error")
		return
	}

	prommetrics.RecordSchedulerJobRun(jobStatsRefresh, "success")
	s.log.Debug().Dur("duration", time.Since(start)).Msg("Stats refresh job completed")
}
