package ratingqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	ratingmetrics "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/infrastructure/metrics"
	"github.com/Black-And-White-Club/inhouse-bot/pkg/attr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/uptrace/bun"
)

const (
	// SeasonQueue is the dedicated queue for season jobs.
	SeasonQueue = "season"

	minScheduleLead = 5 * time.Second
)

// QueueService interface defines the contract for job scheduling operations
type QueueService interface {
	// ScheduleSeasonEnd schedules a season to end at the given time.
	ScheduleSeasonEnd(ctx context.Context, seasonID string, at time.Time) (int64, error)
	// CancelSeasonEnd cancels pending season end jobs for a season.
	CancelSeasonEnd(ctx context.Context, seasonID string) (int, error)
	// GetScheduledJobs returns the season end jobs recorded for a season.
	GetScheduledJobs(ctx context.Context, seasonID string) ([]JobInfo, error)
	HealthCheck(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

var _ QueueService = (*Service)(nil)

// Service schedules and runs season jobs with River.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	db      *bun.DB
	logger  *slog.Logger
	metrics ratingmetrics.RatingMetrics
	now     func() time.Time
}

// Option tunes the River client.
type Option func(*river.Config)

// WithSeasonWorkers sets how many season jobs run concurrently.
func WithSeasonWorkers(n int) Option {
	return func(c *river.Config) {
		if n > 0 {
			c.Queues[SeasonQueue] = river.QueueConfig{MaxWorkers: n}
		}
	}
}

// WithPollInterval sets how often River polls for scheduled jobs.
func WithPollInterval(d time.Duration) Option {
	return func(c *river.Config) {
		if d > 0 {
			c.FetchPollInterval = d
		}
	}
}

// NewService creates a River client over its own pgx pool. River requires
// pgx; bun stays on database/sql for job inspection queries.
func NewService(ctx context.Context, bunDB *bun.DB, logger *slog.Logger, dsn string, metrics ratingmetrics.RatingMetrics, ender SeasonEnder, opts ...Option) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("operation", "new_rating_queue_service"),
		attr.String("component", "river_queue"),
	)

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "queue.initialize")

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "queue.initialize")
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "queue.initialize")
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		ctxLogger.Error("Failed to ping database for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "queue.initialize")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewSeasonEndWorker(ctxLogger, ender))

	riverConfig := &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
			SeasonQueue:        {MaxWorkers: 2},
		},
		Workers: workers,
		Logger:  logger,
	}
	for _, opt := range opts {
		opt(riverConfig)
	}

	riverClient, err := river.NewClient(riverpgxv5.New(pool), riverConfig)
	if err != nil {
		pool.Close()
		ctxLogger.Error("Failed to create River client", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "queue.initialize")
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	metrics.RecordOperationSuccess(ctx, "queue.initialize")
	metrics.RecordOperationDuration(ctx, "queue.initialize", time.Since(start))
	ctxLogger.Info("Rating queue service initialized")

	return &Service{
		client:  riverClient,
		pool:    pool,
		db:      bunDB,
		logger:  ctxLogger,
		metrics: metrics,
		now:     time.Now,
	}, nil
}

// Start starts the River queue service
func (s *Service) Start(ctx context.Context) error {
	if err := s.client.Start(ctx); err != nil {
		s.logger.Error("Failed to start River client", attr.Error(err))
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.logger.Info("Rating queue service started")
	return nil
}

// Stop waits for running jobs and closes the pool.
func (s *Service) Stop(ctx context.Context) error {
	defer s.pool.Close()
	if err := s.client.Stop(ctx); err != nil {
		s.logger.Error("Failed to stop River client", attr.Error(err))
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.logger.Info("Rating queue service stopped")
	return nil
}

// ScheduleSeasonEnd inserts a season end job. Scheduling the same season
// twice returns the existing job.
func (s *Service) ScheduleSeasonEnd(ctx context.Context, seasonID string, at time.Time) (int64, error) {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "queue.schedule_season_end")

	ctxLogger := s.logger.With(
		attr.SeasonID(seasonID),
		attr.Time("end_time", at),
	)

	if seasonID == "" {
		s.metrics.RecordOperationFailure(ctx, "queue.schedule_season_end")
		return 0, fmt.Errorf("season id is required")
	}
	now := s.now()
	if at.Before(now.Add(minScheduleLead)) {
		s.metrics.RecordOperationFailure(ctx, "queue.schedule_season_end")
		return 0, fmt.Errorf("end time must be at least %s in the future", minScheduleLead)
	}

	res, err := s.client.Insert(ctx, SeasonEndJob{SeasonID: seasonID}, seasonEndInsertOpts(at))
	if err != nil {
		ctxLogger.Error("Failed to schedule season end job", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "queue.schedule_season_end")
		return 0, fmt.Errorf("failed to schedule season end job: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "queue.schedule_season_end")
	s.metrics.RecordOperationDuration(ctx, "queue.schedule_season_end", time.Since(start))
	ctxLogger.Info("Season end job scheduled",
		attr.Int64("job_id", res.Job.ID),
		attr.Bool("duplicate", res.UniqueSkippedAsDuplicate),
		attr.Duration("delay", at.Sub(now)),
	)
	return res.Job.ID, nil
}

func seasonEndInsertOpts(at time.Time) *river.InsertOpts {
	return &river.InsertOpts{
		Queue:       SeasonQueue,
		ScheduledAt: at,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
		},
	}
}

type riverJobRow struct {
	ID          int64          `bun:"id"`
	Kind        string         `bun:"kind"`
	State       string         `bun:"state"`
	Args        map[string]any `bun:"args,type:jsonb"`
	ScheduledAt *time.Time     `bun:"scheduled_at"`
	CreatedAt   time.Time      `bun:"created_at"`
	Attempt     int16          `bun:"attempt"`
	MaxAttempts int16          `bun:"max_attempts"`
}

// CancelSeasonEnd cancels pending season end jobs and reports how many were
// cancelled.
func (s *Service) CancelSeasonEnd(ctx context.Context, seasonID string) (int, error) {
	s.metrics.RecordOperationAttempt(ctx, "queue.cancel_season_end")

	var jobs []riverJobRow
	err := s.db.NewSelect().
		Table("river_job").
		Column("id", "kind", "state").
		Where("kind = ?", SeasonEndJob{}.Kind()).
		Where("state IN (?, ?)", "available", "scheduled").
		Where("args->>'season_id' = ?", seasonID).
		Scan(ctx, &jobs)
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, "queue.cancel_season_end")
		return 0, fmt.Errorf("failed to query jobs for cancellation: %w", err)
	}

	cancelled := 0
	for _, job := range jobs {
		if _, err := s.client.JobCancel(ctx, job.ID); err != nil {
			s.logger.Warn("Failed to cancel job", attr.Int64("job_id", job.ID), attr.Error(err))
			continue
		}
		cancelled++
	}

	if cancelled == len(jobs) {
		s.metrics.RecordOperationSuccess(ctx, "queue.cancel_season_end")
	} else {
		s.metrics.RecordOperationFailure(ctx, "queue.cancel_season_end")
	}
	s.logger.Info("Season end jobs cancelled",
		attr.SeasonID(seasonID),
		attr.Int("total_found", len(jobs)),
		attr.Int("cancelled_count", cancelled),
	)
	return cancelled, nil
}

func (s *Service) GetScheduledJobs(ctx context.Context, seasonID string) ([]JobInfo, error) {
	var jobs []riverJobRow
	err := s.db.NewSelect().
		Table("river_job").
		Column("id", "kind", "state", "args", "scheduled_at", "created_at", "attempt", "max_attempts").
		Where("kind = ?", SeasonEndJob{}.Kind()).
		Where("args->>'season_id' = ?", seasonID).
		Order("scheduled_at ASC NULLS LAST", "created_at ASC").
		Scan(ctx, &jobs)
	if err != nil {
		return nil, fmt.Errorf("failed to query scheduled jobs: %w", err)
	}

	out := make([]JobInfo, len(jobs))
	for i, job := range jobs {
		scheduledAt := ""
		if job.ScheduledAt != nil {
			scheduledAt = job.ScheduledAt.UTC().Format(time.RFC3339)
		}
		out[i] = JobInfo{
			ID:          job.ID,
			Kind:        job.Kind,
			SeasonID:    seasonID,
			State:       job.State,
			ScheduledAt: scheduledAt,
			CreatedAt:   job.CreatedAt.UTC().Format(time.RFC3339),
			Attempt:     int(job.Attempt),
			MaxAttempts: int(job.MaxAttempts),
		}
	}
	return out, nil
}

// HealthCheck verifies the queue service is healthy
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("river client is nil")
	}
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("queue service health check failed: %w", err)
	}
	return nil
}
