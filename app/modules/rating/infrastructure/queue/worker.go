package ratingqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	ratingdomain "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/domain"
	ratingservice "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/application"
	"github.com/Black-And-White-Club/inhouse-bot/pkg/attr"
	"github.com/riverqueue/river"
)

// SeasonEnder is the slice of the rating service the worker needs.
type SeasonEnder interface {
	EndSeason(ctx context.Context, seasonID string) (ratingservice.SeasonResult, error)
}

// SeasonEndWorker ends the season named in a SeasonEndJob.
type SeasonEndWorker struct {
	river.WorkerDefaults[SeasonEndJob]
	logger  *slog.Logger
	service SeasonEnder
}

func NewSeasonEndWorker(logger *slog.Logger, service SeasonEnder) *SeasonEndWorker {
	return &SeasonEndWorker{logger: logger, service: service}
}

// Work ends the season. A season that is already closed or inactive is a
// no-op; a missing season cancels the job; storage errors are retried.
func (w *SeasonEndWorker) Work(ctx context.Context, job *river.Job[SeasonEndJob]) error {
	logger := w.logger.With(
		attr.SeasonID(job.Args.SeasonID),
		attr.Int64("job_id", job.ID),
		attr.Int("attempt", job.Attempt),
	)
	logger.InfoContext(ctx, "Processing season end job")

	result, err := w.service.EndSeason(ctx, job.Args.SeasonID)
	if err != nil {
		logger.ErrorContext(ctx, "Season end failed", attr.Error(err))
		return fmt.Errorf("end season %s: %w", job.Args.SeasonID, err)
	}

	if result.IsFailure() {
		failure := *result.Failure
		switch {
		case errors.Is(failure, ratingdomain.ErrStateConflict):
			logger.WarnContext(ctx, "Season not active, nothing to end", attr.Error(failure))
			return nil
		default:
			logger.ErrorContext(ctx, "Season end rejected, cancelling job", attr.Error(failure))
			return river.JobCancel(failure)
		}
	}

	logger.InfoContext(ctx, "Season ended by scheduler",
		attr.Int("ranked_players", len(result.Success.Rankings)),
	)
	return nil
}
