package ratingservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	ratingdomain "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/domain"
	ratingmetrics "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/infrastructure/metrics"
	ratingdb "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/infrastructure/repositories"
	"github.com/Black-And-White-Club/inhouse-bot/pkg/attr"
	"github.com/Black-And-White-Club/inhouse-bot/pkg/results"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RatingService implements the Service interface.
type RatingService struct {
	repo     ratingdb.Repository
	uow      ratingdb.UnitOfWork
	balancer *ratingdomain.TeamBalancer
	logger   *slog.Logger
	metrics  ratingmetrics.RatingMetrics
	tracer   trace.Tracer
	now      func() time.Time
}

var _ Service = (*RatingService)(nil)

// NewRatingService creates a new RatingService. Writes require uow; a nil
// balancer uses the global random source.
func NewRatingService(
	repo ratingdb.Repository,
	uow ratingdb.UnitOfWork,
	balancer *ratingdomain.TeamBalancer,
	logger *slog.Logger,
	metrics ratingmetrics.RatingMetrics,
	tracer trace.Tracer,
) *RatingService {
	if balancer == nil {
		balancer = ratingdomain.NewTeamBalancer(nil)
	}
	return &RatingService{
		repo:     repo,
		uow:      uow,
		balancer: balancer,
		logger:   logger,
		metrics:  metrics,
		tracer:   tracer,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *RatingService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
		attribute.String("identifier", identifier),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, time.Since(startTime))
	}()

	s.logger.InfoContext(ctx, operationName+" triggered",
		attr.String("operation", operationName),
		attr.String("identifier", identifier),
		attr.ExtractCorrelationID(ctx),
	)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.String("identifier", identifier),
				attr.ExtractCorrelationID(ctx),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName)
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		s.logger.InfoContext(ctx, operationName+" completed successfully",
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.ExtractCorrelationID(ctx),
		)
		s.metrics.RecordOperationSuccess(ctx, operationName)
	}

	return result, nil
}

// errNoUnitOfWork is returned by writes on a service built without a UnitOfWork.
var errNoUnitOfWork = errors.New("no unit of work configured")

// errRollback aborts a transaction whose operation produced a failure result.
var errRollback = errors.New("rollback: operation returned failure result")

// runInTx runs fn inside a unit of work. A failure result rolls the
// transaction back and is returned as-is; a storage error rolls back and is
// reported as TransactionFailed.
func runInTx[S any, F any](
	s *RatingService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	if s.uow == nil {
		return results.OperationResult[S, F]{}, ratingdomain.TransactionFailed("nothing applied", errNoUnitOfWork)
	}

	var result results.OperationResult[S, F]
	err := s.uow.RunInTx(ctx, func(ctx context.Context, db bun.IDB) error {
		var txErr error
		result, txErr = fn(ctx, db)
		if txErr != nil {
			return txErr
		}
		if result.IsFailure() {
			return errRollback
		}
		return nil
	})

	switch {
	case err == nil, errors.Is(err, errRollback):
		return result, nil
	default:
		return results.OperationResult[S, F]{}, ratingdomain.TransactionFailed("changes rolled back", err)
	}
}

func failure[S any](err error) (results.OperationResult[S, error], error) {
	return results.FailureResult[S, error](err), nil
}

func success[S any](v S) (results.OperationResult[S, error], error) {
	return results.SuccessResult[S, error](v), nil
}

// domainFailure turns domain errors into failure results and passes anything
// else through as an infrastructure error.
func domainFailure[S any](err error) (results.OperationResult[S, error], error) {
	var derr *ratingdomain.Error
	if errors.As(err, &derr) {
		return failure[S](derr)
	}
	return results.OperationResult[S, error]{}, err
}
