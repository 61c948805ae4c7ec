package ratinghandlers

import (
	"log/slog"

	ratingservice "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/application"
	ratingevents "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/events"
	"github.com/Black-And-White-Club/inhouse-bot/pkg/handlerwrapper"
	"go.opentelemetry.io/otel/trace"
)

// RatingHandlers handles rating-related events.
type RatingHandlers struct {
	service ratingservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewRatingHandlers creates a new instance of RatingHandlers.
func NewRatingHandlers(service ratingservice.Service, logger *slog.Logger, tracer trace.Tracer) Handlers {
	return &RatingHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// failed builds the single failed event for an operation. err is either an
// infrastructure error or the failure carried by a result.
func failed(topic, operation string, err error, decorate func(*ratingevents.OperationFailedPayloadV1)) []handlerwrapper.Result {
	payload := ratingevents.NewOperationFailed(operation, err)
	if decorate != nil {
		decorate(&payload)
	}
	return []handlerwrapper.Result{{Topic: topic, Payload: &payload}}
}
