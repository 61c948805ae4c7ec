package ratingrouter

import (
	"context"
	"log/slog"

	ratingevents "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/events"
	ratinghandlers "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/infrastructure/handlers"
	"github.com/Black-And-White-Club/inhouse-bot/pkg/eventbus"
	"github.com/Black-And-White-Club/inhouse-bot/pkg/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// RatingRouter binds rating topics to their handlers.
type RatingRouter struct {
	logger         *slog.Logger
	Router         *message.Router
	subscriber     message.Subscriber
	publisher      message.Publisher
	tracer         trace.Tracer
	metricsBuilder *metrics.PrometheusMetricsBuilder
	handlerMetrics handlerwrapper.ReturningMetrics
}

// NewRatingRouter creates a new instance of the router. A nil registry
// disables router metrics.
func NewRatingRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	tracer trace.Tracer,
	prometheusRegistry *prometheus.Registry,
	handlerMetrics handlerwrapper.ReturningMetrics,
) *RatingRouter {
	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if prometheusRegistry != nil {
		builder := metrics.NewPrometheusMetricsBuilder(prometheusRegistry, "", "")
		metricsBuilder = &builder
	}

	return &RatingRouter{
		logger:         logger,
		Router:         router,
		subscriber:     subscriber,
		publisher:      eventbus.NewTopicRouter(publisher),
		tracer:         tracer,
		metricsBuilder: metricsBuilder,
		handlerMetrics: handlerMetrics,
	}
}

// Configure sets up the middlewares and registers the rating handlers.
func (r *RatingRouter) Configure(routerCtx context.Context, handlers ratinghandlers.Handlers) error {
	if r.metricsBuilder != nil {
		r.logger.Info("Adding Prometheus router metrics middleware for Rating")
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	}

	r.Router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
	)

	return r.RegisterHandlers(routerCtx, handlers)
}

type handlerDeps struct {
	router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	logger     *slog.Logger
	tracer     trace.Tracer
	metrics    handlerwrapper.ReturningMetrics
}

// registerHandler subscribes handler to topic. Results are published to the
// topic each one names.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "rating." + topic
	deps.router.AddHandler(
		handlerName,
		topic,
		deps.subscriber,
		"",
		deps.publisher,
		handlerwrapper.WrapTransformingTyped(
			handlerName,
			deps.logger,
			deps.tracer,
			deps.metrics,
			handler,
		),
	)
}

// RegisterHandlers binds rating topics to their handlers.
func (r *RatingRouter) RegisterHandlers(ctx context.Context, handlers ratinghandlers.Handlers) error {
	r.logger.InfoContext(ctx, "Registering Rating Event Handlers")

	deps := handlerDeps{
		router:     r.Router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
		metrics:    r.handlerMetrics,
	}

	// MUTATIONS
	registerHandler(deps, ratingevents.MatchCreateRequestedV1, handlers.HandleCreateMatchRequested)
	registerHandler(deps, ratingevents.MatchResolveRequestedV1, handlers.HandleResolveMatchRequested)
	registerHandler(deps, ratingevents.SeasonEndRequestedV1, handlers.HandleEndSeasonRequested)
	registerHandler(deps, ratingevents.SeasonActivateRequestedV1, handlers.HandleActivateSeasonRequested)

	// READS
	registerHandler(deps, ratingevents.MatchPredictRequestedV1, handlers.HandlePredictMatchRequested)

	return nil
}

// Close stops the router.
func (r *RatingRouter) Close() error {
	return r.Router.Close()
}
