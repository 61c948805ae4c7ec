package rating

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Black-And-White-Club/inhouse-bot/app/eventbus"
	"github.com/Black-And-White-Club/inhouse-bot/app/observability"
	ratingservice "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/application"
	ratingdomain "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/domain"
	ratinghandlers "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/infrastructure/handlers"
	ratingqueue "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/infrastructure/queue"
	ratingdb "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/infrastructure/repositories"
	ratingrouter "github.com/Black-And-White-Club/inhouse-bot/app/modules/rating/infrastructure/router"
	"github.com/Black-And-White-Club/inhouse-bot/config"
	"github.com/Black-And-White-Club/inhouse-bot/pkg/attr"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
)

// Module represents the rating module.
type Module struct {
	EventBus      eventbus.EventBus
	RatingService ratingservice.Service
	RatingRouter  *ratingrouter.RatingRouter
	// Queue is nil when the season-end scheduler is disabled.
	Queue      ratingqueue.QueueService
	logger     *slog.Logger
	cancelFunc context.CancelFunc
}

// NewRatingService builds the rating service over db.
func NewRatingService(db *bun.DB, obs *observability.Observability) *ratingservice.RatingService {
	return ratingservice.NewRatingService(
		ratingdb.NewRepository(db),
		ratingdb.NewUnitOfWork(db),
		nil,
		obs.Logger,
		obs.RatingMetrics,
		obs.Tracer,
	)
}

// NewRatingModule creates a new instance of the Rating module.
func NewRatingModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	db *bun.DB,
	eventBus eventbus.EventBus,
	router *message.Router,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "rating.NewRatingModule called")

	service := NewRatingService(db, obs)

	handlers := ratinghandlers.NewRatingHandlers(service, logger, obs.Tracer)
	ratingRouter := ratingrouter.NewRatingRouter(logger, router, eventBus, eventBus, obs.Tracer, obs.Registry, obs.RatingMetrics)
	if err := ratingRouter.Configure(ctx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure rating router: %w", err)
	}

	module := &Module{
		EventBus:      eventBus,
		RatingService: service,
		RatingRouter:  ratingRouter,
		logger:        logger,
	}

	if cfg.Scheduler.Enabled {
		queue, err := ratingqueue.NewService(ctx, db, logger, cfg.Postgres.DSN, obs.RatingMetrics, service,
			ratingqueue.WithSeasonWorkers(cfg.Scheduler.MaxWorkers),
			ratingqueue.WithPollInterval(cfg.Scheduler.PollInterval),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create rating queue: %w", err)
		}
		module.Queue = queue
	}

	return module, nil
}

// Run starts the season-end scheduler, if any, and blocks until ctx ends.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting rating module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if m.Queue != nil {
		if err := m.Queue.Start(ctx); err != nil {
			m.logger.ErrorContext(ctx, "Rating queue failed to start", attr.Error(err))
		}
	}

	<-ctx.Done()
	m.logger.Info("Rating module goroutine stopped")
}

// Close stops the rating module and cleans up resources.
func (m *Module) Close(ctx context.Context) error {
	m.logger.Info("Stopping rating module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	if m.Queue != nil {
		if err := m.Queue.Stop(ctx); err != nil {
			return fmt.Errorf("stop rating queue: %w", err)
		}
	}

	m.logger.Info("Rating module stopped")
	return nil
}

// SeasonDefaults converts the configured rating defaults into a season
// configuration.
func SeasonDefaults(cfg config.RatingConfig) (ratingdomain.SeasonConfig, error) {
	seasonCfg := ratingdomain.SeasonConfig{
		KFactorTiers: ratingdomain.KFactorTiers{
			New:         cfg.KFactorNew,
			Regular:     cfg.KFactorRegular,
			Experienced: cfg.KFactorExperienced,
		},
		PositionFactors: ratingdomain.DefaultPositionFactors(),
	}
	for name, factor := range cfg.PositionFactors {
		pos, err := ratingdomain.ParsePosition(name)
		if err != nil {
			return ratingdomain.SeasonConfig{}, err
		}
		seasonCfg.PositionFactors[pos] = factor
	}
	if err := seasonCfg.Validate(); err != nil {
		return ratingdomain.SeasonConfig{}, err
	}
	return seasonCfg, nil
}
