package app

import (
	"context"
	"fmt"
	"io"

	"github.com/Black-And-White-Club/inhouse-bot/app/eventbus"
	"github.com/Black-And-White-Club/inhouse-bot/app/modules/rating"
	"github.com/Black-And-White-Club/inhouse-bot/app/observability"
	"github.com/Black-And-White-Club/inhouse-bot/config"
	"github.com/Black-And-White-Club/inhouse-bot/db/bundb"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
)

// App wires configuration, storage, transport and modules together.
type App struct {
	Config        *config.Config
	Observability *observability.Observability
	DB            *bun.DB
	EventBus      eventbus.EventBus
	Router        *message.Router
	RatingModule  *rating.Module
	opsServer     *observability.OpsServer
}

// NewApp initializes the application with the necessary services and configuration.
func NewApp(ctx context.Context, cfg *config.Config, logOut io.Writer) (*App, error) {
	obs, err := observability.Init(ctx, cfg.Observability, logOut)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	logger := obs.Logger

	db, err := bundb.NewBunDB(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	eventBus, err := eventbus.NewEventBus(ctx, cfg.NATS.URL, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize event bus: %w", err)
	}
	if err := eventbus.InitializeStreams(ctx, eventBus); err != nil {
		_ = eventBus.Close()
		_ = db.Close()
		return nil, err
	}

	router, err := newMessageRouter(logger)
	if err != nil {
		_ = eventBus.Close()
		_ = db.Close()
		return nil, err
	}

	ratingModule, err := rating.NewRatingModule(ctx, cfg, obs, db, eventBus, router)
	if err != nil {
		_ = eventBus.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize rating module: %w", err)
	}

	app := &App{
		Config:        cfg,
		Observability: obs,
		DB:            db,
		EventBus:      eventBus,
		Router:        router,
		RatingModule:  ratingModule,
	}

	if addr := cfg.Observability.MetricsAddress; addr != "" {
		app.opsServer = observability.NewOpsServer(addr, observability.NewOpsRouter(obs.Registry, app.healthChecks()), logger)
	}

	return app, nil
}

func (app *App) healthChecks() map[string]observability.HealthCheck {
	checks := map[string]observability.HealthCheck{
		"postgres": app.DB.PingContext,
	}
	if app.RatingModule.Queue != nil {
		checks["queue"] = app.RatingModule.Queue.HealthCheck
	}
	return checks
}
