package app

import (
	"context"
	"sync"
	"time"

	"github.com/Black-And-White-Club/inhouse-bot/pkg/attr"
)

const shutdownTimeout = 30 * time.Second

// WaitForShutdown stops every component and waits for the modules to exit.
func (app *App) WaitForShutdown(wg *sync.WaitGroup) {
	logger := app.Observability.Logger
	logger.Info("Shutting down application...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.Router.Close(); err != nil {
		logger.Error("Failed to close Watermill router", attr.Error(err))
	}
	if err := app.RatingModule.Close(ctx); err != nil {
		logger.Error("Failed to close rating module", attr.Error(err))
	}
	wg.Wait()

	if app.opsServer != nil {
		if err := app.opsServer.Shutdown(ctx); err != nil {
			logger.Error("Failed to stop ops server", attr.Error(err))
		}
	}
	if err := app.EventBus.Close(); err != nil {
		logger.Error("Failed to close event bus", attr.Error(err))
	}
	if err := app.DB.Close(); err != nil {
		logger.Error("Failed to close database", attr.Error(err))
	}
	if err := app.Observability.Shutdown(ctx); err != nil {
		logger.Error("Failed to flush telemetry", attr.Error(err))
	}

	logger.Info("Application shut down gracefully.")
}
