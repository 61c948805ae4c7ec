package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/Black-And-White-Club/inhouse-bot/pkg/attr"
)

// Run starts the router, the modules and the ops server and blocks until ctx
// is cancelled or the router stops.
func (app *App) Run(ctx context.Context) error {
	logger := app.Observability.Logger

	if app.opsServer != nil {
		app.opsServer.Start()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go app.RatingModule.Run(ctx, &wg)

	routerErr := make(chan error, 1)
	go func() {
		routerErr <- app.Router.Run(ctx)
	}()

	logger.InfoContext(ctx, "Rating engine running")

	var err error
	select {
	case <-ctx.Done():
	case err = <-routerErr:
		if err != nil {
			logger.ErrorContext(ctx, "Watermill router stopped", attr.Error(err))
			err = fmt.Errorf("watermill router: %w", err)
		}
	}

	app.WaitForShutdown(&wg)
	return err
}
