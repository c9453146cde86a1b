package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Run starts the metrics server, the modules and the router, and blocks
// until ctx is cancelled or the router stops.
func (app *App) Run(ctx context.Context) error {
	logger := app.Observability.Logger

	go func() {
		if err := app.Observability.ServeMetrics(ctx, app.Config.Observability.MetricsAddress); err != nil {
			logger.ErrorContext(ctx, "Metrics server failed", slog.Any("error", err))
		}
	}()

	var wg sync.WaitGroup
	for _, m := range app.modules() {
		wg.Add(1)
		go m.Run(ctx, &wg)
	}

	logger.InfoContext(ctx, "Starting Watermill router")
	err := app.Router.Run(ctx)

	wg.Wait()
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("watermill router stopped: %w", err)
	}
	return nil
}
