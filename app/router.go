package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Black-And-White-Club/lockout-bot/app/observability"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

// Module is the lifecycle every application module implements.
type Module interface {
	Run(ctx context.Context, wg *sync.WaitGroup)
	Close() error
}

func (app *App) modules() []Module {
	var out []Module
	// Match first so observers stop before the services they call.
	if app.MatchModule != nil {
		out = append(out, app.MatchModule)
	}
	if app.UserModule != nil {
		out = append(out, app.UserModule)
	}
	if app.ProblemModule != nil {
		out = append(out, app.ProblemModule)
	}
	return out
}

// newRouter builds the shared Watermill router with panic recovery and
// Prometheus handler metrics.
func newRouter(logger *slog.Logger, obs observability.Observability) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: 10 * time.Second,
	}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create watermill router: %w", err)
	}

	router.AddMiddleware(middleware.Recoverer)

	if obs.Registry != nil {
		builder := metrics.NewPrometheusMetricsBuilder(obs.Registry, "lockout", "")
		builder.AddPrometheusRouterMetrics(router)
	}
	return router, nil
}
