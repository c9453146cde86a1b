package matchservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Black-And-White-Club/lockout-bot/app/chat"
	matchdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/match/domain"
	problemservice "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/application"
	problemdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/domain"
	"github.com/Black-And-White-Club/lockout-bot/app/modules/registry"
	"github.com/Black-And-White-Club/lockout-bot/app/observability"
	"github.com/Black-And-White-Club/lockout-bot/config"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "MatchService"

// MatchService implements the Service interface. Every ACTIVE match is owned
// by one observer goroutine, which is the only writer of that match.
type MatchService struct {
	registry  *registry.Registry
	problems  ProblemSource
	hub       *chat.Hub
	announcer chat.Announcer
	publisher message.Publisher
	engine    config.EngineConfig
	logger    *slog.Logger
	metrics   observability.MatchMetrics
	tracer    trace.Tracer
	now       func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	observers map[matchdomain.MatchID]*observer
}

// NewMatchService creates a new MatchService. A nil publisher disables the
// match.started and match.finished events.
func NewMatchService(
	reg *registry.Registry,
	problems ProblemSource,
	hub *chat.Hub,
	announcer chat.Announcer,
	publisher message.Publisher,
	engine config.EngineConfig,
	logger *slog.Logger,
	metrics observability.MatchMetrics,
	tracer trace.Tracer,
) *MatchService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &MatchService{
		registry:  reg,
		problems:  problems,
		hub:       hub,
		announcer: announcer,
		publisher: publisher,
		engine:    engine,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
		observers: make(map[matchdomain.MatchID]*observer),
	}
}

// Go runs fn on a context that keeps the values of ctx but is cancelled by
// Shutdown instead of by ctx.
func (s *MatchService) Go(ctx context.Context, fn func(ctx context.Context)) error {
	if s.ctx.Err() != nil {
		return ErrShuttingDown
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	stop := context.AfterFunc(s.ctx, cancel)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer stop()
		defer cancel()
		fn(runCtx)
	}()
	return nil
}

// Shutdown stops every observer and negotiation without transitioning any
// match; persisted matches are picked up again by Resume.
func (s *MatchService) Shutdown() {
	s.cancel()
}

// Wait blocks until every background goroutine has returned.
func (s *MatchService) Wait() {
	s.wg.Wait()
}

// isDomainFailure reports errors that are expected answers rather than faults.
func isDomainFailure(err error) bool {
	var busy *registry.BusyError
	return errors.Is(err, ErrSelfInvite) ||
		errors.Is(err, ErrNoInvitees) ||
		errors.Is(err, ErrCancelled) ||
		errors.Is(err, ErrInsufficientRoster) ||
		errors.Is(err, ErrNoActiveMatch) ||
		errors.Is(err, ErrTokenNotAccepted) ||
		errors.Is(err, ErrInvalidDuration) ||
		errors.Is(err, registry.ErrNotRegistered) ||
		errors.Is(err, problemdomain.ErrNoCandidates) ||
		errors.Is(err, problemdomain.ErrNoCommonProblem) ||
		errors.Is(err, problemservice.ErrInvalidProblemCount) ||
		errors.As(err, &busy)
}

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[T any](
	s *MatchService,
	ctx context.Context,
	operationName string,
	identifier string,
	op func(ctx context.Context) (T, error),
) (result T, err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				slog.String("operation", operationName),
				slog.String("identifier", identifier),
				slog.Any("error", err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			span.RecordError(err)
			var zero T
			result = zero
		}
	}()

	result, err = op(ctx)
	switch {
	case err == nil:
		s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	case isDomainFailure(err):
		s.logger.InfoContext(ctx, "Operation returned failure result",
			slog.String("operation", operationName),
			slog.String("identifier", identifier),
			slog.String("failure", err.Error()),
		)
		s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	default:
		s.logger.ErrorContext(ctx, "Operation failed with error",
			slog.String("operation", operationName),
			slog.String("identifier", identifier),
			slog.Any("error", err),
		)
		s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		span.RecordError(err)
	}
	return result, err
}

var _ Service = (*MatchService)(nil)
