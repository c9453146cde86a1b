package userservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Black-And-White-Club/lockout-bot/app/chat"
	problemservice "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/application"
	problemdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/domain"
	"github.com/Black-And-White-Club/lockout-bot/app/modules/registry"
	"github.com/Black-And-White-Club/lockout-bot/app/observability"
	"github.com/Black-And-White-Club/lockout-bot/config"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "UserService"

// UserService implements the Service interface.
type UserService struct {
	registry  *registry.Registry
	problems  ProblemSource
	announcer chat.Announcer
	engine    config.EngineConfig
	logger    *slog.Logger
	metrics   observability.ServiceMetrics
	tracer    trace.Tracer
	now       func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewUserService creates a new UserService.
func NewUserService(
	reg *registry.Registry,
	problems ProblemSource,
	announcer chat.Announcer,
	engine config.EngineConfig,
	logger *slog.Logger,
	metrics observability.ServiceMetrics,
	tracer trace.Tracer,
) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &UserService{
		registry:  reg,
		problems:  problems,
		announcer: announcer,
		engine:    engine,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// ProblemURL links to a problem statement.
func (s *UserService) ProblemURL(problem problemdomain.Problem) string {
	return s.problems.ProblemURL(problem)
}

// Go runs fn on a context that keeps the values of ctx but is cancelled by
// Shutdown instead of by ctx.
func (s *UserService) Go(ctx context.Context, fn func(ctx context.Context)) error {
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

// Shutdown cancels pending registrations.
func (s *UserService) Shutdown() {
	s.cancel()
}

// Wait blocks until every background goroutine has returned.
func (s *UserService) Wait() {
	s.wg.Wait()
}

// isDomainFailure reports errors that are expected answers rather than faults.
func isDomainFailure(err error) bool {
	var (
		active *ActiveChallengeError
		early  *SkipTooEarlyError
	)
	return errors.Is(err, ErrInvalidHandle) ||
		errors.Is(err, ErrNoSubmission) ||
		errors.Is(err, ErrWrongVerdict) ||
		errors.Is(err, ErrWrongProblem) ||
		errors.Is(err, ErrNoChallenge) ||
		errors.Is(err, registry.ErrNotRegistered) ||
		errors.Is(err, registry.ErrAlreadyRegistered) ||
		errors.Is(err, registry.ErrHandleTaken) ||
		errors.Is(err, problemdomain.ErrHandleNotFound) ||
		errors.Is(err, problemdomain.ErrNotCompleted) ||
		errors.Is(err, problemdomain.ErrNoCandidates) ||
		errors.Is(err, problemservice.ErrInvalidRatingRange) ||
		errors.As(err, &active) ||
		errors.As(err, &early)
}

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[T any](
	s *UserService,
	ctx context.Context,
	operationName string,
	userID string,
	op func(ctx context.Context) (T, error),
) (result T, err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("user_id", userID),
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
				slog.String("user_id", userID),
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
			slog.String("user_id", userID),
			slog.String("failure", err.Error()),
		)
		s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	default:
		s.logger.ErrorContext(ctx, "Operation failed with error",
			slog.String("operation", operationName),
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
		s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		span.RecordError(err)
	}
	return result, err
}

var _ Service = (*UserService)(nil)
