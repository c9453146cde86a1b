package problemservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	problemdomain "github.com/Black-And-White-Club/lockout-bot/app/modules/problem/domain"
	"github.com/Black-And-White-Club/lockout-bot/app/observability"
	"github.com/Black-And-White-Club/lockout-bot/config"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "ProblemService"

// ProblemService implements the Service interface.
type ProblemService struct {
	catalog        CatalogSource
	judge          Judge
	selector       *problemdomain.Selector
	engine         config.EngineConfig
	problemBaseURL string
	logger         *slog.Logger
	metrics        observability.ServiceMetrics
	tracer         trace.Tracer
}

// NewProblemService creates a new ProblemService.
func NewProblemService(
	catalog CatalogSource,
	judge Judge,
	selector *problemdomain.Selector,
	engine config.EngineConfig,
	problemBaseURL string,
	logger *slog.Logger,
	metrics observability.ServiceMetrics,
	tracer trace.Tracer,
) *ProblemService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	if selector == nil {
		selector = problemdomain.NewRandomSelector(engine.RandomizeConstant)
	}
	return &ProblemService{
		catalog:        catalog,
		judge:          judge,
		selector:       selector,
		engine:         engine,
		problemBaseURL: problemBaseURL,
		logger:         logger,
		metrics:        metrics,
		tracer:         tracer,
	}
}

// ProblemURL links to a problem statement.
func (s *ProblemService) ProblemURL(problem problemdomain.Problem) string {
	return problem.URL(s.problemBaseURL)
}

// isDomainFailure reports errors that are expected answers rather than faults.
func isDomainFailure(err error) bool {
	return errors.Is(err, problemdomain.ErrNoCandidates) ||
		errors.Is(err, problemdomain.ErrNoCommonProblem) ||
		errors.Is(err, problemdomain.ErrNotCompleted) ||
		errors.Is(err, problemdomain.ErrHandleNotFound) ||
		errors.Is(err, ErrInvalidRatingRange) ||
		errors.Is(err, ErrInvalidProblemCount) ||
		errors.Is(err, ErrNoHandles)
}

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[T any](
	s *ProblemService,
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
