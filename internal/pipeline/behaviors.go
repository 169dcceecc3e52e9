package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/taskwell/taskwell/internal/errs"
)

// DefaultSlowThreshold is the handler latency above which the performance
// behavior emits a warning record
const DefaultSlowThreshold = 500 * time.Millisecond

// ValidationBehavior runs a request's structural checks before anything
// else touches the store. On failure the handler is never invoked.
type ValidationBehavior struct{}

// Handle implements Behavior
func (ValidationBehavior) Handle(ctx context.Context, req Request, next Next) (any, error) {
	if v, ok := req.(Validatable); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	return next(ctx)
}

// LoggingBehavior records every request's name, outcome and latency after
// the handler completes. It never alters control flow or the result, and
// never logs request field values.
type LoggingBehavior struct {
	Logger *slog.Logger
}

// Handle implements Behavior
func (b LoggingBehavior) Handle(ctx context.Context, req Request, next Next) (any, error) {
	logger := b.Logger
	if logger == nil {
		logger = slog.Default()
	}

	start := time.Now()
	out, err := next(ctx)
	elapsed := time.Since(start)

	if err != nil {
		logger.Info("request failed",
			"request", req.RequestName(),
			"error_kind", errs.KindOf(err).String(),
			"duration", elapsed)
		return out, err
	}

	logger.Info("request completed",
		"request", req.RequestName(),
		"duration", elapsed)
	return out, nil
}

// PerformanceBehavior measures handler latency and emits a warning record
// when it exceeds the threshold. The result is passed through untouched.
type PerformanceBehavior struct {
	Logger    *slog.Logger
	Threshold time.Duration
}

// Handle implements Behavior
func (b PerformanceBehavior) Handle(ctx context.Context, req Request, next Next) (any, error) {
	threshold := b.Threshold
	if threshold <= 0 {
		threshold = DefaultSlowThreshold
	}

	start := time.Now()
	out, err := next(ctx)
	elapsed := time.Since(start)

	if elapsed > threshold {
		logger := b.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("slow request",
			"request", req.RequestName(),
			"duration", elapsed,
			"threshold", threshold)
	}

	return out, err
}

// Default returns the standard chain every service runs through:
// logging outermost, then performance monitoring, then validation
// immediately before the handler.
func Default(logger *slog.Logger, slowThreshold time.Duration) *Chain {
	return NewChain(
		LoggingBehavior{Logger: logger},
		PerformanceBehavior{Logger: logger, Threshold: slowThreshold},
		ValidationBehavior{},
	)
}
