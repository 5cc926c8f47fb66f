package chat

import (
	"context"
	"errors"
	"time"

	"github.com/futig/lawgpt-backend/internal/entity"
	"github.com/futig/lawgpt-backend/internal/pkg/metrics"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// guard runs a single external call under its own deadline and turns any
// failure into an *entity.UpstreamError tagged with the pipeline stage
type guard struct {
	timeout time.Duration
	metrics *metrics.Metrics
}

func (g guard) run(ctx context.Context, stage string, fn func(ctx context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	err := fn(callCtx)
	g.metrics.ObserveCall(stage, time.Since(start))

	if err == nil {
		return nil
	}

	timedOut := errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(callCtx.Err(), context.DeadlineExceeded)

	kind := metrics.KindError
	if timedOut {
		kind = metrics.KindTimeout
	}
	g.metrics.Failure(stage, kind)

	ctxzap.Error(ctx, "upstream call failed",
		zap.String("stage", stage),
		zap.Bool("timeout", timedOut),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err),
	)

	return &entity.UpstreamError{Stage: stage, Timeout: timedOut, Err: err}
}
