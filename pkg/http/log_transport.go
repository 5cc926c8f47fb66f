package http

import (
	"net/http"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type payloadContextKey struct{}

// logTransport reports outbound calls to the request-scoped logger
type logTransport struct {
	next http.RoundTripper
}

func (t *logTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("host", req.URL.Host),
		zap.String("path", req.URL.Path),
	}

	if payload, ok := ctx.Value(payloadContextKey{}).([]byte); ok && len(payload) > 0 {
		fields = append(fields, zap.ByteString("payload", payload))
	}

	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	fields = append(fields, zap.Duration("duration", time.Since(start)))

	if err != nil {
		ctxzap.Warn(ctx, "upstream call failed", append(fields, zap.Error(err))...)
		return nil, err
	}

	fields = append(fields, zap.Int("status", resp.StatusCode))
	if resp.StatusCode >= http.StatusInternalServerError {
		ctxzap.Warn(ctx, "upstream call returned server error", fields...)
	} else {
		ctxzap.Debug(ctx, "upstream call", fields...)
	}
	return resp, nil
}

// RequestLogging logs every call with its payload, status and duration.
// Headers are never logged.
func RequestLogging() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return &logTransport{next: next}
	}
}
