package observability

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
)

const (
	attrTraceID = "trace_id"
	attrSpanID  = "span_id"
	attrService = "service"
	attrEnv     = "env"
	attrMode    = "mode"
)

// TraceContextHandler is an slog.Handler that injects the active
// OpenTelemetry span's trace_id/span_id into every log record it
// forwards to inner. Unlike a handler that also owns static service
// identity, this one carries no other state: service/env/mode and any
// run-specific fields (dataset, variant, seed) are attached by callers
// through slog.Logger.With, the same way any other structured field
// would be.
type TraceContextHandler struct {
	inner slog.Handler
}

// NewTraceContextHandler wraps inner with trace-context injection.
func NewTraceContextHandler(inner slog.Handler) *TraceContextHandler {
	return &TraceContextHandler{inner: inner}
}

// Enabled delegates to the inner handler.
func (h *TraceContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle adds trace context attributes from ctx's span, then delegates.
func (h *TraceContextHandler) Handle(ctx context.Context, record slog.Record) error {
	sc := trace.SpanContextFromContext(ctx)
	if sc.IsValid() {
		record.AddAttrs(
			slog.String(attrTraceID, sc.TraceID().String()),
			slog.String(attrSpanID, sc.SpanID().String()),
		)
	}

	if err := h.inner.Handle(ctx, record); err != nil {
		return fmt.Errorf("trace context handler: %w", err)
	}

	return nil
}

// WithAttrs returns a new TraceContextHandler with additional attrs on
// the inner handler.
func (h *TraceContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TraceContextHandler{inner: h.inner.WithAttrs(attrs)}
}

// WithGroup returns a new TraceContextHandler with a group prefix on
// the inner handler.
func (h *TraceContextHandler) WithGroup(name string) slog.Handler {
	return &TraceContextHandler{inner: h.inner.WithGroup(name)}
}

// NewLogger builds the logger Init attaches to Providers. Service
// identity is attached via With rather than baked into the handler, so
// the handler itself stays a pure trace-context adapter that callers
// can further decorate with run-specific attributes (dataset, variant,
// seed) the same way.
func NewLogger(cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}

	var inner slog.Handler
	if cfg.LogJSON {
		inner = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		inner = slog.NewTextHandler(os.Stderr, opts)
	}

	logger := slog.New(NewTraceContextHandler(inner))

	attrs := []any{attrService, cfg.ServiceName, attrMode, string(cfg.Mode)}
	if cfg.Environment != "" {
		attrs = append(attrs, attrEnv, cfg.Environment)
	}

	return logger.With(attrs...)
}
