// Package ctxutil builds contexts carrying the cross-cutting concerns the
// fabric RPC layer needs — a trace id and an optional deadline — without
// every caller wiring context.WithTimeout and trace.AttachTraceID by hand.
package ctxutil

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"fabricmux/internal/trace"
)

// ContextOption configures the behavior of NewContext. Multiple options can
// be combined.
type ContextOption func(*ctxConfig)

type ctxConfig struct {
	withTrace  bool
	daemonName string
	timeout    time.Duration
}

// WithTrace enables attaching a fresh trace id to the created context,
// derived from daemonName.
func WithTrace(daemonName string) ContextOption {
	return func(cfg *ctxConfig) {
		cfg.withTrace = true
		cfg.daemonName = daemonName
	}
}

// WithTimeout sets a timeout duration for the created context. The caller
// must defer the cancel function returned by NewContext.
func WithTimeout(d time.Duration) ContextOption {
	return func(cfg *ctxConfig) {
		cfg.timeout = d
	}
}

// NewContext creates a new context configured according to the provided
// options, returning a no-op cancel func if no timeout was set.
func NewContext(opts ...ContextOption) (context.Context, context.CancelFunc) {
	cfg := &ctxConfig{}
	for _, o := range opts {
		o(cfg)
	}

	var ctx context.Context
	cancel := func() {}
	if cfg.timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), cfg.timeout)
	} else {
		ctx = context.Background()
	}
	if cfg.withTrace {
		ctx, _ = trace.AttachTraceID(ctx, cfg.daemonName)
	}

	return ctx, cancel
}

// TraceIDFromContext extracts the trace id from ctx, or "" if not present.
func TraceIDFromContext(ctx context.Context) string {
	return trace.GetTraceID(ctx)
}

// EnsureTraceID attaches a fresh trace id derived from daemonName if ctx
// doesn't already carry one, returning the (possibly unchanged) context.
func EnsureTraceID(ctx context.Context, daemonName string) context.Context {
	if id := trace.GetTraceID(ctx); id == "" {
		ctx, _ = trace.AttachTraceID(ctx, daemonName)
	}
	return ctx
}

// CheckContext reports whether ctx has been canceled or its deadline has
// expired, translating either into the matching gRPC status error so RPC
// handlers can bail out early with the right code.
func CheckContext(ctx context.Context) error {
	switch err := ctx.Err(); {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request was canceled by client")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request deadline exceeded")
	default:
		return nil
	}
}
