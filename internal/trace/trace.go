package trace

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type traceKey struct{}

// GenerateTraceID builds a globally unique trace id in the form
// <daemonName>-<UUID>, used to correlate a Select/Release call across
// fabricctl, fabricd, and its OpenTelemetry spans.
func GenerateTraceID(daemonName string) string {
	return fmt.Sprintf("%s-%s", daemonName, uuid.New().String())
}

// AttachTraceID generates a trace id for daemonName and stores it in ctx.
func AttachTraceID(ctx context.Context, daemonName string) (context.Context, string) {
	traceID := GenerateTraceID(daemonName)
	return context.WithValue(ctx, traceKey{}, traceID), traceID
}

// GetTraceID retrieves the trace id from ctx, or "" if none is set.
func GetTraceID(ctx context.Context) string {
	if v := ctx.Value(traceKey{}); v != nil {
		if id, ok := v.(string); ok && id != "" {
			return id
		}
	}
	return ""
}
