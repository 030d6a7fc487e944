package telemetry

import (
	"go.opentelemetry.io/otel/attribute"

	"fabricmux/internal/domain"
)

// SourceAttributes renders a Source's identity as span/resource attributes
// under the given prefix (e.g. "fabric.source").
func SourceAttributes(prefix string, src *domain.Source) []attribute.KeyValue {
	if src == nil {
		return []attribute.KeyValue{attribute.String(prefix+".uuid", "")}
	}
	return []attribute.KeyValue{
		attribute.String(prefix+".uuid", src.UUID.String()),
		attribute.String(prefix+".name", src.Name),
	}
}
