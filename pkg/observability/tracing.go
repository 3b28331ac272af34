package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/tripline-ai/replycache"

// Span is the minimal tracing surface used by cache operations.
type Span interface {
	End()
	SetAttribute(key string, value interface{})
	RecordError(err error)
}

type otelSpan struct {
	span trace.Span
}

func (s *otelSpan) End() { s.span.End() }

func (s *otelSpan) SetAttribute(key string, value interface{}) {
	switch v := value.(type) {
	case string:
		s.span.SetAttributes(attribute.String(key, v))
	case int:
		s.span.SetAttributes(attribute.Int(key, v))
	case int64:
		s.span.SetAttributes(attribute.Int64(key, v))
	case float64:
		s.span.SetAttributes(attribute.Float64(key, v))
	case bool:
		s.span.SetAttributes(attribute.Bool(key, v))
	default:
		s.span.SetAttributes(attribute.String(key, fmt.Sprintf("%v", v)))
	}
}

func (s *otelSpan) RecordError(err error) {
	if err != nil {
		s.span.RecordError(err)
	}
}

// StartSpan starts a span on the process tracer provider. Without an
// installed SDK this resolves to the otel noop tracer, so callers can
// use it unconditionally.
func StartSpan(ctx context.Context, name string) (context.Context, Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, name)
	return ctx, &otelSpan{span: span}
}
