package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "taskscheduler"

// StartTaskSpan starts a span for a task store operation such as "task.create".
func StartTaskSpan(ctx context.Context, op, taskID string) (context.Context, trace.Span) {
	opts := []trace.SpanStartOption{trace.WithSpanKind(trace.SpanKindInternal)}
	if taskID != "" {
		opts = append(opts, trace.WithAttributes(attribute.String("task.id", taskID)))
	}
	return otel.Tracer(tracerName).Start(ctx, op, opts...)
}

// EndSpan records err on span (if any) and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
