package regelum

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// startTickSpan opens a span for one scheduler tick, or returns a no-op
// span end if no tracer was configured.
func startTickSpan(tracer trace.Tracer, tag Tag) func() {
	if tracer == nil {
		return func() {}
	}
	_, span := tracer.Start(context.Background(), "regelum.tick")
	span.SetAttributes(attribute.Int64("regelum.tag.t", tag.T))
	return span.End
}

// startCycleSpan opens a span for one algebraic cycle's microstep loop.
func startCycleSpan(tracer trace.Tracer, members []ReactionID) func(iterations int, err error) {
	if tracer == nil {
		return func(int, error) {}
	}
	_, span := tracer.Start(context.Background(), "regelum.cycle")
	span.SetAttributes(attribute.Int("regelum.cycle.size", len(members)))
	return func(iterations int, err error) {
		span.SetAttributes(attribute.Int("regelum.cycle.iterations", iterations))
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}
}
