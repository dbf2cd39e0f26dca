package diag

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTelSink emits each Diagnostic as its own span, named after the
// diagnostic's code and ended immediately, mirroring the teacher's
// emit.OTelEmitter (one span per emitted event, attributes for every
// structured field, error status on severity Error).
type OTelSink struct {
	tracer trace.Tracer
}

// NewOTelSink builds an OTelSink from a tracer, e.g. otel.Tracer("regelum").
func NewOTelSink(tracer trace.Tracer) *OTelSink {
	return &OTelSink{tracer: tracer}
}

func (o *OTelSink) Emit(d Diagnostic) {
	_, span := o.tracer.Start(context.Background(), string(d.Code))
	defer span.End()
	span.SetAttributes(
		attribute.String("diag.code", string(d.Code)),
		attribute.String("diag.severity", d.Severity.String()),
		attribute.String("diag.message", d.Message),
		attribute.String("diag.node", d.NodeName),
		attribute.String("diag.reaction", d.ReactionName),
		attribute.String("diag.variable", d.VariableName),
		attribute.String("diag.fix_hint", d.FixHint),
	)
	if d.Severity == Error {
		span.SetStatus(codes.Error, d.Message)
	}
}

func (o *OTelSink) EmitBatch(ds []Diagnostic) {
	for _, d := range ds {
		o.Emit(d)
	}
}

func (o *OTelSink) Flush(context.Context) error { return nil }
