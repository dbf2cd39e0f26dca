// Package diag provides the compiler's diagnostics sink: stable error
// codes, mode-dependent severity, and aggregated reporting. It mirrors
// the teacher's observability shape (a pluggable sink with null/buffered/
// tracing backends) rather than using exceptions, so a single compile run
// can surface every problem at once (§4.11, §7).
package diag

import "context"

// Severity classifies a Diagnostic. Severity is mode-dependent: the same
// Code can be a Warning in best_effort and an Error in strict (§4.11).
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Diagnostic is one reported problem, with enough structure for a
// surface layer to render "declare monotone policy", "insert Delay",
// "provide init" style suggestions (§7, §C.2 supplement).
type Diagnostic struct {
	Code     Code
	Severity Severity
	Message  string

	// Offending identifiers, populated as applicable; empty string means
	// "not applicable to this diagnostic".
	NodeName     string
	ReactionName string
	VariableName string

	// FixHint is an optional, structured suggestion for resolving the
	// diagnostic (§C.2: promoted from an embedded message fragment to a
	// first-class field).
	FixHint string
}

// Sink receives diagnostics from analysis passes and the runtime. The
// three backends below (Null/Buffered/OTel) mirror the teacher's
// Emitter shape (Emit/EmitBatch/Flush) exactly.
type Sink interface {
	Emit(d Diagnostic)
	EmitBatch(ds []Diagnostic)
	Flush(ctx context.Context) error
}

// NullSink discards every diagnostic. Useful when only Report.HasErrors
// matters and the individual diagnostics are not needed.
type NullSink struct{}

func NewNullSink() *NullSink { return &NullSink{} }

func (*NullSink) Emit(Diagnostic)                 {}
func (*NullSink) EmitBatch([]Diagnostic)          {}
func (*NullSink) Flush(context.Context) error     { return nil }

// BufferedSink stores every diagnostic in memory, in emission order.
type BufferedSink struct {
	diagnostics []Diagnostic
}

func NewBufferedSink() *BufferedSink { return &BufferedSink{} }

func (b *BufferedSink) Emit(d Diagnostic) {
	b.diagnostics = append(b.diagnostics, d)
}

func (b *BufferedSink) EmitBatch(ds []Diagnostic) {
	b.diagnostics = append(b.diagnostics, ds...)
}

func (b *BufferedSink) Flush(context.Context) error { return nil }

// Diagnostics returns a copy of every diagnostic emitted so far.
func (b *BufferedSink) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(b.diagnostics))
	copy(out, b.diagnostics)
	return out
}
