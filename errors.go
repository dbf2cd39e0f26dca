package regelum

import (
	"errors"
	"fmt"

	"github.com/OdinManiac/regelum/diag"
)

// Mode selects how the analysis pipeline resolves mode-dependent
// severities (§6, §4.11).
type Mode = diag.Mode

const (
	BestEffort = diag.BestEffort
	Pragmatic  = diag.Pragmatic
	Strict     = diag.Strict
)

// Sentinel errors for builder-time failures (§4.1 Errors).
var (
	ErrDuplicateNode  = errors.New("regelum: duplicate node identity")
	ErrUnknownPort    = errors.New("regelum: unknown port reference")
	ErrUnknownNode    = errors.New("regelum: unknown node reference")
	ErrFanInViolation = errors.New("regelum: input port already connected")
	ErrTypeMismatch   = errors.New("regelum: type mismatch in construction")
)

// Sentinel errors backing ZenoRuntimeError and WritePolicyError's Unwrap,
// so callers can test the failure class with errors.Is without inspecting
// the structured fields (§A.2: "supporting errors.Is/errors.As via
// Unwrap, exactly as the teacher's EngineError.Unwrap() -> Cause does").
var (
	ErrZenoBudgetExceeded  = errors.New("regelum: SCC microstep budget exceeded")
	ErrWritePolicyConflict = errors.New("regelum: write policy saw an unresolvable set of intents")
)

// PipelineError is returned by Compile when the analysis pipeline
// produced at least one Error-severity diagnostic. It carries the full
// Report so callers can render every problem found, not just the first
// (§7: "the report lists all diagnostics with codes... and suggested
// fixes").
type PipelineError struct {
	Report *diag.Report
}

func (e *PipelineError) Error() string {
	errs := 0
	for _, d := range e.Report.Diagnostics() {
		if d.Severity == diag.Error {
			errs++
		}
	}
	return fmt.Sprintf("regelum: compile rejected with %d error diagnostic(s)", errs)
}

// ZenoRuntimeError is raised when an SCC's microstep loop exceeds its
// iteration budget without the intent set stabilizing (§4.10, §4.6
// "Non-Zeno rank"). It carries the offending SCC's member reactions so
// the surface layer can report which reactions never settled.
type ZenoRuntimeError struct {
	Tag        Tag
	SCCMembers []ReactionID
	Budget     int
}

func (e *ZenoRuntimeError) Error() string {
	return fmt.Sprintf("regelum: zeno runtime error at tag %s: %d reaction(s) did not stabilize within %d microstep(s)",
		e.Tag, len(e.SCCMembers), e.Budget)
}

// Unwrap lets callers write errors.Is(err, ErrZenoBudgetExceeded) instead
// of type-asserting *ZenoRuntimeError.
func (e *ZenoRuntimeError) Unwrap() error { return ErrZenoBudgetExceeded }

// WritePolicyError is raised when a variable's write policy rejects the
// set of intents produced in a tick — e.g. ErrorPolicy sees more than one
// concrete writer at runtime even though static analysis could not prove
// it (a guarded writer that happened to fire this tick alongside another).
type WritePolicyError struct {
	Variable VarID
	Policy   string
	Writers  int
}

func (e *WritePolicyError) Error() string {
	return fmt.Sprintf("regelum: write policy error: variable %d (%s) saw %d concrete writers in one tick",
		e.Variable, e.Policy, e.Writers)
}

// Unwrap lets callers write errors.Is(err, ErrWritePolicyConflict) instead
// of type-asserting *WritePolicyError.
func (e *WritePolicyError) Unwrap() error { return ErrWritePolicyConflict }
