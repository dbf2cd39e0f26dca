package diag

// Mode selects how analysis passes resolve mode-dependent severities
// (§6 compile(mode), §4.11).
type Mode int

const (
	BestEffort Mode = iota
	Pragmatic
	Strict
)

func (m Mode) String() string {
	switch m {
	case BestEffort:
		return "best_effort"
	case Pragmatic:
		return "pragmatic"
	case Strict:
		return "strict"
	default:
		return "unknown"
	}
}

// ResolveSeverity adjusts a diagnostic's base severity for mode, per
// §4.11: "best_effort demotes most warnings, strict promotes LWW
// conflicts and missing inits to errors."
func ResolveSeverity(code Code, base Severity, mode Mode) Severity {
	switch mode {
	case BestEffort:
		if base == Warning {
			return Info
		}
		return base
	case Strict:
		switch code {
		case WriteLWWAmbiguous, InitMissingVariable, InitMissingDelayDefault, InitNoHappensBefore:
			if base != Error {
				return Error
			}
		}
		return base
	default: // Pragmatic: passes' own base severities stand.
		return base
	}
}

// Report aggregates every diagnostic from one Compile run (§4.11, §7).
// Passes append through Add/AddDiag (below); Report is the compile-time
// accumulator, not itself a Sink, and forwards every recorded diagnostic
// to an optional downstream Sink (e.g. OTelSink).
type Report struct {
	Mode        Mode
	downstream  Sink
	diagnostics []Diagnostic
}

// NewReport builds a Report for the given mode. downstream may be nil.
func NewReport(mode Mode, downstream Sink) *Report {
	return &Report{Mode: mode, downstream: downstream}
}

// Add resolves base's mode-dependent severity and records the resulting
// Diagnostic, forwarding it to the downstream sink if one was supplied.
func (r *Report) Add(code Code, base Severity, message string) *Diagnostic {
	return r.AddDiag(Diagnostic{Code: code, Severity: base, Message: message})
}

// AddDiag is Add's fully-structured form: d's Severity field is treated
// as the pass's base severity and is rewritten in place by
// ResolveSeverity before the diagnostic is recorded.
func (r *Report) AddDiag(d Diagnostic) *Diagnostic {
	d.Severity = ResolveSeverity(d.Code, d.Severity, r.Mode)
	r.diagnostics = append(r.diagnostics, d)
	if r.downstream != nil {
		r.downstream.Emit(d)
	}
	return &r.diagnostics[len(r.diagnostics)-1]
}

// Diagnostics returns every diagnostic recorded so far, in pass order.
func (r *Report) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(r.diagnostics))
	copy(out, r.diagnostics)
	return out
}

// HasErrors reports whether any recorded diagnostic has Severity == Error.
func (r *Report) HasErrors() bool {
	for _, d := range r.diagnostics {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// ByCode filters the report's diagnostics to a single code, useful for
// tests asserting a specific pass fired.
func (r *Report) ByCode(code Code) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.diagnostics {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}
