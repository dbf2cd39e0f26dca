package regelum

import "github.com/OdinManiac/regelum/diag"

// CompiledPipeline is the output of a successful Compile: the frozen IR,
// plus the causality analysis the scheduler needs to run the microstep
// loop, plus every delay binding the scheduler must apply post-commit.
type CompiledPipeline struct {
	IR        *IR
	Causality *CausalityResult
	Delays    []DelayBinding
	Report    *diag.Report
}

// Compile runs the full, fixed-order analysis pipeline over a frozen IR
// (§4 Analysis & Passes, §6 compile(mode)): delay lowering, then the seven
// static passes, collecting every diagnostic into one Report. It returns
// *PipelineError if the report contains any Error-severity diagnostic;
// the caller can still inspect err.(*PipelineError).Report for every
// diagnostic produced, not just the first.
func Compile(b *Builder, mode Mode, downstream diag.Sink) (*CompiledPipeline, error) {
	ir, err := b.Freeze()
	if err != nil {
		return nil, err
	}

	report := diag.NewReport(mode, downstream)

	delays, err := LowerDelays(ir)
	if err != nil {
		return nil, err
	}

	StructuralPass(ir, report)
	WriteConflictPass(ir, report)
	causality := CausalityPass(ir, report)
	NonZenoPass(ir, causality, report)
	InitPass(ir, causality, report)
	SDFPass(ir, report)
	ContinuousPass(ir, report)

	if report.HasErrors() {
		return nil, &PipelineError{Report: report}
	}
	return &CompiledPipeline{IR: ir, Causality: causality, Delays: delays, Report: report}, nil
}
