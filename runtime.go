package regelum

import "github.com/OdinManiac/regelum/diag"

// Run is the top-level external entry point (§6): it freezes b,
// compiles the IR under mode with diagnostics forwarded to sink, and —
// if compilation produced no Error-severity diagnostic — returns a
// Scheduler ready to Step/Run. sink may be nil.
func Run(b *Builder, mode Mode, sink diag.Sink, opts ...Option) (*Scheduler, *diag.Report, error) {
	compiled, err := Compile(b, mode, sink)
	if err != nil {
		if pe, ok := err.(*PipelineError); ok {
			return nil, pe.Report, pe
		}
		return nil, nil, err
	}
	allOpts := append([]Option{WithMode(mode)}, opts...)
	sched, err := NewScheduler(compiled, allOpts...)
	if err != nil {
		return nil, compiled.Report, err
	}
	return sched, compiled.Report, nil
}
