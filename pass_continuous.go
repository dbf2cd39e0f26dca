package regelum

import (
	"fmt"

	"github.com/OdinManiac/regelum/diag"
	"github.com/OdinManiac/regelum/expr"
)

// ContinuousPass checks the wrapper contract every ContinuousWrapper
// node must satisfy (§4.9): it must expose four named ports — an input
// "u", an output "state", an output "y", and an input "dt" — all typed
// Float, with "dt" carrying a positive Default so the integrator has a
// step size to seed before its first step. The wrapper is opaque to
// causality: its outputs depend on previous state plus u, never on u
// instantaneously, so these reactions never need to join a cycle.
func ContinuousPass(ir *IR, report *diag.Report) {
	for _, n := range ir.Nodes {
		if n.Kind != ContinuousWrapper {
			continue
		}
		u := findPort(ir, n, "u", Input)
		state := findPort(ir, n, "state", Output)
		y := findPort(ir, n, "y", Output)
		dt := findPort(ir, n, "dt", Input)

		if u == nil || state == nil || y == nil || dt == nil {
			report.AddDiag(diag.Diagnostic{
				Code: diag.ContinuousMissingPort, Severity: diag.Error,
				Message:  fmt.Sprintf("ContinuousWrapper node %q is missing one of the required ports u/state/y/dt", n.Name),
				NodeName: n.Name,
				FixHint:  `declare Input ports "u" and "dt", and Output ports "state" and "y"`,
			})
			continue
		}
		for _, p := range []*Port{u, state, y, dt} {
			if p.Type != expr.Float {
				report.AddDiag(diag.Diagnostic{
					Code: diag.ContinuousBadType, Severity: diag.Error,
					Message:  fmt.Sprintf("ContinuousWrapper node %q's port %q must be Float", n.Name, p.Name),
					NodeName: n.Name,
					FixHint:  "declare u, state, y and dt as expr.Float",
				})
			}
		}
		if !dt.HasDefault() || dt.Default.AsFloat() <= 0 {
			report.AddDiag(diag.Diagnostic{
				Code: diag.ContinuousMissingDefault, Severity: diag.Error,
				Message:  fmt.Sprintf("ContinuousWrapper node %q's dt has no positive Default step size", n.Name),
				NodeName: n.Name,
				FixHint:  "give dt a positive Default matching the integrator's step size",
			})
		}
	}
}

func findPort(ir *IR, n *Node, name string, dir PortDirection) *Port {
	for _, pid := range n.Ports {
		p := ir.Port(pid)
		if p != nil && p.Name == name && p.Direction == dir {
			return p
		}
	}
	return nil
}
