package regelum

import (
	"fmt"

	"github.com/OdinManiac/regelum/diag"
	"github.com/OdinManiac/regelum/expr"
)

// StructuralPass checks every Input port is satisfied (connected or
// defaulted) and that no Input has more than one driving Edge (§4.4). It
// also flags implicit int->float widening inside reaction expressions
// (TYPE001) and hidden delay state missing a default (INIT002) — both
// are cheap, purely structural observations that don't need the
// causality graph.
func StructuralPass(ir *IR, report *diag.Report) {
	fanin := make(map[PortID]int, len(ir.Ports))
	for _, e := range ir.Edges {
		fanin[e.To]++
	}

	for _, p := range ir.Ports {
		if p.Direction != Input {
			continue
		}
		count := fanin[p.ID]
		if count > 1 {
			owner := ir.Node(p.Owner)
			report.Add(diag.StructFanInViolation, diag.Error,
				fmt.Sprintf("input port %q on node %q has %d driving edges, want at most 1", p.Name, nodeName(owner), count))
			continue
		}
		if count == 1 || p.HasDefault() {
			continue
		}
		owner := ir.Node(p.Owner)
		report.AddDiag(diag.Diagnostic{
			Code:     diag.StructUnconnectedInput,
			Severity: diag.Error,
			Message:  fmt.Sprintf("input port %q on node %q is unconnected and undefaulted", p.Name, nodeName(owner)),
			NodeName: nodeName(owner),
			FixHint:  "connect this input with Builder.Connect or give its PortDescriptor a Default",
		})
	}

	for _, r := range ir.Reactions {
		for _, out := range r.Outputs {
			expr.Walk(out, func(e expr.Expr) {
				if b, ok := e.(*expr.Binary); ok {
					checkWidening(report, ir, r, b.X, b.Y)
				}
				if c, ok := e.(*expr.Compare); ok {
					checkWidening(report, ir, r, c.X, c.Y)
				}
			})
		}
	}

	for _, v := range ir.Vars {
		if v.IsHiddenDelayState && v.Initial == nil {
			report.AddDiag(diag.Diagnostic{
				Code:         diag.InitMissingDelayDefault,
				Severity:     diag.Error,
				Message:      fmt.Sprintf("delay state %q has no default value", v.Name),
				VariableName: v.Name,
				FixHint:      "every Delay(inner, default) must supply a concrete default",
			})
		}
	}
}

func checkWidening(report *diag.Report, ir *IR, r *Reaction, x, y expr.Expr) {
	if x.Type() != y.Type() && (x.Type() == expr.Int || y.Type() == expr.Int) {
		report.AddDiag(diag.Diagnostic{
			Code:         diag.TypeWidening,
			Severity:     diag.Warning,
			Message:      fmt.Sprintf("reaction %q widens int to float", r.Name),
			ReactionName: r.Name,
		})
	}
}

func nodeName(n *Node) string {
	if n == nil {
		return "<unknown>"
	}
	return n.Name
}
