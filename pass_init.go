package regelum

import (
	"fmt"

	"github.com/OdinManiac/regelum/diag"
	"github.com/OdinManiac/regelum/expr"
)

// InitPass checks initialization soundness (§4.7). Its findings are
// Warning severity by base rule, except strict mode — which, per
// diag.ResolveSeverity, promotes all three of these codes to Error; in
// best_effort and pragmatic they surface only as information/warnings,
// reflecting that an author may have external knowledge (a host-supplied
// seed) the static pass cannot see.
func InitPass(ir *IR, causality *CausalityResult, report *diag.Report) {
	writerCount := make(map[VarID]int)
	readerCount := make(map[VarID]int)
	isVarRef := func(ref expr.Ref) bool {
		return ref.Kind == expr.RefVariable || ref.Kind == expr.RefState
	}
	for _, r := range ir.Reactions {
		for ref := range r.Outputs {
			if isVarRef(ref) {
				writerCount[VarID(ref.ID)]++
			}
		}
		for _, ref := range r.Reads {
			if isVarRef(ref) {
				readerCount[VarID(ref.ID)]++
			}
		}
	}

	for _, v := range ir.Vars {
		if v.Initial != nil || v.IsHiddenDelayState {
			continue
		}
		if writerCount[v.ID] == 0 {
			report.AddDiag(diag.Diagnostic{
				Code: diag.InitMissingVariable, Severity: diag.Warning,
				Message:      fmt.Sprintf("variable %q has no Initial value and is never written", v.Name),
				VariableName: v.Name,
				FixHint:      "supply an Initial value, or confirm the host always seeds this variable before tick 0",
			})
			continue
		}
		if readerCount[v.ID] > 0 {
			report.AddDiag(diag.Diagnostic{
				Code: diag.InitNoHappensBefore, Severity: diag.Warning,
				Message:      fmt.Sprintf("variable %q has readers and writers but no Initial value to seed the first read", v.Name),
				VariableName: v.Name,
				FixHint:      "supply an Initial value so the first tick's read sees a defined value rather than relying on write order",
			})
		}
	}
}
