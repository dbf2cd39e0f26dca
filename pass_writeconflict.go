package regelum

import (
	"fmt"

	"github.com/OdinManiac/regelum/diag"
	"github.com/OdinManiac/regelum/expr"
)

// WriteConflictPass statically approximates, per Variable, how many
// distinct reactions can write it in a single tick and checks that
// count against the variable's WritePolicy (§4.5):
//
//   - ErrorPolicy: more than one statically-possible writer is WRITE001.
//   - lwwPolicy: more than one writer where two or more share no
//     declared relative priority is WRITE002 (ambiguous tiebreak).
//
// A monotone (monoid) policy accepts any writer count and is never
// flagged here.
func WriteConflictPass(ir *IR, report *diag.Report) {
	writers := make(map[VarID][]ReactionID)
	for _, r := range ir.Reactions {
		for ref := range r.Outputs {
			if ref.Kind == expr.RefVariable || ref.Kind == expr.RefState {
				vid := VarID(ref.ID)
				writers[vid] = append(writers[vid], r.ID)
			}
		}
	}

	for vid, rids := range writers {
		v := ir.Var(vid)
		if v == nil || len(rids) < 2 {
			continue
		}
		switch p := v.Policy.(type) {
		case errorPolicy:
			report.AddDiag(diag.Diagnostic{
				Code:         diag.WriteErrorPolicyConflict,
				Severity:     diag.Error,
				Message:      fmt.Sprintf("variable %q uses ErrorPolicy but has %d statically possible writers", v.Name, len(rids)),
				VariableName: v.Name,
				FixHint:      "switch to LWWPolicy with a declared priority, or MonoidPolicy",
			})
		case *lwwPolicy:
			if hasUndeclaredTie(p, rids) {
				report.AddDiag(diag.Diagnostic{
					Code:         diag.WriteLWWAmbiguous,
					Severity:     diag.Warning,
					Message:      fmt.Sprintf("variable %q has writers with no declared relative priority", v.Name),
					VariableName: v.Name,
					FixHint:      "list every writer in LWWPolicy's priority order",
				})
			}
		}
	}
}

func hasUndeclaredTie(p *lwwPolicy, rids []ReactionID) bool {
	undeclared := 0
	for _, rid := range rids {
		if _, known := p.priority[rid]; !known {
			undeclared++
		}
	}
	return undeclared > 1
}
