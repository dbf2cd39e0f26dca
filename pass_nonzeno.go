package regelum

import (
	"fmt"

	"github.com/OdinManiac/regelum/diag"
)

// NonZenoPass checks that every reaction participating in an algebraic
// cycle (as found by CausalityPass) declares a RankExpr and a positive
// MaxMicrosteps (§4.6's non-Zeno rank), since the scheduler's microstep
// loop uses these to bound its constructive fixed-point iteration and
// to raise ZenoRuntimeError instead of spinning forever.
func NonZenoPass(ir *IR, causality *CausalityResult, report *diag.Report) {
	for _, cyc := range causality.Cycles {
		for _, rid := range cyc {
			r := ir.Reaction(rid)
			if r.RankExpr == nil || r.MaxMicrosteps <= 0 {
				owner := ir.Node(r.Owner)
				report.AddDiag(diag.Diagnostic{
					Code: diag.ZenoMissingRank, Severity: diag.Error,
					Message:      fmt.Sprintf("reaction %q participates in a cycle without a rank expression or positive microstep budget", r.Name),
					NodeName:     nodeName(owner),
					ReactionName: r.Name,
					FixHint:      "set RankExpr and a positive MaxMicrosteps on every reaction inside this cycle",
				})
			}
		}
	}
}
