package regelum

import (
	"fmt"
	"sort"

	"github.com/OdinManiac/regelum/diag"
	"github.com/OdinManiac/regelum/expr"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// CausalityResult is the causality pass's output: every detected
// algebraic cycle, self-loop or multi-reaction SCC, consumed by the
// non-Zeno pass (§4.6) and the scheduler's microstep loop.
type CausalityResult struct {
	Cycles [][]ReactionID
}

// InCycle reports whether r participates in any detected cycle.
func (c *CausalityResult) InCycle(r ReactionID) bool {
	for _, cyc := range c.Cycles {
		for _, m := range cyc {
			if m == r {
				return true
			}
		}
	}
	return false
}

// CycleOf returns the cycle r belongs to, or nil if r is acyclic.
func (c *CausalityResult) CycleOf(r ReactionID) []ReactionID {
	for _, cyc := range c.Cycles {
		for _, m := range cyc {
			if m == r {
				return cyc
			}
		}
	}
	return nil
}

// CausalityPass builds the instantaneous reaction dependency graph —
// writer reaction to reader reaction, following Edges through ports and
// direct Refs through variables/state — and finds its strongly
// connected components with Tarjan's algorithm (gonum's graph/topo,
// the same routine the pack's standalone graph-analysis reference
// reaches for). Every non-trivial component is an algebraic cycle
// (§4.6) and is checked for admissibility:
//
//	CAUS001 - a Raw node's reaction may never join a cycle.
//	CAUS002 - an Ext node's reaction may join only with a Monotone contract.
//	CAUS003 - every variable written inside the cycle must have a
//	          monotone WritePolicy, or the cycle is non-constructive.
//	CAUS004 - a ContinuousWrapper reaction can never join a cycle.
func CausalityPass(ir *IR, report *diag.Report) *CausalityResult {
	g := simple.NewDirectedGraph()
	for _, r := range ir.Reactions {
		g.AddNode(simple.Node(int64(r.ID)))
	}

	writers := refWriters(ir)
	selfLoop := make(map[ReactionID]bool)

	for _, r := range ir.Reactions {
		sources := map[ReactionID]bool{}
		for _, ref := range effectiveReads(r) {
			for _, w := range resolveWriters(ir, writers, ref) {
				if w == r.ID {
					if !r.Contract.NoInstantLoop {
						selfLoop[r.ID] = true
					}
					continue
				}
				sources[w] = true
			}
		}
		for src := range sources {
			if !g.HasEdgeFromTo(int64(src), int64(r.ID)) {
				g.SetEdge(simple.Edge{F: simple.Node(int64(src)), T: simple.Node(int64(r.ID))})
			}
		}
	}

	var cycles [][]ReactionID
	for _, scc := range topo.TarjanSCC(g) {
		if len(scc) <= 1 {
			continue
		}
		members := make([]ReactionID, 0, len(scc))
		for _, n := range scc {
			members = append(members, ReactionID(n.ID()))
		}
		sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
		cycles = append(cycles, members)
		checkCycleAdmissibility(ir, report, members)
	}

	selfMembers := make([]ReactionID, 0, len(selfLoop))
	for r := range selfLoop {
		selfMembers = append(selfMembers, r)
	}
	sort.Slice(selfMembers, func(i, j int) bool { return selfMembers[i] < selfMembers[j] })
	for _, r := range selfMembers {
		members := []ReactionID{r}
		cycles = append(cycles, members)
		checkCycleAdmissibility(ir, report, members)
	}

	return &CausalityResult{Cycles: cycles}
}

// effectiveReads returns the refs a reaction actually evaluates
// synchronously this tick: every Reference reachable from its (already
// delay-lowered) Outputs and RankExpr. r.Reads is the author-declared
// dependency set and still includes refs reached only through a Delay —
// LowerDelays rewrites the Outputs/RankExpr occurrence to a hidden-state
// Reference but leaves Reads untouched, since InitPass still needs to
// know the original signal is read. Causality must use the lowered form,
// or a Delay never breaks the instantaneous self-loop it exists to break.
func effectiveReads(r *Reaction) []expr.Ref {
	var out []expr.Ref
	for _, e := range r.Outputs {
		out = append(out, expr.Refs(e)...)
	}
	if r.RankExpr != nil {
		out = append(out, expr.Refs(r.RankExpr)...)
	}
	return out
}

// refWriters indexes every reaction that writes each Ref, across ports,
// variables and state alike.
func refWriters(ir *IR) map[expr.Ref][]ReactionID {
	out := make(map[expr.Ref][]ReactionID)
	for _, r := range ir.Reactions {
		for ref := range r.Outputs {
			out[ref] = append(out[ref], r.ID)
		}
	}
	return out
}

// resolveWriters resolves a reaction's Read ref to the set of reactions
// that can instantaneously produce it this tick: direct writers of the
// same ref, or — if ref is an Input port — the writers of whatever
// Output port feeds it through an Edge.
func resolveWriters(ir *IR, writers map[expr.Ref][]ReactionID, ref expr.Ref) []ReactionID {
	if ref.Kind == expr.RefPort {
		port := ir.Port(PortID(ref.ID))
		if port != nil && port.Direction == Input {
			var out []ReactionID
			for _, e := range ir.InEdges(port.ID) {
				fromRef := expr.Ref{Kind: expr.RefPort, ID: int(e.From)}
				out = append(out, writers[fromRef]...)
			}
			return out
		}
	}
	return writers[ref]
}

func checkCycleAdmissibility(ir *IR, report *diag.Report, members []ReactionID) {
	allMonotoneVars := true
	for _, rid := range members {
		r := ir.Reaction(rid)
		owner := ir.Node(r.Owner)
		switch owner.Kind {
		case Raw:
			report.AddDiag(diag.Diagnostic{
				Code: diag.CausNonCoreInCycle, Severity: diag.Error,
				Message:      fmt.Sprintf("reaction %q on Raw node %q participates in an algebraic cycle", r.Name, owner.Name),
				NodeName:     owner.Name,
				ReactionName: r.Name,
				FixHint:      "Raw nodes can never join a cycle; break it with a Delay, or move this logic to a Core node",
			})
		case Ext:
			if !r.Contract.Monotone {
				report.AddDiag(diag.Diagnostic{
					Code: diag.CausExtNotMonotone, Severity: diag.Error,
					Message:      fmt.Sprintf("reaction %q on Ext node %q joins a cycle without a Monotone contract", r.Name, owner.Name),
					NodeName:     owner.Name,
					ReactionName: r.Name,
					FixHint:      "declare ContractFlags.Monotone for this reaction, or break the cycle with a Delay",
				})
			}
		case ContinuousWrapper:
			report.AddDiag(diag.Diagnostic{
				Code: diag.CausNotEligible, Severity: diag.Error,
				Message:      fmt.Sprintf("reaction %q on ContinuousWrapper node %q cannot join an algebraic cycle", r.Name, owner.Name),
				NodeName:     owner.Name,
				ReactionName: r.Name,
				FixHint:      "ContinuousWrapper nodes are integration boundaries; route the feedback through a Delay",
			})
		}
		for ref := range r.Outputs {
			if ref.Kind == expr.RefVariable || ref.Kind == expr.RefState {
				v := ir.Var(VarID(ref.ID))
				if v != nil && !v.Policy.Monotone() {
					allMonotoneVars = false
				}
			}
		}
	}
	if !allMonotoneVars {
		report.AddDiag(diag.Diagnostic{
			Code: diag.CausNonConstructive, Severity: diag.Error,
			Message: fmt.Sprintf("cycle among reactions %v writes at least one non-monotone variable; no constructive fixed point is guaranteed", members),
			FixHint: "switch every variable written inside this cycle to a monotone (monoidal) write policy",
		})
	}
}
