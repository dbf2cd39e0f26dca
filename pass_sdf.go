package regelum

import (
	"fmt"
	"math/big"

	"github.com/OdinManiac/regelum/diag"
)

// SDFPass checks synchronous-dataflow rate consistency (§4.8) over the
// subgraph of ports that declare a positive Rate. A Rate of -1 means
// "unset" (event-driven); a caller-zeroed PortDescriptor also reports
// Rate 0, which carries the same "not SDF-governed" meaning — neither
// is a valid denominator for the balance equation, so both are treated
// as unset rather than fed to big.NewRat. It solves the classic SDF
// balance equation Γ·q = 0 by propagating a repetition vector q
// (firing count per node, as an exact rational) breadth-first across
// rate-declared edges: an edge from a producer firing p times at rate
// r_out to a consumer firing c times at rate r_in must satisfy
// p·r_out = c·r_in. Any edge whose two endpoints are forced to
// inconsistent repetition counts is SDF001.
func SDFPass(ir *IR, report *diag.Report) {
	q := make(map[NodeID]*big.Rat)

	assign := func(n NodeID, v *big.Rat) bool {
		if existing, ok := q[n]; ok {
			return existing.Cmp(v) == 0
		}
		q[n] = v
		return true
	}

	rateEdges := make([]Edge, 0, len(ir.Edges))
	for _, e := range ir.Edges {
		from, to := ir.Port(e.From), ir.Port(e.To)
		if from != nil && to != nil && from.Rate > 0 && to.Rate > 0 {
			rateEdges = append(rateEdges, e)
		}
	}
	if len(rateEdges) == 0 {
		return
	}

	visited := make(map[NodeID]bool)
	for _, seed := range rateEdges {
		seedNode := ir.Port(seed.From).Owner
		if visited[seedNode] {
			continue
		}
		assign(seedNode, big.NewRat(1, 1))
		frontier := []NodeID{seedNode}
		visited[seedNode] = true
		for len(frontier) > 0 {
			cur := frontier[0]
			frontier = frontier[1:]
			for _, e := range rateEdges {
				from, to := ir.Port(e.From), ir.Port(e.To)
				switch {
				case from.Owner == cur && !visited[to.Owner]:
					qc := new(big.Rat).Mul(q[cur], big.NewRat(int64(from.Rate), int64(to.Rate)))
					assign(to.Owner, qc)
					visited[to.Owner] = true
					frontier = append(frontier, to.Owner)
				case to.Owner == cur && !visited[from.Owner]:
					qp := new(big.Rat).Mul(q[cur], big.NewRat(int64(to.Rate), int64(from.Rate)))
					assign(from.Owner, qp)
					visited[from.Owner] = true
					frontier = append(frontier, from.Owner)
				}
			}
		}
	}

	for _, e := range rateEdges {
		from, to := ir.Port(e.From), ir.Port(e.To)
		qp, qc := q[from.Owner], q[to.Owner]
		if qp == nil || qc == nil {
			continue
		}
		lhs := new(big.Rat).Mul(qp, big.NewRat(int64(from.Rate), 1))
		rhs := new(big.Rat).Mul(qc, big.NewRat(int64(to.Rate), 1))
		if lhs.Cmp(rhs) != 0 {
			report.AddDiag(diag.Diagnostic{
				Code: diag.SDFInconsistent, Severity: diag.Error,
				Message: fmt.Sprintf("no consistent repetition vector balances %q (rate %d) against %q (rate %d)",
					from.Name, from.Rate, to.Name, to.Rate),
				NodeName: nodeName(ir.Node(from.Owner)),
				FixHint:  "adjust port Rate declarations so tokens produced per period equal tokens consumed",
			})
		}
	}
}
