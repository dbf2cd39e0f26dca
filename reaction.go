package regelum

import "github.com/OdinManiac/regelum/expr"

// ReactionID is an arena index into the frozen IR's reaction table.
type ReactionID int

// Reaction is the frozen record for one reaction (§3 Data Model).
type Reaction struct {
	ID    ReactionID
	Name  string
	Owner NodeID

	Reads  []expr.Ref
	Writes []expr.Ref

	// Outputs maps each written ref to the expression producing it. By
	// the time analysis passes run, delay lowering (§4.3) has already
	// rewritten any *expr.Delay subtree out of these expressions.
	Outputs map[expr.Ref]expr.Expr

	// RankExpr and MaxMicrosteps are required by the non-Zeno pass
	// (§4.6) whenever Reads and Writes intersect on the same signal
	// without an intervening delay.
	RankExpr      expr.Expr
	MaxMicrosteps int

	Contract ContractFlags
}
