package regelum

import "github.com/OdinManiac/regelum/expr"

// NodeKind tags a node's execution discipline. Passes dispatch on this tag
// rather than on an inheritance hierarchy (§9 Design Notes).
type NodeKind int

const (
	// Core nodes are pure: deterministic, side-effect-free, and eligible
	// to participate in constructive algebraic cycles.
	Core NodeKind = iota
	// Ext nodes are sandboxed; they may join a cycle only if their
	// ContractFlags declare Monotone.
	Ext
	// Raw nodes are unrestricted and can never participate in an
	// algebraic cycle (§4.6, CAUS001).
	Raw
	// ContinuousWrapper nodes are opaque integration boundaries (§4.9).
	ContinuousWrapper
)

func (k NodeKind) String() string {
	switch k {
	case Core:
		return "Core"
	case Ext:
		return "Ext"
	case Raw:
		return "Raw"
	case ContinuousWrapper:
		return "ContinuousWrapper"
	default:
		return "Unknown"
	}
}

// ContractFlags are the declared guarantees a node (or a reaction
// inheriting from its owner) makes to the analyzer.
type ContractFlags struct {
	// Deterministic declares the node always produces the same outputs
	// given the same inputs.
	Deterministic bool
	// SideEffectFree declares the node performs no externally visible I/O.
	SideEffectFree bool
	// Monotone declares that, for every variable this node writes inside
	// an algebraic cycle, successive writes only move up the variable's
	// write-policy lattice. Required for an Ext node to join a cycle
	// (§4.6, CAUS002).
	Monotone bool
	// NoInstantLoop declares that a reaction's read of a signal it also
	// writes is not an instantaneous self-loop: the causality pass records
	// no self-loop for it. Dependency edges between this reaction and
	// other reactions are still built, so it can still join a
	// multi-reaction cycle.
	NoInstantLoop bool
	// UnsafeReason documents why a Raw node is unrestricted, surfaced in
	// diagnostics fix-hints; purely informational.
	UnsafeReason string
}

// PortDirection is Input or Output.
type PortDirection int

const (
	Input PortDirection = iota
	Output
)

func (d PortDirection) String() string {
	if d == Input {
		return "Input"
	}
	return "Output"
}

// PortDescriptor is the author-facing description of a port, consumed by
// the Builder (§4.1 Inputs). Rate is -1 for "unset" (event-driven); a
// positive Rate declares tokens-per-firing for the SDF pass (§4.8), which
// treats a Rate of 0 the same as -1.
type PortDescriptor struct {
	Name      string
	Direction PortDirection
	Type      expr.ElementType
	Default   *expr.Value
	Rate      int
}

// ReactionDescriptor is the author-facing description of a reaction.
// ReadRefs/WriteRefs name the ports/variables/state this reaction touches;
// Outputs maps a write name to the expression producing it. RankExpr and
// MaxMicrosteps are required for any reaction whose read/write sets
// intersect on the same signal without an intervening Delay (§4.6 ZEN001).
type ReactionDescriptor struct {
	Name          string
	ReadRefs      []string
	WriteRefs     []string
	Outputs       map[string]expr.Expr
	RankExpr      expr.Expr
	MaxMicrosteps int
	Contract      *ContractFlags // nil inherits the owning node's flags
}

// NodeDescriptor is the author-facing description of a node consumed by
// Builder.AddNode (§4.1 Inputs).
type NodeDescriptor struct {
	ID        string
	Kind      NodeKind
	Ports     []PortDescriptor
	Reactions []ReactionDescriptor
	Contract  ContractFlags
}

// NodeID is an arena index into the frozen IR's node table.
type NodeID int

// Node is the frozen, interned record for one node (§4.1 Outputs).
type Node struct {
	ID       NodeID
	Name     string
	Kind     NodeKind
	Ports    []PortID
	States   []VarID // hidden delay states and any node-local state live here
	Contract ContractFlags
}
