package regelum

import (
	"fmt"

	"github.com/OdinManiac/regelum/expr"
)

// Builder accumulates nodes, ports, variables, reactions and edges into a
// frozen IR (§4.1). Ports, node-local State, and reactions receive their
// final arena index the moment they are declared (via NodeBuilder),
// which is what lets a reaction's expression AST reference its own
// node's ports by resolved id instead of by name (§4.1: "references
// inside an AST carry a resolved (kind, id) not a name").
type Builder struct {
	nodes     []*Node
	nodeNames map[string]NodeID

	ports []*Port

	vars     []*Variable
	varNames map[string]VarID

	reactions []*Reaction

	edges  []Edge
	fanin  map[PortID]PortID // input PortID -> the output PortID already feeding it

	frozen bool
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		nodeNames: make(map[string]NodeID),
		varNames:  make(map[string]VarID),
		fanin:     make(map[PortID]PortID),
	}
}

func (b *Builder) allocPort(p *Port) PortID {
	id := PortID(len(b.ports))
	p.ID = id
	b.ports = append(b.ports, p)
	return id
}

func (b *Builder) allocVar(v *Variable) VarID {
	id := VarID(len(b.vars))
	v.ID = id
	b.vars = append(b.vars, v)
	return id
}

func (b *Builder) allocReaction(r *Reaction) ReactionID {
	id := ReactionID(len(b.reactions))
	r.ID = id
	b.reactions = append(b.reactions, r)
	return id
}

// DeclareVariable registers a pipeline-scoped shared Variable (§3) and
// returns a Ref usable from any node's reactions.
func (b *Builder) DeclareVariable(name string, t expr.ElementType, initial *expr.Value, policy WritePolicy) (expr.Ref, error) {
	if _, exists := b.varNames[name]; exists {
		return expr.Ref{}, fmt.Errorf("%w: variable %q", ErrDuplicateNode, name)
	}
	v := &Variable{Name: name, Type: t, Initial: initial, Policy: policy}
	id := b.allocVar(v)
	b.varNames[name] = id
	return expr.Ref{Kind: expr.RefVariable, ID: int(id)}, nil
}

// Variable looks up a Variable record by its resolved ref.
func (b *Builder) Variable(ref expr.Ref) *Variable {
	if int(ref.ID) < 0 || int(ref.ID) >= len(b.vars) {
		return nil
	}
	return b.vars[ref.ID]
}

// Port looks up a Port record by its resolved ref/id.
func (b *Builder) Port(id PortID) *Port {
	if int(id) < 0 || int(id) >= len(b.ports) {
		return nil
	}
	return b.ports[id]
}

// AddNode declares a node from a self-contained NodeDescriptor (§4.1
// Inputs) — the common case, where the author supplies ports and
// reactions as data rather than through the incremental NodeBuilder.
// Within a ReactionDescriptor's Outputs/RankExpr expressions, an
// expr.Ref{Kind: expr.RefPort} is interpreted as a LOCAL index into
// desc.Ports (its position in that slice), since the author cannot
// know this node's future global PortIDs while building the
// descriptor; AddNode rewrites every such reference to the real,
// arena-wide PortID as it registers the node. ReadRefs/WriteRefs and
// Outputs keys are resolved by name against this node's own ports
// first, then against pipeline-scoped variables declared earlier via
// DeclareVariable.
func (b *Builder) AddNode(desc NodeDescriptor) (NodeID, error) {
	if _, exists := b.nodeNames[desc.ID]; exists {
		return 0, fmt.Errorf("%w: node %q", ErrDuplicateNode, desc.ID)
	}

	localRefs := make(map[string]expr.Ref, len(desc.Ports))
	portIDs := make([]PortID, 0, len(desc.Ports))
	for _, pd := range desc.Ports {
		p := &Port{Name: pd.Name, Direction: pd.Direction, Type: pd.Type, Default: pd.Default, Rate: pd.Rate}
		id := b.allocPort(p)
		localRefs[pd.Name] = expr.Ref{Kind: expr.RefPort, ID: int(id)}
		portIDs = append(portIDs, id)
	}

	resolveName := func(name string) (expr.Ref, error) {
		if ref, ok := localRefs[name]; ok {
			return ref, nil
		}
		if vid, ok := b.varNames[name]; ok {
			return expr.Ref{Kind: expr.RefVariable, ID: int(vid)}, nil
		}
		return expr.Ref{}, fmt.Errorf("%w: %q", ErrUnknownPort, name)
	}

	translate := func(r expr.Ref) expr.Ref {
		if r.Kind == expr.RefPort && r.ID >= 0 && r.ID < len(portIDs) {
			return expr.Ref{Kind: expr.RefPort, ID: int(portIDs[r.ID])}
		}
		return r
	}

	reactions := make([]*Reaction, 0, len(desc.Reactions))
	for _, rd := range desc.Reactions {
		reads := make([]expr.Ref, 0, len(rd.ReadRefs))
		for _, name := range rd.ReadRefs {
			ref, err := resolveName(name)
			if err != nil {
				return 0, fmt.Errorf("regelum: reaction %q: %w", rd.Name, err)
			}
			reads = append(reads, ref)
		}
		writes := make([]expr.Ref, 0, len(rd.WriteRefs))
		for _, name := range rd.WriteRefs {
			ref, err := resolveName(name)
			if err != nil {
				return 0, fmt.Errorf("regelum: reaction %q: %w", rd.Name, err)
			}
			writes = append(writes, ref)
		}
		outputs := make(map[expr.Ref]expr.Expr, len(rd.Outputs))
		for name, e := range rd.Outputs {
			ref, err := resolveName(name)
			if err != nil {
				return 0, fmt.Errorf("regelum: reaction %q: %w", rd.Name, err)
			}
			rewriteRefs(e, translate)
			outputs[ref] = e
		}
		if rd.RankExpr != nil {
			rewriteRefs(rd.RankExpr, translate)
		}
		c := desc.Contract
		if rd.Contract != nil {
			c = *rd.Contract
		}
		r := &Reaction{
			Name:          rd.Name,
			Reads:         reads,
			Writes:        writes,
			Outputs:       outputs,
			RankExpr:      rd.RankExpr,
			MaxMicrosteps: rd.MaxMicrosteps,
			Contract:      c,
		}
		b.allocReaction(r)
		reactions = append(reactions, r)
	}

	n := &Node{Name: desc.ID, Kind: desc.Kind, Ports: portIDs, Contract: desc.Contract}
	id := NodeID(len(b.nodes))
	n.ID = id
	b.nodes = append(b.nodes, n)
	b.nodeNames[desc.ID] = id
	for _, pid := range portIDs {
		b.ports[pid].Owner = id
	}
	for _, r := range reactions {
		r.Owner = id
	}
	return id, nil
}

// rewriteRefs rewrites every Reference's Ref in place, in traversal order.
func rewriteRefs(e expr.Expr, translate func(expr.Ref) expr.Ref) {
	expr.Walk(e, func(x expr.Expr) {
		if ref, ok := x.(*expr.Reference); ok {
			ref.Ref = translate(ref.Ref)
		}
	})
}

// NodeBuilder declares one node's ports, node-local state, and reactions.
// Call Builder.NewNode to obtain one, then Build to register the finished
// node.
type NodeBuilder struct {
	b        *Builder
	name     string
	kind     NodeKind
	contract ContractFlags

	ports     []PortID
	states    []VarID
	reactions []ReactionID
	built     bool
}

// NewNode starts declaring a node. The returned NodeBuilder's AddPort,
// AddState and AddReaction calls allocate real arena ids immediately, so
// expression ASTs built alongside them can reference those ids right
// away — no forward name resolution is ever required.
func (b *Builder) NewNode(name string, kind NodeKind, contract ContractFlags) *NodeBuilder {
	return &NodeBuilder{b: b, name: name, kind: kind, contract: contract}
}

// AddPort declares one port on the node under construction and returns a
// Ref to it, immediately usable in this node's reaction expressions.
func (nb *NodeBuilder) AddPort(name string, dir PortDirection, t expr.ElementType, def *expr.Value, rate int) expr.Ref {
	p := &Port{Name: name, Direction: dir, Type: t, Default: def, Rate: rate}
	id := nb.b.allocPort(p)
	p.Owner = 0 // patched in Build once the NodeID is known
	nb.ports = append(nb.ports, id)
	return expr.Ref{Kind: expr.RefPort, ID: int(id)}
}

// AddState declares node-local State (§3: "a variable whose scope is a
// single node") and returns a Ref to it.
func (nb *NodeBuilder) AddState(name string, t expr.ElementType, initial *expr.Value, policy WritePolicy) expr.Ref {
	v := &Variable{Name: name, Type: t, Initial: initial, Policy: policy, IsNodeLocal: true}
	id := nb.b.allocVar(v)
	nb.states = append(nb.states, id)
	return expr.Ref{Kind: expr.RefState, ID: int(id)}
}

// AddReaction declares a reaction on the node under construction.
// contract may be nil to inherit the owning node's ContractFlags.
func (nb *NodeBuilder) AddReaction(
	name string,
	reads, writes []expr.Ref,
	outputs map[expr.Ref]expr.Expr,
	rank expr.Expr,
	maxMicrosteps int,
	contract *ContractFlags,
) ReactionID {
	c := nb.contract
	if contract != nil {
		c = *contract
	}
	r := &Reaction{
		Name:          name,
		Reads:         reads,
		Writes:        writes,
		Outputs:       outputs,
		RankExpr:      rank,
		MaxMicrosteps: maxMicrosteps,
		Contract:      c,
	}
	id := nb.b.allocReaction(r)
	nb.reactions = append(nb.reactions, id)
	return id
}

// Build finalizes the node: patches port/state ownership and registers
// the node in the builder's arena. Returns ErrDuplicateNode if the name
// collides with an already-built node.
func (nb *NodeBuilder) Build() (NodeID, error) {
	if nb.built {
		return 0, fmt.Errorf("regelum: node %q already built", nb.name)
	}
	if _, exists := nb.b.nodeNames[nb.name]; exists {
		return 0, fmt.Errorf("%w: node %q", ErrDuplicateNode, nb.name)
	}
	n := &Node{
		Name:     nb.name,
		Kind:     nb.kind,
		Ports:    nb.ports,
		States:   nb.states,
		Contract: nb.contract,
	}
	id := NodeID(len(nb.b.nodes))
	n.ID = id
	nb.b.nodes = append(nb.b.nodes, n)
	nb.b.nodeNames[nb.name] = id

	for _, pid := range nb.ports {
		nb.b.ports[pid].Owner = id
	}
	for _, vid := range nb.states {
		nb.b.vars[vid].Owner = id
	}
	for _, rid := range nb.reactions {
		nb.b.reactions[rid].Owner = id
	}

	nb.built = true
	return id, nil
}

// Connect creates an Edge from an Output port to an Input port (§4.1).
// Fan-in > 1 on an Input is rejected immediately (STRUCT002's runtime
// twin — the structural pass re-derives the same check over the frozen
// IR so it can be reported alongside every other diagnostic).
func (b *Builder) Connect(from, to expr.Ref) error {
	if from.Kind != expr.RefPort || to.Kind != expr.RefPort {
		return fmt.Errorf("%w: Connect requires two port refs", ErrUnknownPort)
	}
	fromID, toID := PortID(from.ID), PortID(to.ID)
	fp, tp := b.Port(fromID), b.Port(toID)
	if fp == nil || tp == nil {
		return ErrUnknownPort
	}
	if fp.Direction != Output || tp.Direction != Input {
		return fmt.Errorf("regelum: Connect requires (output, input), got (%s, %s)", fp.Direction, tp.Direction)
	}
	if existing, ok := b.fanin[toID]; ok && existing != fromID {
		return fmt.Errorf("%w: input %q already connected", ErrFanInViolation, tp.Name)
	}
	b.fanin[toID] = fromID
	b.edges = append(b.edges, Edge{From: fromID, To: toID})
	return nil
}

// Freeze produces the immutable IR. It performs the builder-time
// checks named in §4.1 Errors (duplicate identity is already rejected
// eagerly by NewNode/Build and DeclareVariable; Freeze validates that
// every reference an AST makes resolves within the arenas it was given).
func (b *Builder) Freeze() (*IR, error) {
	if b.frozen {
		return nil, fmt.Errorf("regelum: builder already frozen")
	}
	for _, r := range b.reactions {
		var badRef error
		walkOutputs(r, func(e expr.Expr) {
			if ref, ok := e.(*expr.Reference); ok {
				if !b.refResolves(ref.Ref) {
					badRef = fmt.Errorf("%w: reaction %q references %s %d", ErrUnknownPort, r.Name, ref.Ref.Kind, ref.Ref.ID)
				}
			}
		})
		if badRef != nil {
			return nil, badRef
		}
	}
	b.frozen = true
	return &IR{
		Nodes:     b.nodes,
		Ports:     b.ports,
		Vars:      b.vars,
		Reactions: b.reactions,
		Edges:     b.edges,
	}, nil
}

func (b *Builder) refResolves(ref expr.Ref) bool {
	switch ref.Kind {
	case expr.RefPort:
		return ref.ID >= 0 && ref.ID < len(b.ports)
	case expr.RefVariable, expr.RefState:
		return ref.ID >= 0 && ref.ID < len(b.vars)
	default:
		return false
	}
}

// walkOutputs visits every expression reachable from a reaction's
// outputs and rank expression.
func walkOutputs(r *Reaction, visit func(expr.Expr)) {
	for _, e := range r.Outputs {
		expr.Walk(e, visit)
	}
	if r.RankExpr != nil {
		expr.Walk(r.RankExpr, visit)
	}
}
