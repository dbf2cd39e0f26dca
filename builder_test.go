package regelum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OdinManiac/regelum/expr"
)

func mustBinary(t *testing.T, op expr.BinOp, x, y expr.Expr) expr.Expr {
	t.Helper()
	e, err := expr.NewBinary(op, x, y)
	require.NoError(t, err)
	return e
}

// TestBuilder_SimpleChain covers the §8 "simple chain" scenario: a
// source node emits a constant on an Output port, wired by Connect into
// a sink node's Input, whose reaction doubles it.
func TestBuilder_SimpleChain(t *testing.T) {
	b := NewBuilder()

	src := b.NewNode("source", Core, ContractFlags{Deterministic: true, SideEffectFree: true})
	outRef := src.AddPort("out", Output, expr.Float, nil, -1)
	src.AddReaction("emit", nil, []expr.Ref{outRef},
		map[expr.Ref]expr.Expr{outRef: expr.NewConst(expr.FloatValue(2))}, nil, 0, nil)
	srcID, err := src.Build()
	require.NoError(t, err)

	sink := b.NewNode("sink", Core, ContractFlags{Deterministic: true, SideEffectFree: true})
	inRef := sink.AddPort("in", Input, expr.Float, nil, -1)
	sinkOutRef := sink.AddPort("result", Output, expr.Float, nil, -1)
	doubled := mustBinary(t, expr.OpMul, expr.NewReference(inRef, expr.Float), expr.NewConst(expr.FloatValue(2)))
	sink.AddReaction("double", []expr.Ref{inRef}, []expr.Ref{sinkOutRef},
		map[expr.Ref]expr.Expr{sinkOutRef: doubled}, nil, 0, nil)
	sinkID, err := sink.Build()
	require.NoError(t, err)

	require.NoError(t, b.Connect(outRef, inRef))

	ir, err := b.Freeze()
	require.NoError(t, err)
	assert.Len(t, ir.Nodes, 2)
	assert.Len(t, ir.Edges, 1)
	assert.Equal(t, srcID, ir.Nodes[0].ID)
	assert.Equal(t, sinkID, ir.Nodes[1].ID)
}

func TestBuilder_DuplicateNodeRejected(t *testing.T) {
	b := NewBuilder()
	_, err := b.NewNode("n", Core, ContractFlags{}).Build()
	require.NoError(t, err)
	_, err = b.NewNode("n", Core, ContractFlags{}).Build()
	assert.ErrorIs(t, err, ErrDuplicateNode)
}

func TestBuilder_DuplicateVariableRejected(t *testing.T) {
	b := NewBuilder()
	_, err := b.DeclareVariable("v", expr.Int, nil, ErrorPolicy())
	require.NoError(t, err)
	_, err = b.DeclareVariable("v", expr.Int, nil, ErrorPolicy())
	assert.ErrorIs(t, err, ErrDuplicateNode)
}

func TestBuilder_FanInViolation(t *testing.T) {
	b := NewBuilder()
	a := b.NewNode("a", Core, ContractFlags{})
	aOut := a.AddPort("out", Output, expr.Int, nil, -1)
	_, err := a.Build()
	require.NoError(t, err)

	c := b.NewNode("c", Core, ContractFlags{})
	cOut := c.AddPort("out", Output, expr.Int, nil, -1)
	_, err = c.Build()
	require.NoError(t, err)

	sink := b.NewNode("sink", Core, ContractFlags{})
	sinkIn := sink.AddPort("in", Input, expr.Int, nil, -1)
	_, err = sink.Build()
	require.NoError(t, err)

	require.NoError(t, b.Connect(aOut, sinkIn))
	err = b.Connect(cOut, sinkIn)
	assert.ErrorIs(t, err, ErrFanInViolation)
}

// TestBuilder_AddNodeDescriptor exercises the descriptor-based API,
// checking that a local (positional) port ref inside a Reaction's
// Outputs gets rewritten to the node's real, arena-wide PortID.
func TestBuilder_AddNodeDescriptor(t *testing.T) {
	b := NewBuilder()
	desc := NodeDescriptor{
		ID:   "doubler",
		Kind: Core,
		Ports: []PortDescriptor{
			{Name: "in", Direction: Input, Type: expr.Float, Rate: -1},
			{Name: "out", Direction: Output, Type: expr.Float, Rate: -1},
		},
		Reactions: []ReactionDescriptor{
			{
				Name:      "double",
				ReadRefs:  []string{"in"},
				WriteRefs: []string{"out"},
				Outputs: map[string]expr.Expr{
					"out": mustBinary(t, expr.OpMul,
						expr.NewReference(expr.Ref{Kind: expr.RefPort, ID: 0}, expr.Float),
						expr.NewConst(expr.FloatValue(2))),
				},
			},
		},
		Contract: ContractFlags{Deterministic: true, SideEffectFree: true},
	}
	id, err := b.AddNode(desc)
	require.NoError(t, err)

	ir, err := b.Freeze()
	require.NoError(t, err)

	node := ir.Node(id)
	require.NotNil(t, node)
	require.Len(t, node.Ports, 2)

	reactions := ir.ReactionsOf(id)
	require.Len(t, reactions, 1)

	outRef := expr.Ref{Kind: expr.RefPort, ID: int(node.Ports[1])}
	outExpr, ok := reactions[0].Outputs[outRef]
	require.True(t, ok)

	refs := expr.Refs(outExpr)
	assert.Contains(t, refs, expr.Ref{Kind: expr.RefPort, ID: int(node.Ports[0])})
}
