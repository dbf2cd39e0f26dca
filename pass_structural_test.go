package regelum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OdinManiac/regelum/diag"
	"github.com/OdinManiac/regelum/expr"
)

func TestStructuralPass_UnconnectedUndefaultedInput(t *testing.T) {
	b := NewBuilder()
	n := b.NewNode("sink", Core, ContractFlags{})
	n.AddPort("in", Input, expr.Int, nil, -1)
	_, err := n.Build()
	require.NoError(t, err)

	ir, err := b.Freeze()
	require.NoError(t, err)

	report := diag.NewReport(Pragmatic, nil)
	StructuralPass(ir, report)
	assert.NotEmpty(t, report.ByCode(diag.StructUnconnectedInput))
}

func TestStructuralPass_DefaultedInputSatisfied(t *testing.T) {
	b := NewBuilder()
	def := expr.IntValue(0)
	n := b.NewNode("sink", Core, ContractFlags{})
	n.AddPort("in", Input, expr.Int, &def, -1)
	_, err := n.Build()
	require.NoError(t, err)

	ir, err := b.Freeze()
	require.NoError(t, err)

	report := diag.NewReport(Pragmatic, nil)
	StructuralPass(ir, report)
	assert.Empty(t, report.ByCode(diag.StructUnconnectedInput))
}

func TestStructuralPass_FanInViolationReported(t *testing.T) {
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

	// Bypass Connect's own fan-in guard by appending a second edge
	// directly, exercising StructuralPass's independent re-derivation of
	// the same invariant over the frozen IR.
	ir, err := b.Freeze()
	require.NoError(t, err)
	ir.Edges = append(ir.Edges, Edge{From: PortID(cOut.ID), To: PortID(sinkIn.ID)})

	report := diag.NewReport(Pragmatic, nil)
	StructuralPass(ir, report)
	assert.NotEmpty(t, report.ByCode(diag.StructFanInViolation))
}

func TestStructuralPass_IntFloatWideningWarns(t *testing.T) {
	b := NewBuilder()
	n := b.NewNode("mix", Core, ContractFlags{})
	outRef := n.AddPort("out", Output, expr.Float, nil, -1)
	widened := mustBinary(t, expr.OpAdd, expr.NewConst(expr.IntValue(1)), expr.NewConst(expr.FloatValue(2)))
	n.AddReaction("mix", nil, []expr.Ref{outRef}, map[expr.Ref]expr.Expr{outRef: widened}, nil, 0, nil)
	_, err := n.Build()
	require.NoError(t, err)

	ir, err := b.Freeze()
	require.NoError(t, err)

	report := diag.NewReport(Pragmatic, nil)
	StructuralPass(ir, report)
	assert.NotEmpty(t, report.ByCode(diag.TypeWidening))
}
