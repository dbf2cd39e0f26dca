package regelum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OdinManiac/regelum/diag"
	"github.com/OdinManiac/regelum/expr"
)

func TestCausalityPass_RawNodeInCycleRejected(t *testing.T) {
	b := NewBuilder()
	x, err := b.DeclareVariable("x", expr.Int, nil, MonoidPolicy(SumMonoid(expr.Int, 0)))
	require.NoError(t, err)
	y, err := b.DeclareVariable("y", expr.Int, nil, MonoidPolicy(SumMonoid(expr.Int, 0)))
	require.NoError(t, err)

	rank := expr.NewConst(expr.IntValue(0))
	p := b.NewNode("p", Raw, ContractFlags{UnsafeReason: "legacy FFI"})
	pOut := mustBinary(t, expr.OpAdd, expr.NewReference(x, expr.Int), expr.NewConst(expr.IntValue(1)))
	p.AddReaction("p", []expr.Ref{x}, []expr.Ref{y}, map[expr.Ref]expr.Expr{y: pOut}, rank, 4, nil)
	_, err = p.Build()
	require.NoError(t, err)

	q := b.NewNode("q", Core, ContractFlags{})
	qOut := mustBinary(t, expr.OpAdd, expr.NewReference(y, expr.Int), expr.NewConst(expr.IntValue(1)))
	q.AddReaction("q", []expr.Ref{y}, []expr.Ref{x}, map[expr.Ref]expr.Expr{x: qOut}, rank, 4, nil)
	_, err = q.Build()
	require.NoError(t, err)

	ir, err := b.Freeze()
	require.NoError(t, err)

	report := diag.NewReport(Pragmatic, nil)
	CausalityPass(ir, report)
	assert.NotEmpty(t, report.ByCode(diag.CausNonCoreInCycle))
}

func TestCausalityPass_ExtNodeRequiresMonotoneContract(t *testing.T) {
	b := NewBuilder()
	x, err := b.DeclareVariable("x", expr.Int, nil, MonoidPolicy(SumMonoid(expr.Int, 0)))
	require.NoError(t, err)
	y, err := b.DeclareVariable("y", expr.Int, nil, MonoidPolicy(SumMonoid(expr.Int, 0)))
	require.NoError(t, err)

	rank := expr.NewConst(expr.IntValue(0))
	p := b.NewNode("p", Ext, ContractFlags{})
	pOut := mustBinary(t, expr.OpAdd, expr.NewReference(x, expr.Int), expr.NewConst(expr.IntValue(1)))
	p.AddReaction("p", []expr.Ref{x}, []expr.Ref{y}, map[expr.Ref]expr.Expr{y: pOut}, rank, 4, nil)
	_, err = p.Build()
	require.NoError(t, err)

	q := b.NewNode("q", Core, ContractFlags{})
	qOut := mustBinary(t, expr.OpAdd, expr.NewReference(y, expr.Int), expr.NewConst(expr.IntValue(1)))
	q.AddReaction("q", []expr.Ref{y}, []expr.Ref{x}, map[expr.Ref]expr.Expr{x: qOut}, rank, 4, nil)
	_, err = q.Build()
	require.NoError(t, err)

	ir, err := b.Freeze()
	require.NoError(t, err)

	report := diag.NewReport(Pragmatic, nil)
	CausalityPass(ir, report)
	assert.NotEmpty(t, report.ByCode(diag.CausExtNotMonotone))
}

func TestCausalityPass_NoInstantLoopSuppressesSelfLoop(t *testing.T) {
	b := NewBuilder()
	x, err := b.DeclareVariable("x", expr.Int, nil, MonoidPolicy(SumMonoid(expr.Int, 0)))
	require.NoError(t, err)

	n := b.NewNode("loop", Core, ContractFlags{})
	selfRef := mustBinary(t, expr.OpAdd, expr.NewReference(x, expr.Int), expr.NewConst(expr.IntValue(1)))
	n.AddReaction("increment", []expr.Ref{x}, []expr.Ref{x},
		map[expr.Ref]expr.Expr{x: selfRef}, nil, 0,
		&ContractFlags{NoInstantLoop: true})
	_, err = n.Build()
	require.NoError(t, err)

	ir, err := b.Freeze()
	require.NoError(t, err)

	causality := CausalityPass(ir, diag.NewReport(Pragmatic, nil))
	assert.Empty(t, causality.Cycles)
}
