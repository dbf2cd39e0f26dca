package regelum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OdinManiac/regelum/expr"
)

func TestLowerDelays_RewritesOutputAndAllocatesHiddenState(t *testing.T) {
	b := NewBuilder()
	n := b.NewNode("counter", Core, ContractFlags{Deterministic: true, SideEffectFree: true})
	outRef := n.AddPort("out", Output, expr.Int, nil, -1)

	delayed, err := expr.NewDelay(expr.NewReference(outRef, expr.Int), expr.IntValue(0))
	require.NoError(t, err)
	one := expr.NewConst(expr.IntValue(1))
	next := mustBinary(t, expr.OpAdd, delayed, one)

	n.AddReaction("tick", []expr.Ref{outRef}, []expr.Ref{outRef},
		map[expr.Ref]expr.Expr{outRef: next}, nil, 0, nil)
	_, err = n.Build()
	require.NoError(t, err)

	ir, err := b.Freeze()
	require.NoError(t, err)

	before := len(ir.Vars)
	bindings, err := LowerDelays(ir)
	require.NoError(t, err)
	require.Len(t, bindings, 1)
	assert.Len(t, ir.Vars, before+1)

	hidden := ir.Var(bindings[0].Hidden)
	require.NotNil(t, hidden)
	assert.True(t, hidden.IsHiddenDelayState)
	assert.Equal(t, expr.IntValue(0), *hidden.Initial)

	r := ir.Reaction(0)
	rewritten := r.Outputs[outRef]
	refs := expr.Refs(rewritten)
	assert.Contains(t, refs, expr.Ref{Kind: expr.RefState, ID: int(bindings[0].Hidden)})

	// No *expr.Delay should remain reachable from the rewritten output.
	expr.Walk(rewritten, func(e expr.Expr) {
		_, isDelay := e.(*expr.Delay)
		assert.False(t, isDelay)
	})
}

// TestScheduler_DelayedSelfLoopIncrementsEachTick runs the counter
// scenario (§8 "instant cycle with Delay") end to end through Compile and
// Scheduler: since the Delay reads the hidden state seeded at 0, the
// first tick's increment already commits 1, and each later tick
// increments the previous tick's committed value.
func TestScheduler_DelayedSelfLoopIncrementsEachTick(t *testing.T) {
	b := NewBuilder()
	counter := b.NewNode("counter", Core, ContractFlags{Deterministic: true, SideEffectFree: true})
	countOut := counter.AddPort("count", Output, expr.Int, nil, -1)
	delayed, err := expr.NewDelay(expr.NewReference(countOut, expr.Int), expr.IntValue(0))
	require.NoError(t, err)
	next := mustBinary(t, expr.OpAdd, delayed, expr.NewConst(expr.IntValue(1)))
	counter.AddReaction("increment", []expr.Ref{countOut}, []expr.Ref{countOut},
		map[expr.Ref]expr.Expr{countOut: next}, nil, 0, nil)
	_, err = counter.Build()
	require.NoError(t, err)

	compiled, err := Compile(b, Pragmatic, nil)
	require.NoError(t, err)

	sched, err := NewScheduler(compiled)
	require.NoError(t, err)

	snaps, err := sched.Run(3)
	require.NoError(t, err)
	require.Len(t, snaps, 3)
	assert.Equal(t, expr.IntValue(1), snaps[0].Values[countOut])
	assert.Equal(t, expr.IntValue(2), snaps[1].Values[countOut])
	assert.Equal(t, expr.IntValue(3), snaps[2].Values[countOut])
}
