package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBinary_TypeMismatch(t *testing.T) {
	x := NewConst(IntValue(1))
	y := NewConst(BoolValue(true))
	_, err := NewBinary(OpAdd, x, y)
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestNewBinary_Widening(t *testing.T) {
	x := NewConst(IntValue(1))
	y := NewConst(FloatValue(2.5))
	b, err := NewBinary(OpAdd, x, y)
	require.NoError(t, err)
	assert.Equal(t, Float, b.Type())
}

func TestNewIf_RequiresBoolCond(t *testing.T) {
	cond := NewConst(IntValue(1))
	then := NewConst(IntValue(1))
	els := NewConst(IntValue(2))
	_, err := NewIf(cond, then, els)
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestNewIf_BranchesMustUnify(t *testing.T) {
	cond := NewConst(BoolValue(true))
	then := NewConst(IntValue(1))
	els := NewConst(StringValue("x"))
	_, err := NewIf(cond, then, els)
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestNewDelay_RequiresMatchingType(t *testing.T) {
	inner := NewConst(IntValue(1))
	_, err := NewDelay(inner, FloatValue(0))
	require.ErrorIs(t, err, ErrTypeMismatch)

	d, err := NewDelay(inner, IntValue(0))
	require.NoError(t, err)
	assert.Equal(t, Int, d.Type())
}

func TestRefs_CollectsAllReferences(t *testing.T) {
	a := NewReference(Ref{Kind: RefVariable, ID: 1}, Int)
	b := NewReference(Ref{Kind: RefPort, ID: 2}, Int)
	sum, err := NewBinary(OpAdd, a, b)
	require.NoError(t, err)

	refs := Refs(sum)
	require.Len(t, refs, 2)
	assert.Equal(t, Ref{Kind: RefVariable, ID: 1}, refs[0])
	assert.Equal(t, Ref{Kind: RefPort, ID: 2}, refs[1])
}
