package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEval_AbsencePropagation(t *testing.T) {
	x := NewReference(Ref{Kind: RefVariable, ID: 1}, Int)
	y := NewConst(IntValue(1))
	sum, err := NewBinary(OpAdd, x, y)
	require.NoError(t, err)

	env := MapEnv{} // x absent
	_, ok := Eval(sum, env)
	assert.False(t, ok, "any ABSENT operand must propagate to ABSENT")
}

func TestEval_SimpleChain(t *testing.T) {
	// x := 3; y := x + 1; z := y * 2
	xRef := Ref{Kind: RefVariable, ID: 0}
	x := NewConst(IntValue(3))
	xv, _ := Eval(x, MapEnv{})

	yExpr, err := NewBinary(OpAdd, NewReference(xRef, Int), NewConst(IntValue(1)))
	require.NoError(t, err)
	env := MapEnv{xRef: xv}
	yv, ok := Eval(yExpr, env)
	require.True(t, ok)
	assert.Equal(t, int64(4), yv.Int)

	yRef := Ref{Kind: RefVariable, ID: 1}
	zExpr, err := NewBinary(OpMul, NewReference(yRef, Int), NewConst(IntValue(2)))
	require.NoError(t, err)
	env[yRef] = yv
	zv, ok := Eval(zExpr, env)
	require.True(t, ok)
	assert.Equal(t, int64(8), zv.Int)
}

func TestEval_BuiltinAbsentHandling(t *testing.T) {
	coalesce := &BuiltinSpec{
		Name:          "coalesce",
		ArgTypes:      []ElementType{Int, Int},
		RetType:       Int,
		AbsentHandled: true,
		Concrete: func(args []Value) Value {
			if args[0].Type == Unknown {
				return args[1]
			}
			return args[0]
		},
	}
	call, err := NewBuiltin(coalesce, []Expr{
		NewReference(Ref{Kind: RefVariable, ID: 0}, Int),
		NewConst(IntValue(42)),
	})
	require.NoError(t, err)

	v, ok := Eval(call, MapEnv{})
	require.True(t, ok)
	assert.Equal(t, int64(42), v.Int)
}

func TestEval_IfShortCircuits(t *testing.T) {
	cond := NewConst(BoolValue(true))
	then := NewConst(IntValue(1))
	els := NewReference(Ref{Kind: RefVariable, ID: 9}, Int) // absent, must not be forced
	ifExpr, err := NewIf(cond, then, els)
	require.NoError(t, err)

	v, ok := Eval(ifExpr, MapEnv{})
	require.True(t, ok)
	assert.Equal(t, int64(1), v.Int)
}
