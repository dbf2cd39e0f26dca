// Package expr implements the typed expression DSL used by reactions: a
// tagged-tree AST (constants, references, arithmetic, comparisons,
// conditionals, builtins, and the Delay form), plus a concrete evaluator
// and the three-valued evaluator used by causality analysis.
package expr

import "fmt"

// ElementType is the type assigned to every expression at construction time.
type ElementType int

const (
	Unknown ElementType = iota
	Int
	Float
	Bool
	String
)

func (t ElementType) String() string {
	switch t {
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case String:
		return "string"
	default:
		return "unknown"
	}
}

// widens reports whether a value of type `from` can be used where `to` is
// expected, and whether doing so is a lossless identity or a widening
// conversion (int -> float). Incompatible pairs return (false, false).
func widens(from, to ElementType) (ok bool, widening bool) {
	if from == to {
		return true, false
	}
	if from == Int && to == Float {
		return true, true
	}
	return false, false
}

// Value is a concrete element-type value. Exactly one of the typed fields
// is meaningful, selected by Type.
type Value struct {
	Type  ElementType
	Int   int64
	Float float64
	Bool  bool
	Str   string
}

func IntValue(v int64) Value    { return Value{Type: Int, Int: v} }
func FloatValue(v float64) Value { return Value{Type: Float, Float: v} }
func BoolValue(v bool) Value    { return Value{Type: Bool, Bool: v} }
func StringValue(v string) Value { return Value{Type: String, Str: v} }

// AsFloat returns the value widened to float64, regardless of its stored
// Type (Int values are widened; Bool, String and Unknown values all
// return 0).
func (v Value) AsFloat() float64 {
	switch v.Type {
	case Int:
		return float64(v.Int)
	case Float:
		return v.Float
	default:
		return 0
	}
}

func (v Value) String() string {
	switch v.Type {
	case Int:
		return fmt.Sprintf("%d", v.Int)
	case Float:
		return fmt.Sprintf("%g", v.Float)
	case Bool:
		return fmt.Sprintf("%t", v.Bool)
	case String:
		return v.Str
	default:
		return "<unknown>"
	}
}

// RefKind distinguishes the three things an expression can reference.
type RefKind int

const (
	RefPort RefKind = iota
	RefVariable
	RefState
)

func (k RefKind) String() string {
	switch k {
	case RefPort:
		return "port"
	case RefVariable:
		return "variable"
	case RefState:
		return "state"
	default:
		return "ref"
	}
}

// Ref is a resolved (kind, id) pair. ASTs never carry names past
// construction — only arena indices, per the IR builder's interning.
type Ref struct {
	Kind RefKind
	ID   int
}
