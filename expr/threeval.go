package expr

// TVKind distinguishes the three states a reference can be in during
// constructive causality analysis (§4.2, §4.6).
type TVKind int

const (
	// TVBottom ("not yet determined") is internal to the analyzer and
	// must never be observed at runtime — see §3's invariant on ⊥.
	TVBottom TVKind = iota
	TVAbsent
	TVPresent
)

// TV is a three-valued result: {⊥, ABSENT, present(v)}.
type TV struct {
	Kind  TVKind
	Value Value
}

// Bottom, Absent and Present build TV values.
func Bottom() TV             { return TV{Kind: TVBottom} }
func Absent() TV             { return TV{Kind: TVAbsent} }
func Present(v Value) TV     { return TV{Kind: TVPresent, Value: v} }

// LessOrEqual implements the partial order ⊥ ⊑ present(v) and ⊥ ⊑ ABSENT
// used to show the constructive iteration is monotone (§4.2).
func (a TV) LessOrEqual(b TV) bool {
	if a.Kind == TVBottom {
		return true
	}
	return a == b
}

// TVEnv resolves a Ref to its current three-valued approximation.
type TVEnv interface {
	LookupTV(ref Ref) TV
}

// MapTVEnv is a trivial TVEnv backed by a map; refs absent from the map
// are treated as Bottom, matching the SCC initialization rule in §4.6
// ("Initialize every reference in the SCC to ⊥ except externally-defined
// inputs").
type MapTVEnv map[Ref]TV

func (m MapTVEnv) LookupTV(ref Ref) TV {
	if v, ok := m[ref]; ok {
		return v
	}
	return Bottom()
}

// EvalTV is the three-valued evaluator. It is total (defined for every
// well-typed AST and every TVEnv) and monotone in ⊑: replacing any input
// TV with a ⊑-larger one never decreases the result's ⊑ rank. The
// propagation rules (§4.2) are:
//   - conditional with ⊥ guard stays ⊥
//   - arithmetic/comparison/logical with any ⊥ operand is ⊥
//   - ABSENT operand (no ⊥ present) yields ABSENT
func EvalTV(e Expr, env TVEnv) TV {
	switch n := e.(type) {
	case *Const:
		return Present(n.Value)

	case *Reference:
		return env.LookupTV(n.Ref)

	case *Binary:
		x, y := EvalTV(n.X, env), EvalTV(n.Y, env)
		if x.Kind == TVBottom || y.Kind == TVBottom {
			return Bottom()
		}
		if x.Kind == TVAbsent || y.Kind == TVAbsent {
			return Absent()
		}
		return Present(evalBinary(n.Op, n.ValType, x.Value, y.Value))

	case *Compare:
		x, y := EvalTV(n.X, env), EvalTV(n.Y, env)
		if x.Kind == TVBottom || y.Kind == TVBottom {
			return Bottom()
		}
		if x.Kind == TVAbsent || y.Kind == TVAbsent {
			return Absent()
		}
		return Present(BoolValue(evalCompare(n.Op, x.Value, y.Value)))

	case *Logical:
		x := EvalTV(n.X, env)
		if n.Op == OpNot {
			switch x.Kind {
			case TVBottom:
				return Bottom()
			case TVAbsent:
				return Absent()
			default:
				return Present(BoolValue(!x.Value.Bool))
			}
		}
		y := EvalTV(n.Y, env)
		if x.Kind == TVBottom || y.Kind == TVBottom {
			return Bottom()
		}
		if x.Kind == TVAbsent || y.Kind == TVAbsent {
			return Absent()
		}
		switch n.Op {
		case OpAnd:
			return Present(BoolValue(x.Value.Bool && y.Value.Bool))
		case OpOr:
			return Present(BoolValue(x.Value.Bool || y.Value.Bool))
		}
		return Bottom()

	case *If:
		c := EvalTV(n.Cond, env)
		switch c.Kind {
		case TVBottom:
			// "conditional with ⊥ guard stays ⊥" (§4.2)
			return Bottom()
		case TVAbsent:
			return Absent()
		default:
			if c.Value.Bool {
				return EvalTV(n.Then, env)
			}
			return EvalTV(n.Else, env)
		}

	case *Builtin:
		args := make([]Value, len(n.Args))
		anyBottom, anyAbsent := false, false
		for i, a := range n.Args {
			v := EvalTV(a, env)
			switch v.Kind {
			case TVBottom:
				anyBottom = true
			case TVAbsent:
				anyAbsent = true
			default:
				args[i] = v.Value
			}
		}
		if anyBottom {
			return Bottom()
		}
		if anyAbsent && !n.Spec.AbsentHandled {
			return Absent()
		}
		return Present(n.Spec.Concrete(args))

	case *Delay:
		return EvalTV(n.Inner, env)

	default:
		return Bottom()
	}
}
