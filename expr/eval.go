package expr

// Env resolves a Ref to its current value. The second return reports
// presence: false means ABSENT, matching §3's "ABSENT is a first-class
// value distinct from any type's real values".
type Env interface {
	Lookup(ref Ref) (Value, bool)
}

// MapEnv is a trivial Env backed by a map, used by tests and by the
// scheduler to build a reaction's read view of the committed environment.
type MapEnv map[Ref]Value

func (m MapEnv) Lookup(ref Ref) (Value, bool) {
	v, ok := m[ref]
	return v, ok
}

// Eval is the concrete evaluator: it maps an expression plus an
// environment to a value, or reports absence. ABSENT propagates through
// arithmetic, comparisons, logicals, and conditionals unless a builtin
// explicitly opts in to handling it (BuiltinSpec.AbsentHandled).
func Eval(e Expr, env Env) (Value, bool) {
	switch n := e.(type) {
	case *Const:
		return n.Value, true

	case *Reference:
		return env.Lookup(n.Ref)

	case *Binary:
		x, xok := Eval(n.X, env)
		y, yok := Eval(n.Y, env)
		if !xok || !yok {
			return Value{}, false
		}
		return evalBinary(n.Op, n.ValType, x, y), true

	case *Compare:
		x, xok := Eval(n.X, env)
		y, yok := Eval(n.Y, env)
		if !xok || !yok {
			return Value{}, false
		}
		return BoolValue(evalCompare(n.Op, x, y)), true

	case *Logical:
		x, xok := Eval(n.X, env)
		if !xok {
			return Value{}, false
		}
		if n.Op == OpNot {
			return BoolValue(!x.Bool), true
		}
		y, yok := Eval(n.Y, env)
		if !yok {
			return Value{}, false
		}
		switch n.Op {
		case OpAnd:
			return BoolValue(x.Bool && y.Bool), true
		case OpOr:
			return BoolValue(x.Bool || y.Bool), true
		}
		return Value{}, false

	case *If:
		c, cok := Eval(n.Cond, env)
		if !cok {
			return Value{}, false
		}
		if c.Bool {
			return Eval(n.Then, env)
		}
		return Eval(n.Else, env)

	case *Builtin:
		args := make([]Value, len(n.Args))
		anyAbsent := false
		for i, a := range n.Args {
			v, ok := Eval(a, env)
			if !ok {
				anyAbsent = true
				args[i] = Value{}
				continue
			}
			args[i] = v
		}
		if anyAbsent && !n.Spec.AbsentHandled {
			return Value{}, false
		}
		return n.Spec.Concrete(args), true

	case *Delay:
		// After lowering (§4.3) no reaction output AST should retain a
		// *Delay node; this case exists only so the evaluator is total
		// over the full grammar before lowering runs (e.g. in tests that
		// exercise pre-lowering ASTs directly).
		return Eval(n.Inner, env)

	default:
		return Value{}, false
	}
}

func evalBinary(op BinOp, resultType ElementType, x, y Value) Value {
	xf, yf := x.AsFloat(), y.AsFloat()
	var rf float64
	switch op {
	case OpAdd:
		rf = xf + yf
	case OpSub:
		rf = xf - yf
	case OpMul:
		rf = xf * yf
	case OpDiv:
		if yf == 0 {
			rf = 0
		} else {
			rf = xf / yf
		}
	case OpMin:
		rf = min(xf, yf)
	case OpMax:
		rf = max(xf, yf)
	}
	if resultType == Int {
		return IntValue(int64(rf))
	}
	return FloatValue(rf)
}

func evalCompare(op CmpOp, x, y Value) bool {
	if x.Type == Bool && y.Type == Bool {
		switch op {
		case CmpEQ:
			return x.Bool == y.Bool
		default:
			return false
		}
	}
	if x.Type == String && y.Type == String {
		switch op {
		case CmpEQ:
			return x.Str == y.Str
		case CmpLT:
			return x.Str < y.Str
		case CmpLE:
			return x.Str <= y.Str
		case CmpGE:
			return x.Str >= y.Str
		case CmpGT:
			return x.Str > y.Str
		}
	}
	xf, yf := x.AsFloat(), y.AsFloat()
	switch op {
	case CmpLT:
		return xf < yf
	case CmpLE:
		return xf <= yf
	case CmpEQ:
		return xf == yf
	case CmpGE:
		return xf >= yf
	case CmpGT:
		return xf > yf
	}
	return false
}
