package regelum

import (
	"fmt"

	"github.com/OdinManiac/regelum/expr"
)

// DelayBinding records one lowered Delay occurrence (§4.3): Hidden is the
// state variable that AST references now read instead of the Delay node,
// and Source is the (already-lowered) inner expression whose value gets
// written into Hidden once per tick, after that tick's last commit.
type DelayBinding struct {
	Reaction ReactionID
	Hidden   VarID
	Source   expr.Expr
}

// LowerDelays rewrites every *expr.Delay occurrence across ir's reactions
// into a Reference to a freshly allocated hidden State variable, seeded
// with the Delay's default (§4.3, §4.9 "init"). It must run before any
// analysis pass — no pass after this one should ever observe a *expr.Delay
// node.
func LowerDelays(ir *IR) ([]DelayBinding, error) {
	var bindings []DelayBinding
	for _, r := range ir.Reactions {
		occurrence := 0
		replace := func(d *expr.Delay) expr.Expr {
			name := fmt.Sprintf("__delay_r%d_%d", r.ID, occurrence)
			occurrence++
			def := d.Default
			v := &Variable{
				Name:               name,
				Type:               def.Type,
				Initial:            &def,
				Policy:             ErrorPolicy(),
				IsHiddenDelayState: true,
				IsNodeLocal:        true,
				Owner:              r.Owner,
			}
			id := VarID(len(ir.Vars))
			v.ID = id
			ir.Vars = append(ir.Vars, v)
			bindings = append(bindings, DelayBinding{Reaction: r.ID, Hidden: id, Source: d.Inner})
			return expr.NewReference(expr.Ref{Kind: expr.RefState, ID: int(id)}, def.Type)
		}
		for ref, out := range r.Outputs {
			r.Outputs[ref] = rewriteDelays(out, replace)
		}
		if r.RankExpr != nil {
			r.RankExpr = rewriteDelays(r.RankExpr, replace)
		}
	}
	return bindings, nil
}

// rewriteDelays recursively replaces *expr.Delay nodes reachable from e,
// mutating non-Delay nodes' children in place and returning the
// (possibly different) root.
func rewriteDelays(e expr.Expr, replace func(*expr.Delay) expr.Expr) expr.Expr {
	if e == nil {
		return nil
	}
	if d, ok := e.(*expr.Delay); ok {
		d.Inner = rewriteDelays(d.Inner, replace)
		return replace(d)
	}
	switch n := e.(type) {
	case *expr.Binary:
		n.X = rewriteDelays(n.X, replace)
		n.Y = rewriteDelays(n.Y, replace)
	case *expr.Compare:
		n.X = rewriteDelays(n.X, replace)
		n.Y = rewriteDelays(n.Y, replace)
	case *expr.Logical:
		n.X = rewriteDelays(n.X, replace)
		if n.Y != nil {
			n.Y = rewriteDelays(n.Y, replace)
		}
	case *expr.If:
		n.Cond = rewriteDelays(n.Cond, replace)
		n.Then = rewriteDelays(n.Then, replace)
		n.Else = rewriteDelays(n.Else, replace)
	case *expr.Builtin:
		for i := range n.Args {
			n.Args[i] = rewriteDelays(n.Args[i], replace)
		}
	}
	return e
}
