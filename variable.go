package regelum

import (
	"fmt"

	"github.com/OdinManiac/regelum/expr"
)

// VarID is an arena index into the frozen IR's variable table. Hidden
// delay states (§4.3) are allocated in the same arena and keyed by
// (reaction id, occurrence index) at allocation time, but never exposed
// to authors as a name — only this index travels through the IR.
type VarID int

// WriteIntent is a single reaction's proposed write to a variable,
// buffered during the propose phase and merged during resolve (§4.10).
type WriteIntent struct {
	Producer ReactionID
	Value    expr.Value
}

// WritePolicy collapses the set of a tick's intents for one variable into
// a single committed value (§3 Data Model, §4.5).
type WritePolicy interface {
	fmt.Stringer

	// Monotone reports whether Resolve is monotone and operates over a
	// bounded-height join-semilattice — the precondition for this
	// variable to participate in an algebraic cycle (§4.6).
	Monotone() bool

	// Height bounds the number of distinct accumulator values the
	// lattice can take. Zero means "no known bound" (non-monotone
	// policies, or monoids without a declared bound). Neither the
	// analysis passes nor the scheduler read it: a cycle's microstep
	// loop is bounded by its reactions' MaxMicrosteps.
	Height() int

	// Resolve merges intents into a single value. An empty intents slice
	// must return (prior, nil) unchanged.
	Resolve(prior expr.Value, intents []WriteIntent) (expr.Value, error)
}

// errorPolicy rejects any tick with more than one concrete writer.
type errorPolicy struct{}

// ErrorPolicy forbids more than one concrete writer per tick (§3). It is
// never monotone, so variables using it cannot join an algebraic cycle.
func ErrorPolicy() WritePolicy { return errorPolicy{} }

func (errorPolicy) String() string    { return "ErrorPolicy" }
func (errorPolicy) Monotone() bool    { return false }
func (errorPolicy) Height() int       { return 0 }

func (errorPolicy) Resolve(prior expr.Value, intents []WriteIntent) (expr.Value, error) {
	switch len(intents) {
	case 0:
		return prior, nil
	case 1:
		return intents[0].Value, nil
	default:
		return expr.Value{}, &WritePolicyError{Policy: "ErrorPolicy", Writers: len(intents)}
	}
}

// lwwPolicy picks the concrete writer with the highest priority; ties (no
// declared relative priority) are broken by ReactionID for determinism,
// but such ties are flagged at compile time as WRITE002.
type lwwPolicy struct {
	// priority maps a producing reaction to its rank; lower ranks win.
	// Producers absent from the map rank after every declared producer,
	// ordered among themselves by ReactionID.
	priority map[ReactionID]int
}

// LWWPolicy is last-writer-wins with an explicit producer priority list,
// highest priority first.
func LWWPolicy(priorityOrder []ReactionID) WritePolicy {
	p := make(map[ReactionID]int, len(priorityOrder))
	for i, r := range priorityOrder {
		p[r] = i
	}
	return &lwwPolicy{priority: p}
}

func (*lwwPolicy) String() string { return "LWWPolicy" }
func (*lwwPolicy) Monotone() bool { return false }
func (*lwwPolicy) Height() int    { return 0 }

func (p *lwwPolicy) Resolve(prior expr.Value, intents []WriteIntent) (expr.Value, error) {
	if len(intents) == 0 {
		return prior, nil
	}
	best := intents[0]
	bestRank, bestKnown := p.priority[best.Producer]
	for _, it := range intents[1:] {
		rank, known := p.priority[it.Producer]
		switch {
		case known && !bestKnown:
			best, bestRank, bestKnown = it, rank, known
		case known && bestKnown && rank < bestRank:
			best, bestRank = it, rank
		case !known && !bestKnown && it.Producer < best.Producer:
			best = it
		}
	}
	return best.Value, nil
}

// Monoid declares a commutative, associative merge operator plus its
// identity element and lattice height bound (§4.6's "lattice with
// bounded height").
type Monoid struct {
	Name     string
	Identity expr.Value
	Combine  func(a, b expr.Value) expr.Value
	// HeightBound bounds the number of distinct accumulator values; it is
	// reported by the policy's Height method.
	HeightBound int
}

// SumMonoid, MinMonoid and MaxMonoid are the built-in monoids named by
// §3 Data Model ("monoidal merge such as sum/max/min").
func SumMonoid(t expr.ElementType, heightBound int) Monoid {
	id := expr.IntValue(0)
	if t == expr.Float {
		id = expr.FloatValue(0)
	}
	return Monoid{
		Name:        "sum",
		Identity:    id,
		HeightBound: heightBound,
		Combine: func(a, b expr.Value) expr.Value {
			if t == expr.Float {
				return expr.FloatValue(a.AsFloat() + b.AsFloat())
			}
			return expr.IntValue(a.Int + b.Int)
		},
	}
}

func MaxMonoid(t expr.ElementType, identity expr.Value, heightBound int) Monoid {
	return Monoid{
		Name:        "max",
		Identity:    identity,
		HeightBound: heightBound,
		Combine: func(a, b expr.Value) expr.Value {
			if a.AsFloat() >= b.AsFloat() {
				return a
			}
			return b
		},
	}
}

func MinMonoid(t expr.ElementType, identity expr.Value, heightBound int) Monoid {
	return Monoid{
		Name:        "min",
		Identity:    identity,
		HeightBound: heightBound,
		Combine: func(a, b expr.Value) expr.Value {
			if a.AsFloat() <= b.AsFloat() {
				return a
			}
			return b
		},
	}
}

// monoidPolicy merges all of a tick's intents with a Monoid. Any number
// of writers is accepted.
type monoidPolicy struct {
	m Monoid
}

// MonoidPolicy accepts any number of writers, merging them with m.
func MonoidPolicy(m Monoid) WritePolicy { return &monoidPolicy{m: m} }

func (p *monoidPolicy) String() string { return "MonoidPolicy(" + p.m.Name + ")" }
func (p *monoidPolicy) Monotone() bool { return true }
func (p *monoidPolicy) Height() int    { return p.m.HeightBound }

func (p *monoidPolicy) Resolve(prior expr.Value, intents []WriteIntent) (expr.Value, error) {
	if len(intents) == 0 {
		return prior, nil
	}
	// §9 Open Question (a): ABSENT under a monoidal policy other than
	// sum/max/min is left for the author to declare explicitly; the
	// built-in monoids above never see ABSENT because intents only exist
	// for reactions that actually produced a present value this tick.
	acc := p.m.Identity
	for _, it := range intents {
		acc = p.m.Combine(acc, it.Value)
	}
	return acc, nil
}

// Variable is the frozen record for one shared variable (§3 Data Model).
type Variable struct {
	ID      VarID
	Name    string
	Type    expr.ElementType
	Initial *expr.Value
	Policy  WritePolicy
	// IsHiddenDelayState is true for variables synthesized by delay
	// lowering (§4.3); such variables are never named by authors and are
	// excluded from author-facing diagnostics about "variables".
	IsHiddenDelayState bool
	// Owner is set only for hidden delay states and other node-scoped
	// State; zero value (NodeID(0) is a valid id) is disambiguated by
	// IsHiddenDelayState/IsNodeLocal.
	Owner       NodeID
	IsNodeLocal bool
}
