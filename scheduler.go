package regelum

import (
	"sort"
	"time"

	"github.com/OdinManiac/regelum/expr"
)

// Snapshot is a read-only view of every port/variable/state value
// committed as of Tag (§C.3 of the expanded spec).
type Snapshot struct {
	Tag    Tag
	Values map[expr.Ref]expr.Value
}

type externalEvent struct {
	ref   expr.Ref
	value expr.Value
}

// Scheduler runs CompiledPipeline's three-phase propose/resolve/commit
// tick loop (§4.10): each causal layer of the condensed dependency graph
// is proposed and resolved together as one microstep; each algebraic
// cycle iterates propose/resolve/commit internally, advancing μ once per
// iteration, until its intents stabilize or its microstep budget is
// exhausted (ZenoRuntimeError).
type Scheduler struct {
	pipeline *CompiledPipeline
	cfg      *schedulerConfig
	env      map[expr.Ref]expr.Value
	tag      Tag
	stages   [][][]ReactionID

	// externalQueue holds events_in writes queued for a future tick,
	// FIFO per tick (§C.1's events_in ordering discipline).
	externalQueue map[int64][]externalEvent
}

// NewScheduler builds a Scheduler over a CompiledPipeline, seeding the
// environment from every Variable's Initial and every Port's Default.
func NewScheduler(pipeline *CompiledPipeline, opts ...Option) (*Scheduler, error) {
	cfg, err := newSchedulerConfig(opts)
	if err != nil {
		return nil, err
	}
	s := &Scheduler{
		pipeline:      pipeline,
		cfg:           cfg,
		env:           make(map[expr.Ref]expr.Value),
		tag:           ZeroTag,
		externalQueue: make(map[int64][]externalEvent),
	}
	for _, v := range pipeline.IR.Vars {
		if v.Initial != nil {
			kind := expr.RefVariable
			if v.IsNodeLocal || v.IsHiddenDelayState {
				kind = expr.RefState
			}
			s.env[expr.Ref{Kind: kind, ID: int(v.ID)}] = *v.Initial
		}
	}
	for _, p := range pipeline.IR.Ports {
		if p.Default != nil {
			s.env[expr.Ref{Kind: expr.RefPort, ID: int(p.ID)}] = *p.Default
		}
	}
	s.stages = buildExecutionOrder(pipeline.IR, pipeline.Causality)
	return s, nil
}

// EventsIn queues an externally-sourced write to ref, effective at the
// start of the given tick (§6 events_in). Multiple events queued for the
// same tick apply in the order EventsIn was called (FIFO).
func (s *Scheduler) EventsIn(tick int64, ref expr.Ref, v expr.Value) {
	s.externalQueue[tick] = append(s.externalQueue[tick], externalEvent{ref: ref, value: v})
}

// Tag returns the tag of the next tick Step will execute.
func (s *Scheduler) Tag() Tag { return s.tag }

// Step runs exactly one logical tick to completion — every causal
// layer, with every algebraic cycle iterated to its fixed point or a
// ZenoRuntimeError — and returns the resulting committed snapshot.
func (s *Scheduler) Step() (*Snapshot, error) {
	start := time.Now()
	stopTick := startTickSpan(s.cfg.tracer, s.tag)
	defer func() {
		s.cfg.metrics.observeTick(time.Since(start).Seconds())
		stopTick()
	}()

	s.drainExternalEvents(s.tag.T)

	for _, layer := range s.stages {
		if err := s.runLayer(layer); err != nil {
			return nil, err
		}
	}

	if err := s.applyDelayWrites(); err != nil {
		return nil, err
	}

	snap := &Snapshot{Tag: s.tag, Values: cloneEnv(s.env)}
	s.tag = s.tag.Advance()
	return snap, nil
}

// Run executes n ticks in sequence, stopping at the first error.
func (s *Scheduler) Run(n int) ([]Snapshot, error) {
	out := make([]Snapshot, 0, n)
	for i := 0; i < n; i++ {
		snap, err := s.Step()
		if err != nil {
			return out, err
		}
		out = append(out, *snap)
	}
	return out, nil
}

// drainExternalEvents applies every events_in write queued for tick
// before that tick's first layer runs. Ports commit directly (they have
// at most one writer by construction); a Variable/State event resolves
// through its own WritePolicy exactly as if the external source were
// this tick's sole instantaneous writer. An in-tick reaction that also
// writes the same ref runs its own Resolve afterward and wins — events_in
// seeds the tick's starting value, it does not participate in the same
// Resolve call as a reaction's own write.
func (s *Scheduler) drainExternalEvents(tick int64) {
	grouped := make(map[expr.Ref][]WriteIntent)
	for _, ev := range s.externalQueue[tick] {
		if ev.ref.Kind == expr.RefPort {
			s.env[ev.ref] = ev.value
			continue
		}
		grouped[ev.ref] = append(grouped[ev.ref], WriteIntent{Producer: -1, Value: ev.value})
	}
	for ref, its := range grouped {
		v := s.pipeline.IR.Var(VarID(ref.ID))
		if v == nil {
			continue
		}
		if resolved, err := v.Policy.Resolve(s.currentValue(ref), its); err == nil {
			s.env[ref] = resolved
		}
	}
	delete(s.externalQueue, tick)
}

func (s *Scheduler) currentValue(ref expr.Ref) expr.Value {
	if v, ok := s.env[ref]; ok {
		return v
	}
	return expr.Value{}
}

func (s *Scheduler) runLayer(layer [][]ReactionID) error {
	var simple []ReactionID
	var cycles [][]ReactionID
	for _, comp := range layer {
		if len(comp) == 1 && !s.pipeline.Causality.InCycle(comp[0]) {
			simple = append(simple, comp[0])
		} else {
			cycles = append(cycles, comp)
		}
	}
	if len(simple) > 0 {
		if err := s.runSimpleBatch(simple); err != nil {
			return err
		}
	}
	for _, cyc := range cycles {
		if err := s.runCycleStage(cyc); err != nil {
			return err
		}
	}
	return nil
}

// runSimpleBatch proposes every reaction in rids against the same
// pre-layer committed env (they share no dependency by construction of
// the causal layering), resolves every touched variable once with the
// whole layer's intents, then commits everything together as a single
// microstep.
func (s *Scheduler) runSimpleBatch(rids []ReactionID) error {
	env := expr.MapEnv(s.env)
	commits := make(map[expr.Ref]expr.Value)
	intents := make(map[expr.Ref][]WriteIntent)

	for _, rid := range rids {
		r := s.pipeline.IR.Reaction(rid)
		for ref, e := range r.Outputs {
			v, ok := expr.Eval(e, env)
			if !ok {
				continue
			}
			if ref.Kind == expr.RefPort {
				commits[ref] = v
			} else {
				intents[ref] = append(intents[ref], WriteIntent{Producer: rid, Value: v})
			}
		}
	}

	for ref, its := range intents {
		v := s.pipeline.IR.Var(VarID(ref.ID))
		resolved, err := v.Policy.Resolve(s.currentValue(ref), its)
		if err != nil {
			if wpe, ok := err.(*WritePolicyError); ok {
				wpe.Variable = VarID(ref.ID)
			}
			return err
		}
		commits[ref] = resolved
	}

	propagateEdges(s.pipeline.IR, commits)
	for ref, v := range commits {
		s.env[ref] = v
	}
	s.tag = s.tag.Next()
	s.cfg.metrics.observeMicrostep()
	return nil
}

// runCycleStage iterates an algebraic cycle's reactions Jacobi-style —
// every member reads the prior iteration's committed values and
// proposes its writes, which are resolved and committed together —
// until no variable's resolved value changes, or the cycle's declared
// microstep budget is exhausted (ZenoRuntimeError, §4.6/§4.10).
func (s *Scheduler) runCycleStage(members []ReactionID) error {
	budget := s.cycleBudget(members)
	stop := startCycleSpan(s.cfg.tracer, members)

	iter := 0
	for ; iter < budget; iter++ {
		env := expr.MapEnv(s.env)
		commits := make(map[expr.Ref]expr.Value)
		intents := make(map[expr.Ref][]WriteIntent)

		for _, rid := range members {
			r := s.pipeline.IR.Reaction(rid)
			for ref, e := range r.Outputs {
				v, ok := expr.Eval(e, env)
				if !ok {
					continue
				}
				if ref.Kind == expr.RefPort {
					commits[ref] = v
				} else {
					intents[ref] = append(intents[ref], WriteIntent{Producer: rid, Value: v})
				}
			}
		}

		for ref, its := range intents {
			v := s.pipeline.IR.Var(VarID(ref.ID))
			resolved, err := v.Policy.Resolve(s.currentValue(ref), its)
			if err != nil {
				if wpe, ok := err.(*WritePolicyError); ok {
					wpe.Variable = VarID(ref.ID)
				}
				stop(iter+1, err)
				return err
			}
			commits[ref] = resolved
		}

		propagateEdges(s.pipeline.IR, commits)
		changed := false
		for ref, v := range commits {
			if old, ok := s.env[ref]; !ok || old != v {
				changed = true
			}
			s.env[ref] = v
		}

		s.tag = s.tag.Next()
		s.cfg.metrics.observeMicrostep()

		if !changed {
			stop(iter+1, nil)
			s.cfg.metrics.observeSCCIterations(iter + 1)
			return nil
		}
	}

	err := &ZenoRuntimeError{Tag: s.tag, SCCMembers: append([]ReactionID{}, members...), Budget: budget}
	stop(iter, err)
	s.cfg.metrics.observeZenoError()
	return err
}

func (s *Scheduler) cycleBudget(members []ReactionID) int {
	budget := 0
	for _, rid := range members {
		r := s.pipeline.IR.Reaction(rid)
		if r.MaxMicrosteps > 0 && (budget == 0 || r.MaxMicrosteps < budget) {
			budget = r.MaxMicrosteps
		}
	}
	if budget == 0 {
		budget = 1
	}
	return budget
}

// applyDelayWrites evaluates every DelayBinding's source expression
// against the tick's final committed env and writes the result into the
// binding's hidden state, so the next tick's read of that Delay sees
// this tick's value (§4.3). A source that evaluates to ABSENT leaves the
// hidden state unchanged.
func (s *Scheduler) applyDelayWrites() error {
	env := expr.MapEnv(s.env)
	for _, b := range s.pipeline.Delays {
		v, ok := expr.Eval(b.Source, env)
		if !ok {
			continue
		}
		s.env[expr.Ref{Kind: expr.RefState, ID: int(b.Hidden)}] = v
	}
	return nil
}

// propagateEdges copies every committed Output port's value onto the
// Input port(s) it feeds through an Edge, so a downstream reaction's
// Reference to its own Input port ref sees the value its upstream neighbor
// just produced on a (numerically distinct) Output port ref. Without this,
// an Input port with an incoming Edge and no Default never gets populated
// in s.env and every read of it evaluates ABSENT.
func propagateEdges(ir *IR, commits map[expr.Ref]expr.Value) {
	additions := make(map[expr.Ref]expr.Value)
	for ref, v := range commits {
		if ref.Kind != expr.RefPort {
			continue
		}
		port := ir.Port(PortID(ref.ID))
		if port == nil || port.Direction != Output {
			continue
		}
		for _, e := range ir.OutEdges(port.ID) {
			additions[expr.Ref{Kind: expr.RefPort, ID: int(e.To)}] = v
		}
	}
	for ref, v := range additions {
		commits[ref] = v
	}
}

func cloneEnv(env map[expr.Ref]expr.Value) map[expr.Ref]expr.Value {
	out := make(map[expr.Ref]expr.Value, len(env))
	for k, v := range env {
		out[k] = v
	}
	return out
}

// buildExecutionOrder condenses the cycles found by CausalityPass (each
// an opaque component) together with every acyclic reaction into a DAG,
// then layers it breadth-first (Kahn's algorithm, one layer per wave of
// zero-remaining-indegree components) so everything in one layer can be
// proposed against the same pre-layer committed environment.
func buildExecutionOrder(ir *IR, causality *CausalityResult) [][][]ReactionID {
	compOf := make(map[ReactionID]int)
	var comps [][]ReactionID
	for _, cyc := range causality.Cycles {
		idx := len(comps)
		comps = append(comps, cyc)
		for _, r := range cyc {
			compOf[r] = idx
		}
	}
	for _, r := range ir.Reactions {
		if _, in := compOf[r.ID]; !in {
			idx := len(comps)
			comps = append(comps, []ReactionID{r.ID})
			compOf[r.ID] = idx
		}
	}

	writers := refWriters(ir)
	succ := make([]map[int]bool, len(comps))
	indeg := make([]int, len(comps))
	for i := range succ {
		succ[i] = map[int]bool{}
	}
	for _, r := range ir.Reactions {
		for _, ref := range r.Reads {
			for _, w := range resolveWriters(ir, writers, ref) {
				cw, cr := compOf[w], compOf[r.ID]
				if cw == cr {
					continue
				}
				if !succ[cw][cr] {
					succ[cw][cr] = true
					indeg[cr]++
				}
			}
		}
	}

	var stages [][][]ReactionID
	done := make([]bool, len(comps))
	remaining := len(comps)
	for remaining > 0 {
		var layerIdx []int
		for i := range comps {
			if !done[i] && indeg[i] == 0 {
				layerIdx = append(layerIdx, i)
			}
		}
		if len(layerIdx) == 0 {
			for i := range comps {
				if !done[i] {
					layerIdx = append(layerIdx, i)
					break
				}
			}
		}
		sort.Ints(layerIdx)
		layer := make([][]ReactionID, 0, len(layerIdx))
		for _, i := range layerIdx {
			layer = append(layer, comps[i])
			done[i] = true
			remaining--
			for to := range succ[i] {
				indeg[to]--
			}
		}
		stages = append(stages, layer)
	}
	return stages
}
