// Package regelum implements a staged compiler and runtime for reactive
// dataflow pipelines.
//
// Authors build graphs of nodes (pure "Core", sandboxed "Extended", and
// unrestricted "Raw") connected by typed ports and shared variables. A
// Builder lowers an authored graph into a frozen intermediate
// representation (IR); Compile then runs a fixed pipeline of analyses —
// structural/type checks, write-conflict resolution, causality and
// constructive fixed-point analysis, initialization checks, non-Zeno rank
// checks, and synchronous-dataflow rate balancing — and, if the graph is
// accepted, returns a CompiledPipeline that a Scheduler drives under a
// deterministic three-phase tick (propose, resolve, commit) with
// superdense time.
//
// Sub-packages: expr holds the typed expression DSL and its two
// evaluators; diag holds the diagnostics sink and stable error codes.
package regelum
