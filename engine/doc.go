// Package engine implements the actor orchestrator: it composes the spec
// registry, the pure transition evaluator and a Store into command
// execution, state queries, feasibility checks and history retrieval.
//
// The engine is synchronous and stateless between calls. Commands against
// different actors are fully independent; commands racing on the same actor
// are serialized by the Store's compare-and-swap on version, never by locks
// inside the engine.
package engine
