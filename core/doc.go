// Package core provides the foundational domain types, interfaces and error
// taxonomy used by ActorMesh. It defines the core abstractions for:
//
//   - ActorSpecs (declarative statecharts: states, transitions, guards, actions)
//   - ActorStates (versioned, externally persisted actor snapshots)
//   - Commands and TransitionResults (the execute request/response pair)
//   - AuditEntries (immutable records of committed transitions)
//   - The Store contract for atomic, optimistically concurrent persistence
//
// The package intentionally keeps implementation concerns (persistence
// backends, the transition evaluator, orchestration) out of scope, exposing
// small interfaces and value types so custom backends and hosts can be added
// without dependency cycles.
package core
