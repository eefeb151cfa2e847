package core

import "context"

// Filter narrows a Query to actors matching all set fields. The zero value
// matches every actor of the queried type.
type Filter struct {
	// State, when non-empty, matches actors currently in that state.
	State string
	// Context, when non-nil, matches actors whose context contains every
	// listed key with an equal value (compared via reflect.DeepEqual
	// semantics in the built-in stores).
	Context map[string]any
}

// Store is the persistence contract the orchestrator depends on. The core
// never holds a long-lived reference to persisted data: implementations
// exchange value copies with callers.
//
// Contract:
//   - Load returns ErrNotFound (wrapped or bare) for an unseen pair
//   - Save persists state and entry atomically: both or neither. It must
//     compare-and-swap on version: baseVersion is the version read at load
//     time, and the write is rejected with ErrConflict (wrapped in a
//     *StorageError) if the persisted version at commit time differs
//   - History returns entries newest-first, paginated by limit/offset;
//     limit <= 0 means no limit
//   - All reads return defensive copies.
type Store interface {
	Load(ctx context.Context, actorType, actorID string) (ActorState, error)
	Save(ctx context.Context, state ActorState, entry AuditEntry, baseVersion int64) error
	Query(ctx context.Context, actorType string, filter Filter) ([]ActorState, error)
	History(ctx context.Context, actorType, actorID string, limit, offset int) ([]AuditEntry, error)
}
