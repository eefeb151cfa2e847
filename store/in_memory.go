package store

import (
	"context"
	"reflect"
	"sort"
	"sync"

	"github.com/hupe1980/actormesh/core"
)

// InMemoryStore is a volatile Store implementation keeping actor snapshots
// and audit trails in process-local maps. It is safe for concurrent access
// and enforces the same atomicity and compare-and-swap contract as durable
// backends, which makes it suitable for tests and ephemeral demo hosts.
// Every value crossing the boundary is deep-cloned to prevent external
// mutation of internal state.
type InMemoryStore struct {
	mu      sync.RWMutex
	actors  map[string]core.ActorState
	history map[string][]core.AuditEntry // chronological, oldest first
}

// NewInMemoryStore constructs an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		actors:  make(map[string]core.ActorState),
		history: make(map[string][]core.AuditEntry),
	}
}

func key(actorType, actorID string) string { return actorType + "\x00" + actorID }

// Load returns a clone of the persisted snapshot or ErrNotFound.
func (s *InMemoryStore) Load(_ context.Context, actorType, actorID string) (core.ActorState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.actors[key(actorType, actorID)]
	if !ok {
		return core.ActorState{}, core.ErrNotFound
	}
	return state.Clone(), nil
}

// Save persists the snapshot and appends the audit entry as one atomic
// step, rejecting with a conflict when the stored version no longer matches
// baseVersion. An unseen actor commits only from baseVersion 0.
func (s *InMemoryStore) Save(_ context.Context, state core.ActorState, entry core.AuditEntry, baseVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(state.ActorType, state.ID)
	existing, ok := s.actors[k]
	if ok && existing.Version != baseVersion {
		return core.NewStorageError("save", core.ErrConflict)
	}
	if !ok && baseVersion != 0 {
		return core.NewStorageError("save", core.ErrConflict)
	}

	s.actors[k] = state.Clone()
	s.history[k] = append(s.history[k], cloneEntry(entry))
	return nil
}

// Query returns clones of all actors of the given type matching the filter,
// ordered by id for stable output.
func (s *InMemoryStore) Query(_ context.Context, actorType string, filter core.Filter) ([]core.ActorState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []core.ActorState
	for _, state := range s.actors {
		if state.ActorType != actorType {
			continue
		}
		if !matches(state, filter) {
			continue
		}
		result = append(result, state.Clone())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// History returns audit entries newest-first, paginated by limit/offset.
// limit <= 0 means no limit.
func (s *InMemoryStore) History(_ context.Context, actorType, actorID string, limit, offset int) ([]core.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trail := s.history[key(actorType, actorID)]
	n := len(trail)
	if offset < 0 {
		offset = 0
	}
	if offset >= n {
		return []core.AuditEntry{}, nil
	}
	count := n - offset
	if limit > 0 && limit < count {
		count = limit
	}
	result := make([]core.AuditEntry, 0, count)
	for i := 0; i < count; i++ {
		// Newest-first view over the chronological slice.
		result = append(result, cloneEntry(trail[n-1-offset-i]))
	}
	return result, nil
}

func matches(state core.ActorState, filter core.Filter) bool {
	if filter.State != "" && state.State != filter.State {
		return false
	}
	for k, want := range filter.Context {
		got, ok := state.Context[k]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func cloneEntry(entry core.AuditEntry) core.AuditEntry {
	clone := entry
	if entry.Data != nil {
		clone.Data = map[string]any(core.Context(entry.Data).Clone())
	}
	return clone
}
