package core

import "time"

// Context is the opaque structured record an actor carries between
// transitions. Values should be plain data (strings, numbers, bools, nested
// maps/slices) so contexts survive serialization by any Store backend.
type Context map[string]any

// Clone returns a deep copy of the context so divergent histories never
// share mutable nested maps or slices.
func (c Context) Clone() Context {
	if c == nil {
		return Context{}
	}
	clone := make(Context, len(c))
	for k, v := range c {
		clone[k] = cloneValue(v)
	}
	return clone
}

func cloneValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(tv))
		for k, vv := range tv {
			m[k] = cloneValue(vv)
		}
		return m
	case Context:
		return map[string]any(tv.Clone())
	case []any:
		s := make([]any, len(tv))
		for i, vv := range tv {
			s[i] = cloneValue(vv)
		}
		return s
	default:
		return v
	}
}

// ActorState is the persisted snapshot of one actor. It is a value type:
// the orchestrator and stores pass copies, never long-lived references.
//
// Contract:
//   - State is always a key of the owning spec's States (validated on query)
//   - Version starts at 0 and increases by exactly 1 per committed transition
//   - Actors are created implicitly by the first successful command and are
//     never deleted by the core.
type ActorState struct {
	ID        string    `json:"id"`
	ActorType string    `json:"actor_type"`
	State     string    `json:"state"`
	Context   Context   `json:"context"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy safe for independent mutation.
func (a ActorState) Clone() ActorState {
	clone := a
	clone.Context = a.Context.Clone()
	return clone
}

// NewActorState synthesizes the implicit starting snapshot for an unseen
// (actorType, id) pair: the spec's initial state, an empty context and
// version 0.
func NewActorState(spec *ActorSpec, id string, now time.Time) ActorState {
	return ActorState{
		ID:        id,
		ActorType: spec.ActorType,
		State:     spec.Initial,
		Context:   Context{},
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
