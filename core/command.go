package core

import "github.com/google/uuid"

// Command asks the orchestrator to apply one event to one actor.
type Command struct {
	ActorType string         `json:"actor_type"`
	ActorID   string         `json:"actor_id"`
	Event     string         `json:"event"`
	Data      map[string]any `json:"data,omitempty"`
	// Actor identifies the invoker for audit attribution; optional.
	Actor string `json:"actor,omitempty"`
}

// Evaluation is the outcome of the pure transition evaluator: the target
// state, the next context, and the name of the action that produced it
// (empty when the transition carries no action). It holds no persistence
// metadata; the orchestrator turns it into a committed TransitionResult.
type Evaluation struct {
	To      string
	Context Context
	Action  string
}

// TransitionResult is returned by a committed execute call. Alongside the
// target state and next context it carries the full post-commit ActorState
// (version and timestamps included) so callers never need a follow-up query
// to observe what they just wrote.
type TransitionResult struct {
	To         string     `json:"to"`
	NewContext Context    `json:"new_context"`
	State      ActorState `json:"state"`
}

// Decision is the answer to a transition-feasibility check. It never implies
// any persistence: CanTransition evaluates the guard but not the action.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
	Target  string `json:"target,omitempty"`
}

// NewID generates a unique identifier (UUID v4) for audit entries.
func NewID() string { return uuid.NewString() }
