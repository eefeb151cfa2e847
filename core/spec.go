package core

import "fmt"

// Guard is a named predicate over actor context gating a transition. Guards
// must be pure: no I/O, no clock reads, no randomness. A guard observes the
// context and answers whether the transition may proceed.
type Guard func(ctx Context) bool

// Action computes the next context for a transition. Actions must be pure
// functions of (context, command data); anything non-deterministic an action
// needs (timestamps, random draws) has to arrive inside data so that replay
// can supply the historical values recorded in the audit trail.
//
// An action rejecting structurally invalid input returns a *ValidationError.
type Action func(ctx Context, data map[string]any) (Context, error)

// Transition describes one edge of the statechart: the target state plus an
// optional guard and action referenced by name. A bare target string in a
// declarative definition normalizes to Transition{Target: s}.
type Transition struct {
	Target string `yaml:"target" json:"target"`
	Guard  string `yaml:"guard,omitempty" json:"guard,omitempty"`
	Action string `yaml:"action,omitempty" json:"action,omitempty"`
}

// StateNode holds the outgoing transitions of a single state keyed by event
// name.
type StateNode struct {
	On map[string]Transition `yaml:"on,omitempty" json:"on,omitempty"`
}

// ActorSpec is the declarative statechart definition for one actor type.
//
// Contract:
//   - Initial must name a key of States; every Transition.Target must too
//   - Guards and Actions are immutable name tables built at spec-build time;
//     transitions reference them by name (explicit dispatch, no reflection)
//   - A registered spec is shared and read-only: safe for concurrent reads
//     by any number of orchestrator instances.
type ActorSpec struct {
	ActorType string
	Initial   string
	States    map[string]StateNode
	Guards    map[string]Guard
	Actions   map[string]Action
}

// Validate checks the structural invariants of the spec: non-empty type and
// initial state, initial state resolvable, and every transition target
// resolvable. Guard/action name resolution is deliberately left to transition
// time, where it surfaces as GuardNotFoundError / ActionNotFoundError.
func (s *ActorSpec) Validate() error {
	if s.ActorType == "" {
		return fmt.Errorf("actor spec: actor type is required")
	}
	if s.Initial == "" {
		return fmt.Errorf("actor spec %q: initial state is required", s.ActorType)
	}
	if _, ok := s.States[s.Initial]; !ok {
		return fmt.Errorf("actor spec %q: initial state %q is not defined", s.ActorType, s.Initial)
	}
	for name, node := range s.States {
		for event, tr := range node.On {
			if tr.Target == "" {
				return fmt.Errorf("actor spec %q: state %q event %q: target is required", s.ActorType, name, event)
			}
			if _, ok := s.States[tr.Target]; !ok {
				return fmt.Errorf("actor spec %q: state %q event %q: target %q is not defined", s.ActorType, name, event, tr.Target)
			}
		}
	}
	return nil
}

// HasState reports whether name is a defined state of the spec.
func (s *ActorSpec) HasState(name string) bool {
	_, ok := s.States[name]
	return ok
}
