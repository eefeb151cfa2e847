// Package machine implements the pure transition evaluator at the heart of
// ActorMesh. Given a spec, a current actor snapshot and a command it computes
// the next state and context — no I/O, no clock, no randomness. Identical
// inputs always yield identical results or identical failures, which is what
// makes audit-trail replay deterministic.
package machine

import (
	"github.com/hupe1980/actormesh/core"
)

// Execute evaluates one command against the current snapshot.
//
// Evaluation order: resolve the transition for (state, event), evaluate the
// guard if one is named, then apply the action if one is named. The incoming
// context is cloned before the action sees it, so a failed or misbehaving
// action can never mutate the caller's snapshot.
func Execute(spec *core.ActorSpec, current core.ActorState, event string, data map[string]any) (core.Evaluation, error) {
	tr, err := resolve(spec, current.State, event)
	if err != nil {
		return core.Evaluation{}, err
	}

	if tr.Guard != "" {
		guard, ok := spec.Guards[tr.Guard]
		if !ok {
			return core.Evaluation{}, &core.GuardNotFoundError{Guard: tr.Guard}
		}
		if !guard(current.Context) {
			return core.Evaluation{}, &core.GuardFailedError{Guard: tr.Guard, Event: event}
		}
	}

	next := current.Context.Clone()
	if tr.Action != "" {
		action, ok := spec.Actions[tr.Action]
		if !ok {
			return core.Evaluation{}, &core.ActionNotFoundError{Action: tr.Action}
		}
		next, err = action(next, data)
		if err != nil {
			return core.Evaluation{}, err
		}
	}

	return core.Evaluation{To: tr.Target, Context: next, Action: tr.Action}, nil
}

// Probe answers whether event could fire from the current snapshot without
// applying the action and without any side effect. Guards are evaluated;
// actions are not.
func Probe(spec *core.ActorSpec, current core.ActorState, event string) core.Decision {
	tr, err := resolve(spec, current.State, event)
	if err != nil {
		return core.Decision{Allowed: false, Reason: err.Error()}
	}

	if tr.Guard != "" {
		guard, ok := spec.Guards[tr.Guard]
		if !ok {
			return core.Decision{Allowed: false, Reason: (&core.GuardNotFoundError{Guard: tr.Guard}).Error()}
		}
		if !guard(current.Context) {
			return core.Decision{Allowed: false, Reason: (&core.GuardFailedError{Guard: tr.Guard, Event: event}).Error()}
		}
	}

	return core.Decision{Allowed: true, Target: tr.Target}
}

// resolve looks up the transition for (state, event). A state the spec no
// longer defines surfaces as InvalidStateError rather than a misleading
// "transition not allowed".
func resolve(spec *core.ActorSpec, state, event string) (core.Transition, error) {
	node, ok := spec.States[state]
	if !ok {
		return core.Transition{}, &core.InvalidStateError{ActorType: spec.ActorType, State: state}
	}
	tr, ok := node.On[event]
	if !ok {
		return core.Transition{}, &core.TransitionNotAllowedError{State: state, Event: event}
	}
	return tr, nil
}
