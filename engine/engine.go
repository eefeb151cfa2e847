package engine

import (
	"context"
	"time"

	"github.com/hupe1980/actormesh/audit"
	"github.com/hupe1980/actormesh/core"
	"github.com/hupe1980/actormesh/logging"
	"github.com/hupe1980/actormesh/machine"
	"github.com/hupe1980/actormesh/registry"
	"github.com/hupe1980/actormesh/store"
)

// Options configures an Engine instance using the functional options
// pattern. All dependencies have safe defaults so an engine is usable for
// development and testing without external wiring.
type Options struct {
	// Store persists actor state and audit history. Defaults to the
	// in-memory implementation if not provided.
	Store core.Store

	// Recorder receives a copy of every audit entry after persistence
	// (committed transitions) and every failed attempt (which is never
	// persisted). Defaults to the no-op recorder.
	Recorder audit.Recorder

	// Logger provides structured logging. Defaults to NoOp if nil.
	Logger logging.Logger

	// Now supplies commit timestamps. Defaults to time.Now().UTC; override
	// in tests that need deterministic clocks. Actions never see this
	// clock: transition evaluation stays pure.
	Now func() time.Time
}

// Engine executes commands against persisted actors.
//
// Execution pipeline per command:
//  1. Resolve the spec for the actor type
//  2. Load the current snapshot, or synthesize the implicit initial state
//     for an unseen actor id (version 0, empty context)
//  3. Evaluate the transition (pure; no side effects on failure)
//  4. Persist successor state + audit entry atomically with a
//     compare-and-swap on the loaded version
//  5. Hand the entry to the secondary recorder, best-effort
//
// Pre-persistence failures leave no trace in the store. A conflicting save
// surfaces as a StorageError wrapping ErrConflict; the caller may re-read
// and retry, the engine never retries itself.
type Engine struct {
	registry *registry.Registry
	store    core.Store
	recorder audit.Recorder
	logger   logging.Logger
	now      func() time.Time
}

// New creates an Engine bound to the given spec registry.
func New(reg *registry.Registry, optFns ...func(o *Options)) *Engine {
	opts := Options{
		Store:    store.NewInMemoryStore(),
		Recorder: audit.NopRecorder{},
		Logger:   logging.NoOpLogger{},
		Now:      func() time.Time { return time.Now().UTC() },
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Recorder == nil {
		opts.Recorder = audit.NopRecorder{}
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Engine{
		registry: reg,
		store:    opts.Store,
		recorder: opts.Recorder,
		logger:   opts.Logger,
		now:      opts.Now,
	}
}

// Store exposes the engine's persistence backend so hosts can share it with
// a Replayer.
func (e *Engine) Store() core.Store { return e.store }

// Execute applies one command to one actor. The first successful command
// against an unseen (actorType, actorId) implicitly creates the actor; there
// is no separate create operation.
func (e *Engine) Execute(ctx context.Context, cmd core.Command) (core.TransitionResult, error) {
	start := time.Now()

	spec, err := e.registry.Get(cmd.ActorType)
	if err != nil {
		return core.TransitionResult{}, err
	}

	now := e.now()
	current, err := e.store.Load(ctx, cmd.ActorType, cmd.ActorID)
	switch {
	case err == nil:
	case core.IsNotFound(err):
		current = core.NewActorState(spec, cmd.ActorID, now)
	default:
		return core.TransitionResult{}, err
	}

	eval, err := machine.Execute(spec, current, cmd.Event, cmd.Data)
	if err != nil {
		e.recordFailed(ctx, cmd, current, now, time.Since(start), err)
		return core.TransitionResult{}, err
	}

	next := current
	next.State = eval.To
	next.Context = eval.Context
	next.Version = current.Version + 1
	next.UpdatedAt = now

	entry := core.AuditEntry{
		ID:        core.NewID(),
		Timestamp: now,
		ActorType: cmd.ActorType,
		ActorID:   cmd.ActorID,
		Event:     cmd.Event,
		From:      current.State,
		To:        eval.To,
		Actor:     cmd.Actor,
		Data:      cmd.Data,
		Action:    eval.Action,
		Result:    core.AuditSuccess,
		Duration:  time.Since(start),
	}

	if err := e.store.Save(ctx, next, entry, current.Version); err != nil {
		return core.TransitionResult{}, err
	}

	e.record(ctx, entry)
	e.logger.Debug("transition committed",
		"actor_type", cmd.ActorType, "actor_id", cmd.ActorID,
		"event", cmd.Event, "from", current.State, "to", eval.To,
		"version", next.Version)

	return core.TransitionResult{To: eval.To, NewContext: eval.Context, State: next}, nil
}

// Query returns the persisted snapshot of an actor. It additionally checks
// that the persisted state name is still defined by the current spec,
// guarding against spec evolution after persistence.
func (e *Engine) Query(ctx context.Context, actorType, actorID string) (core.ActorState, error) {
	spec, err := e.registry.Get(actorType)
	if err != nil {
		return core.ActorState{}, err
	}
	state, err := e.store.Load(ctx, actorType, actorID)
	if err != nil {
		return core.ActorState{}, err
	}
	if !spec.HasState(state.State) {
		return core.ActorState{}, &core.InvalidStateError{ActorType: actorType, ActorID: actorID, State: state.State}
	}
	return state, nil
}

// List returns all actors of a type matching the filter.
func (e *Engine) List(ctx context.Context, actorType string, filter core.Filter) ([]core.ActorState, error) {
	if _, err := e.registry.Get(actorType); err != nil {
		return nil, err
	}
	return e.store.Query(ctx, actorType, filter)
}

// History returns the audit trail of an actor, newest-first.
func (e *Engine) History(ctx context.Context, actorType, actorID string, limit, offset int) ([]core.AuditEntry, error) {
	return e.store.History(ctx, actorType, actorID, limit, offset)
}

// CanTransition answers whether event could fire right now, evaluating the
// guard but not the action and persisting nothing. For an unseen actor id
// the check runs against the implicit initial state, mirroring what Execute
// would do.
func (e *Engine) CanTransition(ctx context.Context, actorType, actorID, event string) (core.Decision, error) {
	spec, err := e.registry.Get(actorType)
	if err != nil {
		return core.Decision{}, err
	}
	current, err := e.store.Load(ctx, actorType, actorID)
	switch {
	case err == nil:
	case core.IsNotFound(err):
		current = core.NewActorState(spec, actorID, e.now())
	default:
		return core.Decision{}, err
	}
	return machine.Probe(spec, current, event), nil
}

// GetSpec is a passthrough to the registry.
func (e *Engine) GetSpec(actorType string) (*core.ActorSpec, error) {
	return e.registry.Get(actorType)
}

// record hands a committed entry to the secondary recorder. Recorder
// failures are logged, never propagated: the commit already happened.
func (e *Engine) record(ctx context.Context, entry core.AuditEntry) {
	if err := e.recorder.Record(ctx, entry); err != nil {
		e.logger.Warn("audit recorder failed", "entry_id", entry.ID, "error", err)
	}
}

// recordFailed surfaces a rejected command to the secondary recorder only.
// Failed attempts never reach store history, keeping replay input exactly
// the set of committed transitions.
func (e *Engine) recordFailed(ctx context.Context, cmd core.Command, current core.ActorState, now time.Time, elapsed time.Duration, cause error) {
	entry := core.AuditEntry{
		ID:        core.NewID(),
		Timestamp: now,
		ActorType: cmd.ActorType,
		ActorID:   cmd.ActorID,
		Event:     cmd.Event,
		From:      current.State,
		Actor:     cmd.Actor,
		Data:      cmd.Data,
		Result:    core.AuditFailed,
		Error:     cause.Error(),
		Duration:  elapsed,
	}
	e.record(ctx, entry)
}
