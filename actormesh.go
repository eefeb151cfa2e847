// Package actormesh provides a high-level façade over the spec registry,
// the orchestration engine and the audit replayer, enabling rapid
// construction of statechart-driven actor systems. Most applications
// interact with this package by:
//  1. Creating an ActorMesh via New() (optionally overriding the default
//     in-memory store, recorder and logger)
//  2. Registering one or more actor specs (programmatic or YAML-defined)
//  3. Issuing commands (Execute) and reads (Query, List, History,
//     CanTransition, Replay)
//
// The façade delegates orchestration to engine.Engine while keeping setup
// and usage ergonomics concise. All defaults are safe for local development
// and testing; production deployments typically supply a durable store
// (see store/sqlite) and a structured logger.
package actormesh

import (
	"context"
	"io"
	"time"

	"github.com/hupe1980/actormesh/audit"
	"github.com/hupe1980/actormesh/core"
	"github.com/hupe1980/actormesh/engine"
	"github.com/hupe1980/actormesh/logging"
	"github.com/hupe1980/actormesh/registry"
	"github.com/hupe1980/actormesh/store"
)

// Options configures the ActorMesh instance.
type Options struct {
	// Store persists actor state and audit history (defaults to the
	// in-memory implementation if not provided).
	Store core.Store

	// Recorder receives secondary copies of audit entries, including failed
	// attempts that never reach store history (defaults to no-op).
	Recorder audit.Recorder

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger

	// Now overrides the commit clock; mainly for tests.
	Now func() time.Time
}

// ActorMesh is the high-level façade aggregating the registry, engine and
// replayer.
type ActorMesh struct {
	registry *registry.Registry
	engine   *engine.Engine
	replayer *audit.Replayer
}

// New creates a new ActorMesh instance with optional overrides. Any unset
// dependency is initialized with a safe default.
func New(optFns ...func(o *Options)) *ActorMesh {
	opts := Options{
		Store:    store.NewInMemoryStore(),
		Recorder: audit.NopRecorder{},
		Logger:   logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	reg := registry.New()
	eng := engine.New(reg, func(o *engine.Options) {
		o.Store = opts.Store
		o.Recorder = opts.Recorder
		o.Logger = opts.Logger
		if opts.Now != nil {
			o.Now = opts.Now
		}
	})

	return &ActorMesh{
		registry: reg,
		engine:   eng,
		replayer: audit.NewReplayer(reg, opts.Store),
	}
}

// RegisterSpec validates and registers an actor spec.
func (m *ActorMesh) RegisterSpec(spec *core.ActorSpec) error {
	return m.registry.Register(spec)
}

// RegisterSpecYAML parses a declarative spec definition, binds the given
// guard/action tables and registers the result.
func (m *ActorMesh) RegisterSpecYAML(src io.Reader, guards map[string]core.Guard, actions map[string]core.Action) (*core.ActorSpec, error) {
	return m.registry.LoadYAML(src, guards, actions)
}

// Execute applies one event to one actor, creating the actor implicitly on
// its first successful command.
func (m *ActorMesh) Execute(ctx context.Context, cmd core.Command) (core.TransitionResult, error) {
	return m.engine.Execute(ctx, cmd)
}

// Query returns the persisted snapshot of an actor.
func (m *ActorMesh) Query(ctx context.Context, actorType, actorID string) (core.ActorState, error) {
	return m.engine.Query(ctx, actorType, actorID)
}

// List returns all actors of a type matching the filter.
func (m *ActorMesh) List(ctx context.Context, actorType string, filter core.Filter) ([]core.ActorState, error) {
	return m.engine.List(ctx, actorType, filter)
}

// History returns an actor's audit trail, newest-first.
func (m *ActorMesh) History(ctx context.Context, actorType, actorID string, limit, offset int) ([]core.AuditEntry, error) {
	return m.engine.History(ctx, actorType, actorID, limit, offset)
}

// CanTransition checks transition feasibility without side effects.
func (m *ActorMesh) CanTransition(ctx context.Context, actorType, actorID, event string) (core.Decision, error) {
	return m.engine.CanTransition(ctx, actorType, actorID, event)
}

// GetSpec resolves an actor type to its registered spec.
func (m *ActorMesh) GetSpec(actorType string) (*core.ActorSpec, error) {
	return m.engine.GetSpec(actorType)
}

// Replay reconstructs an actor's state from its audit trail. A zero upTo
// replays the full history and must match Query for an unchanged spec.
func (m *ActorMesh) Replay(ctx context.Context, actorType, actorID string, upTo time.Time) (core.ActorState, error) {
	return m.replayer.Replay(ctx, actorType, actorID, upTo)
}
