package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/actormesh/core"
	"github.com/hupe1980/actormesh/machine"
	"github.com/hupe1980/actormesh/registry"
)

// defaultPageSize bounds each History fetch while paging through the full
// trail.
const defaultPageSize = 256

// Replayer reconstructs actor state from the committed audit trail. As long
// as the spec and its guard/action implementations are unchanged since
// recording, Replay with no time bound reproduces the live snapshot exactly:
// same state, same context, same version, same timestamps.
type Replayer struct {
	registry *registry.Registry
	store    core.Store

	// PageSize overrides the history fetch batch size; <= 0 uses the
	// default.
	PageSize int
}

// NewReplayer constructs a Replayer over the given registry and store.
func NewReplayer(reg *registry.Registry, st core.Store) *Replayer {
	return &Replayer{registry: reg, store: st}
}

// Replay rebuilds the actor's state by re-running the transition evaluator
// over its history in chronological order, starting from the spec's initial
// state. Entries stamped after upTo are ignored when upTo is non-zero.
// Failed entries never mutated state and are skipped.
func (r *Replayer) Replay(ctx context.Context, actorType, actorID string, upTo time.Time) (core.ActorState, error) {
	spec, err := r.registry.Get(actorType)
	if err != nil {
		return core.ActorState{}, err
	}

	entries, err := r.fullHistory(ctx, actorType, actorID)
	if err != nil {
		return core.ActorState{}, err
	}

	state := core.ActorState{
		ID:        actorID,
		ActorType: actorType,
		State:     spec.Initial,
		Context:   core.Context{},
		Version:   0,
	}

	// History is newest-first; fold from the oldest entry forward.
	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		if entry.Result != core.AuditSuccess {
			continue
		}
		if !upTo.IsZero() && entry.Timestamp.After(upTo) {
			continue
		}
		eval, err := machine.Execute(spec, state, entry.Event, entry.Data)
		if err != nil {
			return core.ActorState{}, fmt.Errorf("replay %s/%s: entry %s (event %q): %w", actorType, actorID, entry.ID, entry.Event, err)
		}
		state.State = eval.To
		state.Context = eval.Context
		state.Version++
		if state.CreatedAt.IsZero() {
			state.CreatedAt = entry.Timestamp
		}
		state.UpdatedAt = entry.Timestamp
	}

	return state, nil
}

// fullHistory pages through the store until the trail is exhausted,
// preserving the store's newest-first ordering.
func (r *Replayer) fullHistory(ctx context.Context, actorType, actorID string) ([]core.AuditEntry, error) {
	pageSize := r.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	var entries []core.AuditEntry
	for offset := 0; ; offset += pageSize {
		page, err := r.store.History(ctx, actorType, actorID, pageSize, offset)
		if err != nil {
			return nil, err
		}
		entries = append(entries, page...)
		if len(page) < pageSize {
			return entries, nil
		}
	}
}
