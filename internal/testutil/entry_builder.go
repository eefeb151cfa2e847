package testutil

import (
	"time"

	"github.com/hupe1980/actormesh/core"
)

// EntryBuilder helps construct audit entries with fluent chaining for tests.
// Example:
//
//	entry := NewEntryBuilder("traffic-light", "tl-1", "TICK").
//		From("red").To("green").At(ts).Build()
type EntryBuilder struct {
	entry core.AuditEntry
}

// NewEntryBuilder creates a builder for a successful entry of the given
// actor and event.
func NewEntryBuilder(actorType, actorID, event string) *EntryBuilder {
	return &EntryBuilder{entry: core.AuditEntry{
		ID:        core.NewID(),
		ActorType: actorType,
		ActorID:   actorID,
		Event:     event,
		Result:    core.AuditSuccess,
	}}
}

// From sets the source state (chainable).
func (b *EntryBuilder) From(state string) *EntryBuilder {
	b.entry.From = state
	return b
}

// To sets the target state (chainable).
func (b *EntryBuilder) To(state string) *EntryBuilder {
	b.entry.To = state
	return b
}

// At sets the timestamp (chainable).
func (b *EntryBuilder) At(ts time.Time) *EntryBuilder {
	b.entry.Timestamp = ts
	return b
}

// Data sets the command payload (chainable).
func (b *EntryBuilder) Data(data map[string]any) *EntryBuilder {
	b.entry.Data = data
	return b
}

// Failed marks the entry as a failed attempt with the given error text
// (chainable).
func (b *EntryBuilder) Failed(errText string) *EntryBuilder {
	b.entry.Result = core.AuditFailed
	b.entry.To = ""
	b.entry.Error = errText
	return b
}

// Build returns the assembled entry.
func (b *EntryBuilder) Build() core.AuditEntry {
	return b.entry
}
