package core

import "time"

// AuditResult classifies an audit entry.
type AuditResult string

const (
	// AuditSuccess marks a committed transition.
	AuditSuccess AuditResult = "success"
	// AuditFailed marks an attempt that never mutated state. Failed entries
	// are only ever emitted to secondary recorders, never to store history.
	AuditFailed AuditResult = "failed"
)

// AuditEntry is an immutable record of one attempted or committed
// transition. Entries are append-only and ordered; history queries return
// them newest-first.
//
// Action records the name of the action applied so replay can verify that
// the spec in force still resolves the same function.
type AuditEntry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	ActorType string         `json:"actor_type"`
	ActorID   string         `json:"actor_id"`
	Event     string         `json:"event"`
	From      string         `json:"from"`
	To        string         `json:"to,omitempty"`
	Actor     string         `json:"actor,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Action    string         `json:"action,omitempty"`
	Result    AuditResult    `json:"result"`
	Error     string         `json:"error,omitempty"`
	Duration  time.Duration  `json:"duration"`
}
