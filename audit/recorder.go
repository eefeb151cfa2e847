package audit

import (
	"context"

	"github.com/hupe1980/actormesh/core"
	"github.com/hupe1980/actormesh/logging"
)

// Recorder receives audit entries after the engine has decided their fate:
// committed entries arrive after the atomic save, failed attempts arrive
// instead of any persistence. Implementations must tolerate duplicate
// delivery and must not assume ordering across actors.
type Recorder interface {
	Record(ctx context.Context, entry core.AuditEntry) error
}

// NopRecorder discards every entry. The engine default.
type NopRecorder struct{}

// Record implements Recorder.
func (NopRecorder) Record(context.Context, core.AuditEntry) error { return nil }

// LogRecorder writes every entry to a structured logger, useful as a
// lightweight compliance trail for failed attempts that never reach store
// history.
type LogRecorder struct {
	Logger logging.Logger
}

// NewLogRecorder constructs a LogRecorder, substituting NoOp for nil.
func NewLogRecorder(logger logging.Logger) *LogRecorder {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &LogRecorder{Logger: logger}
}

// Record implements Recorder.
func (r *LogRecorder) Record(_ context.Context, entry core.AuditEntry) error {
	args := []any{
		"entry_id", entry.ID,
		"actor_type", entry.ActorType,
		"actor_id", entry.ActorID,
		"event", entry.Event,
		"from", entry.From,
		"result", string(entry.Result),
		"duration", entry.Duration,
	}
	if entry.Result == core.AuditSuccess {
		r.Logger.Info("audit", append(args, "to", entry.To)...)
	} else {
		r.Logger.Warn("audit", append(args, "error", entry.Error)...)
	}
	return nil
}

// MultiRecorder fans entries out to several recorders, returning the first
// error encountered after all recorders ran.
type MultiRecorder []Recorder

// Record implements Recorder.
func (m MultiRecorder) Record(ctx context.Context, entry core.AuditEntry) error {
	var first error
	for _, r := range m {
		if err := r.Record(ctx, entry); err != nil && first == nil {
			first = err
		}
	}
	return first
}
