// Package sqlite provides a durable, SQLite-backed Store implementation.
// State upsert and audit append happen in a single transaction, and the
// compare-and-swap on version is expressed as a guarded UPDATE, so the
// contract holds even across processes sharing one database file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hupe1980/actormesh/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS actors (
    actor_type TEXT NOT NULL,
    actor_id   TEXT NOT NULL,
    state      TEXT NOT NULL,
    context    TEXT NOT NULL,
    version    INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    PRIMARY KEY (actor_type, actor_id)
);

CREATE TABLE IF NOT EXISTS audit_entries (
    id          TEXT PRIMARY KEY,
    actor_type  TEXT NOT NULL,
    actor_id    TEXT NOT NULL,
    timestamp   INTEGER NOT NULL,
    event       TEXT NOT NULL,
    from_state  TEXT NOT NULL,
    to_state    TEXT NOT NULL DEFAULT '',
    actor       TEXT NOT NULL DEFAULT '',
    data        TEXT NOT NULL DEFAULT '',
    action      TEXT NOT NULL DEFAULT '',
    result      TEXT NOT NULL,
    error       TEXT NOT NULL DEFAULT '',
    duration_us INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_actor ON audit_entries (actor_type, actor_id);
`

// Store persists actor state and audit history in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens (or creates) a SQLite store at path and ensures the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Load returns the persisted snapshot for (actorType, actorID).
func (s *Store) Load(ctx context.Context, actorType, actorID string) (core.ActorState, error) {
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT state, context, version, created_at, updated_at
		 FROM actors WHERE actor_type = ? AND actor_id = ?`,
		actorType, actorID,
	)
	var (
		state, contextJSON   string
		version              int64
		createdAt, updatedAt int64
	)
	if err := row.Scan(&state, &contextJSON, &version, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.ActorState{}, core.ErrNotFound
		}
		return core.ActorState{}, core.NewStorageError("load", err)
	}
	actorCtx, err := decodeContext(contextJSON)
	if err != nil {
		return core.ActorState{}, core.NewStorageError("load", err)
	}
	return core.ActorState{
		ID:        actorID,
		ActorType: actorType,
		State:     state,
		Context:   actorCtx,
		Version:   version,
		CreatedAt: fromMillis(createdAt),
		UpdatedAt: fromMillis(updatedAt),
	}, nil
}

// Save commits the snapshot and its audit entry in one transaction. The
// UPDATE is guarded by the base version; zero affected rows on an existing
// actor means another writer won the race.
func (s *Store) Save(ctx context.Context, state core.ActorState, entry core.AuditEntry, baseVersion int64) error {
	contextJSON, err := encodeContext(state.Context)
	if err != nil {
		return core.NewStorageError("save", err)
	}
	dataJSON, err := encodeData(entry.Data)
	if err != nil {
		return core.NewStorageError("save", err)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return core.NewStorageError("save", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(
		ctx,
		`UPDATE actors SET state = ?, context = ?, version = ?, updated_at = ?
		 WHERE actor_type = ? AND actor_id = ? AND version = ?`,
		state.State, contextJSON, state.Version, toMillis(state.UpdatedAt),
		state.ActorType, state.ID, baseVersion,
	)
	if err != nil {
		return core.NewStorageError("save", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.NewStorageError("save", err)
	}
	if affected == 0 {
		// Either the actor is new, or a concurrent commit moved the version.
		var current int64
		err := tx.QueryRowContext(
			ctx,
			`SELECT version FROM actors WHERE actor_type = ? AND actor_id = ?`,
			state.ActorType, state.ID,
		).Scan(&current)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if baseVersion != 0 {
				return core.NewStorageError("save", core.ErrConflict)
			}
			if _, err := tx.ExecContext(
				ctx,
				`INSERT INTO actors (actor_type, actor_id, state, context, version, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				state.ActorType, state.ID, state.State, contextJSON, state.Version,
				toMillis(state.CreatedAt), toMillis(state.UpdatedAt),
			); err != nil {
				return core.NewStorageError("save", err)
			}
		case err != nil:
			return core.NewStorageError("save", err)
		default:
			return core.NewStorageError("save", core.ErrConflict)
		}
	}

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO audit_entries (id, actor_type, actor_id, timestamp, event, from_state, to_state, actor, data, action, result, error, duration_us)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.ActorType, entry.ActorID, toMillis(entry.Timestamp),
		entry.Event, entry.From, entry.To, entry.Actor, dataJSON, entry.Action,
		string(entry.Result), entry.Error, entry.Duration.Microseconds(),
	); err != nil {
		return core.NewStorageError("save", err)
	}

	if err := tx.Commit(); err != nil {
		return core.NewStorageError("save", err)
	}
	return nil
}

// Query returns all actors of the given type matching the filter, ordered
// by id.
func (s *Store) Query(ctx context.Context, actorType string, filter core.Filter) ([]core.ActorState, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT actor_id, state, context, version, created_at, updated_at
		 FROM actors WHERE actor_type = ? ORDER BY actor_id`,
		actorType,
	)
	if err != nil {
		return nil, core.NewStorageError("query", err)
	}
	defer func() { _ = rows.Close() }()

	var result []core.ActorState
	for rows.Next() {
		var (
			actorID, state, contextJSON string
			version                     int64
			createdAt, updatedAt        int64
		)
		if err := rows.Scan(&actorID, &state, &contextJSON, &version, &createdAt, &updatedAt); err != nil {
			return nil, core.NewStorageError("query", err)
		}
		actorCtx, err := decodeContext(contextJSON)
		if err != nil {
			return nil, core.NewStorageError("query", err)
		}
		candidate := core.ActorState{
			ID:        actorID,
			ActorType: actorType,
			State:     state,
			Context:   actorCtx,
			Version:   version,
			CreatedAt: fromMillis(createdAt),
			UpdatedAt: fromMillis(updatedAt),
		}
		if matches(candidate, filter) {
			result = append(result, candidate)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStorageError("query", err)
	}
	return result, nil
}

// History returns audit entries newest-first. Insertion order (rowid)
// breaks ties between entries sharing a timestamp.
func (s *Store) History(ctx context.Context, actorType, actorID string, limit, offset int) ([]core.AuditEntry, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, timestamp, event, from_state, to_state, actor, data, action, result, error, duration_us
		 FROM audit_entries WHERE actor_type = ? AND actor_id = ?
		 ORDER BY rowid DESC LIMIT ? OFFSET ?`,
		actorType, actorID, limit, offset,
	)
	if err != nil {
		return nil, core.NewStorageError("history", err)
	}
	defer func() { _ = rows.Close() }()

	result := []core.AuditEntry{}
	for rows.Next() {
		var (
			entry              core.AuditEntry
			timestamp, elapsed int64
			dataJSON, res      string
		)
		if err := rows.Scan(&entry.ID, &timestamp, &entry.Event, &entry.From, &entry.To,
			&entry.Actor, &dataJSON, &entry.Action, &res, &entry.Error, &elapsed); err != nil {
			return nil, core.NewStorageError("history", err)
		}
		entry.ActorType = actorType
		entry.ActorID = actorID
		entry.Timestamp = fromMillis(timestamp)
		entry.Result = core.AuditResult(res)
		entry.Duration = time.Duration(elapsed) * time.Microsecond
		if dataJSON != "" {
			if err := json.Unmarshal([]byte(dataJSON), &entry.Data); err != nil {
				return nil, core.NewStorageError("history", err)
			}
		}
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStorageError("history", err)
	}
	return result, nil
}

func encodeContext(ctx core.Context) (string, error) {
	if ctx == nil {
		ctx = core.Context{}
	}
	raw, err := json.Marshal(ctx)
	if err != nil {
		return "", fmt.Errorf("encode context: %w", err)
	}
	return string(raw), nil
}

func decodeContext(raw string) (core.Context, error) {
	var ctx core.Context
	if err := json.Unmarshal([]byte(raw), &ctx); err != nil {
		return nil, fmt.Errorf("decode context: %w", err)
	}
	if ctx == nil {
		ctx = core.Context{}
	}
	return ctx, nil
}

func encodeData(data map[string]any) (string, error) {
	if data == nil {
		return "", nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode data: %w", err)
	}
	return string(raw), nil
}

func matches(state core.ActorState, filter core.Filter) bool {
	if filter.State != "" && state.State != filter.State {
		return false
	}
	for k, want := range filter.Context {
		got, ok := state.Context[k]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}
