package core

import (
	"errors"
	"testing"
	"time"
)

func TestContextCloneIsDeep(t *testing.T) {
	original := Context{
		"name":   "a",
		"nested": map[string]any{"k": "v"},
		"list":   []any{1, 2},
	}
	clone := original.Clone()

	clone["name"] = "b"
	clone["nested"].(map[string]any)["k"] = "changed"
	clone["list"].([]any)[0] = 99

	if original["name"] != "a" {
		t.Fatalf("top-level value leaked: %v", original)
	}
	if original["nested"].(map[string]any)["k"] != "v" {
		t.Fatalf("nested map leaked: %v", original)
	}
	if original["list"].([]any)[0] != 1 {
		t.Fatalf("nested slice leaked: %v", original)
	}
}

func TestContextCloneNil(t *testing.T) {
	var ctx Context
	clone := ctx.Clone()
	if clone == nil {
		t.Fatal("clone of nil context should be an empty, usable context")
	}
	clone["k"] = "v"
}

func TestSpecValidate(t *testing.T) {
	valid := &ActorSpec{
		ActorType: "t",
		Initial:   "a",
		States: map[string]StateNode{
			"a": {On: map[string]Transition{"GO": {Target: "b"}}},
			"b": {},
		},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid spec rejected: %v", err)
	}

	badInitial := &ActorSpec{ActorType: "t", Initial: "missing", States: map[string]StateNode{"a": {}}}
	if err := badInitial.Validate(); err == nil {
		t.Fatal("unresolvable initial state accepted")
	}

	badTarget := &ActorSpec{
		ActorType: "t",
		Initial:   "a",
		States:    map[string]StateNode{"a": {On: map[string]Transition{"GO": {Target: "nowhere"}}}},
	}
	if err := badTarget.Validate(); err == nil {
		t.Fatal("unresolvable transition target accepted")
	}
}

func TestNewActorState(t *testing.T) {
	spec := &ActorSpec{ActorType: "t", Initial: "a", States: map[string]StateNode{"a": {}}}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	state := NewActorState(spec, "id-1", now)
	if state.State != "a" || state.Version != 0 {
		t.Fatalf("unexpected initial snapshot: %+v", state)
	}
	if len(state.Context) != 0 || state.Context == nil {
		t.Fatalf("initial context must be empty, got %v", state.Context)
	}
	if !state.CreatedAt.Equal(now) || !state.UpdatedAt.Equal(now) {
		t.Fatalf("timestamps not set from now: %+v", state)
	}
}

func TestStorageErrorUnwrapsSentinels(t *testing.T) {
	conflict := NewStorageError("save", ErrConflict)
	if !IsConflict(conflict) {
		t.Fatal("wrapped conflict not detected")
	}
	if IsNotFound(conflict) {
		t.Fatal("conflict misclassified as not found")
	}

	missing := NewStorageError("load", ErrNotFound)
	if !IsNotFound(missing) {
		t.Fatal("wrapped not-found not detected")
	}

	var storageErr *StorageError
	if !errors.As(conflict, &storageErr) || storageErr.Op != "save" {
		t.Fatalf("operation context lost: %v", conflict)
	}
}

func TestTypedErrorMessages(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&SpecNotFoundError{ActorType: "order"}, `no spec registered for actor type "order"`},
		{&TransitionNotAllowedError{State: "red", Event: "GO"}, `no transition for event "GO" in state "red"`},
		{&GuardFailedError{Guard: "canApprove", Event: "APPROVE"}, `guard "canApprove" rejected event "APPROVE"`},
	}
	for _, tc := range cases {
		if tc.err.Error() != tc.want {
			t.Fatalf("got %q, want %q", tc.err.Error(), tc.want)
		}
	}
}
