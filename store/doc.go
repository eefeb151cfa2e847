// Package store contains concrete Store implementations. The Store contract
// itself lives in the core package: depend on core.Store in your code and
// select an implementation (the in-memory store below, or store/sqlite for
// durability) at wiring time.
//
// Rationale: keeps the persistence contract centralized while allowing
// pluggable backends to be added without introducing dependency cycles.
package store
