// Package audit provides the secondary audit recording hook and the
// deterministic replay mechanism. Primary audit persistence happens inside
// the engine's atomic save; recorders here are best-effort observers
// (external indexing, compliance sinks, logs). The Replayer reconstructs an
// actor's state at any point in time by folding the pure transition
// evaluator over the committed history.
package audit
