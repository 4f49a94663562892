// Package store provides SQLite-backed persistence for merged collections.
//
// Each saved aggregate is a run:
//   - Runs: UUIDv7 id, insertion seq, config and collection digests
//   - Axes: histogram templates, one row per axis, keyed by template digest
//   - Objects: one row per collection key with its kind and counters
//   - Bins: the non-empty bins of histogram objects
//
// # Critical Patterns
//
// Deterministic reads:
//   - Runs are listed ORDER BY seq ASC, id ASC COLLATE BINARY
//   - Objects and bins are read in key and index order
//
// Verified round trip:
//   - LoadCollection recomputes the collection digest and fails if it
//     differs from the one recorded at save time
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
