// Package store provides SQLite-backed storage for compiled results,
// batch runs and exact-synthesis table files.
//
// # Patterns
//
// Content-addressed results
//   - results are keyed by ir.TargetID, which covers the target and the
//     search parameters that affect the answer
//   - rows are written with ON CONFLICT DO NOTHING and never updated
//
// Logical ordering
//   - runs and table artifacts carry a seq INTEGER assigned by the store
//   - ordering uses seq, never timestamps
//
// Exact values as text
//   - gate components can exceed 2^53 and are stored as decimal strings
//   - floats are stored as shortest round-trip decimals
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Open checks each setting took effect. The schema version lives in
// user_version; databases from a newer build are refused with
// ErrSchemaTooNew.
package store
