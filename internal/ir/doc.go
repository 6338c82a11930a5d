// Package ir defines the records exchanged between the synthesis pipeline,
// the store, the batch harness and the CLI: Target, SearchParams and
// Result, together with their canonical JSON encoding and the
// content-addressed IDs derived from it.
//
// Key design constraints:
//   - No float values in canonical records; floats are encoded as their
//     shortest round-trip decimal string
//   - All JSON tags use snake_case
//   - ir imports nothing internal
package ir
