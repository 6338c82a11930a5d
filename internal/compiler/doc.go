// Package compiler is the synthesis pipeline. It validates a target,
// finds an exact gate for it (directly for gate-string targets, through
// the grid search for angle and direction targets), synthesizes the gate
// string and reports its statistics and operator-norm distance.
package compiler
