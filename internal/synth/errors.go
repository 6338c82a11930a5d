package synth

import (
	"errors"
	"fmt"
)

// InvariantError reports an exact-synthesis step that cannot fail for a
// well-formed gate and a complete table.
type InvariantError struct {
	// Code identifies the failed step.
	Code InvariantCode

	// Message is a human-readable description.
	Message string

	// SDE is the denominator exponent of the gate when the step failed.
	SDE int
}

// InvariantCode categorizes synthesis invariant violations.
type InvariantCode string

const (
	// CodeSDEMismatch means |u|² and |t|² have different denominator
	// exponents, so the input is not unitary.
	CodeSDEMismatch InvariantCode = "SDE_MISMATCH"

	// CodeDescentStuck means no H·T⁻ⁱ in the descent window lowered the
	// exponent by exactly one.
	CodeDescentStuck InvariantCode = "DESCENT_STUCK"

	// CodeTableMiss means a reduced gate was missing from the table.
	CodeTableMiss InvariantCode = "TABLE_MISS"

	// CodeNotReproduced means the synthesized string does not evaluate to
	// the input gate.
	CodeNotReproduced InvariantCode = "NOT_REPRODUCED"
)

func (e *InvariantError) Error() string {
	return fmt.Sprintf("synth: %s: %s (sde=%d)", e.Code, e.Message, e.SDE)
}

// IsInvariantError reports whether err wraps an *InvariantError with the
// given code. An empty code matches any code.
func IsInvariantError(err error, code InvariantCode) bool {
	var ie *InvariantError
	if errors.As(err, &ie) {
		return code == "" || ie.Code == code
	}
	return false
}
