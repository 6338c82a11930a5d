// Package synth turns exact Clifford+T gates into H/T gate strings.
//
// Synthesis lowers the smallest denominator exponent one step at a time
// by left-multiplying with H·T⁻ⁱ, looks up the remaining low-exponent gate
// in a precomputed Table, and corrects the phase exponent with trailing T
// gates. The Table is generated offline by breadth-first enumeration and
// stored in a line-oriented text format.
package synth
