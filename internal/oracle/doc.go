// Package oracle decides whether a local-ring element is a sum of two
// squares and constructs the decomposition when it is.
//
// The construction factors the rational norm, classifies each prime by its
// residue mod 8, lifts it to Z[ω] with Tonelli–Shanks and a Euclidean gcd,
// and multiplies the pieces together. Negative answers are plain boolean
// results; only broken preconditions are errors.
package oracle
