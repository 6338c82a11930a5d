// Package lattice implements LLL basis reduction for 4-dimensional real
// lattices together with Babai's nearest plane algorithm.
//
// Reduction runs in math/big at a precision the caller picks when building
// the basis, so lattices whose columns differ by many orders of magnitude
// reduce without losing the small directions. It tracks an integer
// unimodular transform alongside the real basis, so a point found in
// reduced coordinates maps back to the original coordinates without
// inverting a matrix. Coordinates are big.Int and never overflow.
package lattice
