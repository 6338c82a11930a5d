// Package grid solves the approximation problem for single-qubit
// rotations: given a unit direction d and a distance ε, find an exact
// Clifford+T gate whose top-left entry u lies within the cap
// Re(u·d̄) ≥ 1 − ε²/2 of the unit disc.
//
// Candidates u = ((a + b√2) + i(c + d√2))/√2ᵏ are enumerated per exponent k
// as lattice points inside a 4-D ellipsoid bounding the cap and the unit
// disc for the Galois conjugate. The lattice is LLL-reduced, the nearest
// point to the ellipsoid center is found with Babai's algorithm, and
// integer shells around it are searched in parallel. Each candidate that
// lands in the region is completed to a gate by the two-squares oracle.
//
// The ellipsoid, the reduction and the nearest-plane step run in math/big
// at a precision that grows with k and with log(1/ε), so epsilon down to
// ir.MinEpsilon is searched without float64 rounding moving the cap. Only
// the per-offset ellipsoid test uses float64; every candidate is then
// checked exactly. A depth whose reduction fails is skipped, not fatal.
package grid
