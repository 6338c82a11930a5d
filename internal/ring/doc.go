// Package ring implements the exact number tower behind Clifford+T
// unitaries: Z[√2], its localization at √2, complex numbers over that
// local ring, and exact 2×2 gates with an 8th-root-of-unity phase.
//
// The tower is a closed set of three concrete value types with explicit
// conversions between them. All values are immutable and use math/big, so
// no operation ever rounds.
package ring
