package ir

import (
	"errors"
	"fmt"
	"math"
)

// TargetKind selects how a Target names the unitary to synthesize.
type TargetKind string

const (
	// KindAngle targets the direction e^{iθ}.
	KindAngle TargetKind = "angle"

	// KindDirection targets an arbitrary complex direction (re, im).
	KindDirection TargetKind = "direction"

	// KindGates targets the exact gate of an H/T string.
	KindGates TargetKind = "gates"
)

// ValidTargetKinds lists the accepted kinds.
var ValidTargetKinds = map[TargetKind]bool{
	KindAngle:     true,
	KindDirection: true,
	KindGates:     true,
}

// MinEpsilon is the smallest supported distance. Each tenfold decrease in
// epsilon costs about five denominator exponents, and 1e-10 is reached
// well inside the default depth limit of 60.
const MinEpsilon = 1e-10

// ErrInvalidTarget wraps every Target validation failure.
var ErrInvalidTarget = errors.New("invalid target")

// Target is one synthesis request.
type Target struct {
	Kind    TargetKind `json:"kind" yaml:"kind"`
	Theta   float64    `json:"theta,omitempty" yaml:"theta,omitempty"`
	Re      float64    `json:"re,omitempty" yaml:"re,omitempty"`
	Im      float64    `json:"im,omitempty" yaml:"im,omitempty"`
	Gates   string     `json:"gates,omitempty" yaml:"gates,omitempty"`
	Epsilon float64    `json:"epsilon,omitempty" yaml:"epsilon,omitempty"`
}

// Validate checks the fields required by the target's kind.
func (t Target) Validate() error {
	switch t.Kind {
	case KindAngle:
		if math.IsNaN(t.Theta) || math.IsInf(t.Theta, 0) {
			return fmt.Errorf("%w: theta must be finite", ErrInvalidTarget)
		}
	case KindDirection:
		if t.Re == 0 && t.Im == 0 {
			return fmt.Errorf("%w: direction must be nonzero", ErrInvalidTarget)
		}
		if math.IsNaN(t.Re) || math.IsNaN(t.Im) || math.IsInf(t.Re, 0) || math.IsInf(t.Im, 0) {
			return fmt.Errorf("%w: direction must be finite", ErrInvalidTarget)
		}
	case KindGates:
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidTarget, t.Kind)
	}
	if !(t.Epsilon >= MinEpsilon && t.Epsilon <= math.Sqrt2) {
		return fmt.Errorf("%w: epsilon %g not in [%g, √2]", ErrInvalidTarget, t.Epsilon, MinEpsilon)
	}
	return nil
}

// Direction returns the complex direction an approximate target aims at.
func (t Target) Direction() complex128 {
	if t.Kind == KindAngle {
		return complex(math.Cos(t.Theta), math.Sin(t.Theta))
	}
	return complex(t.Re, t.Im)
}

// Canonical returns the fields that identify t. Only the fields used by
// its kind are included.
func (t Target) Canonical() IRObject {
	obj := IRObject{"kind": IRString(t.Kind)}
	switch t.Kind {
	case KindAngle:
		obj["theta"] = Float(t.Theta)
		obj["epsilon"] = Float(t.Epsilon)
	case KindDirection:
		obj["re"] = Float(t.Re)
		obj["im"] = Float(t.Im)
		obj["epsilon"] = Float(t.Epsilon)
	case KindGates:
		obj["gates"] = IRString(t.Gates)
	}
	return obj
}

// SearchParams are the settings that change which gate a target compiles
// to. They are part of the cache key.
type SearchParams struct {
	MaxDepth     int    `json:"max_depth"`
	MaxShellNorm int    `json:"max_shell_norm"`
	FactorBudget int    `json:"factor_budget"`
	TableDigest  string `json:"table_digest"`
}

// Canonical returns the canonical form of p.
func (p SearchParams) Canonical() IRObject {
	return NewIRObject(
		O("max_depth", IRInt(p.MaxDepth)),
		O("max_shell_norm", IRInt(p.MaxShellNorm)),
		O("factor_budget", IRInt(p.FactorBudget)),
		O("table_digest", IRString(p.TableDigest)),
	)
}

// Result is a compiled target.
type Result struct {
	TargetID string `json:"target_id"`
	Target   Target `json:"target"`

	// Gates evaluates exactly to the synthesized gate; "" is the identity.
	Gates  string `json:"gates"`
	Length int    `json:"length"`
	TCount int    `json:"t_count"`
	HCount int    `json:"h_count"`

	// Depth is the denominator exponent the grid search succeeded at.
	// It is zero for exact targets.
	Depth int `json:"depth"`
	// SDE is the smallest denominator exponent of |u|².
	SDE   int `json:"sde"`
	Phase int `json:"phase"`

	// Distance is the operator-norm distance to the target unitary.
	Distance float64 `json:"distance"`
	Exact    bool    `json:"exact"`

	// Components is the exact (u, t) part of the gate.
	Components [12]string `json:"components"`
}

// Canonical returns the canonical form of r.
func (r Result) Canonical() IRObject {
	comps := make(IRArray, len(r.Components))
	for i, c := range r.Components {
		comps[i] = IRString(c)
	}
	return NewIRObject(
		O("target_id", IRString(r.TargetID)),
		O("target", r.Target.Canonical()),
		O("gates", IRString(r.Gates)),
		O("length", IRInt(r.Length)),
		O("t_count", IRInt(r.TCount)),
		O("h_count", IRInt(r.HCount)),
		O("depth", IRInt(r.Depth)),
		O("sde", IRInt(r.SDE)),
		O("phase", IRInt(r.Phase)),
		O("distance", Float(r.Distance)),
		O("exact", IRBool(r.Exact)),
		O("components", comps),
	)
}
