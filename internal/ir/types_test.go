package ir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetValidate(t *testing.T) {
	tests := []struct {
		name    string
		target  Target
		wantErr bool
	}{
		{"angle", Target{Kind: KindAngle, Theta: 0.3, Epsilon: 0.01}, false},
		{"direction", Target{Kind: KindDirection, Re: 0, Im: 1, Epsilon: 0.1}, false},
		{"gates", Target{Kind: KindGates, Gates: "HTH"}, false},
		{"gates ignore epsilon", Target{Kind: KindGates}, false},
		{"unknown kind", Target{Kind: "rotation", Epsilon: 0.1}, true},
		{"zero direction", Target{Kind: KindDirection, Epsilon: 0.1}, true},
		{"nan theta", Target{Kind: KindAngle, Theta: math.NaN(), Epsilon: 0.1}, true},
		{"inf direction", Target{Kind: KindDirection, Re: math.Inf(1), Epsilon: 0.1}, true},
		{"missing epsilon", Target{Kind: KindAngle, Theta: 1}, true},
		{"epsilon too large", Target{Kind: KindAngle, Theta: 1, Epsilon: 1.5}, true},
		{"smallest epsilon", Target{Kind: KindAngle, Theta: 1, Epsilon: MinEpsilon}, false},
		{"epsilon too small", Target{Kind: KindAngle, Theta: 1, Epsilon: 1e-11}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.target.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTarget)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTargetDirection(t *testing.T) {
	d := Target{Kind: KindAngle, Theta: math.Pi / 2}.Direction()
	assert.InDelta(t, 0, real(d), 1e-15)
	assert.InDelta(t, 1, imag(d), 1e-15)

	assert.Equal(t, complex(3, -4), Target{Kind: KindDirection, Re: 3, Im: -4}.Direction())
}

func TestResultCanonical(t *testing.T) {
	r := Result{
		TargetID: "id",
		Target:   Target{Kind: KindAngle, Theta: 0.5, Epsilon: 0.1},
		Gates:    "HT",
		Length:   2,
		TCount:   1,
		HCount:   1,
		Depth:    3,
		SDE:      2,
		Phase:    5,
		Distance: 0.05,
	}
	for i := range r.Components {
		r.Components[i] = "0"
	}
	got, err := MarshalCanonical(r.Canonical())
	require.NoError(t, err)
	assert.Equal(t,
		`{"components":["0","0","0","0","0","0","0","0","0","0","0","0"],"depth":3,"distance":"0.05","exact":false,`+
			`"gates":"HT","h_count":1,"length":2,"phase":5,"sde":2,"t_count":1,`+
			`"target":{"epsilon":"0.1","kind":"angle","theta":"0.5"},"target_id":"id"}`,
		string(got))
}
