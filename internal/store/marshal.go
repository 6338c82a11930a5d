package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/cliffordt/internal/ir"
)

// marshalTarget converts a target to canonical JSON TEXT for storage.
func marshalTarget(t ir.Target) (string, error) {
	data, err := ir.MarshalCanonical(t.Canonical())
	if err != nil {
		return "", fmt.Errorf("marshal target: %w", err)
	}
	return string(data), nil
}

// marshalComponents converts the 12 exact components to a canonical JSON
// array of decimal strings. Components may exceed 2^53, so they are never
// stored as JSON numbers.
func marshalComponents(c [12]string) (string, error) {
	arr := make(ir.IRArray, len(c))
	for i, s := range c {
		arr[i] = ir.IRString(s)
	}
	data, err := ir.MarshalCanonical(arr)
	if err != nil {
		return "", fmt.Errorf("marshal components: %w", err)
	}
	return string(data), nil
}

// storedTarget mirrors ir.Target.Canonical, where floats are strings.
type storedTarget struct {
	Kind    string `json:"kind"`
	Theta   string `json:"theta"`
	Re      string `json:"re"`
	Im      string `json:"im"`
	Gates   string `json:"gates"`
	Epsilon string `json:"epsilon"`
}

func unmarshalTarget(data string) (ir.Target, error) {
	var st storedTarget
	if err := json.Unmarshal([]byte(data), &st); err != nil {
		return ir.Target{}, fmt.Errorf("unmarshal target: %w", err)
	}
	t := ir.Target{Kind: ir.TargetKind(st.Kind), Gates: st.Gates}
	for _, f := range []struct {
		src string
		dst *float64
	}{
		{st.Theta, &t.Theta},
		{st.Re, &t.Re},
		{st.Im, &t.Im},
		{st.Epsilon, &t.Epsilon},
	} {
		if f.src == "" {
			continue
		}
		v, err := ir.ParseFloat(ir.IRString(f.src))
		if err != nil {
			return ir.Target{}, fmt.Errorf("unmarshal target: %w", err)
		}
		*f.dst = v
	}
	return t, nil
}

func unmarshalComponents(data string) ([12]string, error) {
	var out [12]string
	var arr []string
	if err := json.Unmarshal([]byte(data), &arr); err != nil {
		return out, fmt.Errorf("unmarshal components: %w", err)
	}
	if len(arr) != len(out) {
		return out, fmt.Errorf("unmarshal components: got %d values, want %d", len(arr), len(out))
	}
	copy(out[:], arr)
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
