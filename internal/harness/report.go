package harness

import (
	"github.com/roach88/cliffordt/internal/ir"
)

// Report is the outcome of running a job.
type Report struct {
	RunID string `json:"run_id"`
	Job   string `json:"job"`

	// Pass is true when every item has status ok.
	Pass   bool   `json:"pass"`
	Failed int    `json:"failed"`
	Items  []Item `json:"items"`
}

// Item is the outcome of one target, at the target's index in the job.
type Item struct {
	Index    int           `json:"index"`
	Name     string        `json:"name,omitempty"`
	TargetID string        `json:"target_id,omitempty"`
	Status   ir.ItemStatus `json:"status"`

	// Result is set when the target compiled, even if an expectation
	// failed.
	Result *ir.Result `json:"result,omitempty"`
	Cached bool       `json:"cached,omitempty"`

	Failures []string `json:"failures,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// snapshot is the canonical form of r used for golden comparison. It
// leaves out fields that depend on the cache state or on floating-point
// rounding.
func (r *Report) snapshot() ir.IRObject {
	items := make(ir.IRArray, len(r.Items))
	for i, it := range r.Items {
		obj := ir.NewIRObject(
			ir.O("index", ir.IRInt(it.Index)),
			ir.O("status", ir.IRString(it.Status)),
		)
		if it.Name != "" {
			obj["name"] = ir.IRString(it.Name)
		}
		if it.TargetID != "" {
			obj["target_id"] = ir.IRString(it.TargetID)
		}
		if res := it.Result; res != nil {
			obj["gates"] = ir.IRString(res.Gates)
			obj["length"] = ir.IRInt(res.Length)
			obj["t_count"] = ir.IRInt(res.TCount)
			obj["h_count"] = ir.IRInt(res.HCount)
			obj["sde"] = ir.IRInt(res.SDE)
		}
		if len(it.Failures) > 0 {
			failures := make(ir.IRArray, len(it.Failures))
			for j, f := range it.Failures {
				failures[j] = ir.IRString(f)
			}
			obj["failures"] = failures
		}
		if it.Error != "" {
			obj["error"] = ir.IRString(it.Error)
		}
		items[i] = obj
	}
	return ir.NewIRObject(
		ir.O("run_id", ir.IRString(r.RunID)),
		ir.O("job", ir.IRString(r.Job)),
		ir.O("pass", ir.IRBool(r.Pass)),
		ir.O("failed", ir.IRInt(r.Failed)),
		ir.O("items", items),
	)
}

// MarshalSnapshot returns the canonical JSON snapshot of r.
func (r *Report) MarshalSnapshot() ([]byte, error) {
	return ir.MarshalCanonical(r.snapshot())
}
