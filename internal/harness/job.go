package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/cliffordt/internal/ir"
)

// Job is a batch of synthesis targets loaded from YAML.
type Job struct {
	// Name identifies the job in run history and golden files.
	Name string `yaml:"name"`

	Description string `yaml:"description,omitempty"`

	// Epsilon applies to approximate targets that do not set one.
	Epsilon float64 `yaml:"epsilon,omitempty"`

	Targets []JobTarget `yaml:"targets"`
}

// JobTarget is one target of a job with optional expectations.
type JobTarget struct {
	Name      string `yaml:"name,omitempty"`
	ir.Target `yaml:",inline"`

	// Expect is checked against the compiled result. If nil, any
	// successful compilation passes.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect lists properties the compiled result must have. Unset fields
// are not checked.
type Expect struct {
	Gates       *string  `yaml:"gates,omitempty"`
	MaxTCount   *int     `yaml:"max_t_count,omitempty"`
	MaxLength   *int     `yaml:"max_length,omitempty"`
	MaxDistance *float64 `yaml:"max_distance,omitempty"`

	// NoSolution expects the search to exhaust its depth. A target that
	// compiles then fails.
	NoSolution bool `yaml:"no_solution,omitempty"`
}

// LoadJob reads and parses a job YAML file.
func LoadJob(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}
	return ParseJob(data)
}

// ParseJob parses job YAML. Unknown fields are rejected so that typos
// such as "max_tcount" do not silently disable a check.
func ParseJob(data []byte) (*Job, error) {
	var job Job
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&job); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateJob(&job); err != nil {
		return nil, fmt.Errorf("invalid job: %w", err)
	}
	return &job, nil
}

// validateJob checks structure only. Target fields are validated when the
// target compiles, so one bad target fails its item and not the job.
func validateJob(j *Job) error {
	if j.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(j.Targets) == 0 {
		return fmt.Errorf("targets list is required and must be non-empty")
	}
	if j.Epsilon < 0 {
		return fmt.Errorf("epsilon must be positive")
	}
	for i, t := range j.Targets {
		if t.Kind == "" {
			return fmt.Errorf("targets[%d]: kind is required", i)
		}
		if !ir.ValidTargetKinds[t.Kind] {
			return fmt.Errorf("targets[%d]: unknown kind %q", i, t.Kind)
		}
		if e := t.Expect; e != nil && e.NoSolution {
			if t.Kind == ir.KindGates {
				return fmt.Errorf("targets[%d]: no_solution does not apply to gates targets", i)
			}
			if e.Gates != nil || e.MaxTCount != nil || e.MaxLength != nil || e.MaxDistance != nil {
				return fmt.Errorf("targets[%d]: no_solution excludes other expectations", i)
			}
		}
	}
	return nil
}

// resolve returns the target with default epsilon applied.
func (j *Job) resolve(i int, defaultEpsilon float64) ir.Target {
	t := j.Targets[i].Target
	if t.Kind != ir.KindGates && t.Epsilon == 0 {
		t.Epsilon = j.Epsilon
		if t.Epsilon == 0 {
			t.Epsilon = defaultEpsilon
		}
	}
	return t
}
