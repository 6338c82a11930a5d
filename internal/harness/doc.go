// Package harness runs batch synthesis jobs.
//
// # Job Format
//
// Jobs are YAML files with the following structure:
//
//	name: rotations
//	description: "Small Z rotations"
//	epsilon: 0.001            # default for approximate targets
//	targets:
//	  - name: pi/8
//	    kind: angle
//	    theta: 0.39269908169872414
//	    expect:
//	      max_t_count: 40
//	      max_distance: 0.001
//	  - kind: direction
//	    re: 0.6
//	    im: 0.8
//	    epsilon: 0.01
//	  - kind: gates
//	    gates: "HTHT"
//	    expect:
//	      gates: "HTHT"
//	  - kind: angle
//	    theta: 0.3
//	    expect:
//	      no_solution: true
//
// Unknown fields are rejected.
//
// # Execution
//
// Targets compile concurrently, bounded by the runner's concurrency.
// Items in the report keep the order of the job's targets. A target that
// fails to compile, or whose result violates an expectation, fails its
// item and not the run.
//
// With a store, each run is recorded with its items, compiled results are
// saved, and results already stored under a target's ID are reused.
//
// # Deterministic Testing
//
// Reports have a canonical JSON snapshot for golden comparison. Tests
// use testutil.SequentialRunIDs so that run IDs are stable.
package harness
