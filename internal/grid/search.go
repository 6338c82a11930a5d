package grid

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/cmplx"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/cliffordt/internal/lattice"
	"github.com/roach88/cliffordt/internal/oracle"
	"github.com/roach88/cliffordt/internal/ring"
)

const (
	// DefaultMaxDepth is the largest denominator exponent searched.
	DefaultMaxDepth = 60

	// DefaultMaxShellNorm caps the squared offset norm enumerated around
	// the nearest-plane point at each depth.
	DefaultMaxShellNorm = 64
)

// DepthExhaustedError is returned when no gate was found for any
// exponent up to MaxDepth.
type DepthExhaustedError struct {
	MaxDepth int
	Epsilon  float64
}

func (e *DepthExhaustedError) Error() string {
	return fmt.Sprintf("no solution found within configured depth %d (epsilon %g)", e.MaxDepth, e.Epsilon)
}

// IsDepthExhausted reports whether err wraps a *DepthExhaustedError.
func IsDepthExhausted(err error) bool {
	var de *DepthExhaustedError
	return errors.As(err, &de)
}

// Stats describes one search.
type Stats struct {
	// Depth is the denominator exponent of the returned gate.
	Depth int
	// Shell is the squared offset norm the gate was found in.
	Shell int
	// Points counts lattice points that fell inside the ellipsoid.
	Points int64
	// OracleCalls counts two-square decompositions attempted.
	OracleCalls int64
}

// Searcher finds exact gates whose top-left entry approximates a
// direction. It is safe for concurrent use.
type Searcher struct {
	maxDepth     int
	maxShellNorm int
	workers      int
	oracle       *oracle.Oracle
	reduce       func(lattice.BigMat) (lattice.Reduction, error)
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithMaxDepth sets the largest denominator exponent searched.
func WithMaxDepth(k int) Option {
	return func(s *Searcher) {
		if k >= 0 {
			s.maxDepth = k
		}
	}
}

// WithMaxShellNorm caps the shell enumeration at each depth.
func WithMaxShellNorm(n int) Option {
	return func(s *Searcher) {
		if n >= 0 {
			s.maxShellNorm = n
		}
	}
}

// WithWorkers sets how many shells are searched in parallel.
func WithWorkers(n int) Option {
	return func(s *Searcher) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithOracle replaces the default two-squares oracle.
func WithOracle(o *oracle.Oracle) Option {
	return func(s *Searcher) {
		if o != nil {
			s.oracle = o
		}
	}
}

// New creates a Searcher.
func New(opts ...Option) *Searcher {
	s := &Searcher{
		maxDepth:     DefaultMaxDepth,
		maxShellNorm: DefaultMaxShellNorm,
		workers:      runtime.GOMAXPROCS(0),
		oracle:       oracle.New(),
		reduce:       lattice.LLLReduce,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FindGateForAngle searches around the direction e^{iθ}.
func (s *Searcher) FindGateForAngle(ctx context.Context, theta, epsilon float64) (ring.Gate, Stats, error) {
	return s.FindGate(ctx, cmplx.Rect(1, theta), epsilon)
}

// FindGate returns the first gate, in order of ascending exponent, ascending
// shell and fixed in-shell order, whose top-left entry u satisfies
// Re(u·d̄) ≥ 1 − ε²/2.
func (s *Searcher) FindGate(ctx context.Context, direction complex128, epsilon float64) (ring.Gate, Stats, error) {
	region, err := NewRegion(direction, epsilon)
	if err != nil {
		return ring.Gate{}, Stats{}, err
	}

	// Points divisible by √2 at exponent k were tested at k−1, unless that
	// depth was cut short by the shell cap or skipped.
	var counters searchCounters
	skipEarlier := false
	for k := 0; k <= s.maxDepth; k++ {
		if err := ctx.Err(); err != nil {
			return ring.Gate{}, Stats{}, err
		}
		res, err := s.searchDepth(ctx, region, k, skipEarlier, &counters)
		if err != nil {
			return ring.Gate{}, Stats{}, fmt.Errorf("grid: depth %d: %w", k, err)
		}
		if res.found {
			stats := Stats{
				Depth:       k,
				Shell:       res.shell,
				Points:      counters.points.Load(),
				OracleCalls: counters.oracleCalls.Load(),
			}
			slog.Debug("grid search solved", "k", k, "shell", res.shell, "points", stats.Points, "oracle_calls", stats.OracleCalls)
			return res.gate, stats, nil
		}
		skipEarlier = res.complete
	}
	return ring.Gate{}, Stats{}, &DepthExhaustedError{MaxDepth: s.maxDepth, Epsilon: epsilon}
}

type searchCounters struct {
	points      atomic.Int64
	oracleCalls atomic.Int64
}

// depthProblem is the reduced lattice problem for one exponent. The basis
// and offset are rounded to float64 for the per-offset ellipsoid test;
// coordinates stay exact.
type depthProblem struct {
	k           int
	region      Region
	basis       lattice.Mat4
	offset      lattice.Vec4 // B·v₀ − t
	toStd       lattice.BigIntMat
	nearest     lattice.BigIntVec
	skipEarlier bool
}

// depthResult is the outcome at one exponent. complete means every shell
// that can reach the ellipsoid was searched.
type depthResult struct {
	gate     ring.Gate
	shell    int
	found    bool
	complete bool
}

func (s *Searcher) searchDepth(ctx context.Context, region Region, k int, skipEarlier bool, counters *searchCounters) (depthResult, error) {
	prec := region.precision(k)
	f := region.frame(prec)
	r := region.ellipsoid(f)
	red, err := s.reduce(r.Mul(latticeBasis(k, f)))
	if err != nil {
		slog.Debug("grid depth skipped", "k", k, "prec", prec, "error", err)
		return depthResult{}, nil
	}
	target := r.MulVec(f.center())
	point, coords := lattice.NearestPlane(red.Basis, lattice.GramSchmidt(red.Basis), target)
	p := depthProblem{
		k:           k,
		region:      region,
		basis:       red.Basis.Float64(),
		offset:      point.Sub(target).Float64(),
		toStd:       red.Transform,
		nearest:     coords,
		skipEarlier: skipEarlier,
	}

	rho := 1 + math.Sqrt(p.offset.Norm2())
	limit, complete := shellLimit(rho, lattice.SingularLowerBound(p.basis), s.maxShellNorm)
	slog.Debug("grid depth", "k", k, "prec", prec, "rho", rho, "shells", limit+1, "complete", complete)

	var best atomic.Int64
	best.Store(math.MaxInt64)
	found := make([]ring.Gate, limit+1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for n := 0; n <= limit; n++ {
		if int64(n) > best.Load() {
			break
		}
		g.Go(func() error {
			gate, ok, err := s.searchShell(gctx, p, n, &best, counters)
			if err != nil || !ok {
				return err
			}
			found[n] = gate
			for {
				cur := best.Load()
				if int64(n) >= cur || best.CompareAndSwap(cur, int64(n)) {
					return nil
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return depthResult{}, err
	}

	n := best.Load()
	if n == math.MaxInt64 {
		return depthResult{complete: complete}, nil
	}
	return depthResult{gate: found[n], shell: int(n), found: true, complete: complete}, nil
}

// shellLimit returns the largest shell that can reach the ellipsoid: an
// offset δ from the nearest-plane point stays inside only if
// ‖δ‖ ≤ rho/σ. The cap maxShellNorm applies on top; complete is false
// when it cut the enumeration short.
func shellLimit(rho, sigma float64, maxShellNorm int) (int, bool) {
	if !(sigma > 0) {
		return maxShellNorm, false
	}
	n := math.Floor((rho / sigma) * (rho / sigma))
	if n > float64(maxShellNorm) {
		return maxShellNorm, false
	}
	return int(n), true
}

// searchShell tests the offsets of squared norm n around the nearest-plane
// point in order. It gives up as soon as a smaller shell has succeeded.
func (s *Searcher) searchShell(ctx context.Context, p depthProblem, n int, best *atomic.Int64, counters *searchCounters) (ring.Gate, bool, error) {
	for i, delta := range shell(n) {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return ring.Gate{}, false, err
			}
			if best.Load() < int64(n) {
				return ring.Gate{}, false, nil
			}
		}

		if p.basis.MulIntVec(delta).Add(p.offset).Norm2() > 1 {
			continue
		}
		counters.points.Add(1)

		std := p.toStd.MulVec(p.nearest.AddOffset(delta))
		if p.skipEarlier && foundEarlier(std, p.k) {
			continue
		}
		u := candidate(std, p.k)
		if !p.region.Contains(u) {
			continue
		}

		counters.oracleCalls.Add(1)
		g, ok, err := completeGate(ctx, s.oracle, u)
		if err != nil {
			return ring.Gate{}, false, err
		}
		if ok {
			return g, true, nil
		}
	}
	return ring.Gate{}, false, nil
}
