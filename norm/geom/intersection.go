package geom

import (
	"cmp"
	"math"
	"slices"
	"sort"

	"github.com/phil-mansfield/mdnorm/grid"
)

// Tolerances are the numerical thresholds used while intersecting
// trajectories with the grid.
type Tolerances struct {
	// Parallel is the smallest change in a grid coordinate across a
	// trajectory for it to be swept against that axis's edges.
	Parallel float64
	// HKL is the slack allowed on grid extents in reciprocal lattice units,
	// and the smallest momentum step between diffraction intersections.
	HKL float64
	// Energy is the smallest energy step, in meV, between direct-geometry
	// intersections.
	Energy float64
}

// DefaultTolerances returns the tolerances used unless overridden.
func DefaultTolerances() Tolerances {
	return Tolerances{Parallel: 1e-10, HKL: 1e-7, Energy: 1e-10}
}

// Intersection is a point where a trajectory crosses a bin edge of the grid,
// or one of its endpoints.
type Intersection struct {
	// X holds the three Q coordinates of the point in grid order.
	X [3]float64
	// K is the final momentum at the point.
	K float64
}

// Workspace holds the scratch space used to find intersections. Its buffer
// is reused between detectors.
//
// Workspaces should not be shared between threads.
type Workspace struct {
	Tol Tolerances
	buf []Intersection
}

// NewWorkspace creates a Workspace with the given tolerances.
func NewWorkspace(tol Tolerances) *Workspace {
	return &Workspace{Tol: tol, buf: make([]Intersection, 0, 64)}
}

// Intersections returns every point where tr crosses a bin edge of the grid
// described by cache, together with the trajectory's endpoints if they are
// inside the grid. The result is sorted by K and no two points are closer
// than the mode's tolerance. It is empty if the trajectory misses the grid.
//
// The returned slice is owned by the Workspace and is overwritten by the next
// call.
func (w *Workspace) Intersections(
	tr *Trajectory, cache *grid.AxisCache,
) []Intersection {
	w.buf = w.buf[:0]
	kSpan := tr.KHi - tr.KLo
	if !(kSpan > 0) {
		return w.buf
	}

	start, end := tr.At(tr.KLo), tr.At(tr.KHi)
	for a := 0; a < 3; a++ {
		w.sweepAxis(a, tr, cache, start, end, kSpan)
	}

	if tr.Direct && cache.HasEnergy() {
		w.sweepEnergy(tr, cache)
	}

	if cache.InsideQ(start, w.Tol.HKL) {
		w.buf = append(w.buf, Intersection{X: start, K: tr.KLo})
	}
	if cache.InsideQ(end, w.Tol.HKL) {
		w.buf = append(w.buf, Intersection{X: end, K: tr.KHi})
	}

	slices.SortStableFunc(w.buf, func(a, b Intersection) int {
		return cmp.Compare(a.K, b.K)
	})

	w.buf = w.dedupe(tr, w.buf)
	return w.buf
}

// sweepAxis adds the crossings of Q axis a's edges which lie inside the
// other two axes' extents.
func (w *Workspace) sweepAxis(
	a int, tr *Trajectory, cache *grid.AxisCache,
	start, end [3]float64, kSpan float64,
) {
	cs, ce := start[a], end[a]
	if math.Abs(cs-ce) <= w.Tol.Parallel {
		return
	}
	lo, hi := cs, ce
	if lo > hi {
		lo, hi = hi, lo
	}

	b, c := (a+1)%3, (a+2)%3
	edges := cache.Q[a]
	for i := sort.SearchFloat64s(edges, lo); i < len(edges); i++ {
		e := edges[i]
		if e <= lo {
			continue
		} else if e >= hi {
			break
		}

		t := (e - cs) / (ce - cs)
		var x [3]float64
		x[a] = e
		x[b] = start[b] + t*(end[b]-start[b])
		x[c] = start[c] + t*(end[c]-start[c])

		if x[b] < cache.QMin[b]-w.Tol.HKL || x[b] > cache.QMax[b]+w.Tol.HKL ||
			x[c] < cache.QMin[c]-w.Tol.HKL || x[c] > cache.QMax[c]+w.Tol.HKL {
			continue
		}

		w.buf = append(w.buf, Intersection{X: x, K: tr.KLo + t*kSpan})
	}
}

// sweepEnergy adds the points where a direct-geometry trajectory crosses an
// energy-transfer edge inside the Q extents of the grid.
func (w *Workspace) sweepEnergy(tr *Trajectory, cache *grid.AxisCache) {
	eLo, eHi := tr.EnergyTransfer(tr.KHi), tr.EnergyTransfer(tr.KLo)
	for _, e := range cache.Energy {
		if e <= eLo || e >= eHi {
			continue
		}

		k := tr.FinalMomentum(e)
		if k <= tr.KLo || k >= tr.KHi {
			continue
		}
		x := tr.At(k)
		if cache.InsideQ(x, w.Tol.HKL) {
			w.buf = append(w.buf, Intersection{X: x, K: k})
		}
	}
}

// dedupe removes points which are within tolerance of the point before them
// in place.
func (w *Workspace) dedupe(tr *Trajectory, xs []Intersection) []Intersection {
	if len(xs) < 2 {
		return xs
	}

	n := 1
	for i := 1; i < len(xs); i++ {
		prev := xs[n-1].K
		var near bool
		if tr.Direct {
			near = (xs[i].K*xs[i].K-prev*prev)/tr.EnergyToK < w.Tol.Energy
		} else {
			near = xs[i].K-prev < w.Tol.HKL
		}

		if !near {
			xs[n] = xs[i]
			n++
		}
	}
	return xs[:n]
}
