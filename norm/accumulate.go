package norm

import (
	"math"
	"sync/atomic"

	"gonum.org/v1/gonum/floats"

	"github.com/phil-mansfield/mdnorm/grid"
	"github.com/phil-mansfield/mdnorm/norm/geom"
)

// passBuffer holds the float64 bit patterns of one pass's normalization so
// that detectors on different goroutines can add to the same cell without
// locks.
type passBuffer []uint64

// add atomically adds w to cell i.
func (p passBuffer) add(i int, w float64) {
	addr := &p[i]
	for {
		old := atomic.LoadUint64(addr)
		sum := math.Float64bits(math.Float64frombits(old) + w)
		if atomic.CompareAndSwapUint64(addr, old, sum) {
			return
		}
	}
}

// reset zeroes the buffer. It must not be called while a pass is running.
func (p passBuffer) reset() {
	for i := range p {
		p[i] = 0
	}
}

// floatsAt converts the buffer to float64s, writing them to out.
func (p passBuffer) floatsAt(out []float64) []float64 {
	for i := range p {
		out[i] = math.Float64frombits(p[i])
	}
	return out
}

// merge folds one pass into the running result. The first contribution
// initializes dst.
func merge(dst, pass []float64, first bool) {
	if first {
		copy(dst, pass)
	} else {
		floats.Add(dst, pass)
	}
}

// accumulator deposits segment weights into the cells containing the
// segments' midpoints.
//
// accumulators should not be shared between threads.
type accumulator struct {
	g      *grid.Grid
	cache  *grid.AxisCache
	energy []int

	direct  bool
	ei, e2k float64
	pos     []float64
}

func newAccumulator(g *grid.Grid, cache *grid.AxisCache, e2k float64) *accumulator {
	a := &accumulator{
		g: g, cache: cache, e2k: e2k, pos: make([]float64, g.Dims()),
	}
	for i := range g.Axes {
		if g.Axes[i].Role == grid.EnergyAxis {
			a.energy = append(a.energy, i)
		}
	}
	return a
}

// setPass sets the values which are fixed for a whole pass: the
// measurement mode, the incident energy, and the logged aux values, which
// are given in the order of cache.AuxIdx.
func (a *accumulator) setPass(direct bool, ei float64, aux []float64) {
	a.direct, a.ei = direct, ei
	for i, ax := range a.cache.AuxIdx {
		a.pos[ax] = aux[i]
	}
	for _, ax := range a.energy {
		a.pos[ax] = 0
	}
}

// deposit adds ws[i] to the cell containing the midpoint of xs[i] and
// xs[i+1]. Midpoints outside the grid are dropped.
func (a *accumulator) deposit(
	xs []geom.Intersection, ws []float64, buf passBuffer,
) {
	q := &a.cache.QIdx
	for i, w := range ws {
		if w == 0 {
			continue
		}

		x0, x1 := &xs[i].X, &xs[i+1].X
		a.pos[q[0]] = (x0[0] + x1[0]) / 2
		a.pos[q[1]] = (x0[1] + x1[1]) / 2
		a.pos[q[2]] = (x0[2] + x1[2]) / 2

		if a.direct && len(a.energy) > 0 {
			k := (xs[i].K + xs[i+1].K) / 2
			e := a.ei - k*k/a.e2k
			for _, ax := range a.energy {
				a.pos[ax] = e
			}
		}

		idx := a.g.Index(a.pos)
		if idx == grid.NoIndex {
			continue
		}
		buf.add(idx, w)
	}
}
