package norm

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync/atomic"

	"gonum.org/v1/gonum/floats"

	"github.com/phil-mansfield/mdnorm/grid"
	"github.com/phil-mansfield/mdnorm/logging"
	"github.com/phil-mansfield/mdnorm/math/interpolate"
	"github.com/phil-mansfield/mdnorm/math/mat"
	"github.com/phil-mansfield/mdnorm/norm/geom"
	"github.com/phil-mansfield/mdnorm/symmetry"
)

// State is the stage a Normalizer is in.
type State int32

const (
	Idle State = iota
	PerExperimentInfo
	PerSymmetryOperation
	Accumulating
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case PerExperimentInfo:
		return "PerExperimentInfo"
	case PerSymmetryOperation:
		return "PerSymmetryOperation"
	case Accumulating:
		return "Accumulating"
	case Done:
		return "Done"
	}
	panic("Impossible")
}

// Result is the output of a normalization.
type Result struct {
	// Signal holds one normalization value per grid cell, first axis
	// varying fastest.
	Signal []float64
	// Edges are the bin edges of each grid axis.
	Edges [][]float64
	// Passes is the number of (experiment, operation) pairs accumulated
	// and Skipped the number which were skipped.
	Passes, Skipped int
}

// Total returns the sum of the normalization over every cell.
func (r *Result) Total() float64 { return floats.Sum(r.Signal) }

// Normalizer accumulates the normalization of a fixed grid and instrument
// over any number of experiments.
type Normalizer struct {
	cfg   Config
	g     *grid.Grid
	cache *grid.AxisCache
	w     mat.Matrix3
	ops   []symmetry.Operation

	dets           *DetectorTable
	solid          []float64
	flux           []*interpolate.Cumulative
	fluxLo, fluxHi float64

	workers []*worker
	state   atomic.Int32
}

// worker is the scratch space of one goroutine.
type worker struct {
	ws      *geom.Workspace
	tr      geom.Trajectory
	integ   Integrator
	diff    *diffractionIntegrator
	direct  *directIntegrator
	acc     *accumulator
	weights []float64
}

// pass is everything that is fixed while the detectors of one
// (experiment, operation) pair are processed.
type pass struct {
	tf     *geom.Transform
	exp    *ExperimentInfo
	lo, hi float64
	aux    []float64
	buf    passBuffer
}

// New checks the configuration and inputs of a normalization and prepares
// it to run. ops is the list of symmetry operations to fold over; an empty
// list means the identity alone. All configuration errors are reported
// here or at the start of Run, before any detector is processed.
func New(
	cfg Config, g *grid.Grid, geo GeometryProvider,
	calib *Calibration, ops []symmetry.Operation,
) (*Normalizer, error) {
	if err := cfg.check(); err != nil {
		return nil, err
	}
	if g == nil {
		return nil, &MissingDataError{"an output grid"}
	}
	if geo == nil {
		return nil, &MissingDataError{"detector geometry"}
	}

	cache, err := g.Cache()
	if err != nil {
		return nil, fmt.Errorf("%w: %s",
			&MissingDataError{"a grid with three Q axes"}, err.Error())
	}
	w, err := g.Projection()
	if err != nil {
		return nil, err
	}
	if err := geom.CheckProjection(w); err != nil {
		return nil, err
	}

	dets, err := geo.Detectors()
	if err != nil {
		return nil, fmt.Errorf("Could not read detector geometry: %w", err)
	}

	if len(ops) == 0 {
		ops = []symmetry.Operation{symmetry.Identity()}
	}

	n := &Normalizer{
		cfg: cfg, g: g, cache: cache, w: w, ops: ops, dets: dets,
		solid: calib.solidAngles(dets),
	}

	if cfg.Mode == Diffraction {
		n.flux, err = calib.fluxCurves(dets)
		if err != nil {
			return nil, err
		}
		n.fluxLo, n.fluxHi = math.Inf(+1), math.Inf(-1)
		for _, f := range n.flux {
			if f != nil {
				n.fluxLo = math.Min(n.fluxLo, f.Min())
				n.fluxHi = math.Max(n.fluxHi, f.Max())
			}
		}
	}

	n.initWorkers()
	return n, nil
}

func (n *Normalizer) initWorkers() {
	workers := n.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n.dets.Len() {
		workers = n.dets.Len()
	}
	if workers < 1 {
		workers = 1
	}

	n.workers = make([]*worker, workers)
	for i := range n.workers {
		w := &worker{
			ws:  geom.NewWorkspace(n.cfg.Tol),
			acc: newAccumulator(n.g, n.cache, n.cfg.EnergyToK),
		}
		switch n.cfg.Mode {
		case Diffraction:
			w.diff = &diffractionIntegrator{
				flux: n.flux, solid: n.solid, eps: n.cfg.Tol.HKL,
			}
			w.integ = w.diff
		case Direct:
			w.direct = &directIntegrator{
				solid: n.solid, e2k: n.cfg.EnergyToK, eps: n.cfg.Tol.Energy,
			}
			w.integ = w.direct
		}
		n.workers[i] = w
	}
}

// State returns the stage the Normalizer is currently in.
func (n *Normalizer) State() State { return State(n.state.Load()) }

func (n *Normalizer) setState(s State) { n.state.Store(int32(s)) }

// Run accumulates the normalization of every experiment under every
// symmetry operation. If prev is non-nil, it is a normalization from an
// earlier Run on the same grid and the result is added to it.
//
// Experiments whose aux values or measured range fall outside the grid are
// skipped with a warning. Run stops early and returns ctx.Err() if ctx is
// cancelled. Run should not be called from multiple goroutines at once.
func (n *Normalizer) Run(
	ctx context.Context, exps []*ExperimentInfo, prev []float64,
) (*Result, error) {
	n.setState(Idle)
	if prev != nil && len(prev) != n.g.Size() {
		return nil, fmt.Errorf("The previous normalization has %d cells, "+
			"but the grid has %d.", len(prev), n.g.Size())
	}
	for _, exp := range exps {
		if exp == nil {
			return nil, &MissingDataError{"non-nil experiments"}
		}
		if err := n.validate(exp); err != nil {
			return nil, err
		}
	}

	res := &Result{Signal: make([]float64, n.g.Size()), Edges: n.g.Edges()}
	first := true
	if prev != nil {
		copy(res.Signal, prev)
		first = false
	}

	buf := make(passBuffer, n.g.Size())
	scratch := make([]float64, n.g.Size())
	total, done := len(exps)*len(n.ops), 0
	timer := logging.NewTimer()

	for _, exp := range exps {
		n.setState(PerExperimentInfo)
		p := &pass{exp: exp, buf: buf}
		if reason := n.passRange(p); reason != "" {
			logging.Warnf("Skipping experiment '%s': %s", exp.Name, reason)
			res.Skipped += len(n.ops)
			done += len(n.ops)
			n.progress(done, total)
			continue
		}

		for _, op := range n.ops {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			n.setState(PerSymmetryOperation)
			tf, err := geom.NewTransform(*exp.Goniometer, *exp.UB, op, n.w)
			if err != nil {
				return nil, fmt.Errorf("Experiment '%s', operation %s: %w",
					exp.Name, op, err)
			}
			p.tf = tf

			n.setState(Accumulating)
			buf.reset()
			n.runPass(ctx, p)
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			merge(res.Signal, buf.floatsAt(scratch), first)
			first = false
			res.Passes++
			done++
			n.progress(done, total)

			logging.Performancef("Pass %d/%d (%s, %s): %s. %s", done, total,
				exp.Name, op, timer.Lap(), logging.MemString())
		}
	}

	logging.Debugf("Accumulated %d passes and skipped %d in %s.",
		res.Passes, res.Skipped, timer.Total())
	n.setState(Done)
	return res, nil
}

func (n *Normalizer) progress(done, total int) {
	if n.cfg.Progress != nil {
		n.cfg.Progress(done, total)
	}
}

func (n *Normalizer) validate(exp *ExperimentInfo) error {
	if err := exp.validate(n.cfg.Mode, n.dets); err != nil {
		return err
	}
	if n.cfg.Mode == Direct && exp.EMin == 0 && exp.EMax == 0 &&
		!n.cache.HasEnergy() {
		return &MissingCalibrationError{exp.Name, "energy-transfer range"}
	}
	return nil
}

// passRange sets the experiment-wide range and aux values of p. If the
// experiment cannot contribute to the grid, the reason is returned.
func (n *Normalizer) passRange(p *pass) (reason string) {
	exp := p.exp

	p.aux = p.aux[:0]
	for i, log := range n.cache.AuxLog {
		v, ok := exp.Aux[log]
		if !ok {
			return fmt.Sprintf("it has no logged value of '%s'", log)
		}
		ax := &n.g.Axes[n.cache.AuxIdx[i]]
		if !ax.Contains(v, n.g.Tolerance) {
			return fmt.Sprintf("its value of '%s', %g, is outside the "+
				"grid's range [%g, %g]", log, v, ax.Min(), ax.Max())
		}
		p.aux = append(p.aux, v)
	}

	switch n.cfg.Mode {
	case Diffraction:
		p.lo, p.hi = n.fluxLo, n.fluxHi
		if exp.KMin != 0 || exp.KMax != 0 {
			p.lo, p.hi = math.Max(p.lo, exp.KMin), math.Min(p.hi, exp.KMax)
		}
		if !(p.hi > p.lo) {
			return fmt.Sprintf("its momentum range [%g, %g] does not "+
				"overlap the flux range [%g, %g]",
				exp.KMin, exp.KMax, n.fluxLo, n.fluxHi)
		}
	case Direct:
		p.lo, p.hi = exp.EMin, exp.EMax
		if exp.EMin == 0 && exp.EMax == 0 {
			p.lo, p.hi = n.cache.EnergyMin(), n.cache.EnergyMax()
		} else if n.cache.HasEnergy() {
			p.lo = math.Max(p.lo, n.cache.EnergyMin())
			p.hi = math.Min(p.hi, n.cache.EnergyMax())
		}
		p.hi = math.Min(p.hi, exp.Ei)
		if !(p.hi > p.lo) {
			return fmt.Sprintf("its energy-transfer range [%g, %g] does "+
				"not overlap the grid or lies above Ei = %g",
				exp.EMin, exp.EMax, exp.Ei)
		}
	}
	return ""
}

// runPass spreads the detectors over the workers and blocks until they are
// all finished.
func (n *Normalizer) runPass(ctx context.Context, p *pass) {
	for _, w := range n.workers {
		w.setPass(n.cfg.Mode, p)
	}

	workers := len(n.workers)
	out := make(chan int, workers)
	for i := 0; i < workers-1; i++ {
		go n.detectorLoop(ctx, p, n.workers[i], i, workers, out)
	}
	n.detectorLoop(ctx, p, n.workers[workers-1], workers-1, workers, out)

	for i := 0; i < workers; i++ {
		<-out
	}
}

func (w *worker) setPass(mode Mode, p *pass) {
	charge := p.exp.charge()
	switch mode {
	case Diffraction:
		w.diff.charge = charge
	case Direct:
		w.direct.charge = charge
	}
	w.acc.setPass(mode == Direct, p.exp.Ei, p.aux)
}

// detectorLoop processes detectors offset, offset + workers, ... and sends
// offset to out when it is done.
func (n *Normalizer) detectorLoop(
	ctx context.Context, p *pass, w *worker,
	offset, workers int, out chan<- int,
) {
	dets, exp := n.dets, p.exp
	direct := n.cfg.Mode == Direct

	for i := offset; i < dets.Len(); i += workers {
		select {
		case <-ctx.Done():
			out <- offset
			return
		default:
		}

		if !dets.usable(i) || !(n.solid[i] > 0) {
			continue
		}

		lo, hi := p.lo, p.hi
		if !direct {
			f := n.flux[i]
			if f == nil {
				continue
			}
			lo, hi = math.Max(lo, f.Min()), math.Min(hi, f.Max())
		}
		if exp.Lower != nil {
			lo, hi = math.Max(lo, exp.Lower[i]), math.Min(hi, exp.Upper[i])
		}
		if !(hi > lo) {
			continue
		}

		if direct {
			w.tr.InitDirect(p.tf, n.cfg.Convention, dets.TwoTheta[i],
				dets.Azimuthal[i], exp.Ei, lo, hi, n.cfg.EnergyToK)
		} else {
			w.tr.InitDiffraction(p.tf, n.cfg.Convention, dets.TwoTheta[i],
				dets.Azimuthal[i], lo, hi)
		}

		xs := w.ws.Intersections(&w.tr, n.cache)
		if len(xs) < 2 {
			continue
		}
		w.weights = w.integ.Weights(xs, i, w.weights)
		w.acc.deposit(xs, w.weights, p.buf)
	}

	out <- offset
}
