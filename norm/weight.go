package norm

import (
	"github.com/phil-mansfield/mdnorm/math/interpolate"
	"github.com/phil-mansfield/mdnorm/norm/geom"
)

// Integrator converts a detector's sorted intersections into the weights of
// the segments between them.
type Integrator interface {
	// Weights writes the weight of the segment between xs[i] and xs[i+1]
	// to out[i] for every i < len(xs) - 1, growing out if needed, and
	// returns it. det is the detector's index in the DetectorTable.
	// Segments which are too short to be trusted get a weight of zero.
	Weights(xs []geom.Intersection, det int, out []float64) []float64
}

// diffractionIntegrator weights segments by the flux which reached the
// sample between their end momenta.
//
// Integrators hold per-pass state and should not be shared between threads.
type diffractionIntegrator struct {
	flux  []*interpolate.Cumulative
	solid []float64
	eps   float64

	charge float64
	fs     []float64
}

func (d *diffractionIntegrator) Weights(
	xs []geom.Intersection, det int, out []float64,
) []float64 {
	out = resize(out, len(xs)-1)
	if len(out) == 0 {
		return out
	}

	flux := d.flux[det]
	d.fs = resize(d.fs, len(xs))
	for i := range xs {
		d.fs[i] = flux.Eval(xs[i].K)
	}

	scale := d.solid[det] * d.charge
	for i := range out {
		if xs[i+1].K-xs[i].K < d.eps {
			out[i] = 0
			continue
		}
		out[i] = (d.fs[i+1] - d.fs[i]) * scale
	}
	return out
}

// directIntegrator weights segments by the energy-transfer width between
// their end momenta.
//
// Integrators hold per-pass state and should not be shared between threads.
type directIntegrator struct {
	solid []float64
	e2k   float64
	eps   float64

	charge float64
}

func (d *directIntegrator) Weights(
	xs []geom.Intersection, det int, out []float64,
) []float64 {
	out = resize(out, len(xs)-1)

	scale := d.solid[det] * d.charge / d.e2k
	for i := range out {
		k0, k1 := xs[i].K, xs[i+1].K
		dk2 := k1*k1 - k0*k0
		if dk2/d.e2k < d.eps {
			out[i] = 0
			continue
		}
		out[i] = scale * dk2
	}
	return out
}

func resize(x []float64, n int) []float64 {
	if n < 0 {
		n = 0
	}
	if cap(x) >= n {
		return x[:n]
	}
	return make([]float64, n)
}
