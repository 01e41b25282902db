/*package interpolate contains lookup structures for tabulated curves and
binned axes.
*/
package interpolate

import (
	"fmt"
)

// Cumulative interpolates a monotonically non-decreasing curve, such as the
// integrated neutron flux as a function of momentum.
//
// Below the first abscissa the curve is 0, above the last it is the final
// ordinate, at an abscissa it is exactly the tabulated ordinate, and
// between abscissas it is linearly interpolated.
type Cumulative struct {
	xs Searcher
	vals []float64
}

// NewCumulative creates a Cumulative curve which takes on the values vals
// at the strictly increasing points xs. An error is returned if the inputs
// do not describe a non-decreasing curve.
func NewCumulative(xs, vals []float64) (*Cumulative, error) {
	if len(xs) != len(vals) {
		return nil, fmt.Errorf("The curve has %d abscissas but %d ordinates.",
			len(xs), len(vals))
	} else if len(xs) < 2 {
		return nil, fmt.Errorf("The curve has %d points, but at least two "+
			"are required.", len(xs))
	}

	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return nil, fmt.Errorf("Abscissa %d of the curve, %g, is not "+
				"larger than the abscissa before it, %g.", i, xs[i], xs[i-1])
		}
		if vals[i] < vals[i-1] {
			return nil, fmt.Errorf("Ordinate %d of the curve, %g, is smaller "+
				"than the ordinate before it, %g.", i, vals[i], vals[i-1])
		}
	}

	c := &Cumulative{vals: vals}
	c.xs.Init(xs)
	return c, nil
}

// Eval returns the value of the curve at x.
func (c *Cumulative) Eval(x float64) float64 {
	i := c.xs.Search(x)
	if i < 0 {
		return 0
	} else if i >= c.xs.n-1 {
		return c.vals[c.xs.n-1]
	}

	x1 := c.xs.xs[i]
	if x == x1 {
		return c.vals[i]
	}
	x2 := c.xs.xs[i+1]
	v1, v2 := c.vals[i], c.vals[i+1]
	return v1 + (v2-v1)*((x-x1)/(x2-x1))
}

// EvalAll evaluates the curve at every value in xs and writes the results
// to out, which is grown if it is too short. out is returned for
// convenience.
func (c *Cumulative) EvalAll(xs, out []float64) []float64 {
	if cap(out) < len(xs) {
		out = make([]float64, len(xs))
	}
	out = out[:len(xs)]
	for i, x := range xs {
		out[i] = c.Eval(x)
	}
	return out
}

// Min returns the smallest abscissa of the curve.
func (c *Cumulative) Min() float64 { return c.xs.Min() }

// Max returns the largest abscissa of the curve.
func (c *Cumulative) Max() float64 { return c.xs.Max() }

// Total returns the final ordinate of the curve.
func (c *Cumulative) Total() float64 { return c.vals[len(c.vals)-1] }
