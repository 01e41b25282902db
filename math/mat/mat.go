/*package mat contains the small fixed-size matrices used to move vectors
between the lab frame, the sample frame and the axes of an output grid.

Products and matrix-vector multiplication are written out by hand because
they sit inside per-detector loops. Inversion and determinants only happen
once per transform and are handed off to gonum.
*/
package mat

import (
	"fmt"
	"math"

	gonum "gonum.org/v1/gonum/mat"
)

// Matrix3 is a 3x3 matrix stored in row-major order.
type Matrix3 [9]float64

// Identity3 returns the 3x3 identity matrix.
func Identity3() Matrix3 {
	return Matrix3{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// NewMatrix3 creates a matrix from nine row-major values.
func NewMatrix3(vals []float64) Matrix3 {
	if len(vals) != 9 {
		panic(fmt.Sprintf("NewMatrix3 given %d values, not 9.", len(vals)))
	}
	m := Matrix3{}
	copy(m[:], vals)
	return m
}

// FromColumns creates a matrix whose columns are c0, c1, and c2.
func FromColumns(c0, c1, c2 [3]float64) Matrix3 {
	return Matrix3{
		c0[0], c1[0], c2[0],
		c0[1], c1[1], c2[1],
		c0[2], c1[2], c2[2],
	}
}

// At returns the element in row i and column j.
func (m *Matrix3) At(i, j int) float64 { return m[3*i+j] }

// Column returns column j.
func (m *Matrix3) Column(j int) [3]float64 {
	return [3]float64{m[j], m[3+j], m[6+j]}
}

// Mult returns the product m1 * m2.
func (m1 *Matrix3) Mult(m2 *Matrix3) Matrix3 {
	out := Matrix3{}
	m1.MultAt(m2, &out)
	return out
}

// MultAt writes m1 * m2 to out. out may be the same matrix as m1 or m2.
func (m1 *Matrix3) MultAt(m2, out *Matrix3) *Matrix3 {
	var tmp Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			tmp[3*i+j] = m1[3*i]*m2[j] + m1[3*i+1]*m2[3+j] + m1[3*i+2]*m2[6+j]
		}
	}
	*out = tmp
	return out
}

// MultVec returns m * v.
func (m *Matrix3) MultVec(v [3]float64) [3]float64 {
	return [3]float64{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2],
		m[3]*v[0] + m[4]*v[1] + m[5]*v[2],
		m[6]*v[0] + m[7]*v[1] + m[8]*v[2],
	}
}

// Transpose returns the transpose of m.
func (m *Matrix3) Transpose() Matrix3 {
	return Matrix3{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

// Scale returns m with every element multiplied by s.
func (m *Matrix3) Scale(s float64) Matrix3 {
	out := *m
	for i := range out {
		out[i] *= s
	}
	return out
}

// Dense copies m into a gonum matrix.
func (m *Matrix3) Dense() *gonum.Dense {
	vals := make([]float64, 9)
	copy(vals, m[:])
	return gonum.NewDense(3, 3, vals)
}

// Determinant computes the determinant of m.
func (m *Matrix3) Determinant() float64 {
	return gonum.Det(m.Dense())
}

// Invert computes the inverse of m. An error is returned if m is singular
// or too badly conditioned for the inverse to be trusted.
func (m *Matrix3) Invert() (Matrix3, error) {
	var inv gonum.Dense
	if err := inv.Inverse(m.Dense()); err != nil {
		return Matrix3{}, fmt.Errorf("matrix %v cannot be inverted: %s",
			*m, err.Error())
	}

	out := Matrix3{}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[3*i+j] = inv.At(i, j)
		}
	}
	return out, nil
}

// EqualApprox returns true if every element of m1 is within eps of the
// corresponding element of m2.
func (m1 *Matrix3) EqualApprox(m2 *Matrix3, eps float64) bool {
	for i := range m1 {
		if math.Abs(m1[i]-m2[i]) > eps {
			return false
		}
	}
	return true
}
