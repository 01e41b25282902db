/*package geom contains the geometry of a normalization pass: the transform
between lab-frame momentum and grid coordinates, the straight-line
trajectory a detector traces through the grid, and the calculation of where
that trajectory crosses the grid's bin edges.
*/
package geom

import (
	"fmt"
	"math"

	"github.com/phil-mansfield/mdnorm/math/mat"
	"github.com/phil-mansfield/mdnorm/symmetry"
)

// DegenerateDeterminant is the largest |det W| for which a projection is
// considered degenerate.
const DegenerateDeterminant = 1e-10

// DegenerateProjectionError is returned when the grid's projection axes are
// coplanar or collinear.
type DegenerateProjectionError struct {
	W   mat.Matrix3
	Det float64
}

func (e *DegenerateProjectionError) Error() string {
	return fmt.Sprintf("The projection axes %v have determinant %g, so they "+
		"do not span reciprocal space.", e.W, e.Det)
}

// CheckProjection returns a *DegenerateProjectionError if w is degenerate.
func CheckProjection(w mat.Matrix3) error {
	det := w.Determinant()
	if math.Abs(det) <= DegenerateDeterminant || math.IsNaN(det) {
		return &DegenerateProjectionError{W: w, Det: det}
	}
	return nil
}

// Transform maps between lab-frame momentum transfer and grid coordinates
// for one experiment and one symmetry operation. It is immutable once built
// and may be shared between goroutines.
type Transform struct {
	// Forward = R * UB * S^-1 * W takes grid coordinates to lab momentum.
	Forward mat.Matrix3
	// Inverse takes lab momentum to grid coordinates.
	Inverse mat.Matrix3
}

// NewTransform builds the transform for the goniometer r, the lattice
// matrix ub, the symmetry operation op, and the projection w, whose columns
// are the grid's Q directions in HKL.
func NewTransform(
	r, ub mat.Matrix3, op symmetry.Operation, w mat.Matrix3,
) (*Transform, error) {
	if err := CheckProjection(w); err != nil {
		return nil, err
	}

	sInv := op.Inverse().HKL()
	t := &Transform{}
	t.Forward = r.Mult(&ub)
	t.Forward.MultAt(&sInv, &t.Forward)
	t.Forward.MultAt(&w, &t.Forward)

	inv, err := t.Forward.Invert()
	if err != nil {
		return nil, fmt.Errorf("The goniometer and UB matrices give a "+
			"singular transform: %w", err)
	}
	t.Inverse = inv
	return t, nil
}

// ToGrid converts lab-frame momentum transfer to grid coordinates.
func (t *Transform) ToGrid(q [3]float64) [3]float64 {
	return t.Inverse.MultVec(q)
}

// ToLab converts grid coordinates to lab-frame momentum transfer.
func (t *Transform) ToLab(x [3]float64) [3]float64 {
	return t.Forward.MultVec(x)
}

// AxisRotation returns the matrix which rotates counter-clockwise by angle
// radians around axis.
func AxisRotation(axis [3]float64, angle float64) mat.Matrix3 {
	n := math.Sqrt(axis[0]*axis[0] + axis[1]*axis[1] + axis[2]*axis[2])
	if n == 0 {
		panic("Rotation axis has zero length.")
	}
	x, y, z := axis[0]/n, axis[1]/n, axis[2]/n
	c, s := math.Cos(angle), math.Sin(angle)
	cc := 1 - c

	return mat.Matrix3{
		c + x*x*cc, x*y*cc - z*s, x*z*cc + y*s,
		y*x*cc + z*s, c + y*y*cc, y*z*cc - x*s,
		z*x*cc - y*s, z*y*cc + x*s, c + z*z*cc,
	}
}

// GoniometerMatrix returns the rotation of a universal goniometer with the
// angles omega, chi and phi, in radians. omega and phi rotate around the
// vertical y axis and chi around the beam axis, applied as
// R = R_y(omega) * R_z(chi) * R_y(phi).
func GoniometerMatrix(omega, chi, phi float64) mat.Matrix3 {
	rOmega := AxisRotation([3]float64{0, 1, 0}, omega)
	rChi := AxisRotation([3]float64{0, 0, 1}, chi)
	rPhi := AxisRotation([3]float64{0, 1, 0}, phi)

	r := rOmega.Mult(&rChi)
	r.MultAt(&rPhi, &r)
	return r
}
