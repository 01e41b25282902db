package geom

import (
	"math"
)

// Convention selects the sign of momentum transfer.
type Convention int

const (
	// Inelastic uses Q = k_i - k_f.
	Inelastic Convention = iota
	// Crystallography uses Q = k_f - k_i.
	Crystallography
)

func (c Convention) String() string {
	switch c {
	case Inelastic:
		return "Inelastic"
	case Crystallography:
		return "Crystallography"
	}
	panic("Impossible")
}

// Trajectory is the straight line a single detector traces through grid
// coordinates as the final momentum k_f runs over [KLo, KHi]:
//
//     x(k_f) = Offset + k_f * Slope
//
// In diffraction mode k_i = k_f, so Offset is zero. In direct geometry k_i
// is fixed by the incident energy. Trajectories are built per detector into
// worker-owned storage and never stored.
type Trajectory struct {
	Offset, Slope [3]float64
	KLo, KHi float64

	// Direct is true for direct-geometry trajectories, which also carry the
	// incident energy and the energy-to-momentum constant needed to place
	// energy-transfer planes.
	Direct bool
	Ei, EnergyToK float64
}

// DetectorDirection returns the unit vector pointing from the sample to a
// detector at scattering angle twoTheta and azimuth phi, with the beam along
// +z.
func DetectorDirection(twoTheta, phi float64) [3]float64 {
	st, ct := math.Sin(twoTheta), math.Cos(twoTheta)
	sp, cp := math.Sin(phi), math.Cos(phi)
	return [3]float64{st * cp, st * sp, ct}
}

// directions returns the beam and detector directions in grid coordinates,
// with the convention's sign applied.
func directions(
	t *Transform, conv Convention, twoTheta, phi float64,
) (qIn, qOut [3]float64) {
	qIn = t.Inverse.MultVec([3]float64{0, 0, 1})
	qOut = t.Inverse.MultVec(DetectorDirection(twoTheta, phi))
	if conv == Crystallography {
		for i := 0; i < 3; i++ {
			qIn[i], qOut[i] = -qIn[i], -qOut[i]
		}
	}
	return qIn, qOut
}

// InitDiffraction initializes an elastic trajectory for a detector over the
// momentum range [kLo, kHi].
func (tr *Trajectory) InitDiffraction(
	t *Transform, conv Convention, twoTheta, phi, kLo, kHi float64,
) {
	qIn, qOut := directions(t, conv, twoTheta, phi)
	for i := 0; i < 3; i++ {
		tr.Offset[i] = 0
		tr.Slope[i] = qIn[i] - qOut[i]
	}
	tr.KLo, tr.KHi = kLo, kHi
	tr.Direct = false
	tr.Ei, tr.EnergyToK = 0, 0
}

// InitDirect initializes a direct-geometry trajectory for a detector with
// incident energy ei. The trajectory covers energy transfers [eLo, eHi],
// which must be below ei.
func (tr *Trajectory) InitDirect(
	t *Transform, conv Convention, twoTheta, phi, ei, eLo, eHi, e2k float64,
) {
	qIn, qOut := directions(t, conv, twoTheta, phi)
	ki := math.Sqrt(e2k * ei)
	for i := 0; i < 3; i++ {
		tr.Offset[i] = ki * qIn[i]
		tr.Slope[i] = -qOut[i]
	}
	tr.KLo = math.Sqrt(e2k * (ei - eHi))
	tr.KHi = math.Sqrt(e2k * (ei - eLo))
	tr.Direct = true
	tr.Ei, tr.EnergyToK = ei, e2k
}

// At returns the grid coordinates of the trajectory at final momentum k.
func (tr *Trajectory) At(k float64) [3]float64 {
	return [3]float64{
		tr.Offset[0] + k*tr.Slope[0],
		tr.Offset[1] + k*tr.Slope[1],
		tr.Offset[2] + k*tr.Slope[2],
	}
}

// EnergyTransfer returns the energy transfer at final momentum k. It is only
// meaningful for direct-geometry trajectories.
func (tr *Trajectory) EnergyTransfer(k float64) float64 {
	return tr.Ei - k*k/tr.EnergyToK
}

// FinalMomentum returns the final momentum at energy transfer e. It is only
// meaningful for direct-geometry trajectories.
func (tr *Trajectory) FinalMomentum(e float64) float64 {
	return math.Sqrt(tr.EnergyToK * (tr.Ei - e))
}
