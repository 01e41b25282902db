package norm

import (
	"fmt"
	"math"

	"github.com/phil-mansfield/mdnorm/math/interpolate"
	"github.com/phil-mansfield/mdnorm/math/mat"
)

// DetectorTable lists the geometry of every detector of an instrument.
// Angles are in radians: TwoTheta is measured from the beam and Azimuthal
// around it.
type DetectorTable struct {
	IDs       []int
	TwoTheta  []float64
	Azimuthal []float64
	Monitor   []bool
	Masked    []bool
}

// GeometryProvider supplies detector geometry.
type GeometryProvider interface {
	Detectors() (*DetectorTable, error)
}

// Len returns the number of detectors.
func (t *DetectorTable) Len() int { return len(t.IDs) }

// Detectors lets a DetectorTable act as its own GeometryProvider. It
// returns an error if the table's columns have different lengths.
func (t *DetectorTable) Detectors() (*DetectorTable, error) {
	n := len(t.IDs)
	if len(t.TwoTheta) != n || len(t.Azimuthal) != n {
		return nil, fmt.Errorf("The detector table has %d IDs, %d scattering "+
			"angles, and %d azimuthal angles.",
			n, len(t.TwoTheta), len(t.Azimuthal))
	}
	if (t.Monitor != nil && len(t.Monitor) != n) ||
		(t.Masked != nil && len(t.Masked) != n) {
		return nil, fmt.Errorf("The detector table has %d IDs, but %d "+
			"monitor flags and %d mask flags.",
			n, len(t.Monitor), len(t.Masked))
	}
	return t, nil
}

// usable returns false for detectors which never contribute.
func (t *DetectorTable) usable(i int) bool {
	if t.Monitor != nil && t.Monitor[i] {
		return false
	}
	if t.Masked != nil && t.Masked[i] {
		return false
	}
	return !math.IsNaN(t.TwoTheta[i]) && !math.IsNaN(t.Azimuthal[i])
}

// Calibration holds per-detector calibration data.
type Calibration struct {
	// SolidAngle maps detector IDs to solid angles. A nil map gives every
	// detector a solid angle of 1. Detectors missing from a non-nil map are
	// skipped.
	SolidAngle map[int]float64
	// Flux holds cumulative flux curves as a function of momentum. It is
	// required in diffraction mode and unused in direct geometry.
	Flux []*interpolate.Cumulative
	// FluxIndex maps detector IDs to an index in Flux. If it is nil, a
	// single curve is shared by all detectors, and otherwise there must be
	// one curve per detector in table order.
	FluxIndex map[int]int
}

// solidAngles returns the solid angle of each detector in table order.
func (c *Calibration) solidAngles(dets *DetectorTable) []float64 {
	out := make([]float64, dets.Len())
	for i, id := range dets.IDs {
		if c == nil || c.SolidAngle == nil {
			out[i] = 1
		} else {
			out[i] = c.SolidAngle[id]
		}
	}
	return out
}

// fluxCurves returns the flux curve of each detector in table order.
func (c *Calibration) fluxCurves(
	dets *DetectorTable,
) ([]*interpolate.Cumulative, error) {
	if c == nil || len(c.Flux) == 0 {
		return nil, &MissingDataError{"a flux curve"}
	}
	for i := range c.Flux {
		if c.Flux[i] == nil {
			return nil, &MissingDataError{fmt.Sprintf("flux curve %d", i)}
		}
	}

	out := make([]*interpolate.Cumulative, dets.Len())
	switch {
	case c.FluxIndex != nil:
		for i, id := range dets.IDs {
			j, ok := c.FluxIndex[id]
			if !ok {
				if !dets.usable(i) {
					continue
				}
				return nil, &MissingDataError{fmt.Sprintf(
					"a flux curve for detector %d", id)}
			} else if j < 0 || j >= len(c.Flux) {
				return nil, fmt.Errorf("Detector %d is mapped to flux curve "+
					"%d, but there are only %d curves.", id, j, len(c.Flux))
			}
			out[i] = c.Flux[j]
		}
	case len(c.Flux) == 1:
		for i := range out {
			out[i] = c.Flux[0]
		}
	case len(c.Flux) == dets.Len():
		copy(out, c.Flux)
	default:
		return nil, fmt.Errorf("There are %d flux curves for %d detectors "+
			"and no map between them.", len(c.Flux), dets.Len())
	}

	return out, nil
}

// ExperimentInfo is the metadata of one run contributing to the grid.
type ExperimentInfo struct {
	Name string
	// Goniometer is the sample rotation and UB the lattice matrix, which
	// includes the factor of 2 pi.
	Goniometer, UB *mat.Matrix3
	// ProtonCharge scales every weight. Zero is treated as 1.
	ProtonCharge float64

	// Ei is the incident energy in meV, required in direct geometry.
	Ei float64
	// KMin and KMax bound the momenta measured in diffraction mode. If both
	// are zero the flux curves' range is used.
	KMin, KMax float64
	// EMin and EMax bound the energy transfers measured in direct geometry.
	// If both are zero the grid's energy axis is used.
	EMin, EMax float64
	// Lower and Upper optionally give the measured range of each detector
	// in table order: momentum in diffraction mode, energy transfer in
	// direct geometry.
	Lower, Upper []float64

	// Aux holds the logged values binned by the grid's aux axes.
	Aux map[string]float64
}

func (e *ExperimentInfo) charge() float64 {
	if e.ProtonCharge == 0 {
		return 1
	}
	return e.ProtonCharge
}

// validate returns a configuration error if the experiment cannot be used
// at all.
func (e *ExperimentInfo) validate(mode Mode, dets *DetectorTable) error {
	if e.Goniometer == nil {
		return &MissingCalibrationError{e.Name, "goniometer matrix"}
	}
	if e.UB == nil {
		return &MissingCalibrationError{e.Name, "UB matrix"}
	}
	if mode == Direct && !(e.Ei > 0) {
		return &MissingCalibrationError{e.Name, "incident energy"}
	}
	if e.ProtonCharge < 0 {
		return fmt.Errorf("The experiment '%s' has negative proton charge "+
			"%g.", e.Name, e.ProtonCharge)
	}

	if (e.Lower != nil || e.Upper != nil) &&
		(len(e.Lower) != dets.Len() || len(e.Upper) != dets.Len()) {
		return fmt.Errorf("The experiment '%s' has %d lower limits and %d "+
			"upper limits, but there are %d detectors.",
			e.Name, len(e.Lower), len(e.Upper), dets.Len())
	}
	return nil
}
