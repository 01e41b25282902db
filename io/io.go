/*package io reads the text tables which describe an instrument and its
calibration, the [experiment] files which describe individual runs, and
reads and writes normalization tables.

Tables are whitespace-separated columns with '#' comments:

	detector file:    ID  2theta(deg)  phi(deg)  monitor(0/1)  masked(0/1)
	flux file:        spectrum  k(1/A)  cumulative flux
	flux map file:    ID  spectrum
	solid angle file: ID  solid angle
	limits file:      ID  lower  upper
*/
package io

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/phil-mansfield/mdnorm/cmd/catalog"
	"github.com/phil-mansfield/mdnorm/math/interpolate"
	"github.com/phil-mansfield/mdnorm/norm"
)

// ReadDetectors reads a detector file. Angles are converted to radians.
func ReadDetectors(fname string) (*norm.DetectorTable, error) {
	icols, fcols, err := catalog.ReadFile(fname, []int{0, 3, 4}, []int{1, 2})
	if err != nil {
		return nil, err
	}

	n := len(icols[0])
	if n == 0 {
		return nil, fmt.Errorf("The detector file %s is empty.", fname)
	}

	dets := &norm.DetectorTable{
		IDs:       icols[0],
		TwoTheta:  make([]float64, n),
		Azimuthal: make([]float64, n),
		Monitor:   make([]bool, n),
		Masked:    make([]bool, n),
	}
	seen := make(map[int]bool, n)
	for i := 0; i < n; i++ {
		id := dets.IDs[i]
		if seen[id] {
			return nil, fmt.Errorf(
				"Detector %d appears twice in %s.", id, fname,
			)
		}
		seen[id] = true

		dets.TwoTheta[i] = fcols[0][i] * math.Pi / 180
		dets.Azimuthal[i] = fcols[1][i] * math.Pi / 180
		dets.Monitor[i] = icols[1][i] != 0
		dets.Masked[i] = icols[2][i] != 0
	}

	return dets, nil
}

// ReadFlux reads a flux file holding one or more cumulative flux spectra.
// Rows of each spectrum must be sorted by momentum. spectra maps the
// spectrum numbers used in the file to indices of the returned curves,
// which are in order of first appearance.
func ReadFlux(fname string) (
	curves []*interpolate.Cumulative, spectra map[int]int, err error,
) {
	icols, fcols, err := catalog.ReadFile(fname, []int{0}, []int{1, 2})
	if err != nil {
		return nil, nil, err
	}

	ids, ks, fs := icols[0], fcols[0], fcols[1]
	if len(ids) == 0 {
		return nil, nil, fmt.Errorf("The flux file %s is empty.", fname)
	}

	spectra = map[int]int{}
	var kGroups, fGroups [][]float64
	for i, id := range ids {
		j, ok := spectra[id]
		if !ok {
			j = len(kGroups)
			spectra[id] = j
			kGroups, fGroups = append(kGroups, nil), append(fGroups, nil)
		}
		kGroups[j] = append(kGroups[j], ks[i])
		fGroups[j] = append(fGroups[j], fs[i])
	}

	curves = make([]*interpolate.Cumulative, len(kGroups))
	for id, j := range spectra {
		curves[j], err = interpolate.NewCumulative(kGroups[j], fGroups[j])
		if err != nil {
			return nil, nil, fmt.Errorf(
				"Spectrum %d in %s is invalid: %w", id, fname, err,
			)
		}
	}

	return curves, spectra, nil
}

// ReadFluxMap reads a file which assigns a flux spectrum to each detector
// and returns a map from detector ID to curve index. spectra is the map
// returned by ReadFlux.
func ReadFluxMap(fname string, spectra map[int]int) (map[int]int, error) {
	icols, _, err := catalog.ReadFile(fname, []int{0, 1}, nil)
	if err != nil {
		return nil, err
	}

	out := make(map[int]int, len(icols[0]))
	for i, id := range icols[0] {
		j, ok := spectra[icols[1][i]]
		if !ok {
			return nil, fmt.Errorf(
				"Detector %d in %s uses spectrum %d, which is not in "+
					"the flux file.", id, fname, icols[1][i],
			)
		}
		out[id] = j
	}
	return out, nil
}

// ReadSolidAngles reads a solid angle file into a map from detector ID to
// solid angle.
func ReadSolidAngles(fname string) (map[int]float64, error) {
	icols, fcols, err := catalog.ReadFile(fname, []int{0}, []int{1})
	if err != nil {
		return nil, err
	}

	out := make(map[int]float64, len(icols[0]))
	for i, id := range icols[0] {
		if fcols[0][i] < 0 {
			return nil, fmt.Errorf(
				"Detector %d in %s has negative solid angle %g.",
				id, fname, fcols[0][i],
			)
		}
		out[id] = fcols[0][i]
	}
	return out, nil
}

// ReadLimits reads a limits file and returns the lower and upper limits of
// every detector in table order. Detectors missing from the file get an
// empty range and are skipped.
func ReadLimits(fname string, dets *norm.DetectorTable) (
	lower, upper []float64, err error,
) {
	icols, fcols, err := catalog.ReadFile(fname, []int{0}, []int{1, 2})
	if err != nil {
		return nil, nil, err
	}

	idx := make(map[int]int, dets.Len())
	for i, id := range dets.IDs {
		idx[id] = i
	}

	lower = make([]float64, dets.Len())
	upper = make([]float64, dets.Len())
	for i, id := range icols[0] {
		j, ok := idx[id]
		if !ok {
			return nil, nil, fmt.Errorf(
				"Detector %d in %s is not in the detector file.", id, fname,
			)
		}
		lower[j], upper[j] = fcols[0][i], fcols[1][i]
	}

	return lower, upper, nil
}

// ReadCalibration assembles a norm.Calibration from the given files. Empty
// file names leave the corresponding field nil.
func ReadCalibration(fluxFile, fluxMapFile, solidAngleFile string) (
	*norm.Calibration, error,
) {
	calib := &norm.Calibration{}
	var err error

	if fluxFile != "" {
		var spectra map[int]int
		calib.Flux, spectra, err = ReadFlux(fluxFile)
		if err != nil {
			return nil, err
		}
		if fluxMapFile != "" {
			calib.FluxIndex, err = ReadFluxMap(fluxMapFile, spectra)
			if err != nil {
				return nil, err
			}
		}
	} else if fluxMapFile != "" {
		return nil, fmt.Errorf(
			"A flux map file, %s, was given without a flux file.", fluxMapFile,
		)
	}

	if solidAngleFile != "" {
		calib.SolidAngle, err = ReadSolidAngles(solidAngleFile)
		if err != nil {
			return nil, err
		}
	}

	return calib, nil
}

// relative resolves fname against the directory of the file which named it.
func relative(fname, from string) string {
	if fname == "" || filepath.IsAbs(fname) {
		return fname
	}
	return filepath.Join(filepath.Dir(from), fname)
}
