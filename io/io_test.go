package io

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phil-mansfield/mdnorm/grid"
	"github.com/phil-mansfield/mdnorm/norm"
)

func almostEq(x, y, eps float64) bool {
	return math.Abs(x-y) <= eps
}

func writeFile(t *testing.T, dir, name, text string) string {
	fname := filepath.Join(dir, name)
	if err := os.WriteFile(fname, []byte(text), 0644); err != nil {
		t.Fatal(err)
	}
	return fname
}

const detectorText = `# ID 2theta phi monitor masked
10  90  0   0 0
11  45  180 0 1
12  30  90  1 0
`

func TestReadDetectors(t *testing.T) {
	dir := t.TempDir()
	dets, err := ReadDetectors(writeFile(t, dir, "dets.txt", detectorText))
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}

	ids := []int{10, 11, 12}
	thetas := []float64{math.Pi / 2, math.Pi / 4, math.Pi / 6}
	phis := []float64{0, math.Pi, math.Pi / 2}
	monitor := []bool{false, false, true}
	masked := []bool{false, true, false}

	if dets.Len() != len(ids) {
		t.Fatalf("Expected %d detectors, got %d.", len(ids), dets.Len())
	}
	for i := range ids {
		if dets.IDs[i] != ids[i] {
			t.Errorf("%d) Expected ID %d, got %d.", i, ids[i], dets.IDs[i])
		}
		if !almostEq(dets.TwoTheta[i], thetas[i], 1e-12) {
			t.Errorf("%d) Expected 2theta %g, got %g.",
				i, thetas[i], dets.TwoTheta[i])
		}
		if !almostEq(dets.Azimuthal[i], phis[i], 1e-12) {
			t.Errorf("%d) Expected phi %g, got %g.",
				i, phis[i], dets.Azimuthal[i])
		}
		if dets.Monitor[i] != monitor[i] || dets.Masked[i] != masked[i] {
			t.Errorf("%d) Expected flags %v %v, got %v %v.", i,
				monitor[i], masked[i], dets.Monitor[i], dets.Masked[i])
		}
	}

	if _, err := dets.Detectors(); err != nil {
		t.Errorf("Table is inconsistent: %s", err.Error())
	}

	dup := writeFile(t, dir, "dup.txt", "1 0 0 0 0\n1 10 0 0 0\n")
	if _, err := ReadDetectors(dup); err == nil {
		t.Errorf("Expected an error for a duplicated ID.")
	}
	empty := writeFile(t, dir, "empty.txt", "# nothing\n")
	if _, err := ReadDetectors(empty); err == nil {
		t.Errorf("Expected an error for an empty file.")
	}
}

const fluxText = `# spectrum k F
7 1 0
7 2 5
7 3 12
3 1 0
3 4 1
`

func TestReadFlux(t *testing.T) {
	dir := t.TempDir()
	curves, spectra, err := ReadFlux(writeFile(t, dir, "flux.txt", fluxText))
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}

	if len(curves) != 2 || spectra[7] != 0 || spectra[3] != 1 {
		t.Fatalf("Expected spectra 7 and 3 in order, got %v.", spectra)
	}

	tests := []struct {
		curve int
		k, f  float64
	}{
		{0, 1, 0}, {0, 2, 5}, {0, 3, 12}, {0, 2.5, 8.5},
		{0, 0, 0}, {0, 10, 12},
		{1, 2.5, 0.5}, {1, 4, 1},
	}
	for i, test := range tests {
		f := curves[test.curve].Eval(test.k)
		if !almostEq(f, test.f, 1e-12) {
			t.Errorf("%d) Expected F(%g) = %g, got %g.", i, test.k, test.f, f)
		}
	}

	bad := writeFile(t, dir, "bad.txt", "1 1 5\n1 2 4\n")
	if _, _, err := ReadFlux(bad); err == nil {
		t.Errorf("Expected an error for a decreasing flux curve.")
	}
}

func TestReadCalibration(t *testing.T) {
	dir := t.TempDir()
	flux := writeFile(t, dir, "flux.txt", fluxText)
	fluxMap := writeFile(t, dir, "map.txt", "10 3\n11 7\n")
	solid := writeFile(t, dir, "solid.txt", "10 0.5\n11 0.25\n")

	calib, err := ReadCalibration(flux, fluxMap, solid)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if len(calib.Flux) != 2 {
		t.Errorf("Expected 2 flux curves, got %d.", len(calib.Flux))
	}
	if calib.FluxIndex[10] != 1 || calib.FluxIndex[11] != 0 {
		t.Errorf("Expected flux map {10: 1, 11: 0}, got %v.", calib.FluxIndex)
	}
	if calib.SolidAngle[10] != 0.5 || calib.SolidAngle[11] != 0.25 {
		t.Errorf("Expected solid angles {10: 0.5, 11: 0.25}, got %v.",
			calib.SolidAngle)
	}

	calib, err = ReadCalibration("", "", "")
	if err != nil {
		t.Errorf("Unexpected error: %s", err.Error())
	} else if calib.Flux != nil || calib.FluxIndex != nil ||
		calib.SolidAngle != nil {
		t.Errorf("Expected an empty calibration, got %v.", calib)
	}

	badMap := writeFile(t, dir, "badmap.txt", "10 4\n")
	negSolid := writeFile(t, dir, "neg.txt", "10 -1\n")
	errTests := [][3]string{
		{"", fluxMap, ""},
		{flux, badMap, ""},
		{flux, "", negSolid},
		{filepath.Join(dir, "missing.txt"), "", ""},
	}
	for i, test := range errTests {
		if _, err := ReadCalibration(test[0], test[1], test[2]); err == nil {
			t.Errorf("%d) Expected an error.", i)
		}
	}
}

func TestReadExperiment(t *testing.T) {
	dir := t.TempDir()
	dets, err := ReadDetectors(writeFile(t, dir, "dets.txt", detectorText))
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, dir, "limits.txt", "12 1 2\n10 3 4\n")

	text := `[experiment]
UB = 2, 0, 0, 0, 3, 0, 0, 0, 4
GoniometerAngles = 90, 0, 0
ProtonCharge = 2.5
Ei = 25
EMin = -1
EMax = 20
LimitsFile = limits.txt
AuxNames = temperature, field
AuxValues = 4.5, 0.1`
	exp, err := ReadExperiment(writeFile(t, dir, "run_7.config", text), dets)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}

	if exp.Name != "run_7" {
		t.Errorf("Expected name 'run_7', got '%s'.", exp.Name)
	}
	if exp.UB == nil || exp.UB[0] != 2 || exp.UB[4] != 3 || exp.UB[8] != 4 {
		t.Errorf("UB matrix was read as %v.", exp.UB)
	}
	if exp.ProtonCharge != 2.5 || exp.Ei != 25 ||
		exp.EMin != -1 || exp.EMax != 20 || exp.KMin != 0 || exp.KMax != 0 {
		t.Errorf("Scalars read as charge = %g, Ei = %g, E = [%g, %g], "+
			"k = [%g, %g].", exp.ProtonCharge, exp.Ei,
			exp.EMin, exp.EMax, exp.KMin, exp.KMax)
	}

	// omega = 90 degrees around y takes z to x.
	if exp.Goniometer == nil {
		t.Fatalf("Goniometer was not set.")
	}
	z := exp.Goniometer.MultVec([3]float64{0, 0, 1})
	if !almostEq(z[0], 1, 1e-12) || !almostEq(z[1], 0, 1e-12) ||
		!almostEq(z[2], 0, 1e-12) {
		t.Errorf("Goniometer maps z to %v, not x.", z)
	}

	lower, upper := []float64{3, 0, 1}, []float64{4, 0, 2}
	for i := range lower {
		if exp.Lower[i] != lower[i] || exp.Upper[i] != upper[i] {
			t.Errorf("%d) Expected limits [%g, %g], got [%g, %g].", i,
				lower[i], upper[i], exp.Lower[i], exp.Upper[i])
		}
	}

	if exp.Aux["temperature"] != 4.5 || exp.Aux["field"] != 0.1 {
		t.Errorf("Expected aux values {temperature: 4.5, field: 0.1}, "+
			"got %v.", exp.Aux)
	}
}

func TestReadExperimentMissingMatrices(t *testing.T) {
	dir := t.TempDir()
	dets := &norm.DetectorTable{IDs: []int{1}, TwoTheta: []float64{1},
		Azimuthal: []float64{0}}

	exp, err := ReadExperiment(writeFile(t, dir, "a.config",
		"[experiment]\nName = bare\n"), dets)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if exp.Name != "bare" || exp.Goniometer != nil || exp.UB != nil ||
		exp.Aux != nil || exp.Lower != nil {
		t.Errorf("Expected an experiment with only a name, got %+v.", exp)
	}

	exp, err = ReadExperiment(writeFile(t, dir, "b.config",
		"[experiment]\nGoniometer = 1,0,0, 0,1,0, 0,0,1\n"), dets)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if exp.Goniometer == nil || exp.Goniometer[0] != 1 || exp.Goniometer[1] != 0 {
		t.Errorf("Goniometer matrix read as %v.", exp.Goniometer)
	}
}

func TestReadExperimentErrors(t *testing.T) {
	dir := t.TempDir()
	dets := &norm.DetectorTable{IDs: []int{1}, TwoTheta: []float64{1},
		Azimuthal: []float64{0}}
	writeFile(t, dir, "limits.txt", "2 0 1\n")

	texts := []string{
		"[experiment]\nGoniometer = 1,0,0,0,1,0,0,0,1\nGoniometerAngles = 0,0,0",
		"[experiment]\nGoniometerAngles = 0, 0",
		"[experiment]\nAuxNames = a, b\nAuxValues = 1",
		"[experiment]\nLimitsFile = limits.txt",
		"[experiment]\nUB = 1, 2, 3",
		"[norm]\nEi = 10",
	}

	for i, text := range texts {
		fname := writeFile(t, dir, "bad.config", text)
		if _, err := ReadExperiment(fname, dets); err == nil {
			t.Errorf("%d) Expected an error for %q.", i, text)
		}
	}
}

func testGrid(t *testing.T) *grid.Grid {
	h, err := grid.NewQAxis("H", [3]float64{1, 0, 0}, []float64{0, 0.5, 1.5})
	if err != nil {
		t.Fatal(err)
	}
	k, err := grid.NewQAxis("K", [3]float64{0, 1, 0}, []float64{-1, 1})
	if err != nil {
		t.Fatal(err)
	}
	l, err := grid.NewQAxis("L", [3]float64{0, 0, 1}, []float64{0, 1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	g, err := grid.New(h, k, l)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestNormalizationRoundTrip(t *testing.T) {
	g := testGrid(t)
	signal := make([]float64, g.Size())
	for i := range signal {
		signal[i] = float64(i) * 0.125
	}

	lines := NormalizationLines(g, signal)
	if len(lines) != g.Size()+2 {
		t.Fatalf("Expected %d lines, got %d.", g.Size()+2, len(lines))
	}
	header := "# Column contents: H(0) K(1) L(2) Normalization(3)"
	if lines[0] != header {
		t.Errorf("Expected header '%s', got '%s'.", header, lines[0])
	}

	buf := &bytes.Buffer{}
	if err := WriteNormalization(buf, g, signal); err != nil {
		t.Fatal(err)
	}
	if buf.String() != strings.Join(lines, "\n")+"\n" {
		t.Errorf("WriteNormalization and NormalizationLines disagree.")
	}

	fname := filepath.Join(t.TempDir(), "norm.txt")
	if err := WriteNormalizationFile(fname, g, signal); err != nil {
		t.Fatal(err)
	}
	out, err := ReadNormalization(fname, g)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	for i := range signal {
		if out[i] != signal[i] {
			t.Errorf("%d) Expected %g, got %g.", i, signal[i], out[i])
		}
	}

	h, _ := grid.NewQAxis("H", [3]float64{1, 0, 0}, []float64{0, 1, 1.5})
	k, _ := grid.NewQAxis("K", [3]float64{0, 1, 0}, []float64{-1, 1})
	l, _ := grid.NewQAxis("L", [3]float64{0, 0, 1}, []float64{0, 1, 2, 3})
	other, err := grid.New(h, k, l)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ReadNormalization(fname, other); err == nil {
		t.Errorf("Expected an error for mismatched cell centers.")
	}

	l2, _ := grid.NewQAxis("L", [3]float64{0, 0, 1}, []float64{0, 3})
	smaller, err := grid.New(h, k, l2)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ReadNormalization(fname, smaller); err == nil {
		t.Errorf("Expected an error for a different number of cells.")
	}
}
