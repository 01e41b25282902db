package io

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/phil-mansfield/mdnorm/math/mat"
	"github.com/phil-mansfield/mdnorm/norm"
	"github.com/phil-mansfield/mdnorm/norm/geom"
	"github.com/phil-mansfield/mdnorm/parse"
)

// ExampleExperimentConfig documents the variables of an [experiment] file.
const ExampleExperimentConfig = `[experiment]

#####################
## Required Fields ##
#####################

# UB is the lattice matrix of the sample, including the factor of 2 pi,
# written as nine comma-separated values in row-major order.
UB = 0.628318, 0, 0, 0, 0.628318, 0, 0, 0, 0.628318

# The goniometer rotation is given either as a matrix, in the same format as
# UB, or as the universal goniometer angles omega, chi, phi in degrees.
GoniometerAngles = 30, 0, 0
# Goniometer = 1, 0, 0, 0, 1, 0, 0, 0, 1

#####################
## Optional Fields ##
#####################

# Name identifies the run in log messages. Defaults to the file name.
# Name = run_0001

# ProtonCharge scales every weight. 0 is treated as 1.
# ProtonCharge = 1

# Ei is the incident energy in meV. It is required in direct geometry.
# Ei = 50

# The measured momentum range (diffraction) in 1/A. If neither is set, the
# range of the flux spectra is used.
# KMin = 1.5
# KMax = 10

# The measured energy-transfer range (direct geometry) in meV. If neither
# is set, the grid's energy axis is used.
# EMin = -5
# EMax = 45

# LimitsFile lists a measured lower and upper bound for each detector. Paths
# are relative to this file.
# LimitsFile = limits.txt

# Logged values which are binned by auxiliary grid axes.
# AuxNames = temperature
# AuxValues = 4.5`

// ReadExperiment reads an [experiment] config file. dets is needed to order
// per-detector limits.
func ReadExperiment(fname string, dets *norm.DetectorTable) (
	*norm.ExperimentInfo, error,
) {
	var (
		name, limitsFile string
		gonio, ub        mat.Matrix3
		angles           []float64
		auxNames         []string
		auxValues        []float64
	)
	exp := &norm.ExperimentInfo{}

	vars := parse.NewConfigVars("experiment")
	vars.String(&name, "Name", "")
	vars.Matrix(&gonio, "Goniometer", mat.Identity3())
	vars.Floats(&angles, "GoniometerAngles", []float64{})
	vars.Matrix(&ub, "UB", mat.Identity3())
	vars.Float(&exp.ProtonCharge, "ProtonCharge", 0)
	vars.Float(&exp.Ei, "Ei", 0)
	vars.Float(&exp.KMin, "KMin", 0)
	vars.Float(&exp.KMax, "KMax", 0)
	vars.Float(&exp.EMin, "EMin", 0)
	vars.Float(&exp.EMax, "EMax", 0)
	vars.String(&limitsFile, "LimitsFile", "")
	vars.Strings(&auxNames, "AuxNames", []string{})
	vars.Floats(&auxValues, "AuxValues", []float64{})

	if err := parse.ReadConfig(fname, vars); err != nil {
		return nil, err
	}

	exp.Name = name
	if exp.Name == "" {
		exp.Name = strings.TrimSuffix(
			filepath.Base(fname), filepath.Ext(fname),
		)
	}

	switch {
	case vars.IsSet("Goniometer") && vars.IsSet("GoniometerAngles"):
		return nil, fmt.Errorf(
			"Both 'Goniometer' and 'GoniometerAngles' are set in %s.", fname,
		)
	case vars.IsSet("Goniometer"):
		exp.Goniometer = &gonio
	case vars.IsSet("GoniometerAngles"):
		if len(angles) != 3 {
			return nil, fmt.Errorf(
				"'GoniometerAngles' in %s has %d values, but omega, chi, "+
					"and phi are needed.", fname, len(angles),
			)
		}
		r := geom.GoniometerMatrix(
			angles[0]*math.Pi/180, angles[1]*math.Pi/180,
			angles[2]*math.Pi/180,
		)
		exp.Goniometer = &r
	}

	if vars.IsSet("UB") {
		exp.UB = &ub
	}

	if len(auxNames) != len(auxValues) {
		return nil, fmt.Errorf(
			"%s has %d 'AuxNames' but %d 'AuxValues'.",
			fname, len(auxNames), len(auxValues),
		)
	}
	if len(auxNames) > 0 {
		exp.Aux = make(map[string]float64, len(auxNames))
		for i := range auxNames {
			exp.Aux[auxNames[i]] = auxValues[i]
		}
	}

	if limitsFile != "" {
		var err error
		exp.Lower, exp.Upper, err = ReadLimits(relative(limitsFile, fname), dets)
		if err != nil {
			return nil, err
		}
	}

	return exp, nil
}

// ReadExperiments reads every experiment file in order.
func ReadExperiments(fnames []string, dets *norm.DetectorTable) (
	[]*norm.ExperimentInfo, error,
) {
	exps := make([]*norm.ExperimentInfo, len(fnames))
	for i := range fnames {
		var err error
		exps[i], err = ReadExperiment(fnames[i], dets)
		if err != nil {
			return nil, err
		}
	}
	return exps, nil
}
