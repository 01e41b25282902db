package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/phil-mansfield/mdnorm/cmd/env"
	"github.com/phil-mansfield/mdnorm/grid"
	"github.com/phil-mansfield/mdnorm/io"
	"github.com/phil-mansfield/mdnorm/logging"
	"github.com/phil-mansfield/mdnorm/norm"
	"github.com/phil-mansfield/mdnorm/norm/geom"
	"github.com/phil-mansfield/mdnorm/parse"
	"github.com/phil-mansfield/mdnorm/symmetry"
)

// axisConfig holds the variables describing one grid axis.
type axisConfig struct {
	prefix    string
	name      string
	direction []float64
	edges     []float64
	rng       []float64
	bins      int64
}

func (ac *axisConfig) register(vars *parse.ConfigVars, name string, dir []float64) {
	vars.String(&ac.name, ac.prefix+"Name", name)
	if dir != nil {
		vars.Floats(&ac.direction, ac.prefix+"Direction", dir)
	}
	vars.Floats(&ac.edges, ac.prefix+"Edges", []float64{})
	vars.Floats(&ac.rng, ac.prefix+"Range", []float64{})
	vars.Int(&ac.bins, ac.prefix+"Bins", 1)
}

// isSet returns true if the axis has been given any edges.
func (ac *axisConfig) isSet() bool {
	return len(ac.edges) > 0 || len(ac.rng) > 0
}

// binEdges returns the edges of the axis, given either explicitly or as a
// range and a bin count.
func (ac *axisConfig) binEdges() ([]float64, error) {
	switch {
	case len(ac.edges) > 0 && len(ac.rng) > 0:
		return nil, fmt.Errorf("Both '%sEdges' and '%sRange' are set.",
			ac.prefix, ac.prefix)
	case len(ac.edges) > 0:
		return ac.edges, nil
	case len(ac.rng) == 2:
		if ac.bins < 1 {
			return nil, fmt.Errorf("'%sBins' is set to %d, but must be "+
				"positive.", ac.prefix, ac.bins)
		} else if ac.rng[1] <= ac.rng[0] {
			return nil, fmt.Errorf("'%sRange' = [%g, %g] is empty.",
				ac.prefix, ac.rng[0], ac.rng[1])
		}
		return grid.UniformEdges(ac.rng[0], ac.rng[1], int(ac.bins)), nil
	case len(ac.rng) > 0:
		return nil, fmt.Errorf("'%sRange' has %d values, but needs 2.",
			ac.prefix, len(ac.rng))
	}
	return nil, fmt.Errorf("Neither '%sEdges' nor '%sRange' is set.",
		ac.prefix, ac.prefix)
}

// NormConfig is the config of the norm mode, which computes the
// normalization of a binned signal.
type NormConfig struct {
	mode, convention, symmetry string

	q      [3]axisConfig
	deltaE axisConfig
	aux    axisConfig
	auxLog string

	detectorFile, fluxFile, fluxMapFile, solidAngleFile string
	previousOutput, outputFile                          string

	parallelEpsilon, hklEpsilon, energyEpsilon float64
	energyToK                                  float64
}

var _ Mode = &NormConfig{}

func (config *NormConfig) ExampleConfig() string {
	return `[norm]

#####################
## Required Fields ##
#####################

# Mode is the kind of measurement being normalized.
# Supported Modes:
# Diffraction - Weights are the integrated incident flux between the
#               momenta where a detector's trajectory enters and leaves
#               each bin.
# Direct      - Direct-geometry inelastic scattering. Weights are the
#               energy-transfer width of each bin crossing. Every experiment
#               needs an incident energy, Ei.
Mode = Diffraction

# DetectorFile lists every detector, one per line, as
#     ID  2theta(deg)  phi(deg)  monitor(0/1)  masked(0/1)
DetectorFile = path/to/detectors.txt

# FluxFile holds the cumulative incident flux as a function of momentum, one
# point per line, as
#     spectrum  k  F(k)
# It is required in diffraction mode.
FluxFile = path/to/flux.txt

# The three Q axes of the grid. Each has a direction in HKL and either
# explicit, strictly increasing edges or a range and a number of bins. The
# three directions must not be coplanar.
Q1Name = H
Q1Direction = 1, 0, 0
Q1Range = -5, 5
Q1Bins = 100

Q2Name = K
Q2Direction = 0, 1, 0
Q2Range = -5, 5
Q2Bins = 100

Q3Name = L
Q3Direction = 0, 0, 1
Q3Edges = -0.1, 0.1

#####################
## Optional Fields ##
#####################

# Symmetry folds equivalent regions of reciprocal space together. It may be
# a point group (4/mmm, -3m, m-3m), a space group, which is reduced to its
# point group (P 21/c, F d -3 m), or a semicolon-separated list of Jones
# symbols (x,y,z; -x,-y,z). By default only the identity is used.
# Symmetry = 4/mmm

# Convention is the sign convention of momentum transfer.
# Inelastic       - Q = k_i - k_f (default)
# Crystallography - Q = k_f - k_i
# Convention = Inelastic

# An energy-transfer axis, in meV, for direct geometry.
# DeltaEName = DeltaE
# DeltaERange = -5, 45
# DeltaEBins = 50

# An axis which bins experiments by a logged value. Each experiment's value
# is set by its AuxNames and AuxValues.
# AuxLog = temperature
# AuxEdges = 0, 10, 100, 300

# FluxMapFile assigns a flux spectrum to each detector, as
#     ID  spectrum
# Without it, a single spectrum is shared by every detector.
# FluxMapFile = path/to/flux_map.txt

# SolidAngleFile gives the solid angle of each detector, as
#     ID  solid_angle
# Without it, every detector has a solid angle of 1.
# SolidAngleFile = path/to/solid_angles.txt

# PreviousOutput is a normalization table from an earlier run on the same
# grid. The new normalization is added to it.
# PreviousOutput = path/to/previous_norm.txt

# OutputFile is where the normalization table is written. If it is not set,
# the table is written to stdout.
# OutputFile = path/to/norm.txt

# Numerical tolerances. The defaults should rarely need to change.
# ParallelEpsilon = 1e-10
# HKLEpsilon = 1e-7
# EnergyEpsilon = 1e-10

# EnergyToK is c in k^2 = c * E, for k in 1/A and E in meV.
# EnergyToK = 0.482596`
}

func (config *NormConfig) ReadConfig(fname string) error {
	vars := parse.NewConfigVars("norm")

	tol := geom.DefaultTolerances()
	vars.String(&config.mode, "Mode", "Diffraction")
	vars.String(&config.convention, "Convention", "Inelastic")
	vars.String(&config.symmetry, "Symmetry", "")

	names := [3]string{"H", "K", "L"}
	dirs := [3][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	for i := range config.q {
		config.q[i].prefix = fmt.Sprintf("Q%d", i+1)
		config.q[i].register(vars, names[i], dirs[i])
	}
	config.deltaE.prefix = "DeltaE"
	config.deltaE.register(vars, "DeltaE", nil)
	config.aux.prefix = "Aux"
	config.aux.register(vars, "", nil)
	vars.String(&config.auxLog, "AuxLog", "")

	vars.String(&config.detectorFile, "DetectorFile", "")
	vars.String(&config.fluxFile, "FluxFile", "")
	vars.String(&config.fluxMapFile, "FluxMapFile", "")
	vars.String(&config.solidAngleFile, "SolidAngleFile", "")
	vars.String(&config.previousOutput, "PreviousOutput", "")
	vars.String(&config.outputFile, "OutputFile", "")

	vars.Float(&config.parallelEpsilon, "ParallelEpsilon", tol.Parallel)
	vars.Float(&config.hklEpsilon, "HKLEpsilon", tol.HKL)
	vars.Float(&config.energyEpsilon, "EnergyEpsilon", tol.Energy)
	vars.Float(&config.energyToK, "EnergyToK", norm.DefaultEnergyToK)

	if fname == "" {
		return nil
	}
	if err := parse.ReadConfig(fname, vars); err != nil {
		return err
	}

	return config.validate()
}

func (config *NormConfig) validate() error {
	if _, err := norm.ParseMode(config.mode); err != nil {
		return err
	}
	if _, err := norm.ParseConvention(config.convention); err != nil {
		return err
	}
	if config.auxLog != "" && !config.aux.isSet() {
		return fmt.Errorf("'AuxLog' is set to '%s', but the aux axis has no "+
			"edges.", config.auxLog)
	}
	if config.auxLog == "" && config.aux.isSet() {
		return fmt.Errorf("The aux axis has edges, but 'AuxLog' is not set.")
	}
	if config.detectorFile == "" {
		return fmt.Errorf("'DetectorFile' is not set.")
	}
	if config.parallelEpsilon < 0 || config.hklEpsilon < 0 ||
		config.energyEpsilon < 0 {
		return fmt.Errorf("The tolerances 'ParallelEpsilon' = %g, "+
			"'HKLEpsilon' = %g, and 'EnergyEpsilon' = %g must not be "+
			"negative.", config.parallelEpsilon, config.hklEpsilon,
			config.energyEpsilon)
	}
	if config.energyToK <= 0 {
		return fmt.Errorf("'EnergyToK' is set to %g, but must be positive.",
			config.energyToK)
	}

	_, err := config.buildGrid()
	return err
}

// buildGrid builds the output grid: the three Q axes, then the optional energy
// and aux axes.
func (config *NormConfig) buildGrid() (*grid.Grid, error) {
	axes := []*grid.Axis{}
	for i := range config.q {
		ac := &config.q[i]
		if len(ac.direction) != 3 {
			return nil, fmt.Errorf("'%sDirection' has %d values, but needs 3.",
				ac.prefix, len(ac.direction))
		}
		edges, err := ac.binEdges()
		if err != nil {
			return nil, err
		}
		dir := [3]float64{ac.direction[0], ac.direction[1], ac.direction[2]}
		axis, err := grid.NewQAxis(ac.name, dir, edges)
		if err != nil {
			return nil, fmt.Errorf("Could not create the %s axis: %w",
				ac.prefix, err)
		}
		axes = append(axes, axis)
	}

	if config.deltaE.isSet() {
		edges, err := config.deltaE.binEdges()
		if err != nil {
			return nil, err
		}
		axis, err := grid.NewEnergyAxis(config.deltaE.name, edges)
		if err != nil {
			return nil, fmt.Errorf("Could not create the DeltaE axis: %w", err)
		}
		axes = append(axes, axis)
	}

	if config.aux.isSet() {
		edges, err := config.aux.binEdges()
		if err != nil {
			return nil, err
		}
		name := config.aux.name
		if name == "" {
			name = config.auxLog
		}
		axis, err := grid.NewAuxAxis(name, config.auxLog, edges)
		if err != nil {
			return nil, fmt.Errorf("Could not create the Aux axis: %w", err)
		}
		axes = append(axes, axis)
	}

	g, err := grid.New(axes...)
	if err != nil {
		return nil, err
	}
	w, err := g.Projection()
	if err != nil {
		return nil, err
	}
	if err = geom.CheckProjection(w); err != nil {
		return nil, err
	}
	return g, nil
}

// normConfig converts the mode's variables into a norm.Config.
func (config *NormConfig) normConfig(workers int) norm.Config {
	cfg := norm.DefaultConfig()
	cfg.Mode, _ = norm.ParseMode(config.mode)
	cfg.Convention, _ = norm.ParseConvention(config.convention)
	cfg.Tol = geom.Tolerances{
		Parallel: config.parallelEpsilon,
		HKL:      config.hklEpsilon,
		Energy:   config.energyEpsilon,
	}
	cfg.EnergyToK = config.energyToK
	cfg.Workers = workers
	cfg.Progress = func(done, total int) {
		logging.Debugf("Finished pass %d of %d.", done, total)
	}
	return cfg
}

func (config *NormConfig) Run(
	flags []string, gConfig *GlobalConfig, e *env.Experiments, stdin []string,
) ([]string, error) {
	fs := flag.NewFlagSet("norm", flag.ContinueOnError)
	output := fs.String("o", config.outputFile,
		"file the normalization table is written to")
	if err := fs.Parse(flags); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("I don't recognize the arguments %v.", fs.Args())
	}

	t := logging.NewTimer()

	g, err := config.buildGrid()
	if err != nil {
		return nil, err
	}
	ops, err := symmetry.Resolve(config.symmetry)
	if err != nil {
		return nil, err
	}
	dets, err := io.ReadDetectors(config.detectorFile)
	if err != nil {
		return nil, err
	}
	calib, err := io.ReadCalibration(
		config.fluxFile, config.fluxMapFile, config.solidAngleFile,
	)
	if err != nil {
		return nil, err
	}

	n, err := norm.New(config.normConfig(gConfig.Workers()), g, dets, calib, ops)
	if err != nil {
		return nil, err
	}

	exps, err := io.ReadExperiments(e.Files(), dets)
	if err != nil {
		return nil, err
	}

	var prev []float64
	if config.previousOutput != "" {
		prev, err = io.ReadNormalization(config.previousOutput, g)
		if err != nil {
			return nil, err
		}
	}

	logging.Debugf("Read %d detectors, %d experiments, and %d symmetry "+
		"operations in %s.", dets.Len(), len(exps), len(ops), t.Lap())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := n.Run(ctx, exps, prev)
	if err != nil {
		return nil, err
	}

	logging.Performancef("Normalized %d passes (%d skipped) in %s. %s",
		res.Passes, res.Skipped, t.Total(), logging.MemString())

	if *output != "" {
		return nil, io.WriteNormalizationFile(*output, g, res.Signal)
	}
	return io.NormalizationLines(g, res.Signal), nil
}
