/*package cmd contains code for running mdnorm in its various command line
modes */
package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/phil-mansfield/mdnorm/cmd/env"
	"github.com/phil-mansfield/mdnorm/logging"
	"github.com/phil-mansfield/mdnorm/parse"
	"github.com/phil-mansfield/mdnorm/version"
)

var ModeNames map[string]Mode = map[string]Mode{
	"norm": &NormConfig{},
}

// Mode represents the interface used by the main binary when interacting with
// a given command line mode.
type Mode interface {
	// ReadConfig reads a mode-specific config file and stores its contents
	// within the Mode.
	ReadConfig(fname string) error
	// ExampleConfig returns the text of an example config file of this mode.
	ExampleConfig() string
	// Run executes the mode. It takes a list of tokenized command line flags,
	// an initialized GlobalConfig struct, the experiments to process, and a
	// slice of lines representing the contents of stdin. It will return a
	// slice of lines that should be written to stdout along with an error if
	// one occurs.
	Run(
		flags []string, gConfig *GlobalConfig, e *env.Experiments,
		stdin []string,
	) ([]string, error)
}

// GlobalConfig is a config file used by every mode. It describes the
// runtime environment and where the experiment files are.
type GlobalConfig struct {
	Version string
	Threads int64
	LogMode string

	ExperimentFormat string
	RunMin, RunMax   int64
	ValidateFormats  bool

	logFlag logging.Flag
}

var _ Mode = &GlobalConfig{}

// ReadConfig reads a config file and returns an error, if applicable.
func (config *GlobalConfig) ReadConfig(fname string) error {
	vars := parse.NewConfigVars("config")
	vars.String(&config.Version, "Version", version.SourceVersion)
	vars.Int(&config.Threads, "Threads", 0)
	vars.String(&config.LogMode, "LogMode", "Nil")
	vars.String(&config.ExperimentFormat, "ExperimentFormat", "")
	vars.Int(&config.RunMin, "RunMin", 0)
	vars.Int(&config.RunMax, "RunMax", 0)
	vars.Bool(&config.ValidateFormats, "ValidateFormats", false)

	if err := parse.ReadConfig(fname, vars); err != nil {
		return err
	}

	return config.validate()
}

// validate checks that all the user-generated fields of GlobalConfig are
// properly set.
func (config *GlobalConfig) validate() error {
	if err := version.Compatible(config.Version); err != nil {
		return fmt.Errorf("The 'Version' variable is set to '%s': %s",
			config.Version, err.Error())
	}

	if config.Threads < 0 {
		return fmt.Errorf("'Threads' is set to the negative value %d.",
			config.Threads)
	}

	var err error
	if config.logFlag, err = logging.ParseFlag(config.LogMode); err != nil {
		return err
	}

	if config.ExperimentFormat != "" && config.RunMax < config.RunMin {
		return fmt.Errorf("'RunMin' = %d is larger than 'RunMax' = %d.",
			config.RunMin, config.RunMax)
	}

	return nil
}

// Init applies the runtime settings of the config: the log mode and the
// number of threads.
func (config *GlobalConfig) Init() {
	logging.Init(config.logFlag)
	if config.Threads > 0 {
		runtime.GOMAXPROCS(int(config.Threads))
	}
}

// Workers returns the number of goroutines a mode should use.
func (config *GlobalConfig) Workers() int {
	if config.Threads > 0 {
		return int(config.Threads)
	}
	return runtime.GOMAXPROCS(0)
}

// NeedsStdin returns true if the experiment files are listed on stdin
// instead of by ExperimentFormat.
func (config *GlobalConfig) NeedsStdin() bool {
	return config.ExperimentFormat == ""
}

// Experiments resolves the experiment files. If ExperimentFormat is not
// set, every non-empty line of stdin names one file.
func (config *GlobalConfig) Experiments(stdin []string) (
	*env.Experiments, error,
) {
	e := &env.Experiments{}
	if !config.NeedsStdin() {
		err := e.InitExperiments(config.ExperimentFormat,
			config.RunMin, config.RunMax, config.ValidateFormats)
		return e, err
	}

	names := []string{}
	for _, line := range stdin {
		if line = strings.TrimSpace(line); line != "" {
			names = append(names, line)
		}
	}
	err := e.InitList(names, config.RunMin, config.ValidateFormats)
	return e, err
}

// ExampleConfig returns an example configuration file.
func (config *GlobalConfig) ExampleConfig() string {
	return fmt.Sprintf(`[config]
# Target version of mdnorm. This option merely allows mdnorm to notice when
# its source and configuration files are not from the same version.
#
# This variable defaults to the source version if not included.
Version = %s

# Threads is the number of detectors processed at once. 0 uses every CPU.
Threads = 0

# LogMode controls what is written to stderr while running. Warnings about
# skipped experiments are always written.
# Supported LogModes:
# Nil         - Only warnings.
# Performance - Time and memory usage after every pass.
# Debug       - Progress of every experiment.
LogMode = Nil

# ExperimentFormat is a format string (a la printf()) which is passed each
# run number from RunMin to RunMax, inclusive, and gives the name of that
# run's [experiment] file. If it is not set, the names of the experiment
# files are read from stdin, one per line.
ExperimentFormat = path/to/runs/run_%%05d.config
RunMin = 1
RunMax = 4

# If ValidateFormats is true, mdnorm checks that every experiment file exists
# before starting.
ValidateFormats = false`, version.SourceVersion)
}

// Run is a dummy method which allows GlobalConfig to conform to the Mode
// interface for testing purposes.
func (config *GlobalConfig) Run(
	flags []string, gConfig *GlobalConfig, e *env.Experiments, stdin []string,
) ([]string, error) {
	panic("GlobalConfig.Run() should never be executed.")
}
