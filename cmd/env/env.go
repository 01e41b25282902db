/*package env resolves the experiment-info files which make up a normalization
run.
*/
package env

import (
	"fmt"
	"os"
	"strings"
)

// Experiments is the ordered list of experiment-info files for a range of
// run numbers.
type Experiments struct {
	runMin int
	names  []string
}

// Len returns the number of experiments.
func (exps *Experiments) Len() int { return len(exps.names) }

// Files returns the experiment-info file names in run order.
func (exps *Experiments) Files() []string {
	out := make([]string, len(exps.names))
	copy(out, exps.names)
	return out
}

// ExperimentFile returns the file for the given run number.
func (exps *Experiments) ExperimentFile(run int) string {
	i := run - exps.runMin
	if i < 0 || i >= len(exps.names) {
		panic(fmt.Sprintf("Run %d is outside the range [%d, %d].",
			run, exps.runMin, exps.runMin+len(exps.names)-1))
	}
	return exps.names[i]
}

// InitExperiments fills in one file per run in [runMin, runMax] by
// substituting the run number into format, which must contain exactly one
// integer verb (e.g. "runs/exp_%05d.config"). If validate is true, every file
// must already exist.
func (exps *Experiments) InitExperiments(
	format string, runMin, runMax int64, validate bool,
) error {
	if format == "" {
		return fmt.Errorf("'ExperimentFormat' was not set.")
	}
	if verbs := strings.Count(format, "%") - 2*strings.Count(format, "%%"); verbs != 1 {
		return fmt.Errorf(
			"'ExperimentFormat' = '%s' has %d format verbs, but exactly "+
				"one is needed for the run number.", format, verbs,
		)
	}
	if runMax < runMin {
		return fmt.Errorf(
			"'RunMin' = %d is larger than 'RunMax' = %d.", runMin, runMax,
		)
	}

	exps.runMin = int(runMin)
	exps.names = make([]string, 0, runMax-runMin+1)

	for run := runMin; run <= runMax; run++ {
		fname := fmt.Sprintf(format, run)
		if validate {
			if _, err := os.Stat(fname); err != nil {
				return fmt.Errorf(
					"The experiment file for run %d could not be "+
						"found: %w", run, err,
				)
			}
		}
		exps.names = append(exps.names, fname)
	}

	return nil
}

// InitList uses an explicit list of files. Run numbers are the list indices
// offset by runMin.
func (exps *Experiments) InitList(names []string, runMin int64, validate bool) error {
	if len(names) == 0 {
		return fmt.Errorf("The list of experiment files is empty.")
	}
	if validate {
		for _, fname := range names {
			if _, err := os.Stat(fname); err != nil {
				return fmt.Errorf(
					"The experiment file '%s' could not be found: %w",
					fname, err,
				)
			}
		}
	}

	exps.runMin = int(runMin)
	exps.names = make([]string, len(names))
	copy(exps.names, names)
	return nil
}
