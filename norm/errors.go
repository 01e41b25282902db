package norm

import (
	"fmt"

	"github.com/phil-mansfield/mdnorm/norm/geom"
)

// DegenerateProjectionError is returned when the grid's Q axes do not span
// reciprocal space.
type DegenerateProjectionError = geom.DegenerateProjectionError

// MissingCalibrationError is returned when an experiment lacks metadata
// needed to place its detectors in reciprocal space.
type MissingCalibrationError struct {
	Experiment string
	Field      string
}

func (e *MissingCalibrationError) Error() string {
	return fmt.Sprintf("The experiment '%s' does not have a valid %s.",
		e.Experiment, e.Field)
}

// MissingDataError is returned when input data required by the selected
// mode is absent.
type MissingDataError struct {
	What string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("The normalization needs %s, which was not given.",
		e.What)
}
