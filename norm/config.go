/*package norm computes the normalization grid which accompanies a binned
single-crystal neutron scattering signal.

For every detector it traces the straight line the detector's trajectory
makes through the output grid, finds every bin-edge crossing, weights each
segment by flux, solid angle and proton charge, and adds the weights into a
shared array. The whole calculation is repeated for every experiment and for
every operation of the crystal's point group.
*/
package norm

import (
	"fmt"
	"math"
	"runtime"
	"strings"

	"github.com/phil-mansfield/mdnorm/norm/geom"
)

// Physical constants in SI units.
const (
	NeutronMass       = 1.674927471e-27
	MilliElectronVolt = 1.602176634e-22
	PlanckConstant    = 6.62607015e-34

	// DefaultEnergyToK converts neutron energy in meV to the square of its
	// wavenumber in inverse Angstroms: k^2 = DefaultEnergyToK * E.
	DefaultEnergyToK = 8 * math.Pi * math.Pi * NeutronMass *
		MilliElectronVolt * 1e-20 / (PlanckConstant * PlanckConstant)
)

// Mode is the measurement regime, which determines how segments are
// weighted.
type Mode int

const (
	// Diffraction weights segments by the integrated incident flux.
	Diffraction Mode = iota
	// Direct weights segments by the energy-transfer width of a
	// direct-geometry inelastic measurement.
	Direct
)

func (m Mode) String() string {
	switch m {
	case Diffraction:
		return "Diffraction"
	case Direct:
		return "Direct"
	}
	panic("Impossible")
}

// ParseMode parses the name of a Mode. Case is ignored.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "diffraction", "elastic":
		return Diffraction, nil
	case "direct", "inelastic":
		return Direct, nil
	}
	return 0, fmt.Errorf("'%s' is not a recognized mode. Use 'Diffraction' "+
		"or 'Direct'.", s)
}

// ParseConvention parses the name of a momentum-transfer sign convention.
// Case is ignored and the empty string gives the default.
func ParseConvention(s string) (geom.Convention, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "inelastic":
		return geom.Inelastic, nil
	case "crystallography":
		return geom.Crystallography, nil
	}
	return 0, fmt.Errorf("'%s' is not a recognized convention. Use "+
		"'Inelastic' or 'Crystallography'.", s)
}

// Config controls a normalization.
type Config struct {
	Mode       Mode
	Convention geom.Convention
	Tol        geom.Tolerances
	// EnergyToK is the constant c in k^2 = c * E, for E in meV and k in
	// inverse Angstroms.
	EnergyToK float64
	// Workers is the number of goroutines detectors are spread over.
	Workers int
	// Progress, if non-nil, is called after every completed pass with the
	// number of (experiment, operation) passes finished so far and the
	// total number of passes.
	Progress func(done, total int)
}

// DefaultConfig returns a diffraction Config using every CPU.
func DefaultConfig() Config {
	return Config{
		Mode:       Diffraction,
		Convention: geom.Inelastic,
		Tol:        geom.DefaultTolerances(),
		EnergyToK:  DefaultEnergyToK,
		Workers:    runtime.NumCPU(),
	}
}

func (c *Config) check() error {
	if !(c.EnergyToK > 0) {
		return fmt.Errorf("EnergyToK must be positive, but it is %g.",
			c.EnergyToK)
	}
	if c.Tol.Parallel < 0 || c.Tol.HKL < 0 || c.Tol.Energy < 0 {
		return fmt.Errorf("Tolerances must not be negative, but they are %+v.",
			c.Tol)
	}
	if c.Mode != Diffraction && c.Mode != Direct {
		return fmt.Errorf("Unknown mode %d.", int(c.Mode))
	}
	return nil
}
