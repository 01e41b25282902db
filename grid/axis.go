package grid

import (
	"fmt"
	"math"

	"github.com/phil-mansfield/mdnorm/math/interpolate"
)

// Role describes which physical quantity an Axis bins.
type Role int

const (
	// QAxis bins momentum transfer projected onto a direction in HKL.
	QAxis Role = iota
	// EnergyAxis bins energy transfer, in meV.
	EnergyAxis
	// AuxAxis bins a logged per-run value, such as sample temperature.
	AuxAxis
)

func (r Role) String() string {
	switch r {
	case QAxis:
		return "Q"
	case EnergyAxis:
		return "DeltaE"
	case AuxAxis:
		return "aux"
	}
	panic("Impossible")
}

// Axis is one dimension of a Grid.
type Axis struct {
	Name string
	// Edges are the strictly increasing bin edges of the axis.
	Edges []float64
	Role Role
	// Direction is the HKL direction of a QAxis.
	Direction [3]float64
	// Log is the name of the logged value binned by an AuxAxis.
	Log string

	search interpolate.Searcher
}

// NewQAxis creates an axis which bins momentum transfer along the HKL
// direction dir.
func NewQAxis(name string, dir [3]float64, edges []float64) (*Axis, error) {
	a := &Axis{Name: name, Role: QAxis, Direction: dir}
	if err := a.init(edges); err != nil {
		return nil, err
	}
	if dir == ([3]float64{}) {
		return nil, fmt.Errorf("The Q axis '%s' has a zero direction.", name)
	}
	return a, nil
}

// NewEnergyAxis creates an axis which bins energy transfer.
func NewEnergyAxis(name string, edges []float64) (*Axis, error) {
	a := &Axis{Name: name, Role: EnergyAxis}
	if err := a.init(edges); err != nil {
		return nil, err
	}
	return a, nil
}

// NewAuxAxis creates an axis which bins the logged value named log.
func NewAuxAxis(name, log string, edges []float64) (*Axis, error) {
	a := &Axis{Name: name, Role: AuxAxis, Log: log}
	if err := a.init(edges); err != nil {
		return nil, err
	}
	return a, nil
}

// UniformEdges returns the edges of bins uniformly spaced between lo and hi.
func UniformEdges(lo, hi float64, bins int) []float64 {
	if bins <= 0 {
		panic("bins must be positive.")
	}
	edges := make([]float64, bins+1)
	dx := (hi - lo) / float64(bins)
	for i := range edges {
		edges[i] = lo + float64(i)*dx
	}
	edges[bins] = hi
	return edges
}

func (a *Axis) init(edges []float64) error {
	if len(edges) < 2 {
		return fmt.Errorf("The axis '%s' has %d edges, but at least two "+
			"are needed.", a.Name, len(edges))
	}
	for i := 1; i < len(edges); i++ {
		if !(edges[i] > edges[i-1]) {
			return fmt.Errorf("Edge %d of the axis '%s', %g, is not larger "+
				"than the edge before it, %g.", i, a.Name, edges[i], edges[i-1])
		}
	}
	for i := range edges {
		if math.IsInf(edges[i], 0) || math.IsNaN(edges[i]) {
			return fmt.Errorf("Edge %d of the axis '%s' is %g.",
				i, a.Name, edges[i])
		}
	}

	a.Edges = append([]float64(nil), edges...)
	a.search.Init(a.Edges)
	return nil
}

// Bins returns the number of bins along the axis.
func (a *Axis) Bins() int { return len(a.Edges) - 1 }

// Integrated returns true if the axis has a single bin spanning its whole
// range.
func (a *Axis) Integrated() bool { return len(a.Edges) == 2 }

// Min returns the lowest edge of the axis.
func (a *Axis) Min() float64 { return a.Edges[0] }

// Max returns the highest edge of the axis.
func (a *Axis) Max() float64 { return a.Edges[len(a.Edges)-1] }

// Contains returns true if x lies within [Min() - eps, Max() + eps].
func (a *Axis) Contains(x, eps float64) bool {
	return x >= a.Edges[0]-eps && x <= a.Edges[len(a.Edges)-1]+eps
}

// Bin returns the index of the bin containing x. Bins are closed below and
// open above except for the last, which also contains Max(). Values within
// eps of the ends of the axis are placed in the end bins. ok is false if x
// is outside the axis.
func (a *Axis) Bin(x, eps float64) (i int, ok bool) {
	if !a.Contains(x, eps) {
		return -1, false
	}
	i = a.search.Search(x)
	if i < 0 {
		return 0, true
	} else if i >= a.Bins() {
		return a.Bins() - 1, true
	}
	return i, true
}

// Center returns the midpoint of bin i.
func (a *Axis) Center(i int) float64 {
	return (a.Edges[i] + a.Edges[i+1]) / 2
}
