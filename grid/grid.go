/*package grid describes the rectangular, irregularly binned grids that
normalizations are accumulated into, and converts between coordinates and
flattened cell indices.
*/
package grid

import (
	"fmt"

	"github.com/phil-mansfield/mdnorm/math/mat"
)

// NoIndex is returned by Index for coordinates outside the grid.
const NoIndex = -1

// Grid provides an interface for reasoning over a 1D slice as if it were a
// multi-dimensional grid. Cells are flattened with the first axis varying
// fastest: (i0, i1, i2) -> i0 + i1*n0 + i2*n0*n1.
type Grid struct {
	Axes []Axis
	// Tolerance is how far outside an axis a coordinate may be and still be
	// placed in the end bin.
	Tolerance float64

	strides []int
	size int
}

// New returns a Grid made of copies of the given axes.
func New(axes ...*Axis) (*Grid, error) {
	if len(axes) == 0 {
		return nil, fmt.Errorf("A grid needs at least one axis.")
	}

	g := &Grid{Axes: make([]Axis, len(axes)), strides: make([]int, len(axes))}
	g.size = 1
	for i := range axes {
		if axes[i] == nil {
			return nil, fmt.Errorf("Axis %d is nil.", i)
		}
		g.Axes[i] = *axes[i]
		g.strides[i] = g.size
		g.size *= axes[i].Bins()
	}
	return g, nil
}

// Dims returns the number of axes.
func (g *Grid) Dims() int { return len(g.Axes) }

// Size returns the number of cells.
func (g *Grid) Size() int { return g.size }

// Shape returns the number of bins along each axis.
func (g *Grid) Shape() []int {
	shape := make([]int, len(g.Axes))
	for i := range g.Axes {
		shape[i] = g.Axes[i].Bins()
	}
	return shape
}

// Index returns the index of the cell containing pos, or NoIndex if pos is
// outside the grid.
func (g *Grid) Index(pos []float64) int {
	idx, _ := g.IndexCheck(pos)
	return idx
}

// IndexCheck returns the index of the cell containing pos and true, or
// NoIndex and false if pos is outside the grid.
func (g *Grid) IndexCheck(pos []float64) (idx int, ok bool) {
	if len(pos) != len(g.Axes) {
		panic(fmt.Sprintf("Position has %d coordinates, but the grid has "+
			"%d axes.", len(pos), len(g.Axes)))
	}

	for i := range g.Axes {
		bin, ok := g.Axes[i].Bin(pos[i], g.Tolerance)
		if !ok {
			return NoIndex, false
		}
		idx += bin * g.strides[i]
	}
	return idx, true
}

// BoundsCheck returns true if pos is inside the grid.
func (g *Grid) BoundsCheck(pos []float64) bool {
	for i := range g.Axes {
		if !g.Axes[i].Contains(pos[i], g.Tolerance) {
			return false
		}
	}
	return true
}

// Coords writes the per-axis bin indices of cell idx to out and returns it.
// out is allocated if nil.
func (g *Grid) Coords(idx int, out []int) []int {
	if out == nil {
		out = make([]int, len(g.Axes))
	}
	for i := range g.Axes {
		bins := g.Axes[i].Bins()
		out[i] = idx % bins
		idx /= bins
	}
	return out
}

// Center writes the center of cell idx to out and returns it. out is
// allocated if nil.
func (g *Grid) Center(idx int, out []float64) []float64 {
	if out == nil {
		out = make([]float64, len(g.Axes))
	}
	for i := range g.Axes {
		bins := g.Axes[i].Bins()
		out[i] = g.Axes[i].Center(idx % bins)
		idx /= bins
	}
	return out
}

// Find returns the index of the first axis with the given role, or -1 if
// there is none.
func (g *Grid) Find(role Role) int {
	for i := range g.Axes {
		if g.Axes[i].Role == role {
			return i
		}
	}
	return -1
}

// Edges returns a copy of the edges of every axis.
func (g *Grid) Edges() [][]float64 {
	edges := make([][]float64, len(g.Axes))
	for i := range g.Axes {
		edges[i] = append([]float64(nil), g.Axes[i].Edges...)
	}
	return edges
}

// Projection returns the matrix whose columns are the HKL directions of the
// grid's three Q axes, in axis order.
func (g *Grid) Projection() (mat.Matrix3, error) {
	qIdx, err := g.qAxes()
	if err != nil {
		return mat.Matrix3{}, err
	}
	return mat.FromColumns(
		g.Axes[qIdx[0]].Direction,
		g.Axes[qIdx[1]].Direction,
		g.Axes[qIdx[2]].Direction,
	), nil
}

func (g *Grid) qAxes() ([3]int, error) {
	qIdx, n := [3]int{}, 0
	for i := range g.Axes {
		if g.Axes[i].Role != QAxis {
			continue
		}
		if n == 3 {
			return qIdx, fmt.Errorf("The grid has more than three Q axes; "+
				"'%s' is the fourth.", g.Axes[i].Name)
		}
		qIdx[n] = i
		n++
	}
	if n != 3 {
		return qIdx, fmt.Errorf("The grid has %d Q axes, but three are "+
			"needed. Integrated directions still need a one-bin axis.", n)
	}
	return qIdx, nil
}
