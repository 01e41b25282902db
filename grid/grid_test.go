package grid

import (
	"math"
	"testing"
)

func almostEq(x, y, eps float64) bool {
	return math.Abs(x-y) < eps
}

func testGrid(t *testing.T) *Grid {
	h, err := NewQAxis("H", [3]float64{1, 0, 0}, []float64{-1, 0, 1})
	if err != nil {
		t.Fatal(err.Error())
	}
	k, err := NewQAxis("K", [3]float64{0, 1, 0}, []float64{0, 1, 3, 6})
	if err != nil {
		t.Fatal(err.Error())
	}
	l, err := NewQAxis("L", [3]float64{0, 0, 1}, []float64{-2, 2})
	if err != nil {
		t.Fatal(err.Error())
	}
	e, err := NewEnergyAxis("DeltaE", UniformEdges(-5, 5, 4))
	if err != nil {
		t.Fatal(err.Error())
	}
	g, err := New(h, k, e, l)
	if err != nil {
		t.Fatal(err.Error())
	}
	return g
}

func TestUniformEdges(t *testing.T) {
	edges := UniformEdges(-1, 2, 3)
	exp := []float64{-1, 0, 1, 2}
	if len(edges) != len(exp) {
		t.Fatalf("Expected %d edges, got %d.", len(exp), len(edges))
	}
	for i := range exp {
		if !almostEq(edges[i], exp[i], 1e-12) {
			t.Errorf("%d) Expected edge %g, got %g.", i, exp[i], edges[i])
		}
	}
}

func TestAxisErrors(t *testing.T) {
	tests := []struct {
		edges []float64
		dir   [3]float64
	}{
		{[]float64{1}, [3]float64{1, 0, 0}},
		{[]float64{}, [3]float64{1, 0, 0}},
		{[]float64{0, 1, 1}, [3]float64{1, 0, 0}},
		{[]float64{0, 2, 1}, [3]float64{1, 0, 0}},
		{[]float64{0, math.Inf(1)}, [3]float64{1, 0, 0}},
		{[]float64{0, 1}, [3]float64{0, 0, 0}},
	}

	for i := range tests {
		_, err := NewQAxis("Q", tests[i].dir, tests[i].edges)
		if err == nil {
			t.Errorf("%d) Expected error for edges %v and direction %v.",
				i, tests[i].edges, tests[i].dir)
		}
	}
}

func TestAxisBin(t *testing.T) {
	a, err := NewEnergyAxis("E", []float64{0, 1, 3, 6})
	if err != nil {
		t.Fatal(err.Error())
	}

	tests := []struct {
		x   float64
		bin int
		ok  bool
	}{
		{-1, -1, false},
		{0, 0, true},
		{0.5, 0, true},
		{1, 1, true},
		{2.9, 1, true},
		{3, 2, true},
		{6, 2, true},
		{6.5, -1, false},
		{-1e-9, 0, true},
		{6 + 1e-9, 2, true},
	}

	for i := range tests {
		bin, ok := a.Bin(tests[i].x, 1e-7)
		if bin != tests[i].bin || ok != tests[i].ok {
			t.Errorf("%d) Expected Bin(%g) = (%d, %v), got (%d, %v).", i,
				tests[i].x, tests[i].bin, tests[i].ok, bin, ok)
		}
	}
}

func TestGridIndex(t *testing.T) {
	g := testGrid(t)

	if g.Size() != 2*3*4*1 {
		t.Fatalf("Expected size %d, got %d.", 2*3*4*1, g.Size())
	}

	tests := []struct {
		pos []float64
		idx int
	}{
		{[]float64{-0.5, 0.5, -5, 0}, 0},
		{[]float64{0.5, 0.5, -5, 0}, 1},
		{[]float64{-0.5, 2, -5, 0}, 2},
		{[]float64{0.5, 5, -5, 0}, 5},
		{[]float64{-0.5, 0.5, -2, 0}, 6},
		{[]float64{1, 6, 5, 2}, 23},
		{[]float64{1.5, 0.5, 0, 0}, NoIndex},
		{[]float64{0, 0.5, 0, 2.5}, NoIndex},
		{[]float64{0, 0.5, 5.1, 0}, NoIndex},
	}

	for i := range tests {
		idx := g.Index(tests[i].pos)
		if idx != tests[i].idx {
			t.Errorf("%d) Expected Index(%v) = %d, got %d.",
				i, tests[i].pos, tests[i].idx, idx)
		}
		if ok := g.BoundsCheck(tests[i].pos); ok != (tests[i].idx != NoIndex) {
			t.Errorf("%d) Expected BoundsCheck(%v) = %v, got %v.", i,
				tests[i].pos, tests[i].idx != NoIndex, ok)
		}
	}
}

func TestGridCenterRoundTrip(t *testing.T) {
	g := testGrid(t)
	coords := make([]int, g.Dims())
	center := make([]float64, g.Dims())

	for idx := 0; idx < g.Size(); idx++ {
		g.Center(idx, center)
		if got := g.Index(center); got != idx {
			t.Errorf("Center of cell %d, %v, was placed in cell %d.",
				idx, center, got)
		}

		g.Coords(idx, coords)
		flat, stride := 0, 1
		for i := range coords {
			flat += coords[i] * stride
			stride *= g.Axes[i].Bins()
		}
		if flat != idx {
			t.Errorf("Coords of cell %d, %v, flatten to %d.", idx, coords, flat)
		}
	}
}

func TestProjection(t *testing.T) {
	h, _ := NewQAxis("H", [3]float64{1, 1, 0}, []float64{0, 1})
	k, _ := NewQAxis("K", [3]float64{1, -1, 0}, []float64{0, 1})
	l, _ := NewQAxis("L", [3]float64{0, 0, 2}, []float64{0, 1})
	e, _ := NewEnergyAxis("E", []float64{0, 1})

	g, err := New(e, h, k, l)
	if err != nil {
		t.Fatal(err.Error())
	}
	w, err := g.Projection()
	if err != nil {
		t.Fatal(err.Error())
	}

	exp := [9]float64{1, 1, 0, 1, -1, 0, 0, 0, 2}
	for i := range exp {
		if w[i] != exp[i] {
			t.Errorf("Expected projection %v, got %v.", exp, w)
			break
		}
	}
}

func TestCache(t *testing.T) {
	g := testGrid(t)
	c, err := g.Cache()
	if err != nil {
		t.Fatal(err.Error())
	}

	if c.QIdx != [3]int{0, 1, 3} {
		t.Errorf("Expected Q axes [0 1 3], got %v.", c.QIdx)
	}
	if !c.HasEnergy() || c.EnergyIdx != 2 {
		t.Errorf("Expected energy axis 2, got %d.", c.EnergyIdx)
	}
	if c.EnergyMin() != -5 || c.EnergyMax() != 5 {
		t.Errorf("Expected energy range [-5, 5], got [%g, %g].",
			c.EnergyMin(), c.EnergyMax())
	}
	if c.QMin != [3]float64{-1, 0, -2} || c.QMax != [3]float64{1, 6, 2} {
		t.Errorf("Expected Q range [-1 0 -2] to [1 6 2], got %v to %v.",
			c.QMin, c.QMax)
	}

	if !c.InsideQ([3]float64{1, 6, 2}, 0) {
		t.Errorf("Expected the top corner of the grid to be inside.")
	}
	if c.InsideQ([3]float64{1.1, 0, 0}, 1e-7) {
		t.Errorf("Expected H = 1.1 to be outside.")
	}
}

func TestCacheNeedsThreeQAxes(t *testing.T) {
	h, _ := NewQAxis("H", [3]float64{1, 0, 0}, []float64{0, 1})
	k, _ := NewQAxis("K", [3]float64{0, 1, 0}, []float64{0, 1})
	e, _ := NewEnergyAxis("E", []float64{0, 1})

	g, err := New(h, k, e)
	if err != nil {
		t.Fatal(err.Error())
	}
	if _, err := g.Cache(); err == nil {
		t.Errorf("Expected an error for a grid with two Q axes.")
	}
	if _, err := g.Projection(); err == nil {
		t.Errorf("Expected an error for a grid with two Q axes.")
	}
}

func BenchmarkIndex(b *testing.B) {
	h, _ := NewQAxis("H", [3]float64{1, 0, 0}, UniformEdges(-5, 5, 200))
	k, _ := NewQAxis("K", [3]float64{0, 1, 0}, UniformEdges(-5, 5, 200))
	l, _ := NewQAxis("L", [3]float64{0, 0, 1}, UniformEdges(-5, 5, 50))
	g, _ := New(h, k, l)
	pos := []float64{1.234, -3.21, 0.5}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.Index(pos)
	}
}
