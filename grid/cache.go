package grid

// AxisCache holds the per-axis edge lists used while searching for
// trajectory intersections. It is built once per normalization and is
// read-only afterwards, so it may be shared between goroutines.
type AxisCache struct {
	// QIdx maps the three Q coordinates to grid axes.
	QIdx [3]int
	// Q holds the edges of each Q axis. An integrated axis contributes only
	// its two extrema.
	Q [3][]float64
	QMin, QMax [3]float64

	// EnergyIdx is the grid axis binning energy transfer, or -1.
	EnergyIdx int
	Energy []float64

	// AuxIdx and AuxLog list the grid axes binning logged values.
	AuxIdx []int
	AuxLog []string
}

// Cache builds the AxisCache for g. Roles are matched first-come: the first
// energy axis in grid order provides the energy edges, though every energy
// axis receives the energy coordinate when positions are binned.
func (g *Grid) Cache() (*AxisCache, error) {
	qIdx, err := g.qAxes()
	if err != nil {
		return nil, err
	}

	c := &AxisCache{QIdx: qIdx, EnergyIdx: -1}
	for i, ax := range qIdx {
		a := &g.Axes[ax]
		c.Q[i] = append([]float64(nil), a.Edges...)
		c.QMin[i], c.QMax[i] = a.Min(), a.Max()
	}

	if e := g.Find(EnergyAxis); e >= 0 {
		c.EnergyIdx = e
		c.Energy = append([]float64(nil), g.Axes[e].Edges...)
	}

	for i := range g.Axes {
		if g.Axes[i].Role == AuxAxis {
			c.AuxIdx = append(c.AuxIdx, i)
			c.AuxLog = append(c.AuxLog, g.Axes[i].Log)
		}
	}

	return c, nil
}

// HasEnergy returns true if the grid bins energy transfer.
func (c *AxisCache) HasEnergy() bool { return c.EnergyIdx >= 0 }

// EnergyMin returns the lowest energy edge. Only valid if HasEnergy().
func (c *AxisCache) EnergyMin() float64 { return c.Energy[0] }

// EnergyMax returns the highest energy edge. Only valid if HasEnergy().
func (c *AxisCache) EnergyMax() float64 { return c.Energy[len(c.Energy)-1] }

// InsideQ returns true if x lies within the Q extents of the grid, allowing
// eps of slack on every side.
func (c *AxisCache) InsideQ(x [3]float64, eps float64) bool {
	for i := 0; i < 3; i++ {
		if x[i] < c.QMin[i]-eps || x[i] > c.QMax[i]+eps {
			return false
		}
	}
	return true
}
