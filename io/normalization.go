package io

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/phil-mansfield/mdnorm/cmd/catalog"
	"github.com/phil-mansfield/mdnorm/grid"
)

// NormalizationLines returns the lines of a normalization table: a column
// header followed by one row per grid cell, holding the cell center on every
// axis and then the normalization.
func NormalizationLines(g *grid.Grid, signal []float64) []string {
	if len(signal) != g.Size() {
		panic(fmt.Sprintf("Grid has %d cells, but the signal has %d.",
			g.Size(), len(signal)))
	}

	names := make([]string, g.Dims()+1)
	sizes := make([]int, g.Dims()+1)
	for i := range g.Axes {
		names[i], sizes[i] = g.Axes[i].Name, 1
	}
	names[g.Dims()], sizes[g.Dims()] = "Normalization", 1

	cols := make([][]float64, g.Dims()+1)
	for i := range g.Axes {
		cols[i] = make([]float64, g.Size())
	}
	cols[g.Dims()] = signal

	center := make([]float64, g.Dims())
	for idx := 0; idx < g.Size(); idx++ {
		g.Center(idx, center)
		for i := range center {
			cols[i][idx] = center[i]
		}
	}

	lines := []string{
		catalog.CommentString(names, sizes),
		fmt.Sprintf("# Shape: %v", g.Shape()),
	}
	return append(lines, catalog.FormatCols(nil, cols)...)
}

// WriteNormalization writes a normalization table to w.
func WriteNormalization(w io.Writer, g *grid.Grid, signal []float64) error {
	bw := bufio.NewWriter(w)
	for _, line := range NormalizationLines(g, signal) {
		if _, err := fmt.Fprintln(bw, line); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteNormalizationFile writes a normalization table to the file fname.
func WriteNormalizationFile(fname string, g *grid.Grid, signal []float64) error {
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	if err = WriteNormalization(f, g, signal); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadNormalization reads a table written by WriteNormalization and returns
// its normalization column. The table's cell centers must match g.
func ReadNormalization(fname string, g *grid.Grid) ([]float64, error) {
	idxs := make([]int, g.Dims()+1)
	for i := range idxs {
		idxs[i] = i
	}
	_, cols, err := catalog.ReadFile(fname, nil, idxs)
	if err != nil {
		return nil, err
	}

	signal := cols[g.Dims()]
	if len(signal) != g.Size() {
		return nil, fmt.Errorf(
			"The normalization table %s has %d rows, but the grid has "+
				"%d cells.", fname, len(signal), g.Size(),
		)
	}

	center := make([]float64, g.Dims())
	for idx := 0; idx < g.Size(); idx++ {
		g.Center(idx, center)
		for i := range center {
			c := cols[i][idx]
			if math.Abs(c-center[i]) > 1e-6*(1+math.Abs(center[i])) {
				return nil, fmt.Errorf(
					"Row %d of the normalization table %s has %s = %g, "+
						"but the grid's cell center is at %g.",
					idx, fname, g.Axes[i].Name, c, center[i],
				)
			}
		}
	}

	return signal, nil
}
