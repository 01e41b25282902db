package main

import (
	"bytes"
	"fmt"
	"os"
	"slices"
	"strconv"

	plt "github.com/phil-mansfield/pyplot"

	"github.com/phil-mansfield/mdnorm/cmd/catalog"
)

// plot_norm plots a normalization table projected onto one of its axes:
//
//	go run scripts/plot_norm.go norm.txt axis_column
func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "Usage: plot_norm table.txt axis_column")
		os.Exit(1)
	}

	fname := os.Args[1]
	axis, err := strconv.Atoi(os.Args[2])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not parse the axis column: %s\n", err)
		os.Exit(1)
	}

	width, err := columns(fname)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	if axis < 0 || axis >= width-1 {
		fmt.Fprintf(os.Stderr, "The table has %d axis columns, so %d is "+
			"out of range.\n", width-1, axis)
		os.Exit(1)
	}

	_, cols, err := catalog.ReadFile(fname, nil, []int{axis, width - 1})
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	xs, ys := project(cols[0], cols[1])

	plt.Figure(plt.Num(0), plt.FigSize(8, 8))
	plt.Title(fname)
	plt.Plot(xs, ys, "k", plt.Label(fmt.Sprintf("column %d", axis)), plt.LW(3))
	plt.Legend(plt.Loc("upper right"))
	plt.XLim(xs[0], xs[len(xs)-1])
	plt.YLim(0, 1.1*slices.Max(ys))
	plt.Show()
}

// columns returns the number of columns in the first data line of a table.
func columns(fname string) (int, error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return 0, err
	}
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		if i := bytes.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		if n := len(bytes.Fields(line)); n > 0 {
			return n, nil
		}
	}
	return 0, fmt.Errorf("The table %s is empty.", fname)
}

// project sums the normalization of every cell with the same center on the
// plotted axis.
func project(centers, norms []float64) (xs, ys []float64) {
	sums := map[float64]float64{}
	for i := range centers {
		sums[centers[i]] += norms[i]
	}

	xs = make([]float64, 0, len(sums))
	for x := range sums {
		xs = append(xs, x)
	}
	slices.Sort(xs)

	ys = make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = sums[x]
	}
	return xs, ys
}
