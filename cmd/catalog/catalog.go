/*package catalog reads and writes the whitespace-separated column tables
used for detector lists, flux spectra, and normalization output. Lines
starting with '#' (or the tail of a line after '#') are comments.
*/
package catalog

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// CommentString returns the header line describing which columns hold which
// quantity. sizes[i] is the number of columns taken up by names[i].
func CommentString(names []string, sizes []int) string {
	if len(names) != len(sizes) {
		panic("Length of names and sizes are not equal.")
	}

	var sb strings.Builder
	sb.WriteString("# Column contents:")
	col := 0
	for i := range names {
		switch {
		case sizes[i] <= 0:
			panic(fmt.Sprintf("Column %s has size %d.", names[i], sizes[i]))
		case sizes[i] == 1:
			fmt.Fprintf(&sb, " %s(%d)", names[i], col)
		default:
			fmt.Fprintf(&sb, " %s(%d-%d)", names[i], col, col+sizes[i]-1)
		}
		col += sizes[i]
	}

	return sb.String()
}

// FormatCols formats the given columns as aligned text lines. Integer columns
// come before float columns. All columns must have the same height.
func FormatCols(intCols [][]int, floatCols [][]float64) []string {
	height := -1
	check := func(n int) {
		if height == -1 {
			height = n
		} else if height != n {
			panic("Columns of unequal height.")
		}
	}

	cols := make([][]string, 0, len(intCols)+len(floatCols))
	for _, col := range intCols {
		check(len(col))
		cols = append(cols, align(col, "%d", "%*d"))
	}
	for _, col := range floatCols {
		check(len(col))
		cols = append(cols, align(col, "%.8g", "%*.8g"))
	}

	if height <= 0 {
		return []string{}
	}

	lines := make([]string, height)
	tokens := make([]string, len(cols))
	for i := range lines {
		for j := range cols {
			tokens[j] = cols[j][i]
		}
		lines[i] = strings.Join(tokens, " ")
	}

	return lines
}

// align formats every element of col with a common width.
func align[T int | float64](col []T, short, padded string) []string {
	width := 0
	for _, x := range col {
		if n := len(fmt.Sprintf(short, x)); n > width {
			width = n
		}
	}

	out := make([]string, len(col))
	for i, x := range col {
		out[i] = fmt.Sprintf(padded, width, x)
	}
	return out
}

// Parse parses the requested integer and float columns out of a text block.
// Column indices start at zero. Every data line must have the same number of
// columns as the first one.
func Parse(data []byte, icolIdxs, fcolIdxs []int) (
	[][]int, [][]float64, error,
) {
	lines, lineNums := dataLines(data)

	icols := make([][]int, len(icolIdxs))
	fcols := make([][]float64, len(fcolIdxs))
	for i := range icols {
		icols[i] = make([]int, len(lines))
	}
	for i := range fcols {
		fcols[i] = make([]float64, len(lines))
	}

	if len(lines) == 0 {
		return icols, fcols, nil
	}

	width := len(bytes.Fields(lines[0]))
	for _, idx := range icolIdxs {
		if idx < 0 || idx >= width {
			return nil, nil, fmt.Errorf(
				"Integer column %d was requested, but the table only "+
					"has %d columns.", idx, width,
			)
		}
	}
	for _, idx := range fcolIdxs {
		if idx < 0 || idx >= width {
			return nil, nil, fmt.Errorf(
				"Float column %d was requested, but the table only "+
					"has %d columns.", idx, width,
			)
		}
	}

	var err error
	for i, line := range lines {
		words := bytes.Fields(line)
		if len(words) != width {
			return nil, nil, fmt.Errorf(
				"Line %d has %d columns, not %d.",
				lineNums[i], len(words), width,
			)
		}

		for j, idx := range icolIdxs {
			icols[j][i], err = strconv.Atoi(string(words[idx]))
			if err != nil {
				return nil, nil, fmt.Errorf(
					"Could not parse column %d of line %d as an integer: %w",
					idx, lineNums[i], err,
				)
			}
		}
		for j, idx := range fcolIdxs {
			fcols[j][i], err = strconv.ParseFloat(string(words[idx]), 64)
			if err != nil {
				return nil, nil, fmt.Errorf(
					"Could not parse column %d of line %d as a float: %w",
					idx, lineNums[i], err,
				)
			}
		}
	}

	return icols, fcols, nil
}

// ReadFile parses the requested columns of the table stored in fname.
func ReadFile(fname string, icolIdxs, fcolIdxs []int) (
	[][]int, [][]float64, error,
) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, nil, err
	}
	icols, fcols, err := Parse(data, icolIdxs, fcolIdxs)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", fname, err)
	}
	return icols, fcols, nil
}

// dataLines strips comments and blank lines. lineNums holds the one-indexed
// position of each returned line in the original text.
func dataLines(data []byte) (lines [][]byte, lineNums []int) {
	for i, line := range bytes.Split(data, []byte{'\n'}) {
		if comm := bytes.IndexByte(line, '#'); comm >= 0 {
			line = line[:comm]
		}
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		lines = append(lines, line)
		lineNums = append(lineNums, i+1)
	}
	return lines, lineNums
}
