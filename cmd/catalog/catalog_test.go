package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCommentString(t *testing.T) {
	tests := []struct {
		names []string
		sizes []int
		out   string
	}{
		{[]string{"A"}, []int{1}, "# Column contents: A(0)"},
		{[]string{"A"}, []int{11}, "# Column contents: A(0-10)"},
		{[]string{"A", "B"}, []int{1, 1}, "# Column contents: A(0) B(1)"},
		{[]string{"A", "B"}, []int{1, 2}, "# Column contents: A(0) B(1-2)"},
		{[]string{"A", "B", "C"}, []int{1, 2, 1},
			"# Column contents: A(0) B(1-2) C(3)"},
		{[]string{}, []int{}, "# Column contents:"},
	}

	for i, test := range tests {
		out := CommentString(test.names, test.sizes)
		if out != test.out {
			t.Errorf("%d) Expected '%s', got '%s'.", i, test.out, out)
		}
	}
}

func TestFormatCols(t *testing.T) {
	tests := []struct {
		icols [][]int
		fcols [][]float64
		out   []string
	}{
		{nil, nil, []string{}},
		{[][]int{{1, 10}}, nil, []string{" 1", "10"}},
		{[][]int{{1, 2}}, [][]float64{{0.5, 12}},
			[]string{"1 0.5", "2  12"}},
		{nil, [][]float64{{1, 2}, {-3, 4}}, []string{"1 -3", "2  4"}},
	}

	for i, test := range tests {
		out := FormatCols(test.icols, test.fcols)
		if len(out) != len(test.out) {
			t.Errorf("%d) Expected %d lines, got %d.",
				i, len(test.out), len(out))
			continue
		}
		for j := range out {
			if out[j] != test.out[j] {
				t.Errorf("%d) Expected line %d to be '%s', got '%s'.",
					i, j, test.out[j], out[j])
			}
		}
	}
}

func TestParse(t *testing.T) {
	text := `# id twoTheta phi
1  0.5  1.5
2  2.5  3.5 # trailing comment

3 -1e2  4
`
	icols, fcols, err := Parse([]byte(text), []int{0}, []int{2, 1})
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}

	ids := []int{1, 2, 3}
	phis := []float64{1.5, 3.5, 4}
	thetas := []float64{0.5, 2.5, -100}
	for i := range ids {
		if icols[0][i] != ids[i] {
			t.Errorf("%d) Expected id %d, got %d.", i, ids[i], icols[0][i])
		}
		if fcols[0][i] != phis[i] {
			t.Errorf("%d) Expected phi %g, got %g.", i, phis[i], fcols[0][i])
		}
		if fcols[1][i] != thetas[i] {
			t.Errorf("%d) Expected theta %g, got %g.",
				i, thetas[i], fcols[1][i])
		}
	}
}

func TestParseEmpty(t *testing.T) {
	icols, fcols, err := Parse([]byte("# nothing here\n\n"), []int{0}, []int{1})
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if len(icols[0]) != 0 || len(fcols[0]) != 0 {
		t.Errorf("Expected empty columns, got %v and %v.", icols, fcols)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		text  string
		icols []int
		fcols []int
	}{
		{"1 2\n3\n", []int{0}, nil},
		{"1 2\n", []int{2}, nil},
		{"1.5 2\n", []int{0}, nil},
		{"1 x\n", nil, []int{1}},
		{"1 2\n", nil, []int{-1}},
	}

	for i, test := range tests {
		_, _, err := Parse([]byte(test.text), test.icols, test.fcols)
		if err == nil {
			t.Errorf("%d) Expected an error for %q.", i, test.text)
		}
	}
}

func TestReadFile(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "table.txt")
	lines := FormatCols([][]int{{7, 8}}, [][]float64{{0.25, 0.75}})
	text := CommentString([]string{"ID", "Omega"}, []int{1, 1}) + "\n"
	for _, line := range lines {
		text += line + "\n"
	}
	if err := os.WriteFile(fname, []byte(text), 0644); err != nil {
		t.Fatal(err)
	}

	icols, fcols, err := ReadFile(fname, []int{0}, []int{1})
	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
	if icols[0][0] != 7 || icols[0][1] != 8 ||
		fcols[0][0] != 0.25 || fcols[0][1] != 0.75 {
		t.Errorf("Round trip gave %v and %v.", icols, fcols)
	}

	if _, _, err := ReadFile(fname+".missing", []int{0}, nil); err == nil {
		t.Errorf("Expected an error for a missing file.")
	}
}
