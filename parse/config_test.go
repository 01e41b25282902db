package parse

import (
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/phil-mansfield/mdnorm/math/mat"
)

func TestIntConv(t *testing.T) {
	var x int64
	if ok := intConv(&x)("41891"); !ok || x != 41891 {
		t.Errorf("intConv did not write valid input to pointer.")
	}
	if ok := intConv(&x)("twelve"); ok {
		t.Errorf("intConv successful on invalid input.")
	}
}

func TestFloatsConv(t *testing.T) {
	x := []float64{7, 7, 7, 7}
	if ok := floatsConv(&x)("1, 2.5 , 3"); !ok {
		t.Errorf("floatsConv unsuccesful on valid input.")
	}
	if !floatsEq(x, []float64{1, 2.5, 3}, 0) {
		t.Errorf("floatsConv wrote %v, not [1 2.5 3].", x)
	}
	if ok := floatsConv(&x)("1,two,3"); ok {
		t.Errorf("floatsConv successful on invalid input.")
	}
	if ok := floatsConv(&x)(""); !ok || len(x) != 0 {
		t.Errorf("floatsConv did not read an empty list: %v.", x)
	}
}

func TestStringsConv(t *testing.T) {
	var x []string
	if ok := stringsConv(&x)("H, K , DeltaE"); !ok {
		t.Errorf("stringsConv unsuccesful on valid input.")
	}
	if !slices.Equal(x, []string{"H", "K", "DeltaE"}) {
		t.Errorf("stringsConv wrote %v.", x)
	}
}

func TestMatrixConv(t *testing.T) {
	var m mat.Matrix3
	if ok := matrixConv(&m)("1, 0, 0, 0, 0.5, 0, 0, 0, -2"); !ok {
		t.Errorf("matrixConv unsuccessful on valid input.")
	}
	if m != (mat.Matrix3{1, 0, 0, 0, 0.5, 0, 0, 0, -2}) {
		t.Errorf("matrixConv wrote %v.", m)
	}
	if ok := matrixConv(&m)("1, 0, 0, 0, 1, 0, 0, 0"); ok {
		t.Errorf("matrixConv successful on eight values.")
	}
}

func floatsEq(xs, ys []float64, eps float64) bool {
	if len(xs) != len(ys) {
		return false
	}
	for i := range xs {
		if math.Abs(xs[i]-ys[i]) > eps {
			return false
		}
	}
	return true
}

func TestRemoveComments(t *testing.T) {
	table := []struct {
		in, out  []string
		lineNums []int
	}{
		{[]string{}, []string{}, []int{}},
		{[]string{"Ei = 12"}, []string{"Ei = 12"}, []int{0}},
		{[]string{"#Ei = 12"}, []string{}, []int{}},
		{[]string{"Ei = 12", " # comment", "", "   EMin = -2 "},
			[]string{"Ei = 12", "EMin = -2"}, []int{0, 3}},
	}

	for i := range table {
		res, lineNums := removeComments(table[i].in)
		if !slices.Equal(table[i].out, res) {
			t.Errorf("%d) Called removeComments(%v), got %v",
				i+1, table[i].in, res)
		}
		if !slices.Equal(table[i].lineNums, lineNums) {
			t.Errorf("%d) Called removeComments(%v), got %v lineNums",
				i+1, table[i].in, lineNums)
		}
	}
}

func TestAssociationList(t *testing.T) {
	table := []struct {
		lines       []string
		names, vals []string
		errLine     int
	}{
		{[]string{"a=b"}, []string{"a"}, []string{"b"}, -1},
		{[]string{"a"}, []string{}, []string{}, 0},
		{[]string{"=b"}, []string{}, []string{}, 0},
		{[]string{"A=b", "c=", " a = "},
			[]string{"a", "c", "a"},
			[]string{"b", "", ""}, -1},
	}

	for i := range table {
		names, vals, errLine := associationList(table[i].lines)
		if errLine != table[i].errLine {
			t.Errorf("%d) Expected errLine = %d, got %d",
				i+1, table[i].errLine, errLine)
		}
		if errLine != -1 {
			continue
		}
		if !slices.Equal(names, table[i].names) {
			t.Errorf("%d) Expected names = %v, got %v.",
				i+1, table[i].names, names)
		}
		if !slices.Equal(vals, table[i].vals) {
			t.Errorf("%d) Expected vals = %v, got %v.",
				i+1, table[i].vals, vals)
		}
	}
}

type testConfig struct {
	float  float64
	floats []float64
	num    int64
	nums   []int64
	okay   bool
	okays  []bool
	word   string
	words  []string
	ub     mat.Matrix3
}

func makeTestConfig() (*testConfig, *ConfigVars) {
	config := &testConfig{}
	vars := NewConfigVars("config")
	vars.Int(&config.num, "Num", 0)
	vars.Ints(&config.nums, "Nums", []int64{})
	vars.Float(&config.float, "Float", 0)
	vars.Floats(&config.floats, "Floats", []float64{})
	vars.Bool(&config.okay, "Okay", false)
	vars.Bools(&config.okays, "Okays", []bool{})
	vars.String(&config.word, "Word", "")
	vars.Strings(&config.words, "Words", []string{})
	vars.Matrix(&config.ub, "UB", mat.Identity3())

	return config, vars
}

const validConfig = `# A test config file.
[config]

Float = -1.2e4 # trailing comment
floats = 2.5, 2.5, 2.5
NUM = 3
Nums = 1, 1, 2, 3, 5
Okay = true
Okays = true, false, true
Word = Diffraction
Words = temperature, field, pressure
`

func TestValidConfig(t *testing.T) {
	config, vars := makeTestConfig()
	if err := ParseConfig(validConfig, "valid.config", vars); err != nil {
		t.Fatalf("Expected successful read of config file, but got "+
			"error:\n %s", err.Error())
	}

	if config.float != -1.2e4 {
		t.Errorf("Expected float = %g, but got %g", -1.2e4, config.float)
	}
	if !floatsEq([]float64{2.5, 2.5, 2.5}, config.floats, 0) {
		t.Errorf("Expected floats = %v, but got %v.",
			[]float64{2.5, 2.5, 2.5}, config.floats)
	}
	if config.num != 3 {
		t.Errorf("Expected num = %d, but got %d", 3, config.num)
	}
	if len(config.nums) != 5 || config.nums[4] != 5 {
		t.Errorf("Expected nums = [1 1 2 3 5], but got %v", config.nums)
	}
	if !config.okay || len(config.okays) != 3 || config.okays[1] {
		t.Errorf("Expected okay = true and okays = [true false true], got "+
			"%v and %v", config.okay, config.okays)
	}
	if config.word != "Diffraction" {
		t.Errorf("Expected word = %v, but got %v", "Diffraction", config.word)
	}
	if !slices.Equal([]string{"temperature", "field", "pressure"}, config.words) {
		t.Errorf("Expected words = %v, but got %v",
			[]string{"temperature", "field", "pressure"}, config.words)
	}

	if config.ub != mat.Identity3() {
		t.Errorf("Expected the default UB, got %v.", config.ub)
	}
	if !vars.IsSet("float") || !vars.IsSet("WORDS") {
		t.Errorf("Expected Float and Words to be marked as set.")
	}
	if vars.IsSet("UB") || vars.IsSet("missing") {
		t.Errorf("Expected UB and missing to be marked as unset.")
	}
}

func TestInvalidConfig(t *testing.T) {
	texts := []string{
		"",
		"# only a comment",
		"[wrong]\nNum = 3",
		"[config]\nNum",
		"[config]\n= 3",
		"[config]\nNum = 3\nnum = 4",
		"[config]\nEf = 3",
		"[config]\nNum = 3.5",
		"[config]\nUB = 1, 2, 3",
		"Num = 3\n[config]",
	}

	for i := range texts {
		_, vars := makeTestConfig()
		err := ParseConfig(texts[i], "invalid.config", vars)
		if err == nil {
			t.Errorf("%d) No error was reported when parsing %q.",
				i, texts[i])
		} else if testing.Verbose() {
			t.Logf("%d) %s", i, err.Error())
		}
	}
}

func TestReadConfig(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "test.config")
	text := "[config]\nUB = 0.2, 0, 0, 0, 0.2, 0, 0, 0, 0.1\n"
	if err := os.WriteFile(fname, []byte(text), 0644); err != nil {
		t.Fatal(err.Error())
	}

	config, vars := makeTestConfig()
	if err := ReadConfig(fname, vars); err != nil {
		t.Fatal(err.Error())
	}
	if config.ub != (mat.Matrix3{0.2, 0, 0, 0, 0.2, 0, 0, 0, 0.1}) {
		t.Errorf("Read UB = %v.", config.ub)
	}
	if !vars.IsSet("ub") {
		t.Errorf("Expected UB to be marked as set.")
	}

	if err := ReadConfig(fname+".missing", vars); err == nil {
		t.Errorf("Expected an error for a missing file.")
	}
}
