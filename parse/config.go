/*package parse reads the config files used by mdnorm. A config file starts
with a "[name]" header and is followed by "Name = value" lines. Anything
after a "#" is a comment, variable names are case-insensitive, and list
values are comma-separated.
*/
package parse

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/phil-mansfield/mdnorm/math/mat"
)

/////////////////////
// Conversion Code //
/////////////////////

type varType int

const (
	intVar varType = iota
	intsVar
	floatVar
	floatsVar
	stringVar
	stringsVar
	boolVar
	boolsVar
	matrixVar
)

func (v varType) String() string {
	switch v {
	case intVar:
		return "int"
	case intsVar:
		return "int list"
	case floatVar:
		return "float"
	case floatsVar:
		return "float list"
	case stringVar:
		return "string"
	case stringsVar:
		return "string list"
	case boolVar:
		return "bool"
	case boolsVar:
		return "bool list"
	case matrixVar:
		return "3x3 matrix"
	}
	panic("Impossible")
}

type conversionFunc func(string) bool

type variable struct {
	name string
	kind varType
	conv conversionFunc
	set  bool
}

// ConfigVars is the set of variables a config file may assign to.
type ConfigVars struct {
	name string
	vars []variable
}

func intConv(ptr *int64) conversionFunc {
	return func(s string) bool {
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return false
		}
		*ptr = i
		return true
	}
}

func floatConv(ptr *float64) conversionFunc {
	return func(s string) bool {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return false
		}
		*ptr = f
		return true
	}
}

func stringConv(ptr *string) conversionFunc {
	return func(s string) bool {
		*ptr = strings.TrimSpace(s)
		return true
	}
}

func boolConv(ptr *bool) conversionFunc {
	return func(s string) bool {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return false
		}
		*ptr = b
		return true
	}
}

// strToList splits a comma-separated list. An empty string is an empty
// list.
func strToList(a string) []string {
	if strings.TrimSpace(a) == "" {
		return []string{}
	}
	strs := strings.Split(a, ",")
	for i := range strs {
		strs[i] = strings.TrimSpace(strs[i])
	}
	return strs
}

func intsConv(ptr *[]int64) conversionFunc {
	return func(s string) bool {
		toks := strToList(s)
		out := make([]int64, len(toks))
		for j := range toks {
			i, err := strconv.ParseInt(toks[j], 10, 64)
			if err != nil {
				return false
			}
			out[j] = i
		}
		*ptr = out
		return true
	}
}

func floatsConv(ptr *[]float64) conversionFunc {
	return func(s string) bool {
		toks := strToList(s)
		out := make([]float64, len(toks))
		for j := range toks {
			f, err := strconv.ParseFloat(toks[j], 64)
			if err != nil {
				return false
			}
			out[j] = f
		}
		*ptr = out
		return true
	}
}

func stringsConv(ptr *[]string) conversionFunc {
	return func(s string) bool {
		*ptr = strToList(s)
		return true
	}
}

func boolsConv(ptr *[]bool) conversionFunc {
	return func(s string) bool {
		toks := strToList(s)
		out := make([]bool, len(toks))
		for j := range toks {
			b, err := strconv.ParseBool(toks[j])
			if err != nil {
				return false
			}
			out[j] = b
		}
		*ptr = out
		return true
	}
}

// matrixConv reads nine comma-separated floats in row-major order.
func matrixConv(ptr *mat.Matrix3) conversionFunc {
	return func(s string) bool {
		var vals []float64
		if !floatsConv(&vals)(s) || len(vals) != 9 {
			return false
		}
		*ptr = mat.NewMatrix3(vals)
		return true
	}
}

// NewConfigVars creates an empty set of variables for config files with the
// header [name].
func NewConfigVars(name string) *ConfigVars {
	return &ConfigVars{name: name}
}

func (vars *ConfigVars) add(name string, kind varType, conv conversionFunc) {
	vars.vars = append(vars.vars, variable{
		name: strings.ToLower(name), kind: kind, conv: conv,
	})
}

func (vars *ConfigVars) Int(ptr *int64, name string, value int64) {
	*ptr = value
	vars.add(name, intVar, intConv(ptr))
}

func (vars *ConfigVars) Float(ptr *float64, name string, value float64) {
	*ptr = value
	vars.add(name, floatVar, floatConv(ptr))
}

func (vars *ConfigVars) String(ptr *string, name string, value string) {
	*ptr = value
	vars.add(name, stringVar, stringConv(ptr))
}

func (vars *ConfigVars) Bool(ptr *bool, name string, value bool) {
	*ptr = value
	vars.add(name, boolVar, boolConv(ptr))
}

func (vars *ConfigVars) Ints(ptr *[]int64, name string, value []int64) {
	*ptr = value
	vars.add(name, intsVar, intsConv(ptr))
}

func (vars *ConfigVars) Floats(ptr *[]float64, name string, value []float64) {
	*ptr = value
	vars.add(name, floatsVar, floatsConv(ptr))
}

func (vars *ConfigVars) Strings(ptr *[]string, name string, value []string) {
	*ptr = value
	vars.add(name, stringsVar, stringsConv(ptr))
}

func (vars *ConfigVars) Bools(ptr *[]bool, name string, value []bool) {
	*ptr = value
	vars.add(name, boolsVar, boolsConv(ptr))
}

// Matrix registers a 3x3 matrix, written as nine comma-separated values in
// row-major order.
func (vars *ConfigVars) Matrix(ptr *mat.Matrix3, name string, value mat.Matrix3) {
	*ptr = value
	vars.add(name, matrixVar, matrixConv(ptr))
}

// IsSet returns true if the last config file read assigned to the variable
// name.
func (vars *ConfigVars) IsSet(name string) bool {
	j := vars.find(strings.ToLower(name))
	return j != -1 && vars.vars[j].set
}

func (vars *ConfigVars) find(name string) int {
	for j := range vars.vars {
		if vars.vars[j].name == name {
			return j
		}
	}
	return -1
}

//////////////////
// Parsing Code //
//////////////////

// ReadConfig reads the config file fname into vars.
func ReadConfig(fname string, vars *ConfigVars) error {
	bs, err := os.ReadFile(fname)
	if err != nil {
		return err
	}
	return ParseConfig(string(bs), fname, vars)
}

// ParseConfig reads config text into vars. source names the text in error
// messages.
func ParseConfig(text, source string, vars *ConfigVars) error {
	for j := range vars.vars {
		vars.vars[j].set = false
	}

	lines, lineNums := removeComments(strings.Split(text, "\n"))
	for i := range lineNums {
		lineNums[i]++
	}

	if len(lines) == 0 || lines[0] != fmt.Sprintf("[%s]", vars.name) {
		return fmt.Errorf(
			"I expected the config file %s to have the header "+
				"[%s] at the top, but didn't find it.", source, vars.name,
		)
	}
	lines, lineNums = lines[1:], lineNums[1:]

	names, vals, errLine := associationList(lines)
	if errLine != -1 {
		return fmt.Errorf(
			"I could not parse line %d of the config file %s because it "+
				"did not take the form of a variable assignment.",
			lineNums[errLine], source,
		)
	}

	idx := make([]int, len(names))
	for i := range names {
		if idx[i] = vars.find(names[i]); idx[i] == -1 {
			return fmt.Errorf(
				"Line %d of the config file %s assigns a value to the "+
					"variable '%s', but config files of type %s don't have "+
					"that variable.", lineNums[i], source, names[i], vars.name,
			)
		}
		for k := 0; k < i; k++ {
			if names[k] == names[i] {
				return fmt.Errorf(
					"Lines %d and %d of the config file %s both assign a "+
						"value to the variable '%s'.",
					lineNums[k], lineNums[i], source, names[i],
				)
			}
		}
	}

	for i := range names {
		v := &vars.vars[idx[i]]
		if !v.conv(vals[i]) {
			typeName := v.kind.String()
			a := "a"
			if strings.IndexByte("aeiou", typeName[0]) >= 0 {
				a = "an"
			}
			return fmt.Errorf(
				"I could not parse line %d of the config file %s because "+
					"'%s' expects values of type %s and '%s' cannot be "+
					"converted to %s %s.", lineNums[i], source, names[i],
				typeName, vals[i], a, typeName,
			)
		}
		v.set = true
	}

	return nil
}

// removeComments strips comments and blank lines, returning the remaining
// lines and their zero-indexed line numbers.
func removeComments(lines []string) ([]string, []int) {
	out, lineNums := []string{}, []int{}
	for i := range lines {
		line := lines[i]
		if comment := strings.IndexByte(line, '#'); comment != -1 {
			line = line[:comment]
		}
		line = strings.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		out = append(out, line)
		lineNums = append(lineNums, i)
	}
	return out, lineNums
}

// associationList splits "name = value" lines. The index of the first
// malformed line is returned, or -1 if there is none.
func associationList(lines []string) ([]string, []string, int) {
	names, vals := []string{}, []string{}
	for i := range lines {
		eq := strings.IndexByte(lines[i], '=')
		if eq == -1 {
			return nil, nil, i
		}
		name := strings.ToLower(strings.TrimSpace(lines[i][:eq]))
		if len(name) == 0 {
			return nil, nil, i
		}
		names = append(names, name)
		vals = append(vals, strings.TrimSpace(lines[i][eq+1:]))
	}
	return names, vals, -1
}
