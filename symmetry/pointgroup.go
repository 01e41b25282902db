package symmetry

import (
	"fmt"
	"sort"
	"strings"
)

// pointGroupGenerators maps each point-group symbol (Hermann-Mauguin, no
// spaces) to Jones symbols which generate it. Trigonal and hexagonal
// groups use hexagonal axes.
var pointGroupGenerators = map[string][]string{
	"1":  {},
	"-1": {"-x,-y,-z"},

	"2":     {"-x,y,-z"},
	"m":     {"x,-y,z"},
	"2/m":   {"-x,y,-z", "-x,-y,-z"},
	"112":   {"-x,-y,z"},
	"11m":   {"x,y,-z"},
	"112/m": {"-x,-y,z", "-x,-y,-z"},

	"222": {"-x,-y,z", "-x,y,-z"},
	"mm2": {"-x,-y,z", "x,-y,z"},
	"2mm": {"x,-y,-z", "x,-y,z"},
	"m2m": {"-x,y,-z", "-x,y,z"},
	"mmm": {"-x,-y,z", "-x,y,-z", "-x,-y,-z"},

	"4":     {"-y,x,z"},
	"-4":    {"y,-x,-z"},
	"4/m":   {"-y,x,z", "-x,-y,-z"},
	"422":   {"-y,x,z", "-x,y,-z"},
	"4mm":   {"-y,x,z", "x,-y,z"},
	"-42m":  {"y,-x,-z", "-x,y,-z"},
	"-4m2":  {"y,-x,-z", "x,-y,z"},
	"4/mmm": {"-y,x,z", "-x,y,-z", "-x,-y,-z"},

	"3":    {"-y,x-y,z"},
	"-3":   {"-y,x-y,z", "-x,-y,-z"},
	"321":  {"-y,x-y,z", "y,x,-z"},
	"312":  {"-y,x-y,z", "-y,-x,-z"},
	"3m1":  {"-y,x-y,z", "-y,-x,z"},
	"31m":  {"-y,x-y,z", "y,x,z"},
	"-3m1": {"-y,x-y,z", "y,x,-z", "-x,-y,-z"},
	"-31m": {"-y,x-y,z", "-y,-x,-z", "-x,-y,-z"},

	"6":     {"x-y,x,z"},
	"-6":    {"-y,x-y,z", "x,y,-z"},
	"6/m":   {"x-y,x,z", "-x,-y,-z"},
	"622":   {"x-y,x,z", "y,x,-z"},
	"6mm":   {"x-y,x,z", "-y,-x,z"},
	"-6m2":  {"-y,x-y,z", "x,y,-z", "-y,-x,z"},
	"-62m":  {"-y,x-y,z", "x,y,-z", "y,x,z"},
	"6/mmm": {"x-y,x,z", "y,x,-z", "-x,-y,-z"},

	"23":   {"z,x,y", "-x,-y,z", "-x,y,-z"},
	"m-3":  {"z,x,y", "-x,-y,z", "-x,y,-z", "-x,-y,-z"},
	"432":  {"z,x,y", "-y,x,z"},
	"-43m": {"z,x,y", "y,-x,-z"},
	"m-3m": {"z,x,y", "-y,x,z", "-x,-y,-z"},
}

// pointGroupAliases maps alternative spellings onto the symbols above.
var pointGroupAliases = map[string]string{
	"121":   "2",
	"1m1":   "m",
	"12/m1": "2/m",
	"32":    "321",
	"3m":    "3m1",
	"-3m":   "-3m1",
	"m3":    "m-3",
	"m3m":   "m-3m",

	"2/m2/m2/m": "mmm",
	"4/m2/m2/m": "4/mmm",
	"6/m2/m2/m": "6/mmm",
	"2/m-3":     "m-3",
	"4/m-32/m":  "m-3m",
	"-32/m1":    "-3m1",
	"-312/m":    "-31m",
}

// PointGroupNames returns the canonical symbols of every supported point
// group in sorted order.
func PointGroupNames() []string {
	names := make([]string, 0, len(pointGroupGenerators))
	for name := range pointGroupGenerators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PointGroup returns every operation of the named point group. The
// identity is always first. Whitespace in the name is ignored.
func PointGroup(name string) ([]Operation, error) {
	key := strings.Join(strings.Fields(name), "")
	if alias, ok := pointGroupAliases[key]; ok {
		key = alias
	}

	gens, ok := pointGroupGenerators[key]
	if !ok {
		return nil, fmt.Errorf("'%s' is not a recognized point group.", name)
	}

	ops := make([]Operation, len(gens))
	for i := range gens {
		op, err := ParseJones(gens[i])
		if err != nil {
			panic(fmt.Sprintf("Generator '%s' of %s: %s",
				gens[i], key, err.Error()))
		}
		ops[i] = op
	}
	return Closure(ops), nil
}

// Closure returns the group generated by gens. The group is built
// breadth-first starting from the identity, so the output order is fixed
// for a given generator list.
func Closure(gens []Operation) []Operation {
	id := Identity()
	group := []Operation{id}
	seen := map[Operation]bool{id: true}

	for i := 0; i < len(group); i++ {
		for _, g := range gens {
			op := group[i].Mult(g)
			if !seen[op] {
				seen[op] = true
				group = append(group, op)
			}
		}
	}
	return group
}
