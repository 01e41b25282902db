package symmetry

import (
	"fmt"
	"strings"
)

const (
	latticeLetters = "PABCFIR"
	glideLetters   = "abcndeg"
)

// Resolve turns a user-supplied symmetry description into a list of
// operations. The description may be empty (identity only), a point-group
// symbol ("4/mmm", "m -3 m"), a space-group symbol with spaces between its
// components ("P 21/c", "F d -3 m"), or a semicolon-separated list of Jones
// symbols ("x,y,z; -x,-y,z"). Operation lists are used as given.
func Resolve(s string) ([]Operation, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []Operation{Identity()}, nil
	}

	if strings.Contains(s, ",") {
		return ParseList(s)
	}

	if ops, err := PointGroup(s); err == nil {
		return ops, nil
	}

	if strings.IndexByte(latticeLetters, s[0]) >= 0 {
		pg := Reduce(s)
		ops, err := PointGroup(pg)
		if err != nil {
			return nil, fmt.Errorf("The space group '%s' reduces to the "+
				"point group '%s', which is not recognized.", s, pg)
		}
		return ops, nil
	}

	return nil, fmt.Errorf("'%s' is not a recognized point group, space "+
		"group, or list of symmetry operations.", s)
}

// ParseList parses a semicolon-separated list of Jones symbols.
func ParseList(s string) ([]Operation, error) {
	tokens := strings.Split(s, ";")
	ops := make([]Operation, 0, len(tokens))
	for _, tok := range tokens {
		if strings.TrimSpace(tok) == "" {
			continue
		}
		op, err := ParseJones(tok)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}

	if len(ops) == 0 {
		return nil, fmt.Errorf("The operation list '%s' is empty.", s)
	}
	return ops, nil
}

// Reduce converts a space-group symbol into the symbol of its point group:
// the lattice letter is dropped, screw axes become rotations, and glide
// planes become mirrors. The components of the symbol must be separated by
// whitespace, as in "P 63/m m c" or "I 41/a m d".
func Reduce(spaceGroup string) string {
	fields := strings.Fields(spaceGroup)
	if len(fields) == 0 {
		return ""
	}

	if first := fields[0]; strings.IndexByte(latticeLetters, first[0]) >= 0 {
		if len(first) == 1 {
			fields = fields[1:]
		} else {
			fields[0] = first[1:]
		}
	}

	for i, f := range fields {
		parts := strings.Split(f, "/")
		for j, p := range parts {
			parts[j] = reducePart(p)
		}
		fields[i] = strings.Join(parts, "/")
	}

	return strings.Join(fields, "")
}

func reducePart(p string) string {
	if len(p) == 1 && strings.IndexByte(glideLetters, p[0]) >= 0 {
		return "m"
	}
	if len(p) == 2 && isScrew(p[0], p[1]) {
		return p[:1]
	}
	return p
}

// isScrew returns true if "nm" is the symbol of a screw axis n_m.
func isScrew(n, m byte) bool {
	return strings.IndexByte("2346", n) >= 0 && m >= '1' && m < n
}
