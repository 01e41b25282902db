/*package symmetry enumerates the crystallographic point-group operations
used to fold equivalent regions of reciprocal space onto one another.

Operations are stored in their direct-space Jones form, the integer matrix M
such that a fractional coordinate r maps to M r. The corresponding action on
Miller indices is (M^-1)^T.
*/
package symmetry

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/phil-mansfield/mdnorm/math/mat"
)

// Operation is a point-group operation in direct-space Jones form.
type Operation struct {
	M [3][3]int
}

var jonesVars = [3]byte{'x', 'y', 'z'}

// Identity returns the identity operation.
func Identity() Operation {
	return Operation{M: [3][3]int{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}}
}

// Mult returns the composition op * o, which applies o first.
func (op Operation) Mult(o Operation) Operation {
	out := Operation{}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				out.M[i][j] += op.M[i][k] * o.M[k][j]
			}
		}
	}
	return out
}

// Det returns the determinant of the operation, which is 1 for proper
// rotations and -1 for improper ones.
func (op Operation) Det() int {
	m := &op.M
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

// Transpose returns the transpose of the operation's matrix.
func (op Operation) Transpose() Operation {
	out := Operation{}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.M[i][j] = op.M[j][i]
		}
	}
	return out
}

// Inverse returns the inverse operation. It panics if the matrix is not
// unimodular, since every crystallographic operation is.
func (op Operation) Inverse() Operation {
	det := op.Det()
	if det != 1 && det != -1 {
		panic(fmt.Sprintf("Operation %s has determinant %d.", op, det))
	}

	m := &op.M
	out := Operation{}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			// Cofactor of (j, i), so out is the adjugate.
			r0, r1 := (j+1)%3, (j+2)%3
			c0, c1 := (i+1)%3, (i+2)%3
			out.M[i][j] = det * (m[r0][c0]*m[r1][c1] - m[r0][c1]*m[r1][c0])
		}
	}
	return out
}

// Matrix returns the direct-space matrix as floats.
func (op Operation) Matrix() mat.Matrix3 {
	out := mat.Matrix3{}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[3*i+j] = float64(op.M[i][j])
		}
	}
	return out
}

// HKL returns the matrix which applies the operation to Miller indices,
// (M^-1)^T.
func (op Operation) HKL() mat.Matrix3 {
	return op.Inverse().Transpose().Matrix()
}

// ApplyHKL applies the operation to a set of Miller indices.
func (op Operation) ApplyHKL(hkl [3]float64) [3]float64 {
	m := op.HKL()
	return m.MultVec(hkl)
}

// String returns the Jones symbol of the operation, e.g. "-y,x-y,z".
func (op Operation) String() string {
	rows := make([]string, 3)
	for i := 0; i < 3; i++ {
		sb := strings.Builder{}
		for j := 0; j < 3; j++ {
			c := op.M[i][j]
			switch {
			case c == 0:
				continue
			case c == -1:
				sb.WriteByte('-')
			case c < 0:
				sb.WriteString(strconv.Itoa(c))
			case sb.Len() > 0 && c == 1:
				sb.WriteByte('+')
			case sb.Len() > 0:
				sb.WriteString("+" + strconv.Itoa(c))
			case c != 1:
				sb.WriteString(strconv.Itoa(c))
			}
			sb.WriteByte(jonesVars[j])
		}
		if sb.Len() == 0 {
			sb.WriteByte('0')
		}
		rows[i] = sb.String()
	}
	return strings.Join(rows, ",")
}

// ParseJones parses a Jones symbol such as "-y,x-y,z" or "x+1/2,-y,z".
// Translations are accepted and discarded since only the point-group part
// of an operation acts on reciprocal space.
func ParseJones(s string) (Operation, error) {
	rows := strings.Split(strings.Join(strings.Fields(s), ""), ",")
	if len(rows) != 3 {
		return Operation{}, fmt.Errorf("The symmetry operation '%s' has %d "+
			"components, but three are needed.", s, len(rows))
	}

	op := Operation{}
	for i := range rows {
		if err := parseJonesRow(strings.ToLower(rows[i]), &op.M[i]); err != nil {
			return Operation{}, fmt.Errorf("Could not parse component %d of "+
				"the symmetry operation '%s': %s", i+1, s, err.Error())
		}
	}

	if det := op.Det(); det != 1 && det != -1 {
		return Operation{}, fmt.Errorf("The symmetry operation '%s' has "+
			"determinant %d, so it is not a crystallographic operation.",
			s, det)
	}
	return op, nil
}

func parseJonesRow(row string, out *[3]int) error {
	if row == "" {
		return fmt.Errorf("the component is empty.")
	}

	for len(row) > 0 {
		sign := 1
		switch row[0] {
		case '-':
			sign = -1
			row = row[1:]
		case '+':
			row = row[1:]
		}

		n := 0
		for n < len(row) && row[n] != '+' && row[n] != '-' {
			n++
		}
		term := row[:n]
		row = row[n:]
		if term == "" {
			return fmt.Errorf("a sign is not followed by a term.")
		}

		v := strings.IndexByte("xyz", term[len(term)-1])
		if v < 0 {
			// A translation.
			if _, err := parseFraction(term); err != nil {
				return err
			}
			continue
		}

		coeff := 1
		if prefix := strings.TrimSuffix(term[:len(term)-1], "*"); prefix != "" {
			c, err := strconv.Atoi(prefix)
			if err != nil {
				return fmt.Errorf("the coefficient of %c, '%s', is not an "+
					"integer.", term[len(term)-1], prefix)
			}
			coeff = c
		}
		out[v] += sign * coeff
	}
	return nil
}

func parseFraction(s string) (float64, error) {
	num, den := s, "1"
	if i := strings.IndexByte(s, '/'); i >= 0 {
		num, den = s[:i], s[i+1:]
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0, fmt.Errorf("'%s' is not a translation.", s)
	}
	return n / d, nil
}
