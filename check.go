/*
Copyright © 2022 Leo Antunes <leo@costela.net>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <http://www.gnu.org/licenses/>.
*/

package lotsizing

import (
	"errors"
	"fmt"
	"math"
)

// ErrViolation is matched by every error returned from Formulation.Check.
var ErrViolation = errors.New("solution violates formulation")

// Check verifies that values, a dense assignment of every column, respects
// the variable domains and every constraint within tol.
func (f *Formulation) Check(values []float64, tol float64) error {
	if len(values) != f.columns {
		return fmt.Errorf("%w: got %d values for %d columns", ErrViolation, len(values), f.columns)
	}

	for _, v := range f.vars {
		for k := 0; k < v.Len(); k++ {
			col := v.offset + k
			val := values[col]
			switch {
			case math.IsNaN(val):
				return fmt.Errorf("%w: %s is undefined", ErrViolation, f.ColumnName(col))
			case val < -tol || val > v.Upper+tol:
				return fmt.Errorf("%w: %s = %g outside [0, %g]", ErrViolation, f.ColumnName(col), val, v.Upper)
			case v.Domain.Integral() && math.Abs(val-math.Round(val)) > tol:
				return fmt.Errorf("%w: %s = %g is not integral", ErrViolation, f.ColumnName(col), val)
			}
		}
	}

	for _, c := range f.Constraints {
		lhs := evalTerms(c.Expr, values)
		ok := true
		switch c.Sense {
		case LessEqual:
			ok = lhs <= c.RHS+tol
		case Equal:
			ok = math.Abs(lhs-c.RHS) <= tol
		case GreaterEqual:
			ok = lhs >= c.RHS-tol
		}
		if !ok {
			return fmt.Errorf("%w: %s: %g %s %g", ErrViolation, c.Name, lhs, c.Sense, c.RHS)
		}
	}

	return nil
}
