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

import "fmt"

// buildAssignment builds the formulation where x[i,j] = 1 means that the
// demand of period j is produced in period i:
//
//	min  sum f[i] y[i] + sum_{i<=j} (c[i] + h (j-i)) d[j] x[i,j]
//	s.t. sum_{i<=j} x[i,j] = 1
//	     x[i,j] <= y[i]
//
// Only pairs with i <= j exist; backlogging is impossible by construction.
func buildAssignment(inst *Instance, relaxed bool) *Formulation {
	n := inst.Periods
	f := newFormulation(inst, Assignment, relaxed)

	y := f.declare("y", Binary, PeriodIndexed, 1)
	x := f.declare("x", Binary, PairIndexed, 1)

	f.Objective = make([]Term, 0, n+x.Len())
	for i := 0; i < n; i++ {
		f.Objective = append(f.Objective, Term{y.Column(i), float64(inst.SetupCost[i])})
		for j := i; j < n; j++ {
			unit := inst.UnitCost[i] + inst.HoldingCost*(j-i)
			f.Objective = append(f.Objective, Term{x.Column(i, j), float64(unit * inst.Demand[j])})
		}
	}

	for j := 0; j < n; j++ {
		expr := make([]Term, 0, j+1)
		for i := 0; i <= j; i++ {
			expr = append(expr, Term{x.Column(i, j), 1})
		}
		f.addConstraint(fmt.Sprintf("unique_demand_assignment_%d", j), expr, Equal, 1)
	}

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			f.addConstraint(fmt.Sprintf("setup_production_%d_%d", i, j),
				[]Term{{x.Column(i, j), 1}, {y.Column(i), -1}},
				LessEqual, 0)
		}
	}

	return f
}
