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

// buildFlow builds the inventory balance formulation:
//
//	min  sum f[i] y[i] + c[i] x[i] + h s[i]
//	s.t. s[i] = s[i-1] + x[i] - d[i]   (s[-1] = 0)
//	     x[i] <= M[i] y[i]
func buildFlow(inst *Instance, relaxed bool, settings buildSettings) *Formulation {
	n := inst.Periods
	f := newFormulation(inst, Flow, relaxed)

	y := f.declare("y", Binary, PeriodIndexed, 1)
	x := f.declare("x", NonNegativeInteger, PeriodIndexed, unbounded())
	s := f.declare("s", NonNegativeInteger, PeriodIndexed, unbounded())

	f.Objective = make([]Term, 0, 3*n)
	for i := 0; i < n; i++ {
		f.Objective = append(f.Objective,
			Term{y.Column(i), float64(inst.SetupCost[i])},
			Term{x.Column(i), float64(inst.UnitCost[i])},
			Term{s.Column(i), float64(inst.HoldingCost)},
		)
	}

	// s[i] - x[i] - s[i-1] = -d[i]
	for i := 0; i < n; i++ {
		expr := []Term{{s.Column(i), 1}, {x.Column(i), -1}}
		if i > 0 {
			expr = append(expr, Term{s.Column(i - 1), -1})
		}
		f.addConstraint(fmt.Sprintf("demand_balance_%d", i), expr, Equal, -float64(inst.Demand[i]))
	}

	total := inst.TotalDemand(0)
	for i := 0; i < n; i++ {
		m := total
		if settings.bigM == BigMRemainingDemand {
			m = inst.TotalDemand(i)
		}
		f.addConstraint(fmt.Sprintf("setup_production_%d", i),
			[]Term{{x.Column(i), 1}, {y.Column(i), -float64(m)}},
			LessEqual, 0)
	}

	return f
}
