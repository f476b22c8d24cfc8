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

/*

Package lotsizing models the Uncapacitated Lot-Sizing (ULS) problem as a
mixed-integer program and benchmarks alternative formulations of it.

Given demand d, unit production costs c, setup costs f and a per-unit,
per-period holding cost h over n periods, the problem is to choose the periods
in which to produce, and how much, so that all demand is met without
backlogging at minimum total cost.

Two formulations are available:

	Flow        y[i] binary, x[i] and s[i] integer; O(n) variables.
	            s[i] = s[i-1] + x[i] - d[i],  x[i] <= M*y[i]
	Assignment  y[i] and x[i,j] binary for i <= j; O(n²) variables.
	            sum_{i<=j} x[i,j] = 1,  x[i,j] <= y[i]

Formulations are solved through the Solver interface. The lpsolve and glpk
sub-packages provide implementations backed by lp_solve and GLPK respectively.
A typical batch run looks like this:

	package main

	import (
		"os"

		"github.com/costela/lotsizing"
		"github.com/costela/lotsizing/lpsolve"
	)

	func main() {
		eval, _ := lotsizing.NewEvaluator(lpsolve.New(),
			lotsizing.WithVariant(lotsizing.Flow),
		)

		batch, _ := eval.EvaluateDir("./Instances_ULS") // you should check for errors

		out, _ := os.Create("model1_results.tex")
		defer out.Close()

		report := lotsizing.Report{Caption: "Flow model results", Label: "tab:model1_results"}
		report.Render(out, batch)
	}

*/
package lotsizing

import "fmt"

// Instance is a single ULS problem. All four vectors have exactly Periods
// entries.
type Instance struct {
	Name        string
	Periods     int
	Demand      []int
	UnitCost    []int
	SetupCost   []int
	HoldingCost int
}

// Validate reports whether the instance is well formed. The returned error,
// if any, wraps ErrMalformedInstance.
func (inst *Instance) Validate() error {
	if inst.Periods <= 0 {
		return malformed(inst.Name, 0, fmt.Errorf("period count must be positive, got %d", inst.Periods))
	}

	vectors := []struct {
		name string
		vals []int
	}{
		{"demand", inst.Demand},
		{"unit cost", inst.UnitCost},
		{"setup cost", inst.SetupCost},
	}
	for _, v := range vectors {
		if len(v.vals) != inst.Periods {
			return malformed(inst.Name, 0, fmt.Errorf("%s has %d values, expected %d", v.name, len(v.vals), inst.Periods))
		}
	}

	for i, d := range inst.Demand {
		if d < 0 {
			return malformed(inst.Name, 0, fmt.Errorf("negative demand %d in period %d", d, i))
		}
	}

	if inst.HoldingCost < 0 {
		return malformed(inst.Name, 0, fmt.Errorf("negative holding cost %d", inst.HoldingCost))
	}

	return nil
}

// TotalDemand returns the sum of the demand from period `from` onwards.
func (inst *Instance) TotalDemand(from int) int {
	total := 0
	for _, d := range inst.Demand[from:] {
		total += d
	}
	return total
}
