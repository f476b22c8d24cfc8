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
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"gonum.org/v1/gonum/floats"
)

// WriteSummary prints the status line and diagnostics of a solve.
func WriteSummary(w io.Writer, res *SolveResult) error {
	_, err := fmt.Fprintf(w,
		"status: %s\nobjective: %g\ndual bound: %g\ngap: %g\nnodes: %d\ntime: %.3fs\n",
		res.Status(), res.ObjectiveValue(), res.DualBound(), res.Gap(), res.NodeCount(), res.WallClock().Seconds())
	return err
}

// WriteSolution prints the incumbent of res as a per-period table. Periods are
// numbered from 1. Results without an optimal solution only get a notice.
func WriteSolution(w io.Writer, res *SolveResult) error {
	switch res.Status() {
	case SolutionOptimal:
	case SolutionTimeLimit:
		_, err := fmt.Fprintln(w, "time limit reached: solution not shown")
		return err
	default:
		_, err := fmt.Fprintln(w, "no feasible solution found")
		return err
	}

	f := res.Formulation()
	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', tabwriter.Debug)

	switch f.Variant {
	case Flow:
		writeFlowSolution(tw, res)
	case Assignment:
		writeAssignmentSolution(tw, res)
	default:
		return fmt.Errorf("unknown formulation variant %v", f.Variant)
	}

	return tw.Flush()
}

func writeFlowSolution(tw *tabwriter.Writer, res *SolveResult) {
	f := res.Formulation()
	n := f.Instance.Periods
	y, x, s := f.Variable("y"), f.Variable("x"), f.Variable("s")

	production := make([]float64, n)

	fmt.Fprintln(tw, "period\ty (setup)\tx (production)\ts (stock)\t")
	for i := 0; i < n; i++ {
		production[i] = res.Value(x, i)
		fmt.Fprintf(tw, "%d\t%.0f\t%.2f\t%.2f\t\n", i+1, math.Abs(res.Value(y, i)), production[i], res.Value(s, i))
	}
	fmt.Fprintf(tw, "total\t\t%.2f\t\t\n", floats.Sum(production))
}

func writeAssignmentSolution(tw *tabwriter.Writer, res *SolveResult) {
	f := res.Formulation()
	n := f.Instance.Periods
	y, x := f.Variable("y"), f.Variable("x")

	format := "%.0f"
	if f.Relaxed {
		format = "%.2f"
	}

	header := []string{"period", "y (setup)"}
	for j := 0; j < n; j++ {
		header = append(header, fmt.Sprintf("j=%d", j+1))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")

	for i := 0; i < n; i++ {
		cells := []string{fmt.Sprint(i + 1), fmt.Sprintf(format, math.Abs(res.Value(y, i)))}
		for j := 0; j < n; j++ {
			if j < i {
				cells = append(cells, "-")
				continue
			}
			cells = append(cells, fmt.Sprintf(format, math.Abs(res.Value(x, i, j))))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
	}
}
