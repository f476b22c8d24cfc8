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
)

const (
	instancePrefix = "Instance"
	missingCell    = "{--}"
	groupSeparator = `\hdashline`
)

// Report renders a batch as a LaTeX table. The output needs the booktabs,
// siunitx, arydshln and float packages.
type Report struct {
	Caption string
	Label   string
}

// RowLabel strips the "Instance" prefix and the file extension from a corpus
// file name.
func RowLabel(filename string) string {
	label := strings.TrimSuffix(filename, InstanceExt)
	if strings.HasPrefix(label, instancePrefix) && strings.HasSuffix(filename, InstanceExt) {
		label = strings.TrimPrefix(label, instancePrefix)
	}
	return label
}

// Family returns the part of a row label before its first dot, so that
// "60.1" and "60.2" belong to family "60".
func Family(filename string) string {
	label := RowLabel(filename)
	if i := strings.Index(label, "."); i >= 0 {
		return label[:i]
	}
	return label
}

var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`_`, `\_`,
	`&`, `\&`,
	`%`, `\%`,
	`#`, `\#`,
	`$`, `\$`,
	`{`, `\{`,
	`}`, `\}`,
)

func statusCell(row *BatchRow) string {
	if row.Failed() {
		return "Failed"
	}
	switch row.Status {
	case SolutionTimeLimit:
		if math.IsNaN(row.Objective) {
			return "No solution (TLR)"
		}
		return "Feasible (TLR)"
	default:
		return row.Status.String()
	}
}

func numCell(v float64, prec int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return missingCell
	}
	return fmt.Sprintf("%.*f", prec, v)
}

// Render writes the table for b to w: one line per row in batch order, a
// dashed separator wherever the family changes, and a final average line.
func (r Report) Render(w io.Writer, b *Batch) error {
	var sb strings.Builder

	sb.WriteString("\\begin{table}[H]\n")
	sb.WriteString("\\centering\n")
	sb.WriteString("\\begin{tabular}{l S[table-format=6.2] c S[table-format=6.2] S[table-format=1.2] r S[table-format=1.3]}\n")
	sb.WriteString("\\toprule\n")
	sb.WriteString("{Instance} & {RL} & {Status} & {Best Sol} & {Gap \\%} & {Nodes} & {Time (s)} \\\\\n")
	sb.WriteString("\\midrule\n")

	prev := ""
	for i := range b.Rows {
		row := &b.Rows[i]

		family := Family(row.Filename)
		if i > 0 && family != prev {
			sb.WriteString(groupSeparator + "\n")
		}
		prev = family

		nodes := missingCell
		wall := missingCell
		if !row.Failed() {
			nodes = fmt.Sprintf("%d", row.Nodes)
			wall = numCell(row.WallClock.Seconds(), 3)
		}

		fmt.Fprintf(&sb, "%s & %s & %s & %s & %s & %s & %s \\\\\n",
			latexEscaper.Replace(RowLabel(row.Filename)),
			numCell(row.RelaxationObjective, 1),
			statusCell(row),
			numCell(row.Objective, 1),
			numCell(row.GapPercent, 2),
			nodes,
			wall,
		)
	}

	agg := b.Aggregate
	sb.WriteString("\\midrule\n")
	fmt.Fprintf(&sb, "Average & %.2f & {} & %.2f & %.2f & %.2f & %.3f \\\\\n",
		agg.RelaxationObjective, agg.Objective, agg.GapPercent, agg.Nodes, agg.WallClockSeconds)
	sb.WriteString("\\bottomrule\n")
	sb.WriteString("\\end{tabular}\n")

	caption := r.Caption
	if !b.System.IsZero() {
		caption = fmt.Sprintf("%s (%s)", caption, b.System)
	}
	fmt.Fprintf(&sb, "\\caption{%s}\n", latexEscaper.Replace(caption))
	if r.Label != "" {
		fmt.Fprintf(&sb, "\\label{%s}\n", r.Label)
	}
	sb.WriteString("\\end{table}\n\n")

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
