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
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// InstanceExt is the file extension of instances picked up by EvaluateDir.
const InstanceExt = ".txt"

// Entry is one element of a corpus. Err records a failure to obtain the
// instance; such entries yield a failed row.
type Entry struct {
	Filename string
	Instance *Instance
	Err      error
}

// BatchRow compares the integer and relaxed solves of one instance.
// Undefined numbers are NaN.
type BatchRow struct {
	Filename            string
	Status              SolveStatus
	Objective           float64
	RelaxationObjective float64
	GapPercent          float64
	Nodes               int64
	WallClock           time.Duration

	Integer    *SolveResult
	Relaxation *SolveResult

	// Err is set when the instance could not be evaluated.
	Err error
}

func (row *BatchRow) Failed() bool { return row.Err != nil }

// Aggregate holds means over the rows of a batch. Each mean only covers rows
// where the field is defined; failed rows are never included. Means over no
// rows are zero.
type Aggregate struct {
	Objective           float64
	RelaxationObjective float64
	GapPercent          float64
	Nodes               float64
	WallClockSeconds    float64

	Rows int
	// Failed counts rows with an error.
	Failed int
	// Skipped counts evaluated rows without an integer objective.
	Skipped int
}

// Batch is the outcome of evaluating a corpus, rows in corpus order.
type Batch struct {
	Variant   Variant
	Config    Config
	Rows      []BatchRow
	Aggregate Aggregate
	System    SystemInfo
}

// Evaluator runs one formulation variant over a corpus.
type Evaluator struct {
	solver   Solver
	variant  Variant
	config   Config
	bigM     BigM
	workers  int
	check    bool
	checkTol float64
	system   SystemInfo
	logger   Logger
}

func NewEvaluator(s Solver, opts ...Option) (*Evaluator, error) {
	if s == nil {
		return nil, errors.New("nil solver")
	}

	e := &Evaluator{
		solver:  s,
		variant: Flow,
		config:  DefaultConfig(),
		bigM:    BigMTotalDemand,
		workers: 1,
		logger:  noopLogger{},
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, fmt.Errorf("applying evaluator option: %w", err)
		}
	}

	return e, nil
}

// LoadCorpus reads every instance file in dir, sorted by file name.
// Unparsable files are returned as entries carrying the error.
func LoadCorpus(dir string) ([]Entry, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading corpus: %w", err)
	}

	var names []string
	for _, f := range files {
		if !f.IsDir() && strings.HasSuffix(f.Name(), InstanceExt) {
			names = append(names, f.Name())
		}
	}
	sort.Strings(names)

	entries := make([]Entry, len(names))
	for i, name := range names {
		inst, err := ReadInstanceFile(filepath.Join(dir, name))
		entries[i] = Entry{Filename: name, Instance: inst, Err: err}
	}

	return entries, nil
}

// EvaluateDir evaluates every instance file of dir. Only a failure to list
// dir is returned as an error; per-instance failures end up in the rows.
func (e *Evaluator) EvaluateDir(dir string) (*Batch, error) {
	entries, err := LoadCorpus(dir)
	if err != nil {
		return nil, err
	}

	return e.Evaluate(entries), nil
}

// Evaluate solves every entry in integer and relaxed mode. Entries are
// processed in lexicographic filename order.
func (e *Evaluator) Evaluate(entries []Entry) *Batch {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Filename < sorted[j].Filename })

	rows := make([]BatchRow, len(sorted))

	if e.workers <= 1 {
		for i := range sorted {
			rows[i] = e.evaluate(sorted[i])
		}
	} else {
		jobs := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < e.workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					rows[i] = e.evaluate(sorted[i])
				}
			}()
		}
		for i := range sorted {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}

	return &Batch{
		Variant:   e.variant,
		Config:    e.config,
		Rows:      rows,
		Aggregate: aggregate(rows),
		System:    e.system,
	}
}

func (e *Evaluator) evaluate(entry Entry) BatchRow {
	row := BatchRow{
		Filename:            entry.Filename,
		Objective:           math.NaN(),
		RelaxationObjective: math.NaN(),
		GapPercent:          math.NaN(),
	}

	if entry.Err == nil && entry.Instance == nil {
		entry.Err = malformed(entry.Filename, 0, errors.New("no instance"))
	}
	if entry.Err != nil {
		e.logger.Print(fmt.Sprintf("skipping %s: %v", entry.Filename, entry.Err))
		row.Err = entry.Err
		return row
	}

	e.logger.Print(fmt.Sprintf("processing %s (%s, %d periods)", entry.Filename, e.variant, entry.Instance.Periods))

	integer, err := e.solve(entry.Instance, false)
	if err != nil {
		e.logger.Print(fmt.Sprintf("%s: %v", entry.Filename, err))
		row.Err = err
		return row
	}
	row.Integer = integer
	row.Status = integer.Status()
	row.Objective = integer.ObjectiveValue()
	row.Nodes = integer.NodeCount()
	row.WallClock = integer.WallClock()

	if e.check && integer.HasIncumbent() {
		if err := integer.Formulation().Check(integer.Values(), e.checkTol); err != nil {
			e.logger.Print(fmt.Sprintf("%s: %v", entry.Filename, err))
			row.Err = err
			return row
		}
	}

	relaxation, err := e.solve(entry.Instance, true)
	if err != nil {
		e.logger.Print(fmt.Sprintf("%s (relaxation): %v", entry.Filename, err))
		row.Err = err
		return row
	}
	row.Relaxation = relaxation
	row.RelaxationObjective = relaxationBound(relaxation)
	row.GapPercent = IntegralityGap(row.Objective, row.RelaxationObjective)

	e.logger.Print(fmt.Sprintf("%s: %s, objective %g, relaxation %g, %d nodes, %s",
		entry.Filename, row.Status, row.Objective, row.RelaxationObjective, row.Nodes, row.WallClock))

	return row
}

// relaxationBound is the LP value of an optimal relaxation. A relaxation
// stopped early only contributes its dual bound; its incumbent bounds the LP
// from above.
func relaxationBound(res *SolveResult) float64 {
	if res.Status() == SolutionOptimal {
		return res.ObjectiveValue()
	}
	return res.DualBound()
}

func (e *Evaluator) solve(inst *Instance, relaxed bool) (*SolveResult, error) {
	f, err := Build(inst, e.variant, relaxed, UsingBigM(e.bigM))
	if err != nil {
		return nil, err
	}

	return Solve(e.solver, f, e.config)
}

// IntegralityGap returns (integer - relaxation) / integer in percent, or NaN
// when either objective is undefined or the integer objective is zero.
func IntegralityGap(integer, relaxation float64) float64 {
	if math.IsNaN(integer) || math.IsNaN(relaxation) || integer == 0 {
		return math.NaN()
	}
	return (integer - relaxation) / integer * 100
}

func aggregate(rows []BatchRow) Aggregate {
	agg := Aggregate{Rows: len(rows)}

	var obj, relax, gap, nodes, secs []float64
	for _, row := range rows {
		if row.Failed() {
			agg.Failed++
			continue
		}
		if math.IsNaN(row.Objective) {
			agg.Skipped++
		}
		obj = append(obj, row.Objective)
		relax = append(relax, row.RelaxationObjective)
		gap = append(gap, row.GapPercent)
		nodes = append(nodes, float64(row.Nodes))
		secs = append(secs, row.WallClock.Seconds())
	}

	agg.Objective = definedMean(obj)
	agg.RelaxationObjective = definedMean(relax)
	agg.GapPercent = definedMean(gap)
	agg.Nodes = definedMean(nodes)
	agg.WallClockSeconds = definedMean(secs)

	return agg
}

// definedMean averages the finite values of xs; zero if there are none.
func definedMean(xs []float64) float64 {
	defined := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			defined = append(defined, x)
		}
	}
	if len(defined) == 0 {
		return 0
	}
	return stat.Mean(defined, nil)
}
