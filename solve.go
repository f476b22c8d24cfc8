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
	"math"
	"time"
)

/* Solver boundary */

// Solver is an external MIP engine. Implementations live in the lpsolve and
// glpk sub-packages.
type Solver interface {
	// Load hands a formulation and its configuration to the engine.
	Load(f *Formulation, cfg Config) (Session, error)
	// Classify maps a native status code onto a SolveStatus. Codes that
	// signal a failure of the engine itself yield an error.
	Classify(code int) (SolveStatus, error)
}

// Session is a loaded model ready to be optimized once.
type Session interface {
	Optimize() (*RawResult, error)
	Close() error
}

// RawResult is what an engine reports after optimizing. Unknown values are
// NaN and Values is nil when no solution is available.
type RawResult struct {
	Code      int
	Objective float64
	DualBound float64
	Gap       float64
	Nodes     int64
	// Values is indexed by dense column.
	Values []float64
}

// CodeUnknown is used in a SolverFaultError when the engine failed before
// producing a status code.
const CodeUnknown = -1

// Config holds the engine parameters applied to every solve.
type Config struct {
	// TimeLimit of zero means no limit.
	TimeLimit   time.Duration
	RelativeGap float64
	AbsoluteGap float64
	// Verbose enables the engine's own progress messages, which are
	// forwarded to the backend's logger.
	Verbose bool
}

// DefaultConfig returns the parameters used for the reference benchmark
// runs.
func DefaultConfig() Config {
	return Config{
		TimeLimit:   180 * time.Second,
		RelativeGap: 1e-10,
		AbsoluteGap: 1,
	}
}

func (cfg Config) Validate() error {
	switch {
	case cfg.TimeLimit < 0:
		return fmt.Errorf("negative time limit %s", cfg.TimeLimit)
	case cfg.RelativeGap < 0 || math.IsNaN(cfg.RelativeGap):
		return fmt.Errorf("invalid relative gap %g", cfg.RelativeGap)
	case cfg.AbsoluteGap < 0 || math.IsNaN(cfg.AbsoluteGap):
		return fmt.Errorf("invalid absolute gap %g", cfg.AbsoluteGap)
	}
	return nil
}

/* Results */

type SolveStatus int

const (
	SolutionOther SolveStatus = iota
	SolutionOptimal
	SolutionTimeLimit
	SolutionInfeasible
)

func (s SolveStatus) String() string {
	switch s {
	case SolutionOptimal:
		return "Optimal"
	case SolutionTimeLimit:
		return "Time limit reached"
	case SolutionInfeasible:
		return "Infeasible"
	default:
		return "Other"
	}
}

// SolveResult is the formulation-agnostic outcome of one solve.
type SolveResult struct {
	formulation *Formulation
	status      SolveStatus
	objective   float64
	dualBound   float64
	gap         float64
	nodes       int64
	values      []float64
	wallClock   time.Duration
}

func (res *SolveResult) Status() SolveStatus { return res.status }

// Formulation returns the formulation that was solved.
func (res *SolveResult) Formulation() *Formulation { return res.formulation }

// ObjectiveValue returns the objective of the incumbent, or NaN if there is
// none.
func (res *SolveResult) ObjectiveValue() float64 { return res.objective }

// DualBound returns the best proven lower bound, or NaN if unknown.
func (res *SolveResult) DualBound() float64 { return res.dualBound }

// Gap returns the relative MIP gap, or NaN if unknown.
func (res *SolveResult) Gap() float64 { return res.gap }

func (res *SolveResult) NodeCount() int64 { return res.nodes }

// WallClock is the time spent inside the engine's optimize call.
func (res *SolveResult) WallClock() time.Duration { return res.wallClock }

// HasIncumbent reports whether a solution (optimal or not) is available.
func (res *SolveResult) HasIncumbent() bool { return res.values != nil }

// Value returns the value of one variable of the incumbent. It returns NaN
// when there is no incumbent.
func (res *SolveResult) Value(v *VariableSpec, idx ...int) float64 {
	if res.values == nil {
		return math.NaN()
	}
	return res.values[v.Column(idx...)]
}

// Values returns a copy of the dense incumbent, or nil.
func (res *SolveResult) Values() []float64 {
	if res.values == nil {
		return nil
	}
	vals := make([]float64, len(res.values))
	copy(vals, res.values)
	return vals
}

/* Adapter */

// Solve runs f through the solver once. Only the engine's optimize call is
// timed. Solver failures are returned as *SolverFaultError; infeasibility and
// time limits are reported through the result's status.
func Solve(s Solver, f *Formulation, cfg Config) (*SolveResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("solver configuration: %w", err)
	}

	sess, err := s.Load(f, cfg)
	if err != nil {
		return nil, &SolverFaultError{Code: CodeUnknown, Err: fmt.Errorf("loading %s: %w", f.Name, err)}
	}
	defer sess.Close()

	start := time.Now()
	raw, err := sess.Optimize()
	elapsed := time.Since(start)
	if err != nil {
		return nil, &SolverFaultError{Code: CodeUnknown, Err: fmt.Errorf("optimizing %s: %w", f.Name, err)}
	}

	status, err := s.Classify(raw.Code)
	if err != nil {
		return nil, &SolverFaultError{Code: raw.Code, Err: err}
	}

	res := &SolveResult{
		formulation: f,
		status:      status,
		objective:   math.NaN(),
		dualBound:   raw.DualBound,
		gap:         raw.Gap,
		nodes:       raw.Nodes,
		wallClock:   elapsed,
	}

	incumbent := (status == SolutionOptimal || status == SolutionTimeLimit) &&
		len(raw.Values) == f.ColumnCount() && !math.IsNaN(raw.Objective)
	if status == SolutionOptimal && !incumbent {
		return nil, &SolverFaultError{Code: raw.Code, Err: fmt.Errorf("optimal status without a solution for %s", f.Name)}
	}

	if incumbent {
		res.objective = raw.Objective
		res.values = make([]float64, len(raw.Values))
		copy(res.values, raw.Values)
	}

	if status == SolutionOptimal && math.IsNaN(res.dualBound) {
		res.dualBound = res.objective
	}
	if math.IsNaN(res.gap) {
		res.gap = relativeGap(res.objective, res.dualBound)
	}

	return res, nil
}

// relativeGap computes |primal - dual| / |primal|, NaN if either is unknown.
func relativeGap(primal, dual float64) float64 {
	switch {
	case math.IsNaN(primal) || math.IsNaN(dual):
		return math.NaN()
	case primal == dual:
		return 0
	case primal == 0:
		return math.Inf(1)
	default:
		return math.Abs(primal-dual) / math.Abs(primal)
	}
}
