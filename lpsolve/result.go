/*
Copyright © 2015-2022 Leo Antunes <leo@costela.net>

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

package lpsolve

// #cgo CFLAGS: -I/usr/include/lpsolve/
// #include <lp_lib.h>
import "C"

import (
	"fmt"

	"github.com/costela/lotsizing"
)

// Native lp_solve return codes of solve().
const (
	CodeNotRun      = int(C.NOTRUN)
	CodeOptimal     = int(C.OPTIMAL)
	CodeSuboptimal  = int(C.SUBOPTIMAL)
	CodeInfeasible  = int(C.INFEASIBLE)
	CodeUnbounded   = int(C.UNBOUNDED)
	CodeDegenerate  = int(C.DEGENERATE)
	CodeNumFailure  = int(C.NUMFAILURE)
	CodeUserAbort   = int(C.USERABORT)
	CodeTimeout     = int(C.TIMEOUT)
	CodePresolved   = int(C.PRESOLVED)
	CodeProcFail    = int(C.PROCFAIL)
	CodeProcBreak   = int(C.PROCBREAK)
	CodeFeasFound   = int(C.FEASFOUND)
	CodeNoFeasFound = int(C.NOFEASFOUND)
	CodeNoMemory    = int(C.NOMEMORY)
)

// SolveError is a return code signalling that lp_solve itself failed.
type SolveError int

const (
	ErrBranchCutFail    = SolveError(C.PROCFAIL)
	ErrNoMemory         = SolveError(C.NOMEMORY)
	ErrNumericalFailure = SolveError(C.NUMFAILURE)
	ErrNotRun           = SolveError(C.NOTRUN)
)

// Error returns a string representation of the given error value.
func (e SolveError) Error() string {
	switch e {
	case ErrBranchCutFail:
		return "branch-and-cut failure"
	case ErrNoMemory:
		return "ran out of memory while solving"
	case ErrNumericalFailure:
		return "numerical failure while solving"
	case ErrNotRun:
		return "model could not be run"
	default:
		return fmt.Sprintf("lp_solve error %d", int(e))
	}
}

// Classify maps lp_solve return codes onto lotsizing statuses. SUBOPTIMAL is
// only returned when branch-and-bound was cut short after an integer solution
// had been found, which with our settings means the time limit was hit.
func (s *Solver) Classify(code int) (lotsizing.SolveStatus, error) {
	switch code {
	case CodeOptimal, CodePresolved:
		return lotsizing.SolutionOptimal, nil
	case CodeSuboptimal, CodeTimeout:
		return lotsizing.SolutionTimeLimit, nil
	case CodeInfeasible:
		return lotsizing.SolutionInfeasible, nil
	case CodeUnbounded, CodeDegenerate, CodeUserAbort, CodeProcBreak, CodeFeasFound, CodeNoFeasFound:
		return lotsizing.SolutionOther, nil
	case CodeProcFail, CodeNoMemory, CodeNumFailure, CodeNotRun:
		return lotsizing.SolutionOther, SolveError(code)
	default:
		return lotsizing.SolutionOther, fmt.Errorf("unrecognized lp_solve result %d", code)
	}
}
