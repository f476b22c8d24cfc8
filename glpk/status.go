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

package glpk

// #include <glpk.h>
import "C"

import (
	"fmt"

	"github.com/costela/lotsizing"
)

// Solution statuses as reported by glp_get_status and glp_mip_status.
const (
	StatusUndefined  = int(C.GLP_UNDEF)
	StatusFeasible   = int(C.GLP_FEAS)
	StatusInfeasible = int(C.GLP_INFEAS)
	StatusNoFeasible = int(C.GLP_NOFEAS)
	StatusOptimal    = int(C.GLP_OPT)
	StatusUnbounded  = int(C.GLP_UNBND)
)

// Return values of glp_simplex and glp_intopt.
const (
	RetOK            = 0
	RetBadBasis      = int(C.GLP_EBADB)
	RetSingular      = int(C.GLP_ESING)
	RetIllCond       = int(C.GLP_ECOND)
	RetBounds        = int(C.GLP_EBOUND)
	RetFail          = int(C.GLP_EFAIL)
	RetIterLimit     = int(C.GLP_EITLIM)
	RetTimeLimit     = int(C.GLP_ETMLIM)
	RetNoPrimalFeas  = int(C.GLP_ENOPFS)
	RetNoDualFeas    = int(C.GLP_ENODFS)
	RetRoot          = int(C.GLP_EROOT)
	RetStopped       = int(C.GLP_ESTOP)
	RetMIPGapReached = int(C.GLP_EMIPGAP)
)

// Code packs a routine return value and a solution status into the single
// integer carried by lotsizing.RawResult.
func Code(ret, status int) int {
	return ret<<8 | status&0xff
}

// SplitCode undoes Code.
func SplitCode(code int) (ret, status int) {
	return code >> 8, code & 0xff
}

// RetError is a glp_simplex or glp_intopt return value signalling that GLPK
// could not carry out the solve.
type RetError int

func (e RetError) Error() string {
	switch int(e) {
	case RetBadBasis:
		return "initial basis invalid"
	case RetSingular:
		return "initial basis is exactly singular"
	case RetIllCond:
		return "initial basis is ill-conditioned"
	case RetBounds:
		return "double-bounded variables have incorrect bounds"
	case RetFail:
		return "problem instance has no rows/columns"
	case RetRoot:
		return "optimal basis for initial LP relaxation not provided and presolver not used"
	default:
		return fmt.Sprintf("unknown glpk error: %d", int(e))
	}
}

// Classify maps packed GLPK codes onto lotsizing statuses. Only the time limit
// counts as TimeLimitReached; an iteration limit is SolutionOther.
func (s *Solver) Classify(code int) (lotsizing.SolveStatus, error) {
	ret, status := SplitCode(code)

	switch ret {
	case RetOK, RetMIPGapReached:
		switch status {
		case StatusOptimal:
			return lotsizing.SolutionOptimal, nil
		case StatusFeasible:
			if ret == RetMIPGapReached {
				return lotsizing.SolutionOptimal, nil
			}
			return lotsizing.SolutionOther, nil
		case StatusInfeasible, StatusNoFeasible:
			return lotsizing.SolutionInfeasible, nil
		case StatusUnbounded, StatusUndefined:
			return lotsizing.SolutionOther, nil
		default:
			return lotsizing.SolutionOther, fmt.Errorf("unrecognized glpk status %d", status)
		}
	case RetTimeLimit:
		return lotsizing.SolutionTimeLimit, nil
	case RetIterLimit:
		return lotsizing.SolutionOther, nil
	case RetNoPrimalFeas:
		return lotsizing.SolutionInfeasible, nil
	case RetNoDualFeas, RetStopped:
		return lotsizing.SolutionOther, nil
	default:
		return lotsizing.SolutionOther, RetError(ret)
	}
}
