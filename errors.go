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
)

var (
	// ErrMalformedInstance is matched by every instance parsing or
	// validation failure.
	ErrMalformedInstance = errors.New("malformed instance")

	// ErrSolverFault is matched by failures of the solver itself, as
	// opposed to properties of the model such as infeasibility.
	ErrSolverFault = errors.New("solver fault")
)

// MalformedInstanceError describes why an instance could not be used.
// Line is 1-based and zero when the problem is not tied to a line.
type MalformedInstanceError struct {
	Path string
	Line int
	Err  error
}

func malformed(path string, line int, err error) error {
	return &MalformedInstanceError{Path: path, Line: line, Err: err}
}

func (e *MalformedInstanceError) Error() string {
	switch {
	case e.Path != "" && e.Line > 0:
		return fmt.Sprintf("malformed instance %s (line %d): %v", e.Path, e.Line, e.Err)
	case e.Path != "":
		return fmt.Sprintf("malformed instance %s: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("malformed instance: %v", e.Err)
	}
}

func (e *MalformedInstanceError) Unwrap() error { return e.Err }

func (e *MalformedInstanceError) Is(target error) bool { return target == ErrMalformedInstance }

// SolverFaultError carries the native status code of a failed solve.
type SolverFaultError struct {
	Code int
	Err  error
}

func (e *SolverFaultError) Error() string {
	return fmt.Sprintf("solver fault (code %d): %v", e.Code, e.Err)
}

func (e *SolverFaultError) Unwrap() error { return e.Err }

func (e *SolverFaultError) Is(target error) bool { return target == ErrSolverFault }
