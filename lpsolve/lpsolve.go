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

// Package lpsolve implements lotsizing.Solver on top of lp_solve 5.5.
package lpsolve

// #cgo CFLAGS: -I/usr/include/lpsolve/
// #cgo linux LDFLAGS: -llpsolve55 -lm -ldl -lcolamd
// #cgo darwin LDFLAGS: -L/usr/local/lib -llpsolve55
// #cgo darwin CFLAGS: -I/usr/local/include
// #include <lp_lib.h>
// #include <stdlib.h>
/*
// https://golang.org/issue/19837
extern void logCallback(lprec *lp, void *userhandle, char *buf);
*/
import "C"

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"unsafe"

	"github.com/costela/lotsizing"
)

/* Types */

// Solver hands formulations to lp_solve. It holds no native state and may be
// shared between goroutines; every Load creates an independent model.
type Solver struct {
	logger lotsizing.Logger
}

type Option func(*Solver)

// WithLogger forwards lp_solve's messages to logger.
func WithLogger(logger lotsizing.Logger) Option {
	return func(s *Solver) {
		s.logger = logger
	}
}

func New(opts ...Option) *Solver {
	s := &Solver{logger: noopLogger{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type session struct {
	mu      sync.Mutex
	prob    *C.lprec
	ref     unsafe.Pointer
	columns int
	logger  lotsizing.Logger
}

/* Loading */

// Load builds a native lp_solve model for f. The model is minimized; binary
// and integer columns are marked as such and the configured time limit and
// MIP gaps are applied.
func (s *Solver) Load(f *lotsizing.Formulation, cfg lotsizing.Config) (lotsizing.Session, error) {
	cols := f.Columns()

	prob := C.make_lp(0, C.int(len(cols)))
	if prob == nil {
		return nil, errors.New("could not allocate lp_solve model")
	}

	sess := &session{
		prob:    prob,
		columns: len(cols),
		logger:  s.logger,
	}
	sess.finishInitialization(cfg.Verbose)

	if err := sess.load(f, cols, cfg); err != nil {
		sess.Close()
		return nil, err
	}

	return sess, nil
}

// finishInitialization redirects lp_solve's output to our logger. The
// reference table keeps the session alive until Close.
func (sess *session) finishInitialization(verbose bool) {
	sess.ref = saveRef(sess)
	C.put_logfunc(sess.prob, (*C.lphandlestr_func)(C.logCallback), sess.ref)

	empty := C.CString("")
	defer C.free(unsafe.Pointer(empty))
	C.set_outputfile(sess.prob, empty)

	if verbose {
		C.set_verbose(sess.prob, C.NORMAL)
	} else {
		C.set_verbose(sess.prob, C.NEUTRAL)
	}
}

func (sess *session) load(f *lotsizing.Formulation, cols []lotsizing.Column, cfg lotsizing.Config) error {
	c_name := C.CString(f.Name)
	defer C.free(unsafe.Pointer(c_name))
	C.set_lp_name(sess.prob, c_name)
	C.set_minim(sess.prob, C.TRUE)

	if len(cols) == 0 {
		return nil
	}

	row := make([]C.REAL, len(cols))
	colno := make([]C.int, len(cols))
	for i, col := range cols {
		idx := C.int(i + 1)

		c_col := C.CString(col.Name)
		C.set_col_name(sess.prob, idx, c_col)
		C.free(unsafe.Pointer(c_col))

		switch col.Domain {
		case lotsizing.Binary:
			C.set_binary(sess.prob, idx, C.TRUE)
		case lotsizing.NonNegativeInteger:
			C.set_int(sess.prob, idx, C.TRUE)
		}
		if !math.IsInf(col.Upper, 1) {
			C.set_upbo(sess.prob, idx, C.REAL(col.Upper))
		}

		colno[i] = idx
		row[i] = C.REAL(col.Cost)
	}

	if C.set_obj_fnex(sess.prob, C.int(len(cols)), &row[0], &colno[0]) != C.TRUE {
		return errors.New("could not set objective function")
	}

	C.set_add_rowmode(sess.prob, C.TRUE)
	for _, c := range f.Constraints {
		if err := sess.addConstraint(c); err != nil {
			C.set_add_rowmode(sess.prob, C.FALSE)
			return err
		}
	}
	C.set_add_rowmode(sess.prob, C.FALSE)

	for r, c := range f.Constraints {
		c_row := C.CString(c.Name)
		C.set_row_name(sess.prob, C.int(r+1), c_row)
		C.free(unsafe.Pointer(c_row))
	}

	if cfg.TimeLimit > 0 {
		C.set_timeout(sess.prob, C.long(math.Ceil(cfg.TimeLimit.Seconds())))
	}
	C.set_mip_gap(sess.prob, C.TRUE, C.REAL(cfg.AbsoluteGap))
	C.set_mip_gap(sess.prob, C.FALSE, C.REAL(cfg.RelativeGap))

	return nil
}

func (sess *session) addConstraint(c lotsizing.Constraint) error {
	var kind C.int
	switch c.Sense {
	case lotsizing.LessEqual:
		kind = C.LE
	case lotsizing.Equal:
		kind = C.EQ
	case lotsizing.GreaterEqual:
		kind = C.GE
	default:
		return fmt.Errorf("constraint %s: unsupported sense %v", c.Name, c.Sense)
	}

	// an empty row still has to exist so row numbers match constraint order
	row := make([]C.REAL, len(c.Expr)+1)
	colno := make([]C.int, len(c.Expr)+1)
	for i, t := range c.Expr {
		colno[i] = C.int(t.Col + 1)
		row[i] = C.REAL(t.Coef)
	}

	if C.add_constraintex(sess.prob, C.int(len(c.Expr)), &row[0], &colno[0], kind, C.REAL(c.RHS)) != C.TRUE {
		return fmt.Errorf("could not add constraint %s", c.Name)
	}

	return nil
}

/* Solving */

// Optimize runs lp_solve once. The objective and the column values are only
// reported when lp_solve found a solution.
func (sess *session) Optimize() (*lotsizing.RawResult, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.prob == nil {
		return nil, errors.New("session is closed")
	}

	ret := C.solve(sess.prob)

	raw := &lotsizing.RawResult{
		Code:      int(ret),
		Objective: math.NaN(),
		DualBound: math.NaN(),
		Gap:       math.NaN(),
		Nodes:     int64(C.get_total_nodes(sess.prob)),
	}

	switch ret {
	case C.OPTIMAL, C.PRESOLVED, C.SUBOPTIMAL:
		raw.Objective = float64(C.get_objective(sess.prob))
		raw.Values = make([]float64, sess.columns)
		if sess.columns > 0 {
			values := make([]C.REAL, sess.columns)
			C.get_variables(sess.prob, &values[0])
			for i, v := range values {
				raw.Values[i] = float64(v)
			}
		}
	}

	return raw, nil
}

// Close releases the native model. It is safe to call more than once.
func (sess *session) Close() error {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.prob != nil {
		C.delete_lp(sess.prob)
		sess.prob = nil
	}
	if sess.ref != nil {
		releaseRef(sess.ref)
		sess.ref = nil
	}

	return nil
}

//export logCallback
func logCallback(prob *C.lprec, sessPtr unsafe.Pointer, msg *C.char) {
	sess, ok := loadRef(sessPtr).(*session)
	if !ok {
		return
	}

	sess.logger.Print(C.GoString(msg))
}

type noopLogger struct{}

func (noopLogger) Print(v ...interface{}) {}
