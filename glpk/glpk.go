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

// Package glpk implements lotsizing.Solver on top of the GNU Linear
// Programming Kit.
//
// GLPK has no absolute MIP gap; Config.AbsoluteGap is ignored. Formulations
// without integral columns are solved with the simplex method, all others
// with branch-and-cut.
package glpk

// #cgo LDFLAGS: -lglpk
// #include <glpk.h>
// #include <limits.h>
// #include <stdlib.h>
/*
extern void ioCallback(glp_tree *tree, void *info);
extern int termHook(void *info, char *msg);
*/
import "C"

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"strings"
	"sync"
	"unsafe"

	"github.com/costela/lotsizing"
)

/* Types */

type Solver struct {
	presolve bool
	logger   lotsizing.Logger
}

type Option func(*Solver)

// WithLogger receives GLPK's terminal output when Config.Verbose is set.
func WithLogger(logger lotsizing.Logger) Option {
	return func(s *Solver) {
		s.logger = logger
	}
}

// WithPresolve toggles GLPK's presolver, which is on by default.
func WithPresolve(on bool) Option {
	return func(s *Solver) {
		s.presolve = on
	}
}

func New(opts ...Option) *Solver {
	s := &Solver{presolve: true, logger: noopLogger{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GLPK keeps its memory environment in thread-local storage, so a native
// problem only ever lives inside one Optimize call on a locked OS thread.
type session struct {
	mu       sync.Mutex
	closed   bool
	ref      unsafe.Pointer
	name     string
	columns  []lotsizing.Column
	rows     []lotsizing.Constraint
	matrix   matrix
	mip      bool
	presolve bool
	cfg      lotsizing.Config
	logger   lotsizing.Logger

	// updated from the branch-and-cut callback
	nodes int64
	bound float64

	// partial line of terminal output
	term strings.Builder
}

// matrix holds the constraint coefficients in glp_load_matrix layout; index 0
// is reserved.
type matrix struct {
	ia, ja []int
	ar     []float64
}

/* Loading */

// Load checks the formulation and prepares the constraint matrix. The native
// problem is built by Optimize.
func (s *Solver) Load(f *lotsizing.Formulation, cfg lotsizing.Config) (lotsizing.Session, error) {
	sess := &session{
		name:     f.Name,
		columns:  f.Columns(),
		rows:     f.Constraints,
		presolve: s.presolve,
		cfg:      cfg,
		logger:   s.logger,
		bound:    math.NaN(),
	}

	for _, col := range sess.columns {
		if col.Domain.Integral() {
			sess.mip = true
		}
	}

	m, err := buildMatrix(f.Constraints, len(sess.columns))
	if err != nil {
		return nil, err
	}
	sess.matrix = m
	sess.ref = saveRef(sess)

	return sess, nil
}

func buildMatrix(rows []lotsizing.Constraint, columns int) (matrix, error) {
	m := matrix{ia: []int{0}, ja: []int{0}, ar: []float64{0}}

	for r, c := range rows {
		switch c.Sense {
		case lotsizing.LessEqual, lotsizing.Equal, lotsizing.GreaterEqual:
		default:
			return matrix{}, fmt.Errorf("constraint %s: unsupported sense %v", c.Name, c.Sense)
		}

		// glp_load_matrix rejects duplicate entries
		merged := make(map[int]float64, len(c.Expr))
		order := make([]int, 0, len(c.Expr))
		for _, t := range c.Expr {
			if t.Col < 0 || t.Col >= columns {
				return matrix{}, fmt.Errorf("constraint %s: column %d out of range", c.Name, t.Col)
			}
			if _, seen := merged[t.Col]; !seen {
				order = append(order, t.Col)
			}
			merged[t.Col] += t.Coef
		}
		for _, col := range order {
			if merged[col] == 0 {
				continue
			}
			m.ia = append(m.ia, r+1)
			m.ja = append(m.ja, col+1)
			m.ar = append(m.ar, merged[col])
		}
	}

	return m, nil
}

// create allocates the native problem. Callers must hold the OS thread.
func (sess *session) create() (*C.glp_prob, error) {
	prob := C.glp_create_prob()
	if prob == nil {
		return nil, errors.New("could not allocate glpk problem")
	}

	c_name := C.CString(sess.name)
	defer C.free(unsafe.Pointer(c_name))
	C.glp_set_prob_name(prob, c_name)
	C.glp_set_obj_dir(prob, C.GLP_MIN)

	if len(sess.columns) > 0 {
		if ret := C.glp_add_cols(prob, C.int(len(sess.columns))); ret < 1 {
			C.glp_delete_prob(prob)
			return nil, fmt.Errorf("could not scale columns for model")
		}
	}

	for i, col := range sess.columns {
		idx := C.int(i + 1)

		c_col := C.CString(col.Name)
		C.glp_set_col_name(prob, idx, c_col)
		C.free(unsafe.Pointer(c_col))

		switch col.Domain {
		case lotsizing.Binary:
			// GLP_BV also fixes the bounds to [0, 1]
			C.glp_set_col_kind(prob, idx, C.GLP_BV)
		case lotsizing.NonNegativeInteger:
			C.glp_set_col_kind(prob, idx, C.GLP_IV)
			setColBounds(prob, idx, col.Upper)
		default:
			C.glp_set_col_kind(prob, idx, C.GLP_CV)
			setColBounds(prob, idx, col.Upper)
		}

		C.glp_set_obj_coef(prob, idx, C.double(col.Cost))
	}

	if len(sess.rows) == 0 {
		return prob, nil
	}

	if ret := C.glp_add_rows(prob, C.int(len(sess.rows))); ret < 1 {
		C.glp_delete_prob(prob)
		return nil, fmt.Errorf("could not scale rows for model")
	}

	for r, c := range sess.rows {
		idx := C.int(r + 1)

		c_row := C.CString(c.Name)
		C.glp_set_row_name(prob, idx, c_row)
		C.free(unsafe.Pointer(c_row))

		switch c.Sense {
		case lotsizing.LessEqual:
			C.glp_set_row_bnds(prob, idx, C.GLP_UP, C.double(0), C.double(c.RHS))
		case lotsizing.Equal:
			C.glp_set_row_bnds(prob, idx, C.GLP_FX, C.double(c.RHS), C.double(c.RHS))
		case lotsizing.GreaterEqual:
			C.glp_set_row_bnds(prob, idx, C.GLP_LO, C.double(c.RHS), C.double(0))
		}
	}

	n := len(sess.matrix.ia)
	ia := make([]C.int, n)
	ja := make([]C.int, n)
	ar := make([]C.double, n)
	for k := range ia {
		ia[k] = C.int(sess.matrix.ia[k])
		ja[k] = C.int(sess.matrix.ja[k])
		ar[k] = C.double(sess.matrix.ar[k])
	}
	C.glp_load_matrix(prob, C.int(n-1), &ia[0], &ja[0], &ar[0])

	return prob, nil
}

func setColBounds(prob *C.glp_prob, idx C.int, upper float64) {
	switch {
	case math.IsInf(upper, 1):
		C.glp_set_col_bnds(prob, idx, C.GLP_LO, C.double(0), C.double(0))
	case upper == 0:
		C.glp_set_col_bnds(prob, idx, C.GLP_FX, C.double(0), C.double(0))
	default:
		C.glp_set_col_bnds(prob, idx, C.GLP_DB, C.double(0), C.double(upper))
	}
}

func (sess *session) msgLevel() C.int {
	if sess.cfg.Verbose {
		return C.GLP_MSG_ON
	}
	return C.GLP_MSG_OFF
}

func (sess *session) timeLimit() C.int {
	ms := sess.cfg.TimeLimit.Milliseconds()
	if ms <= 0 || ms > math.MaxInt32 {
		return C.INT_MAX
	}
	return C.int(ms)
}

func boolParam(on bool) C.int {
	if on {
		return C.GLP_ON
	}
	return C.GLP_OFF
}

/* Solving */

// Optimize builds the native problem, runs simplex or branch-and-cut once and
// frees the problem again, all on the calling goroutine's locked OS thread.
// The result code packs the routine's return value and the solution status,
// see Code.
func (sess *session) Optimize() (*lotsizing.RawResult, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.closed {
		return nil, errors.New("session is closed")
	}

	if len(sess.columns) == 0 {
		return &lotsizing.RawResult{
			Code:      Code(0, int(C.GLP_OPT)),
			DualBound: 0,
			Gap:       0,
			Values:    []float64{},
		}, nil
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	C.glp_term_hook((*[0]byte)(C.termHook), sess.ref)
	defer func() {
		C.glp_term_hook(nil, nil)
		sess.flushTerm()
	}()

	prob, err := sess.create()
	if err != nil {
		return nil, err
	}
	defer C.glp_delete_prob(prob)

	if sess.mip {
		return sess.branchCut(prob), nil
	}
	return sess.simplex(prob), nil
}

func (sess *session) simplex(prob *C.glp_prob) *lotsizing.RawResult {
	var parm C.glp_smcp
	C.glp_init_smcp(&parm)
	parm.msg_lev = sess.msgLevel()
	parm.presolve = boolParam(sess.presolve)
	parm.tm_lim = sess.timeLimit()

	ret := C.glp_simplex(prob, &parm)
	status := C.glp_get_status(prob)

	raw := &lotsizing.RawResult{
		Code:      Code(int(ret), int(status)),
		Objective: math.NaN(),
		DualBound: math.NaN(),
		Gap:       math.NaN(),
	}

	if status == C.GLP_OPT || status == C.GLP_FEAS {
		raw.Objective = float64(C.glp_get_obj_val(prob))
		raw.Values = make([]float64, len(sess.columns))
		for i := range raw.Values {
			raw.Values[i] = float64(C.glp_get_col_prim(prob, C.int(i+1)))
		}
	}

	return raw
}

func (sess *session) branchCut(prob *C.glp_prob) *lotsizing.RawResult {
	var parm C.glp_iocp
	C.glp_init_iocp(&parm)
	parm.msg_lev = sess.msgLevel()
	parm.presolve = boolParam(sess.presolve)
	parm.tm_lim = sess.timeLimit()
	parm.mip_gap = C.double(sess.cfg.RelativeGap)
	parm.cb_func = (*[0]byte)(C.ioCallback)
	parm.cb_info = sess.ref

	if sess.cfg.AbsoluteGap > 0 {
		sess.logger.Print(fmt.Sprintf("glpk: absolute MIP gap %g ignored", sess.cfg.AbsoluteGap))
	}

	sess.nodes = 0
	sess.bound = math.NaN()

	// without the presolver glp_intopt needs an optimal basis of the relaxation
	if !sess.presolve {
		var smcp C.glp_smcp
		C.glp_init_smcp(&smcp)
		smcp.msg_lev = sess.msgLevel()
		smcp.tm_lim = sess.timeLimit()

		ret := C.glp_simplex(prob, &smcp)
		if status := C.glp_get_status(prob); ret != 0 || status != C.GLP_OPT {
			return &lotsizing.RawResult{
				Code:      Code(int(ret), int(status)),
				Objective: math.NaN(),
				DualBound: math.NaN(),
				Gap:       math.NaN(),
			}
		}
	}

	ret := C.glp_intopt(prob, &parm)
	status := C.glp_mip_status(prob)

	raw := &lotsizing.RawResult{
		Code:      Code(int(ret), int(status)),
		Objective: math.NaN(),
		DualBound: sess.bound,
		Gap:       math.NaN(),
		Nodes:     sess.nodes,
	}

	if status == C.GLP_OPT || status == C.GLP_FEAS {
		raw.Objective = float64(C.glp_mip_obj_val(prob))
		raw.Values = make([]float64, len(sess.columns))
		for i := range raw.Values {
			raw.Values[i] = float64(C.glp_mip_col_val(prob, C.int(i+1)))
		}
	}
	if status == C.GLP_OPT {
		raw.DualBound = raw.Objective
	}

	return raw
}

//export ioCallback
func ioCallback(tree *C.glp_tree, info unsafe.Pointer) {
	sess, ok := loadRef(info).(*session)
	if !ok {
		return
	}

	var active, current, total C.int
	C.glp_ios_tree_size(tree, &active, &current, &total)
	sess.nodes = int64(total)

	if best := C.glp_ios_best_node(tree); best != 0 {
		sess.bound = float64(C.glp_ios_node_bound(tree, best))
	}
}

//export termHook
func termHook(info unsafe.Pointer, msg *C.char) C.int {
	sess, ok := loadRef(info).(*session)
	if !ok {
		return 0
	}

	sess.term.WriteString(C.GoString(msg))
	text := sess.term.String()
	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		for _, line := range strings.Split(text[:i], "\n") {
			sess.logger.Print("glpk: " + line)
		}
		sess.term.Reset()
		sess.term.WriteString(text[i+1:])
	}

	// non-zero suppresses GLPK's own output
	return 1
}

func (sess *session) flushTerm() {
	if sess.term.Len() > 0 {
		sess.logger.Print("glpk: " + sess.term.String())
		sess.term.Reset()
	}
}

// Close releases the callback reference. It is safe to call more than once.
func (sess *session) Close() error {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.closed = true
	if sess.ref != nil {
		releaseRef(sess.ref)
		sess.ref = nil
	}

	return nil
}

type noopLogger struct{}

func (noopLogger) Print(v ...interface{}) {}
