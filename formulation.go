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
	"strings"
)

/* Types */

// Domain is the set of values a decision variable may take.
type Domain int

const (
	Binary Domain = iota
	NonNegativeInteger
	NonNegativeContinuous
)

func (d Domain) String() string {
	switch d {
	case Binary:
		return "binary"
	case NonNegativeInteger:
		return "integer"
	case NonNegativeContinuous:
		return "continuous"
	default:
		return fmt.Sprintf("Domain(%d)", int(d))
	}
}

// Integral reports whether values of the domain must be whole numbers.
func (d Domain) Integral() bool {
	return d == Binary || d == NonNegativeInteger
}

// Shape describes how a variable family is indexed.
type Shape int

const (
	// PeriodIndexed families have one variable per period i.
	PeriodIndexed Shape = iota
	// PairIndexed families have one variable per period pair (i, j) with
	// i <= j.
	PairIndexed
)

// Variant selects one of the two ULS formulations.
type Variant int

const (
	Flow Variant = iota
	Assignment
)

func (v Variant) String() string {
	switch v {
	case Flow:
		return "flow"
	case Assignment:
		return "assignment"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// ParseVariant is the inverse of Variant.String.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(s) {
	case "flow":
		return Flow, nil
	case "assignment":
		return Assignment, nil
	default:
		return 0, fmt.Errorf("unknown formulation variant %q", s)
	}
}

// Sense is the relational operator of a constraint.
type Sense int

const (
	LessEqual Sense = iota
	Equal
	GreaterEqual
)

func (s Sense) String() string {
	switch s {
	case LessEqual:
		return "<="
	case Equal:
		return "="
	case GreaterEqual:
		return ">="
	default:
		return fmt.Sprintf("Sense(%d)", int(s))
	}
}

// Term is one coefficient of a linear expression, addressed by dense column.
type Term struct {
	Col  int
	Coef float64
}

// Constraint is a named linear row: Expr Sense RHS.
type Constraint struct {
	Name  string
	Expr  []Term
	Sense Sense
	RHS   float64
}

// Column is the solver-facing description of one decision variable.
// The lower bound is always zero.
type Column struct {
	Name   string
	Domain Domain
	Upper  float64
	Cost   float64
}

// VariableSpec describes a family of decision variables and owns a contiguous
// block of columns in its formulation.
type VariableSpec struct {
	Name   string
	Domain Domain
	Shape  Shape
	// Upper is math.Inf(1) for unbounded variables.
	Upper float64

	periods int
	offset  int
}

// Len returns the number of variables in the family.
func (v *VariableSpec) Len() int {
	if v.Shape == PairIndexed {
		return v.periods * (v.periods + 1) / 2
	}
	return v.periods
}

// Column resolves an index tuple to the dense column it occupies. It takes a
// single period for PeriodIndexed families and a pair (i, j), i <= j, for
// PairIndexed ones. Invalid indices panic, as slice indexing does.
func (v *VariableSpec) Column(idx ...int) int {
	n := v.periods
	switch v.Shape {
	case PeriodIndexed:
		if len(idx) != 1 || idx[0] < 0 || idx[0] >= n {
			panic(fmt.Sprintf("lotsizing: invalid index %v for %s", idx, v.Name))
		}
		return v.offset + idx[0]
	case PairIndexed:
		if len(idx) != 2 || idx[0] < 0 || idx[0] > idx[1] || idx[1] >= n {
			panic(fmt.Sprintf("lotsizing: invalid index %v for %s", idx, v.Name))
		}
		i, j := idx[0], idx[1]
		return v.offset + i*n - i*(i-1)/2 + (j - i)
	default:
		panic("lotsizing: unknown variable shape")
	}
}

// index is the inverse of Column for a column owned by v.
func (v *VariableSpec) index(col int) []int {
	k := col - v.offset
	if v.Shape == PeriodIndexed {
		return []int{k}
	}
	for i := 0; i < v.periods; i++ {
		row := v.periods - i
		if k < row {
			return []int{i, i + k}
		}
		k -= row
	}
	panic("lotsizing: column out of range")
}

func (v *VariableSpec) owns(col int) bool {
	return col >= v.offset && col < v.offset+v.Len()
}

// Formulation is a fully built MIP (or its relaxation) for one instance.
// It is never modified after Build returns.
type Formulation struct {
	Name     string
	Variant  Variant
	Relaxed  bool
	Instance *Instance

	// Objective is minimized.
	Objective   []Term
	Constraints []Constraint

	vars    []*VariableSpec
	byName  map[string]*VariableSpec
	columns int
}

/* Construction */

func newFormulation(inst *Instance, variant Variant, relaxed bool) *Formulation {
	name := fmt.Sprintf("%s-%s", variant, inst.Name)
	if relaxed {
		name += "-relaxed"
	}
	return &Formulation{
		Name:     name,
		Variant:  variant,
		Relaxed:  relaxed,
		Instance: inst,
		byName:   make(map[string]*VariableSpec),
	}
}

// declare registers a new variable family after all existing ones. Relaxed
// formulations turn every integral domain into a continuous one and keep the
// bounds.
func (f *Formulation) declare(name string, domain Domain, shape Shape, upper float64) *VariableSpec {
	if domain == Binary {
		upper = 1
	}
	if f.Relaxed {
		domain = NonNegativeContinuous
	}

	v := &VariableSpec{
		Name:    name,
		Domain:  domain,
		Shape:   shape,
		Upper:   upper,
		periods: f.Instance.Periods,
		offset:  f.columns,
	}
	f.vars = append(f.vars, v)
	f.byName[name] = v
	f.columns += v.Len()

	return v
}

func (f *Formulation) addConstraint(name string, expr []Term, sense Sense, rhs float64) {
	f.Constraints = append(f.Constraints, Constraint{Name: name, Expr: expr, Sense: sense, RHS: rhs})
}

/* Accessors */

// Variable returns the family registered under name, or nil.
func (f *Formulation) Variable(name string) *VariableSpec {
	return f.byName[name]
}

// Variables returns the variable families in column order.
func (f *Formulation) Variables() []*VariableSpec {
	vars := make([]*VariableSpec, len(f.vars))
	copy(vars, f.vars)
	return vars
}

func (f *Formulation) ColumnCount() int {
	return f.columns
}

func (f *Formulation) ConstraintCount() int {
	return len(f.Constraints)
}

func (f *Formulation) spec(col int) *VariableSpec {
	for _, v := range f.vars {
		if v.owns(col) {
			return v
		}
	}
	panic(fmt.Sprintf("lotsizing: column %d out of range", col))
}

// ColumnName returns a readable name such as "x[0,3]" for a dense column.
func (f *Formulation) ColumnName(col int) string {
	v := f.spec(col)
	idx := v.index(col)
	parts := make([]string, len(idx))
	for i, k := range idx {
		parts[i] = fmt.Sprint(k)
	}
	return fmt.Sprintf("%s[%s]", v.Name, strings.Join(parts, ","))
}

// Columns returns the dense column list with objective coefficients folded in.
func (f *Formulation) Columns() []Column {
	cols := make([]Column, f.columns)
	for _, v := range f.vars {
		for k := 0; k < v.Len(); k++ {
			col := v.offset + k
			cols[col] = Column{
				Name:   f.ColumnName(col),
				Domain: v.Domain,
				Upper:  v.Upper,
			}
		}
	}
	for _, t := range f.Objective {
		cols[t.Col].Cost += t.Coef
	}
	return cols
}

// ObjectiveValue evaluates the objective at the given dense assignment.
func (f *Formulation) ObjectiveValue(values []float64) float64 {
	return evalTerms(f.Objective, values)
}

func evalTerms(terms []Term, values []float64) float64 {
	sum := 0.0
	for _, t := range terms {
		sum += t.Coef * values[t.Col]
	}
	return sum
}

func unbounded() float64 { return math.Inf(1) }
