package lotsizing

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fourPeriods() *Instance {
	return &Instance{
		Name:        "four",
		Periods:     4,
		Demand:      []int{10, 0, 20, 5},
		UnitCost:    []int{1, 2, 3, 4},
		SetupCost:   []int{50, 60, 70, 80},
		HoldingCost: 2,
	}
}

func TestBuildFlowStructure(t *testing.T) {
	inst := fourPeriods()

	f, err := Build(inst, Flow, false)
	require.NoError(t, err)

	assert.Equal(t, "flow-four", f.Name)
	assert.Equal(t, Flow, f.Variant)
	assert.False(t, f.Relaxed)
	assert.Equal(t, 12, f.ColumnCount())
	assert.Equal(t, 8, f.ConstraintCount())

	vars := f.Variables()
	require.Len(t, vars, 3)
	assert.Equal(t, "y", vars[0].Name)
	assert.Equal(t, Binary, vars[0].Domain)
	assert.Equal(t, 1.0, vars[0].Upper)
	assert.Equal(t, "x", vars[1].Name)
	assert.Equal(t, NonNegativeInteger, vars[1].Domain)
	assert.True(t, math.IsInf(vars[1].Upper, 1))
	assert.Equal(t, "s", vars[2].Name)
	assert.Equal(t, NonNegativeInteger, vars[2].Domain)

	y, x, s := f.Variable("y"), f.Variable("x"), f.Variable("s")
	assert.Equal(t, 0, y.Column(0))
	assert.Equal(t, 4, x.Column(0))
	assert.Equal(t, 11, s.Column(3))

	first := f.Constraints[0]
	assert.Equal(t, "demand_balance_0", first.Name)
	assert.Equal(t, Equal, first.Sense)
	assert.Equal(t, -10.0, first.RHS)
	assert.ElementsMatch(t, []Term{{s.Column(0), 1}, {x.Column(0), -1}}, first.Expr)

	third := f.Constraints[2]
	assert.Equal(t, "demand_balance_2", third.Name)
	assert.Equal(t, -20.0, third.RHS)
	assert.ElementsMatch(t, []Term{{s.Column(2), 1}, {x.Column(2), -1}, {s.Column(1), -1}}, third.Expr)

	for i := 0; i < 4; i++ {
		link := f.Constraints[4+i]
		assert.Equal(t, LessEqual, link.Sense)
		assert.Equal(t, 0.0, link.RHS)
		assert.ElementsMatch(t, []Term{{x.Column(i), 1}, {y.Column(i), -35}}, link.Expr)
	}
	assert.Equal(t, "setup_production_3", f.Constraints[7].Name)

	cols := f.Columns()
	require.Len(t, cols, 12)
	assert.Equal(t, "y[1]", cols[1].Name)
	assert.Equal(t, 60.0, cols[y.Column(1)].Cost)
	assert.Equal(t, 3.0, cols[x.Column(2)].Cost)
	assert.Equal(t, 2.0, cols[s.Column(0)].Cost)
}

func TestBuildFlowRemainingDemandBigM(t *testing.T) {
	f, err := Build(fourPeriods(), Flow, false, UsingBigM(BigMRemainingDemand))
	require.NoError(t, err)

	y := f.Variable("y")
	expected := []float64{35, 25, 25, 5}
	for i, m := range expected {
		link := f.Constraints[4+i]
		for _, term := range link.Expr {
			if term.Col == y.Column(i) {
				assert.Equal(t, -m, term.Coef, "period %d", i)
			}
		}
	}
}

func TestBuildFlowZeroDemandKeepsLinkingRows(t *testing.T) {
	inst := &Instance{Name: "z", Periods: 2, Demand: []int{0, 0}, UnitCost: []int{1, 1}, SetupCost: []int{1, 1}}

	f, err := Build(inst, Flow, false)
	require.NoError(t, err)
	assert.Equal(t, 4, f.ConstraintCount())
	assert.Equal(t, "setup_production_1", f.Constraints[3].Name)
}

func TestBuildAssignmentStructure(t *testing.T) {
	inst := fourPeriods()

	f, err := Build(inst, Assignment, false)
	require.NoError(t, err)

	n := inst.Periods
	pairs := n * (n + 1) / 2
	assert.Equal(t, "assignment-four", f.Name)
	assert.Equal(t, n+pairs, f.ColumnCount())
	assert.Equal(t, n+pairs, f.ConstraintCount())

	y, x := f.Variable("y"), f.Variable("x")
	require.NotNil(t, y)
	require.NotNil(t, x)
	assert.Equal(t, Binary, x.Domain)
	assert.Equal(t, PairIndexed, x.Shape)
	assert.Equal(t, pairs, x.Len())
	assert.Nil(t, f.Variable("s"))

	cols := f.Columns()
	// (c[i] + h (j-i)) d[j]
	assert.Equal(t, float64((1+2*2)*20), cols[x.Column(0, 2)].Cost)
	assert.Equal(t, float64((3+2*1)*5), cols[x.Column(2, 3)].Cost)
	assert.Equal(t, 0.0, cols[x.Column(1, 1)].Cost)
	assert.Equal(t, 80.0, cols[y.Column(3)].Cost)

	for j := 0; j < n; j++ {
		c := f.Constraints[j]
		assert.Equal(t, Equal, c.Sense)
		assert.Equal(t, 1.0, c.RHS)
		assert.Len(t, c.Expr, j+1)
	}
	assert.Equal(t, "unique_demand_assignment_3", f.Constraints[3].Name)

	link := f.Constraints[n]
	assert.Equal(t, "setup_production_0_0", link.Name)
	assert.ElementsMatch(t, []Term{{x.Column(0, 0), 1}, {y.Column(0), -1}}, link.Expr)
	assert.Equal(t, "setup_production_3_3", f.Constraints[len(f.Constraints)-1].Name)
}

func TestPairIndexing(t *testing.T) {
	inst := randomInstance(rand.New(rand.NewSource(1)), "pairs", 6)
	f, err := Build(inst, Assignment, false)
	require.NoError(t, err)

	x := f.Variable("x")
	expected := x.Column(0, 0)
	assert.Equal(t, inst.Periods, expected)

	for i := 0; i < inst.Periods; i++ {
		for j := i; j < inst.Periods; j++ {
			col := x.Column(i, j)
			assert.Equal(t, expected, col, "x[%d,%d]", i, j)
			assert.Equal(t, []int{i, j}, x.index(col))
			expected++
		}
	}
	assert.Equal(t, f.ColumnCount(), expected)
	assert.Equal(t, "x[2,5]", f.ColumnName(x.Column(2, 5)))
}

func TestInvalidIndexPanics(t *testing.T) {
	f, err := Build(fourPeriods(), Assignment, false)
	require.NoError(t, err)

	x, y := f.Variable("x"), f.Variable("y")
	assert.Panics(t, func() { x.Column(2, 1) })
	assert.Panics(t, func() { x.Column(0, 4) })
	assert.Panics(t, func() { x.Column(1) })
	assert.Panics(t, func() { y.Column(-1) })
	assert.Panics(t, func() { y.Column(4) })
}

func TestBuildRelaxed(t *testing.T) {
	for _, variant := range []Variant{Flow, Assignment} {
		t.Run(variant.String(), func(t *testing.T) {
			integer, err := Build(fourPeriods(), variant, false)
			require.NoError(t, err)
			relaxed, err := Build(fourPeriods(), variant, true)
			require.NoError(t, err)

			assert.True(t, relaxed.Relaxed)
			assert.Equal(t, integer.Name+"-relaxed", relaxed.Name)
			assert.Equal(t, integer.ColumnCount(), relaxed.ColumnCount())
			assert.Equal(t, integer.Constraints, relaxed.Constraints)
			assert.Equal(t, integer.Objective, relaxed.Objective)

			intCols, relCols := integer.Columns(), relaxed.Columns()
			for i := range relCols {
				assert.Equal(t, NonNegativeContinuous, relCols[i].Domain)
				assert.Equal(t, intCols[i].Upper, relCols[i].Upper)
			}
		})
	}
}

func TestBuildRejectsMalformedInstance(t *testing.T) {
	inst := fourPeriods()
	inst.Demand = inst.Demand[:2]

	f, err := Build(inst, Flow, false)
	assert.Nil(t, f)
	assert.True(t, errors.Is(err, ErrMalformedInstance))

	_, err = Build(fourPeriods(), Variant(7), false)
	assert.Error(t, err)
}

func TestPlanObjectiveMatchesCost(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for k := 0; k < 20; k++ {
		inst := randomInstance(rng, "random", 1+rng.Intn(8))

		// any plan serving each period from an earlier or equal one
		serve := make([]int, inst.Periods)
		for j := range serve {
			serve[j] = rng.Intn(j + 1)
		}

		for _, variant := range []Variant{Flow, Assignment} {
			for _, bigM := range []BigM{BigMTotalDemand, BigMRemainingDemand} {
				f, err := Build(inst, variant, false, UsingBigM(bigM))
				require.NoError(t, err)

				vals := planValues(f, serve)
				assert.InDelta(t, planCost(inst, serve), f.ObjectiveValue(vals), delta)
				assert.NoError(t, f.Check(vals, delta))
			}
		}
	}
}

func TestCheck(t *testing.T) {
	inst := fourPeriods()
	serve := []int{0, 0, 2, 2}

	flow, err := Build(inst, Flow, false)
	require.NoError(t, err)
	y, x, s := flow.Variable("y"), flow.Variable("x"), flow.Variable("s")

	tests := []struct {
		name   string
		mutate func([]float64) []float64
	}{
		{"wrong length", func(v []float64) []float64 { return v[1:] }},
		{"fractional setup", func(v []float64) []float64 { v[y.Column(1)] = 0.5; return v }},
		{"negative stock", func(v []float64) []float64 { v[s.Column(3)] = -1; return v }},
		{"undefined value", func(v []float64) []float64 { v[x.Column(0)] = math.NaN(); return v }},
		{"broken balance", func(v []float64) []float64 { v[x.Column(2)]++; return v }},
		{"production without setup", func(v []float64) []float64 { v[y.Column(2)] = 0; return v }},
	}

	require.NoError(t, flow.Check(planValues(flow, serve), delta))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := flow.Check(tt.mutate(planValues(flow, serve)), delta)
			assert.True(t, errors.Is(err, ErrViolation), "got %v", err)
		})
	}

	assignment, err := Build(inst, Assignment, false)
	require.NoError(t, err)
	vals := planValues(assignment, serve)
	require.NoError(t, assignment.Check(vals, delta))

	// demand of period 3 assigned twice
	vals[assignment.Variable("x").Column(0, 3)] = 1
	assert.True(t, errors.Is(assignment.Check(vals, delta), ErrViolation))

	relaxed, err := Build(inst, Flow, true)
	require.NoError(t, err)
	vals = planValues(relaxed, serve)
	vals[relaxed.Variable("y").Column(1)] = 0.5
	assert.NoError(t, relaxed.Check(vals, delta))
}

func TestParseVariantAndBigM(t *testing.T) {
	v, err := ParseVariant("Assignment")
	require.NoError(t, err)
	assert.Equal(t, Assignment, v)
	v, err = ParseVariant(Flow.String())
	require.NoError(t, err)
	assert.Equal(t, Flow, v)
	_, err = ParseVariant("facility")
	assert.Error(t, err)

	m, err := ParseBigM("")
	require.NoError(t, err)
	assert.Equal(t, BigMTotalDemand, m)
	m, err = ParseBigM(BigMRemainingDemand.String())
	require.NoError(t, err)
	assert.Equal(t, BigMRemainingDemand, m)
	_, err = ParseBigM("huge")
	assert.Error(t, err)
}
