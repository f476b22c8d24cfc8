package lotsizing

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSolutionFlow(t *testing.T) {
	f := buildTwo(t, Flow, false)
	res, err := Solve(oracleSolver(1), f, DefaultConfig())
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, WriteSolution(&sb, res))
	out := sb.String()

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "period")
	assert.Equal(t, []string{"1", "1", "7.00", "4.00"}, cells(lines[1]))
	assert.Equal(t, []string{"2", "0", "0.00", "0.00"}, cells(lines[2]))
	assert.Equal(t, []string{"total", "", "7.00", ""}, cells(lines[3]))
}

func TestWriteSolutionAssignment(t *testing.T) {
	f := buildTwo(t, Assignment, false)
	res, err := Solve(oracleSolver(1), f, DefaultConfig())
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, WriteSolution(&sb, res))

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"period", "y (setup)", "j=1", "j=2"}, cells(lines[0]))
	assert.Equal(t, []string{"1", "1", "1", "1"}, cells(lines[1]))
	assert.Equal(t, []string{"2", "0", "-", "0"}, cells(lines[2]))
}

func TestWriteSolutionNotices(t *testing.T) {
	f := buildTwo(t, Flow, false)

	res, err := Solve(fixed(&RawResult{Code: codeTimeLimit, Objective: math.NaN(), DualBound: math.NaN(), Gap: math.NaN()}, nil), f, DefaultConfig())
	require.NoError(t, err)
	var sb strings.Builder
	require.NoError(t, WriteSolution(&sb, res))
	assert.Equal(t, "time limit reached: solution not shown\n", sb.String())

	res, err = Solve(fixed(&RawResult{Code: codeInfeasible, Objective: math.NaN(), DualBound: math.NaN(), Gap: math.NaN()}, nil), f, DefaultConfig())
	require.NoError(t, err)
	sb.Reset()
	require.NoError(t, WriteSolution(&sb, res))
	assert.Equal(t, "no feasible solution found\n", sb.String())
}

func TestWriteSummary(t *testing.T) {
	f := buildTwo(t, Flow, false)
	res, err := Solve(oracleSolver(1), f, DefaultConfig())
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, WriteSummary(&sb, res))
	out := sb.String()

	assert.Contains(t, out, "status: Optimal\n")
	assert.Contains(t, out, "objective: 16\n")
	assert.Contains(t, out, "nodes: 2\n")
}

// cells splits a tabwriter line drawn with column separators.
func cells(line string) []string {
	parts := strings.Split(line, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts[:len(parts)-1] {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}
