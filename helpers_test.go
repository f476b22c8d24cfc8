package lotsizing

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/costela/lotsizing/internal/ulstest"
)

const (
	delta = 0.0000001 // acceptable numerical deviation for test results
)

// Native codes understood by scriptedSolver.
const (
	codeOptimal = iota
	codeTimeLimit
	codeInfeasible
	codeOther
	codeFault
)

var errScriptedFault = errors.New("scripted fault")

// scriptedSolver answers every Optimize with whatever respond returns.
type scriptedSolver struct {
	respond func(f *Formulation) (*RawResult, error)
	loadErr error
	delay   time.Duration

	mu     sync.Mutex
	loaded []string
	closed int
}

func (s *scriptedSolver) Load(f *Formulation, cfg Config) (Session, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	s.mu.Lock()
	s.loaded = append(s.loaded, f.Name)
	s.mu.Unlock()
	return &scriptedSession{solver: s, f: f}, nil
}

func (s *scriptedSolver) Classify(code int) (SolveStatus, error) {
	switch code {
	case codeOptimal:
		return SolutionOptimal, nil
	case codeTimeLimit:
		return SolutionTimeLimit, nil
	case codeInfeasible:
		return SolutionInfeasible, nil
	case codeOther:
		return SolutionOther, nil
	default:
		return SolutionOther, errScriptedFault
	}
}

func (s *scriptedSolver) closedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type scriptedSession struct {
	solver *scriptedSolver
	f      *Formulation
}

func (sess *scriptedSession) Optimize() (*RawResult, error) {
	if sess.solver.delay > 0 {
		time.Sleep(sess.solver.delay)
	}
	return sess.solver.respond(sess.f)
}

func (sess *scriptedSession) Close() error {
	sess.solver.mu.Lock()
	sess.solver.closed++
	sess.solver.mu.Unlock()
	return nil
}

// oracleSolver solves integer formulations exactly by enumeration and
// reports relaxations at relaxFactor times the integer optimum.
func oracleSolver(relaxFactor float64) *scriptedSolver {
	return &scriptedSolver{
		respond: func(f *Formulation) (*RawResult, error) {
			cost, serve := bruteForce(f.Instance)
			vals := planValues(f, serve)
			obj := f.ObjectiveValue(vals)
			if math.Abs(obj-cost) > delta {
				return nil, fmt.Errorf("plan objective %g differs from cost %g", obj, cost)
			}
			if f.Relaxed {
				obj *= relaxFactor
			}
			return &RawResult{
				Code:      codeOptimal,
				Objective: obj,
				DualBound: math.NaN(),
				Gap:       math.NaN(),
				Nodes:     int64(f.Instance.Periods),
				Values:    vals,
			}, nil
		},
	}
}

// planValues turns a production plan, serve[j] being the period that
// produces the demand of period j, into a dense assignment of f.
func planValues(f *Formulation, serve []int) []float64 {
	inst := f.Instance
	vals := make([]float64, f.ColumnCount())

	y := f.Variable("y")
	for _, i := range serve {
		vals[y.Column(i)] = 1
	}

	switch f.Variant {
	case Flow:
		x, s := f.Variable("x"), f.Variable("s")
		for j, i := range serve {
			vals[x.Column(i)] += float64(inst.Demand[j])
		}
		stock := 0.0
		for i := 0; i < inst.Periods; i++ {
			stock += vals[x.Column(i)] - float64(inst.Demand[i])
			vals[s.Column(i)] = stock
		}
	case Assignment:
		x := f.Variable("x")
		for j, i := range serve {
			vals[x.Column(i, j)] = 1
		}
	}

	return vals
}

func planCost(inst *Instance, serve []int) float64 {
	setups := make(map[int]bool)
	cost := 0
	for j, i := range serve {
		setups[i] = true
		cost += (inst.UnitCost[i] + inst.HoldingCost*(j-i)) * inst.Demand[j]
	}
	for i := range setups {
		cost += inst.SetupCost[i]
	}
	return float64(cost)
}

// bruteForce returns the optimal cost of inst and a plan achieving it.
func bruteForce(inst *Instance) (float64, []int) {
	return ulstest.Optimum(inst.Demand, inst.UnitCost, inst.SetupCost, inst.HoldingCost)
}

// randomInstance draws an instance with strictly positive demand.
func randomInstance(rng *rand.Rand, name string, n int) *Instance {
	inst := &Instance{Name: name, Periods: n}
	inst.Demand, inst.UnitCost, inst.SetupCost, inst.HoldingCost = ulstest.Random(rng, n)
	return inst
}

func twoPeriodInstance() *Instance {
	return &Instance{
		Name:        "two",
		Periods:     2,
		Demand:      []int{3, 4},
		UnitCost:    []int{1, 1},
		SetupCost:   []int{5, 5},
		HoldingCost: 1,
	}
}

func entriesOf(insts ...*Instance) []Entry {
	entries := make([]Entry, len(insts))
	for i, inst := range insts {
		entries[i] = Entry{Filename: inst.Name, Instance: inst}
	}
	return entries
}
