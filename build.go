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
	"strings"
)

// BigM selects the constant used by the flow formulation to link production
// to setups.
type BigM int

const (
	// BigMTotalDemand uses the demand summed over the whole horizon.
	BigMTotalDemand BigM = iota
	// BigMRemainingDemand uses the demand from the linked period onwards,
	// which gives a tighter relaxation.
	BigMRemainingDemand
)

func (m BigM) String() string {
	switch m {
	case BigMTotalDemand:
		return "total"
	case BigMRemainingDemand:
		return "remaining"
	default:
		return fmt.Sprintf("BigM(%d)", int(m))
	}
}

// ParseBigM is the inverse of BigM.String.
func ParseBigM(s string) (BigM, error) {
	switch strings.ToLower(s) {
	case "total", "":
		return BigMTotalDemand, nil
	case "remaining":
		return BigMRemainingDemand, nil
	default:
		return 0, fmt.Errorf("unknown big-M strategy %q", s)
	}
}

type buildSettings struct {
	bigM BigM
}

// BuildOption tunes how a formulation is built.
type BuildOption func(*buildSettings)

// UsingBigM selects the big-M strategy of the flow formulation. It has no
// effect on the assignment formulation.
func UsingBigM(m BigM) BuildOption {
	return func(s *buildSettings) {
		s.bigM = m
	}
}

// Build returns a fresh formulation of the instance. With relaxed set, every
// integral variable is declared continuous, yielding the LP relaxation of
// the same model.
func Build(inst *Instance, variant Variant, relaxed bool, opts ...BuildOption) (*Formulation, error) {
	if err := inst.Validate(); err != nil {
		return nil, err
	}

	settings := buildSettings{bigM: BigMTotalDemand}
	for _, opt := range opts {
		opt(&settings)
	}

	switch variant {
	case Flow:
		return buildFlow(inst, relaxed, settings), nil
	case Assignment:
		return buildAssignment(inst, relaxed), nil
	default:
		return nil, fmt.Errorf("unknown formulation variant %v", variant)
	}
}
