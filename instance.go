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
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ReadInstanceFile parses the instance stored at path. The instance is named
// after the file's base name.
func ReadInstanceFile(path string) (*Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening instance: %w", err)
	}
	defer f.Close()

	inst, err := ParseInstance(filepath.Base(path), f)
	if err != nil {
		return nil, err
	}

	return inst, nil
}

// ParseInstance reads an instance in the five line text format:
//
//	n
//	d[0] ... d[n-1]
//	c[0] ... c[n-1]
//	f[0] ... f[n-1]
//	h
//
// Values are whitespace separated non-negative integers. Blank lines are not
// allowed between the five lines; anything after the fifth line is ignored.
func ParseInstance(name string, r io.Reader) (*Instance, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	lineNo := 0
	next := func(what string, want int) ([]int, error) {
		lineNo++
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, malformed(name, lineNo, err)
			}
			return nil, malformed(name, lineNo, fmt.Errorf("missing %s line", what))
		}

		fields := strings.Fields(scanner.Text())
		if want >= 0 && len(fields) != want {
			return nil, malformed(name, lineNo, fmt.Errorf("%s: expected %d values, found %d", what, want, len(fields)))
		}

		vals := make([]int, len(fields))
		for i, field := range fields {
			v, err := strconv.Atoi(field)
			if err != nil {
				return nil, malformed(name, lineNo, fmt.Errorf("%s: %w", what, err))
			}
			if v < 0 {
				return nil, malformed(name, lineNo, fmt.Errorf("%s: negative value %d", what, v))
			}
			vals[i] = v
		}
		return vals, nil
	}

	head, err := next("period count", 1)
	if err != nil {
		return nil, err
	}
	n := head[0]
	if n == 0 {
		return nil, malformed(name, lineNo, fmt.Errorf("period count must be positive"))
	}

	inst := &Instance{Name: name, Periods: n}

	if inst.Demand, err = next("demand", n); err != nil {
		return nil, err
	}
	if inst.UnitCost, err = next("unit cost", n); err != nil {
		return nil, err
	}
	if inst.SetupCost, err = next("setup cost", n); err != nil {
		return nil, err
	}

	holding, err := next("holding cost", 1)
	if err != nil {
		return nil, err
	}
	inst.HoldingCost = holding[0]

	if err := inst.Validate(); err != nil {
		return nil, err
	}

	return inst, nil
}
