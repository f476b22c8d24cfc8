// Package ulstest computes reference answers for small lot-sizing instances.
package ulstest

import (
	"math"
	"math/rand"
)

// Optimum enumerates every set of setup periods that contains period 0 and
// serves each period from its cheapest setup at or before it. It returns the
// cheapest total cost and, for each period, the period producing its demand.
// Exponential in the number of periods; meant for n <= 12 or so.
func Optimum(demand, unitCost, setupCost []int, holding int) (float64, []int) {
	n := len(demand)
	best := math.Inf(1)
	var bestServe []int

	for mask := 1; mask < 1<<n; mask += 2 {
		serve := make([]int, n)
		cost := 0
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				cost += setupCost[i]
			}
		}

		for j := 0; j < n; j++ {
			serve[j] = -1
			bestUnit := 0
			for i := 0; i <= j; i++ {
				if mask&(1<<i) == 0 {
					continue
				}
				unit := unitCost[i] + holding*(j-i)
				if serve[j] < 0 || unit < bestUnit {
					serve[j], bestUnit = i, unit
				}
			}
			cost += bestUnit * demand[j]
		}

		if float64(cost) < best {
			best, bestServe = float64(cost), serve
		}
	}

	return best, bestServe
}

// Random draws instance data with strictly positive demand.
func Random(rng *rand.Rand, n int) (demand, unitCost, setupCost []int, holding int) {
	demand = make([]int, n)
	unitCost = make([]int, n)
	setupCost = make([]int, n)
	for i := 0; i < n; i++ {
		demand[i] = 1 + rng.Intn(50)
		unitCost[i] = 1 + rng.Intn(10)
		setupCost[i] = rng.Intn(200)
	}
	return demand, unitCost, setupCost, rng.Intn(4)
}
