package raffle

import "math"

// Redistribute reallocates the probability mass of depleted prizes to the
// remaining active ones.
//
// Policy: equal split. The combined probability of all zero-quantity prizes is
// divided by the number of active prizes and the quotient added to each of
// them; depleted prizes end at probability 0. Total probability mass across
// the active set is conserved. When no prize is depleted this is a no-op, and
// when nothing is active there is nowhere to move the mass, so the pool is
// left untouched.
//
// Runs after every draw so the next draw in a batch sees updated odds.
func Redistribute(pool *PrizePool) {
	if pool == nil {
		return
	}

	active := 0
	depleted := 0
	var zeroSum float64
	for i := range pool.prizes {
		if pool.prizes[i].Quantity > 0 {
			active++
		} else {
			depleted++
			zeroSum += pool.prizes[i].Probability
		}
	}
	if active == 0 || depleted == 0 {
		return
	}

	share := zeroSum / float64(active)
	for i := range pool.prizes {
		if pool.prizes[i].Quantity > 0 {
			pool.prizes[i].Probability += share
		} else {
			pool.prizes[i].Probability = 0
		}
	}
}

// NormalizeTo100 rescales every active prize so the pool sums to exactly 100.
//
// This is an explicit, user-triggered operation, never part of a draw. Each
// active probability is scaled by 100/activeTotal and rounded to two decimal
// places; inactive prizes are zeroed. Any residual rounding error is assigned
// entirely to the first active prize in iteration order, which makes the
// result deterministic and the post-correction sum exactly 100. Calling it
// again yields the same pool state.
//
// A pool whose active total is zero is left unchanged.
func NormalizeTo100(pool *PrizePool) {
	if pool == nil {
		return
	}

	var activeTotal float64
	for i := range pool.prizes {
		if pool.prizes[i].Quantity > 0 {
			activeTotal += pool.prizes[i].Probability
		}
	}
	if activeTotal <= 0 {
		return
	}

	factor := ProbabilityTotal / activeTotal
	firstActive := -1
	var sum float64
	for i := range pool.prizes {
		if pool.prizes[i].Quantity > 0 {
			pool.prizes[i].Probability = round2(pool.prizes[i].Probability * factor)
			sum += pool.prizes[i].Probability
			if firstActive < 0 {
				firstActive = i
			}
		} else {
			pool.prizes[i].Probability = 0
		}
	}

	// Rounding residual goes to the first active prize. round2 keeps the
	// corrected value at two decimals despite float error in the diff.
	if diff := ProbabilityTotal - sum; diff != 0 && firstActive >= 0 {
		pool.prizes[firstActive].Probability = round2(pool.prizes[firstActive].Probability + diff)
	}
}

// round2 rounds to two decimal places.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
