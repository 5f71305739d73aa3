package de

// lineObjective adapts the multi-dimensional criterion to a scalar function
// of a single designated dimension, for use by the univariate search
// routines. Each hill-climb invocation constructs a fresh value capturing
// exactly the state it needs; nothing is shared between invocations.
//
// Legality violations are folded into the returned value as a steep penalty
// rather than a hard boundary, so the bracketing search sees a continuous
// disincentive when it probes outside the legal region. The outer hill-climb
// step always re-validates the refined point with an unpenalized, clamped
// evaluation before accepting it.
type lineObjective struct {
	x         []float64 // full parameter vector, mutated in place
	ivar      int       // dimension under optimization
	nints     int
	low, high []float64
	score     Objective
	minTrades int
	evals     int // evaluations performed through this adapter
}

func (lo *lineObjective) eval(v float64) float64 {
	lo.x[lo.ivar] = v
	penalty := ensureLegal(lo.x, lo.nints, lo.low, lo.high)
	lo.evals++
	return lo.score(lo.x, lo.minTrades) - penalty
}
