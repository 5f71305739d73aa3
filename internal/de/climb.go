package de

import "github.com/cwbudde/difftune/internal/uni"

// Univariate search settings for the real-dimension hill climb: the scan
// point count passed to Bracket and the iteration cap, epsilon, and tolerance
// passed to BrentMax.
const (
	bracketPoints = 7
	brentIters    = 5
	brentEps      = 1e-8
	brentTol      = 1e-4
)

// maybeClimb applies a single-dimension hill-climbing step to the candidate
// just placed in its destination slot, when hill climbing is enabled and
// either this individual is the reigning best (which gets one dimension
// tweaked per generation until all have been tried since its last
// improvement) or a random draw selects it.
//
// Returns the candidate's score after the step; a rejected step always
// restores the exact prior value, so the score never decreases here.
func (t *tuner) maybeClimb(dest candidate, ind, generation int, value float64) float64 {
	cfg := &t.cfg
	if cfg.PClimb <= 0 {
		return value
	}
	if !((ind == t.ibest && t.nTweaked < cfg.NVars) || cfg.Rand.Float64() < cfg.PClimb) {
		return value
	}

	var k int
	if ind == t.ibest {
		// Tweak the best once per generation, cycling through dimensions.
		t.nTweaked++
		k = generation % cfg.NVars
	} else {
		k = cfg.Rand.Intn(cfg.NVars)
	}

	before := value
	if k < cfg.NInts {
		value = t.climbInteger(dest, k, value)
	} else {
		value = t.climbReal(dest, k, value)
	}

	if value > before {
		dest.setScore(value)
		if value > t.best.score() {
			t.noteBest(dest, ind)
		}
	}
	return value
}

// climbInteger exhaustively walks an integer dimension's neighbors: upward
// one step at a time while the score strictly improves, then downward if no
// upward step helped. The walk stops at the first non-improving step in
// whichever direction is explored and keeps the best integer found, which
// may be the original.
func (t *tuner) climbInteger(x candidate, k int, value float64) float64 {
	cfg := &t.cfg
	base := int(x[k])
	low := int(cfg.Low[k])
	high := int(cfg.High[k])

	t.log.Debug("integer hill climb", "dimension", k, "from", base, "value", value)

	best := base
	success := false
	for v := base + 1; v <= high; v++ {
		x[k] = float64(v)
		trial := t.eval(x)
		if trial > value {
			value = trial
			best = v
			success = true
		} else {
			x[k] = float64(best)
			break
		}
	}
	if !success {
		for v := base - 1; v >= low; v-- {
			x[k] = float64(v)
			trial := t.eval(x)
			if trial > value {
				value = trial
				best = v
				success = true
			} else {
				x[k] = float64(best)
				break
			}
		}
	}

	t.log.Debug("integer hill climb done", "dimension", k, "at", best, "value", value, "improved", success)
	return value
}

// climbReal runs a univariate line search on a real dimension: a window
// spanning ten percent of the dimension's range either side of the current
// value (shifted to a one-sided twenty-percent window when it would cross a
// bound) is scanned by the global bracketing search and refined by Brent's
// method. The refined point is re-legalized and re-scored without penalty;
// it is accepted only if the full score strictly improves, otherwise the
// original value is restored exactly.
func (t *tuner) climbReal(x candidate, k int, value float64) float64 {
	cfg := &t.cfg
	base := x[k]
	span := cfg.High[k] - cfg.Low[k]

	lower := base - 0.1*span
	upper := base + 0.1*span
	if lower < cfg.Low[k] {
		lower = cfg.Low[k]
		upper = cfg.Low[k] + 0.2*span
	}
	if upper > cfg.High[k] {
		upper = cfg.High[k]
		lower = cfg.High[k] - 0.2*span
	}

	t.log.Debug("real hill climb", "dimension", k, "from", base, "value", value)

	lo := &lineObjective{
		x:         x.params(),
		ivar:      k,
		nints:     cfg.NInts,
		low:       cfg.Low,
		high:      cfg.High,
		score:     t.score,
		minTrades: t.state.minTrades,
	}
	xa, xb, xc, fb := uni.Bracket(lower, upper, bracketPoints, lo.eval)
	refined, _ := uni.BrentMax(xa, xb, xc, fb, brentIters, brentEps, brentTol, lo.eval)
	t.state.evals += lo.evals

	x[k] = refined
	ensureLegal(x.params(), cfg.NInts, cfg.Low, cfg.High)
	full := t.eval(x)
	if full > value {
		t.log.Debug("real hill climb done", "dimension", k, "at", x[k], "value", full, "improved", true)
		return full
	}

	x[k] = base // restore the exact prior value
	t.log.Debug("real hill climb done", "dimension", k, "at", base, "value", value, "improved", false)
	return value
}
