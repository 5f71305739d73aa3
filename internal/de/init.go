package de

import "math"

// initialize fills the first population buffer with random legal candidates
// and evaluates each. Trials beyond PopSize (the over-initialization phase)
// go to a scratch slot and replace the current worst member when superior,
// raising the quality floor of generation zero at the cost of extra
// evaluations.
//
// Trials scoring the sentinel (<= 0) are discarded and retried; after enough
// consecutive discards the minimum-trade-count is relaxed. Returns true if
// the MaxEvals safety cap was hit before the population could be built, in
// which case the run is aborted with whatever best has been seen so far.
func (t *tuner) initialize() (aborted bool) {
	cfg := &t.cfg
	rng := cfg.Rand

	if cfg.Collector != nil {
		cfg.Collector.Collect(true)
		defer cfg.Collector.Collect(false)
	}

	pop := t.buf.parents()
	scratch := newCandidate(cfg.NVars)

	worst := math.Inf(1)
	sum := 0.0
	valid := 0

	for ind := 0; ind < cfg.PopSize+cfg.OverInit; {
		dst := scratch
		if ind < cfg.PopSize {
			dst = pop[ind]
		}

		for i := 0; i < cfg.NVars; i++ {
			if i < cfg.NInts {
				// Integers are drawn uniformly from [low, high] inclusive.
				v := cfg.Low[i] + math.Floor(rng.Float64()*(cfg.High[i]-cfg.Low[i]+1))
				if v > cfg.High[i] {
					v = cfg.High[i]
				}
				dst[i] = v
			} else {
				dst[i] = cfg.Low[i] + rng.Float64()*(cfg.High[i]-cfg.Low[i])
			}
		}

		value := t.eval(dst)
		dst.setScore(value)

		if ind == 0 {
			// The first evaluated trial seeds the best, sentinel or not; an
			// all-sentinel run returns it as a degenerate result.
			t.best.copyFrom(dst)
			worst = value
		}

		if value <= 0 {
			if t.state.evals > cfg.MaxEvals {
				t.log.Warn("evaluation safety cap hit during initialization",
					"evals", t.state.evals, "filled", ind)
				return true
			}
			if t.state.recordFailure() {
				t.log.Info("relaxed minimum trade count after repeated failures",
					"min_trades", t.state.minTrades)
			}
			continue // discard the trial entirely
		}
		t.state.recordSuccess()

		if value > t.best.score() {
			t.best.copyFrom(dst)
		}
		if value < worst {
			worst = value
		}
		sum += value
		valid++

		if ind >= cfg.PopSize {
			// Over-initialization: evict the worst member if this trial beats it.
			iw, w := pop.worst()
			if value > w {
				pop[iw].copyFrom(dst)
			}
			_, worst = pop.worst()
			sum = pop.avg() * float64(cfg.PopSize)
			valid = cfg.PopSize
		}

		t.log.Debug("initial trial",
			"trial", ind,
			"value", value,
			"best", t.best.score(),
			"worst", worst,
			"avg", sum/float64(valid),
			"fail_rate", float64(t.state.evals)/float64(ind+1))

		ind++
	}

	return false
}
