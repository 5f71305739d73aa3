package de

import (
	"math"
	"math/rand"
)

// evolve runs the generational loop until MaxBadGen contiguous generations
// pass without improving the best-ever score. Returns the number of
// completed generations and the buffer holding the newest generation.
func (t *tuner) evolve() (int, population) {
	cfg := &t.cfg

	t.ibest = t.buf.parents().best()
	t.nTweaked = 0

	generation := 0
	for {
		generation++

		parents := t.buf.parents()
		children := t.buf.children()

		worst := math.Inf(1)
		sum := 0.0
		t.improved = false

		for ind := 0; ind < cfg.PopSize; ind++ {
			parent1 := parents[ind] // pure, already-scored parent
			dest := children[ind]   // the winner of this step lives here

			i, j, k := pickThree(cfg.Rand, cfg.PopSize, ind)
			value := t.makeChild(dest, parent1, parents[i], parents[j], parents[k])

			// Selection: keep the child only if it strictly beats its pure
			// parent; otherwise the parent moves forward unchanged. The slot
			// always ends the step holding a scored candidate no worse than
			// parent1.
			if value > parent1.score() {
				dest.setScore(value)
				if value > t.best.score() {
					t.noteBest(dest, ind)
				}
			} else {
				dest.copyFrom(parent1)
				value = parent1.score()
			}

			value = t.maybeClimb(dest, ind, generation, value)

			if value < worst {
				worst = value
			}
			sum += value
		}

		stats := GenStats{
			Generation: generation,
			Best:       t.best.score(),
			BestParams: append([]float64(nil), t.best.params()...),
			Worst:      worst,
			Avg:        sum / float64(cfg.PopSize),
			Evals:      t.state.evals,
		}
		t.log.Info("generation complete",
			"generation", stats.Generation,
			"best", stats.Best,
			"worst", stats.Worst,
			"avg", stats.Avg,
			"evals", stats.Evals)
		if cfg.OnGeneration != nil {
			cfg.OnGeneration(stats)
		}

		if !t.improved {
			t.state.badGens++
			if t.state.badGens > cfg.MaxBadGen {
				return generation, children
			}
		} else {
			t.state.badGens = 0
		}

		t.buf.swap()
	}
}

// makeChild builds a child in dest by differential mutation and rotating
// crossover, legalizes it, and evaluates it. A uniformly random starting
// dimension is walked through all nvars dimensions with wraparound; each
// visited dimension takes the mutated expression with probability PCross and
// the pure parent's value otherwise. At least one dimension always comes
// from the mutated expression, enforced on the final dimension visited, so
// the child is never an exact clone of parent1.
func (t *tuner) makeChild(dest, parent1, parent2, diff1, diff2 candidate) float64 {
	cfg := &t.cfg
	rng := cfg.Rand

	j := rng.Intn(cfg.NVars) // random starting dimension for the rotation
	used := false
	for i := cfg.NVars - 1; i >= 0; i-- {
		if (i == 0 && !used) || rng.Float64() < cfg.PCross {
			dest[j] = parent2[j] + cfg.MutateDev*(diff1[j]-diff2[j])
			used = true
		} else {
			dest[j] = parent1[j]
		}
		j = (j + 1) % cfg.NVars
	}

	ensureLegal(dest.params(), cfg.NInts, cfg.Low, cfg.High)
	return t.eval(dest)
}

// pickThree samples three distinct indices in [0, size), all different from
// exclude, without replacement. size must be at least 4, which config
// validation guarantees.
func pickThree(rng *rand.Rand, size, exclude int) (int, int, int) {
	pool := make([]int, 0, size-1)
	for i := 0; i < size; i++ {
		if i != exclude {
			pool = append(pool, i)
		}
	}
	for n := 0; n < 3; n++ {
		j := n + rng.Intn(len(pool)-n)
		pool[n], pool[j] = pool[j], pool[n]
	}
	return pool[0], pool[1], pool[2]
}
