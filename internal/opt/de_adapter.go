package opt

import (
	"math/rand"

	"github.com/cwbudde/difftune/internal/de"
)

// DEAdapter exposes the differential evolution engine through the generic
// Optimizer interface, with the trading-specific knobs (integer dimensions,
// minimum-trade-count) disabled. Note the engine treats scores <= 0 as the
// insufficient-evidence sentinel, so objectives passed through this adapter
// should be positive over most of the search space.
type DEAdapter struct {
	maxBadGen int
	popSize   int
	seed      int64
	pclimb    float64
}

// NewDE creates a differential evolution adapter.
func NewDE(maxBadGen, popSize int, seed int64) Optimizer {
	return &DEAdapter{
		maxBadGen: maxBadGen,
		popSize:   popSize,
		seed:      seed,
		pclimb:    0.1,
	}
}

// Run executes the DE engine on an all-real, sentinel-free objective.
func (a *DEAdapter) Run(eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64) {
	cfg := de.Config{
		NVars:     dim,
		PopSize:   a.popSize,
		MinTrades: 1,
		MaxEvals:  1 << 30,
		MaxBadGen: a.maxBadGen,
		MutateDev: 0.8,
		PCross:    0.9,
		PClimb:    a.pclimb,
		Low:       lower,
		High:      upper,
		Rand:      rand.New(rand.NewSource(a.seed)),
	}

	result, err := de.Run(cfg, func(params []float64, _ int) float64 {
		return eval(params)
	})
	if err != nil || result == nil {
		return make([]float64, dim), eval(make([]float64, dim))
	}
	return result.Params, result.Score
}
