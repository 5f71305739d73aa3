package opt

import (
	"math/rand"

	"github.com/cwbudde/mayfly"
)

// MayflyAdapter wraps the external Mayfly library as a baseline algorithm
// for comparing against the differential evolution engine. The library
// minimizes a cost, so the objective is negated on the way in.
type MayflyAdapter struct {
	maxIters int
	popSize  int
	seed     int64
}

// NewMayfly creates a new Mayfly optimizer adapter.
func NewMayfly(maxIters, popSize int, seed int64) Optimizer {
	return &MayflyAdapter{
		maxIters: maxIters,
		popSize:  popSize,
		seed:     seed,
	}
}

// Run executes the Mayfly optimization using the external library.
func (m *MayflyAdapter) Run(eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64) {
	config := mayfly.NewDefaultConfig()

	// The library minimizes; flip the sign of the score being maximized.
	config.ObjectiveFunc = func(params []float64) float64 {
		return -eval(params)
	}
	config.ProblemSize = dim
	config.MaxIterations = m.maxIters
	config.NPop = m.popSize

	// The external library uses scalar bounds shared by every dimension.
	config.LowerBound = lower[0]
	config.UpperBound = upper[0]

	config.Rand = rand.New(rand.NewSource(m.seed))

	result, err := mayfly.Optimize(config)
	if err != nil {
		// Fall back to the zero vector if the library rejects the setup.
		return make([]float64, dim), eval(make([]float64, dim))
	}

	return result.GlobalBest.Position, -result.GlobalBest.Cost
}
