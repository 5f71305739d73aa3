package opt

// Optimizer defines an optimization algorithm interface for all-real
// problems. It exists so the differential evolution engine and baseline
// algorithms are interchangeable in benchmark comparisons.
type Optimizer interface {
	// Run executes the optimization.
	// eval: objective function to maximize
	// lower, upper: per-dimension parameter bounds
	// dim: dimensionality of parameter space
	// Returns: best parameters and best score
	Run(eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64)
}
