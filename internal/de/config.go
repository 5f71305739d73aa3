package de

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
)

// Objective is the criterion function being maximized. It receives the full
// parameter vector and the current minimum-trade-count constraint and returns
// a score. A score <= 0 is the reserved sentinel meaning "insufficient
// evidence to score" (not a poor-but-valid score).
type Objective func(params []float64, minTrades int) float64

// Collector is an optional instrumentation hook. The engine enables it for
// the duration of initial-population generation and disables it afterwards.
// It has no influence on the optimization itself.
type Collector interface {
	Collect(enabled bool)
}

// Reporter is an optional post-run reporting hook. It receives the final
// population (each row is nvars parameters followed by the score) after the
// generational loop terminates. A Reporter failure does not discard the best
// candidate found.
type Reporter interface {
	Report(pop [][]float64, nvars int) error
}

// GenStats summarizes one completed generation for progress consumers.
type GenStats struct {
	Generation int
	Best       float64
	BestParams []float64 // copy of the best vector, safe to retain
	Worst      float64
	Avg        float64
	Evals      int
}

// Config holds all parameters for a differential evolution run.
//
// PopSize should be 5 to 10 times NVars, more for a more global search.
// OverInit should be 0 for simple problems, or PopSize for hard problems.
// MutateDev should be about 0.4 to 1.2, with larger values giving a more
// global search. PCross is the probability that each parameter in crossover
// is chosen from the noisy parent rather than the pure parent.
type Config struct {
	NVars int // Number of parameters
	NInts int // Number of leading parameters that are integers

	PopSize   int // Population size, must be at least 4
	OverInit  int // Extra trial evaluations beyond PopSize during init
	MinTrades int // Initial minimum-trade-count constraint, >= 1
	MaxEvals  int // Safety cap on evaluations while building the population
	MaxBadGen int // Contiguous non-improving generations before stopping

	MutateDev float64 // Deviation for differential mutation
	PCross    float64 // Crossover probability in [0,1]
	PClimb    float64 // Probability of a hill-climbing step, may be zero

	Low  []float64 // Lower bounds, length NVars
	High []float64 // Upper bounds, length NVars

	// Rand is the random source for the run. Required; pass a seeded
	// rand.New(rand.NewSource(seed)) for reproducibility.
	Rand *rand.Rand

	// Optional collaborators.
	Collector    Collector      // instrumentation toggle around init
	Reporter     Reporter       // post-run correlation report
	OnGeneration func(GenStats) // called after each completed generation
	Logger       *slog.Logger   // verbose progress; nil disables
}

// Result holds the outcome of a run.
type Result struct {
	Params      []float64   // best parameter vector found, length NVars
	Score       float64     // score of Params
	Generations int         // completed generations
	Evals       int         // total objective evaluations, climbing included
	CapExceeded bool        // init hit the MaxEvals safety cap
	FinalPop    [][]float64 // final population rows (params + score)
}

// ErrInvalidConfig is returned when the configuration cannot produce a run.
var ErrInvalidConfig = errors.New("de: invalid config")

// ErrReportFailed wraps a post-run Reporter failure. The Result returned
// alongside it is still valid.
var ErrReportFailed = errors.New("de: post-run report failed")

func (c *Config) validate() error {
	if c.NVars <= 0 {
		return fmt.Errorf("%w: nvars must be positive, got %d", ErrInvalidConfig, c.NVars)
	}
	if c.NInts < 0 || c.NInts > c.NVars {
		return fmt.Errorf("%w: nints must be in [0,%d], got %d", ErrInvalidConfig, c.NVars, c.NInts)
	}
	// Four distinct individuals are needed per mutation (parent plus three
	// donors), so smaller populations cannot be sampled.
	if c.PopSize < 4 {
		return fmt.Errorf("%w: popsize must be at least 4, got %d", ErrInvalidConfig, c.PopSize)
	}
	if c.OverInit < 0 {
		return fmt.Errorf("%w: overinit must be non-negative, got %d", ErrInvalidConfig, c.OverInit)
	}
	if c.MinTrades < 1 {
		return fmt.Errorf("%w: mintrades must be at least 1, got %d", ErrInvalidConfig, c.MinTrades)
	}
	if c.MaxBadGen < 0 {
		return fmt.Errorf("%w: maxbadgen must be non-negative, got %d", ErrInvalidConfig, c.MaxBadGen)
	}
	if c.PCross < 0 || c.PCross > 1 {
		return fmt.Errorf("%w: pcross must be in [0,1], got %g", ErrInvalidConfig, c.PCross)
	}
	if c.PClimb < 0 || c.PClimb > 1 {
		return fmt.Errorf("%w: pclimb must be in [0,1], got %g", ErrInvalidConfig, c.PClimb)
	}
	if len(c.Low) != c.NVars || len(c.High) != c.NVars {
		return fmt.Errorf("%w: bounds length must equal nvars=%d, got low=%d high=%d",
			ErrInvalidConfig, c.NVars, len(c.Low), len(c.High))
	}
	for i := 0; i < c.NVars; i++ {
		if c.Low[i] > c.High[i] {
			return fmt.Errorf("%w: low bound exceeds high bound at dimension %d", ErrInvalidConfig, i)
		}
	}
	if c.Rand == nil {
		return fmt.Errorf("%w: random source is required", ErrInvalidConfig)
	}
	return nil
}
