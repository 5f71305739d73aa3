// Package de implements a hybrid global optimizer: differential evolution
// with over-initialization, an adaptive minimum-trade-count constraint, and a
// periodic hill-climbing refinement step on integer and real dimensions. It
// maximizes an arbitrary black-box criterion over a mixed integer/real
// parameter vector.
package de

import (
	"fmt"
	"log/slog"
)

// tuner carries the run-scoped state of one optimization.
type tuner struct {
	cfg   Config
	score Objective
	log   *slog.Logger

	buf  *doubleBuffer
	best candidate // best-ever candidate, params plus score

	ibest    int  // population index of the reigning best
	nTweaked int  // hill-climb tweaks of the reigning best since it last improved
	improved bool // best improved during the current generation

	state *runState
}

// Run executes one full optimization and returns the best candidate found.
//
// The returned Result is valid even when the error is non-nil if the error
// wraps ErrReportFailed: the post-run report is advisory and its failure does
// not discard the computed best. All other errors mean the run never started.
func Run(cfg Config, score Objective) (*Result, error) {
	if score == nil {
		return nil, fmt.Errorf("%w: objective is required", ErrInvalidConfig)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	t := &tuner{
		cfg:   cfg,
		score: score,
		log:   log,
		buf:   newDoubleBuffer(cfg.PopSize, cfg.NVars),
		best:  newCandidate(cfg.NVars),
		state: newRunState(cfg.MinTrades),
	}

	aborted := t.initialize()

	var generations int
	var final population
	if !aborted {
		generations, final = t.evolve()
	}

	params := make([]float64, cfg.NVars)
	copy(params, t.best.params())
	result := &Result{
		Params:      params,
		Score:       t.best.score(),
		Generations: generations,
		Evals:       t.state.evals,
		CapExceeded: aborted,
	}
	if final != nil {
		result.FinalPop = final.rows()
	}

	if !aborted && cfg.Reporter != nil {
		if err := cfg.Reporter.Report(result.FinalPop, cfg.NVars); err != nil {
			return result, fmt.Errorf("%w: %v", ErrReportFailed, err)
		}
	}

	return result, nil
}

// eval scores a candidate under the current minimum-trade-count and counts
// the evaluation.
func (t *tuner) eval(c candidate) float64 {
	t.state.evals++
	return t.score(c.params(), t.state.minTrades)
}

// noteBest records a new all-time best candidate.
func (t *tuner) noteBest(c candidate, ind int) {
	t.best.copyFrom(c)
	t.ibest = ind
	t.nTweaked = 0
	t.improved = true
}
