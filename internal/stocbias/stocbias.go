// Package stocbias collects criterion values observed during the
// initial-population phase. Picking the best of many random trials inflates
// the expected score of the winner relative to a fresh draw; the gap between
// the best and the mean of the collected draws estimates that selection
// bias. Purely advisory: the optimizer toggles collection but never reads
// anything back.
package stocbias

import "math"

// StocBias accumulates criterion draws while enabled. It implements the
// optimizer's Collector interface. Not safe for concurrent use; the
// optimizer evaluates strictly sequentially.
type StocBias struct {
	enabled bool
	n       int
	sum     float64
	best    float64
}

// New returns an idle collector; nothing is recorded until Collect(true).
func New() *StocBias {
	return &StocBias{best: math.Inf(-1)}
}

// Collect turns data collection on or off.
func (s *StocBias) Collect(enabled bool) {
	s.enabled = enabled
}

// Record notes one criterion value. Ignored while collection is disabled.
// Callers wrap their objective so every evaluation passes through here.
func (s *StocBias) Record(value float64) {
	if !s.enabled {
		return
	}
	s.n++
	s.sum += value
	if value > s.best {
		s.best = value
	}
}

// Count returns how many draws were collected.
func (s *StocBias) Count() int {
	return s.n
}

// Mean returns the average collected draw, or 0 before any draw.
func (s *StocBias) Mean() float64 {
	if s.n == 0 {
		return 0
	}
	return s.sum / float64(s.n)
}

// Best returns the best collected draw, or -Inf before any draw.
func (s *StocBias) Best() float64 {
	return s.best
}

// Bias estimates the optimistic selection bias of the initial phase: the
// excess of the best draw over the mean draw. Zero before two draws.
func (s *StocBias) Bias() float64 {
	if s.n < 2 {
		return 0
	}
	return s.best - s.Mean()
}
