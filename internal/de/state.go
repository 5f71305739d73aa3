package de

// failureStreak is how many consecutive sentinel scores during
// initialization trigger a relaxation of the minimum-trade-count constraint.
const failureStreak = 500

// runState carries the mutable bookkeeping of a single run: the adaptive
// minimum-trade-count, the consecutive-failure counter that drives its
// relaxation, the evaluation counter checked against the safety cap, and the
// contiguous bad-generation counter.
type runState struct {
	minTrades int
	failures  int
	evals     int
	badGens   int
}

func newRunState(minTrades int) *runState {
	return &runState{minTrades: minTrades}
}

// recordFailure notes one more consecutive sentinel score. After
// failureStreak of them in a row the minimum-trade-count is reduced by ten
// percent (integer arithmetic, floored at 1) and the streak resets, letting
// the run escape regions where the objective cannot produce enough samples
// to score at all. Reports whether a reduction happened.
func (s *runState) recordFailure() bool {
	s.failures++
	if s.failures < failureStreak {
		return false
	}
	s.failures = 0
	s.minTrades = s.minTrades * 9 / 10
	if s.minTrades < 1 {
		s.minTrades = 1
	}
	return true
}

func (s *runState) recordSuccess() {
	s.failures = 0
}
