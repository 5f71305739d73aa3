package de

// boundPenalty scales how far a raw value strayed outside its bounds into a
// score penalty steep enough that any legal point dominates.
const boundPenalty = 1.0e10

// ensureLegal makes the parameter vector legal in place: the first nints
// dimensions are rounded to the nearest integer (halves away from zero) and
// every dimension is clamped into [low, high]. The returned penalty is
// proportional to how far the raw, pre-rounding values were out of bounds; it
// is zero for an already-legal vector, which is left unchanged. The penalty
// is only consumed by the univariate line search, where the bracketing
// routine could otherwise wander arbitrarily far outside the legal region.
func ensureLegal(params []float64, nints int, low, high []float64) float64 {
	penalty := 0.0

	for i := range params {
		raw := params[i]
		if i < nints {
			if raw >= 0 {
				params[i] = float64(int(raw + 0.5))
			} else {
				params[i] = -float64(int(0.5 - raw))
			}
		}
		if raw > high[i] {
			penalty += boundPenalty * (raw - high[i])
		}
		if raw < low[i] {
			penalty += boundPenalty * (low[i] - raw)
		}
		if params[i] > high[i] {
			params[i] = high[i]
		}
		if params[i] < low[i] {
			params[i] = low[i]
		}
	}

	return penalty
}
