// Package uni provides the univariate search routines consumed by the
// hill-climbing step: a coarse global bracketing scan and a Brent-style
// local refinement, both for maximization of a scalar function.
package uni

// Bracket evaluates f at npts evenly spaced points across [low, high] and
// returns a triple xa < xb < xc bracketing the best point found, with
// fb = f(xb). If the best value sits at an end of the interval the scan
// continues outward with the same spacing for as long as the function keeps
// improving, so the triple always brackets a local maximum. Callers that
// must confine the search should make f unattractive outside the region of
// interest.
func Bracket(low, high float64, npts int, f func(float64) float64) (xa, xb, xc, fb float64) {
	if npts < 3 {
		npts = 3
	}
	step := (high - low) / float64(npts-1)

	xs := make([]float64, npts)
	fs := make([]float64, npts)
	ibest := 0
	for i := 0; i < npts; i++ {
		xs[i] = low + float64(i)*step
		fs[i] = f(xs[i])
		if fs[i] > fs[ibest] {
			ibest = i
		}
	}

	switch {
	case ibest == 0:
		// Best at the left edge; walk left while still improving.
		xb, fb = xs[0], fs[0]
		xc = xs[1]
		xa = xb - step
		fa := f(xa)
		for fa > fb {
			xc, xb, fb = xb, xa, fa
			xa -= step
			fa = f(xa)
		}
	case ibest == npts-1:
		// Best at the right edge; walk right while still improving.
		xb, fb = xs[npts-1], fs[npts-1]
		xa = xs[npts-2]
		xc = xb + step
		fc := f(xc)
		for fc > fb {
			xa, xb, fb = xb, xc, fc
			xc += step
			fc = f(xc)
		}
	default:
		xa, xb, xc = xs[ibest-1], xs[ibest], xs[ibest+1]
		fb = fs[ibest]
	}

	return xa, xb, xc, fb
}
