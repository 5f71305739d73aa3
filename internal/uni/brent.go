package uni

import "math"

// golden section ratio used for the fallback step
const cgold = 0.3819660112501051

// BrentMax refines a bracketed maximum of f using Brent's method (parabolic
// interpolation with a golden-section fallback). xa and xc must bracket a
// maximum with xa < xb < xc and fb = f(xb). eps guards the convergence
// tolerance away from zero and tol is the absolute convergence criterion.
// Returns the refined location and its function value.
func BrentMax(xa, xb, xc, fb float64, maxIter int, eps, tol float64, f func(float64) float64) (float64, float64) {
	neg := func(t float64) float64 { return -f(t) }
	x, fx := brentMin(xa, xb, xc, -fb, maxIter, eps, tol, neg)
	return x, -fx
}

// brentMin is the classical minimization form of Brent's method.
func brentMin(xa, xb, xc, fb float64, maxIter int, eps, tol float64, f func(float64) float64) (float64, float64) {
	a := math.Min(xa, xc)
	b := math.Max(xa, xc)

	x, w, v := xb, xb, xb
	fx, fw, fv := fb, fb, fb

	var d, e float64 // step and the step before it

	for iter := 0; iter < maxIter; iter++ {
		xm := 0.5 * (a + b)
		tol1 := eps*math.Abs(x) + tol
		tol2 := 2 * tol1

		if math.Abs(x-xm) <= tol2-0.5*(b-a) {
			break
		}

		useGolden := true
		if math.Abs(e) > tol1 {
			// Trial parabolic fit through x, w, v.
			r := (x - w) * (fx - fv)
			q := (x - v) * (fx - fw)
			p := (x-v)*q - (x-w)*r
			q = 2 * (q - r)
			if q > 0 {
				p = -p
			}
			q = math.Abs(q)
			etemp := e
			e = d
			if math.Abs(p) < math.Abs(0.5*q*etemp) && p > q*(a-x) && p < q*(b-x) {
				// Parabolic step is acceptable.
				d = p / q
				u := x + d
				if u-a < tol2 || b-u < tol2 {
					d = math.Copysign(tol1, xm-x)
				}
				useGolden = false
			}
		}
		if useGolden {
			if x >= xm {
				e = a - x
			} else {
				e = b - x
			}
			d = cgold * e
		}

		var u float64
		if math.Abs(d) >= tol1 {
			u = x + d
		} else {
			u = x + math.Copysign(tol1, d)
		}
		fu := f(u)

		if fu <= fx {
			if u >= x {
				a = x
			} else {
				b = x
			}
			v, w, x = w, x, u
			fv, fw, fx = fw, fx, fu
		} else {
			if u < x {
				a = u
			} else {
				b = u
			}
			if fu <= fw || w == x {
				v, w = w, u
				fv, fw = fw, fu
			} else if fu <= fv || v == x || v == w {
				v, fv = u, fu
			}
		}
	}

	return x, fx
}
