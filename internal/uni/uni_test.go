package uni

import (
	"math"
	"testing"
)

func TestBracket_InteriorMaximum(t *testing.T) {
	f := func(x float64) float64 { return -(x - 2) * (x - 2) }

	xa, xb, xc, fb := Bracket(0, 5, 7, f)

	if !(xa < xb && xb < xc) {
		t.Fatalf("Bracket not ordered: xa=%g xb=%g xc=%g", xa, xb, xc)
	}
	if fb != f(xb) {
		t.Errorf("fb=%g does not match f(xb)=%g", fb, f(xb))
	}
	if f(xa) > fb || f(xc) > fb {
		t.Errorf("xb=%g does not hold the bracket's best value", xb)
	}
	if xa > 2 || xc < 2 {
		t.Errorf("Bracket [%g, %g] does not contain the maximum at 2", xa, xc)
	}
}

func TestBracket_WalksPastRightEdge(t *testing.T) {
	// Maximum at 8, outside the initial scan range.
	f := func(x float64) float64 { return -(x - 8) * (x - 8) }

	xa, xb, xc, _ := Bracket(0, 5, 7, f)

	if !(xa < xb && xb < xc) {
		t.Fatalf("Bracket not ordered: xa=%g xb=%g xc=%g", xa, xb, xc)
	}
	if xa > 8 || xc < 8 {
		t.Errorf("Bracket [%g, %g] does not contain the maximum at 8", xa, xc)
	}
}

func TestBracket_WalksPastLeftEdge(t *testing.T) {
	f := func(x float64) float64 { return -(x + 3) * (x + 3) }

	xa, xb, xc, _ := Bracket(0, 5, 7, f)

	if !(xa < xb && xb < xc) {
		t.Fatalf("Bracket not ordered: xa=%g xb=%g xc=%g", xa, xb, xc)
	}
	if xa > -3 || xc < -3 {
		t.Errorf("Bracket [%g, %g] does not contain the maximum at -3", xa, xc)
	}
}

func TestBrentMax_RefinesParabola(t *testing.T) {
	f := func(x float64) float64 { return 5 - (x-2)*(x-2) }

	xa, xb, xc, fb := Bracket(0, 5, 7, f)
	x, fx := BrentMax(xa, xb, xc, fb, 50, 1e-8, 1e-6, f)

	if math.Abs(x-2) > 1e-3 {
		t.Errorf("Expected maximum near 2, got %g", x)
	}
	if math.Abs(fx-5) > 1e-6 {
		t.Errorf("Expected maximum value near 5, got %g", fx)
	}
}

func TestBrentMax_AsymmetricFunction(t *testing.T) {
	// Skewed unimodal shape with maximum at x = 1/3.
	f := func(x float64) float64 { return math.Sin(3*x) - 0.1*x }

	xa, xb, xc, fb := Bracket(0, 1, 7, f)
	x, _ := BrentMax(xa, xb, xc, fb, 50, 1e-8, 1e-6, f)

	// d/dx = 3cos(3x) - 0.1 = 0 -> x ~ 0.5125
	if math.Abs(x-0.5125) > 1e-3 {
		t.Errorf("Expected maximum near 0.5125, got %g", x)
	}
}

func TestBrentMax_FewIterationsStaysInBracket(t *testing.T) {
	f := func(x float64) float64 { return -(x - 2.5) * (x - 2.5) }

	xa, xb, xc, fb := Bracket(0, 5, 7, f)
	x, _ := BrentMax(xa, xb, xc, fb, 5, 1e-8, 1e-4, f)

	if x < xa || x > xc {
		t.Errorf("Refined point %g escaped bracket [%g, %g]", x, xa, xc)
	}
}
