package sim

import "math"

// NewSphere builds the sphere benchmark on [-5,5]^dims: score 100 - sum of
// squares, maximum 100 at the origin. Sentinel-free, so it exercises the
// optimizer without the minimum-trade-count machinery.
func NewSphere(dims int) *Problem {
	low := make([]float64, dims)
	high := make([]float64, dims)
	for i := range low {
		low[i] = -5
		high[i] = 5
	}
	return &Problem{
		Name:  "sphere",
		NVars: dims,
		Low:   low,
		High:  high,
		Score: func(params []float64, _ int) float64 {
			sum := 0.0
			for _, v := range params {
				sum += v * v
			}
			return 100 - sum
		},
	}
}

// eggholderOffset shifts the Eggholder surface so every score is positive;
// the function's value on [-512,512]^2 stays well inside (-1000, 1050).
const eggholderOffset = 2000.0

// NewEggholder builds the (negated, offset) Eggholder benchmark: a rugged
// two-dimensional surface whose global maximum of about 2959.64 sits at
// (512, 404.23). A hard target for any global optimizer.
func NewEggholder() *Problem {
	return &Problem{
		Name:  "eggholder",
		NVars: 2,
		Low:   []float64{-512, -512},
		High:  []float64{512, 512},
		Score: func(params []float64, _ int) float64 {
			x, y := params[0], params[1]
			f := -(y+47)*math.Sin(math.Sqrt(math.Abs(x/2+y+47))) -
				x*math.Sin(math.Sqrt(math.Abs(x-(y+47))))
			return eggholderOffset - f
		},
	}
}
