package sim

import (
	"math"
	"math/rand"
)

// Synthetic generates a reproducible log-price series of length n: slow
// drifting cycles overlaid with noise, so trend-following rules have real
// structure to find while remaining far from trivial.
func Synthetic(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))

	prices := make([]float64, n)
	x := 0.0
	for i := 0; i < n; i++ {
		cycle := 0.004 * math.Sin(float64(i)/60.0)
		slow := 0.002 * math.Sin(float64(i)/480.0)
		noise := 0.006 * rng.NormFloat64()
		x += cycle + slow + noise
		prices[i] = x
	}
	return prices
}
