package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	t.Run("SphereHonorsDims", func(t *testing.T) {
		p, err := Lookup("sphere", 5, 1)
		require.NoError(t, err)
		assert.Equal(t, "sphere", p.Name)
		assert.Equal(t, 5, p.NVars)
		assert.Equal(t, 0, p.NInts)
		assert.Len(t, p.Low, 5)
		assert.Len(t, p.High, 5)
	})

	t.Run("SphereDefaultsDims", func(t *testing.T) {
		p, err := Lookup("sphere", 0, 1)
		require.NoError(t, err)
		assert.Equal(t, 2, p.NVars)
	})

	t.Run("Eggholder", func(t *testing.T) {
		p, err := Lookup("eggholder", 7, 1)
		require.NoError(t, err)
		assert.Equal(t, 2, p.NVars, "eggholder ignores the dims override")
		assert.Equal(t, []float64{-512, -512}, p.Low)
		assert.Equal(t, []float64{512, 512}, p.High)
	})

	t.Run("Crossover", func(t *testing.T) {
		p, err := Lookup("macross", 0, 42)
		require.NoError(t, err)
		assert.Equal(t, 3, p.NVars)
		assert.Equal(t, 2, p.NInts)
		assert.Equal(t, []float64{2, 10, 0}, p.Low)
		assert.Equal(t, []float64{50, 200, 0.05}, p.High)
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := Lookup("rosenbrock", 0, 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rosenbrock")
	})
}

func TestSphere_MaximumAtOrigin(t *testing.T) {
	p := NewSphere(3)
	assert.Equal(t, 100.0, p.Score([]float64{0, 0, 0}, 1))
	assert.Equal(t, 100.0-14, p.Score([]float64{1, 2, 3}, 1))
}

func TestEggholder_KnownMaximum(t *testing.T) {
	p := NewEggholder()
	best := p.Score([]float64{512, 404.2319}, 1)
	assert.InDelta(t, 2959.64, best, 0.01)

	// A handful of other points must score strictly below the optimum.
	for _, pt := range [][]float64{{0, 0}, {-512, -512}, {100, -200}, {512, 512}} {
		assert.Less(t, p.Score(pt, 1), best)
	}
}

func TestCrossover_SentinelCases(t *testing.T) {
	prices := Synthetic(2000, 42)
	p := NewCrossover(prices)

	t.Run("FastNotBelowSlow", func(t *testing.T) {
		assert.Equal(t, 0.0, p.Score([]float64{20, 20, 0.01}, 1))
		assert.Equal(t, 0.0, p.Score([]float64{30, 20, 0.01}, 1))
	})

	t.Run("SlowExceedsSeries", func(t *testing.T) {
		short := NewCrossover(Synthetic(50, 42))
		assert.Equal(t, 0.0, short.Score([]float64{10, 60, 0.0}, 1))
	})

	t.Run("UnreachableTradeCount", func(t *testing.T) {
		assert.Equal(t, 0.0, p.Score([]float64{5, 40, 0.0}, 1000000))
	})
}

func TestCrossover_ValidScore(t *testing.T) {
	prices := Synthetic(5000, 42)
	p := NewCrossover(prices)

	score := p.Score([]float64{5, 40, 0.0}, 1)
	assert.Greater(t, score, 0.0, "a permissive trade-count floor should produce a scored run")

	// The same parameters against the same series stay deterministic.
	assert.Equal(t, score, p.Score([]float64{5, 40, 0.0}, 1))
}

func TestSynthetic_Deterministic(t *testing.T) {
	a := Synthetic(500, 7)
	b := Synthetic(500, 7)
	c := Synthetic(500, 8)

	require.Len(t, a, 500)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
