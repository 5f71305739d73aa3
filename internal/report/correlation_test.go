package report

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelations_PerfectlyCorrelated(t *testing.T) {
	// Second column is twice the first, third is independent noise; the last
	// column plays the score and must be ignored.
	pop := [][]float64{
		{1, 2, 0.3, 10},
		{2, 4, -0.1, 11},
		{3, 6, 0.7, 12},
		{4, 8, 0.2, 13},
	}

	corr, err := Correlations(pop, 3)
	require.NoError(t, err)
	require.Equal(t, 3, corr.SymmetricDim())

	assert.InDelta(t, 1.0, corr.At(0, 0), 1e-12)
	assert.InDelta(t, 1.0, corr.At(0, 1), 1e-12)
	assert.Less(t, corr.At(0, 2), 1.0)
}

func TestCorrelations_Errors(t *testing.T) {
	t.Run("TooFewRows", func(t *testing.T) {
		_, err := Correlations([][]float64{{1, 2, 10}}, 2)
		assert.Error(t, err)
	})

	t.Run("NoParameters", func(t *testing.T) {
		_, err := Correlations([][]float64{{1, 10}, {2, 11}}, 0)
		assert.Error(t, err)
	})

	t.Run("ShortRow", func(t *testing.T) {
		_, err := Correlations([][]float64{{1, 2, 10}, {1, 11}}, 2)
		assert.Error(t, err)
	})

	t.Run("MissingScoreColumn", func(t *testing.T) {
		_, err := Correlations([][]float64{{1, 2}, {3, 4}}, 2)
		assert.Error(t, err)
	})
}

func TestFormatMatrix(t *testing.T) {
	pop := [][]float64{
		{1, 5, 10},
		{2, 3, 11},
		{3, 8, 12},
		{4, 1, 13},
	}
	corr, err := Correlations(pop, 2)
	require.NoError(t, err)

	out := FormatMatrix(corr)
	assert.Contains(t, out, "param")
	assert.Contains(t, out, "p0")
	assert.Contains(t, out, "p1")
	assert.Contains(t, out, "+1.000") // the diagonal
}

func TestCorrelationReporter_Report(t *testing.T) {
	r := &CorrelationReporter{Logger: slog.New(slog.DiscardHandler)}

	pop := [][]float64{
		{1, 2, 10},
		{2, 4, 11},
		{3, 6, 12},
	}
	assert.NoError(t, r.Report(pop, 2))

	// A population too small to correlate propagates the error.
	assert.Error(t, r.Report(pop[:1], 2))
}
