// Package report implements post-run reporting: the parameter correlation
// analysis of the final population and the convergence chart.
package report

import (
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Correlations computes the correlation matrix of the population's
// parameters. Each row of pop is a candidate (parameters followed by the
// score; only the first nvars columns are used). Strong correlations between
// parameters of the surviving population suggest redundant or compensating
// parameters in the strategy.
func Correlations(pop [][]float64, nvars int) (*mat.SymDense, error) {
	if len(pop) < 2 {
		return nil, fmt.Errorf("correlation needs at least 2 population members, got %d", len(pop))
	}
	if nvars < 1 {
		return nil, fmt.Errorf("correlation needs at least 1 parameter, got %d", nvars)
	}
	for i, row := range pop {
		// nvars parameters followed by the score.
		if len(row) < nvars+1 {
			return nil, fmt.Errorf("population row %d has %d columns, need %d", i, len(row), nvars+1)
		}
	}

	data := make([]float64, len(pop)*nvars)
	for i, row := range pop {
		copy(data[i*nvars:(i+1)*nvars], row[:nvars])
	}
	x := mat.NewDense(len(pop), nvars, data)

	corr := mat.NewSymDense(nvars, nil)
	stat.CorrelationMatrix(corr, x, nil)
	return corr, nil
}

// FormatMatrix renders a correlation matrix as an aligned text table.
func FormatMatrix(corr *mat.SymDense) string {
	n := corr.SymmetricDim()

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	fmt.Fprint(w, "param")
	for j := 0; j < n; j++ {
		fmt.Fprintf(w, "\tp%d", j)
	}
	fmt.Fprintln(w)

	for i := 0; i < n; i++ {
		fmt.Fprintf(w, "p%d", i)
		for j := 0; j < n; j++ {
			fmt.Fprintf(w, "\t%+.3f", corr.At(i, j))
		}
		fmt.Fprintln(w)
	}
	w.Flush()
	return sb.String()
}

// CorrelationReporter implements the optimizer's post-run Reporter hook. It
// logs the correlation table and warns on parameter pairs whose correlation
// magnitude reaches Threshold.
type CorrelationReporter struct {
	Logger    *slog.Logger
	Threshold float64 // warn at |r| >= Threshold; default 0.8 when zero
}

// Report computes and logs the correlation analysis of the final population.
func (r *CorrelationReporter) Report(pop [][]float64, nvars int) error {
	corr, err := Correlations(pop, nvars)
	if err != nil {
		return err
	}

	log := r.Logger
	if log == nil {
		log = slog.Default()
	}
	threshold := r.Threshold
	if threshold == 0 {
		threshold = 0.8
	}

	log.Info("parameter correlations of final population\n" + FormatMatrix(corr))

	for i := 0; i < nvars; i++ {
		for j := i + 1; j < nvars; j++ {
			if v := corr.At(i, j); v >= threshold || v <= -threshold {
				log.Warn("strongly correlated parameters", "i", i, "j", j, "r", v)
			}
		}
	}
	return nil
}
