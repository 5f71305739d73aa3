// Package sim provides the objective functions the tuner is exercised
// against: a synthetic-series trading criterion with a minimum-trade-count
// sentinel, and smooth benchmark surfaces for validating convergence.
package sim

import (
	"fmt"

	"github.com/cwbudde/difftune/internal/de"
)

// Problem bundles an objective with its search space.
type Problem struct {
	Name  string
	NVars int
	NInts int
	Low   []float64
	High  []float64
	Score de.Objective
}

// Lookup returns a named problem. dims is honored by problems with a
// configurable dimension count (sphere) and ignored otherwise. seed drives
// any synthetic data the problem is built on.
func Lookup(name string, dims int, seed int64) (*Problem, error) {
	switch name {
	case "sphere":
		if dims <= 0 {
			dims = 2
		}
		return NewSphere(dims), nil
	case "eggholder":
		return NewEggholder(), nil
	case "macross":
		return NewCrossover(Synthetic(5000, seed)), nil
	default:
		return nil, fmt.Errorf("unknown problem %q (want sphere, eggholder, or macross)", name)
	}
}
