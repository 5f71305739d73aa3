package sim

// NewCrossover builds the dual moving-average crossover problem over the
// given log-price series. Parameters are the fast window length (integer),
// the slow window length (integer), and the entry threshold (real, in log
// units): the rule is long whenever the fast average exceeds the slow
// average by more than the threshold, flat otherwise.
//
// The criterion is the profit factor over completed trades. It returns the
// sentinel (0) when the rule closes fewer than minTrades trades, including
// the degenerate case fast >= slow where the rule carries no information.
func NewCrossover(prices []float64) *Problem {
	return &Problem{
		Name:  "macross",
		NVars: 3,
		NInts: 2,
		Low:   []float64{2, 10, 0},
		High:  []float64{50, 200, 0.05},
		Score: func(params []float64, minTrades int) float64 {
			fast := int(params[0])
			slow := int(params[1])
			threshold := params[2]
			return crossoverScore(prices, fast, slow, threshold, minTrades)
		},
	}
}

func crossoverScore(prices []float64, fast, slow int, threshold float64, minTrades int) float64 {
	n := len(prices)
	if fast < 1 || fast >= slow || slow >= n {
		return 0
	}

	// Prefix sums give O(1) moving averages at every bar.
	cum := make([]float64, n+1)
	for i, p := range prices {
		cum[i+1] = cum[i] + p
	}
	ma := func(t, length int) float64 {
		return (cum[t+1] - cum[t+1-length]) / float64(length)
	}

	var (
		inTrade   bool
		tradeRet  float64
		grossWin  float64
		grossLoss float64
		trades    int
	)

	closeTrade := func() {
		if tradeRet > 0 {
			grossWin += tradeRet
		} else {
			grossLoss -= tradeRet
		}
		trades++
		inTrade = false
		tradeRet = 0
	}

	// Decide at bar t, realize the t -> t+1 log return.
	for t := slow - 1; t < n-1; t++ {
		long := ma(t, fast)-ma(t, slow) > threshold
		if long {
			inTrade = true
			tradeRet += prices[t+1] - prices[t]
		} else if inTrade {
			closeTrade()
		}
	}
	if inTrade {
		closeTrade()
	}

	if trades < minTrades {
		return 0 // not enough evidence to score
	}
	return grossWin / (grossLoss + 1e-8)
}
