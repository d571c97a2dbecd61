package calculator

import (
	"math"

	"github.com/markcheno/go-talib"
)

// ComputeRSI returns the RSI series of closes using simple rolling means of
// gains and losses over period changes. Entries are NaN where the window is
// incomplete or the window holds no losses at all.
func ComputeRSI(closes []float64, period int) []float64 {
	out := nanSeries(len(closes))
	if period <= 0 || len(closes) < period+1 {
		return out
	}

	gains := make([]float64, len(closes)-1)
	losses := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i-1] = change
		} else {
			losses[i-1] = -change
		}
	}

	avgGain := talib.Sma(gains, period)
	avgLoss := talib.Sma(losses, period)

	// avgGain[j] covers the change that ends at closes[j+1].
	for j := period - 1; j < len(gains); j++ {
		if windowIsZero(losses, j-period+1, j) {
			continue
		}
		rs := avgGain[j] / avgLoss[j]
		out[j+1] = clamp(100-100/(1+rs), 0, 100)
	}
	return out
}

func windowIsZero(values []float64, from, to int) bool {
	for i := from; i <= to; i++ {
		if values[i] != 0 {
			return false
		}
	}
	return true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
