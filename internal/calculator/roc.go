package calculator

import "github.com/markcheno/go-talib"

// ComputeROC returns the fractional change of each close versus the close
// period bars earlier. The first period entries are NaN.
func ComputeROC(closes []float64, period int) []float64 {
	out := nanSeries(len(closes))
	if period <= 0 || len(closes) <= period {
		return out
	}
	roc := talib.Roc(closes, period)
	for i := period; i < len(closes); i++ {
		out[i] = roc[i] / 100
	}
	return out
}
