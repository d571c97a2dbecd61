package calculator

import (
	"math"

	"ZeroDTEScanner/internal/model"
)

// ComputeVWAP returns the cumulative volume-weighted average close over the
// whole window. It does not reset at session boundaries. A bar without volume
// has no VWAP of its own (NaN) but leaves the accumulators intact for later bars.
func ComputeVWAP(bars []model.OHLCV) []float64 {
	out := make([]float64, len(bars))
	var cumPV, cumVol float64
	for i, b := range bars {
		if b.Volume <= 0 {
			out[i] = math.NaN()
			continue
		}
		cumPV += b.Close * b.Volume
		cumVol += b.Volume
		out[i] = cumPV / cumVol
	}
	return out
}
