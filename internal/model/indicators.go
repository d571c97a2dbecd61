package model

import "math"

// IndicatorSnapshot holds the indicator values of the latest bar of a series.
// RSI is NaN when it is undefined for that bar.
type IndicatorSnapshot struct {
	Price     float64
	VWAP      float64
	RSI       float64
	ROC       float64 // fractional change, 0.01 == +1%
	AboveVWAP bool
}

// RSIDefined reports whether the snapshot carries a usable RSI value.
func (s *IndicatorSnapshot) RSIDefined() bool {
	return !math.IsNaN(s.RSI)
}
