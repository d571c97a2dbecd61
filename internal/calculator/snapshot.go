package calculator

import (
	"errors"
	"fmt"

	"ZeroDTEScanner/internal/model"
)

const (
	// MinBars is the shortest series Snapshot accepts.
	MinBars = 30
	// RSIPeriod and ROCPeriod are measured in bars.
	RSIPeriod = 14
	ROCPeriod = 14
)

// ErrInsufficientData is returned when a series is too short to evaluate.
var ErrInsufficientData = errors.New("insufficient historical data")

// Snapshot computes VWAP, RSI and ROC over the series and returns the values
// of its most recent bar.
func Snapshot(series *model.PriceSeries) (*model.IndicatorSnapshot, error) {
	if series == nil || len(series.Bars) < MinBars {
		n := 0
		if series != nil {
			n = len(series.Bars)
		}
		return nil, fmt.Errorf("%w: %d bars, need %d", ErrInsufficientData, n, MinBars)
	}

	closes := series.Closes()
	last := len(closes) - 1

	vwap := ComputeVWAP(series.Bars)[last]
	snap := &model.IndicatorSnapshot{
		Price: closes[last],
		VWAP:  vwap,
		RSI:   ComputeRSI(closes, RSIPeriod)[last],
		ROC:   ComputeROC(closes, ROCPeriod)[last],
	}
	// NaN VWAP compares false, so a series without volume is never above it.
	snap.AboveVWAP = snap.Price > snap.VWAP
	return snap, nil
}
