// Package screener selects liquid, active contracts from a same-day chain.
package screener

import (
	"sort"

	"ZeroDTEScanner/internal/model"
)

// Thresholds are the liquidity and flow limits a contract must pass.
type Thresholds struct {
	MinVolume        float64 `yaml:"min_volume"`
	OIRatioThreshold float64 `yaml:"oi_ratio_threshold"`
	SpreadPctMax     float64 `yaml:"spread_pct_max"`
}

// DefaultThresholds returns the stock limits.
func DefaultThresholds() Thresholds {
	return Thresholds{MinVolume: 5000, OIRatioThreshold: 0.5, SpreadPctMax: 0.25}
}

// Qualifies reports whether c passes every threshold.
func (t Thresholds) Qualifies(c *model.OptionContract) bool {
	return c.Volume > t.MinVolume &&
		c.OIRatio > t.OIRatioThreshold &&
		c.SpreadPct < t.SpreadPctMax
}

// Filter returns the qualifying contracts, tightest spread first and higher
// volume first among equal spreads. The input slice is not modified. An empty
// result means there is no setup today.
func Filter(contracts []model.OptionContract, t Thresholds) []model.OptionContract {
	out := make([]model.OptionContract, 0, len(contracts))
	for i := range contracts {
		if t.Qualifies(&contracts[i]) {
			out = append(out, contracts[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SpreadPct != out[j].SpreadPct {
			return out[i].SpreadPct < out[j].SpreadPct
		}
		return out[i].Volume > out[j].Volume
	})
	return out
}
