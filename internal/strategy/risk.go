package strategy

import (
	"math"

	"ZeroDTEScanner/internal/model"

	"github.com/shopspring/decimal"
)

const (
	ivCrushLevel     = 0.5
	wideSpreadLevel  = 0.10
	rsiOverbought    = 70
	rsiOversold      = 30
	flowOIRatioLevel = 10
	flowVolumeLevel  = 100000
)

const (
	FlagIVCrush    = "⚠️ IV risk: potential crush"
	FlagWideSpread = "⚠️ Liquidity: wide spread"
	FlagOverbought = "⚠️ RSI overbought"
	FlagOversold   = "⚠️ RSI oversold"
)

// Price level multipliers. Fixed policy, not derived from market data.
var (
	targetMultipliers = map[model.OptionType]decimal.Decimal{
		model.OptionCall: decimal.RequireFromString("1.25"),
		model.OptionPut:  decimal.RequireFromString("1.35"),
	}
	defaultTargetMultiplier = decimal.RequireFromString("1.30")
	stopMultiplier          = decimal.RequireFromString("0.85")
)

// RiskFlags returns the warnings that apply, in evaluation order. RSI is
// compared at the two decimals it is reported with; a NaN rsi raises no RSI flag.
func RiskFlags(c *model.OptionContract, rsi float64) []string {
	rsi = math.Round(rsi*100) / 100
	var flags []string
	if c.ImpliedVolatility > ivCrushLevel {
		flags = append(flags, FlagIVCrush)
	}
	if c.SpreadPct > wideSpreadLevel {
		flags = append(flags, FlagWideSpread)
	}
	if rsi > rsiOverbought {
		flags = append(flags, FlagOverbought)
	}
	if rsi < rsiOversold {
		flags = append(flags, FlagOversold)
	}
	return flags
}

// TargetStop returns the profit target and trailing stop for the contract's
// best available price, rounded to cents. Both are zero when there is no price.
func TargetStop(c *model.OptionContract) (target, stop decimal.Decimal) {
	price := decimal.NewFromFloat(c.BestPrice())
	if !price.IsPositive() {
		return decimal.Zero, decimal.Zero
	}
	mult, ok := targetMultipliers[c.Type]
	if !ok {
		mult = defaultTargetMultiplier
	}
	return price.Mul(mult).Round(2), price.Mul(stopMultiplier).Round(2)
}

// FlowSpike reports unusually concentrated single-day flow.
func FlowSpike(c *model.OptionContract) bool {
	return c.OIRatio > flowOIRatioLevel || c.Volume > flowVolumeLevel
}
