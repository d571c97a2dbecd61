package model

import "github.com/shopspring/decimal"

// Bias is the directional read of a ticker for one scan cycle.
type Bias string

const (
	BiasBullish Bias = "Bullish"
	BiasBearish Bias = "Bearish"
	BiasNeutral Bias = "Neutral"
)

// RankedPick is a filtered contract annotated with a trade suggestion.
type RankedPick struct {
	Contract  OptionContract
	Strategy  string
	Reason    string
	RiskFlags []string
	Target    decimal.Decimal
	Stop      decimal.Decimal
	FlowSpike bool
}

// TickerReport is the report input for one ticker that produced picks.
type TickerReport struct {
	Symbol   string
	Bias     Bias
	Snapshot IndicatorSnapshot
	Picks    []RankedPick // best first, at most three
}
