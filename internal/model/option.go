package model

import "time"

// OptionType is the right of an option contract.
type OptionType string

const (
	OptionCall OptionType = "CALL"
	OptionPut  OptionType = "PUT"
)

// spreadEpsilon keeps spread_pct finite when bid and ask are both zero.
const spreadEpsilon = 1e-5

// OptionQuote is a contract row as delivered by a data provider. Numeric
// fields are optional; a nil field means the provider omitted it.
type OptionQuote struct {
	ContractSymbol    string
	Strike            float64
	Expiration        time.Time
	Bid               *float64
	Ask               *float64
	LastPrice         *float64
	Volume            *float64
	OpenInterest      *float64
	ImpliedVolatility *float64
}

// OptionContract is a fully populated contract with its liquidity metrics.
type OptionContract struct {
	Symbol            string
	Type              OptionType
	Strike            float64
	Expiration        time.Time
	Bid               float64
	Ask               float64
	LastPrice         float64
	Volume            float64
	OpenInterest      float64
	ImpliedVolatility float64

	Mid       float64
	SpreadPct float64
	OIRatio   float64
}

// Contract fills omitted numeric fields with zero and derives the metrics.
// A quote with no market data at all becomes an illiquid contract rather
// than being dropped.
func (q OptionQuote) Contract(t OptionType) OptionContract {
	c := OptionContract{
		Symbol:            q.ContractSymbol,
		Type:              t,
		Strike:            q.Strike,
		Expiration:        q.Expiration,
		Bid:               orZero(q.Bid),
		Ask:               orZero(q.Ask),
		LastPrice:         orZero(q.LastPrice),
		Volume:            orZero(q.Volume),
		OpenInterest:      orZero(q.OpenInterest),
		ImpliedVolatility: orZero(q.ImpliedVolatility),
	}
	c.Derive()
	return c
}

// Derive recomputes Mid, SpreadPct and OIRatio from the quote fields.
// Call it again after changing any of them.
func (c *OptionContract) Derive() {
	c.OIRatio = c.Volume / (c.OpenInterest + 1)
	c.Mid = (c.Bid + c.Ask) / 2
	c.SpreadPct = (c.Ask - c.Bid) / (c.Mid + spreadEpsilon)
}

// BestPrice returns the last traded price, falling back to the mid and then to zero.
func (c *OptionContract) BestPrice() float64 {
	if c.LastPrice != 0 {
		return c.LastPrice
	}
	return c.Mid
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Float returns a pointer to v. Providers and tests use it to build quotes.
func Float(v float64) *float64 { return &v }

// OptionChain holds the calls and puts of one expiration date.
type OptionChain struct {
	Symbol     string
	Expiration time.Time
	Calls      []OptionQuote
	Puts       []OptionQuote
}

// Contracts converts every quote of the chain, calls first.
func (ch *OptionChain) Contracts() []OptionContract {
	out := make([]OptionContract, 0, len(ch.Calls)+len(ch.Puts))
	for _, q := range ch.Calls {
		out = append(out, q.Contract(OptionCall))
	}
	for _, q := range ch.Puts {
		out = append(out, q.Contract(OptionPut))
	}
	return out
}
