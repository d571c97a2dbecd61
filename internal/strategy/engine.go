package strategy

import (
	"ZeroDTEScanner/internal/model"
)

// Playbook pairs a suggested structure with the condition that triggers it.
type Playbook struct {
	Strategy string
	Reason   string
}

// Playbooks maps each bias to its suggested structure.
var Playbooks = map[model.Bias]Playbook{
	model.BiasBullish: {Strategy: "debit call / call spread", Reason: "Above VWAP & positive momentum"},
	model.BiasBearish: {Strategy: "debit put / put spread", Reason: "Below VWAP & negative momentum"},
	model.BiasNeutral: {Strategy: "defined-risk neutral structure (iron condor/butterfly)", Reason: "Neutral RSI & minimal ROC"},
}

// ClassifyBias maps a snapshot to exactly one bias. Price above VWAP with
// rising momentum is bullish, below VWAP with falling momentum is bearish,
// everything else is neutral.
func ClassifyBias(snap *model.IndicatorSnapshot) model.Bias {
	switch {
	case snap.AboveVWAP && snap.ROC > 0:
		return model.BiasBullish
	case !snap.AboveVWAP && snap.ROC < 0:
		return model.BiasBearish
	default:
		return model.BiasNeutral
	}
}

// Recommend annotates a filtered contract with a strategy, risk flags, price
// levels and the flow-spike marker.
func Recommend(c model.OptionContract, bias model.Bias, rsi float64) model.RankedPick {
	pb, ok := Playbooks[bias]
	if !ok {
		pb = Playbooks[model.BiasNeutral]
	}
	target, stop := TargetStop(&c)
	return model.RankedPick{
		Contract:  c,
		Strategy:  pb.Strategy,
		Reason:    pb.Reason,
		RiskFlags: RiskFlags(&c, rsi),
		Target:    target,
		Stop:      stop,
		FlowSpike: FlowSpike(&c),
	}
}

// RecommendTop annotates at most n contracts of an already ranked list.
func RecommendTop(ranked []model.OptionContract, n int, bias model.Bias, rsi float64) []model.RankedPick {
	if len(ranked) < n {
		n = len(ranked)
	}
	picks := make([]model.RankedPick, 0, n)
	for _, c := range ranked[:n] {
		picks = append(picks, Recommend(c, bias, rsi))
	}
	return picks
}
