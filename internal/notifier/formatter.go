package notifier

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"ZeroDTEScanner/internal/model"
)

const (
	// BatchLimit leaves headroom under the webhook's 2000 character cap.
	BatchLimit = 1800
	// NoSetupsMessage is sent instead of a report when no ticker qualified.
	NoSetupsMessage = "No valid 0DTE trade setups found today."
)

// FormatBanner renders the report header.
func FormatBanner(now time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 **0DTE Options Strategy Scanner** (%s)\n", now.Format("2006-01-02 15:04:05")))
	b.WriteString("This scanner identifies the most active and efficient 0DTE options based on:\n")
	b.WriteString("- High volume and strong open interest flow\n")
	b.WriteString("- Low bid/ask spread for optimal entry\n")
	b.WriteString("- Momentum bias using VWAP, RSI, and ROC\n")
	b.WriteString("- Suggested strategy based on trend strength\n")
	return b.String()
}

// FormatTickerHeader renders the per-ticker section title.
func FormatTickerHeader(symbol string, bias model.Bias) string {
	return fmt.Sprintf("🔹 **%s** — Bias: %s", symbol, bias)
}

// FormatTopPick names the best-ranked contract of a ticker.
func FormatTopPick(pick *model.RankedPick) string {
	return fmt.Sprintf("⭐ **Top Pick:** %s — Tightest spread & high volume", pick.Contract.Symbol)
}

// FormatPick renders one annotated contract.
func FormatPick(pick *model.RankedPick, snap *model.IndicatorSnapshot) string {
	c := &pick.Contract
	var b strings.Builder

	spike := ""
	if pick.FlowSpike {
		spike = "🔥 Flow Spike"
	}
	b.WriteString(fmt.Sprintf("**%s** (%s)  %s\n", c.Symbol, c.Type, spike))
	b.WriteString(fmt.Sprintf("Strike: `%s` | Price: `%s` → 🎯 Target: `$%s` | 🛑 Stop: `$%s`\n",
		num(c.Strike), num(c.BestPrice()), pick.Target.StringFixed(2), pick.Stop.StringFixed(2)))
	b.WriteString(fmt.Sprintf("Vol: `%.0f` | OI: `%.0f` | IV: `%.2f%%`\n", c.Volume, c.OpenInterest, c.ImpliedVolatility*100))
	b.WriteString(fmt.Sprintf("Spread: `%.2f%%` | OI Ratio: `%.2f`\n", c.SpreadPct*100, c.OIRatio))
	b.WriteString(fmt.Sprintf("RSI: `%s` | ROC: `%.2f%%`\n", rsiText(snap.RSI), snap.ROC*100))
	b.WriteString(fmt.Sprintf("💡 Strategy: *%s*\n", pick.Strategy))
	b.WriteString(fmt.Sprintf("🎯 Reason: %s\n", pick.Reason))
	b.WriteString(strings.Join(pick.RiskFlags, " | "))
	b.WriteString("\n")
	return b.String()
}

// Blocks renders the banner followed by one section per ticker report.
func Blocks(now time.Time, reports []model.TickerReport) []string {
	blocks := []string{FormatBanner(now)}
	for i := range reports {
		r := &reports[i]
		if len(r.Picks) == 0 {
			continue
		}
		blocks = append(blocks, FormatTickerHeader(r.Symbol, r.Bias), FormatTopPick(&r.Picks[0]))
		for j := range r.Picks {
			blocks = append(blocks, FormatPick(&r.Picks[j], &r.Snapshot))
		}
	}
	return blocks
}

// Messages turns ticker reports into the outbound messages of one run. With
// no picks at all it returns the single NoSetupsMessage.
func Messages(now time.Time, reports []model.TickerReport) []string {
	blocks := Blocks(now, reports)
	if len(blocks) == 1 {
		return []string{NoSetupsMessage}
	}
	return Batch(blocks, BatchLimit)
}

// Batch packs newline-terminated blocks into messages of at most limit
// characters. Blocks are never split and keep their order; a single block
// longer than limit travels alone.
func Batch(blocks []string, limit int) []string {
	var batches []string
	var cur strings.Builder
	curLen := 0
	for _, block := range blocks {
		line := block + "\n"
		n := utf8.RuneCountInString(line)
		if curLen > 0 && curLen+n > limit {
			batches = append(batches, cur.String())
			cur.Reset()
			curLen = 0
		}
		cur.WriteString(line)
		curLen += n
	}
	if curLen > 0 {
		batches = append(batches, cur.String())
	}
	return batches
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func rsiText(rsi float64) string {
	if math.IsNaN(rsi) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", rsi)
}
