// Package scanner runs one scan cycle across the watch list and delivers the report.
package scanner

import (
	"context"
	"fmt"
	"time"

	"ZeroDTEScanner/internal/collector"
	"ZeroDTEScanner/internal/model"
	"ZeroDTEScanner/internal/notifier"
	"ZeroDTEScanner/internal/screener"
	"ZeroDTEScanner/internal/strategy"

	"github.com/google/uuid"
	"github.com/phuslu/log"
)

// TopPicks is how many contracts each ticker section lists.
const TopPicks = 3

// Outcome records what happened to one ticker during a cycle.
type Outcome struct {
	Symbol string
	Status collector.Status
	Picks  int
	Err    error
}

// Summary describes a finished cycle.
type Summary struct {
	RunID     string
	Outcomes  []Outcome
	Messages  int
	Delivered int
}

// Count returns how many tickers ended with status.
func (s *Summary) Count(status collector.Status) int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// Scanner evaluates the watch list one ticker at a time.
type Scanner struct {
	Collector  *collector.Collector
	Notifier   notifier.Notifier
	Tickers    []string
	Thresholds screener.Thresholds
}

// New creates a Scanner. tickers is copied.
func New(col *collector.Collector, n notifier.Notifier, tickers []string, th screener.Thresholds) *Scanner {
	return &Scanner{
		Collector:  col,
		Notifier:   n,
		Tickers:    append([]string(nil), tickers...),
		Thresholds: th,
	}
}

// Run scans every ticker in order, then formats and sends the report.
// Ticker and delivery failures are logged and never abort the cycle.
func (s *Scanner) Run(ctx context.Context, now time.Time) Summary {
	sum := Summary{RunID: uuid.NewString()}
	logger := log.DefaultLogger
	logger.Context = log.NewContext(nil).Str("run_id", sum.RunID).Value()

	var reports []model.TickerReport
	for _, symbol := range s.Tickers {
		logger.Info().Str("symbol", symbol).Msg("analyzing")
		rep, out := s.scanTicker(ctx, symbol, now)
		sum.Outcomes = append(sum.Outcomes, out)

		ev := logger.Info()
		if out.Status != collector.StatusOK {
			ev = logger.Warn().Err(out.Err)
		}
		ev.Str("symbol", symbol).Str("status", string(out.Status)).Int("picks", out.Picks).Msg("ticker done")

		if rep != nil {
			reports = append(reports, *rep)
		}
	}

	msgs := notifier.Messages(now, reports)
	sum.Messages = len(msgs)
	for _, msg := range msgs {
		if err := s.Notifier.Send(ctx, msg); err != nil {
			logger.Error().Err(err).Str("notifier", s.Notifier.Name()).Msg("send notification")
			continue
		}
		sum.Delivered++
	}

	logger.Info().
		Int("tickers", len(s.Tickers)).
		Int("ok", sum.Count(collector.StatusOK)).
		Int("insufficient_data", sum.Count(collector.StatusInsufficientData)).
		Int("no_options", sum.Count(collector.StatusNoOptions)).
		Int("provider_error", sum.Count(collector.StatusProviderError)).
		Int("failed", sum.Count(collector.StatusFailed)).
		Int("messages", sum.Messages).
		Int("delivered", sum.Delivered).
		Msg("scan complete")
	return sum
}

// scanTicker runs the pipeline for one symbol. A panic is contained here and
// reported as StatusFailed.
func (s *Scanner) scanTicker(ctx context.Context, symbol string, now time.Time) (rep *model.TickerReport, out Outcome) {
	out = Outcome{Symbol: symbol}
	defer func() {
		if r := recover(); r != nil {
			rep = nil
			out.Status = collector.StatusFailed
			out.Picks = 0
			out.Err = fmt.Errorf("panic scanning %s: %v", symbol, r)
		}
	}()

	res := s.Collector.Collect(ctx, symbol, now)
	out.Status, out.Err = res.Status, res.Err
	if res.Status != collector.StatusOK {
		return nil, out
	}

	ranked := screener.Filter(res.Contracts, s.Thresholds)
	if len(ranked) == 0 {
		return nil, out
	}

	bias := strategy.ClassifyBias(res.Snapshot)
	picks := strategy.RecommendTop(ranked, TopPicks, bias, res.Snapshot.RSI)
	out.Picks = len(picks)
	return &model.TickerReport{
		Symbol:   symbol,
		Bias:     bias,
		Snapshot: *res.Snapshot,
		Picks:    picks,
	}, out
}
