package scanner

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ZeroDTEScanner/internal/collector"
	"ZeroDTEScanner/internal/model"
	"ZeroDTEScanner/internal/notifier"
	"ZeroDTEScanner/internal/screener"
)

var testNow = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

// symbolFetcher routes each symbol to its own mock.
type symbolFetcher struct {
	mocks map[string]*collector.MockFetcher
	order []string
	panic string
}

func (f *symbolFetcher) Name() string { return "routed" }

func (f *symbolFetcher) get(symbol string) *collector.MockFetcher {
	f.order = append(f.order, symbol)
	if symbol == f.panic {
		panic("malformed provider row")
	}
	if m, ok := f.mocks[symbol]; ok {
		return m
	}
	return &collector.MockFetcher{BarsErr: errors.New("unknown symbol")}
}

func (f *symbolFetcher) FetchExpirations(ctx context.Context, symbol string) ([]time.Time, error) {
	return f.mocks[symbol].FetchExpirations(ctx, symbol)
}

func (f *symbolFetcher) FetchOptionChain(ctx context.Context, symbol string, exp time.Time) (*model.OptionChain, error) {
	return f.mocks[symbol].FetchOptionChain(ctx, symbol, exp)
}

func (f *symbolFetcher) FetchIntradayBars(ctx context.Context, symbol string) ([]model.OHLCV, error) {
	return f.get(symbol).FetchIntradayBars(ctx, symbol)
}

type recordingNotifier struct {
	sent []string
	err  error
}

func (r *recordingNotifier) Name() string { return "recording" }

func (r *recordingNotifier) Send(_ context.Context, text string) error {
	r.sent = append(r.sent, text)
	return r.err
}

func bars(n int, step float64) []model.OHLCV {
	out := make([]model.OHLCV, n)
	for i := range out {
		p := 400 + float64(i)*step
		out[i] = model.OHLCV{Time: testNow.Add(time.Duration(i-n) * time.Minute), Close: p, Volume: 2000}
	}
	return out
}

func quote(symbol string, bid, ask, vol, oi float64) model.OptionQuote {
	return model.OptionQuote{
		ContractSymbol: symbol,
		Strike:         400,
		Bid:            model.Float(bid),
		Ask:            model.Float(ask),
		LastPrice:      model.Float((bid + ask) / 2),
		Volume:         model.Float(vol),
		OpenInterest:   model.Float(oi),
	}
}

func liquidMock(step float64, calls ...model.OptionQuote) *collector.MockFetcher {
	today := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	return &collector.MockFetcher{
		Bars:        bars(60, step),
		Expirations: []time.Time{today},
		Chains: map[string]*model.OptionChain{
			"2026-10-19": {Symbol: "X", Expiration: today, Calls: calls},
		},
	}
}

func newScanner(f collector.Fetcher, n notifier.Notifier, tickers ...string) *Scanner {
	return New(collector.NewCollector(f), n, tickers, screener.DefaultThresholds())
}

func TestRun_ReportsQualifyingTickers(t *testing.T) {
	f := &symbolFetcher{mocks: map[string]*collector.MockFetcher{
		"SPY": liquidMock(0.1,
			quote("SPY-A", 1.00, 1.10, 9000, 100),
			quote("SPY-B", 2.00, 2.02, 8000, 100),
			quote("SPY-C", 3.00, 3.05, 7000, 100),
			quote("SPY-D", 0.50, 0.52, 6000, 100),
			quote("SPY-illiquid", 0.10, 0.50, 10, 100),
		),
		"QQQ": {Bars: bars(60, 0.1), Expirations: []time.Time{time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)}},
	}}
	n := &recordingNotifier{}

	sum := newScanner(f, n, "SPY", "QQQ").Run(context.Background(), testNow)

	if sum.RunID == "" {
		t.Error("expected a run id")
	}
	if sum.Count(collector.StatusOK) != 1 || sum.Count(collector.StatusNoOptions) != 1 {
		t.Errorf("unexpected outcomes %+v", sum.Outcomes)
	}
	if sum.Outcomes[0].Picks != TopPicks {
		t.Errorf("expected %d picks for SPY, got %d", TopPicks, sum.Outcomes[0].Picks)
	}
	if sum.Delivered != sum.Messages || len(n.sent) != sum.Messages {
		t.Errorf("expected every message delivered, got %d/%d", sum.Delivered, sum.Messages)
	}

	all := strings.Join(n.sent, "")
	if !strings.Contains(all, "**SPY** — Bias: Bullish") {
		t.Errorf("missing SPY section:\n%s", all)
	}
	if !strings.Contains(all, "Top Pick:** SPY-B") {
		t.Errorf("expected tightest spread as top pick:\n%s", all)
	}
	if strings.Contains(all, "SPY-A") || strings.Contains(all, "SPY-illiquid") {
		t.Errorf("report lists contracts beyond the top three or unqualified ones:\n%s", all)
	}
	if strings.Contains(all, "QQQ") {
		t.Errorf("QQQ had no same-day options and must not appear:\n%s", all)
	}
}

func TestRun_NoSetups(t *testing.T) {
	f := &symbolFetcher{mocks: map[string]*collector.MockFetcher{
		"SPY": liquidMock(0.1, quote("SPY-thin", 1, 2, 10, 1000)),
		"AMD": {Bars: bars(10, 0.1)},
	}}
	n := &recordingNotifier{}

	sum := newScanner(f, n, "SPY", "AMD").Run(context.Background(), testNow)

	if len(n.sent) != 1 || n.sent[0] != notifier.NoSetupsMessage {
		t.Errorf("expected only the no-setups message, got %v", n.sent)
	}
	if sum.Count(collector.StatusInsufficientData) != 1 {
		t.Errorf("expected AMD to lack data, got %+v", sum.Outcomes)
	}
}

func TestRun_PanicIsContainedPerTicker(t *testing.T) {
	f := &symbolFetcher{
		mocks: map[string]*collector.MockFetcher{
			"NVDA": liquidMock(-0.1, quote("NVDA-P", 1.00, 1.02, 20000, 10)),
		},
		panic: "TSLA",
	}
	n := &recordingNotifier{}

	sum := newScanner(f, n, "TSLA", "NVDA").Run(context.Background(), testNow)

	if sum.Outcomes[0].Status != collector.StatusFailed || sum.Outcomes[0].Err == nil {
		t.Errorf("expected TSLA to fail, got %+v", sum.Outcomes[0])
	}
	if sum.Outcomes[1].Status != collector.StatusOK {
		t.Errorf("expected NVDA to be scanned after the failure, got %+v", sum.Outcomes[1])
	}
	if !strings.Contains(strings.Join(n.sent, ""), "**NVDA** — Bias: Bearish") {
		t.Errorf("expected bearish NVDA section, got %v", n.sent)
	}
}

func TestRun_SequentialOrder(t *testing.T) {
	f := &symbolFetcher{mocks: map[string]*collector.MockFetcher{}}
	newScanner(f, &recordingNotifier{}, "META", "AAPL", "SPY").Run(context.Background(), testNow)
	want := []string{"META", "AAPL", "SPY"}
	if strings.Join(f.order, ",") != strings.Join(want, ",") {
		t.Errorf("expected tickers in list order %v, got %v", want, f.order)
	}
}

func TestRun_SendFailuresAreSwallowed(t *testing.T) {
	f := &symbolFetcher{mocks: map[string]*collector.MockFetcher{
		"SPY": liquidMock(0.1, quote("SPY-A", 1.00, 1.02, 9000, 10)),
	}}
	n := &recordingNotifier{err: errors.New("status 500")}

	sum := newScanner(f, n, "SPY").Run(context.Background(), testNow)

	if sum.Delivered != 0 {
		t.Errorf("expected nothing delivered, got %d", sum.Delivered)
	}
	if len(n.sent) != sum.Messages || sum.Messages == 0 {
		t.Errorf("expected one attempt per message without retries, got %d attempts for %d messages", len(n.sent), sum.Messages)
	}
}
