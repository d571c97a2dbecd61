package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ZeroDTEScanner/internal/calculator"
	"ZeroDTEScanner/internal/model"

	"github.com/phuslu/log"
)

var (
	// ErrNoData is returned when the provider answers without usable rows.
	ErrNoData = errors.New("no data returned")
	// ErrNoExpiryToday is returned when a symbol has no contracts expiring today.
	ErrNoExpiryToday = errors.New("no options expiring today")
)

// Status classifies the outcome of collecting one ticker.
type Status string

const (
	StatusOK               Status = "ok"
	StatusInsufficientData Status = "insufficient_data"
	StatusNoOptions        Status = "no_options"
	StatusProviderError    Status = "provider_error"
	StatusFailed           Status = "failed"
)

// Result is the per-ticker outcome of a collection.
type Result struct {
	Symbol    string
	Status    Status
	Snapshot  *model.IndicatorSnapshot
	Contracts []model.OptionContract
	Err       error
}

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Bars        []model.OHLCV
	Expirations []time.Time
	Chains      map[string]*model.OptionChain // keyed by YYYY-MM-DD
	BarsErr     error
	OptionsErr  error
	Calls       []string
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchExpirations(_ context.Context, symbol string) ([]time.Time, error) {
	m.Calls = append(m.Calls, "expirations:"+symbol)
	if m.OptionsErr != nil {
		return nil, m.OptionsErr
	}
	return m.Expirations, nil
}

func (m *MockFetcher) FetchOptionChain(_ context.Context, symbol string, expiration time.Time) (*model.OptionChain, error) {
	m.Calls = append(m.Calls, "chain:"+symbol)
	if m.OptionsErr != nil {
		return nil, m.OptionsErr
	}
	ch, ok := m.Chains[dateKey(expiration)]
	if !ok {
		return nil, ErrNoData
	}
	return ch, nil
}

func (m *MockFetcher) FetchIntradayBars(_ context.Context, symbol string) ([]model.OHLCV, error) {
	m.Calls = append(m.Calls, "bars:"+symbol)
	if m.BarsErr != nil {
		return nil, m.BarsErr
	}
	return m.Bars, nil
}

// Collector orchestrates data fetching and indicator computation per ticker.
type Collector struct {
	Fetcher Fetcher
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher) *Collector {
	return &Collector{Fetcher: fetcher}
}

// Collect fetches the indicator snapshot and today's contracts for symbol.
// Failures are reported through Result.Status, never as a panic or error return.
func (c *Collector) Collect(ctx context.Context, symbol string, now time.Time) Result {
	res := Result{Symbol: symbol}

	snap, err := c.Indicators(ctx, symbol)
	if err != nil {
		res.Status, res.Err = classify(err), err
		return res
	}
	res.Snapshot = snap

	contracts, err := c.SameDayOptions(ctx, symbol, now)
	if err != nil {
		res.Status, res.Err = classify(err), err
		return res
	}
	res.Contracts = contracts
	res.Status = StatusOK
	return res
}

// Indicators downloads the intraday lookback and computes the latest snapshot.
func (c *Collector) Indicators(ctx context.Context, symbol string) (*model.IndicatorSnapshot, error) {
	log.Debug().Str("symbol", symbol).Msg("downloading intraday bars")
	bars, err := c.Fetcher.FetchIntradayBars(ctx, symbol)
	if err != nil && !errors.Is(err, ErrNoData) {
		return nil, fmt.Errorf("fetch intraday bars: %w", err)
	}
	snap, err := calculator.Snapshot(&model.PriceSeries{Symbol: symbol, Bars: bars, FetchedAt: time.Now()})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// SameDayOptions returns every call and put of symbol that expires on now's
// calendar date, with missing quote fields zero-filled.
func (c *Collector) SameDayOptions(ctx context.Context, symbol string, now time.Time) ([]model.OptionContract, error) {
	log.Debug().Str("symbol", symbol).Msg("downloading option expirations")
	expirations, err := c.Fetcher.FetchExpirations(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("fetch expirations: %w", err)
	}

	today := dateKey(now)
	var expiry time.Time
	found := false
	for _, e := range expirations {
		if dateKey(e.UTC()) == today {
			expiry, found = e, true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNoExpiryToday, today)
	}

	chain, err := c.Fetcher.FetchOptionChain(ctx, symbol, expiry)
	if err != nil {
		return nil, fmt.Errorf("fetch option chain %s: %w", today, err)
	}
	contracts := chain.Contracts()
	if len(contracts) == 0 {
		return nil, fmt.Errorf("option chain %s: %w", today, ErrNoData)
	}
	return contracts, nil
}

func classify(err error) Status {
	switch {
	case errors.Is(err, calculator.ErrInsufficientData):
		return StatusInsufficientData
	case errors.Is(err, ErrNoExpiryToday), errors.Is(err, ErrNoData):
		return StatusNoOptions
	default:
		return StatusProviderError
	}
}
