package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"ZeroDTEScanner/internal/model"
)

// GatewayFetcher implements Fetcher against a self-hosted market-data REST gateway.
type GatewayFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewGatewayFetcher creates a new fetcher with optional proxy support.
func NewGatewayFetcher(baseURL, apiKey, proxyURL string) *GatewayFetcher {
	return &GatewayFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
	}
}

func (f *GatewayFetcher) Name() string { return "gateway" }

// gwBar is the expected JSON shape of an intraday bar.
type gwBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// gwQuote is the expected JSON shape of an option row. Absent numbers stay nil.
type gwQuote struct {
	Symbol            string   `json:"symbol"`
	Strike            float64  `json:"strike"`
	Bid               *float64 `json:"bid"`
	Ask               *float64 `json:"ask"`
	LastPrice         *float64 `json:"last_price"`
	Volume            *float64 `json:"volume"`
	OpenInterest      *float64 `json:"open_interest"`
	ImpliedVolatility *float64 `json:"implied_volatility"`
}

func (f *GatewayFetcher) FetchIntradayBars(ctx context.Context, symbol string) ([]model.OHLCV, error) {
	endpoint := fmt.Sprintf("%s/api/v1/bars/intraday?symbol=%s&interval=%s&range=%s",
		f.BaseURL, url.QueryEscape(symbol), intradayInterval, intradayRange)
	var raw []gwBar
	if err := f.getJSON(ctx, endpoint, &raw); err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrNoData
	}
	bars := make([]model.OHLCV, len(raw))
	for i, b := range raw {
		bars[i] = model.OHLCV{
			Time:   time.Unix(b.Timestamp, 0),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		}
	}
	// Ensure chronological order
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

func (f *GatewayFetcher) FetchExpirations(ctx context.Context, symbol string) ([]time.Time, error) {
	endpoint := fmt.Sprintf("%s/api/v1/options/expirations?symbol=%s", f.BaseURL, url.QueryEscape(symbol))
	var result struct {
		Expirations []string `json:"expirations"`
	}
	if err := f.getJSON(ctx, endpoint, &result); err != nil {
		return nil, fmt.Errorf("fetch expirations: %w", err)
	}
	out := make([]time.Time, 0, len(result.Expirations))
	for _, s := range result.Expirations {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, fmt.Errorf("parse expiration %q: %w", s, err)
		}
		out = append(out, d)
	}
	return out, nil
}

func (f *GatewayFetcher) FetchOptionChain(ctx context.Context, symbol string, expiration time.Time) (*model.OptionChain, error) {
	endpoint := fmt.Sprintf("%s/api/v1/options/chain?symbol=%s&date=%s",
		f.BaseURL, url.QueryEscape(symbol), dateKey(expiration.UTC()))
	var result struct {
		Calls []gwQuote `json:"calls"`
		Puts  []gwQuote `json:"puts"`
	}
	if err := f.getJSON(ctx, endpoint, &result); err != nil {
		return nil, fmt.Errorf("fetch chain: %w", err)
	}
	chain := &model.OptionChain{Symbol: symbol, Expiration: expiration}
	for _, q := range result.Calls {
		chain.Calls = append(chain.Calls, q.toQuote(expiration))
	}
	for _, q := range result.Puts {
		chain.Puts = append(chain.Puts, q.toQuote(expiration))
	}
	return chain, nil
}

func (q gwQuote) toQuote(expiration time.Time) model.OptionQuote {
	return model.OptionQuote{
		ContractSymbol:    q.Symbol,
		Strike:            q.Strike,
		Expiration:        expiration,
		Bid:               q.Bid,
		Ask:               q.Ask,
		LastPrice:         q.LastPrice,
		Volume:            q.Volume,
		OpenInterest:      q.OpenInterest,
		ImpliedVolatility: q.ImpliedVolatility,
	}
}

func (f *GatewayFetcher) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d, body: %s", resp.StatusCode, truncate(string(body), 200))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
