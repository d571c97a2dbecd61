package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"ZeroDTEScanner/internal/model"

	"github.com/phuslu/log"
)

const (
	yahooChartURL   = "https://query1.finance.yahoo.com/v8/finance/chart/%s?interval=%s&range=%s"
	yahooOptionsURL = "https://query2.finance.yahoo.com/v7/finance/options/%s"
	yahooCookieURL  = "https://fc.yahoo.com"
	yahooCrumbURL   = "https://query2.finance.yahoo.com/v1/test/getcrumb"

	// Intraday lookback used for indicators.
	intradayInterval = "1m"
	intradayRange    = "5d"
)

var errYahooUnauthorized = errors.New("yahoo: unauthorized")

// YahooFetcher implements Fetcher using Yahoo Finance public API.
// The options endpoint needs a session cookie and a matching crumb; both are
// obtained on first use and renewed when Yahoo rejects them.
type YahooFetcher struct {
	Client     *http.Client
	ChartURL   string
	OptionsURL string
	CookieURL  string
	CrumbURL   string

	mu    sync.Mutex
	crumb string
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(proxyURL string) *YahooFetcher {
	return &YahooFetcher{
		Client:     newHTTPClient(proxyURL),
		ChartURL:   yahooChartURL,
		OptionsURL: yahooOptionsURL,
		CookieURL:  yahooCookieURL,
		CrumbURL:   yahooCrumbURL,
	}
}

func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	jar, _ := cookiejar.New(nil)
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
		Jar:       jar,
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

// yahooOptions is the response structure from Yahoo Finance options API.
type yahooOptions struct {
	OptionChain struct {
		Result []struct {
			UnderlyingSymbol string  `json:"underlyingSymbol"`
			ExpirationDates  []int64 `json:"expirationDates"`
			Options          []struct {
				ExpirationDate int64             `json:"expirationDate"`
				Calls          []yahooOptionQuote `json:"calls"`
				Puts           []yahooOptionQuote `json:"puts"`
			} `json:"options"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"optionChain"`
}

type yahooOptionQuote struct {
	ContractSymbol    string   `json:"contractSymbol"`
	Strike            float64  `json:"strike"`
	Expiration        int64    `json:"expiration"`
	LastPrice         *float64 `json:"lastPrice"`
	Bid               *float64 `json:"bid"`
	Ask               *float64 `json:"ask"`
	Volume            *float64 `json:"volume"`
	OpenInterest      *float64 `json:"openInterest"`
	ImpliedVolatility *float64 `json:"impliedVolatility"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func at(values []interface{}, i int) interface{} {
	if i < len(values) {
		return values[i]
	}
	return nil
}

func (f *YahooFetcher) get(ctx context.Context, u string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s", errYahooUnauthorized, truncate(string(body), 200))
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, truncate(string(body), 200))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("yahoo decode: %w", err)
	}
	return nil
}

func (f *YahooFetcher) FetchIntradayBars(ctx context.Context, symbol string) ([]model.OHLCV, error) {
	u := fmt.Sprintf(f.ChartURL, url.PathEscape(symbol), intradayInterval, intradayRange)

	var chart yahooChart
	if err := f.get(ctx, u, &chart); err != nil {
		return nil, err
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, ErrNoData
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]model.OHLCV, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		o := toFloat(at(quote.Open, i))
		h := toFloat(at(quote.High, i))
		l := toFloat(at(quote.Low, i))
		c := toFloat(at(quote.Close, i))
		if o == 0 && h == 0 && l == 0 && c == 0 {
			continue // skip null bars (halts, gaps)
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts, 0),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: toFloat(at(quote.Volume, i)),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

// session returns the cached crumb, or performs the cookie and crumb
// handshake when there is none or refresh is set.
func (f *YahooFetcher) session(ctx context.Context, refresh bool) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.crumb != "" && !refresh {
		return f.crumb, nil
	}

	// The cookie host answers with an error status but still sets the cookie.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.CookieURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	if resp, err := f.Client.Do(req); err != nil {
		log.Debug().Err(err).Msg("yahoo cookie request failed")
	} else {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}

	req, err = http.NewRequestWithContext(ctx, http.MethodGet, f.CrumbURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	resp, err := f.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("yahoo crumb: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return "", fmt.Errorf("yahoo crumb read body: %w", err)
	}
	crumb := strings.TrimSpace(string(body))
	if resp.StatusCode != http.StatusOK || crumb == "" {
		return "", fmt.Errorf("yahoo crumb: status %d, body: %s", resp.StatusCode, truncate(crumb, 200))
	}
	f.crumb = crumb
	log.Debug().Msg("yahoo session established")
	return crumb, nil
}

func (f *YahooFetcher) fetchOptions(ctx context.Context, symbol string, expiration *time.Time) (*yahooOptions, error) {
	var resp yahooOptions
	for attempt := 0; ; attempt++ {
		crumb, err := f.session(ctx, attempt > 0)
		if err != nil {
			return nil, err
		}
		q := url.Values{}
		q.Set("crumb", crumb)
		if expiration != nil {
			q.Set("date", strconv.FormatInt(expiration.Unix(), 10))
		}
		u := fmt.Sprintf(f.OptionsURL, url.PathEscape(symbol)) + "?" + q.Encode()

		err = f.get(ctx, u, &resp)
		if errors.Is(err, errYahooUnauthorized) && attempt == 0 {
			log.Debug().Str("symbol", symbol).Msg("yahoo crumb rejected, renewing")
			continue
		}
		if err != nil {
			return nil, err
		}
		break
	}
	if resp.OptionChain.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", resp.OptionChain.Error.Description)
	}
	if len(resp.OptionChain.Result) == 0 {
		return nil, ErrNoData
	}
	return &resp, nil
}

func (f *YahooFetcher) FetchExpirations(ctx context.Context, symbol string) ([]time.Time, error) {
	resp, err := f.fetchOptions(ctx, symbol, nil)
	if err != nil {
		return nil, err
	}
	dates := resp.OptionChain.Result[0].ExpirationDates
	out := make([]time.Time, len(dates))
	for i, d := range dates {
		out[i] = time.Unix(d, 0).UTC()
	}
	return out, nil
}

func (f *YahooFetcher) FetchOptionChain(ctx context.Context, symbol string, expiration time.Time) (*model.OptionChain, error) {
	resp, err := f.fetchOptions(ctx, symbol, &expiration)
	if err != nil {
		return nil, err
	}
	result := resp.OptionChain.Result[0]
	chain := &model.OptionChain{Symbol: symbol, Expiration: expiration}
	if len(result.Options) == 0 {
		return chain, nil
	}
	for _, q := range result.Options[0].Calls {
		chain.Calls = append(chain.Calls, q.toQuote())
	}
	for _, q := range result.Options[0].Puts {
		chain.Puts = append(chain.Puts, q.toQuote())
	}
	return chain, nil
}

func (q yahooOptionQuote) toQuote() model.OptionQuote {
	return model.OptionQuote{
		ContractSymbol:    q.ContractSymbol,
		Strike:            q.Strike,
		Expiration:        time.Unix(q.Expiration, 0).UTC(),
		Bid:               q.Bid,
		Ask:               q.Ask,
		LastPrice:         q.LastPrice,
		Volume:            q.Volume,
		OpenInterest:      q.OpenInterest,
		ImpliedVolatility: q.ImpliedVolatility,
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
