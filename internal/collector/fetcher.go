package collector

import (
	"context"
	"time"

	"ZeroDTEScanner/internal/model"
)

// Fetcher defines the interface for fetching market data.
// Implementations may return empty data; callers treat that as "skip".
type Fetcher interface {
	// FetchExpirations lists the option expiration dates of a symbol.
	FetchExpirations(ctx context.Context, symbol string) ([]time.Time, error)
	FetchOptionChain(ctx context.Context, symbol string, expiration time.Time) (*model.OptionChain, error)
	// FetchIntradayBars returns the lookback window of 1-minute bars, oldest first.
	FetchIntradayBars(ctx context.Context, symbol string) ([]model.OHLCV, error)
	Name() string
}

// dateKey is the calendar-date identity used to match expirations.
func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
