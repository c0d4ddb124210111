package tiingo_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"datafeed/internal/httpx"
	"datafeed/internal/provider"
	"datafeed/internal/provider/providertest"
	"datafeed/internal/provider/tiingo"
	"datafeed/internal/standard"
)

var creds = provider.Credentials{tiingo.CredentialKey: "tok"}

func newFetcher(t *testing.T) (provider.Fetcher, *providertest.MockTransport) {
	t.Helper()
	tr := providertest.NewMockTransport(gomock.NewController(t))
	now := func() time.Time { return time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC) }
	p := tiingo.New(tr, tiingo.Config{BaseURL: "https://tiingo.test", Now: now})
	return p.Fetchers[standard.EquityHistorical], tr
}

const aaplBars = `[
	{"date":"2024-01-03T00:00:00.000Z","open":184.22,"high":185.88,"low":183.43,"close":184.25,"volume":58414460,
	 "adjOpen":183.5,"adjHigh":185.1,"adjLow":182.7,"adjClose":183.5,"adjVolume":58414460,"divCash":0.0,"splitFactor":1.0},
	{"date":"2024-01-02T00:00:00.000Z","open":187.15,"high":188.44,"low":183.885,"close":185.64,"volume":82488674,
	 "adjOpen":186.4,"adjHigh":187.7,"adjLow":183.1,"adjClose":184.9,"adjVolume":82488674,"divCash":0.0,"splitFactor":1.0}
]`

func TestEquityHistoricalDefaultRange(t *testing.T) {
	t.Parallel()

	// Arrange
	f, tr := newFetcher(t)
	tr.EXPECT().GetJSON(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, u string, _ http.Header) (any, error) {
			if !strings.HasPrefix(u, "https://tiingo.test/tiingo/daily/aapl/prices?") ||
				!strings.Contains(u, "startDate=2023-06-10") ||
				!strings.Contains(u, "endDate=2024-06-10") ||
				!strings.Contains(u, "resampleFreq=daily") ||
				!strings.Contains(u, "token=tok") {
				return nil, errors.New("unexpected url " + u)
			}
			return providertest.DecodeJSON(t, aaplBars), nil
		})

	// Act
	recs, err := provider.Fetch(t.Context(), f, map[string]any{"symbol": "aapl"}, creds)

	// Assert
	require.NoError(t, err)
	require.Len(t, recs, 2)
	first, _ := recs[0].Time("date")
	require.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), first)
	adj, ok := recs[0].Float("adj_close")
	require.True(t, ok)
	require.InDelta(t, 184.9, adj, 1e-9)
	split, _ := recs[0].Float("split_ratio")
	require.InDelta(t, 1.0, split, 1e-9)
	require.Empty(t, recs[0].String("symbol"))
}

func TestEquityHistoricalSkipsFailedSymbols(t *testing.T) {
	t.Parallel()

	// Arrange: MSFT answers first but is requested second.
	f, tr := newFetcher(t)
	tr.EXPECT().GetJSON(gomock.Any(), gomock.Any(), gomock.Any()).Times(3).
		DoAndReturn(func(ctx context.Context, u string, _ http.Header) (any, error) {
			switch {
			case strings.Contains(u, "/daily/aapl/"):
				time.Sleep(20 * time.Millisecond)
				return providertest.DecodeJSON(t, aaplBars), nil
			case strings.Contains(u, "/daily/msft/"):
				return providertest.DecodeJSON(t, `[{"date":"2024-01-02T00:00:00.000Z","open":1,"high":2,"low":0.5,"close":1.5}]`), nil
			}
			return nil, &httpx.TransportError{Method: http.MethodGet, URL: u, Status: http.StatusNotFound, Body: `{"detail":"Error: Ticker 'NOPE' not found"}`}
		})

	// Act
	recs, err := provider.Fetch(t.Context(), f, map[string]any{"symbol": "AAPL,NOPE,MSFT"}, creds)

	// Assert
	require.NoError(t, err)
	require.Len(t, recs, 3)
	require.Equal(t, "AAPL", recs[0].String("symbol"))
	require.Equal(t, "AAPL", recs[1].String("symbol"))
	require.Equal(t, "MSFT", recs[2].String("symbol"))
	d0, _ := recs[0].Time("date")
	d1, _ := recs[1].Time("date")
	require.True(t, d0.Before(d1))
}

func TestEquityHistoricalAllFailed(t *testing.T) {
	t.Parallel()

	f, tr := newFetcher(t)
	tr.EXPECT().GetJSON(gomock.Any(), gomock.Any(), gomock.Any()).Times(2).
		Return(nil, &httpx.TransportError{Method: http.MethodGet, Status: http.StatusUnauthorized, Body: `{"detail":"Invalid token."}`})

	_, err := provider.Fetch(t.Context(), f, map[string]any{"symbol": "AAPL,MSFT"}, creds)

	var uerr *provider.UnauthorizedError
	require.ErrorAs(t, err, &uerr)
	var terr *httpx.TransportError
	require.ErrorAs(t, err, &terr)
	require.Equal(t, http.StatusUnauthorized, terr.Status)
}

func TestEquityHistoricalIntradayURL(t *testing.T) {
	t.Parallel()

	f, tr := newFetcher(t)
	tr.EXPECT().GetJSON(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, u string, _ http.Header) (any, error) {
			if !strings.HasPrefix(u, "https://tiingo.test/iex/spy/prices?") || !strings.Contains(u, "resampleFreq=5min") {
				return nil, errors.New("unexpected url " + u)
			}
			return providertest.DecodeJSON(t, `[{"date":"2024-06-07T13:30:00.000Z","open":1,"high":2,"low":0.5,"close":1.5,"volume":100}]`), nil
		})

	recs, err := provider.Fetch(t.Context(), f, map[string]any{"symbol": "SPY", "interval": "5m", "start_date": "2024-06-07", "end_date": "2024-06-07"}, creds)

	require.NoError(t, err)
	require.Len(t, recs, 1)
	ts, _ := recs[0].Time("date")
	require.Equal(t, time.Date(2024, 6, 7, 13, 30, 0, 0, time.UTC), ts)
}

func TestEquityHistoricalEmpty(t *testing.T) {
	t.Parallel()

	f, tr := newFetcher(t)
	tr.EXPECT().GetJSON(gomock.Any(), gomock.Any(), gomock.Any()).Return(providertest.DecodeJSON(t, `[]`), nil)

	_, err := provider.Fetch(t.Context(), f, map[string]any{"symbol": "AAPL"}, creds)

	require.ErrorIs(t, err, provider.ErrEmptyData)
}
