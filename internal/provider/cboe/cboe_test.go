package cboe_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"datafeed/internal/provider"
	"datafeed/internal/provider/cboe"
	"datafeed/internal/provider/providertest"
	"datafeed/internal/standard"
)

var fixedNow = time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)

func newFetcher(t *testing.T) (provider.Fetcher, *providertest.MockTransport) {
	t.Helper()
	tr := providertest.NewMockTransport(gomock.NewController(t))
	p := cboe.New(tr, cboe.Config{Now: func() time.Time { return fixedNow }})
	return p.Fetchers[standard.IndexHistorical], tr
}

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func TestTransformQueryDefaults(t *testing.T) {
	t.Parallel()

	f, _ := newFetcher(t)

	tests := []struct {
		name      string
		params    map[string]any
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"single symbol", map[string]any{"symbol": "spx"}, day(1950, 1, 1), day(2024, 3, 15)},
		{"several symbols", map[string]any{"symbol": "SPX,VIX"}, day(2022, 3, 26), day(2024, 3, 15)},
		{"explicit", map[string]any{"symbol": "SPX", "start_date": "2024-01-01", "end_date": "2024-02-01"}, day(2024, 1, 1), day(2024, 2, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			q, err := f.TransformQuery(tt.params)

			require.NoError(t, err)
			start, _ := q.Time("start_date")
			end, _ := q.Time("end_date")
			require.Equal(t, tt.wantStart, start)
			require.Equal(t, tt.wantEnd, end)
			require.Equal(t, "1d", q.String("interval"))
		})
	}
}

func TestIndexHistoricalDailyMultiSymbol(t *testing.T) {
	t.Parallel()

	// Arrange
	f, tr := newFetcher(t)
	tr.EXPECT().GetJSON(gomock.Any(), gomock.Any(), gomock.Any()).Times(2).
		DoAndReturn(func(ctx context.Context, u string, _ http.Header) (any, error) {
			switch u {
			case cboe.DefaultBaseURL + "/historical/_SPX.json":
				return providertest.DecodeJSON(t, `{"data":[
					{"date":"2024-01-03","open":4725.07,"high":4729.29,"low":4699.71,"close":4704.81,"volume":0,"stock_volume":0},
					{"date":"2024-01-02","open":4745.2,"high":4754.33,"low":4722.67,"close":4742.83,"volume":0,"stock_volume":0},
					{"date":"2023-12-29","open":0,"high":4778.0,"low":4751.0,"close":4769.83,"volume":0}
				]}`), nil
			case cboe.DefaultBaseURL + "/historical/_VIX.json":
				return providertest.DecodeJSON(t, `{"data":[{"date":"2024-01-02","open":13.21,"high":14.23,"low":13.1,"close":13.2,"volume":0}]}`), nil
			}
			return nil, errors.New("unexpected url " + u)
		})

	// Act
	recs, err := provider.Fetch(t.Context(), f, map[string]any{"symbol": "SPX,^VIX", "start_date": "2024-01-01"}, nil)

	// Assert: 2023-12-29 falls before start_date.
	require.NoError(t, err)
	require.Len(t, recs, 3)
	d0, _ := recs[0].Time("date")
	require.Equal(t, day(2024, 1, 2), d0)
	require.Equal(t, "SPX", recs[0].String("symbol"))
	require.Equal(t, "VIX", recs[1].String("symbol"))
	require.Equal(t, "SPX", recs[2].String("symbol"))
	vol, ok := recs[0].Int("volume")
	require.True(t, ok)
	require.EqualValues(t, 0, vol)
}

func TestIndexHistoricalZeroPriceIsMissing(t *testing.T) {
	t.Parallel()

	f, tr := newFetcher(t)
	tr.EXPECT().GetJSON(gomock.Any(), cboe.DefaultBaseURL+"/historical/_SPX.json", gomock.Any()).
		Return(providertest.DecodeJSON(t, `{"data":[{"date":"2023-12-29","open":0,"high":4778.0,"low":4751.0,"close":4769.83}]}`), nil)

	recs, err := provider.Fetch(t.Context(), f, map[string]any{"symbol": "SPX"}, nil)

	require.NoError(t, err)
	require.Len(t, recs, 1)
	_, ok := recs[0].Float("open")
	require.False(t, ok)
	require.Empty(t, recs[0].String("symbol"))
}

func TestIndexHistoricalIntraday(t *testing.T) {
	t.Parallel()

	f, tr := newFetcher(t)
	tr.EXPECT().GetJSON(gomock.Any(), cboe.DefaultBaseURL+"/intraday/_SPX.json", gomock.Any()).
		Return(providertest.DecodeJSON(t, `{"data":[
			{"datetime":"2024-03-15T09:31:00","price":{"open":5123.3,"high":5124.0,"low":5120.1,"close":5121.9},
			 "volume":{"stock_volume":0,"calls_volume":1520,"puts_volume":2210,"total_options_volume":3730}}
		]}`), nil)

	recs, err := provider.Fetch(t.Context(), f, map[string]any{"symbol": "SPX", "interval": "1m"}, nil)

	require.NoError(t, err)
	require.Len(t, recs, 1)
	ts, _ := recs[0].Time("date")
	require.Equal(t, time.Date(2024, 3, 15, 9, 31, 0, 0, time.UTC), ts)
	closePx, _ := recs[0].Float("close")
	require.InDelta(t, 5121.9, closePx, 1e-9)
	calls, _ := recs[0].Float("calls_volume")
	require.InDelta(t, 1520, calls, 1e-9)
}

func TestIndexHistoricalFailFast(t *testing.T) {
	t.Parallel()

	f, tr := newFetcher(t)
	boom := errors.New("403 forbidden")
	tr.EXPECT().GetJSON(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes().
		DoAndReturn(func(ctx context.Context, u string, _ http.Header) (any, error) {
			if u == cboe.DefaultBaseURL+"/historical/_NOPE.json" {
				return nil, boom
			}
			return providertest.DecodeJSON(t, `{"data":[{"date":"2024-01-02","close":1}]}`), nil
		})

	_, err := provider.Fetch(t.Context(), f, map[string]any{"symbol": "SPX,NOPE"}, nil)

	require.ErrorIs(t, err, boom)
}

func TestIndexHistoricalRejectsInterval(t *testing.T) {
	t.Parallel()

	f, _ := newFetcher(t)

	_, err := f.TransformQuery(map[string]any{"symbol": "SPX", "interval": "5m"})

	require.Error(t, err)
}

func TestNoCredentialsRequired(t *testing.T) {
	t.Parallel()

	f, _ := newFetcher(t)

	require.False(t, provider.RequiresCredentials(f))
}
