package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"datafeed/internal/httpx"
	"datafeed/internal/provider"
	"datafeed/internal/schema"
)

var echoQuery = schema.New("EchoQuery").
	Field(
		schema.Required("symbol", schema.KindString, schema.UpperList),
		schema.Optional("limit", schema.KindInt, schema.ForceInt),
	).
	MustBuild()

var echoData = schema.New("EchoData").
	Field(schema.Required("symbol", schema.KindString)).
	MustBuild()

// echoFetcher returns one record per requested symbol, or extractErr.
type echoFetcher struct {
	extractErr error
}

func (f *echoFetcher) TransformQuery(params map[string]any) (schema.Record, error) {
	return echoQuery.Validate(params)
}

func (f *echoFetcher) ExtractData(_ context.Context, q schema.Record, _ provider.Credentials) ([]map[string]any, error) {
	if f.extractErr != nil {
		return nil, f.extractErr
	}
	var rows []map[string]any
	for _, s := range strings.Split(q.String("symbol"), ",") {
		rows = append(rows, map[string]any{"symbol": s})
	}
	return rows, nil
}

func (f *echoFetcher) TransformData(_ schema.Record, data []map[string]any) ([]schema.Record, error) {
	return provider.ToRecords(echoData, data)
}

func newAPI(t *testing.T, f provider.Fetcher, creds provider.Credentials) http.Handler {
	t.Helper()
	reg, err := provider.NewRegistry(provider.Provider{
		Name:        "echo",
		Credentials: []string{"echo_key"},
		Fetchers:    map[string]provider.Fetcher{"Echo": f},
	})
	require.NoError(t, err)
	a := &api{ex: provider.NewExecutor(reg, creds)}
	return withRequestID(withJSONHeaders(a.routes()))
}

func TestGetFetchJoinsRepeatedParams(t *testing.T) {
	t.Parallel()

	// Arrange
	h := newAPI(t, &echoFetcher{}, provider.Credentials{"echo_key": "k"})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/echo/Echo?symbol=aapl&symbol=msft", nil)
	rr := httptest.NewRecorder()

	// Act
	h.ServeHTTP(rr, req)

	// Assert
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	var resp struct {
		Provider string           `json:"provider"`
		Count    int              `json:"count"`
		Results  []map[string]any `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "echo", resp.Provider)
	require.Equal(t, 2, resp.Count)
	require.Equal(t, "AAPL", resp.Results[0]["symbol"])
	require.Equal(t, "MSFT", resp.Results[1]["symbol"])
}

func TestPostFetch(t *testing.T) {
	t.Parallel()

	h := newAPI(t, &echoFetcher{}, provider.Credentials{"echo_key": "k"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/echo/Echo", bytes.NewBufferString(`{"symbol":"spy","limit":5}`))
	req.Header.Set("X-Request-ID", "rq-1")
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Equal(t, "rq-1", rr.Header().Get("X-Request-ID"))
	require.Contains(t, rr.Body.String(), `"symbol":"SPY"`)
}

func TestFetchErrorStatuses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		target string
		f      provider.Fetcher
		creds  provider.Credentials
		want   int
	}{
		{"validation", "/api/v1/echo/Echo?limit=x", &echoFetcher{}, provider.Credentials{"echo_key": "k"}, http.StatusBadRequest},
		{"unknown provider", "/api/v1/nope/Echo?symbol=A", &echoFetcher{}, provider.Credentials{"echo_key": "k"}, http.StatusNotFound},
		{"unknown model", "/api/v1/echo/Nope?symbol=A", &echoFetcher{}, provider.Credentials{"echo_key": "k"}, http.StatusNotFound},
		{"empty", "/api/v1/echo/Echo?symbol=A", &echoFetcher{extractErr: provider.Empty("nothing")}, provider.Credentials{"echo_key": "k"}, http.StatusNotFound},
		{"missing credential", "/api/v1/echo/Echo?symbol=A", &echoFetcher{}, nil, http.StatusUnauthorized},
		{"unauthorized", "/api/v1/echo/Echo?symbol=A", &echoFetcher{extractErr: &provider.UnauthorizedError{Provider: "echo", Msg: "plan"}}, provider.Credentials{"echo_key": "k"}, http.StatusUnauthorized},
		{"transport", "/api/v1/echo/Echo?symbol=A", &echoFetcher{extractErr: &httpx.TransportError{Method: http.MethodGet, Status: 500}}, provider.Credentials{"echo_key": "k"}, http.StatusBadGateway},
		{"other", "/api/v1/echo/Echo?symbol=A", &echoFetcher{extractErr: errors.New("boom")}, provider.Credentials{"echo_key": "k"}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newAPI(t, tt.f, tt.creds)
			rr := httptest.NewRecorder()

			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.target, nil))

			require.Equal(t, tt.want, rr.Code, rr.Body.String())
			var resp map[string]any
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			require.NotEmpty(t, resp["error"])
		})
	}
}

func TestValidationErrorListsFields(t *testing.T) {
	t.Parallel()

	h := newAPI(t, &echoFetcher{}, provider.Credentials{"echo_key": "k"})
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/echo/Echo", nil))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), `"field":"symbol"`)
}

func TestProvidersListing(t *testing.T) {
	t.Parallel()

	h := newAPI(t, &echoFetcher{}, nil)
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/providers", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"providers":[{"name":"echo","description":"","website":"","credentials":["echo_key"],"models":["Echo"]}]}`, rr.Body.String())
}

func TestXLSXFormat(t *testing.T) {
	t.Parallel()

	h := newAPI(t, &echoFetcher{}, provider.Credentials{"echo_key": "k"})
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/echo/Echo?symbol=A&format=xlsx", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, xlsxContentType, rr.Header().Get("Content-Type"))
	require.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("PK")))
}

func TestRecoverPanic(t *testing.T) {
	t.Parallel()

	h := recoverPanic(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
}
