package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komsit37/sfa/pkg/sfa/fetch"
	"github.com/komsit37/sfa/pkg/sfa/pipeline"
	"github.com/komsit37/sfa/pkg/sfa/screen"
	"github.com/komsit37/sfa/pkg/sfa/types"
)

type stubFetcher map[string]types.RawFundamentals

func (s stubFetcher) Fetch(_ context.Context, sym string) (types.RawFundamentals, error) {
	raw, ok := s[sym]
	if !ok {
		return nil, fmt.Errorf("fetch %s: %w", sym, fetch.ErrNoData)
	}
	return raw, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	f := stubFetcher{
		"GOOD": {
			"longName":               "Good, Corp.",
			"marketCap":              1.5e10,
			"currentPrice":           12.5,
			"netIncomeToCommon":      100.0,
			"totalStockholderEquity": 500.0,
			"totalAssets":            1000.0,
			"totalDebt":              200.0,
		},
		"WEAK": {
			"marketCap":              1.5e10,
			"returnOnEquity":         0.30,
			"debtToEquity":           40.0,
			"netIncomeToCommon":      10.0,
			"totalStockholderEquity": 500.0,
			"totalAssets":            1000.0,
			"totalDebt":              200.0,
		},
	}
	runner := &pipeline.Runner{Fetcher: f, Log: zerolog.Nop()}
	crit := screen.Criteria{MinROE: 15, MaxDebtEquity: 1, MinMarketCap: 1000, Unit: screen.Crore}
	ts := httptest.NewServer(New(runner, types.Strict, crit, screen.Derived, zerolog.Nop()).Routes())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, ts *httptest.Server, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	resp, body := get(t, ts, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestFundamentals(t *testing.T) {
	ts := newTestServer(t)

	resp, body := get(t, ts, "/api/fundamentals/good")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got map[string]any
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "GOOD", got["symbol"])
	derived := got["derived"].(map[string]any)
	assert.InDelta(t, 0.2, derived["returnOnEquity"], 1e-12)
	assert.InDelta(t, 0.1, derived["returnOnAssets"], 1e-12)
	assert.InDelta(t, 0.4, derived["debtToEquity"], 1e-12)

	resp, body = get(t, ts, "/api/fundamentals/NOPE")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Contains(t, got["error"], "no data returned")
}

func TestScreen(t *testing.T) {
	ts := newTestServer(t)

	t.Run("defaults", func(t *testing.T) {
		resp, body := get(t, ts, "/api/screen?symbols=GOOD,WEAK,NOPE")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var got struct {
			Policy  string `json:"policy"`
			Results []struct {
				Symbol   string `json:"symbol"`
				Included *bool  `json:"included"`
				Error    string `json:"error"`
			} `json:"results"`
		}
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, "strict", got.Policy)
		require.Len(t, got.Results, 3)
		assert.True(t, *got.Results[0].Included)
		assert.False(t, *got.Results[1].Included)
		assert.Nil(t, got.Results[2].Included)
		assert.NotEmpty(t, got.Results[2].Error)
	})

	t.Run("overrides", func(t *testing.T) {
		resp, body := get(t, ts, "/api/screen?symbols=GOOD&symbols=WEAK&min_roe=1&only_included=true")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var got struct {
			Criteria screen.Criteria `json:"criteria"`
			Results  []struct {
				Symbol string `json:"symbol"`
			} `json:"results"`
		}
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, 1.0, got.Criteria.MinROE)
		assert.Equal(t, screen.Crore, got.Criteria.Unit)
		assert.Len(t, got.Results, 2)
	})

	t.Run("market cap unit", func(t *testing.T) {
		_, body := get(t, ts, "/api/screen?symbols=GOOD&min_mcap=20&unit=bn&only_included=1")
		var got struct {
			Results []any `json:"results"`
		}
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Empty(t, got.Results)
	})

	t.Run("reported basis", func(t *testing.T) {
		resp, body := get(t, ts, "/api/screen?symbols=WEAK&on=reported")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var got struct {
			On      screen.Basis `json:"on"`
			Results []struct {
				Included *bool `json:"included"`
			} `json:"results"`
		}
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, screen.Reported, got.On)
		require.Len(t, got.Results, 1)
		assert.True(t, *got.Results[0].Included)
	})

	bad := []string{
		"/api/screen",
		"/api/screen?symbols=GOOD&min_roe=abc",
		"/api/screen?symbols=GOOD&min_roe=NaN",
		"/api/screen?symbols=GOOD&max_de=Inf",
		"/api/screen?symbols=GOOD&min_mcap=-Inf",
		"/api/screen?symbols=GOOD&on=statements",
		"/api/screen?symbols=GOOD&unit=furlong",
		"/api/screen?symbols=GOOD&policy=lenient",
	}
	for _, path := range bad {
		t.Run(path, func(t *testing.T) {
			resp, body := get(t, ts, path)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, string(body), `"error"`)
		})
	}
}

func TestExport(t *testing.T) {
	ts := newTestServer(t)

	resp, body := get(t, ts, "/api/export/GOOD.csv")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "GOOD_fundamentals.csv")
	assert.Equal(t,
		"Symbol,Name,Price,PE Ratio,EPS,Revenue,Net Income,ROE,ROA,Debt/Equity\n"+
			"GOOD,\"Good, Corp.\",12.5,N/A,N/A,N/A,100,0.2,0.1,0.4\n",
		string(body))

	resp, _ = get(t, ts, "/api/export/GOOD.json")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = get(t, ts, "/api/export/NOPE.csv")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
