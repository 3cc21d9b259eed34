package fetch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	yfgo "github.com/komsit37/yf-go"

	"github.com/komsit37/sfa/pkg/sfa/types"
)

var (
	ErrEmptySymbol = errors.New("empty symbol")
	ErrNoData      = errors.New("no data returned")
)

// Fetcher loads raw fundamentals for a symbol.
type Fetcher interface {
	Fetch(ctx context.Context, sym string) (types.RawFundamentals, error)
}

// HistoryFetcher loads a one-year daily close series for a symbol.
type HistoryFetcher interface {
	History(ctx context.Context, sym string) (types.PriceHistory, error)
}

// Modules requested from quoteSummary. Earlier modules win when two
// modules report the same field.
var Modules = []yfgo.QuoteSummaryModule{
	yfgo.ModulePrice,
	yfgo.ModuleSummaryDetail,
	yfgo.ModuleFinancialData,
	yfgo.ModuleDefaultKeyStatistics,
	yfgo.ModuleAssetProfile,
	yfgo.ModuleBalanceSheetHistory,
	yfgo.ModuleIncomeStatementHistory,
}

// YFFetcher implements Fetcher and HistoryFetcher using yf-go.
type YFFetcher struct {
	api     yfgo.API
	timeout time.Duration
}

func NewYFFetcher(api yfgo.API, timeout time.Duration) *YFFetcher {
	if api == nil {
		api = yfgo.DefaultAPI
	}
	return &YFFetcher{api: api, timeout: timeout}
}

func (f *YFFetcher) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, f.timeout)
}

func (f *YFFetcher) Fetch(ctx context.Context, sym string) (types.RawFundamentals, error) {
	sym = strings.TrimSpace(sym)
	if sym == "" {
		return nil, ErrEmptySymbol
	}
	cctx, cancel := f.withTimeout(ctx)
	defer cancel()
	res, err := f.api.QuoteSummary(cctx, sym, Modules)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", sym, err)
	}
	raw := Flatten(res)
	if len(raw) == 0 {
		return nil, fmt.Errorf("fetch %s: %w", sym, ErrNoData)
	}
	return raw, nil
}

func (f *YFFetcher) History(ctx context.Context, sym string) (types.PriceHistory, error) {
	sym = strings.TrimSpace(sym)
	if sym == "" {
		return types.PriceHistory{}, ErrEmptySymbol
	}
	cctx, cancel := f.withTimeout(ctx)
	defer cancel()
	res, err := f.api.ChartTyped(cctx, sym, yfgo.ChartOptions{Range: "1y", Interval: "1d"})
	if err != nil {
		return types.PriceHistory{}, fmt.Errorf("history %s: %w", sym, err)
	}
	h := Summarize(res)
	if len(h.Points) == 0 {
		return types.PriceHistory{}, fmt.Errorf("history %s: %w", sym, ErrNoData)
	}
	return h, nil
}

// Summarize converts a chart response into a PriceHistory. Missing closes
// are skipped.
func Summarize(res yfgo.ChartResult) types.PriceHistory {
	var h types.PriceHistory
	if len(res.Indicators.Quote) == 0 {
		return h
	}
	closes := res.Indicators.Quote[0].Close
	for i, ts := range res.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		c := *closes[i]
		h.Points = append(h.Points, types.PricePoint{Date: time.Unix(ts, 0).UTC(), Close: c})
		if len(h.Points) == 1 || c > h.High {
			h.High = c
		}
		if len(h.Points) == 1 || c < h.Low {
			h.Low = c
		}
	}
	if len(h.Points) == 0 {
		return h
	}
	h.First = h.Points[0].Close
	h.Last = h.Points[len(h.Points)-1].Close
	if h.First != 0 {
		h.ChangePct = types.Defined((h.Last - h.First) / h.First * 100)
	}
	return h
}
