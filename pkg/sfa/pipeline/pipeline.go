package pipeline

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/komsit37/sfa/pkg/sfa/fetch"
	"github.com/komsit37/sfa/pkg/sfa/filter"
	"github.com/komsit37/sfa/pkg/sfa/ratios"
	"github.com/komsit37/sfa/pkg/sfa/screen"
	"github.com/komsit37/sfa/pkg/sfa/types"
)

// Runner fetches, derives and optionally screens each symbol in turn.
type Runner struct {
	Fetcher fetch.Fetcher
	// History is optional; when nil, price history is never loaded.
	History fetch.HistoryFetcher
	Log     zerolog.Logger
}

type Options struct {
	Policy types.Policy
	// Criteria enables screening when non-nil.
	Criteria *screen.Criteria
	// ScreenOn picks derived or reported ratios; empty means derived.
	ScreenOn screen.Basis
	// OnlyIncluded drops reports that failed screening or fetching.
	OnlyIncluded   bool
	IncludeHistory bool
	Sector         filter.Filter
	Industry       filter.Filter
}

// Run processes symbols sequentially in the given order. A failure for one
// symbol is recorded on its Report and does not stop the others. Run only
// returns early when ctx is cancelled.
func (r *Runner) Run(ctx context.Context, symbols []string, opts Options) ([]types.Report, error) {
	out := make([]types.Report, 0, len(symbols))
	var err error
	for _, sym := range symbols {
		if err = ctx.Err(); err != nil {
			break
		}
		rep := r.one(ctx, sym, opts)
		if rep.Err == nil && !matches(rep, opts) {
			r.Log.Debug().Str("symbol", sym).Msg("skipped by sector/industry filter")
			continue
		}
		out = append(out, rep)
	}
	if opts.OnlyIncluded {
		out = Included(out)
	}
	return out, err
}

// Included returns the reports that passed the screen, in order.
func Included(reps []types.Report) []types.Report {
	out := make([]types.Report, 0, len(reps))
	for _, rep := range reps {
		if rep.Included() {
			out = append(out, rep)
		}
	}
	return out
}

func (r *Runner) one(ctx context.Context, sym string, opts Options) types.Report {
	rep := types.Report{Symbol: sym}
	raw, err := r.Fetcher.Fetch(ctx, sym)
	if err != nil {
		rep.Err = err
		ev := r.Log.Warn()
		if errors.Is(err, context.Canceled) {
			ev = r.Log.Debug()
		}
		ev.Err(err).Str("symbol", sym).Msg("fetch failed")
		return rep
	}
	rep.Raw = raw
	rep.Derived = ratios.Calculate(raw, opts.Policy)

	if opts.Criteria != nil {
		res := screen.ResultOn(opts.ScreenOn, sym, raw, rep.Derived, *opts.Criteria, opts.Policy)
		rep.Screen = &res
	}

	if opts.IncludeHistory && r.History != nil {
		h, err := r.History.History(ctx, sym)
		if err != nil {
			r.Log.Warn().Err(err).Str("symbol", sym).Msg("history failed")
		} else {
			rep.History = &h
		}
	}

	r.Log.Debug().
		Str("symbol", sym).
		Stringer("roe", rep.Derived.ReturnOnEquity).
		Stringer("roa", rep.Derived.ReturnOnAssets).
		Stringer("de", rep.Derived.DebtToEquity).
		Bool("included", rep.Included()).
		Msg("processed")
	return rep
}

func matches(rep types.Report, opts Options) bool {
	if opts.Sector != nil && !opts.Sector.Match(rep.Raw.TextOr("sector", "")) {
		return false
	}
	if opts.Industry != nil && !opts.Industry.Match(rep.Raw.TextOr("industry", "")) {
		return false
	}
	return true
}
