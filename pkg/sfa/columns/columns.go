package columns

import (
	"sort"
	"strings"

	"github.com/komsit37/sfa/pkg/sfa/types"
)

// Def describes one output column.
type Def struct {
	Key   string
	Label string
	// Right marks numeric columns that read best right-aligned.
	Right bool
	// Value renders the display form.
	Value func(r types.Report) string
	// Export renders the CSV form; nil falls back to Value.
	Export func(r types.Report) string
}

// Registry maps column keys to definitions.
var Registry = map[string]Def{}

func register(d Def) { Registry[d.Key] = d }

func init() {
	register(Def{Key: "sym", Label: "Symbol", Value: func(r types.Report) string { return r.Symbol }})
	register(Def{Key: "name", Label: "Name", Value: name})
	register(Def{Key: "sector", Label: "Sector", Value: text("sector")})
	register(Def{Key: "industry", Label: "Industry", Value: text("industry")})
	register(Def{Key: "summary", Label: "Description", Value: func(r types.Report) string {
		return r.Raw.TextOr("longBusinessSummary", "Not Available")
	}})

	// Money columns show $0 when absent, as the dashboard did.
	money(Def{Key: "mcap", Label: "Market Cap"}, "marketCap")
	money(Def{Key: "high52", Label: "52-Week High"}, "fiftyTwoWeekHigh")
	money(Def{Key: "low52", Label: "52-Week Low"}, "fiftyTwoWeekLow")
	money(Def{Key: "revenue", Label: "Revenue"}, "totalRevenue")
	money(Def{Key: "gross", Label: "Gross Profit"}, "grossProfits")
	money(Def{Key: "netincome", Label: "Net Income"}, "netIncomeToCommon")
	money(Def{Key: "target", Label: "Target Mean"}, "targetMeanPrice")
	money(Def{Key: "targetlow", Label: "Target Low"}, "targetLowPrice")
	money(Def{Key: "targethigh", Label: "Target High"}, "targetHighPrice")
	register(Def{Key: "price", Label: "Price", Right: true,
		Value:  func(r types.Report) string { return Money(price(r.Raw)) },
		Export: func(r types.Report) string { return exportPrice(r.Raw) },
	})

	number(Def{Key: "eps", Label: "EPS"}, "trailingEps")
	number(Def{Key: "pe", Label: "PE Ratio"}, "trailingPE")
	number(Def{Key: "divyield", Label: "Dividend Yield"}, "dividendYield")
	register(Def{Key: "reco", Label: "Recommendation", Value: text("recommendationKey")})

	register(Def{Key: "roe", Label: "ROE", Right: true,
		Value:  func(r types.Report) string { return Percent(r.Derived.ReturnOnEquity) },
		Export: func(r types.Report) string { return exportMetric(r.Derived.ReturnOnEquity) },
	})
	register(Def{Key: "roa", Label: "ROA", Right: true,
		Value:  func(r types.Report) string { return Percent(r.Derived.ReturnOnAssets) },
		Export: func(r types.Report) string { return exportMetric(r.Derived.ReturnOnAssets) },
	})
	register(Def{Key: "de", Label: "Debt/Equity", Right: true,
		Value:  func(r types.Report) string { return Ratio(r.Derived.DebtToEquity) },
		Export: func(r types.Report) string { return exportMetric(r.Derived.DebtToEquity) },
	})
	register(Def{Key: "yroe", Label: "ROE (reported)", Right: true, Value: func(r types.Report) string {
		return Percent(rawMetric(r.Raw, "returnOnEquity", 1))
	}})
	register(Def{Key: "yroa", Label: "ROA (reported)", Right: true, Value: func(r types.Report) string {
		return Percent(rawMetric(r.Raw, "returnOnAssets", 1))
	}})
	// Yahoo reports debtToEquity as a percentage.
	register(Def{Key: "yde", Label: "D/E (reported)", Right: true, Value: func(r types.Report) string {
		return Ratio(rawMetric(r.Raw, "debtToEquity", 0.01))
	}})

	register(Def{Key: "chg1y", Label: "1Y Chg%", Right: true, Value: func(r types.Report) string {
		if r.History == nil {
			return types.NotAvailable
		}
		v, ok := r.History.ChangePct.Value()
		if !ok {
			return types.NotAvailable
		}
		return Ratio(types.Defined(v)) + "%"
	}})
	register(Def{Key: "included", Label: "Included", Value: func(r types.Report) string {
		switch {
		case r.Err != nil:
			return "error"
		case r.Screen == nil:
			return ""
		case r.Screen.Included:
			return "yes"
		default:
			return "no"
		}
	}})
}

func money(d Def, field string) {
	d.Right = true
	d.Value = func(r types.Report) string { return rawMoney(r.Raw, field) }
	d.Export = func(r types.Report) string { return rawNumber(r.Raw, field) }
	register(d)
}

func number(d Def, field string) {
	d.Right = true
	d.Value = func(r types.Report) string { return rawNumber(r.Raw, field) }
	register(d)
}

func text(field string) func(types.Report) string {
	return func(r types.Report) string { return r.Raw.Text(field) }
}

func name(r types.Report) string {
	if n := r.Raw.TextOr("longName", ""); n != "" {
		return n
	}
	return r.Raw.Text("shortName")
}

// price prefers financialData.currentPrice, then the quote's market price.
func price(raw types.RawFundamentals) float64 {
	if v, st := raw.Number("currentPrice"); st == types.Numeric {
		return v
	}
	return raw.NumberOr("regularMarketPrice", 0)
}

func exportPrice(raw types.RawFundamentals) string {
	if raw.Has("currentPrice") {
		return rawNumber(raw, "currentPrice")
	}
	return rawNumber(raw, "regularMarketPrice")
}

func exportMetric(m types.Metric) string {
	v, ok := m.Value()
	if !ok {
		return types.NotAvailable
	}
	return Plain(v)
}

// Get returns the definition for key.
func Get(key string) (Def, bool) {
	d, ok := Registry[strings.ToLower(strings.TrimSpace(key))]
	return d, ok
}

// UnknownColumnError reports column keys missing from the registry.
type UnknownColumnError struct {
	Names     []string
	Available []string
}

func (e *UnknownColumnError) Error() string {
	return "unknown column: " + strings.Join(e.Names, ", ") + "; available: " + strings.Join(e.Available, ", ")
}

// Compute resolves the final column list: explicit keys when given (in
// order, de-duplicated), otherwise fallback. Unknown keys are an error.
func Compute(explicit []string, fallback []string) ([]Def, error) {
	keys := explicit
	if len(keys) == 0 {
		keys = fallback
	}
	seen := map[string]struct{}{}
	out := make([]Def, 0, len(keys))
	var unknown []string
	for _, k := range keys {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		d, ok := Registry[k]
		if !ok {
			unknown = append(unknown, k)
			continue
		}
		out = append(out, d)
	}
	if len(unknown) > 0 {
		return nil, &UnknownColumnError{Names: unknown, Available: Available()}
	}
	return out, nil
}

// Available lists registered column keys, sorted.
func Available() []string {
	keys := make([]string, 0, len(Registry))
	for k := range Registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Render returns the display value of d for r.
func (d Def) Render(r types.Report) string { return d.Value(r) }

// RenderExport returns the CSV value of d for r.
func (d Def) RenderExport(r types.Report) string {
	if d.Export != nil {
		return d.Export(r)
	}
	return d.Value(r)
}
