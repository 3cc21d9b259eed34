package fetch

import (
	"encoding/json"

	"github.com/komsit37/sfa/pkg/sfa/types"
)

// flatModules are quoteSummary modules whose fields are copied as-is.
var flatModules = []string{
	"price",
	"summaryDetail",
	"financialData",
	"defaultKeyStatistics",
	"assetProfile",
}

// statement lists a history module, the array holding its rows, and the
// fields taken from the most recent row.
type statement struct {
	module string
	rows   string
	fields []string
}

var statements = []statement{
	{
		module: "balanceSheetHistory",
		rows:   "balanceSheetStatements",
		fields: []string{"totalStockholderEquity", "totalAssets", "totalLiab"},
	},
	{
		module: "incomeStatementHistory",
		rows:   "incomeStatementHistory",
		fields: []string{"totalRevenue", "grossProfit", "netIncome", "netIncomeApplicableToCommonShares"},
	},
}

// aliases fill a missing key from another key.
var aliases = []struct{ key, from string }{
	{"grossProfits", "grossProfit"},
	{"grossProfit", "grossProfits"},
	{"netIncomeToCommon", "netIncomeApplicableToCommonShares"},
	{"netIncomeToCommon", "netIncome"},
}

// Flatten turns a quoteSummary result (as returned by yfgo.API.QuoteSummary)
// into a flat field map. Yahoo number objects ({"raw": .., "fmt": ..})
// collapse to their raw value; empty objects are treated as absent.
func Flatten(result any) types.RawFundamentals {
	root, ok := result.(map[string]any)
	if !ok {
		return types.RawFundamentals{}
	}
	out := types.RawFundamentals{}
	for _, name := range flatModules {
		mod, ok := root[name].(map[string]any)
		if !ok {
			continue
		}
		for k, v := range mod {
			if out.Has(k) {
				continue
			}
			if sv, ok := scalar(v); ok {
				out[k] = sv
			}
		}
	}
	for _, st := range statements {
		row := latestRow(root, st)
		if row == nil {
			continue
		}
		for _, k := range st.fields {
			if out.Has(k) {
				continue
			}
			if sv, ok := scalar(row[k]); ok {
				out[k] = sv
			}
		}
	}
	for _, a := range aliases {
		if !out.Has(a.key) && out.Has(a.from) {
			out[a.key] = out[a.from]
		}
	}
	return out
}

func latestRow(root map[string]any, st statement) map[string]any {
	mod, ok := root[st.module].(map[string]any)
	if !ok {
		return nil
	}
	rows, ok := mod[st.rows].([]any)
	if !ok || len(rows) == 0 {
		return nil
	}
	row, _ := rows[0].(map[string]any)
	return row
}

// scalar reduces a Yahoo value to a number or string.
func scalar(v any) (any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case string:
		if t == "" {
			return nil, false
		}
		return t, true
	case float64, bool, int, int64:
		return t, true
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f, true
		}
		return nil, false
	case map[string]any:
		raw, ok := t["raw"]
		if !ok || raw == nil {
			return nil, false
		}
		return scalar(raw)
	default:
		return nil, false
	}
}
