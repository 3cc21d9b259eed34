// Package ratios derives return on equity, return on assets and debt to
// equity from raw fundamentals.
package ratios

import (
	"math"

	"github.com/komsit37/sfa/pkg/sfa/types"
)

// Field names read by Calculate.
const (
	NetIncome = "netIncomeToCommon"
	Equity    = "totalStockholderEquity"
	Assets    = "totalAssets"
	Debt      = "totalDebt"
)

// Calculate computes the derived ratios. The result is all-or-nothing: if
// any division is not meaningful, all three ratios are Undefined.
//
// Under types.Legacy a missing numerator counts as 0 and a missing
// denominator as 1. Under types.Strict any missing field yields Undefined.
// A field that is present but not numeric always yields Undefined.
func Calculate(raw types.RawFundamentals, p types.Policy) types.DerivedMetrics {
	income, ok := operand(raw, NetIncome, 0, p)
	if !ok {
		return types.UndefinedMetrics()
	}
	equity, ok := operand(raw, Equity, 1, p)
	if !ok {
		return types.UndefinedMetrics()
	}
	assets, ok := operand(raw, Assets, 1, p)
	if !ok {
		return types.UndefinedMetrics()
	}
	debt, ok := operand(raw, Debt, 0, p)
	if !ok {
		return types.UndefinedMetrics()
	}
	if equity == 0 || assets == 0 {
		return types.UndefinedMetrics()
	}

	roe := income / equity
	roa := income / assets
	de := debt / equity
	if !finite(roe) || !finite(roa) || !finite(de) {
		return types.UndefinedMetrics()
	}
	return types.DerivedMetrics{
		ReturnOnEquity: types.Defined(roe),
		ReturnOnAssets: types.Defined(roa),
		DebtToEquity:   types.Defined(de),
	}
}

func operand(raw types.RawFundamentals, key string, def float64, p types.Policy) (float64, bool) {
	v, st := raw.Number(key)
	switch st {
	case types.Numeric:
		return v, true
	case types.Missing:
		if p == types.Legacy {
			return def, true
		}
	}
	return 0, false
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
