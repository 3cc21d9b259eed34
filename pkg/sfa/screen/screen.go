// Package screen decides whether a symbol meets threshold criteria.
package screen

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/komsit37/sfa/pkg/sfa/types"
)

// Unit is the currency unit MinMarketCap is expressed in.
type Unit string

const (
	One      Unit = "one"
	Thousand Unit = "thousand"
	Lakh     Unit = "lakh"
	Million  Unit = "million"
	Crore    Unit = "crore"
	Billion  Unit = "billion"
)

var unitFactors = map[Unit]decimal.Decimal{
	One:      decimal.NewFromInt(1),
	Thousand: decimal.NewFromInt(1_000),
	Lakh:     decimal.NewFromInt(100_000),
	Million:  decimal.NewFromInt(1_000_000),
	Crore:    decimal.NewFromInt(10_000_000),
	Billion:  decimal.NewFromInt(1_000_000_000),
}

var unitAliases = map[string]Unit{
	"":   One,
	"1":  One,
	"k":  Thousand,
	"l":  Lakh,
	"m":  Million,
	"mn": Million,
	"cr": Crore,
	"b":  Billion,
	"bn": Billion,
}

// UnknownUnitError reports an unrecognised unit name.
type UnknownUnitError struct {
	Name      string
	Available []string
}

func (e *UnknownUnitError) Error() string {
	return "unknown market cap unit: " + e.Name + "; available: " + strings.Join(e.Available, ", ")
}

// ParseUnit accepts a unit name or short alias (cr, mn, bn, ...).
func ParseUnit(s string) (Unit, error) {
	k := strings.ToLower(strings.TrimSpace(s))
	if u, ok := unitAliases[k]; ok {
		return u, nil
	}
	if _, ok := unitFactors[Unit(k)]; ok {
		return Unit(k), nil
	}
	names := make([]string, 0, len(unitFactors))
	for u := range unitFactors {
		names = append(names, string(u))
	}
	sort.Strings(names)
	return "", &UnknownUnitError{Name: s, Available: names}
}

// Factor is the number of base currency units in one u. Unknown or empty
// units count as One.
func (u Unit) Factor() decimal.Decimal {
	if f, ok := unitFactors[u]; ok {
		return f
	}
	return unitFactors[One]
}

// Convert expresses amount (in base currency units) in u.
func (u Unit) Convert(amount float64) decimal.Decimal {
	return decimal.NewFromFloat(amount).Div(u.Factor())
}

// Criteria are the thresholds for one screening run. Criteria is a value
// type; pass it by value.
type Criteria struct {
	MinROE        float64 `json:"minROE"`        // percent, e.g. 15 for 15%
	MaxDebtEquity float64 `json:"maxDebtEquity"` // ratio, e.g. 1.0
	MinMarketCap  float64 `json:"minMarketCap"`  // in Unit
	Unit          Unit    `json:"unit"`
}

// Validate reports thresholds that are NaN or infinite.
func (c Criteria) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"min ROE", c.MinROE},
		{"max debt/equity", c.MaxDebtEquity},
		{"min market cap", c.MinMarketCap},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%s must be a finite number, got %v", f.name, f.v)
		}
	}
	return nil
}

// Basis selects which metrics a screen compares against the criteria.
type Basis string

const (
	// Derived screens on ratios computed from the statements.
	Derived Basis = "derived"
	// Reported screens on the provider's own returnOnEquity and debtToEquity.
	Reported Basis = "reported"
)

// ParseBasis accepts "derived" (the default when empty) or "reported".
func ParseBasis(s string) (Basis, error) {
	switch b := Basis(strings.ToLower(strings.TrimSpace(s))); b {
	case "", Derived:
		return Derived, nil
	case Reported:
		return Reported, nil
	default:
		return "", fmt.Errorf("unknown screen basis %q (allowed: derived, reported)", s)
	}
}

// Input picks the screen input for b.
func (b Basis) Input(raw types.RawFundamentals, d types.DerivedMetrics) Input {
	if b == Reported {
		return InputFromRaw(raw)
	}
	return InputFromDerived(raw, d)
}

// Input is the subset of metrics the screen looks at. ReturnOnEquity is a
// fraction (0.2 for 20%); MarketCap is in base currency units.
type Input struct {
	ReturnOnEquity types.Metric
	DebtToEquity   types.Metric
	MarketCap      types.Metric
}

// InputFromDerived screens on computed ratios and the raw market cap.
func InputFromDerived(raw types.RawFundamentals, d types.DerivedMetrics) Input {
	return Input{
		ReturnOnEquity: d.ReturnOnEquity,
		DebtToEquity:   d.DebtToEquity,
		MarketCap:      rawMetric(raw, "marketCap", 1),
	}
}

// InputFromRaw screens on the provider's own returnOnEquity and
// debtToEquity. Yahoo reports debtToEquity as a percentage, so it is scaled
// down to a ratio.
func InputFromRaw(raw types.RawFundamentals) Input {
	return Input{
		ReturnOnEquity: rawMetric(raw, "returnOnEquity", 1),
		DebtToEquity:   rawMetric(raw, "debtToEquity", 0.01),
		MarketCap:      rawMetric(raw, "marketCap", 1),
	}
}

func rawMetric(raw types.RawFundamentals, key string, scale float64) types.Metric {
	v, st := raw.Number(key)
	if st != types.Numeric {
		return types.Undefined()
	}
	return types.Defined(v * scale)
}

// Evaluate returns true iff ROE (as a percent) >= MinROE, D/E <=
// MaxDebtEquity and market cap (in c.Unit) >= MinMarketCap.
//
// Under types.Legacy undefined inputs count as 0. Under types.Strict any
// undefined input excludes the symbol. A NaN or infinite threshold fails its
// predicate.
func Evaluate(in Input, c Criteria, p types.Policy) bool {
	roe, roeOK := value(in.ReturnOnEquity, p)
	de, deOK := value(in.DebtToEquity, p)
	mcap, mcapOK := value(in.MarketCap, p)
	minROE, minROEOK := threshold(c.MinROE)
	maxDE, maxDEOK := threshold(c.MaxDebtEquity)
	minMcap, minMcapOK := threshold(c.MinMarketCap)

	roePass := roeOK && minROEOK && roe.Mul(decimal.NewFromInt(100)).GreaterThanOrEqual(minROE)
	dePass := deOK && maxDEOK && de.LessThanOrEqual(maxDE)
	mcapPass := mcapOK && minMcapOK && mcap.GreaterThanOrEqual(minMcap.Mul(c.Unit.Factor()))
	return roePass && dePass && mcapPass
}

func threshold(v float64) (decimal.Decimal, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(v), true
}

func value(m types.Metric, p types.Policy) (decimal.Decimal, bool) {
	v, ok := m.Value()
	if !ok {
		if p == types.Legacy {
			return decimal.Zero, true
		}
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(v), true
}

// Result builds the ScreenResult for one symbol, screening on derived ratios.
func Result(symbol string, raw types.RawFundamentals, d types.DerivedMetrics, c Criteria, p types.Policy) types.ScreenResult {
	return ResultOn(Derived, symbol, raw, d, c, p)
}

// ResultOn is Result with an explicit Basis.
func ResultOn(b Basis, symbol string, raw types.RawFundamentals, d types.DerivedMetrics, c Criteria, p types.Policy) types.ScreenResult {
	return types.ScreenResult{
		Symbol:   symbol,
		Raw:      raw,
		Derived:  d,
		Included: Evaluate(b.Input(raw, d), c, p),
	}
}
