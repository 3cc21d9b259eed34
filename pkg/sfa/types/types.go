package types

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// NotAvailable is shown for text fields the data source did not return.
const NotAvailable = "N/A"

// RawFundamentals is a symbol's field map as returned by the data source.
// Values are float64, int, int64, json.Number, string or nil. No key is
// guaranteed to be present.
type RawFundamentals map[string]any

// NumberState describes what Number found for a key.
type NumberState int

const (
	Missing NumberState = iota
	Numeric
	NonNumeric
)

func (s NumberState) String() string {
	switch s {
	case Missing:
		return "missing"
	case Numeric:
		return "numeric"
	default:
		return "non-numeric"
	}
}

// Number returns the numeric value stored under key. Strings are reported
// as NonNumeric even when they look like numbers.
func (r RawFundamentals) Number(key string) (float64, NumberState) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, Missing
	}
	switch n := v.(type) {
	case float64:
		return n, Numeric
	case float32:
		return float64(n), Numeric
	case int:
		return float64(n), Numeric
	case int64:
		return float64(n), Numeric
	case int32:
		return float64(n), Numeric
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, NonNumeric
		}
		return f, Numeric
	default:
		return 0, NonNumeric
	}
}

// NumberOr returns the numeric value under key or def when it is absent or
// not a number.
func (r RawFundamentals) NumberOr(key string, def float64) float64 {
	if v, st := r.Number(key); st == Numeric {
		return v
	}
	return def
}

// Text returns the value under key as a string, or NotAvailable.
func (r RawFundamentals) Text(key string) string {
	return r.TextOr(key, NotAvailable)
}

// TextOr returns the value under key as a string, or def.
func (r RawFundamentals) TextOr(key, def string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return def
	}
	s := strings.TrimSpace(fmt.Sprint(v))
	if s == "" {
		return def
	}
	return s
}

// Has reports whether key holds a non-nil value.
func (r RawFundamentals) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// Metric is either a defined finite value or Undefined. The zero value is
// Undefined.
type Metric struct {
	value   float64
	defined bool
}

// Defined wraps a finite value. Non-finite values become Undefined.
func Defined(v float64) Metric {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Metric{}
	}
	return Metric{value: v, defined: true}
}

// Undefined is the marker for a metric that could not be computed.
func Undefined() Metric { return Metric{} }

func (m Metric) IsDefined() bool { return m.defined }

// Value returns the value and whether it is defined.
func (m Metric) Value() (float64, bool) { return m.value, m.defined }

// Or returns the value, or def when undefined.
func (m Metric) Or(def float64) float64 {
	if !m.defined {
		return def
	}
	return m.value
}

func (m Metric) String() string {
	if !m.defined {
		return "undefined"
	}
	return fmt.Sprintf("%g", m.value)
}

func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.defined {
		return []byte("null"), nil
	}
	return json.Marshal(m.value)
}

func (m *Metric) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*m = Undefined()
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*m = Defined(v)
	return nil
}

// DerivedMetrics holds the ratios computed from RawFundamentals.
type DerivedMetrics struct {
	ReturnOnEquity Metric `json:"returnOnEquity"`
	ReturnOnAssets Metric `json:"returnOnAssets"`
	DebtToEquity   Metric `json:"debtToEquity"`
}

// UndefinedMetrics has all three ratios Undefined.
func UndefinedMetrics() DerivedMetrics { return DerivedMetrics{} }

// Policy selects how missing fields are treated by the ratio and screen
// computations.
type Policy int

const (
	// Strict treats any missing required field as Undefined.
	Strict Policy = iota
	// Legacy substitutes 0 for missing numerators and 1 for missing
	// denominators, and 0 for missing screen inputs.
	Legacy
)

func (p Policy) String() string {
	if p == Legacy {
		return "legacy"
	}
	return "strict"
}

// ParsePolicy accepts "strict" or "legacy".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return Strict, nil
	case "legacy":
		return Legacy, nil
	}
	return Strict, fmt.Errorf("unknown policy %q (allowed: strict, legacy)", s)
}

// ScreenResult is the screening outcome for one symbol.
type ScreenResult struct {
	Symbol   string          `json:"symbol"`
	Raw      RawFundamentals `json:"-"`
	Derived  DerivedMetrics  `json:"derived"`
	Included bool            `json:"included"`
}

// PricePoint is one daily close.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceHistory summarises a one-year daily close series.
type PriceHistory struct {
	Points    []PricePoint `json:"points,omitempty"`
	First     float64      `json:"first"`
	Last      float64      `json:"last"`
	High      float64      `json:"high"`
	Low       float64      `json:"low"`
	ChangePct Metric       `json:"changePct"`
}

// Report is everything gathered for one requested symbol.
type Report struct {
	Symbol  string
	Raw     RawFundamentals
	Derived DerivedMetrics
	Screen  *ScreenResult
	History *PriceHistory
	Err     error
}

// Included reports whether the symbol passed screening. Reports produced
// without screening count as included unless they failed.
func (r Report) Included() bool {
	if r.Err != nil {
		return false
	}
	if r.Screen == nil {
		return true
	}
	return r.Screen.Included
}
