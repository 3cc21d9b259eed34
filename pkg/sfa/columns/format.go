package columns

import (
	"math"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/komsit37/sfa/pkg/sfa/types"
)

// Money formats v as a currency amount: whole values with thousand
// separators, fractional values with two decimals.
func Money(v float64) string {
	if v < 0 {
		return "-" + Money(-v)
	}
	if v < 1e18 && v == math.Trunc(v) {
		return "$" + humanize.Comma(int64(v))
	}
	return "$" + humanize.FormatFloat("#,###.##", v)
}

// Percent formats a fraction as a percentage with two decimals.
func Percent(m types.Metric) string {
	v, ok := m.Value()
	if !ok {
		return types.NotAvailable
	}
	return strconv.FormatFloat(v*100, 'f', 2, 64) + "%"
}

// Ratio formats a plain ratio with two decimals.
func Ratio(m types.Metric) string {
	v, ok := m.Value()
	if !ok {
		return types.NotAvailable
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Plain formats v with the fewest digits needed.
func Plain(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// rawNumber returns the field as a plain number or NotAvailable.
func rawNumber(raw types.RawFundamentals, key string) string {
	v, st := raw.Number(key)
	if st != types.Numeric {
		return types.NotAvailable
	}
	return Plain(v)
}

// rawMoney returns the field as money, treating absence as zero.
func rawMoney(raw types.RawFundamentals, key string) string {
	return Money(raw.NumberOr(key, 0))
}

// rawMetric reports the field as a Metric scaled by scale.
func rawMetric(raw types.RawFundamentals, key string, scale float64) types.Metric {
	v, st := raw.Number(key)
	if st != types.Numeric {
		return types.Undefined()
	}
	return types.Defined(v * scale)
}
