package screen

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komsit37/sfa/pkg/sfa/types"
)

const crore = 10_000_000

var baseCriteria = Criteria{MinROE: 15, MaxDebtEquity: 1.0, MinMarketCap: 1000, Unit: Crore}

func input(roe, de, mcap float64) Input {
	return Input{
		ReturnOnEquity: types.Defined(roe),
		DebtToEquity:   types.Defined(de),
		MarketCap:      types.Defined(mcap),
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want bool
	}{
		{name: "all thresholds met", in: input(0.20, 0.4, 1500*crore), want: true},
		{name: "roe below threshold", in: input(0.10, 0.4, 1500*crore), want: false},
		{name: "debt equity above threshold", in: input(0.20, 1.2, 1500*crore), want: false},
		{name: "market cap below threshold", in: input(0.20, 0.4, 900*crore), want: false},
		{name: "roe exactly at threshold", in: input(0.15, 0.4, 1500*crore), want: true},
		{name: "debt equity exactly at threshold", in: input(0.20, 1.0, 1500*crore), want: true},
		{name: "market cap exactly at threshold", in: input(0.20, 0.4, 1000*crore), want: true},
		{name: "negative roe", in: input(-0.05, 0.1, 1500*crore), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, p := range []types.Policy{types.Strict, types.Legacy} {
				assert.Equal(t, tt.want, Evaluate(tt.in, baseCriteria, p), "policy %s", p)
			}
		})
	}
}

func TestEvaluateMissingInputs(t *testing.T) {
	c := Criteria{MinROE: 0, MaxDebtEquity: 1.0, MinMarketCap: 0, Unit: One}

	t.Run("legacy treats missing as zero", func(t *testing.T) {
		assert.True(t, Evaluate(Input{}, c, types.Legacy))
		missingDE := Input{ReturnOnEquity: types.Defined(0.3), MarketCap: types.Defined(5e10)}
		assert.True(t, Evaluate(missingDE, baseCriteria, types.Legacy))
		missingROE := Input{DebtToEquity: types.Defined(0.3), MarketCap: types.Defined(5e10)}
		assert.False(t, Evaluate(missingROE, baseCriteria, types.Legacy))
	})

	t.Run("strict excludes missing", func(t *testing.T) {
		assert.False(t, Evaluate(Input{}, c, types.Strict))
		missingDE := Input{ReturnOnEquity: types.Defined(0.3), MarketCap: types.Defined(5e10)}
		assert.False(t, Evaluate(missingDE, baseCriteria, types.Strict))
	})
}

func TestEvaluateMonotonicInMinROE(t *testing.T) {
	inputs := []Input{
		input(0.05, 0.2, 2000*crore),
		input(0.18, 0.9, 1200*crore),
		input(0.31, 0.1, 800*crore),
		{DebtToEquity: types.Defined(0.5), MarketCap: types.Defined(3000 * crore)},
	}
	for _, in := range inputs {
		for _, p := range []types.Policy{types.Strict, types.Legacy} {
			prev := true
			for minROE := -10.0; minROE <= 40; minROE += 2.5 {
				c := baseCriteria
				c.MinROE = minROE
				got := Evaluate(in, c, p)
				if !prev {
					assert.False(t, got, "excluded record became included at minROE=%v", minROE)
				}
				prev = got
			}
		}
	}
}

func TestEvaluateIndependentOfOrder(t *testing.T) {
	symbols := map[string]Input{
		"AAA": input(0.20, 0.4, 1500*crore),
		"BBB": input(0.10, 0.4, 1500*crore),
		"CCC": input(0.25, 2.0, 5000*crore),
		"DDD": input(0.16, 0.7, 1001*crore),
	}
	forward := []string{"AAA", "BBB", "CCC", "DDD"}
	reverse := []string{"DDD", "CCC", "BBB", "AAA"}

	decide := func(order []string) map[string]bool {
		out := map[string]bool{}
		for _, s := range order {
			out[s] = Evaluate(symbols[s], baseCriteria, types.Strict)
		}
		return out
	}
	assert.Equal(t, decide(forward), decide(reverse))
}

func TestInputFromRaw(t *testing.T) {
	raw := types.RawFundamentals{
		"returnOnEquity": 0.2,
		"debtToEquity":   40.0,
		"marketCap":      int64(15_000_000_000),
	}
	in := InputFromRaw(raw)
	de, ok := in.DebtToEquity.Value()
	require.True(t, ok)
	assert.InDelta(t, 0.4, de, 1e-12)
	assert.True(t, Evaluate(in, baseCriteria, types.Strict))

	empty := InputFromRaw(types.RawFundamentals{"marketCap": "big"})
	assert.False(t, empty.MarketCap.IsDefined())
}

func TestResult(t *testing.T) {
	raw := types.RawFundamentals{"marketCap": 1500.0 * crore}
	d := types.DerivedMetrics{
		ReturnOnEquity: types.Defined(0.20),
		ReturnOnAssets: types.Defined(0.10),
		DebtToEquity:   types.Defined(0.40),
	}
	res := Result("TCS.NS", raw, d, baseCriteria, types.Strict)
	assert.Equal(t, "TCS.NS", res.Symbol)
	assert.True(t, res.Included)

	d.ReturnOnEquity = types.Defined(0.10)
	assert.False(t, Result("TCS.NS", raw, d, baseCriteria, types.Strict).Included)
}

func TestResultOnReported(t *testing.T) {
	raw := types.RawFundamentals{
		"returnOnEquity": 0.25,
		"debtToEquity":   30.0,
		"marketCap":      1500.0 * crore,
	}
	d := types.DerivedMetrics{
		ReturnOnEquity: types.Defined(0.05),
		DebtToEquity:   types.Defined(0.30),
	}
	assert.False(t, ResultOn(Derived, "X", raw, d, baseCriteria, types.Strict).Included)
	assert.True(t, ResultOn(Reported, "X", raw, d, baseCriteria, types.Strict).Included)
}

func TestParseBasis(t *testing.T) {
	tests := []struct {
		in      string
		want    Basis
		wantErr bool
	}{
		{in: "", want: Derived},
		{in: "derived", want: Derived},
		{in: " Reported ", want: Reported},
		{in: "statements", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBasis(tt.in)
			if tt.wantErr {
				assert.ErrorContains(t, err, "unknown screen basis")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNonFiniteCriteria(t *testing.T) {
	good := input(0.20, 0.4, 1500*crore)
	tests := []struct {
		name  string
		edit  func(*Criteria)
		field string
	}{
		{name: "nan min roe", edit: func(c *Criteria) { c.MinROE = math.NaN() }, field: "min ROE"},
		{name: "inf max de", edit: func(c *Criteria) { c.MaxDebtEquity = math.Inf(1) }, field: "max debt/equity"},
		{name: "negative inf min mcap", edit: func(c *Criteria) { c.MinMarketCap = math.Inf(-1) }, field: "min market cap"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := baseCriteria
			tt.edit(&c)
			assert.ErrorContains(t, c.Validate(), tt.field)
			for _, p := range []types.Policy{types.Strict, types.Legacy} {
				assert.NotPanics(t, func() { assert.False(t, Evaluate(good, c, p)) })
			}
		})
	}
	assert.NoError(t, baseCriteria.Validate())
}

func TestParseUnit(t *testing.T) {
	for in, want := range map[string]Unit{"cr": Crore, "Crore": Crore, "": One, "bn": Billion, "lakh": Lakh} {
		got, err := ParseUnit(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseUnit("furlong")
	var ue *UnknownUnitError
	require.ErrorAs(t, err, &ue)
	assert.Contains(t, ue.Error(), "crore")
}

func TestUnitConvert(t *testing.T) {
	assert.Equal(t, "1500", Crore.Convert(1500*crore).String())
	assert.Equal(t, "15", Billion.Convert(1.5e10).String())
}
