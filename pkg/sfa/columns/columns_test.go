package columns

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komsit37/sfa/pkg/sfa/types"
)

func sampleReport() types.Report {
	return types.Report{
		Symbol: "AAPL",
		Raw: types.RawFundamentals{
			"longName":          "Apple Inc.",
			"sector":            "Technology",
			"marketCap":         3000000000000.0,
			"currentPrice":      190.5,
			"trailingPE":        29.8,
			"totalRevenue":      383285000000.0,
			"netIncomeToCommon": 96995000000.0,
			"returnOnEquity":    1.5608,
			"debtToEquity":      181.3,
		},
		Derived: types.DerivedMetrics{
			ReturnOnEquity: types.Defined(0.2),
			ReturnOnAssets: types.Defined(0.1),
			DebtToEquity:   types.Defined(0.4),
		},
	}
}

func render(t *testing.T, key string, r types.Report) string {
	t.Helper()
	d, ok := Get(key)
	require.True(t, ok, key)
	return d.Render(r)
}

func TestRenderValues(t *testing.T) {
	r := sampleReport()
	tests := []struct {
		key  string
		want string
	}{
		{"sym", "AAPL"},
		{"name", "Apple Inc."},
		{"sector", "Technology"},
		{"industry", "N/A"},
		{"summary", "Not Available"},
		{"mcap", "$3,000,000,000,000"},
		{"price", "$190.50"},
		{"high52", "$0"},
		{"pe", "29.8"},
		{"eps", "N/A"},
		{"roe", "20.00%"},
		{"roa", "10.00%"},
		{"de", "0.40"},
		{"yroe", "156.08%"},
		{"yde", "1.81"},
		{"chg1y", "N/A"},
		{"included", ""},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, render(t, tt.key, r))
		})
	}
}

func TestRenderUndefinedAndScreen(t *testing.T) {
	r := sampleReport()
	r.Derived = types.UndefinedMetrics()
	r.Screen = &types.ScreenResult{Symbol: "AAPL", Included: true}
	r.History = &types.PriceHistory{ChangePct: types.Defined(-12.346)}

	assert.Equal(t, "N/A", render(t, "roe", r))
	assert.Equal(t, "N/A", render(t, "de", r))
	assert.Equal(t, "yes", render(t, "included", r))
	assert.Equal(t, "-12.35%", render(t, "chg1y", r))

	r.Err = errors.New("boom")
	assert.Equal(t, "error", render(t, "included", r))
}

func TestRenderExport(t *testing.T) {
	r := sampleReport()
	get := func(k string) string {
		d, ok := Get(k)
		require.True(t, ok)
		return d.RenderExport(r)
	}
	assert.Equal(t, "190.5", get("price"))
	assert.Equal(t, "383285000000", get("revenue"))
	assert.Equal(t, "N/A", get("eps"))
	assert.Equal(t, "0.2", get("roe"))
	assert.Equal(t, "Apple Inc.", get("name"))
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "$0", Money(0))
	assert.Equal(t, "$1,234,567", Money(1234567))
	assert.Equal(t, "$1,234.57", Money(1234.567))
	assert.Equal(t, "-$2,500", Money(-2500))
}

func TestCompute(t *testing.T) {
	defs, err := Compute([]string{"sym", "ROE", "sym", " de "}, []string{"name"})
	require.NoError(t, err)
	keys := make([]string, len(defs))
	for i, d := range defs {
		keys[i] = d.Key
	}
	assert.Equal(t, []string{"sym", "roe", "de"}, keys)

	defs, err = Compute(nil, []string{"name"})
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "Name", defs[0].Label)

	_, err = Compute([]string{"sym", "bogus"}, nil)
	var ue *UnknownColumnError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, []string{"bogus"}, ue.Names)
}

func TestExpandSets(t *testing.T) {
	cols, err := ExpandSets([]string{"overview", "screen"})
	require.NoError(t, err)
	assert.Equal(t, []string{"sym", "name", "sector", "industry", "mcap", "roe", "de", "included"}, cols)

	_, err = ExpandSets([]string{"nope"})
	var se *UnknownSetError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Available, "export")
}

func TestSetsReferenceRegisteredColumns(t *testing.T) {
	for name, cols := range Sets {
		for _, c := range cols {
			_, ok := Registry[c]
			assert.True(t, ok, "set %s references unknown column %s", name, c)
		}
	}
}

func TestResolve(t *testing.T) {
	defs, err := Resolve(nil, nil, []string{"export"})
	require.NoError(t, err)
	assert.Len(t, defs, len(Sets["export"]))

	defs, err = Resolve([]string{"reco"}, []string{"ratios"}, []string{"export"})
	require.NoError(t, err)
	assert.Equal(t, "reco", defs[0].Key)
	assert.Equal(t, "roe", defs[1].Key)
}
