package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		expr  string
		match []string
		miss  []string
	}{
		{expr: "", match: []string{"", "Technology"}},
		{expr: "Technology,Energy", match: []string{"technology", "Energy "}, miss: []string{"Technology Services"}},
		{expr: "Financial*", match: []string{"Financial Services", "financial"}, miss: []string{"Non-Financial"}},
		{expr: "/^Consumer (Cyclical|Defensive)$/", match: []string{"Consumer Cyclical"}, miss: []string{"consumer cyclical"}},
		{expr: "tech", match: []string{"Technology", "Biotech"}, miss: []string{"Energy"}},
		{expr: "!Utilities", match: []string{"Energy"}, miss: []string{"Utilities"}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			f, err := Parse(tt.expr)
			require.NoError(t, err)
			for _, s := range tt.match {
				assert.True(t, f.Match(s), "expected %q to match", s)
			}
			for _, s := range tt.miss {
				assert.False(t, f.Match(s), "expected %q not to match", s)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("/(/")
	assert.Error(t, err)
	_, err = Parse("[a")
	assert.Error(t, err)
	assert.Panics(t, func() { MustParse("!/(/") })
}
