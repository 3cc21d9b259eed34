package render

import (
	"encoding/json"
	"io"

	"github.com/komsit37/sfa/pkg/sfa/types"
)

// Report is the JSON shape of one symbol.
type Report struct {
	Symbol   string                `json:"symbol"`
	Raw      types.RawFundamentals `json:"raw,omitempty"`
	Derived  types.DerivedMetrics  `json:"derived"`
	Included *bool                 `json:"included,omitempty"`
	History  *types.PriceHistory   `json:"history,omitempty"`
	Fields   map[string]string     `json:"fields,omitempty"`
	Error    string                `json:"error,omitempty"`
}

// ToJSON converts reports to their JSON shape. Column values are added under
// fields when cols is non-empty.
func ToJSON(reports []types.Report, opts RenderOptions) []Report {
	out := make([]Report, 0, len(reports))
	for _, rep := range reports {
		jr := Report{Symbol: rep.Symbol, Raw: rep.Raw, Derived: rep.Derived, History: rep.History}
		if rep.Err != nil {
			jr.Error = rep.Err.Error()
			jr.Derived = types.UndefinedMetrics()
			out = append(out, jr)
			continue
		}
		if rep.Screen != nil {
			inc := rep.Screen.Included
			jr.Included = &inc
		}
		if len(opts.Columns) > 0 {
			jr.Fields = make(map[string]string, len(opts.Columns))
			for _, c := range opts.Columns {
				jr.Fields[c.Key] = c.Render(rep)
			}
		}
		out = append(out, jr)
	}
	return out
}

type JSONRenderer struct{}

func NewJSONRenderer() *JSONRenderer { return &JSONRenderer{} }

func (r *JSONRenderer) Render(w io.Writer, reports []types.Report, opts RenderOptions) error {
	enc := json.NewEncoder(w)
	if opts.PrettyJSON {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(ToJSON(reports, opts))
}
