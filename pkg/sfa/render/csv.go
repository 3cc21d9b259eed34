package render

import (
	"encoding/csv"
	"io"

	"github.com/komsit37/sfa/pkg/sfa/columns"
	"github.com/komsit37/sfa/pkg/sfa/types"
)

// CSVRenderer writes one header row and one row per successful report.
// Values use each column's export form, N/A when missing.
type CSVRenderer struct{}

func NewCSVRenderer() *CSVRenderer { return &CSVRenderer{} }

func (r *CSVRenderer) Render(w io.Writer, reports []types.Report, opts RenderOptions) error {
	cols := opts.Columns
	if len(cols) == 0 {
		var err error
		if cols, err = columns.Resolve(nil, nil, []string{"export"}); err != nil {
			return err
		}
	}

	cw := csv.NewWriter(w)
	hdr := make([]string, len(cols))
	for i, c := range cols {
		hdr[i] = c.Label
	}
	if err := cw.Write(hdr); err != nil {
		return err
	}
	for _, rep := range reports {
		if rep.Err != nil {
			continue
		}
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = c.RenderExport(rep)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportFileName is the file name used when writing one symbol's export.
func ExportFileName(symbol string) string { return symbol + "_fundamentals.csv" }
