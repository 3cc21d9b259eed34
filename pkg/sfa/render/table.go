package render

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/komsit37/sfa/pkg/sfa/columns"
	"github.com/komsit37/sfa/pkg/sfa/types"
)

type TableRenderer struct{}

func NewTableRenderer() *TableRenderer { return &TableRenderer{} }

func (r *TableRenderer) Render(w io.Writer, reports []types.Report, opts RenderOptions) error {
	cols := opts.Columns
	if len(cols) == 0 {
		var err error
		if cols, err = columns.Resolve(nil, nil, []string{"default"}); err != nil {
			return err
		}
	}

	ew := &errWriter{w: w}
	tw := newWriter(ew, opts.Color)

	hdr := make(table.Row, len(cols))
	for i, c := range cols {
		hdr[i] = c.Label
	}
	tw.AppendHeader(hdr)

	// Wrap text to MaxColWidth (default 40), no truncation.
	maxWidth := opts.MaxColWidth
	if maxWidth <= 0 {
		maxWidth = 40
	}
	cfgs := make([]table.ColumnConfig, 0, len(cols))
	for i, c := range cols {
		cfg := table.ColumnConfig{Number: i + 1, WidthMax: maxWidth}
		if c.Right {
			cfg.Align = text.AlignRight
			cfg.AlignHeader = text.AlignRight
		}
		cfgs = append(cfgs, cfg)
	}
	tw.SetColumnConfigs(cfgs)

	for _, rep := range reports {
		row := make(table.Row, len(cols))
		if rep.Err != nil {
			// Symbol in the first column, the error in the second.
			row[0] = rep.Symbol
			if len(cols) > 1 {
				row[1] = "error: " + rep.Err.Error()
			}
			tw.AppendRow(colorRow(row, text.Colors{text.FgRed}, opts.Color))
			continue
		}
		for i, c := range cols {
			row[i] = c.Render(rep)
		}
		if rep.Screen != nil {
			clr := text.Colors{text.FgRed}
			if rep.Screen.Included {
				clr = text.Colors{text.FgGreen}
			}
			row = colorRow(row, clr, opts.Color)
		}
		tw.AppendRow(row)
	}
	tw.Render()
	return ew.err
}

// errWriter keeps the first write error and drops all later writes, so a
// go-pretty output mirror or a run of prints can be checked once at the end.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

func newWriter(w io.Writer, color bool) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	if color {
		tw.SetStyle(table.StyleColoredDark)
	} else {
		tw.SetStyle(table.StyleLight)
	}
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateRows = false
	tw.Style().Options.SeparateColumns = false
	tw.Style().Format.Header = text.FormatDefault
	return tw
}

func colorRow(row table.Row, clr text.Colors, enabled bool) table.Row {
	if !enabled {
		return row
	}
	for i, v := range row {
		if v == nil {
			continue
		}
		row[i] = clr.Sprintf("%v", v)
	}
	return row
}
