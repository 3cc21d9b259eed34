package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/komsit37/sfa/pkg/sfa/columns"
	"github.com/komsit37/sfa/pkg/sfa/types"
)

// DetailRenderer prints one section per symbol: header, key metrics,
// financials, ratios, price summary and description.
type DetailRenderer struct{}

func NewDetailRenderer() *DetailRenderer { return &DetailRenderer{} }

type section struct {
	title string
	keys  []string
}

var detailSections = []section{
	{"Key Financial Metrics", []string{"price", "high52", "low52", "eps", "pe", "divyield"}},
	{"Financials", []string{"revenue", "gross", "netincome"}},
	{"Ratios", []string{"roe", "roa", "de", "yroe", "yroa", "yde"}},
}

func (r *DetailRenderer) Render(w io.Writer, reports []types.Report, opts RenderOptions) error {
	width := opts.MaxColWidth
	if width <= 0 {
		width = 80
	}
	ew := &errWriter{w: w}
	for i, rep := range reports {
		if i > 0 {
			fmt.Fprintln(ew, strings.Repeat("-", 40))
		}
		r.one(ew, rep, opts.Color, width)
		if ew.err != nil {
			return ew.err
		}
	}
	return nil
}

// one writes a single report. Write errors are collected by w.
func (r *DetailRenderer) one(w *errWriter, rep types.Report, color bool, width int) {
	heading := func(s string) string {
		if color {
			return text.Colors{text.Bold, text.FgCyan}.Sprint(s)
		}
		return s
	}

	if rep.Err != nil {
		msg := fmt.Sprintf("Error fetching data for %s: %v", rep.Symbol, rep.Err)
		if color {
			msg = text.FgRed.Sprint(msg)
		}
		fmt.Fprintln(w, msg)
		return
	}

	name := rep.Raw.Text("longName")
	fmt.Fprintln(w, heading(fmt.Sprintf("%s (%s)", name, rep.Symbol)))
	fmt.Fprintf(w, "Sector: %s\nIndustry: %s\nMarket Cap: %s\n",
		rep.Raw.Text("sector"), rep.Raw.Text("industry"), columns.Money(rep.Raw.NumberOr("marketCap", 0)))
	if rep.Screen != nil {
		state := "excluded"
		if rep.Screen.Included {
			state = "included"
		}
		if color {
			clr := text.FgRed
			if rep.Screen.Included {
				clr = text.FgGreen
			}
			state = clr.Sprint(state)
		}
		fmt.Fprintf(w, "Screen: %s\n", state)
	}

	for _, s := range detailSections {
		fmt.Fprintln(w)
		fmt.Fprintln(w, heading(s.title))
		tw := newWriter(w, false)
		tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
		for _, k := range s.keys {
			d, ok := columns.Get(k)
			if !ok {
				continue
			}
			tw.AppendRow(table.Row{d.Label, d.Render(rep)})
		}
		tw.Render()
	}

	if rep.History != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, heading("1-Year Price Trend"))
		h := rep.History
		tw := newWriter(w, false)
		tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
		tw.AppendRows([]table.Row{
			{"Start", columns.Money(h.First)},
			{"End", columns.Money(h.Last)},
			{"High", columns.Money(h.High)},
			{"Low", columns.Money(h.Low)},
			{"Change", changeText(h.ChangePct)},
			{"Trading days", len(h.Points)},
		})
		tw.Render()
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, heading("Description"))
	fmt.Fprintln(w, text.WrapSoft(rep.Raw.TextOr("longBusinessSummary", "Not Available"), width))
}

func changeText(m types.Metric) string {
	v, ok := m.Value()
	if !ok {
		return types.NotAvailable
	}
	return fmt.Sprintf("%+.2f%%", v)
}
