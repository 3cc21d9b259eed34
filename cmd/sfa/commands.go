package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/komsit37/sfa/pkg/sfa/columns"
	"github.com/komsit37/sfa/pkg/sfa/pipeline"
	"github.com/komsit37/sfa/pkg/sfa/render"
	"github.com/komsit37/sfa/pkg/sfa/types"
)

var showCmd = &cobra.Command{
	Use:   "show <sym>...",
	Short: "Show fundamentals, ratios and a one-year price summary per symbol",
	Example: "  sfa show AAPL TSLA\n" +
		"  sfa show -w watchlists/tech.yaml -o json",
	RunE: func(cmd *cobra.Command, args []string) error {
		format := "detail"
		if cmd.Flags().Changed("format") {
			format = cur.cfg.Format
		}
		if format == "detail" && !cmd.Flags().Changed("max-col-width") && cur.width > 0 {
			cur.cfg.MaxColWidth = cur.width
		}
		return run(cmd, args, format, []string{"default"}, pipeline.Options{IncludeHistory: true})
	},
}

var tableCmd = &cobra.Command{
	Use:   "table <sym>...",
	Short: "Compare symbols side by side",
	Example: "  sfa table AAPL MSFT GOOG -s overview,ratios\n" +
		"  sfa table -w watchlists -c sym,price,chg1y --sector 'Tech*'",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, args, cur.cfg.Format, []string{"default"}, pipeline.Options{})
	},
}

var screenCmd = &cobra.Command{
	Use:   "screen <sym>...",
	Short: "Screen symbols on minimum ROE, maximum debt/equity and minimum market cap",
	Example: "  sfa screen RELIANCE.NS TCS.NS INFY.NS --min-roe 15 --max-de 1 --min-mcap 1000 --unit crore\n" +
		"  sfa screen -w watchlists --only-included -o syms",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := cur.cfg.Criteria
		cur.log.Debug().
			Float64("min_roe", c.MinROE).
			Float64("max_de", c.MaxDebtEquity).
			Float64("min_mcap", c.MinMarketCap).
			Str("unit", string(c.Unit)).
			Str("on", string(cur.cfg.ScreenOn)).
			Msg("screen criteria")
		opts := pipeline.Options{Criteria: &c, ScreenOn: cur.cfg.ScreenOn, OnlyIncluded: viper.GetBool("only-included")}
		return run(cmd, args, cur.cfg.Format, []string{"screen"}, opts)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <sym>...",
	Short: "Export summary fundamentals as CSV",
	Long: "Writes one CSV with a row per symbol to stdout, or with --out-dir one\n" +
		"<SYM>_fundamentals.csv file per symbol.",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("out-dir")
		if dir == "" {
			return run(cmd, args, "csv", []string{"export"}, pipeline.Options{})
		}
		return exportFiles(cmd, args, dir)
	},
}

func exportFiles(cmd *cobra.Command, args []string, dir string) error {
	a := &cur
	syms, err := symbols(cmd.Context(), args, a.cfg.Watchlist)
	if err != nil {
		return err
	}
	cols, err := columns.Resolve(a.cfg.Columns, a.cfg.Sets, []string{"export"})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	reps, err := a.runner.Run(cmd.Context(), syms, pipeline.Options{Policy: a.cfg.Policy})
	if err != nil {
		return err
	}
	csv := render.NewCSVRenderer()
	for _, rep := range reps {
		if rep.Err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error fetching data for %s: %v\n", rep.Symbol, rep.Err)
			continue
		}
		var buf bytes.Buffer
		if err := csv.Render(&buf, []types.Report{rep}, render.RenderOptions{Columns: cols}); err != nil {
			return err
		}
		path := filepath.Join(dir, render.ExportFileName(rep.Symbol))
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		a.log.Info().Str("symbol", rep.Symbol).Str("path", path).Msg("exported")
	}
	return allFailed(reps)
}

var columnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "List available columns and column sets",
	RunE: func(cmd *cobra.Command, args []string) error {
		tw := listWriter(table.Row{"Column", "Label"})
		for _, k := range columns.Available() {
			d, _ := columns.Get(k)
			tw.AppendRow(table.Row{k, d.Label})
		}
		tw.Render()

		fmt.Fprintln(cur.out)
		tw = listWriter(table.Row{"Set", "Columns"})
		for _, name := range setNames() {
			tw.AppendRow(table.Row{name, strings.Join(columns.Sets[name], ",")})
		}
		tw.Render()
		return nil
	},
}

func listWriter(hdr table.Row) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(cur.out)
	tw.SetStyle(table.StyleLight)
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateColumns = false
	tw.AppendHeader(hdr)
	return tw
}

func setNames() []string {
	names := make([]string, 0, len(columns.Sets))
	for n := range columns.Sets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func init() {
	f := screenCmd.Flags()
	f.Float64("min-roe", 15, "Minimum return on equity, percent")
	f.Float64("max-de", 1.0, "Maximum debt/equity ratio")
	f.Float64("min-mcap", 1000, "Minimum market cap, in --unit")
	f.String("unit", "crore", "Market cap unit (one|thousand|lakh|million|crore|billion)")
	f.Bool("only-included", false, "Only output symbols that pass the screen")
	f.String("screen-on", "derived", "Ratios to screen on (derived|reported)")
	for _, name := range []string{"min-roe", "max-de", "min-mcap", "unit", "only-included", "screen-on"} {
		_ = viper.BindPFlag(name, f.Lookup(name))
	}

	exportCmd.Flags().String("out-dir", "", "Write <SYM>_fundamentals.csv files into this directory")
}
