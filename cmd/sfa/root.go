package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	yfgo "github.com/komsit37/yf-go"

	"github.com/komsit37/sfa/pkg/sfa/columns"
	"github.com/komsit37/sfa/pkg/sfa/config"
	"github.com/komsit37/sfa/pkg/sfa/fetch"
	"github.com/komsit37/sfa/pkg/sfa/pipeline"
	"github.com/komsit37/sfa/pkg/sfa/render"
	"github.com/komsit37/sfa/pkg/sfa/source"
	"github.com/komsit37/sfa/pkg/sfa/types"
)

// app holds what PersistentPreRunE resolved for the running command.
type app struct {
	cfg    config.Config
	log    zerolog.Logger
	runner *pipeline.Runner
	color  bool
	width  int
	out    io.Writer
}

var cur app

var rootCmd = &cobra.Command{
	Use:   "sfa",
	Short: "Stock fundamental analyzer",
	Long: "sfa fetches company fundamentals from Yahoo Finance, derives ROE, ROA and\n" +
		"debt/equity, screens symbols against thresholds and exports summaries.",
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringP("format", "o", "table", "Output format (table|detail|json|csv|syms)")
	pf.String("color", "auto", "Color output (auto|always|never)")
	pf.Bool("pretty", false, "Pretty print JSON output")
	pf.String("policy", "strict", "Missing-field policy (strict|legacy)")
	pf.Duration("timeout", config.DefaultTimeout, "Per-symbol fetch timeout")
	pf.Duration("cache-ttl", config.DefaultCacheTTL, "Cache TTL (set to 0 to disable caching)")
	pf.String("cache-dir", "", "Directory for on-disk cache (defaults to $SFA_HOME/cache)")
	pf.Bool("no-cache", false, "Bypass caches for this invocation")
	pf.StringSliceP("columns", "c", nil, "Columns to show, in order (see \"sfa columns\")")
	pf.StringSliceP("sets", "s", nil, "Column sets to show")
	pf.String("sector", "", "Keep symbols whose sector matches (a,b | glob* | /regex/ | !negate)")
	pf.String("industry", "", "Keep symbols whose industry matches")
	pf.Int("max-col-width", 40, "Maximum table column width")
	pf.Bool("history", false, "Load one year of daily closes")
	pf.StringP("watchlist", "w", "", "YAML watchlist file or directory to read symbols from")
	pf.String("log-level", "info", "Log level (debug|info|warn|error)")
	for _, name := range []string{
		"format", "color", "pretty", "policy", "timeout", "cache-ttl", "cache-dir", "no-cache",
		"columns", "sets", "sector", "industry", "max-col-width", "history", "watchlist", "log-level",
	} {
		_ = viper.BindPFlag(name, pf.Lookup(name))
	}

	config.SetDefaults(viper.GetViper())
	config.BindEnv(viper.GetViper())

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := config.ReadFile(viper.GetViper()); err != nil {
			return err
		}
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		width, tty := terminalWidth()
		cur = app{cfg: cfg, color: cfg.UseColor(tty), width: width, out: cmd.OutOrStdout()}
		cur.log = cfg.Logger(cmd.ErrOrStderr(), cur.color)
		return configureRunner(&cur)
	}

	rootCmd.AddCommand(showCmd, tableCmd, screenCmd, exportCmd, serveCmd, columnsCmd)
}

func configureRunner(a *app) error {
	opts := make([]yfgo.ClientOption, 0, 2)
	if !a.cfg.NoCache && a.cfg.CacheTTL > 0 {
		opts = append(opts, yfgo.WithDefaultCacheTTL(a.cfg.CacheTTL))
		dir, err := a.cfg.ResolveCacheDir()
		if err != nil {
			return err
		}
		store, err := yfgo.NewFileCacheStore(dir)
		if err != nil {
			return fmt.Errorf("cache dir %s: %w", dir, err)
		}
		opts = append(opts, yfgo.WithCacheStore(store))
	} else {
		opts = append(opts, yfgo.WithCacheDisabled())
	}
	client := yfgo.NewClient(opts...)

	yf := fetch.NewYFFetcher(client, a.cfg.Timeout)
	var f fetch.Fetcher = yf
	if !a.cfg.NoCache && a.cfg.CacheTTL > 0 {
		f = fetch.NewCacheFetcher(yf, a.cfg.CacheTTL, 0)
	}
	a.runner = &pipeline.Runner{
		Fetcher: f,
		History: yf,
		Log:     a.log.With().Str("component", "pipeline").Logger(),
	}
	a.log.Debug().
		Str("policy", a.cfg.Policy.String()).
		Dur("cache_ttl", a.cfg.CacheTTL).
		Bool("no_cache", a.cfg.NoCache).
		Msg("configured")
	return nil
}

// symbols gathers symbols from args and the --watchlist file.
func symbols(ctx context.Context, args []string, path string) ([]string, error) {
	all := append([]string(nil), args...)
	if path != "" {
		lists, err := source.YAMLSource{}.Load(ctx, path)
		if err != nil {
			return nil, err
		}
		all = append(all, source.Symbols(lists)...)
	}
	syms := source.ParseSymbols(all)
	if len(syms) == 0 {
		return nil, fmt.Errorf("no symbols given; pass symbols as arguments or use --watchlist")
	}
	return syms, nil
}

// run fetches the symbols and renders them in format. fallbackSets apply
// when neither --columns nor --sets is given.
func run(cmd *cobra.Command, args []string, format string, fallbackSets []string, opts pipeline.Options) error {
	a := &cur
	syms, err := symbols(cmd.Context(), args, a.cfg.Watchlist)
	if err != nil {
		return err
	}
	cols, err := columns.Resolve(a.cfg.Columns, a.cfg.Sets, fallbackSets)
	if err != nil {
		return err
	}
	r, err := render.New(format)
	if err != nil {
		return err
	}

	opts.Policy = a.cfg.Policy
	opts.Sector = a.cfg.Sector
	opts.Industry = a.cfg.Industry
	opts.IncludeHistory = opts.IncludeHistory || a.cfg.History || hasColumn(cols, "chg1y")
	reps, failed, err := collect(cmd.Context(), a.runner, syms, opts)
	if err != nil {
		return err
	}
	if err := r.Render(a.out, reps, renderOptions(a, cols)); err != nil {
		return err
	}
	return failed
}

// collect runs the pipeline and applies opts.OnlyIncluded afterwards, so
// failed is judged on every requested symbol rather than on the survivors.
func collect(ctx context.Context, runner *pipeline.Runner, syms []string, opts pipeline.Options) (reps []types.Report, failed error, err error) {
	only := opts.OnlyIncluded
	opts.OnlyIncluded = false
	reps, err = runner.Run(ctx, syms, opts)
	if err != nil {
		return nil, nil, err
	}
	failed = allFailed(reps)
	if only {
		reps = pipeline.Included(reps)
	}
	return reps, failed, nil
}

func hasColumn(cols []columns.Def, key string) bool {
	for _, c := range cols {
		if c.Key == key {
			return true
		}
	}
	return false
}

// allFailed returns an error when every report carries a fetch error.
func allFailed(reps []types.Report) error {
	if len(reps) == 0 {
		return nil
	}
	for _, r := range reps {
		if r.Err == nil {
			return nil
		}
	}
	return fmt.Errorf("all %d symbols failed to load", len(reps))
}

func renderOptions(a *app, cols []columns.Def) render.RenderOptions {
	return render.RenderOptions{
		Columns:     cols,
		Color:       a.color,
		PrettyJSON:  a.cfg.Pretty,
		MaxColWidth: a.cfg.MaxColWidth,
	}
}
