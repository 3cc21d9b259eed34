// Package config turns viper settings into a validated, immutable Config.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/komsit37/sfa/pkg/sfa/filter"
	"github.com/komsit37/sfa/pkg/sfa/render"
	"github.com/komsit37/sfa/pkg/sfa/screen"
	"github.com/komsit37/sfa/pkg/sfa/types"
)

const (
	DefaultTimeout  = 15 * time.Second
	DefaultCacheTTL = 5 * time.Minute
)

// EnvPrefix is prepended to every environment variable, e.g. SFA_POLICY.
const EnvPrefix = "SFA"

// ColorMode controls ANSI colour output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// Config is the resolved runtime configuration. Build it with Load.
type Config struct {
	Format      string
	Color       ColorMode
	Pretty      bool
	Policy      types.Policy
	Timeout     time.Duration
	CacheTTL    time.Duration
	CacheDir    string
	NoCache     bool
	Criteria    screen.Criteria
	ScreenOn    screen.Basis
	Columns     []string
	Sets        []string
	Sector      filter.Filter
	Industry    filter.Filter
	MaxColWidth int
	History     bool
	Watchlist   string
	Addr        string
	LogLevel    zerolog.Level
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("format", "table")
	v.SetDefault("color", string(ColorAuto))
	v.SetDefault("policy", types.Strict.String())
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("cache-ttl", DefaultCacheTTL)
	v.SetDefault("min-roe", 15.0)
	v.SetDefault("max-de", 1.0)
	v.SetDefault("min-mcap", 1000.0)
	v.SetDefault("unit", string(screen.Crore))
	v.SetDefault("screen-on", string(screen.Derived))
	v.SetDefault("max-col-width", 40)
	v.SetDefault("addr", ":8080")
	v.SetDefault("log-level", "info")
}

// BindEnv enables SFA_* environment variables, with "-" mapped to "_".
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// ReadFile loads $SFA_CONFIG, or sfa.(yaml|toml|json) from the working
// directory. A missing default file is not an error.
func ReadFile(v *viper.Viper) error {
	if path := os.Getenv(EnvPrefix + "_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		return nil
	}
	v.SetConfigName("sfa")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load validates the settings in v and returns the resulting Config.
func Load(v *viper.Viper) (Config, error) {
	var c Config

	c.Format = strings.ToLower(strings.TrimSpace(v.GetString("format")))
	if _, err := render.New(c.Format); err != nil {
		return c, err
	}

	c.Color = ColorMode(strings.ToLower(strings.TrimSpace(v.GetString("color"))))
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	case "true":
		c.Color = ColorAlways
	case "false":
		c.Color = ColorNever
	default:
		return c, fmt.Errorf("unsupported color mode: %s (allowed: auto, always, never)", c.Color)
	}
	c.Pretty = v.GetBool("pretty")

	p, err := types.ParsePolicy(v.GetString("policy"))
	if err != nil {
		return c, err
	}
	c.Policy = p

	c.Timeout = v.GetDuration("timeout")
	if c.Timeout < 0 {
		return c, fmt.Errorf("timeout must not be negative: %s", c.Timeout)
	}
	c.CacheTTL = v.GetDuration("cache-ttl")
	if c.CacheTTL < 0 {
		return c, fmt.Errorf("cache-ttl must not be negative: %s", c.CacheTTL)
	}
	c.NoCache = v.GetBool("no-cache")
	c.CacheDir = strings.TrimSpace(v.GetString("cache-dir"))

	unit, err := screen.ParseUnit(v.GetString("unit"))
	if err != nil {
		return c, err
	}
	c.Criteria = screen.Criteria{
		MinROE:        v.GetFloat64("min-roe"),
		MaxDebtEquity: v.GetFloat64("max-de"),
		MinMarketCap:  v.GetFloat64("min-mcap"),
		Unit:          unit,
	}
	if err := c.Criteria.Validate(); err != nil {
		return c, err
	}
	if c.ScreenOn, err = screen.ParseBasis(v.GetString("screen-on")); err != nil {
		return c, err
	}

	c.Columns = list(v, "columns")
	c.Sets = list(v, "sets")

	if c.Sector, err = filter.Parse(v.GetString("sector")); err != nil {
		return c, fmt.Errorf("sector: %w", err)
	}
	if c.Industry, err = filter.Parse(v.GetString("industry")); err != nil {
		return c, fmt.Errorf("industry: %w", err)
	}

	c.MaxColWidth = v.GetInt("max-col-width")
	c.History = v.GetBool("history")
	c.Watchlist = strings.TrimSpace(v.GetString("watchlist"))
	c.Addr = strings.TrimSpace(v.GetString("addr"))

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(v.GetString("log-level"))))
	if err != nil {
		return c, fmt.Errorf("log-level: %w", err)
	}
	c.LogLevel = lvl
	return c, nil
}

// list reads a string list that may also be given as one comma separated
// value, as happens with env vars.
func list(v *viper.Viper, key string) []string {
	var out []string
	for _, s := range v.GetStringSlice(key) {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// UseColor resolves the colour mode given whether stdout is a terminal.
func (c Config) UseColor(terminal bool) bool {
	switch c.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	return terminal
}

// ResolveCacheDir returns CacheDir, or $SFA_HOME/cache, or ~/.sfa/cache.
func (c Config) ResolveCacheDir() (string, error) {
	if c.CacheDir != "" {
		return c.CacheDir, nil
	}
	if home := strings.TrimSpace(os.Getenv(EnvPrefix + "_HOME")); home != "" {
		return filepath.Join(home, "cache"), nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if userHome == "" {
		return "", fmt.Errorf("user home directory not found")
	}
	return filepath.Join(userHome, ".sfa", "cache"), nil
}

// Logger returns a console logger on w at the configured level.
func (c Config) Logger(w io.Writer, color bool) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: !color}
	return zerolog.New(out).Level(c.LogLevel).With().Timestamp().Logger()
}
