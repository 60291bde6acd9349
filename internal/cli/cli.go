// Package cli holds the stocklens subcommands.
package cli

import (
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/subcommands"

	"StockLens/internal/config"
	"StockLens/internal/dashboard"
	"StockLens/internal/dataset"
	"StockLens/internal/export"
	"StockLens/internal/model"
	"StockLens/internal/render/static"
	"StockLens/internal/render/term"
)

var configPath = flag.String("config", "", "Path to the YAML config file (default $CONFIG_PATH or "+config.DefaultPath+")")

// Register the subcommands.
func Register(c *subcommands.Commander) {
	c.Register(&serveCmd{}, "dashboard")
	c.Register(&tuiCmd{}, "dashboard")

	c.Register(&renderCmd{}, "output")
	c.Register(&tableCmd{}, "output")
	c.Register(&exportCmd{}, "output")

	c.Register(&fetchCmd{}, "data")
}

// loadConfig reads and validates the config named by -config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.Path(*configPath))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// newCache loads data.csv_path, or a Parquet file written by 'export' when
// the path ends in .parquet.
func newCache(cfg *config.Config) *dataset.Cache {
	opts := dataset.Options{DateLayout: cfg.Data.DateLayout}
	if strings.EqualFold(filepath.Ext(cfg.Data.CSVPath), ".parquet") {
		return dataset.NewCacheFunc(cfg.Data.CSVPath, opts, loadParquet)
	}
	return dataset.NewCache(cfg.Data.CSVPath, opts)
}

func loadParquet(path string, _ dataset.Options) (*dataset.Dataset, error) {
	records, err := export.ReadParquet(path)
	if err != nil {
		return nil, err
	}
	ds, err := dataset.FromRecords(records)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return ds, nil
}

// openDataset loads the config and the CSV it points at.
func openDataset() (*config.Config, *dataset.Dataset, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	ds, err := newCache(cfg).Get()
	if err != nil {
		return nil, nil, err
	}
	return cfg, ds, nil
}

func chartOptions(cfg *config.Config) static.Options {
	c := cfg.Chart.Colors
	return static.Options{
		Width:  cfg.Chart.Width,
		Height: cfg.Chart.Height,
		Theme:  static.ThemeFromHex(c.Line, c.Area, c.Up, c.Down, c.Overlay),
	}
}

func termColors(cfg *config.Config) term.Colors {
	c := cfg.Chart.Colors
	return term.Colors{Line: c.Line, Area: c.Area, Up: c.Up, Down: c.Down, Overlay: c.Overlay}
}

// symbolList is a repeatable flag that also accepts comma separated values.
type symbolList []string

func (s *symbolList) String() string { return strings.Join(*s, ",") }

func (s *symbolList) Set(v string) error {
	for _, sym := range strings.Split(v, ",") {
		if sym = strings.TrimSpace(sym); sym != "" {
			*s = append(*s, sym)
		}
	}
	return nil
}

// selectionFlags are shared by every command that works on one selection.
type selectionFlags struct {
	category  string
	symbols   symbolList
	chartType string
}

func (f *selectionFlags) register(fs *flag.FlagSet, withType bool) {
	fs.StringVar(&f.category, "category", "", "Category to show (default: first in the CSV)")
	fs.Var(&f.symbols, "symbol", "Symbol to show; repeat or comma separate when multi_symbol is enabled (default: first in the category)")
	if withType {
		fs.StringVar(&f.chartType, "type", "", "Chart type: line, area, candlestick, volume or combined (default: dashboard.default_chart)")
	}
}

// view builds the dashboard view for the flags, applying the same defaults
// and multi-symbol rule as the browser page.
func (f *selectionFlags) view(cfg *config.Config, ds *dataset.Dataset) (dashboard.View, error) {
	sel := model.FilterSelection{
		Category:  f.category,
		Symbols:   f.symbols,
		ChartType: cfg.DefaultChartType(),
	}
	if f.chartType != "" {
		ct, err := model.ParseChartType(f.chartType)
		if err != nil {
			return dashboard.View{}, err
		}
		sel.ChartType = ct
	}
	if !cfg.Dashboard.MultiSymbol && len(sel.Symbols) > 1 {
		return dashboard.View{}, fmt.Errorf("multiple symbols selected but multi_symbol is disabled")
	}
	return dashboard.Build(ds, dashboard.Normalize(ds, sel))
}
