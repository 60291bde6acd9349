package cli

import (
	"context"
	"flag"
	"log"

	"github.com/google/subcommands"

	"StockLens/internal/server"
	"StockLens/internal/tui"
)

type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "starts the browser dashboard" }
func (*serveCmd) Usage() string {
	return `stocklens serve [-addr host:port]

Serves the interactive dashboard on a local address. The CSV is loaded on
the first request and shared by every browser session until the process
exits; run 'stocklens fetch' and restart to pick up new data.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Listen address (default: server.addr from the config)")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		log.Printf("[ERROR] %v", err)
		return subcommands.ExitFailure
	}
	addr := cfg.Server.Addr
	if c.addr != "" {
		addr = c.addr
	}

	cache := newCache(cfg)
	// warm the cache so a broken CSV shows up in the log straight away
	if _, err := cache.Get(); err != nil {
		log.Printf("[WARN] dashboard will report: %v", err)
	}
	srv := server.New(cache, server.Options{
		Title:        cfg.Dashboard.Title,
		DefaultChart: cfg.DefaultChartType(),
		MultiSymbol:  cfg.Dashboard.MultiSymbol,
		ShowTable:    cfg.Dashboard.ShowTable,
		Chart:        chartOptions(cfg),
	})
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		log.Printf("[ERROR] %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type tuiCmd struct{}

func (*tuiCmd) Name() string     { return "tui" }
func (*tuiCmd) Synopsis() string { return "starts the terminal dashboard" }
func (*tuiCmd) Usage() string {
	return `stocklens tui

Opens the dashboard in the terminal. Use tab to move between the category,
symbol and chart type lists, the arrow keys to change them, t to show the
raw rows and q to quit.
`
}

func (*tuiCmd) SetFlags(*flag.FlagSet) {}

func (*tuiCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, ds, err := openDataset()
	if err != nil {
		log.Printf("[ERROR] %v", err)
		return subcommands.ExitFailure
	}
	err = tui.Run(ds, tui.Options{
		Title:        cfg.Dashboard.Title,
		DefaultChart: cfg.DefaultChartType(),
		MultiSymbol:  cfg.Dashboard.MultiSymbol,
		ShowTable:    cfg.Dashboard.ShowTable,
		Colors:       termColors(cfg),
	})
	if err != nil {
		log.Printf("[ERROR] %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
