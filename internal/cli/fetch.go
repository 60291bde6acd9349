package cli

import (
	"context"
	"flag"
	"log"

	"github.com/google/subcommands"

	"StockLens/internal/collector"
	"StockLens/internal/config"
	"StockLens/internal/scheduler"
)

type fetchCmd struct {
	schedule string
	watch    bool
	mock     bool
	now      bool
	rng      string
	out      string
}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "rebuilds the CSV from a market data source" }
func (*fetchCmd) Usage() string {
	return `stocklens fetch [-schedule spec | -watch] [-now] [-mock] [-range 1y] [-o path]

Downloads daily bars for every symbol in fetch.universe, tags them with
their category and replaces the CSV atomically.

The source is the REST service at fetch.base_url when set, otherwise the
Yahoo chart API with fetch.symbol_suffix appended to each symbol. -mock
uses generated prices instead, which is handy for trying the dashboard
offline.

With -schedule the refresh keeps running on a six-field cron spec such as
"0 30 18 * * 1-5" until interrupted. -watch does the same on fetch.schedule.
`
}

func (c *fetchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.schedule, "schedule", "", "Cron spec to keep refreshing on (empty runs once)")
	f.BoolVar(&c.watch, "watch", false, "Keep refreshing on fetch.schedule")
	f.BoolVar(&c.mock, "mock", false, "Use generated prices instead of a network source")
	f.BoolVar(&c.now, "now", true, "With a schedule, also refresh once at startup")
	f.StringVar(&c.rng, "range", "", "History range such as 6mo, 1y or 5y (default: fetch.range)")
	f.StringVar(&c.out, "o", "", "CSV path to write (default: data.csv_path)")
}

func (c *fetchCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		log.Printf("[ERROR] %v", err)
		return subcommands.ExitFailure
	}
	if err := cfg.ValidateFetch(); err != nil {
		log.Printf("[ERROR] config validation: %v", err)
		return subcommands.ExitFailure
	}

	path := cfg.Data.CSVPath
	if c.out != "" {
		path = c.out
	}
	rng := cfg.Fetch.Range
	if c.rng != "" {
		rng = c.rng
	}
	fetcher := c.fetcher(cfg)
	log.Printf("[INFO] data source: %s", fetcher.Name())
	col := collector.NewCollector(fetcher, groups(cfg.Fetch.Universe), rng)

	spec := c.schedule
	if spec == "" && c.watch {
		spec = cfg.Fetch.Schedule
		if spec == "" {
			log.Println("[ERROR] -watch needs fetch.schedule in the config")
			return subcommands.ExitUsageError
		}
	}
	if spec == "" {
		if _, err := col.Refresh(ctx, path); err != nil {
			log.Printf("[ERROR] refresh: %v", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	sched := scheduler.NewScheduler(ctx, col, path)
	if err := sched.Register(spec); err != nil {
		log.Printf("[ERROR] %v", err)
		return subcommands.ExitUsageError
	}
	sched.Start()
	defer sched.Stop()
	if c.now {
		go sched.RunNow()
	}

	log.Printf("[INFO] refreshing %s on %q. Press Ctrl+C to stop.", path, spec)
	<-ctx.Done()
	log.Printf("[INFO] shutdown signal received, %d refreshes completed", sched.Runs())
	return subcommands.ExitSuccess
}

func (c *fetchCmd) fetcher(cfg *config.Config) collector.Fetcher {
	switch {
	case c.mock:
		return &collector.MockFetcher{Price: 1000}
	case cfg.Fetch.BaseURL != "":
		return collector.NewRESTFetcher(cfg.Fetch.BaseURL, cfg.Fetch.APIKey, cfg.Proxy)
	default:
		return collector.NewYahooFetcher(cfg.Fetch.SymbolSuffix, cfg.Proxy)
	}
}

func groups(universe []config.UniverseEntry) []collector.Group {
	out := make([]collector.Group, len(universe))
	for i, u := range universe {
		out[i] = collector.Group{Category: u.Category, Symbols: u.Symbols}
	}
	return out
}
