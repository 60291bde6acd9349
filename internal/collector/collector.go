package collector

import (
	"context"
	"fmt"
	"hash/fnv"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"StockLens/internal/dataset"
	"StockLens/internal/model"
)

// MockFetcher returns generated bars for offline development and testing.
type MockFetcher struct {
	Price float64   // base price; each symbol gets its own offset
	End   time.Time // last bar date, defaults to today
	Fail  map[string]error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, symbol, rng string) ([]model.StockRecord, error) {
	if err := m.Fail[symbol]; err != nil {
		return nil, err
	}
	end := m.End
	if end.IsZero() {
		now := time.Now().UTC()
		end = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	return generateMockBars(symbol, m.Price, end, rangeDays(rng)), nil
}

func generateMockBars(symbol string, basePrice float64, end time.Time, count int) []model.StockRecord {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	seed := float64(h.Sum32()%1000) / 1000
	base := basePrice * (1 + seed)

	bars := make([]model.StockRecord, count)
	prev := base
	for i := 0; i < count; i++ {
		p := base * (1 + 0.05*math.Sin(float64(i)/5+seed*6) + float64(i)*0.0005)
		bars[i] = model.StockRecord{
			Date:   end.AddDate(0, 0, -(count - 1 - i)),
			Symbol: symbol,
			Open:   prev,
			High:   math.Max(prev, p) * 1.004,
			Low:    math.Min(prev, p) * 0.996,
			Close:  p,
			Volume: math.Round(1e6 * (1 + 0.5*math.Cos(float64(i)/3+seed))),
		}
		prev = p
	}
	return bars
}

// rangeDays maps a chart API range to a bar count for generated data.
func rangeDays(rng string) int {
	switch rng {
	case "1mo":
		return 22
	case "3mo":
		return 66
	case "6mo":
		return 126
	case "2y":
		return 504
	case "5y":
		return 1260
	default:
		return 252
	}
}

// Group is one category and the symbols fetched for it.
type Group struct {
	Category string
	Symbols  []string
}

// Collector fetches every configured symbol and tags the bars with their
// category.
type Collector struct {
	Fetcher Fetcher
	Groups  []Group
	Range   string
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, groups []Group, rng string) *Collector {
	return &Collector{Fetcher: fetcher, Groups: groups, Range: rng}
}

// Collect fetches all symbols in group order. A symbol that fails is logged
// and skipped; it is an error only when nothing could be fetched.
func (c *Collector) Collect(ctx context.Context) ([]model.StockRecord, error) {
	var records []model.StockRecord
	var failed int
	for _, g := range c.Groups {
		for _, sym := range g.Symbols {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			bars, err := c.Fetcher.FetchDailyBars(ctx, sym, c.Range)
			if err != nil {
				log.Printf("[WARN] %s fetch %s failed: %v", c.Fetcher.Name(), sym, err)
				failed++
				continue
			}
			for i := range bars {
				bars[i].Category = g.Category
			}
			records = append(records, bars...)
		}
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("collect: no bars fetched (%d symbols failed)", failed)
	}
	if failed > 0 {
		log.Printf("[WARN] %d symbols skipped", failed)
	}
	return records, nil
}

// Refresh collects the universe and replaces the CSV at path.
func (c *Collector) Refresh(ctx context.Context, path string) (int, error) {
	start := time.Now()
	records, err := c.Collect(ctx)
	if err != nil {
		return 0, err
	}
	if err := WriteFile(path, records); err != nil {
		return 0, err
	}
	log.Printf("[INFO] %s refresh wrote %d rows to %s in %v",
		c.Fetcher.Name(), len(records), path, time.Since(start).Round(time.Millisecond))
	return len(records), nil
}

// WriteFile writes records as CSV to a temp file beside path and renames it
// into place, so readers never see a half-written file.
func WriteFile(path string, records []model.StockRecord) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".stocklens-*.csv")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if err := dataset.WriteCSV(tmp, records); err != nil {
		tmp.Close()
		return fmt.Errorf("write csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
