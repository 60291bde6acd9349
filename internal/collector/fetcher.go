package collector

import (
	"context"

	"StockLens/internal/model"
)

// Fetcher downloads daily price bars for one symbol. The returned records
// carry Symbol and prices; Category is filled in by the Collector.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol, rng string) ([]model.StockRecord, error)
	Name() string
}
