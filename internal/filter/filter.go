// Package filter selects the rows of a dataset that match a dashboard
// selection.
package filter

import (
	"errors"
	"fmt"
	"slices"

	"StockLens/internal/dataset"
	"StockLens/internal/model"
)

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownSymbol   = errors.New("symbol not in category")
	ErrNoSymbol        = errors.New("no symbol selected")
)

// Rows returns the records whose category equals category and whose symbol is
// one of symbols, sorted ascending by date. Records sharing a date keep their
// file order. An unmatched selection yields an empty, non-nil slice.
func Rows(ds *dataset.Dataset, category string, symbols ...string) []model.StockRecord {
	out := []model.StockRecord{}
	if ds == nil || len(symbols) == 0 {
		return out
	}
	want := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		want[s] = struct{}{}
	}
	ds.Each(func(r model.StockRecord) bool {
		if r.Category != category {
			return true
		}
		if _, ok := want[r.Symbol]; ok {
			out = append(out, r)
		}
		return true
	})
	slices.SortStableFunc(out, func(a, b model.StockRecord) int {
		return a.Date.Compare(b.Date)
	})
	return out
}

// Apply filters ds by the category and symbols of sel.
func Apply(ds *dataset.Dataset, sel model.FilterSelection) []model.StockRecord {
	return Rows(ds, sel.Category, sel.Symbols...)
}

// Validate checks that the selection names things present in ds. Filtering
// itself never fails; surfaces use this to tell the user what went wrong.
func Validate(ds *dataset.Dataset, sel model.FilterSelection) error {
	if !ds.HasCategory(sel.Category) {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, sel.Category)
	}
	if len(sel.Symbols) == 0 {
		return ErrNoSymbol
	}
	for _, s := range sel.Symbols {
		if c, ok := ds.CategoryOf(s); !ok || c != sel.Category {
			return fmt.Errorf("%w: %q not in %q", ErrUnknownSymbol, s, sel.Category)
		}
	}
	return nil
}

// Symbols returns the distinct symbols of rows in first-appearance order.
func Symbols(rows []model.StockRecord) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, r := range rows {
		if _, ok := seen[r.Symbol]; ok {
			continue
		}
		seen[r.Symbol] = struct{}{}
		out = append(out, r.Symbol)
	}
	return out
}

// BySymbol splits rows per symbol, keeping the order within each symbol.
func BySymbol(rows []model.StockRecord) map[string][]model.StockRecord {
	out := make(map[string][]model.StockRecord)
	for _, r := range rows {
		out[r.Symbol] = append(out[r.Symbol], r)
	}
	return out
}
