package dataset

import (
	"fmt"
	"math"
	"slices"

	"StockLens/internal/model"
)

// Dataset is the immutable, ordered set of records loaded from the CSV.
// It is safe for concurrent reads.
type Dataset struct {
	records    []model.StockRecord
	categories []string
	symbols    map[string][]string // category -> symbols in first-appearance order
	categoryOf map[string]string   // symbol -> category
}

func newDataset(records []model.StockRecord) *Dataset {
	ds := &Dataset{
		records:    records,
		symbols:    make(map[string][]string),
		categoryOf: make(map[string]string),
	}
	for _, r := range records {
		if _, ok := ds.symbols[r.Category]; !ok {
			ds.categories = append(ds.categories, r.Category)
			ds.symbols[r.Category] = nil
		}
		if _, ok := ds.categoryOf[r.Symbol]; !ok {
			ds.categoryOf[r.Symbol] = r.Category
			ds.symbols[r.Category] = append(ds.symbols[r.Category], r.Symbol)
		}
	}
	return ds
}

// FromRecords builds a Dataset from records read elsewhere (a Parquet
// export, for instance) and applies the same checks as Parse.
func FromRecords(records []model.StockRecord) (*Dataset, error) {
	categoryOf := make(map[string]string)
	for i, r := range records {
		if r.Category == "" || r.Symbol == "" {
			return nil, fmt.Errorf("record %d: %w: empty Category or Symbol", i+1, ErrMalformedRow)
		}
		for _, v := range []float64{r.Open, r.High, r.Low, r.Close, r.Volume} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("record %d: %w: non-finite value for %s", i+1, ErrMalformedRow, r.Symbol)
			}
		}
		if prev, ok := categoryOf[r.Symbol]; ok && prev != r.Category {
			return nil, fmt.Errorf("record %d: %w: %s in %q and %q", i+1, ErrCategoryConflict, r.Symbol, prev, r.Category)
		}
		categoryOf[r.Symbol] = r.Category
	}
	return newDataset(slices.Clone(records)), nil
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// Records returns a copy of all records in file order.
func (d *Dataset) Records() []model.StockRecord {
	return slices.Clone(d.records)
}

// Each calls fn for every record in file order until fn returns false.
func (d *Dataset) Each(fn func(model.StockRecord) bool) {
	for _, r := range d.records {
		if !fn(r) {
			return
		}
	}
}

// Categories returns the distinct categories in first-appearance order.
func (d *Dataset) Categories() []string {
	return slices.Clone(d.categories)
}

// Symbols returns the distinct symbols of a category in first-appearance
// order, or nil when the category is unknown.
func (d *Dataset) Symbols(category string) []string {
	return slices.Clone(d.symbols[category])
}

// CategoryOf returns the category a symbol belongs to.
func (d *Dataset) CategoryOf(symbol string) (string, bool) {
	c, ok := d.categoryOf[symbol]
	return c, ok
}

// HasCategory reports whether the category appears in the dataset.
func (d *Dataset) HasCategory(category string) bool {
	_, ok := d.symbols[category]
	return ok
}
