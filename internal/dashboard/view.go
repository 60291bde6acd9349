// Package dashboard ties filtering, series building and summaries together
// for one user selection.
package dashboard

import (
	"StockLens/internal/calculator"
	"StockLens/internal/dataset"
	"StockLens/internal/filter"
	"StockLens/internal/model"
	"StockLens/internal/series"
)

// View is everything a surface needs to draw one selection.
type View struct {
	Selection model.FilterSelection `json:"selection"`
	Rows      []model.StockRecord   `json:"-"`
	Chart     model.Chart           `json:"chart"`
	Summaries []model.Summary       `json:"summaries"`
	Warning   string                `json:"warning,omitempty"`
}

// Normalize fills in the defaults a fresh dashboard shows: the first
// category, the first symbol of the category, and the line chart.
func Normalize(ds *dataset.Dataset, sel model.FilterSelection) model.FilterSelection {
	if sel.Category == "" {
		if cats := ds.Categories(); len(cats) > 0 {
			sel.Category = cats[0]
		}
	}
	if len(sel.Symbols) == 0 {
		if syms := ds.Symbols(sel.Category); len(syms) > 0 {
			sel.Symbols = syms[:1]
		}
	}
	if sel.ChartType == "" {
		sel.ChartType = model.ChartLine
	}
	return sel
}

// Build filters ds by sel and shapes the result. An unknown chart type is an
// error; a selection that matches nothing gives an empty chart and a warning.
func Build(ds *dataset.Dataset, sel model.FilterSelection) (View, error) {
	v := View{Selection: sel, Summaries: []model.Summary{}}
	if err := filter.Validate(ds, sel); err != nil {
		v.Warning = err.Error()
	}
	v.Rows = filter.Apply(ds, sel)
	chart, err := series.BuildSelection(v.Rows, sel)
	if err != nil {
		return View{}, err
	}
	v.Chart = chart

	groups := filter.BySymbol(v.Rows)
	for _, sym := range filter.Symbols(v.Rows) {
		if s, err := calculator.Summarize(groups[sym]); err == nil {
			v.Summaries = append(v.Summaries, s)
		}
	}
	return v, nil
}
