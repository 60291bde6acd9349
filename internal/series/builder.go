// Package series turns filtered rows into chart-ready series.
package series

import (
	"fmt"

	"StockLens/internal/filter"
	"StockLens/internal/model"
)

const (
	nameClose       = "Close Price"
	nameCandlestick = "Candlestick"
	nameVolume      = "Volume"
)

type builderFunc func(symbol, prefix string, rows []model.StockRecord) []model.Series

var builders = map[model.ChartType]builderFunc{
	model.ChartLine:        buildLine,
	model.ChartArea:        buildArea,
	model.ChartCandlestick: buildCandlestick,
	model.ChartVolume:      buildVolume,
	model.ChartCombined:    buildCombined,
}

// Build shapes rows (already filtered and sorted) into series for chartType.
// Rows of several symbols produce one group of series per symbol, in the order
// the symbols first appear, and each series name is prefixed with its symbol.
// No rows gives a chart without series.
func Build(rows []model.StockRecord, chartType model.ChartType) (model.Chart, error) {
	return build(rows, chartType, len(filter.Symbols(rows)) > 1)
}

// BuildSelection is Build for rows filtered by sel. Series names carry the
// symbol whenever sel picks more than one symbol, even if only one of them
// has rows in range.
func BuildSelection(rows []model.StockRecord, sel model.FilterSelection) (model.Chart, error) {
	return build(rows, sel.ChartType, sel.Multi())
}

func build(rows []model.StockRecord, chartType model.ChartType, multi bool) (model.Chart, error) {
	fn, ok := builders[chartType]
	if !ok {
		return model.Chart{}, fmt.Errorf("%w: %q", model.ErrUnknownChartType, chartType)
	}
	chart := model.Chart{Type: chartType, Series: []model.Series{}}

	groups := filter.BySymbol(rows)
	for _, sym := range filter.Symbols(rows) {
		prefix := ""
		if multi {
			prefix = sym + " "
		}
		chart.Series = append(chart.Series, fn(sym, prefix, groups[sym])...)
	}
	return chart, nil
}

func buildLine(symbol, prefix string, rows []model.StockRecord) []model.Series {
	return []model.Series{closeSeries(model.KindLine, symbol, prefix, rows)}
}

func buildArea(symbol, prefix string, rows []model.StockRecord) []model.Series {
	return []model.Series{closeSeries(model.KindArea, symbol, prefix, rows)}
}

func buildCandlestick(symbol, prefix string, rows []model.StockRecord) []model.Series {
	return []model.Series{ohlcSeries(symbol, prefix, rows)}
}

func buildVolume(symbol, prefix string, rows []model.StockRecord) []model.Series {
	return []model.Series{volumeSeries(symbol, prefix, rows, false)}
}

func buildCombined(symbol, prefix string, rows []model.StockRecord) []model.Series {
	return []model.Series{
		ohlcSeries(symbol, prefix, rows),
		volumeSeries(symbol, prefix, rows, true),
	}
}

func closeSeries(kind model.SeriesKind, symbol, prefix string, rows []model.StockRecord) model.PointSeries {
	s := model.PointSeries{
		Kind:   kind,
		Name:   prefix + nameClose,
		Symbol: symbol,
		Points: make([]model.Point, len(rows)),
	}
	for i, r := range rows {
		s.Points[i] = model.Point{Date: r.Date, Value: r.Close}
	}
	return s
}

func ohlcSeries(symbol, prefix string, rows []model.StockRecord) model.OHLCSeries {
	s := model.OHLCSeries{
		Kind:   model.KindCandlestick,
		Name:   prefix + nameCandlestick,
		Symbol: symbol,
		Bars:   make([]model.OHLCBar, len(rows)),
	}
	for i, r := range rows {
		s.Bars[i] = model.OHLCBar{Date: r.Date, Open: r.Open, High: r.High, Low: r.Low, Close: r.Close}
	}
	return s
}

func volumeSeries(symbol, prefix string, rows []model.StockRecord, overlay bool) model.VolumeSeries {
	s := model.VolumeSeries{
		Kind:    model.KindVolume,
		Name:    prefix + nameVolume,
		Symbol:  symbol,
		Overlay: overlay,
		Bars:    make([]model.VolumeBar, len(rows)),
	}
	for i, r := range rows {
		s.Bars[i] = model.VolumeBar{Date: r.Date, Volume: r.Volume, Direction: model.DirectionOf(r)}
	}
	return s
}
