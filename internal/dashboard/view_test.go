package dashboard

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"StockLens/internal/dataset"
	"StockLens/internal/model"
)

const csvData = `Date,Category,Symbol,Open,High,Low,Close,Volume
2024-01-02,IT,TCS,100,106,99,105,2000
2024-01-01,IT,TCS,98,101,97,100,1000
2024-01-01,IT,INFY,50,52,49,51,500
2024-01-03,IT,TCS,105,105,94,95,3000
2024-01-01,Banking,HDFCBANK,10,11,9,10,100
`

func load(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Parse(strings.NewReader(csvData), dataset.Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return ds
}

func TestNormalize(t *testing.T) {
	ds := load(t)
	sel := Normalize(ds, model.FilterSelection{})
	if sel.Category != "IT" || !slices.Equal(sel.Symbols, []string{"TCS"}) || sel.ChartType != model.ChartLine {
		t.Errorf("Normalize(empty) = %+v", sel)
	}
	sel = Normalize(ds, model.FilterSelection{Category: "Banking", ChartType: model.ChartVolume})
	if !slices.Equal(sel.Symbols, []string{"HDFCBANK"}) || sel.ChartType != model.ChartVolume {
		t.Errorf("Normalize(Banking) = %+v", sel)
	}
}

func TestBuild_LineWithSummary(t *testing.T) {
	v, err := Build(load(t), model.FilterSelection{Category: "IT", Symbols: []string{"TCS"}, ChartType: model.ChartLine})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if v.Warning != "" {
		t.Errorf("unexpected warning %q", v.Warning)
	}
	if len(v.Rows) != 3 || len(v.Chart.Series) != 1 {
		t.Fatalf("rows=%d series=%d", len(v.Rows), len(v.Chart.Series))
	}
	ps := v.Chart.Series[0].(model.PointSeries)
	var closes []float64
	for _, p := range ps.Points {
		closes = append(closes, p.Value)
	}
	if !slices.Equal(closes, []float64{100, 105, 95}) {
		t.Errorf("closes = %v", closes)
	}
	if len(v.Summaries) != 1 || v.Summaries[0].Change != -5 {
		t.Errorf("summaries = %+v", v.Summaries)
	}
}

func TestBuild_MultiSymbol(t *testing.T) {
	v, err := Build(load(t), model.FilterSelection{Category: "IT", Symbols: []string{"TCS", "INFY"}, ChartType: model.ChartCombined})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(v.Chart.Series) != 4 || len(v.Summaries) != 2 {
		t.Errorf("series=%d summaries=%d, want 4/2", len(v.Chart.Series), len(v.Summaries))
	}
}

func TestBuild_UnknownSelectionWarns(t *testing.T) {
	v, err := Build(load(t), model.FilterSelection{Category: "IT", Symbols: []string{"HDFCBANK"}, ChartType: model.ChartLine})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if v.Warning == "" {
		t.Error("expected a warning for a symbol outside the category")
	}
	if !v.Chart.Empty() || len(v.Summaries) != 0 {
		t.Errorf("expected empty chart, got %+v", v.Chart)
	}
}

func TestBuild_UnknownChartType(t *testing.T) {
	_, err := Build(load(t), model.FilterSelection{Category: "IT", Symbols: []string{"TCS"}, ChartType: "pie"})
	if !errors.Is(err, model.ErrUnknownChartType) {
		t.Errorf("err = %v, want ErrUnknownChartType", err)
	}
}

func TestBuild_MultiSelectionKeepsSymbolPrefix(t *testing.T) {
	// HDFCBANK is not in IT, so only TCS contributes rows
	v, err := Build(load(t), model.FilterSelection{Category: "IT", Symbols: []string{"TCS", "HDFCBANK"}, ChartType: model.ChartLine})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(v.Chart.Series) != 1 {
		t.Fatalf("series = %d, want 1", len(v.Chart.Series))
	}
	if got := v.Chart.Series[0].SeriesName(); got != "TCS Close Price" {
		t.Errorf("series name = %q, want TCS Close Price", got)
	}
}
