package filter

import (
	"errors"
	"strings"
	"testing"

	"StockLens/internal/dataset"
	"StockLens/internal/model"
)

// Dates are deliberately out of order in the file.
const testCSV = `Date,Category,Symbol,Open,High,Low,Close,Volume
2024-01-03,IT,TCS,100,106,99,105,1200
2024-01-02,IT,TCS,99,101,98,100,1000
2024-01-02,Banking,HDFCBANK,1600,1620,1590,1610,5000
2024-01-04,IT,TCS,105,105,94,95,900
2024-01-02,IT,INFY,1500,1510,1490,1495,3000
2024-01-03,IT,INFY,1495,1500,1480,1490,3100
`

func load(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Parse(strings.NewReader(testCSV), dataset.Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return ds
}

func TestRows_MatchesCategoryAndSymbol(t *testing.T) {
	ds := load(t)
	tests := []struct {
		category string
		symbols  []string
		want     int
	}{
		{"IT", []string{"TCS"}, 3},
		{"IT", []string{"TCS", "INFY"}, 5},
		{"IT", []string{"HDFCBANK"}, 0},
		{"Banking", []string{"HDFCBANK", "TCS"}, 1},
		{"Pharma", []string{"TCS"}, 0},
		{"IT", nil, 0},
	}
	for _, tt := range tests {
		rows := Rows(ds, tt.category, tt.symbols...)
		if len(rows) != tt.want {
			t.Errorf("%s %v: expected %d rows, got %d", tt.category, tt.symbols, tt.want, len(rows))
		}
		for _, r := range rows {
			if r.Category != tt.category {
				t.Errorf("row category %q, want %q", r.Category, tt.category)
			}
			found := false
			for _, s := range tt.symbols {
				found = found || s == r.Symbol
			}
			if !found {
				t.Errorf("row symbol %q not in %v", r.Symbol, tt.symbols)
			}
		}
	}
}

func TestRows_SortedByDate(t *testing.T) {
	rows := Rows(load(t), "IT", "TCS", "INFY")
	for i := 1; i < len(rows); i++ {
		if rows[i].Date.Before(rows[i-1].Date) {
			t.Fatalf("rows not sorted at %d: %v before %v", i, rows[i].Date, rows[i-1].Date)
		}
	}
	// Same-date rows keep file order: TCS appears before INFY on 2024-01-02.
	if rows[0].Symbol != "TCS" || rows[1].Symbol != "INFY" {
		t.Errorf("tie order = %s,%s, want TCS,INFY", rows[0].Symbol, rows[1].Symbol)
	}
}

func TestRows_EmptyIsNotNil(t *testing.T) {
	if rows := Rows(load(t), "IT", "NOPE"); rows == nil || len(rows) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", rows)
	}
	if rows := Rows(nil, "IT", "TCS"); rows == nil {
		t.Error("expected empty slice for nil dataset")
	}
}

func TestValidate(t *testing.T) {
	ds := load(t)
	tests := []struct {
		sel  model.FilterSelection
		want error
	}{
		{model.FilterSelection{Category: "IT", Symbols: []string{"TCS"}}, nil},
		{model.FilterSelection{Category: "Pharma", Symbols: []string{"TCS"}}, ErrUnknownCategory},
		{model.FilterSelection{Category: "IT"}, ErrNoSymbol},
		{model.FilterSelection{Category: "IT", Symbols: []string{"HDFCBANK"}}, ErrUnknownSymbol},
	}
	for _, tt := range tests {
		err := Validate(ds, tt.sel)
		if tt.want == nil && err != nil {
			t.Errorf("%+v: unexpected error %v", tt.sel, err)
		}
		if tt.want != nil && !errors.Is(err, tt.want) {
			t.Errorf("%+v: expected %v, got %v", tt.sel, tt.want, err)
		}
	}
}

func TestApply(t *testing.T) {
	rows := Apply(load(t), model.FilterSelection{Category: "IT", Symbols: []string{"INFY"}, ChartType: model.ChartLine})
	if len(rows) != 2 {
		t.Fatalf("expected 2 INFY rows, got %d", len(rows))
	}
}
