package term

import (
	"strings"
	"testing"
	"time"

	"StockLens/internal/model"
	"StockLens/internal/series"
)

func day(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

func testRows() []model.StockRecord {
	return []model.StockRecord{
		{Date: day(1), Category: "IT", Symbol: "TCS", Open: 98, High: 101, Low: 97, Close: 100, Volume: 1000},
		{Date: day(2), Category: "IT", Symbol: "TCS", Open: 100, High: 106, Low: 99, Close: 105, Volume: 2000},
		{Date: day(3), Category: "IT", Symbol: "TCS", Open: 105, High: 105, Low: 94, Close: 95, Volume: 3000},
	}
}

func build(t *testing.T, rows []model.StockRecord, ct model.ChartType) model.Chart {
	t.Helper()
	c, err := series.Build(rows, ct)
	if err != nil {
		t.Fatalf("Build(%s): %v", ct, err)
	}
	return c
}

func TestRenderEmpty(t *testing.T) {
	out := Render(build(t, nil, model.ChartLine), Options{})
	if !strings.Contains(out, "no data") {
		t.Errorf("empty chart output = %q", out)
	}
}

func TestRenderLine(t *testing.T) {
	out := Render(build(t, testRows(), model.ChartLine), Options{Width: 60, Height: 12})
	if n := strings.Count(out, "●"); n != 3 {
		t.Errorf("line points = %d, want 3", n)
	}
	if !strings.Contains(out, "Close Price") {
		t.Errorf("legend missing series name:\n%s", out)
	}
	if lines := strings.Count(out, "\n"); lines != 12 {
		t.Errorf("output height = %d lines, want 12", lines)
	}
}

func TestRenderKeepsMostRecentDates(t *testing.T) {
	out := Render(build(t, testRows(), model.ChartLine), Options{Width: yAxisWidth + 2*colsPerBar, Height: 10})
	if n := strings.Count(out, "●"); n != 2 {
		t.Errorf("visible points = %d, want 2", n)
	}
}

func TestRenderChartMarks(t *testing.T) {
	tests := []struct {
		ct   model.ChartType
		want []string
	}{
		{model.ChartArea, []string{"█", "░"}},
		{model.ChartCandlestick, []string{"█", "│"}},
		{model.ChartVolume, []string{"▇", "3.0K"}},
		{model.ChartCombined, []string{"█", "▇"}},
	}
	for _, tt := range tests {
		out := Render(build(t, testRows(), tt.ct), Options{Width: 60, Height: 16})
		for _, w := range tt.want {
			if !strings.Contains(out, w) {
				t.Errorf("%s: output missing %q:\n%s", tt.ct, w, out)
			}
		}
	}
}

func TestValueToRow(t *testing.T) {
	tests := []struct {
		v    float64
		want int
	}{
		{110, 0},
		{100, 9},
		{105, 5},
		{200, 0},
		{0, 9},
	}
	for _, tt := range tests {
		if got := valueToRow(tt.v, 10, 110, 100); got != tt.want {
			t.Errorf("valueToRow(%v) = %d, want %d", tt.v, got, tt.want)
		}
	}
	if got := rowToValue(0, 10, 110, 100); got != 110 {
		t.Errorf("rowToValue(0) = %v, want 110", got)
	}
}

func TestCompact(t *testing.T) {
	tests := map[float64]string{
		950:     "950",
		1500:    "1.5K",
		2500000: "2.5M",
		3.2e9:   "3.2B",
	}
	for v, want := range tests {
		if got := compact(v); got != want {
			t.Errorf("compact(%v) = %q, want %q", v, got, want)
		}
	}
}

func TestTable(t *testing.T) {
	out := Table(testRows()[:2])
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("table lines = %d, want 4", len(lines))
	}
	if want := "| 2024-01-01 | IT | TCS | 98.00 | 101.00 | 97.00 | 100.00 | 1000 |"; lines[2] != want {
		t.Errorf("row = %q, want %q", lines[2], want)
	}
}

func TestMarkdown(t *testing.T) {
	out, err := Markdown(Table(testRows()), 100)
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}
	if !strings.Contains(out, "TCS") {
		t.Errorf("rendered markdown lost content:\n%s", out)
	}
}
