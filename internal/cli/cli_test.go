package cli

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/google/subcommands"

	"StockLens/internal/config"
	"StockLens/internal/dataset"
	"StockLens/internal/export"
	"StockLens/internal/model"
)

const csvData = `Date,Category,Symbol,Open,High,Low,Close,Volume
2024-01-02,IT,TCS,100,106,99,105,2000
2024-01-01,IT,TCS,98,101,97,100,1000
2024-01-01,IT,INFY,50,52,49,51,500
2024-01-03,IT,TCS,105,105,94,95,3000
2024-01-01,Banking,HDFCBANK,10,11,9,10,100
`

// setup writes a CSV and a config pointing at it, and points -config there.
func setup(t *testing.T, multi bool) (dir, csvPath string) {
	t.Helper()
	dir = t.TempDir()
	csvPath = filepath.Join(dir, "prices.csv")
	if err := os.WriteFile(csvPath, []byte(csvData), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := fmt.Sprintf(`data:
  csv_path: %s
dashboard:
  multi_symbol: %v
chart:
  width: 480
  height: 240
fetch:
  range: 1mo
  universe:
    - category: IT
      symbols: [TCS, INFY]
    - category: Banking
      symbols: [HDFCBANK]
`, csvPath, multi)
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	old := *configPath
	*configPath = cfgPath
	t.Cleanup(func() { *configPath = old })
	return dir, csvPath
}

func run(t *testing.T, cmd subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	return cmd.Execute(context.Background(), fs)
}

func TestSymbolList(t *testing.T) {
	var s symbolList
	for _, v := range []string{"TCS, INFY", "WIPRO", " ,"} {
		if err := s.Set(v); err != nil {
			t.Fatal(err)
		}
	}
	if !slices.Equal(s, symbolList{"TCS", "INFY", "WIPRO"}) {
		t.Errorf("symbols = %v", s)
	}
	if s.String() != "TCS,INFY,WIPRO" {
		t.Errorf("String() = %q", s.String())
	}
}

func TestSelectionFlags_View(t *testing.T) {
	ds, err := dataset.Parse(strings.NewReader(csvData), dataset.Options{})
	if err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{}
	cfg.Dashboard.DefaultChart = "area"

	f := selectionFlags{}
	v, err := f.view(cfg, ds)
	if err != nil {
		t.Fatal(err)
	}
	if v.Selection.Category != "IT" || !slices.Equal(v.Selection.Symbols, []string{"TCS"}) || v.Selection.ChartType != model.ChartArea {
		t.Errorf("default selection = %+v", v.Selection)
	}

	f = selectionFlags{category: "IT", symbols: symbolList{"TCS", "INFY"}}
	if _, err := f.view(cfg, ds); err == nil {
		t.Error("expected error for two symbols with multi_symbol off")
	}
	cfg.Dashboard.MultiSymbol = true
	if v, err = f.view(cfg, ds); err != nil || len(v.Summaries) != 2 {
		t.Errorf("multi view = %+v, %v", v.Summaries, err)
	}

	f = selectionFlags{chartType: "pie"}
	if _, err := f.view(cfg, ds); err == nil {
		t.Error("expected error for unknown chart type")
	}
}

func TestRenderCmd_WritesPNG(t *testing.T) {
	dir, _ := setup(t, false)
	out := filepath.Join(dir, "tcs.png")
	if got := run(t, &renderCmd{}, "-category", "IT", "-symbol", "TCS", "-type", "combined", "-o", out); got != subcommands.ExitSuccess {
		t.Fatalf("exit = %v", got)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 480 || img.Bounds().Dy() != 240 {
		t.Errorf("size = %v, want 480x240 from config", img.Bounds())
	}

	if got := run(t, &renderCmd{}, "-type", "pie", "-o", out); got != subcommands.ExitUsageError {
		t.Errorf("unknown type exit = %v, want usage error", got)
	}
}

func TestExportCmd_Parquet(t *testing.T) {
	dir, _ := setup(t, true)
	out := filepath.Join(dir, "it.parquet")
	if got := run(t, &exportCmd{}, "-category", "IT", "-symbol", "TCS,INFY", "-format", "parquet", "-o", out); got != subcommands.ExitSuccess {
		t.Fatalf("exit = %v", got)
	}
	rows, err := export.ReadParquet(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Errorf("rows = %d, want 4", len(rows))
	}

	if got := run(t, &exportCmd{}, "-format", "xml"); got != subcommands.ExitUsageError {
		t.Errorf("bad format exit = %v", got)
	}
}

func TestTableCmd_Plain(t *testing.T) {
	setup(t, false)
	if got := run(t, &tableCmd{}, "-category", "Banking", "-plain", "-summary"); got != subcommands.ExitSuccess {
		t.Errorf("exit = %v", got)
	}
}

func TestFetchCmd_Mock(t *testing.T) {
	dir, _ := setup(t, false)
	out := filepath.Join(dir, "fetched.csv")
	if got := run(t, &fetchCmd{}, "-mock", "-o", out); got != subcommands.ExitSuccess {
		t.Fatalf("exit = %v", got)
	}
	ds, err := dataset.Load(out, dataset.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(ds.Categories(), []string{"IT", "Banking"}) || ds.Len() != 3*22 {
		t.Errorf("categories = %v, rows = %d", ds.Categories(), ds.Len())
	}
}

func TestMissingCSV(t *testing.T) {
	_, csvPath := setup(t, false)
	if err := os.Remove(csvPath); err != nil {
		t.Fatal(err)
	}
	if got := run(t, &tableCmd{}, "-plain"); got != subcommands.ExitFailure {
		t.Errorf("exit = %v, want failure", got)
	}
}

func TestParquetDataset(t *testing.T) {
	dir, csvPath := setup(t, false)
	ds, err := dataset.Load(csvPath, dataset.Options{})
	if err != nil {
		t.Fatal(err)
	}
	pq := filepath.Join(dir, "prices.parquet")
	if err := export.WriteFile(pq, export.Parquet, ds.Records()); err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{}
	cfg.Data.CSVPath = pq
	got, err := newCache(cfg).Get()
	if err != nil {
		t.Fatalf("load parquet dataset: %v", err)
	}
	if got.Len() != ds.Len() || !slices.Equal(got.Categories(), []string{"IT", "Banking"}) {
		t.Errorf("len = %d categories = %v", got.Len(), got.Categories())
	}
	if !slices.Equal(got.Symbols("IT"), []string{"TCS", "INFY"}) {
		t.Errorf("IT symbols = %v", got.Symbols("IT"))
	}
}
