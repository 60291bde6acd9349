package cli

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/subcommands"

	"StockLens/internal/export"
	"StockLens/internal/render/static"
	"StockLens/internal/render/term"
)

type renderCmd struct {
	sel    selectionFlags
	out    string
	width  int
	height int
	text   bool
}

func (*renderCmd) Name() string     { return "render" }
func (*renderCmd) Synopsis() string { return "renders one chart to a PNG file or the terminal" }
func (*renderCmd) Usage() string {
	return `stocklens render [-category c] [-symbol s] [-type t] [-o chart.png] [-text]

Draws the chart for one selection. Without -text the chart is written as a
PNG image; with -text it is printed to the terminal.
`
}

func (c *renderCmd) SetFlags(f *flag.FlagSet) {
	c.sel.register(f, true)
	f.StringVar(&c.out, "o", "chart.png", "Output PNG path")
	f.IntVar(&c.width, "width", 0, "Image width in pixels, or columns with -text (default: from config)")
	f.IntVar(&c.height, "height", 0, "Image height in pixels, or lines with -text (default: from config)")
	f.BoolVar(&c.text, "text", false, "Print the chart to the terminal instead of writing a PNG")
}

func (c *renderCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, ds, err := openDataset()
	if err != nil {
		log.Printf("[ERROR] %v", err)
		return subcommands.ExitFailure
	}
	v, err := c.sel.view(cfg, ds)
	if err != nil {
		log.Printf("[ERROR] %v", err)
		return subcommands.ExitUsageError
	}
	if v.Warning != "" {
		log.Printf("[WARN] %s", v.Warning)
	}

	if c.text {
		fmt.Println(term.Render(v.Chart, term.Options{Width: c.width, Height: c.height, Colors: termColors(cfg)}))
		return subcommands.ExitSuccess
	}

	opts := chartOptions(cfg)
	if c.width > 0 {
		opts.Width = c.width
	}
	if c.height > 0 {
		opts.Height = c.height
	}
	opts.Title = fmt.Sprintf("%s  %s  (%s)", strings.Join(v.Selection.Symbols, ", "), v.Selection.ChartType.Label(), v.Selection.Category)

	var buf bytes.Buffer
	if err := static.Render(&buf, v.Chart, opts); err != nil {
		log.Printf("[ERROR] %v", err)
		return subcommands.ExitFailure
	}
	if err := os.WriteFile(c.out, buf.Bytes(), 0o644); err != nil {
		log.Printf("[ERROR] write chart: %v", err)
		return subcommands.ExitFailure
	}
	log.Printf("[INFO] chart written to %s (%d rows)", c.out, len(v.Rows))
	return subcommands.ExitSuccess
}

type tableCmd struct {
	sel     selectionFlags
	summary bool
	plain   bool
	width   int
}

func (*tableCmd) Name() string     { return "table" }
func (*tableCmd) Synopsis() string { return "prints the filtered rows as a table" }
func (*tableCmd) Usage() string {
	return `stocklens table [-category c] [-symbol s] [-summary] [-plain]

Prints the rows of one selection sorted by date. With -summary the window
statistics of each symbol are printed after the table. -plain prints the
markdown source instead of styling it for the terminal.
`
}

func (c *tableCmd) SetFlags(f *flag.FlagSet) {
	c.sel.register(f, false)
	f.BoolVar(&c.summary, "summary", false, "Append per-symbol summary statistics")
	f.BoolVar(&c.plain, "plain", false, "Print plain markdown")
	f.IntVar(&c.width, "width", 100, "Word wrap width")
}

func (c *tableCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, ds, err := openDataset()
	if err != nil {
		log.Printf("[ERROR] %v", err)
		return subcommands.ExitFailure
	}
	v, err := c.sel.view(cfg, ds)
	if err != nil {
		log.Printf("[ERROR] %v", err)
		return subcommands.ExitUsageError
	}
	if v.Warning != "" {
		log.Printf("[WARN] %s", v.Warning)
	}

	var md strings.Builder
	fmt.Fprintf(&md, "# %s (%s)\n\n", strings.Join(v.Selection.Symbols, ", "), v.Selection.Category)
	md.WriteString(term.Table(v.Rows))
	if c.summary {
		for _, s := range v.Summaries {
			md.WriteString("\n")
			md.WriteString(term.SummaryMarkdown(s))
		}
	}

	if c.plain {
		fmt.Print(md.String())
		return subcommands.ExitSuccess
	}
	out, err := term.Markdown(md.String(), c.width)
	if err != nil {
		log.Printf("[ERROR] %v", err)
		return subcommands.ExitFailure
	}
	fmt.Print(out)
	return subcommands.ExitSuccess
}

type exportCmd struct {
	sel    selectionFlags
	format string
	out    string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "writes the filtered rows as csv, json or parquet" }
func (*exportCmd) Usage() string {
	return `stocklens export [-category c] [-symbol s] -format csv|json|parquet [-o path]

Writes the rows of one selection, sorted by date. Without -o the rows go to
standard output.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	c.sel.register(f, false)
	f.StringVar(&c.format, "format", "csv", "Output format: csv, json or parquet")
	f.StringVar(&c.out, "o", "", "Output path (default: standard output)")
}

func (c *exportCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	format, err := export.ParseFormat(c.format)
	if err != nil {
		log.Printf("[ERROR] %v", err)
		return subcommands.ExitUsageError
	}
	cfg, ds, err := openDataset()
	if err != nil {
		log.Printf("[ERROR] %v", err)
		return subcommands.ExitFailure
	}
	v, err := c.sel.view(cfg, ds)
	if err != nil {
		log.Printf("[ERROR] %v", err)
		return subcommands.ExitUsageError
	}
	if v.Warning != "" {
		log.Printf("[WARN] %s", v.Warning)
	}

	if c.out == "" {
		err = export.Write(os.Stdout, format, v.Rows)
	} else {
		err = export.WriteFile(c.out, format, v.Rows)
	}
	if err != nil {
		log.Printf("[ERROR] %v", err)
		return subcommands.ExitFailure
	}
	if c.out != "" {
		log.Printf("[INFO] %d rows written to %s", len(v.Rows), c.out)
	}
	return subcommands.ExitSuccess
}
