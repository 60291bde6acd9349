// Package static renders charts to PNG images with go-chart.
package static

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"
	"strings"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"StockLens/internal/model"
)

// Theme holds the colours used for each kind of series.
type Theme struct {
	Line       drawing.Color
	Area       drawing.Color
	Up         drawing.Color
	Down       drawing.Color
	Overlay    drawing.Color
	Background drawing.Color
	Foreground drawing.Color
	Grid       drawing.Color
}

// DarkTheme mirrors the dashboard look: black canvas, white text, cyan line,
// orange area, green/red candles and light blue overlay volume.
var DarkTheme = Theme{
	Line:       drawing.ColorFromHex("00ffff"),
	Area:       drawing.ColorFromHex("ffa500"),
	Up:         drawing.ColorFromHex("008000"),
	Down:       drawing.ColorFromHex("ff0000"),
	Overlay:    drawing.ColorFromHex("add8e6"),
	Background: drawing.ColorBlack,
	Foreground: drawing.ColorWhite,
	Grid:       drawing.ColorFromHex("333333"),
}

// ThemeFromHex builds a dark theme with the given "#rrggbb" series colours.
func ThemeFromHex(line, area, up, down, overlay string) Theme {
	t := DarkTheme
	t.Line = hex(line)
	t.Area = hex(area)
	t.Up = hex(up)
	t.Down = hex(down)
	t.Overlay = hex(overlay)
	return t
}

func hex(s string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(s, "#"))
}

// extra colours for the second and later symbols of a multi-symbol chart
var palette = []drawing.Color{
	drawing.ColorFromHex("ff69b4"),
	drawing.ColorFromHex("adff2f"),
	drawing.ColorFromHex("ffd700"),
	drawing.ColorFromHex("9370db"),
	drawing.ColorFromHex("f0e68c"),
}

// Options controls the rendered image.
type Options struct {
	Title  string
	Width  int
	Height int
	Theme  Theme
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 1200
	}
	if o.Height <= 0 {
		o.Height = 600
	}
	if o.Theme == (Theme{}) {
		o.Theme = DarkTheme
	}
	return o
}

// Render writes c as a PNG to w. A chart with nothing to draw becomes a blank
// canvas in the theme background rather than an error.
func Render(w io.Writer, c model.Chart, opts Options) error {
	opts = opts.withDefaults()
	if c.Empty() {
		return renderBlank(w, opts)
	}

	th := opts.Theme
	var series []chart.Series
	var xmin, xmax time.Time
	primary := newBounds()
	secondary := newBounds()
	zeroBased := false
	lines := 0

	for _, s := range c.Series {
		switch s := s.(type) {
		case model.PointSeries:
			if s.Len() == 0 {
				continue
			}
			col := th.Line
			if s.Kind == model.KindArea {
				col = th.Area
				zeroBased = true
			}
			if lines > 0 {
				col = palette[(lines-1)%len(palette)]
			}
			lines++
			ts := chart.TimeSeries{
				Name:  s.Name,
				Style: chart.Style{StrokeColor: col, StrokeWidth: 2},
			}
			if s.Kind == model.KindArea {
				ts.Style.FillColor = col.WithAlpha(96)
			}
			if s.Len() == 1 {
				ts.Style.DotColor = col
				ts.Style.DotWidth = 4
			}
			for _, p := range s.Points {
				ts.XValues = append(ts.XValues, p.Date)
				ts.YValues = append(ts.YValues, p.Value)
				primary.add(p.Value)
				xmin, xmax = spanDates(xmin, xmax, p.Date)
			}
			series = append(series, ts)

		case model.OHLCSeries:
			if s.Len() == 0 {
				continue
			}
			for _, b := range s.Bars {
				primary.add(b.Low)
				primary.add(b.High)
				xmin, xmax = spanDates(xmin, xmax, b.Date)
			}
			series = append(series, candleSeries{name: s.Name, bars: s.Bars, up: th.Up, down: th.Down})

		case model.VolumeSeries:
			if s.Len() == 0 {
				continue
			}
			vs := volumeSeries{name: s.Name, bars: s.Bars, up: th.Up, down: th.Down}
			target := primary
			if s.Overlay {
				vs.overlay = true
				vs.color = th.Overlay.WithAlpha(102)
				target = secondary
			} else {
				zeroBased = true
			}
			for _, b := range s.Bars {
				target.add(0)
				target.add(b.Volume)
				xmin, xmax = spanDates(xmin, xmax, b.Date)
			}
			series = append(series, vs)
		}
	}

	axisStyle := chart.Style{
		FontColor:   th.Foreground,
		StrokeColor: th.Grid,
	}
	yName := "Price"
	if c.Type == model.ChartVolume {
		yName = "Volume"
	}
	ch := chart.Chart{
		Title:      opts.Title,
		TitleStyle: chart.Style{FontColor: th.Foreground},
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{
			FillColor: th.Background,
			Padding:   chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		Canvas: chart.Style{FillColor: th.Background},
		XAxis: chart.XAxis{
			Name:           "Date",
			NameStyle:      chart.Style{FontColor: th.Foreground},
			Style:          axisStyle,
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02"),
			Range:          xRange(xmin, xmax),
		},
		YAxis: chart.YAxis{
			Name:      yName,
			NameStyle: chart.Style{FontColor: th.Foreground},
			Style:     axisStyle,
			Range:     primary.rangeOf(zeroBased),
		},
		Series: series,
	}
	if !secondary.empty() {
		ch.YAxisSecondary = chart.YAxis{
			Name:      "Volume",
			NameStyle: chart.Style{FontColor: th.Foreground},
			Style:     axisStyle,
			Range:     secondary.rangeOf(true),
		}
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch, chart.Style{
		FillColor:   th.Background.WithAlpha(128),
		FontColor:   th.Foreground,
		StrokeColor: th.Grid,
	})}

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	return nil
}

func renderBlank(w io.Writer, opts Options) error {
	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(opts.Theme.Background), image.Point{}, draw.Src)
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode blank png: %w", err)
	}
	return nil
}

func spanDates(lo, hi, t time.Time) (time.Time, time.Time) {
	if lo.IsZero() || t.Before(lo) {
		lo = t
	}
	if hi.IsZero() || t.After(hi) {
		hi = t
	}
	return lo, hi
}

// xRange pads the date span so edge candles are not clipped and a single
// date still has a non-zero width.
func xRange(lo, hi time.Time) *chart.ContinuousRange {
	pad := 12 * time.Hour
	if span := hi.Sub(lo); span/40 > pad {
		pad = span / 40
	}
	return &chart.ContinuousRange{
		Min: chart.TimeToFloat64(lo.Add(-pad)),
		Max: chart.TimeToFloat64(hi.Add(pad)),
	}
}

type bounds struct{ min, max float64 }

func newBounds() *bounds { return &bounds{min: math.Inf(1), max: math.Inf(-1)} }

func (b *bounds) add(v float64) {
	b.min = math.Min(b.min, v)
	b.max = math.Max(b.max, v)
}

func (b *bounds) empty() bool { return math.IsInf(b.min, 1) }

func (b *bounds) rangeOf(zeroBased bool) *chart.ContinuousRange {
	if b.empty() {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}
	lo, hi := b.min, b.max
	if zeroBased && lo > 0 {
		lo = 0
	}
	if hi == lo {
		hi = lo + 1
	}
	pad := (hi - lo) * 0.05
	if !zeroBased {
		lo -= pad
	}
	return &chart.ContinuousRange{Min: lo, Max: hi + pad}
}
