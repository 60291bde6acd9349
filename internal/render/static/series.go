package static

import (
	"fmt"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"StockLens/internal/model"
)

// candleSeries draws OHLC bars. go-chart has no candlestick type, so it
// implements chart.Series and chart.BoundedValuesProvider directly.
type candleSeries struct {
	name     string
	bars     []model.OHLCBar
	up, down drawing.Color
}

func (cs candleSeries) GetName() string           { return cs.name }
func (cs candleSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }
func (cs candleSeries) Len() int                  { return len(cs.bars) }

func (cs candleSeries) GetStyle() chart.Style {
	return chart.Style{StrokeColor: cs.up, FillColor: cs.up, StrokeWidth: 1}
}

func (cs candleSeries) GetBoundedValues(i int) (x, y1, y2 float64) {
	b := cs.bars[i]
	return chart.TimeToFloat64(b.Date), b.High, b.Low
}

func (cs candleSeries) Validate() error {
	if len(cs.bars) == 0 {
		return fmt.Errorf("candlestick series %q has no bars", cs.name)
	}
	return nil
}

func (cs candleSeries) Render(r chart.Renderer, cb chart.Box, xrange, yrange chart.Range, _ chart.Style) {
	half := barHalfWidth(cb, len(cs.bars))
	for _, b := range cs.bars {
		col := cs.up
		if b.Direction() == model.DirectionDown {
			col = cs.down
		}
		x := cb.Left + xrange.Translate(chart.TimeToFloat64(b.Date))
		yHigh := cb.Bottom - yrange.Translate(b.High)
		yLow := cb.Bottom - yrange.Translate(b.Low)
		yOpen := cb.Bottom - yrange.Translate(b.Open)
		yClose := cb.Bottom - yrange.Translate(b.Close)

		r.SetStrokeColor(col)
		r.SetStrokeWidth(1)
		r.MoveTo(x, yHigh)
		r.LineTo(x, yLow)
		r.Stroke()

		top, bottom := min(yOpen, yClose), max(yOpen, yClose)
		if bottom-top < 1 {
			bottom = top + 1
		}
		r.SetFillColor(col)
		r.SetStrokeColor(col)
		fillRect(r, x-half, top, x+half, bottom)
	}
}

// volumeSeries draws volume bars from zero. Overlay bars use a single
// translucent colour and the secondary axis.
type volumeSeries struct {
	name     string
	bars     []model.VolumeBar
	up, down drawing.Color
	overlay  bool
	color    drawing.Color
}

func (vs volumeSeries) GetName() string { return vs.name }

func (vs volumeSeries) GetYAxis() chart.YAxisType {
	if vs.overlay {
		return chart.YAxisSecondary
	}
	return chart.YAxisPrimary
}

func (vs volumeSeries) GetStyle() chart.Style {
	col := vs.up
	if vs.overlay {
		col = vs.color
	}
	return chart.Style{StrokeColor: col, FillColor: col, StrokeWidth: 1}
}

func (vs volumeSeries) Len() int { return len(vs.bars) }

func (vs volumeSeries) GetBoundedValues(i int) (x, y1, y2 float64) {
	b := vs.bars[i]
	return chart.TimeToFloat64(b.Date), b.Volume, 0
}

func (vs volumeSeries) Validate() error {
	if len(vs.bars) == 0 {
		return fmt.Errorf("volume series %q has no bars", vs.name)
	}
	return nil
}

func (vs volumeSeries) Render(r chart.Renderer, cb chart.Box, xrange, yrange chart.Range, _ chart.Style) {
	half := barHalfWidth(cb, len(vs.bars))
	base := cb.Bottom - yrange.Translate(0)
	for _, b := range vs.bars {
		col := vs.up
		switch {
		case vs.overlay:
			col = vs.color
		case b.Direction == model.DirectionDown:
			col = vs.down
		}
		x := cb.Left + xrange.Translate(chart.TimeToFloat64(b.Date))
		top := cb.Bottom - yrange.Translate(b.Volume)
		if base-top < 1 {
			top = base - 1
		}
		r.SetFillColor(col)
		r.SetStrokeColor(col)
		r.SetStrokeWidth(1)
		fillRect(r, x-half, top, x+half, base)
	}
}

func barHalfWidth(cb chart.Box, n int) int {
	if n <= 0 {
		return 1
	}
	return max(1, cb.Width()/(n*3))
}

func fillRect(r chart.Renderer, x0, y0, x1, y1 int) {
	r.MoveTo(x0, y0)
	r.LineTo(x1, y0)
	r.LineTo(x1, y1)
	r.LineTo(x0, y1)
	r.Close()
	r.FillStroke()
}
