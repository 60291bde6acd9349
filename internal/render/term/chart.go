// Package term draws charts and tables for the terminal.
package term

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"StockLens/internal/model"
)

// Colors are "#rrggbb" strings for each kind of mark.
type Colors struct {
	Line    string
	Area    string
	Up      string
	Down    string
	Overlay string
}

// DefaultColors is used for any empty field of Options.Colors.
var DefaultColors = Colors{
	Line:    "#00ffff",
	Area:    "#ffa500",
	Up:      "#26a641",
	Down:    "#e05c5c",
	Overlay: "#add8e6",
}

// Options sizes the chart in terminal cells.
type Options struct {
	Width  int
	Height int
	Colors Colors
}

var (
	wickStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	axisStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#aaaaaa"))
)

// extra line colours for multi-symbol charts
var palette = []string{"#ff69b4", "#adff2f", "#ffd700", "#9370db", "#f0e68c"}

const (
	yAxisWidth = 11 // "  12345.67 │"
	colsPerBar = 2
)

type styles struct {
	line, area, up, down, overlay lipgloss.Style
}

func newStyles(c Colors) styles {
	pick := func(v, def string) lipgloss.Style {
		if v == "" {
			v = def
		}
		return lipgloss.NewStyle().Foreground(lipgloss.Color(v))
	}
	return styles{
		line:    pick(c.Line, DefaultColors.Line),
		area:    pick(c.Area, DefaultColors.Area),
		up:      pick(c.Up, DefaultColors.Up),
		down:    pick(c.Down, DefaultColors.Down),
		overlay: pick(c.Overlay, DefaultColors.Overlay),
	}
}

// Render draws c into a block of text at most opts.Width columns wide and
// opts.Height lines high. When there are more dates than fit, the most
// recent ones are shown.
func Render(c model.Chart, opts Options) string {
	if opts.Width <= 0 {
		opts.Width = 80
	}
	if opts.Height <= 0 {
		opts.Height = 24
	}
	if c.Empty() {
		return headerStyle.Render("no data for this selection") + "\n"
	}
	st := newStyles(opts.Colors)

	dates := dateAxis(c.Series)
	maxBars := max(1, (opts.Width-yAxisWidth)/colsPerBar)
	if len(dates) > maxBars {
		dates = dates[len(dates)-maxBars:]
	}
	col := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		col[d] = i * colsPerBar
	}

	var price, volume []model.Series
	for _, s := range c.Series {
		if s.SeriesKind() == model.KindVolume {
			volume = append(volume, s)
		} else {
			price = append(price, s)
		}
	}

	// legend + x-axis rule + date labels
	plotH := max(3, opts.Height-3)
	priceH, volumeH := plotH, 0
	switch {
	case len(price) == 0:
		priceH, volumeH = 0, plotH
	case len(volume) > 0:
		volumeH = max(2, plotH/4)
		priceH = max(3, plotH-volumeH)
	}
	cols := len(dates) * colsPerBar

	var b strings.Builder
	b.WriteString(legend(c.Series, st))
	b.WriteByte('\n')
	if priceH > 0 {
		writePanel(&b, pricePanel(price, col, cols, priceH, st))
	}
	if volumeH > 0 {
		writePanel(&b, volumePanel(volume, col, cols, volumeH, st))
	}
	b.WriteString(axisStyle.Render(strings.Repeat("─", yAxisWidth+cols)))
	b.WriteByte('\n')
	b.WriteString(dateLabels(dates, cols))
	b.WriteByte('\n')
	return b.String()
}

type panel struct {
	grid   [][]string
	hi, lo float64
	label  func(float64) string
}

func newPanel(rows, cols int, hi, lo float64) *panel {
	if hi == lo {
		hi = lo + 1
	}
	p := &panel{grid: make([][]string, rows), hi: hi, lo: lo}
	for r := range p.grid {
		p.grid[r] = make([]string, cols)
		for c := range p.grid[r] {
			p.grid[r][c] = " "
		}
	}
	return p
}

func (p *panel) row(v float64) int { return valueToRow(v, len(p.grid), p.hi, p.lo) }

func (p *panel) set(row, x int, s string) {
	if row >= 0 && row < len(p.grid) && x >= 0 && x < len(p.grid[row]) {
		p.grid[row][x] = s
	}
}

func writePanel(b *strings.Builder, p *panel) {
	for r := range p.grid {
		b.WriteString(axisStyle.Render(p.label(rowToValue(r, len(p.grid), p.hi, p.lo)) + " │"))
		b.WriteString(strings.Join(p.grid[r], ""))
		b.WriteByte('\n')
	}
}

func pricePanel(series []model.Series, col map[time.Time]int, cols, rows int, st styles) *panel {
	hi, lo := math.Inf(-1), math.Inf(1)
	zero := false
	for _, s := range series {
		switch s := s.(type) {
		case model.PointSeries:
			zero = zero || s.Kind == model.KindArea
			for _, p := range s.Points {
				if _, ok := col[p.Date]; ok {
					hi, lo = math.Max(hi, p.Value), math.Min(lo, p.Value)
				}
			}
		case model.OHLCSeries:
			for _, bar := range s.Bars {
				if _, ok := col[bar.Date]; ok {
					hi, lo = math.Max(hi, bar.High), math.Min(lo, bar.Low)
				}
			}
		}
	}
	if math.IsInf(hi, -1) {
		hi, lo = 1, 0
	}
	if zero && lo > 0 {
		lo = 0
	}
	p := newPanel(rows, cols, hi, lo)
	p.label = func(v float64) string { return fmt.Sprintf("%9.2f", v) }

	lines := 0
	for _, s := range series {
		switch s := s.(type) {
		case model.PointSeries:
			style := st.line
			if s.Kind == model.KindArea {
				style = st.area
			}
			if lines > 0 {
				style = lipgloss.NewStyle().Foreground(lipgloss.Color(palette[(lines-1)%len(palette)]))
			}
			lines++
			for _, pt := range s.Points {
				x, ok := col[pt.Date]
				if !ok {
					continue
				}
				top := p.row(pt.Value)
				if s.Kind == model.KindArea {
					for r := top + 1; r < rows; r++ {
						p.set(r, x, style.Render("░"))
						p.set(r, x+1, style.Render("░"))
					}
					p.set(top, x, style.Render("█"))
					p.set(top, x+1, style.Render("█"))
					continue
				}
				p.set(top, x, style.Render("●"))
			}
		case model.OHLCSeries:
			for _, bar := range s.Bars {
				if x, ok := col[bar.Date]; ok {
					drawCandle(p, bar, x, st)
				}
			}
		}
	}
	return p
}

// drawCandle paints one candle at column x (2 wide).
func drawCandle(p *panel, bar model.OHLCBar, x int, st styles) {
	style := st.up
	if bar.Direction() == model.DirectionDown {
		style = st.down
	}
	bodyTop := p.row(math.Max(bar.Open, bar.Close))
	bodyBot := p.row(math.Min(bar.Open, bar.Close))
	wickTop := p.row(bar.High)
	wickBot := p.row(bar.Low)

	for r := wickTop; r <= wickBot; r++ {
		if r >= bodyTop && r <= bodyBot {
			p.set(r, x, style.Render("█"))
			p.set(r, x+1, style.Render("█"))
			continue
		}
		p.set(r, x, wickStyle.Render("│"))
	}
}

func volumePanel(series []model.Series, col map[time.Time]int, cols, rows int, st styles) *panel {
	hi := 0.0
	for _, s := range series {
		vs, ok := s.(model.VolumeSeries)
		if !ok {
			continue
		}
		for _, bar := range vs.Bars {
			if _, ok := col[bar.Date]; ok {
				hi = math.Max(hi, bar.Volume)
			}
		}
	}
	p := newPanel(rows, cols, hi, 0)
	p.label = func(v float64) string { return fmt.Sprintf("%9s", compact(v)) }

	for _, s := range series {
		vs, ok := s.(model.VolumeSeries)
		if !ok {
			continue
		}
		for _, bar := range vs.Bars {
			x, ok := col[bar.Date]
			if !ok || bar.Volume <= 0 {
				continue
			}
			style := st.up
			switch {
			case vs.Overlay:
				style = st.overlay
			case bar.Direction == model.DirectionDown:
				style = st.down
			}
			for r := p.row(bar.Volume); r < rows; r++ {
				p.set(r, x, style.Render("▇"))
			}
		}
	}
	return p
}

func legend(series []model.Series, st styles) string {
	var parts []string
	lines := 0
	for _, s := range series {
		var style lipgloss.Style
		switch s := s.(type) {
		case model.PointSeries:
			style = st.line
			if s.Kind == model.KindArea {
				style = st.area
			}
			if lines > 0 {
				style = lipgloss.NewStyle().Foreground(lipgloss.Color(palette[(lines-1)%len(palette)]))
			}
			lines++
		case model.VolumeSeries:
			style = st.up
			if s.Overlay {
				style = st.overlay
			}
		default:
			style = st.up
		}
		parts = append(parts, style.Render("■")+" "+s.SeriesName())
	}
	return headerStyle.Render(strings.Repeat(" ", yAxisWidth)) + strings.Join(parts, "   ")
}

// dateLabels places "Jan 02" style labels under the bars without overlap.
func dateLabels(dates []time.Time, cols int) string {
	line := []rune(strings.Repeat(" ", cols))
	next := 0
	for i, d := range dates {
		x := i * colsPerBar
		label := []rune(d.Format("Jan 02"))
		if x < next || x+len(label) > cols {
			continue
		}
		copy(line[x:], label)
		next = x + len(label) + 2
	}
	return strings.Repeat(" ", yAxisWidth) + axisStyle.Render(string(line))
}

func dateAxis(series []model.Series) []time.Time {
	seen := make(map[time.Time]bool)
	var dates []time.Time
	add := func(t time.Time) {
		if !seen[t] {
			seen[t] = true
			dates = append(dates, t)
		}
	}
	for _, s := range series {
		switch s := s.(type) {
		case model.PointSeries:
			for _, p := range s.Points {
				add(p.Date)
			}
		case model.OHLCSeries:
			for _, b := range s.Bars {
				add(b.Date)
			}
		case model.VolumeSeries:
			for _, b := range s.Bars {
				add(b.Date)
			}
		}
	}
	slices.SortFunc(dates, time.Time.Compare)
	return dates
}

// valueToRow converts a value to a grid row (0 = top = hi).
func valueToRow(v float64, rows int, hi, lo float64) int {
	if hi == lo {
		return rows / 2
	}
	r := int(math.Round((hi - v) / (hi - lo) * float64(rows-1)))
	return min(max(r, 0), rows-1)
}

// rowToValue is the inverse of valueToRow.
func rowToValue(row, rows int, hi, lo float64) float64 {
	if rows <= 1 {
		return hi
	}
	return hi - float64(row)/float64(rows-1)*(hi-lo)
}

func compact(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%.1fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.1fK", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}
