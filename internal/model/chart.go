package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ChartType selects how filtered rows are turned into series.
type ChartType string

const (
	ChartLine        ChartType = "line"
	ChartArea        ChartType = "area"
	ChartCandlestick ChartType = "candlestick"
	ChartVolume      ChartType = "volume"
	ChartCombined    ChartType = "combined"
)

// ChartTypes lists every chart type in dashboard order.
var ChartTypes = []ChartType{ChartLine, ChartArea, ChartCandlestick, ChartVolume, ChartCombined}

// ErrUnknownChartType is returned when a chart type name cannot be parsed.
var ErrUnknownChartType = errors.New("unknown chart type")

// Label returns the dashboard label for the chart type.
func (c ChartType) Label() string {
	switch c {
	case ChartLine:
		return "Line Chart"
	case ChartArea:
		return "Area Chart"
	case ChartCandlestick:
		return "Candlestick"
	case ChartVolume:
		return "Volume"
	case ChartCombined:
		return "Combined"
	default:
		return string(c)
	}
}

// ParseChartType accepts either the short name ("line") or the dashboard
// label ("Line Chart"), case-insensitively.
func ParseChartType(s string) (ChartType, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, c := range ChartTypes {
		if v == string(c) || v == strings.ToLower(c.Label()) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownChartType, s)
}

// SeriesKind tags the concrete shape of a Series.
type SeriesKind string

const (
	KindLine        SeriesKind = "line"
	KindArea        SeriesKind = "area"
	KindCandlestick SeriesKind = "candlestick"
	KindVolume      SeriesKind = "volume"
)

// Series is one named, chart-ready view over filtered rows. The concrete
// types are PointSeries, OHLCSeries and VolumeSeries.
type Series interface {
	SeriesName() string
	SeriesKind() SeriesKind
	Len() int
}

// Point is a single (date, value) pair.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// PointSeries is a close-price series drawn as a line or as a filled area.
type PointSeries struct {
	Kind   SeriesKind `json:"kind"`
	Name   string     `json:"name"`
	Symbol string     `json:"symbol"`
	Points []Point    `json:"points"`
}

func (s PointSeries) SeriesName() string     { return s.Name }
func (s PointSeries) SeriesKind() SeriesKind { return s.Kind }
func (s PointSeries) Len() int               { return len(s.Points) }

// OHLCBar is one candlestick.
type OHLCBar struct {
	Date  time.Time `json:"date"`
	Open  float64   `json:"open"`
	High  float64   `json:"high"`
	Low   float64   `json:"low"`
	Close float64   `json:"close"`
}

// Direction returns the candle colour flag using the same rule as volume bars.
func (b OHLCBar) Direction() Direction {
	if b.Close >= b.Open {
		return DirectionUp
	}
	return DirectionDown
}

// OHLCSeries is a candlestick series.
type OHLCSeries struct {
	Kind   SeriesKind `json:"kind"`
	Name   string     `json:"name"`
	Symbol string     `json:"symbol"`
	Bars   []OHLCBar  `json:"bars"`
}

func (s OHLCSeries) SeriesName() string     { return s.Name }
func (s OHLCSeries) SeriesKind() SeriesKind { return s.Kind }
func (s OHLCSeries) Len() int               { return len(s.Bars) }

// VolumeBar is one volume bar with its up/down colour flag.
type VolumeBar struct {
	Date      time.Time `json:"date"`
	Volume    float64   `json:"volume"`
	Direction Direction `json:"direction"`
}

// VolumeSeries is a volume bar series. Overlay is set when the bars share the
// plot with candlesticks and belong on a secondary axis.
type VolumeSeries struct {
	Kind    SeriesKind  `json:"kind"`
	Name    string      `json:"name"`
	Symbol  string      `json:"symbol"`
	Overlay bool        `json:"overlay"`
	Bars    []VolumeBar `json:"bars"`
}

func (s VolumeSeries) SeriesName() string     { return s.Name }
func (s VolumeSeries) SeriesKind() SeriesKind { return s.Kind }
func (s VolumeSeries) Len() int               { return len(s.Bars) }

// Chart is the output of the series builder for one selection.
type Chart struct {
	Type   ChartType `json:"type"`
	Series []Series  `json:"series"`
}

// Empty reports whether the chart has nothing to draw.
func (c Chart) Empty() bool {
	for _, s := range c.Series {
		if s.Len() > 0 {
			return false
		}
	}
	return true
}
