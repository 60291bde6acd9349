package term

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"

	"StockLens/internal/model"
)

// Table formats rows as a markdown table in the CSV column order.
func Table(rows []model.StockRecord) string {
	var b strings.Builder
	b.WriteString("| Date | Category | Symbol | Open | High | Low | Close | Volume |\n")
	b.WriteString("|:-----|:---------|:-------|-----:|-----:|----:|------:|-------:|\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "| %s | %s | %s | %.2f | %.2f | %.2f | %.2f | %s |\n",
			r.Date.Format("2006-01-02"), r.Category, r.Symbol,
			r.Open, r.High, r.Low, r.Close,
			strconv.FormatFloat(r.Volume, 'f', -1, 64))
	}
	return b.String()
}

// SummaryMarkdown renders the window statistics for one symbol.
func SummaryMarkdown(s model.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", s.Symbol)
	fmt.Fprintf(&b, "%s to %s, %d trading days\n\n",
		s.From.Format("2006-01-02"), s.To.Format("2006-01-02"), s.Rows)
	b.WriteString("| Metric | Value |\n|:--|--:|\n")
	fmt.Fprintf(&b, "| Last close | %.2f |\n", s.LastClose)
	fmt.Fprintf(&b, "| Change | %+.2f (%+.2f%%) |\n", s.Change, s.ChangePercent)
	fmt.Fprintf(&b, "| High / Low | %.2f / %.2f |\n", s.High, s.Low)
	fmt.Fprintf(&b, "| Position in range | %.0f%% |\n", s.Position*100)
	fmt.Fprintf(&b, "| Avg volume | %s |\n", compact(s.AvgVolume))
	fmt.Fprintf(&b, "| SMA(20) | %.2f |\n", s.SMA20)
	fmt.Fprintf(&b, "| RSI(14) | %.1f |\n", s.RSI14)
	fmt.Fprintf(&b, "| Volatility (ann.) | %.1f%% |\n", s.Volatility*100)
	return b.String()
}

// Markdown renders md for a dark terminal, wrapped at width columns.
func Markdown(md string, width int) (string, error) {
	if width <= 0 {
		width = 100
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
