package model

// FilterSelection is what the user picked on the dashboard. It is rebuilt on
// every interaction and never stored.
type FilterSelection struct {
	Category  string    `json:"category"`
	Symbols   []string  `json:"symbols"`
	ChartType ChartType `json:"chart_type"`
}

// Multi reports whether more than one symbol is selected.
func (s FilterSelection) Multi() bool { return len(s.Symbols) > 1 }
