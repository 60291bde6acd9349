package model

import "time"

// Summary holds headline statistics for a filtered window of rows.
type Summary struct {
	Symbol        string    `json:"symbol"`
	Rows          int       `json:"rows"`
	From          time.Time `json:"from"`
	To            time.Time `json:"to"`
	LastClose     float64   `json:"last_close"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Position      float64   `json:"position"` // last close within [Low, High], 0.0 ~ 1.0
	AvgVolume     float64   `json:"avg_volume"`
	SMA20         float64   `json:"sma20"`
	RSI14         float64   `json:"rsi14"`
	Volatility    float64   `json:"volatility"` // annualised stddev of daily returns
}
