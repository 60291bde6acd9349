package model

import "time"

// StockRecord is one row of the price CSV: a single trading day for one symbol.
type StockRecord struct {
	Date     time.Time `json:"date"`
	Category string    `json:"category"`
	Symbol   string    `json:"symbol"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   float64   `json:"volume"`
}

// Direction tells whether a trading day closed at or above its open.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// DirectionOf returns DirectionUp when close >= open, DirectionDown otherwise.
func DirectionOf(r StockRecord) Direction {
	if r.Close >= r.Open {
		return DirectionUp
	}
	return DirectionDown
}
