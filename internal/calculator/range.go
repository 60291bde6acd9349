package calculator

import (
	"errors"
	"math"

	"StockLens/internal/model"
)

// CalculateRange scans the most recent n rows (all rows when n <= 0) and
// returns the highest high and lowest low.
func CalculateRange(rows []model.StockRecord, n int) (high, low float64, err error) {
	if len(rows) == 0 {
		return 0, 0, errors.New("no rows provided")
	}
	start := 0
	if n > 0 && len(rows) > n {
		start = len(rows) - n
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, r := range rows[start:] {
		if r.High > high {
			high = r.High
		}
		if r.Low < low {
			low = r.Low
		}
	}
	return high, low, nil
}

// CalculateRangePosition returns where current sits within [low, high] (0.0~1.0).
func CalculateRangePosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}
