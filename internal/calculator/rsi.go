package calculator

import (
	"errors"

	"StockLens/internal/model"
)

// neutralRSI is reported when there are not enough closes to seed the average.
const neutralRSI = 50.0

// RSISeries returns the Wilder RSI for every close from index period onwards;
// out[0] belongs to closes[period]. It is nil when len(closes) <= period.
func RSISeries(closes []float64, period int) []float64 {
	if period <= 0 || len(closes) <= period {
		return nil
	}
	gainLoss := func(i int) (float64, float64) {
		d := closes[i] - closes[i-1]
		if d > 0 {
			return d, 0
		}
		return 0, -d
	}

	p := float64(period)
	var up, down float64
	for i := 1; i <= period; i++ {
		g, l := gainLoss(i)
		up += g
		down += l
	}
	up, down = up/p, down/p

	out := make([]float64, 0, len(closes)-period)
	out = append(out, rsiOf(up, down))
	for i := period + 1; i < len(closes); i++ {
		g, l := gainLoss(i)
		up = (up*(p-1) + g) / p
		down = (down*(p-1) + l) / p
		out = append(out, rsiOf(up, down))
	}
	return out
}

func rsiOf(up, down float64) float64 {
	if down == 0 {
		return 100
	}
	return 100 - 100/(1+up/down)
}

// CalculateRSI returns the latest Wilder RSI of the rows' closes, or 50 when
// the window is shorter than period+1 rows.
func CalculateRSI(rows []model.StockRecord, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	series := RSISeries(extractCloses(rows), period)
	if len(series) == 0 {
		return neutralRSI, nil
	}
	return series[len(series)-1], nil
}
