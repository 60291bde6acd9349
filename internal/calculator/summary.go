package calculator

import (
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"StockLens/internal/model"
)

const tradingDaysPerYear = 252

// ErrNonFinite is returned by Summarize when a row holds NaN or Inf.
var ErrNonFinite = errors.New("non-finite price or volume")

func finite(r model.StockRecord) bool {
	for _, v := range []float64{r.Open, r.High, r.Low, r.Close, r.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Summarize computes headline figures for one symbol's rows, which must be
// sorted by date. Indicators that lack data fall back the way the dashboard
// header expects: SMA to the last close, RSI to 50.
func Summarize(rows []model.StockRecord) (model.Summary, error) {
	if len(rows) == 0 {
		return model.Summary{}, errors.New("no rows to summarize")
	}
	for _, r := range rows {
		if !finite(r) {
			return model.Summary{}, fmt.Errorf("%w: %s %s", ErrNonFinite, r.Symbol, r.Date.Format("2006-01-02"))
		}
	}
	first, last := rows[0], rows[len(rows)-1]
	s := model.Summary{
		Symbol:    last.Symbol,
		Rows:      len(rows),
		From:      first.Date,
		To:        last.Date,
		LastClose: last.Close,
	}

	change := decimal.NewFromFloat(last.Close).Sub(decimal.NewFromFloat(first.Close))
	s.Change = change.Round(2).InexactFloat64()
	if first.Close != 0 {
		pct := change.Div(decimal.NewFromFloat(first.Close)).Mul(decimal.NewFromInt(100))
		s.ChangePercent = pct.Round(2).InexactFloat64()
	}

	if h, l, err := CalculateRange(rows, 0); err == nil {
		s.High, s.Low = h, l
		if pos, err := CalculateRangePosition(last.Close, h, l); err == nil {
			s.Position = pos
		}
	}

	volumes := make([]float64, len(rows))
	for i, r := range rows {
		volumes[i] = r.Volume
	}
	s.AvgVolume = stat.Mean(volumes, nil)

	if sma, err := CalculateSMA20(rows); err != nil {
		s.SMA20 = last.Close
	} else {
		s.SMA20 = sma
	}

	if rsi, err := CalculateRSI(rows, 14); err != nil {
		log.Printf("[WARN] RSI calculation failed: %v, defaulting to 50", err)
		s.RSI14 = 50
	} else {
		s.RSI14 = rsi
	}

	s.Volatility = Volatility(extractCloses(rows))
	return s, nil
}

// Volatility returns the annualised standard deviation of simple daily
// returns, or 0 when fewer than two returns are available.
func Volatility(closes []float64) float64 {
	returns := make([]float64, 0, len(closes))
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		returns = append(returns, closes[i]/closes[i-1]-1)
	}
	if len(returns) < 2 {
		return 0
	}
	return stat.StdDev(returns, nil) * math.Sqrt(tradingDaysPerYear)
}
