// Package export writes filtered rows as CSV, JSON or Parquet.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"StockLens/internal/dataset"
	"StockLens/internal/model"
)

// Format names an output encoding.
type Format string

const (
	CSV     Format = "csv"
	JSON    Format = "json"
	Parquet Format = "parquet"
)

var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat accepts csv, json or parquet in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case CSV, JSON, Parquet:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ContentType returns the HTTP media type for the format.
func (f Format) ContentType() string {
	switch f {
	case JSON:
		return "application/json"
	case Parquet:
		return "application/vnd.apache.parquet"
	default:
		return "text/csv"
	}
}

// Row is the Parquet column layout of one record.
type Row struct {
	Date     int64   `parquet:"date,timestamp(millisecond)"`
	Category string  `parquet:"category,dict"`
	Symbol   string  `parquet:"symbol,dict"`
	Open     float64 `parquet:"open"`
	High     float64 `parquet:"high"`
	Low      float64 `parquet:"low"`
	Close    float64 `parquet:"close"`
	Volume   float64 `parquet:"volume"`
}

func toRows(records []model.StockRecord) []Row {
	rows := make([]Row, len(records))
	for i, r := range records {
		rows[i] = Row{
			Date:     r.Date.UnixMilli(),
			Category: r.Category,
			Symbol:   r.Symbol,
			Open:     r.Open,
			High:     r.High,
			Low:      r.Low,
			Close:    r.Close,
			Volume:   r.Volume,
		}
	}
	return rows
}

func fromRows(rows []Row) []model.StockRecord {
	records := make([]model.StockRecord, len(rows))
	for i, r := range rows {
		records[i] = model.StockRecord{
			Date:     time.UnixMilli(r.Date).UTC(),
			Category: r.Category,
			Symbol:   r.Symbol,
			Open:     r.Open,
			High:     r.High,
			Low:      r.Low,
			Close:    r.Close,
			Volume:   r.Volume,
		}
	}
	return records
}

// Write encodes records to w.
func Write(w io.Writer, f Format, records []model.StockRecord) error {
	switch f {
	case CSV:
		return dataset.WriteCSV(w, records)
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if records == nil {
			records = []model.StockRecord{}
		}
		return enc.Encode(records)
	case Parquet:
		if err := parquet.Write(w, toRows(records)); err != nil {
			return fmt.Errorf("write parquet: %w", err)
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// WriteFile encodes records into a new file at path.
func WriteFile(path string, f Format, records []model.StockRecord) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := Write(out, f, records); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// ReadParquet reads a file written with the Parquet format.
func ReadParquet(path string) ([]model.StockRecord, error) {
	rows, err := parquet.ReadFile[Row](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	return fromRows(rows), nil
}
