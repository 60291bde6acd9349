package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"StockLens/internal/model"
)

var (
	ErrMissingColumn    = errors.New("missing column")
	ErrMalformedRow     = errors.New("malformed row")
	ErrCategoryConflict = errors.New("symbol belongs to more than one category")
	ErrEmpty            = errors.New("no header row")
)

// Columns is the canonical CSV header.
var Columns = []string{"Date", "Category", "Symbol", "Open", "High", "Low", "Close", "Volume"}

// DateLayouts are tried in order when no explicit layout is configured or the
// configured one does not match.
var DateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"02-01-2006",
}

// Options controls CSV parsing.
type Options struct {
	DateLayout string // tried before DateLayouts
}

// Load reads and parses the CSV at path.
func Load(path string, opts Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	ds, err := Parse(f, opts)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return ds, nil
}

// Parse reads a price CSV. Any malformed field fails the whole load.
func Parse(r io.Reader, opts Options) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	layouts := DateLayouts
	if opts.DateLayout != "" {
		layouts = append([]string{opts.DateLayout}, DateLayouts...)
	}

	var records []model.StockRecord
	categoryOf := make(map[string]string)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRow, err)
		}
		line, _ := cr.FieldPos(0)
		rec, err := parseRow(row, idx, layouts)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if prev, ok := categoryOf[rec.Symbol]; ok && prev != rec.Category {
			return nil, fmt.Errorf("line %d: %w: %s in %q and %q", line, ErrCategoryConflict, rec.Symbol, prev, rec.Category)
		}
		categoryOf[rec.Symbol] = rec.Category
		records = append(records, rec)
	}
	return newDataset(records), nil
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(Columns))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		for _, c := range Columns {
			if strings.EqualFold(h, c) {
				if _, dup := idx[c]; !dup {
					idx[c] = i
				}
			}
		}
	}
	var missing []string
	for _, c := range Columns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return idx, nil
}

func parseRow(row []string, idx map[string]int, layouts []string) (model.StockRecord, error) {
	field := func(name string) string { return strings.TrimSpace(row[idx[name]]) }

	var rec model.StockRecord
	date, err := parseDate(field("Date"), layouts)
	if err != nil {
		return rec, err
	}
	rec.Date = date
	rec.Category = field("Category")
	rec.Symbol = field("Symbol")
	if rec.Category == "" {
		return rec, fmt.Errorf("%w: empty Category", ErrMalformedRow)
	}
	if rec.Symbol == "" {
		return rec, fmt.Errorf("%w: empty Symbol", ErrMalformedRow)
	}

	nums := []struct {
		name string
		dst  *float64
	}{
		{"Open", &rec.Open},
		{"High", &rec.High},
		{"Low", &rec.Low},
		{"Close", &rec.Close},
		{"Volume", &rec.Volume},
	}
	for _, n := range nums {
		v, err := strconv.ParseFloat(field(n.name), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return rec, fmt.Errorf("%w: %s %q", ErrMalformedRow, n.name, field(n.name))
		}
		*n.dst = v
	}
	return rec, nil
}

func parseDate(s string, layouts []string) (time.Time, error) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: Date %q", ErrMalformedRow, s)
}

// WriteCSV writes records under the canonical header.
func WriteCSV(w io.Writer, records []model.StockRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Date.Format("2006-01-02"),
			r.Category,
			r.Symbol,
			strconv.FormatFloat(r.Open, 'f', -1, 64),
			strconv.FormatFloat(r.High, 'f', -1, 64),
			strconv.FormatFloat(r.Low, 'f', -1, 64),
			strconv.FormatFloat(r.Close, 'f', -1, 64),
			strconv.FormatFloat(r.Volume, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
