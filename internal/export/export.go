// Package export writes the stored records as flat CSV and XLSX tables.
package export

import (
	"context"
	"encoding/csv"
	"io"
	"milex-scraper/internal/store"
	"milex-scraper/internal/taxonomy"
	"strconv"
	"time"
)

// Missing is written for absent values in CSV output.
const Missing = "NA"

// Source is what the exports read from, implemented by *store.Store.
type Source interface {
	Taxonomy() taxonomy.Taxonomy
	Each(ctx context.Context, fn func(store.StoredRecord) error) error
}

// Result describes a written export.
type Result struct {
	Rows      int
	Countries int
	Columns   int
}

// Header is the column row of the flat table: the scalar columns followed by
// one column per taxonomy field.
func Header(tax taxonomy.Taxonomy) []string {
	return append(store.ScalarColumns(), tax.Columns()...)
}

// cell is one value of the flat table, nil when absent.
type cell = any

func flatten(tax taxonomy.Taxonomy, r store.StoredRecord) []cell {
	out := []cell{
		r.Country,
		r.Year,
		derefString(r.NationalCurrency),
		derefString(r.UnitOfMeasure),
		derefFloat(r.TotalExpenditureAll),
		derefString(r.ExplanatoryRemarks),
		derefString(r.NilReportExpenditure),
		r.PageLink,
		r.ScrapedAt.UTC().Format(time.RFC3339),
	}
	for _, field := range tax.Fields() {
		value, ok := r.FieldData[field]
		if !ok {
			out = append(out, nil)
			continue
		}
		out = append(out, value)
	}
	return out
}

func derefString(s *string) cell {
	if s == nil {
		return nil
	}
	return *s
}

func derefFloat(f *float64) cell {
	if f == nil {
		return nil
	}
	return *f
}

func formatCell(c cell) string {
	switch v := c.(type) {
	case nil:
		return Missing
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		panic("unexpected cell type")
	}
}

// WriteCSV writes every stored record as one CSV row, ordered by country and
// year.
func WriteCSV(ctx context.Context, w io.Writer, src Source) (Result, error) {
	tax := src.Taxonomy()
	header := Header(tax)

	out := csv.NewWriter(w)
	err := out.Write(header)
	if err != nil {
		return Result{}, err
	}

	res := Result{Columns: len(header)}
	countries := map[string]struct{}{}
	line := make([]string, len(header))
	err = src.Each(ctx, func(r store.StoredRecord) error {
		for i, c := range flatten(tax, r) {
			line[i] = formatCell(c)
		}
		res.Rows++
		countries[r.Country] = struct{}{}
		return out.Write(line)
	})
	if err != nil {
		return Result{}, err
	}
	res.Countries = len(countries)

	out.Flush()
	return res, out.Error()
}
