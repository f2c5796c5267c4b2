package export

import (
	"context"
	"encoding/csv"
	"io"
	"milex-scraper/internal/store"
)

// CountrySummary aggregates the stored years of one country. The total
// expenditure aggregates are nil when no year reported a total.
type CountrySummary struct {
	Country   string
	YearMin   int
	YearMax   int
	YearCount int
	TotalMean *float64
	TotalMin  *float64
	TotalMax  *float64

	totalSum   float64
	totalCount int
}

var summaryHeader = []string{
	"country",
	"year_min",
	"year_max",
	"year_count",
	"total_expenditure_all_mean",
	"total_expenditure_all_min",
	"total_expenditure_all_max",
}

func (c *CountrySummary) add(r store.StoredRecord) {
	if c.YearCount == 0 || r.Year < c.YearMin {
		c.YearMin = r.Year
	}
	if c.YearCount == 0 || r.Year > c.YearMax {
		c.YearMax = r.Year
	}
	c.YearCount++

	if r.TotalExpenditureAll == nil {
		return
	}
	total := *r.TotalExpenditureAll
	if c.TotalMin == nil || total < *c.TotalMin {
		c.TotalMin = &total
	}
	if c.TotalMax == nil || total > *c.TotalMax {
		c.TotalMax = &total
	}
	c.totalSum += total
	c.totalCount++
	mean := c.totalSum / float64(c.totalCount)
	c.TotalMean = &mean
}

// Summarize builds one summary per stored country, ordered by country.
func Summarize(ctx context.Context, src Source) ([]CountrySummary, error) {
	var out []CountrySummary
	err := src.Each(ctx, func(r store.StoredRecord) error {
		// Each orders by country, so a country's rows are contiguous
		if len(out) == 0 || out[len(out)-1].Country != r.Country {
			out = append(out, CountrySummary{Country: r.Country})
		}
		out[len(out)-1].add(r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c CountrySummary) cells() []cell {
	return []cell{
		c.Country,
		c.YearMin,
		c.YearMax,
		c.YearCount,
		derefFloat(c.TotalMean),
		derefFloat(c.TotalMin),
		derefFloat(c.TotalMax),
	}
}

// WriteSummaryCSV writes the per-country summary.
func WriteSummaryCSV(ctx context.Context, w io.Writer, src Source) (Result, error) {
	summaries, err := Summarize(ctx, src)
	if err != nil {
		return Result{}, err
	}

	out := csv.NewWriter(w)
	err = out.Write(summaryHeader)
	if err != nil {
		return Result{}, err
	}
	for _, s := range summaries {
		cells := s.cells()
		line := make([]string, len(cells))
		for i, c := range cells {
			line[i] = formatCell(c)
		}
		err = out.Write(line)
		if err != nil {
			return Result{}, err
		}
	}
	out.Flush()
	if err := out.Error(); err != nil {
		return Result{}, err
	}

	return Result{
		Rows:      len(summaries),
		Countries: len(summaries),
		Columns:   len(summaryHeader),
	}, nil
}
