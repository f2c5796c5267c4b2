package export

import (
	"context"
	"fmt"
	"io"
	"milex-scraper/internal/store"

	"github.com/xuri/excelize/v2"
)

const (
	DataSheet    = "data"
	SummarySheet = "summary"
)

func stringsToCells(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func setRow(sw *excelize.StreamWriter, row int, values []any) error {
	axis, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return sw.SetRow(axis, values)
}

// WriteXLSX writes a workbook with the flat table on the data sheet and the
// per-country summary on the summary sheet. Absent values are left blank.
func WriteXLSX(ctx context.Context, w io.Writer, src Source) (Result, error) {
	f := excelize.NewFile()
	defer f.Close()

	err := f.SetSheetName("Sheet1", DataSheet)
	if err != nil {
		return Result{}, err
	}
	_, err = f.NewSheet(SummarySheet)
	if err != nil {
		return Result{}, err
	}

	res, err := writeDataSheet(ctx, f, src)
	if err != nil {
		return Result{}, fmt.Errorf("data sheet: %w", err)
	}
	err = writeSummarySheet(ctx, f, src)
	if err != nil {
		return Result{}, fmt.Errorf("summary sheet: %w", err)
	}

	_, err = f.WriteTo(w)
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

func writeDataSheet(ctx context.Context, f *excelize.File, src Source) (Result, error) {
	tax := src.Taxonomy()
	header := Header(tax)

	sw, err := f.NewStreamWriter(DataSheet)
	if err != nil {
		return Result{}, err
	}
	err = sw.SetPanes(&excelize.Panes{
		Freeze:      true,
		XSplit:      2,
		YSplit:      1,
		TopLeftCell: "C2",
		ActivePane:  "bottomRight",
	})
	if err != nil {
		return Result{}, err
	}
	err = setRow(sw, 1, stringsToCells(header))
	if err != nil {
		return Result{}, err
	}

	res := Result{Columns: len(header)}
	countries := map[string]struct{}{}
	err = src.Each(ctx, func(r store.StoredRecord) error {
		res.Rows++
		countries[r.Country] = struct{}{}
		return setRow(sw, res.Rows+1, flatten(tax, r))
	})
	if err != nil {
		return Result{}, err
	}
	res.Countries = len(countries)
	return res, sw.Flush()
}

func writeSummarySheet(ctx context.Context, f *excelize.File, src Source) error {
	summaries, err := Summarize(ctx, src)
	if err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(SummarySheet)
	if err != nil {
		return err
	}
	err = setRow(sw, 1, stringsToCells(summaryHeader))
	if err != nil {
		return err
	}
	for i, s := range summaries {
		err = setRow(sw, i+2, s.cells())
		if err != nil {
			return err
		}
	}
	return sw.Flush()
}
