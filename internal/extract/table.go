package extract

import (
	"milex-scraper/internal/taxonomy"
	"milex-scraper/lib/htmlutil"
	"milex-scraper/lib/textutil"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// headerIndicators mark a row as the force group header of a MILEX table.
var headerIndicators = []string{
	"strategic",
	"land forces",
	"naval",
	"air forces",
	"total expenditure",
}

// labelRows are normalized first-cell labels of rows that only repeat the
// table axes.
var labelRows = map[string]struct{}{
	"cost_category": {},
	"force_groups":  {},
}

// tableContext is the column layout of one table.
type tableContext struct {
	// columns[i] is the category of cell i+1, "" when unassigned
	columns   []string
	dataStart int
}

func (c tableContext) assigned() bool {
	for _, col := range c.columns {
		if col != "" {
			return true
		}
	}
	return false
}

func rowCells(row *goquery.Selection) []string {
	cells := row.ChildrenFiltered("th, td")
	out := make([]string, cells.Length())
	for i, n := range cells.Nodes {
		out[i] = htmlutil.CleanText(n)
	}
	return out
}

func isHeaderRow(cells []string) bool {
	for _, c := range cells {
		if textutil.ContainsAny(c, headerIndicators) {
			return true
		}
	}
	return false
}

// classify finds the header row among the first two rows and assigns a
// category to every column after the label column. ok is false for tables
// that do not look like a MILEX table.
func (e Extractor) classify(rows [][]string) (tableContext, bool) {
	if len(rows) < 2 {
		return tableContext{}, false
	}

	header := -1
	for idx := 0; idx < 2; idx++ {
		if isHeaderRow(rows[idx]) {
			header = idx
			break
		}
	}
	if header < 0 {
		return tableContext{}, false
	}

	cells := rows[header]
	ctx := tableContext{dataStart: header + 1}
	for i := 1; i < len(cells); i++ {
		category, _ := e.categories.Match(cells[i])
		ctx.columns = append(ctx.columns, category)
	}
	if !ctx.assigned() {
		return tableContext{}, false
	}
	return ctx, true
}

// parseTable returns the fields one table contributes.
func (e Extractor) parseTable(table *goquery.Selection) map[string]float64 {
	var rows [][]string
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		rows = append(rows, rowCells(row))
	})

	ctx, ok := e.classify(rows)
	if !ok {
		return nil
	}

	fields := map[string]float64{}
	for _, cells := range rows[ctx.dataStart:] {
		if len(cells) < 2 || cells[0] == "" {
			continue
		}
		if _, skip := labelRows[strings.ToLower(textutil.NormalizeLabel(cells[0]))]; skip {
			continue
		}
		subcategory, ok := e.subcategories.Match(cells[0])
		if !ok {
			continue
		}

		for i, text := range cells[1:] {
			if i >= len(ctx.columns) {
				break
			}
			category := ctx.columns[i]
			if category == "" {
				continue
			}
			value, ok := textutil.ParseNumber(text)
			if !ok {
				continue
			}
			field := taxonomy.FieldName(category, subcategory)
			if !e.tax.Contains(field) {
				continue
			}
			fields[field] = value
		}
	}
	return fields
}
