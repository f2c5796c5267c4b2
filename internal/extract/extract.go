// Package extract turns one MILEX report page into a standardized record.
//
// Extraction is pure: it does no I/O and keeps no state between calls, an
// Extractor may be shared by any number of goroutines.
package extract

import (
	"fmt"
	"maps"
	"milex-scraper/internal/match"
	"milex-scraper/internal/milex"
	"milex-scraper/internal/taxonomy"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Options configures an Extractor.
type Options struct {
	Subcategory match.SubcategoryOptions
	// Layouts overrides DefaultLayouts when set.
	Layouts []Layout
}

// Extractor extracts records against one taxonomy.
type Extractor struct {
	tax           taxonomy.Taxonomy
	categories    match.Matcher
	subcategories match.Matcher
	layouts       []Layout
}

func NewExtractor(tax taxonomy.Taxonomy, opts Options) Extractor {
	layouts := opts.Layouts
	if len(layouts) == 0 {
		layouts = DefaultLayouts
	}
	return Extractor{
		tax:           tax,
		categories:    match.NewCategoryMatcher(tax),
		subcategories: match.NewSubcategoryMatcher(tax, opts.Subcategory),
		layouts:       layouts,
	}
}

// Page is a fetched report page.
type Page struct {
	Country string
	Year    int
	URL     string
	HTML    string
}

// Extract builds the record of a page. A page without a MILEX table yields a
// record with empty field data, which is a valid outcome and not an error.
func (e Extractor) Extract(page Page) (milex.Record, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return milex.Record{}, fmt.Errorf("parse html: %w", err)
	}
	return e.ExtractDocument(doc, page), nil
}

// ExtractDocument is Extract over an already parsed document.
func (e Extractor) ExtractDocument(doc *goquery.Document, page Page) milex.Record {
	record := milex.Record{
		Country:   page.Country,
		Year:      page.Year,
		PageLink:  page.URL,
		FieldData: map[string]float64{},
	}

	record.NationalCurrency = lookupScalar(doc, e.layouts, NationalCurrency)
	record.UnitOfMeasure = lookupScalar(doc, e.layouts, UnitOfMeasure)
	record.ExplanatoryRemarks = lookupScalar(doc, e.layouts, ExplanatoryRemarks)
	record.NilReportExpenditure = nilReport(doc)
	record.TotalExpenditureAll = totalExpenditure(doc)

	// later tables overwrite earlier ones on the same field
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		maps.Copy(record.FieldData, e.parseTable(table))
	})

	return record
}
