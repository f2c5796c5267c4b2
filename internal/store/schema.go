package store

import (
	"fmt"
	"milex-scraper/internal/taxonomy"
	"strings"
)

// scalar columns of the expenditures table, in table order
const (
	colCountry              = "country"
	colYear                 = "year"
	colNationalCurrency     = "national_currency"
	colUnitOfMeasure        = "unit_of_measure"
	colTotalExpenditureAll  = "total_expenditure_all"
	colExplanatoryRemarks   = "explanatory_remarks"
	colNilReportExpenditure = "nil_report_expenditure"
	colPageLink             = "page_link"
	colScrapedAt            = "scraped_at"
)

var scalarColumns = []string{
	colCountry,
	colYear,
	colNationalCurrency,
	colUnitOfMeasure,
	colTotalExpenditureAll,
	colExplanatoryRemarks,
	colNilReportExpenditure,
	colPageLink,
	colScrapedAt,
}

// ScalarColumns are the non-field columns of the flat table, in order.
func ScalarColumns() []string {
	return append([]string(nil), scalarColumns...)
}

func quote(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

const statusSchema = `create table if not exists scraping_metadata (
	country text not null,
	year integer not null,
	status text not null,
	error_message text,
	last_attempt integer not null,
	run_id text,
	primary key (country, year)
)`

// Schema returns the statements that create the tables for a taxonomy, one
// REAL column per field.
func Schema(tax taxonomy.Taxonomy) ([]string, error) {
	reserved := map[string]struct{}{"id": {}}
	for _, c := range scalarColumns {
		reserved[strings.ToLower(c)] = struct{}{}
	}

	var b strings.Builder
	b.WriteString("create table if not exists expenditures (\n")
	b.WriteString("\tid integer primary key autoincrement,\n")
	b.WriteString("\tcountry text not null,\n")
	b.WriteString("\tyear integer not null,\n")
	b.WriteString("\tnational_currency text,\n")
	b.WriteString("\tunit_of_measure text,\n")
	b.WriteString("\ttotal_expenditure_all real,\n")
	b.WriteString("\texplanatory_remarks text,\n")
	b.WriteString("\tnil_report_expenditure text,\n")
	b.WriteString("\tpage_link text,\n")
	b.WriteString("\tscraped_at integer not null,\n")
	for _, column := range tax.Columns() {
		if _, taken := reserved[strings.ToLower(column)]; taken {
			return nil, fmt.Errorf("field column %q collides with a fixed column", column)
		}
		fmt.Fprintf(&b, "\t%s real,\n", quote(column))
	}
	b.WriteString("\tunique (country, year)\n)")

	return []string{
		b.String(),
		statusSchema,
		"create index if not exists scraping_metadata_status on scraping_metadata (status)",
	}, nil
}
